package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// UnknownErrorMessage is shown when the server gave no usable message.
const UnknownErrorMessage = "Unknown error"

// Failure is the only error kind the flows surface: a displayable message.
// StatusCode is kept for the stale-session check and is 0 when the
// request never got an answer.
type Failure struct {
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return f.Message
}

// Unauthorized reports whether the server rejected the session token.
func (f *Failure) Unauthorized() bool {
	return f.StatusCode == http.StatusUnauthorized
}

// decodeFailure reads the {message} envelope of a non-2xx response.
func decodeFailure(status int, body []byte) *Failure {
	var f Failure
	if err := json.Unmarshal(body, &f); err != nil || f.Message == "" {
		return transportFailure(status)
	}
	f.StatusCode = status
	return &f
}

func transportFailure(status int) *Failure {
	return &Failure{Message: UnknownErrorMessage, StatusCode: status}
}

// AsFailure converts err into a *Failure. Context cancellation is not a
// failure and yields nil.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return transportFailure(0)
}
