package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/simpletasks/internal/model"
)

// Service is the set of remote operations the flows depend on.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) (string, error)
	ListTasks(ctx context.Context, page int) (model.TaskPage, error)
	CreateTask(ctx context.Context, req model.TaskRequest) (model.Task, error)
	UpdateTask(ctx context.Context, id int, req model.TaskRequest) (model.Task, error)
	DeleteTask(ctx context.Context, id int) error
}

// TokenSource supplies the current session token. It is consulted on
// every authenticated request, so a cleared session affects only calls
// issued afterwards.
type TokenSource interface {
	Get() (string, error)
}

// Client is a thin HTTP client for the tasks REST API. It handles Bearer
// token authentication, JSON marshaling, and failure envelope decoding.
// There is no retry; the http.Client timeout is the only deadline.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a new API client. The baseURL is the API root
// (e.g., https://testapi.doitserver.in.ua/api).
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// credentials is the body of the auth and registration requests.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type taskResponse struct {
	Task model.Task `json:"task"`
}

// Login exchanges email and password for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth", false, credentials{email, password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Register creates an account and returns its session token.
func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/users", false, credentials{email, password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ListTasks fetches one page of tasks. Pages start at 1.
func (c *Client) ListTasks(ctx context.Context, page int) (model.TaskPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	var resp model.TaskPage
	if err := c.do(ctx, http.MethodGet, "/tasks?"+q.Encode(), true, nil, &resp); err != nil {
		return model.TaskPage{}, err
	}
	return resp, nil
}

// CreateTask creates a task and returns it with its server-assigned ID.
func (c *Client) CreateTask(ctx context.Context, req model.TaskRequest) (model.Task, error) {
	var resp taskResponse
	if err := c.do(ctx, http.MethodPost, "/tasks", true, req, &resp); err != nil {
		return model.Task{}, err
	}
	return resp.Task, nil
}

// UpdateTask replaces the fields of an existing task.
func (c *Client) UpdateTask(ctx context.Context, id int, req model.TaskRequest) (model.Task, error) {
	var resp taskResponse
	path := fmt.Sprintf("/tasks/%d", id)
	if err := c.do(ctx, http.MethodPut, path, true, req, &resp); err != nil {
		return model.Task{}, err
	}
	return resp.Task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), true, nil, nil)
}

// do is the core HTTP method that builds the request, attaches the token,
// and maps every non-2xx answer to a *Failure.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	authenticated bool,
	body interface{},
	result interface{},
) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return transportFailure(0)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return transportFailure(resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeFailure(resp.StatusCode, respBody)
	}

	// No content to parse (e.g. DELETE).
	if result == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return transportFailure(resp.StatusCode)
	}

	return nil
}

// token reads the current session token; an unreadable store counts as
// no session.
func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	token, err := c.tokens.Get()
	if err != nil {
		return ""
	}
	return token
}
