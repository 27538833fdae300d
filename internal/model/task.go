package model

import "time"

// Priority is the wire value of a task priority.
type Priority string

// Priority values as the API spells them. Normal is the middle level.
const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
)

// Priorities lists every priority in ascending order.
var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh}

// Valid reports whether p is one of the known priority values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// Task is a single to-do item owned by the remote API.
type Task struct {
	// ID is assigned by the server and never changes afterwards.
	ID int `json:"id"`

	// Title is the non-empty summary of the task.
	Title string `json:"title"`

	// DueBy is the due instant in epoch seconds, if any.
	DueBy *int64 `json:"dueBy,omitempty"`

	// Priority is one of the Priority* constants.
	Priority Priority `json:"priority"`
}

// Due returns the due instant of the task and whether it has one.
func (t Task) Due() (time.Time, bool) {
	if t.DueBy == nil {
		return time.Time{}, false
	}
	return time.Unix(*t.DueBy, 0), true
}

// TaskRequest is the body sent when creating or updating a task.
type TaskRequest struct {
	Title    string   `json:"title"`
	DueBy    *int64   `json:"dueBy,omitempty"`
	Priority Priority `json:"priority"`
}

// NewTaskRequest builds a request body from form values.
func NewTaskRequest(title string, due time.Time, priority Priority) TaskRequest {
	req := TaskRequest{Title: title, Priority: priority}
	if !due.IsZero() {
		secs := due.Unix()
		req.DueBy = &secs
	}
	return req
}

// PageMeta is the pagination metadata returned with a page of tasks.
type PageMeta struct {
	Current int `json:"current"`
	Limit   int `json:"limit"`
	Count   int `json:"count"`
}

// HasNext reports whether another page can be requested after Current.
// It uses integer division, so a trailing partial page is not counted.
func (m PageMeta) HasNext() bool {
	if m.Limit <= 0 {
		return false
	}
	return m.Count/m.Limit > m.Current
}

// TaskPage is one page of the task collection.
type TaskPage struct {
	Tasks []Task   `json:"tasks"`
	Meta  PageMeta `json:"meta"`
}
