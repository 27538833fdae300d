// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/nhle/simpletasks/internal/model"
)

// FakeAPI is an in-memory implementation of api.Service for testing.
type FakeAPI struct {
	mu     sync.Mutex
	calls  []string
	nextID int

	// Token is returned by Login and Register.
	Token string

	// Pages maps a page number to the response for that page.
	Pages map[int]model.TaskPage

	// Error injection for testing
	LoginErr    error
	RegisterErr error
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
}

// NewFakeAPI creates a FakeAPI that hands out token on authentication.
func NewFakeAPI(token string) *FakeAPI {
	return &FakeAPI{
		Token:  token,
		Pages:  make(map[int]model.TaskPage),
		nextID: 1000,
	}
}

// Calls returns the operations invoked so far, e.g. "login", "list:2".
func (f *FakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// SetPage installs the response for page.
func (f *FakeAPI) SetPage(page int, meta model.PageMeta, tasks ...model.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pages[page] = model.TaskPage{Tasks: tasks, Meta: meta}
}

func (f *FakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

// Login implements api.Service.
func (f *FakeAPI) Login(ctx context.Context, email, password string) (string, error) {
	f.record("login")
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	return f.Token, nil
}

// Register implements api.Service.
func (f *FakeAPI) Register(ctx context.Context, email, password string) (string, error) {
	f.record("register")
	if f.RegisterErr != nil {
		return "", f.RegisterErr
	}
	return f.Token, nil
}

// ListTasks implements api.Service.
func (f *FakeAPI) ListTasks(ctx context.Context, page int) (model.TaskPage, error) {
	f.record(fmt.Sprintf("list:%d", page))
	if f.ListErr != nil {
		return model.TaskPage{}, f.ListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Pages[page], nil
}

// CreateTask implements api.Service.
func (f *FakeAPI) CreateTask(ctx context.Context, req model.TaskRequest) (model.Task, error) {
	f.record("create")
	if f.CreateErr != nil {
		return model.Task{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return model.Task{ID: f.nextID, Title: req.Title, DueBy: req.DueBy, Priority: req.Priority}, nil
}

// UpdateTask implements api.Service.
func (f *FakeAPI) UpdateTask(ctx context.Context, id int, req model.TaskRequest) (model.Task, error) {
	f.record(fmt.Sprintf("update:%d", id))
	if f.UpdateErr != nil {
		return model.Task{}, f.UpdateErr
	}
	return model.Task{ID: id, Title: req.Title, DueBy: req.DueBy, Priority: req.Priority}, nil
}

// DeleteTask implements api.Service.
func (f *FakeAPI) DeleteTask(ctx context.Context, id int) error {
	f.record(fmt.Sprintf("delete:%d", id))
	return f.DeleteErr
}
