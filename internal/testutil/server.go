package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/nhle/simpletasks/internal/model"
)

// RecordedRequest captures what the fake server received.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	Body          []byte
}

// FakeServer is an in-memory implementation of the tasks REST API served
// over httptest.
type FakeServer struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[string]string
	tasks     []model.Task
	nextID    int
	failure   *cannedResponse
	requests  []RecordedRequest
	token     string
	pageLimit int
}

type cannedResponse struct {
	status int
	body   string
}

// NewFakeServer starts a fake API that issues token for every successful
// login or registration. It is closed when the test completes.
func NewFakeServer(t *testing.T, token string) *FakeServer {
	t.Helper()

	fs := &FakeServer{
		users:     make(map[string]string),
		nextID:    1,
		token:     token,
		pageLimit: 10,
	}

	r := mux.NewRouter()
	r.Use(fs.record)
	r.HandleFunc("/api/auth", fs.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/users", fs.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks", fs.requireAuth(fs.handleListTasks)).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks", fs.requireAuth(fs.handleCreateTask)).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks/{id:[0-9]+}", fs.requireAuth(fs.handleUpdateTask)).Methods(http.MethodPut)
	r.HandleFunc("/api/tasks/{id:[0-9]+}", fs.requireAuth(fs.handleDeleteTask)).Methods(http.MethodDelete)

	fs.Server = httptest.NewServer(r)
	t.Cleanup(fs.Close)

	return fs
}

// BaseURL returns the API root to hand to api.NewClient.
func (fs *FakeServer) BaseURL() string {
	return fs.URL + "/api"
}

// AddUser registers credentials accepted by /auth.
func (fs *FakeServer) AddUser(email, password string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.users[email] = password
}

// AddTasks appends tasks, assigning IDs to those without one.
func (fs *FakeServer) AddTasks(tasks ...model.Task) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, task := range tasks {
		if task.ID == 0 {
			task.ID = fs.nextID
		}
		if task.ID >= fs.nextID {
			fs.nextID = task.ID + 1
		}
		fs.tasks = append(fs.tasks, task)
	}
}

// SetPageLimit changes the number of tasks per page.
func (fs *FakeServer) SetPageLimit(limit int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.pageLimit = limit
}

// FailNext makes the next request answer with status and a raw body.
func (fs *FakeServer) FailNext(status int, body string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.failure = &cannedResponse{status: status, body: body}
}

// Requests returns a copy of every request received so far.
func (fs *FakeServer) Requests() []RecordedRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]RecordedRequest, len(fs.requests))
	copy(out, fs.requests)
	return out
}

// Tasks returns a copy of the server-side collection.
func (fs *FakeServer) Tasks() []model.Task {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]model.Task, len(fs.tasks))
	copy(out, fs.tasks)
	return out
}

func (fs *FakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = readAll(r)
		}

		fs.mu.Lock()
		fs.requests = append(fs.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		canned := fs.failure
		fs.failure = nil
		fs.mu.Unlock()

		if canned != nil {
			w.WriteHeader(canned.status)
			_, _ = w.Write([]byte(canned.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fs *FakeServer) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+fs.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next(w, r)
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (fs *FakeServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	fs.mu.Lock()
	password, known := fs.users[creds.Email]
	fs.mu.Unlock()

	if !known || password != creds.Password {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": fs.token})
}

func (fs *FakeServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	fs.mu.Lock()
	_, exists := fs.users[creds.Email]
	if !exists {
		fs.users[creds.Email] = creds.Password
	}
	fs.mu.Unlock()

	if exists {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Email already taken"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": fs.token})
}

func (fs *FakeServer) handleListTasks(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	fs.mu.Lock()
	limit := fs.pageLimit
	start := (page - 1) * limit
	end := start + limit
	if start > len(fs.tasks) {
		start = len(fs.tasks)
	}
	if end > len(fs.tasks) {
		end = len(fs.tasks)
	}
	tasks := append([]model.Task{}, fs.tasks[start:end]...)
	count := len(fs.tasks)
	fs.mu.Unlock()

	writeJSON(w, http.StatusOK, model.TaskPage{
		Tasks: tasks,
		Meta:  model.PageMeta{Current: page, Limit: limit, Count: count},
	})
}

func (fs *FakeServer) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req model.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Title is required"})
		return
	}

	fs.mu.Lock()
	task := model.Task{ID: fs.nextID, Title: req.Title, DueBy: req.DueBy, Priority: req.Priority}
	fs.nextID++
	fs.tasks = append([]model.Task{task}, fs.tasks...)
	fs.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]model.Task{"task": task})
}

func (fs *FakeServer) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req model.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Invalid task"})
		return
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	for i := range fs.tasks {
		if fs.tasks[i].ID == id {
			fs.tasks[i] = model.Task{ID: id, Title: req.Title, DueBy: req.DueBy, Priority: req.Priority}
			writeJSON(w, http.StatusOK, map[string]model.Task{"task": fs.tasks[i]})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
}

func (fs *FakeServer) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	fs.mu.Lock()
	defer fs.mu.Unlock()
	for i := range fs.tasks {
		if fs.tasks[i].ID == id {
			fs.tasks = append(fs.tasks[:i], fs.tasks[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed body"})
		return creds, false
	}
	return creds, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readAll drains the request body and puts a fresh reader back.
func readAll(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, err
}
