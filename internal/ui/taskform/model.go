// Package taskform is the create/edit form for a single task. In create
// mode it issues createTask, in update mode updateTask, and reports the
// saved task upward.
package taskform

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/simpletasks/internal/api"
	"github.com/nhle/simpletasks/internal/flow"
	"github.com/nhle/simpletasks/internal/keys"
	"github.com/nhle/simpletasks/internal/model"
	"github.com/nhle/simpletasks/internal/theme"
)

// DueLayout is the format of the due date field.
const DueLayout = "2006-01-02 15:04"

// Mode is create or update.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "create"
}

// TitleChangedMsg replaces the title.
type TitleChangedMsg struct{ Value string }

// PriorityPickedMsg replaces the priority.
type PriorityPickedMsg struct{ Priority model.Priority }

// DueChangedMsg replaces the due date. A zero Due clears it.
type DueChangedMsg struct{ Due time.Time }

// SaveMsg submits the form. It is ignored without a title or while a save
// is in flight.
type SaveMsg struct{}

// CancelMsg abandons the form.
type CancelMsg struct{}

// AlertDismissedMsg closes the failure alert.
type AlertDismissedMsg struct{}

// SavedMsg is emitted upward with the task the server returned.
type SavedMsg struct {
	Task model.Task
	Mode Mode
}

// CancelledMsg is emitted upward when the user backs out of the form.
type CancelledMsg struct{}

type saveResponseMsg struct {
	ticket flow.Ticket
	task   model.Task
	err    error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title    string
	priority model.Priority
	due      string
}

// Model is the Bubble Tea model for the task form.
type Model struct {
	api      api.Service
	keys     *keys.KeyMap
	requests *flow.Requests

	mode   Mode
	taskID int

	form    *huh.Form
	fb      *formBindings
	loading bool
	alert   string

	spinner spinner.Model
	width   int
	height  int
}

// NewCreate returns an empty form in create mode with the given default
// due date.
func NewCreate(svc api.Service, k *keys.KeyMap, due time.Time) Model {
	m := newModel(svc, k, &formBindings{
		priority: model.PriorityLow,
		due:      formatDue(due),
	})
	m.mode = ModeCreate
	m.form = m.buildForm()
	return m
}

// NewUpdate returns a form in update mode pre-filled with task.
func NewUpdate(svc api.Service, k *keys.KeyMap, task model.Task) Model {
	fb := &formBindings{title: task.Title, priority: task.Priority}
	if !fb.priority.Valid() {
		fb.priority = model.PriorityLow
	}
	if due, ok := task.Due(); ok {
		fb.due = formatDue(due)
	}

	m := newModel(svc, k, fb)
	m.mode = ModeUpdate
	m.taskID = task.ID
	m.form = m.buildForm()
	return m
}

func newModel(svc api.Service, k *keys.KeyMap, fb *formBindings) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		api:      svc,
		keys:     k,
		requests: flow.NewRequests(),
		fb:       fb,
		spinner:  sp,
		width:    60,
		height:   16,
	}
}

// Init focuses the first field and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.form.Init(), m.spinner.Tick)
}

// Mode returns whether the form creates or updates.
func (m Model) Mode() Mode { return m.mode }

// Title returns the entered title.
func (m Model) Title() string { return m.fb.title }

// Priority returns the picked priority.
func (m Model) Priority() model.Priority { return m.fb.priority }

// Due returns the entered due date, if any.
func (m Model) Due() (time.Time, bool) {
	t, err := parseDue(m.fb.due)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// Loading reports whether a save is in flight.
func (m Model) Loading() bool { return m.loading }

// Alert returns the message of the open alert, or "".
func (m Model) Alert() string { return m.alert }

// CanSave reports whether the form may be submitted.
func (m Model) CanSave() bool {
	if m.loading || m.fb.title == "" {
		return false
	}
	_, err := parseDue(m.fb.due)
	return err == nil
}

// Cancel abandons any in-flight save. The parent calls it when the form is
// torn down.
func (m Model) Cancel() {
	m.requests.CancelAll()
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth()).WithHeight(m.formHeight())
	}
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TitleChangedMsg:
		m.fb.title = msg.Value
		return m.rebuild()

	case PriorityPickedMsg:
		if msg.Priority.Valid() {
			m.fb.priority = msg.Priority
		}
		return m.rebuild()

	case DueChangedMsg:
		m.fb.due = formatDue(msg.Due)
		return m.rebuild()

	case SaveMsg:
		return m.save()

	case saveResponseMsg:
		if !m.requests.Settle(msg.ticket) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if f := api.AsFailure(msg.err); f != nil {
				m.alert = f.Message
			}
			return m.rebuild()
		}
		return m, flow.Emit(SavedMsg{Task: msg.task, Mode: m.mode})

	case CancelMsg:
		m.requests.CancelAll()
		m.loading = false
		return m, flow.Emit(CancelledMsg{})

	case AlertDismissedMsg:
		m.alert = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m.updateForm(msg)
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.alert != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			return m, flow.Emit(AlertDismissedMsg{})
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Back) {
		return m, flow.Emit(CancelMsg{})
	}
	// Fields are disabled while saving.
	if m.loading {
		return m, nil
	}
	return m.updateForm(msg)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.loading {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, flow.Emit(SaveMsg{})
	case huh.StateAborted:
		return m, flow.Emit(CancelMsg{})
	}
	return m, cmd
}

func (m Model) save() (Model, tea.Cmd) {
	if !m.CanSave() {
		if !m.loading && m.form.State == huh.StateCompleted {
			return m.rebuild()
		}
		return m, nil
	}

	due, _ := parseDue(m.fb.due)
	req := model.NewTaskRequest(m.fb.title, due, m.fb.priority)

	m.loading = true
	m.alert = ""

	if m.mode == ModeUpdate {
		id := m.taskID
		ctx, ticket := m.requests.Begin("update:" + strconv.Itoa(id))
		return m, flow.Effect(ctx,
			func(ctx context.Context) (model.Task, error) {
				return m.api.UpdateTask(ctx, id, req)
			},
			func(task model.Task, err error) tea.Msg {
				return saveResponseMsg{ticket: ticket, task: task, err: err}
			},
		)
	}

	ctx, ticket := m.requests.Begin("create")
	return m, flow.Effect(ctx,
		func(ctx context.Context) (model.Task, error) {
			return m.api.CreateTask(ctx, req)
		},
		func(task model.Task, err error) tea.Msg {
			return saveResponseMsg{ticket: ticket, task: task, err: err}
		},
	)
}

// rebuild recreates the huh form from the current bindings. A completed
// form cannot be edited again, so a failed save needs a fresh one.
func (m Model) rebuild() (Model, tea.Cmd) {
	m.form = m.buildForm()
	return m, m.form.Init()
}

// View renders the task form.
func (m Model) View() string {
	titleText := "New Task"
	if m.mode == ModeUpdate {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	body := m.form.View()
	switch {
	case m.loading:
		body = theme.DimmedStyle.Render(body) + "\n" + m.spinner.View() + " Saving..."
	case m.alert != "":
		body += "\n" + theme.RenderAlert(m.alert)
	default:
		body += "\n" + theme.HelpStyle.Render("esc cancel")
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(titleStyle.Render(titleText) + "\n" + body)
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(
					huh.NewOption("Low", model.PriorityLow),
					huh.NewOption("Normal", model.PriorityNormal),
					huh.NewOption("High", model.PriorityHigh),
				).
				Value(&m.fb.priority),
			huh.NewInput().
				Title("Due").
				Placeholder("YYYY-MM-DD HH:MM (optional)").
				Value(&m.fb.due).
				Validate(validateOptionalDue),
		),
	).WithShowHelp(false).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}

func formatDue(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DueLayout)
}

// parseDue returns the zero time for an empty field.
func parseDue(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(DueLayout, s, time.Local)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDue(s string) error {
	if _, err := parseDue(s); err != nil {
		return fmt.Errorf("invalid date, use YYYY-MM-DD HH:MM")
	}
	return nil
}
