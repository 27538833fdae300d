// Package tasklist is the paginated task list screen. It owns the task
// collection and hosts the form and detail screens as optional children.
package tasklist

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/simpletasks/internal/api"
	"github.com/nhle/simpletasks/internal/flow"
	"github.com/nhle/simpletasks/internal/keys"
	"github.com/nhle/simpletasks/internal/model"
	"github.com/nhle/simpletasks/internal/theme"
	"github.com/nhle/simpletasks/internal/ui/detail"
	"github.com/nhle/simpletasks/internal/ui/taskform"
)

// listFamily is shared by refresh and page loads so a refresh supersedes
// an in-flight page load.
const listFamily = "list"

// ViewAppearedMsg is sent when the screen becomes visible. An empty list
// loads its first page.
type ViewAppearedMsg struct{}

// RefreshMsg reloads page 1 and replaces the collection.
type RefreshMsg struct{}

// LoadNextPageMsg requests the page after the current one.
type LoadNextPageMsg struct{}

// LastItemAppearedMsg is sent when the cursor reaches the final row.
type LastItemAppearedMsg struct{}

// DeleteMsg removes the task with ID, optimistically.
type DeleteMsg struct{ ID int }

// AddMsg opens the form in create mode.
type AddMsg struct{}

// EditMsg opens the form in update mode for Task.
type EditMsg struct{ Task model.Task }

// ShowDetailMsg opens the detail screen for the task with ID.
type ShowDetailMsg struct{ ID int }

// AlertDismissedMsg closes the failure alert.
type AlertDismissedMsg struct{}

// LogoutMsg is emitted upward when the user logs out.
type LogoutMsg struct{}

// SessionExpiredMsg is emitted upward when the server rejects the session
// token and the screen is configured to log out on it.
type SessionExpiredMsg struct{ Message string }

// CreateMsg carries an action of the form child.
type CreateMsg struct{ Msg tea.Msg }

// Unwrap implements flow.Wrapped.
func (m CreateMsg) Unwrap() (string, tea.Msg) { return "create", m.Msg }

// DetailMsg carries an action of the detail child.
type DetailMsg struct{ Msg tea.Msg }

// Unwrap implements flow.Wrapped.
func (m DetailMsg) Unwrap() (string, tea.Msg) { return "detail", m.Msg }

type tasksResponseMsg struct {
	ticket  flow.Ticket
	page    int
	refresh bool
	result  model.TaskPage
	err     error
}

type deleteResponseMsg struct {
	ticket flow.Ticket
	task   model.Task
	err    error
}

func wrapCreate(msg tea.Msg) tea.Msg { return CreateMsg{Msg: msg} }
func wrapDetail(msg tea.Msg) tea.Msg { return DetailMsg{Msg: msg} }

// Options tune the screen's behavior.
type Options struct {
	// DefaultDue is added to the current time for a new task's due date.
	DefaultDue time.Duration

	// LogoutOnUnauthorized turns a 401 answer into a SessionExpiredMsg
	// instead of an alert.
	LogoutOnUnauthorized bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Model is the main task list view component.
type Model struct {
	api      api.Service
	keys     *keys.KeyMap
	opts     Options
	requests *flow.Requests

	tasks           []model.Task
	currentPage     int
	canLoadNextPage bool
	loading         bool
	refreshing      bool
	alert           string

	create *taskform.Model
	detail *detail.Model

	list    list.Model
	spinner spinner.Model
	width   int
	height  int
}

// New creates an empty task list.
func New(svc api.Service, k *keys.KeyMap, opts Options, width, height int) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultDue <= 0 {
		opts.DefaultDue = 24 * time.Hour
	}

	l := list.New([]list.Item{}, ItemDelegate{now: opts.Now}, width, max(height-4, 1))
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")
	l.Styles.Title = theme.HeaderStyle
	// Quitting belongs to the root.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		api:             svc,
		keys:            k,
		opts:            opts,
		requests:        flow.NewRequests(),
		canLoadNextPage: true,
		list:            l,
		spinner:         sp,
		width:           width,
		height:          height,
	}
}

// Init announces that the view appeared and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(flow.Emit(ViewAppearedMsg{}), m.spinner.Tick)
}

// Tasks returns the task collection in display order.
func (m Model) Tasks() []model.Task { return m.tasks }

// CurrentPage returns the last page merged into the collection.
func (m Model) CurrentPage() int { return m.currentPage }

// CanLoadNextPage reports whether the server has more pages.
func (m Model) CanLoadNextPage() bool { return m.canLoadNextPage }

// Loading reports whether a next-page load is in flight.
func (m Model) Loading() bool { return m.loading }

// Refreshing reports whether a refresh is in flight.
func (m Model) Refreshing() bool { return m.refreshing }

// Alert returns the message of the open alert, or "".
func (m Model) Alert() string { return m.alert }

// Form returns the open form, or nil.
func (m Model) Form() *taskform.Model { return m.create }

// Detail returns the open detail screen, or nil.
func (m Model) Detail() *detail.Model { return m.detail }

// Cancel abandons every in-flight request of the screen and its children.
// The parent calls it when the screen is torn down.
func (m Model) Cancel() {
	m.requests.CancelAll()
	if m.create != nil {
		m.create.Cancel()
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(height-4, 1))
	if m.create != nil {
		m.create.SetSize(width, height)
	}
	if m.detail != nil {
		m.detail.SetSize(width, height)
	}
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ViewAppearedMsg:
		if len(m.tasks) == 0 {
			return m.loadNextPage()
		}
		return m, nil

	case RefreshMsg:
		return m.refresh()

	case LoadNextPageMsg, LastItemAppearedMsg:
		return m.loadNextPage()

	case tasksResponseMsg:
		return m.handleTasksResponse(msg)

	case DeleteMsg:
		return m.delete(msg.ID)

	case deleteResponseMsg:
		if !m.requests.Settle(msg.ticket) || msg.err == nil {
			return m, nil
		}
		// Reinsert at the front; the original position is not kept.
		m.tasks = append([]model.Task{msg.task}, m.tasks...)
		m.syncItems()
		return m.fail(msg.err)

	case AddMsg:
		return m.openForm(taskform.NewCreate(m.api, m.keys, m.opts.Now().Add(m.opts.DefaultDue)))

	case EditMsg:
		return m.openForm(taskform.NewUpdate(m.api, m.keys, msg.Task))

	case ShowDetailMsg:
		task, ok := m.find(msg.ID)
		if !ok {
			return m, nil
		}
		d := detail.New(task, m.keys, m.width, m.height)
		m.detail = &d
		return m, nil

	case CreateMsg:
		return m.updateForm(msg.Msg)

	case DetailMsg:
		return m.updateDetail(msg.Msg)

	case AlertDismissedMsg:
		m.alert = ""
		return m, nil

	case LogoutMsg, SessionExpiredMsg:
		// Handled by the parent.
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) refresh() (Model, tea.Cmd) {
	m.refreshing = true
	// The refresh supersedes any page load.
	m.loading = false
	return m, m.fetch(1, true)
}

func (m Model) loadNextPage() (Model, tea.Cmd) {
	if !m.canLoadNextPage || m.loading || m.refreshing {
		return m, nil
	}
	m.loading = true
	return m, m.fetch(m.currentPage+1, false)
}

func (m Model) fetch(page int, refresh bool) tea.Cmd {
	ctx, ticket := m.requests.Begin(listFamily)
	svc := m.api
	return flow.Effect(ctx,
		func(ctx context.Context) (model.TaskPage, error) {
			return svc.ListTasks(ctx, page)
		},
		func(result model.TaskPage, err error) tea.Msg {
			return tasksResponseMsg{ticket: ticket, page: page, refresh: refresh, result: result, err: err}
		},
	)
}

func (m Model) handleTasksResponse(msg tasksResponseMsg) (Model, tea.Cmd) {
	if !m.requests.Settle(msg.ticket) {
		return m, nil
	}
	if msg.refresh {
		m.refreshing = false
	} else {
		m.loading = false
	}
	if msg.err != nil {
		return m.fail(msg.err)
	}

	if msg.refresh {
		m.tasks = append([]model.Task(nil), msg.result.Tasks...)
		m.currentPage = 1
	} else {
		// Tasks created while the page was loading stay ahead of it, and
		// duplicates returned by the server are kept as they are.
		m.tasks = append(m.tasks, msg.result.Tasks...)
		m.currentPage = msg.page
		if msg.result.Meta.Current > 0 {
			m.currentPage = msg.result.Meta.Current
		}
	}

	meta := msg.result.Meta
	meta.Current = m.currentPage
	m.canLoadNextPage = meta.HasNext()

	m.syncItems()
	return m, m.lastItemCheck()
}

// lastItemCheck reports the cursor resting on the final row while more
// pages exist, so a page that fits on screen does not stall pagination.
func (m Model) lastItemCheck() tea.Cmd {
	n := len(m.list.Items())
	if !m.canLoadNextPage || n == 0 || m.list.Index() != n-1 {
		return nil
	}
	return flow.Emit(LastItemAppearedMsg{})
}

func (m Model) delete(id int) (Model, tea.Cmd) {
	idx := m.index(id)
	if idx < 0 {
		return m, nil
	}
	task := m.tasks[idx]
	m.tasks = append(m.tasks[:idx:idx], m.tasks[idx+1:]...)
	m.syncItems()

	ctx, ticket := m.requests.Begin("delete:" + strconv.Itoa(id))
	svc := m.api
	return m, flow.Effect(ctx,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, svc.DeleteTask(ctx, id)
		},
		func(_ struct{}, err error) tea.Msg {
			return deleteResponseMsg{ticket: ticket, task: task, err: err}
		},
	)
}

// fail surfaces err as an alert, or as an upward session event when the
// server rejected the token.
func (m Model) fail(err error) (Model, tea.Cmd) {
	f := api.AsFailure(err)
	if f == nil {
		return m, nil
	}
	if f.Unauthorized() && m.opts.LogoutOnUnauthorized {
		return m, flow.Emit(SessionExpiredMsg{Message: f.Message})
	}
	m.alert = f.Message
	return m, nil
}

func (m Model) openForm(form taskform.Model) (Model, tea.Cmd) {
	if m.create != nil {
		return m, nil
	}
	form.SetSize(m.width, m.height)
	m.create = &form
	return m, flow.Map(form.Init(), wrapCreate)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.create == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case taskform.SavedMsg:
		m.closeForm()
		if msg.Mode == taskform.ModeUpdate {
			m.replace(msg.Task)
		} else {
			m.tasks = append([]model.Task{msg.Task}, m.tasks...)
		}
		m.syncItems()
		return m, nil

	case taskform.CancelledMsg:
		m.closeForm()
		return m, nil
	}

	var cmd tea.Cmd
	m.create, cmd = flow.Lift(m.create, msg, taskform.Model.Update, wrapCreate)
	return m, cmd
}

func (m *Model) closeForm() {
	m.create.Cancel()
	m.create = nil
}

func (m Model) updateDetail(msg tea.Msg) (Model, tea.Cmd) {
	if m.detail == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case detail.BackMsg:
		m.detail = nil
		return m, nil
	case detail.EditMsg:
		return m.Update(EditMsg{Task: msg.Task})
	}

	var cmd tea.Cmd
	m.detail, cmd = flow.Lift(m.detail, msg, detail.Model.Update, wrapDetail)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.create != nil {
		return m.updateForm(msg)
	}
	if m.detail != nil {
		return m.updateDetail(msg)
	}
	if m.alert != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			return m, flow.Emit(AlertDismissedMsg{})
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m, flow.Emit(RefreshMsg{})

	case key.Matches(msg, m.keys.Add):
		return m, flow.Emit(AddMsg{})

	case key.Matches(msg, m.keys.Logout):
		return m, flow.Emit(LogoutMsg{})

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.list.SelectedItem().(TaskItem); ok {
			return m, flow.Emit(DeleteMsg{ID: item.Task.ID})
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if item, ok := m.list.SelectedItem().(TaskItem); ok {
			return m, flow.Emit(ShowDetailMsg{ID: item.Task.ID})
		}
		return m, nil
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	if n := len(m.list.Items()); n > 0 && m.list.Index() == n-1 {
		cmd = tea.Batch(cmd, flow.Emit(LastItemAppearedMsg{}))
	}
	return m, cmd
}

func (m *Model) replace(task model.Task) {
	if idx := m.index(task.ID); idx >= 0 {
		m.tasks[idx] = task
	}
	if m.detail != nil && m.detail.Task().ID == task.ID {
		m.detail.SetTask(task)
	}
}

func (m Model) index(id int) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m Model) find(id int) (model.Task, bool) {
	if idx := m.index(id); idx >= 0 {
		return m.tasks[idx], true
	}
	return model.Task{}, false
}

// syncItems copies the collection into the list widget.
func (m *Model) syncItems() {
	m.list.SetItems(toItems(m.tasks, m.opts.Now))
}

// View renders the task list view.
func (m Model) View() string {
	if m.create != nil {
		return m.create.View()
	}
	if m.detail != nil {
		return m.detail.View()
	}

	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")

	switch {
	case m.alert != "":
		b.WriteString(theme.RenderAlert(m.alert))
	case m.refreshing:
		b.WriteString(m.spinner.View() + " Refreshing...")
	case m.loading:
		b.WriteString(m.spinner.View() + " Loading more...")
	case len(m.tasks) == 0:
		b.WriteString(theme.DimmedStyle.Render("No tasks yet. Press n to add one."))
	}

	return b.String()
}
