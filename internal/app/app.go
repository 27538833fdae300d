package app

import (
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nhle/simpletasks/internal/api"
	"github.com/nhle/simpletasks/internal/credential"
	"github.com/nhle/simpletasks/internal/flow"
	"github.com/nhle/simpletasks/internal/keys"
	"github.com/nhle/simpletasks/internal/ui"
	"github.com/nhle/simpletasks/internal/ui/auth"
	helpview "github.com/nhle/simpletasks/internal/ui/help"
	"github.com/nhle/simpletasks/internal/ui/tasklist"
)

// AuthMsg carries an action of the sign-in screen.
type AuthMsg struct{ Msg tea.Msg }

// Unwrap implements flow.Wrapped.
func (m AuthMsg) Unwrap() (string, tea.Msg) { return "auth", m.Msg }

// TasksMsg carries an action of the task list screen.
type TasksMsg struct{ Msg tea.Msg }

// Unwrap implements flow.Wrapped.
func (m TasksMsg) Unwrap() (string, tea.Msg) { return "tasks", m.Msg }

func wrapAuth(msg tea.Msg) tea.Msg  { return AuthMsg{Msg: msg} }
func wrapTasks(msg tea.Msg) tea.Msg { return TasksMsg{Msg: msg} }

// screen is either authScreen or tasksScreen. Exactly one is active.
type screen interface{ isScreen() }

type authScreen struct{ model auth.Model }

type tasksScreen struct{ model tasklist.Model }

func (authScreen) isScreen()  {}
func (tasksScreen) isScreen() {}

// Options configure the root model.
type Options struct {
	// Tasks tunes the task list screen.
	Tasks tasklist.Options

	// Observer is notified of every action before it is reduced.
	Observer flow.Observer

	// Logger receives session storage problems. Defaults to discarding.
	Logger *log.Logger

	// BaseURL is shown in the header.
	BaseURL string
}

// Model is the root Bubble Tea model. It gates the task list behind a
// stored session and swaps screens when the session changes.
type Model struct {
	api     api.Service
	session credential.Store
	keys    *keys.KeyMap
	opts    Options
	logger  *log.Logger

	screen screen

	layout   ui.Layout
	help     helpview.Model
	showHelp bool
	notice   string
}

// New creates the root model. The session store is read once: a stored
// token opens the task list, otherwise the sign-in screen.
func New(svc api.Service, session credential.Store, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	k := keys.DefaultKeyMap()
	layout := ui.NewLayout(80, 24)

	m := Model{
		api:     svc,
		session: session,
		keys:    k,
		opts:    opts,
		logger:  logger,
		layout:  layout,
		help:    helpview.New(k, layout.ContentWidth(), layout.ContentHeight()),
	}

	token, err := session.Get()
	if err != nil {
		logger.Warn("reading session", "err", err)
		m.notice = "Session unavailable: " + err.Error()
	}
	if token != "" {
		m.screen = tasksScreen{model: m.newTasks()}
	} else {
		m.screen = authScreen{model: m.newAuth()}
	}
	return m
}

func (m Model) newAuth() auth.Model {
	a := auth.New(m.api, m.keys)
	a.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
	return a
}

func (m Model) newTasks() tasklist.Model {
	return tasklist.New(m.api, m.keys, m.opts.Tasks, m.layout.ContentWidth(), m.layout.ContentHeight())
}

// Init starts the active screen.
func (m Model) Init() tea.Cmd {
	return m.initScreen()
}

func (m Model) initScreen() tea.Cmd {
	switch s := m.screen.(type) {
	case authScreen:
		return flow.Map(s.model.Init(), wrapAuth)
	case tasksScreen:
		return flow.Map(s.model.Init(), wrapTasks)
	}
	return nil
}

// Auth returns the sign-in screen, or nil when the task list is active.
func (m Model) Auth() *auth.Model {
	if s, ok := m.screen.(authScreen); ok {
		a := s.model
		return &a
	}
	return nil
}

// Tasks returns the task list screen, or nil when signed out.
func (m Model) Tasks() *tasklist.Model {
	if s, ok := m.screen.(tasksScreen); ok {
		t := s.model
		return &t
	}
	return nil
}

// Update observes msg and dispatches it to the active screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.opts.Observer != nil {
		if e := flow.Describe(msg); e.Owned {
			m.opts.Observer.Observe(e)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.help.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		m.resizeScreen()
		return m, nil

	case AuthMsg:
		return m.updateAuth(msg.Msg)

	case TasksMsg:
		return m.updateTasks(msg.Msg)

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m.dispatch(msg)
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	if t := m.Tasks(); t != nil && t.Form() == nil {
		switch {
		case key.Matches(msg, m.keys.Quit) && t.Detail() == nil:
			return m.quit()
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		}
	}

	m.notice = ""
	return m.dispatch(msg)
}

// dispatch hands msg to whichever screen is active.
func (m Model) dispatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.screen.(type) {
	case authScreen:
		return m.updateAuth(msg)
	case tasksScreen:
		return m.updateTasks(msg)
	}
	return m, nil
}

func (m Model) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	current := m.Auth()
	if current == nil {
		return m, nil
	}

	if done, ok := msg.(auth.AuthenticatedMsg); ok {
		if err := m.session.Set(done.Token); err != nil {
			m.logger.Error("storing session", "err", err)
			m.notice = "Session not saved: " + err.Error()
		}
		current.Cancel()
		m.screen = tasksScreen{model: m.newTasks()}
		m.showHelp = false
		return m, m.initScreen()
	}

	next, cmd := flow.Lift(current, msg, auth.Model.Update, wrapAuth)
	m.screen = authScreen{model: *next}
	return m, cmd
}

func (m Model) updateTasks(msg tea.Msg) (tea.Model, tea.Cmd) {
	current := m.Tasks()
	if current == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case tasklist.LogoutMsg:
		return m.signOut(*current, "")
	case tasklist.SessionExpiredMsg:
		m.logger.Info("session rejected by server, signing out")
		return m.signOut(*current, msg.Message)
	}

	next, cmd := flow.Lift(current, msg, tasklist.Model.Update, wrapTasks)
	m.screen = tasksScreen{model: *next}
	return m, cmd
}

func (m Model) signOut(tasks tasklist.Model, alert string) (tea.Model, tea.Cmd) {
	if err := m.session.Clear(); err != nil {
		m.logger.Error("clearing session", "err", err)
		m.notice = "Session not cleared: " + err.Error()
	}
	tasks.Cancel()

	a := m.newAuth()
	if alert != "" {
		a = a.WithAlert(alert)
	}
	m.screen = authScreen{model: a}
	m.showHelp = false
	return m, m.initScreen()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	switch s := m.screen.(type) {
	case authScreen:
		s.model.Cancel()
	case tasksScreen:
		s.model.Cancel()
	}
	return m, tea.Quit
}

func (m *Model) resizeScreen() {
	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
	switch s := m.screen.(type) {
	case authScreen:
		s.model.SetSize(w, h)
		m.screen = s
	case tasksScreen:
		s.model.SetSize(w, h)
		m.screen = s
	}
}

// View renders the active screen inside the header and status bar frame.
func (m Model) View() string {
	var content string
	switch s := m.screen.(type) {
	case authScreen:
		content = s.model.View()
	case tasksScreen:
		content = s.model.View()
	}
	if m.showHelp {
		content = m.help.View()
	}

	return m.layout.Frame("Simple Tasks", m.sessionStatus(), content, m.keyHints())
}

func (m Model) sessionStatus() string {
	status := "signed out"
	if m.Tasks() != nil {
		status = "signed in"
	}
	if m.opts.BaseURL != "" {
		status += " @ " + m.opts.BaseURL
	}
	return status
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.notice != "" {
		return m.notice
	}
	if m.showHelp {
		return "? close help"
	}

	t := m.Tasks()
	switch {
	case t == nil:
		return "tab switch field | enter log in | ctrl+r register | ctrl+c quit"
	case t.Form() != nil:
		return "enter next/submit | esc cancel"
	case t.Detail() != nil:
		return "e edit | esc back"
	default:
		return "q quit | ? help | n new | d delete | r refresh | L log out"
	}
}
