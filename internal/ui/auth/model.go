// Package auth implements the sign-in screen: an email and password form
// that logs in or registers and reports the session token upward.
package auth

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/simpletasks/internal/api"
	"github.com/nhle/simpletasks/internal/flow"
	"github.com/nhle/simpletasks/internal/keys"
	"github.com/nhle/simpletasks/internal/theme"
)

// requestFamily is shared by login and register: one submission at a time.
const requestFamily = "auth"

// Kind selects which endpoint a submission goes to.
type Kind int

const (
	KindLogin Kind = iota
	KindRegister
)

func (k Kind) String() string {
	if k == KindRegister {
		return "register"
	}
	return "login"
}

// State is the observable state of the screen.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateError
)

// EmailChangedMsg replaces the email field.
type EmailChangedMsg struct{ Value string }

// PasswordChangedMsg replaces the password field.
type PasswordChangedMsg struct{ Value string }

// SubmitMsg sends the credentials. It is ignored unless both fields are
// filled in.
type SubmitMsg struct{ Kind Kind }

// AlertDismissedMsg closes the failure alert.
type AlertDismissedMsg struct{}

// AuthenticatedMsg is emitted upward once the server hands out a token.
// The screen does not store the token itself.
type AuthenticatedMsg struct{ Token string }

type authResponseMsg struct {
	ticket flow.Ticket
	kind   Kind
	token  string
	err    error
}

const (
	fieldEmail = iota
	fieldPassword
)

// Model is the Bubble Tea model for the sign-in screen.
type Model struct {
	api      api.Service
	keys     *keys.KeyMap
	requests *flow.Requests

	email    textinput.Model
	password textinput.Model
	focus    int

	submitting bool
	kind       Kind
	alert      string

	spinner spinner.Model
	help    help.Model
	width   int
	height  int
}

// New creates an empty sign-in screen.
func New(svc api.Service, k *keys.KeyMap) Model {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email    "
	email.CharLimit = 254
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		api:      svc,
		keys:     k,
		requests: flow.NewRequests(),
		email:    email,
		password: password,
		spinner:  sp,
		help:     help.New(),
	}
}

// WithAlert returns m showing message as a dismissible alert.
func (m Model) WithAlert(message string) Model {
	m.alert = message
	return m
}

// Init starts the cursor blink and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Email returns the entered email.
func (m Model) Email() string { return m.email.Value() }

// Password returns the entered password.
func (m Model) Password() string { return m.password.Value() }

// Alert returns the message of the open alert, or "".
func (m Model) Alert() string { return m.alert }

// CanSubmit reports whether both fields are filled in. No format check is
// done; the server decides whether the credentials are any good.
func (m Model) CanSubmit() bool {
	return m.email.Value() != "" && m.password.Value() != ""
}

// State reports the current state.
func (m Model) State() State {
	switch {
	case m.submitting:
		return StateSubmitting
	case m.alert != "":
		return StateError
	default:
		return StateIdle
	}
}

// Cancel abandons any in-flight submission. The parent calls it when the
// screen is torn down.
func (m Model) Cancel() {
	m.requests.CancelAll()
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
}

// Update handles messages for the sign-in screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EmailChangedMsg:
		m.email.SetValue(msg.Value)
		return m, nil

	case PasswordChangedMsg:
		m.password.SetValue(msg.Value)
		return m, nil

	case SubmitMsg:
		return m.submit(msg.Kind)

	case authResponseMsg:
		if !m.requests.Settle(msg.ticket) {
			return m, nil
		}
		m.submitting = false
		if msg.err != nil {
			if f := api.AsFailure(msg.err); f != nil {
				m.alert = f.Message
			}
			return m, nil
		}
		return m, flow.Emit(AuthenticatedMsg{Token: msg.token})

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

	return m.updateFocused(msg)
}

func (m Model) submit(kind Kind) (Model, tea.Cmd) {
	if !m.CanSubmit() {
		return m, nil
	}

	m.submitting = true
	m.kind = kind
	m.alert = ""

	email, password := m.email.Value(), m.password.Value()
	call := m.api.Login
	if kind == KindRegister {
		call = m.api.Register
	}

	ctx, ticket := m.requests.Begin(requestFamily)
	return m, flow.Effect(ctx,
		func(ctx context.Context) (string, error) {
			return call(ctx, email, password)
		},
		func(token string, err error) tea.Msg {
			return authResponseMsg{ticket: ticket, kind: kind, token: token, err: err}
		},
	)
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.alert != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			return m, flow.Emit(AlertDismissedMsg{})
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Register):
		return m, flow.Emit(SubmitMsg{Kind: KindRegister})

	case key.Matches(msg, m.keys.Login):
		return m, flow.Emit(SubmitMsg{Kind: KindLogin})

	case key.Matches(msg, m.keys.NextField, m.keys.PrevField):
		return m, m.toggleFocus()
	}

	return m.updateFocused(msg)
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == fieldEmail {
		m.focus = fieldPassword
		m.email.Blur()
		return m.password.Focus()
	}
	m.focus = fieldEmail
	m.password.Blur()
	return m.email.Focus()
}

func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == fieldEmail {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// View renders the sign-in screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.HeaderStyle.Render("Simple Tasks"))
	b.WriteString("\n\n")

	b.WriteString(m.renderInput(m.email, m.focus == fieldEmail))
	b.WriteString("\n")
	b.WriteString(m.renderInput(m.password, m.focus == fieldPassword))
	b.WriteString("\n\n")

	switch m.State() {
	case StateSubmitting:
		b.WriteString(m.spinner.View() + " " + submittingLabel(m.kind))
	case StateError:
		b.WriteString(theme.RenderAlert(m.alert))
	default:
		if m.CanSubmit() {
			b.WriteString(m.help.ShortHelpView(m.keys.AuthHelp()))
		} else {
			b.WriteString(theme.DimmedStyle.Render("Enter your email and password"))
		}
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) renderInput(in textinput.Model, focused bool) string {
	if focused {
		return theme.FocusedInputStyle.Render("> ") + in.View()
	}
	return "  " + in.View()
}

func submittingLabel(k Kind) string {
	if k == KindRegister {
		return "Creating account..."
	}
	return "Signing in..."
}
