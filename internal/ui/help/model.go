package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/simpletasks/internal/keys"
	"github.com/nhle/simpletasks/internal/theme"
)

// section is one titled group of bindings in the overlay.
type section struct {
	title    string
	bindings [][]key.Binding
}

// Model is the keyboard shortcut overlay toggled with ?.
type Model struct {
	sections []section
	help     help.Model
	width    int
}

// New creates the overlay for k.
func New(k *keys.KeyMap, width, height int) Model {
	full := k.FullHelp()
	m := Model{
		sections: []section{
			{title: "Tasks", bindings: full[:2]},
			{title: "Sign in", bindings: full[2:3]},
			{title: "General", bindings: full[3:]},
		},
		help: help.New(),
	}
	m.SetSize(width, height)
	return m
}

// View renders every section under the "Keyboard Shortcuts" title.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	for _, s := range m.sections {
		b.WriteString("\n\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		b.WriteString(m.help.FullHelpView(s.bindings))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("ctrl+c quits from any screen"))

	return theme.DetailPanelStyle.
		Width(max(m.width-4, 20)).
		Render(b.String())
}

// SetSize updates the overlay width. The overlay grows with its content,
// so height is unused.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.help.Width = max(width-8, 20)
}
