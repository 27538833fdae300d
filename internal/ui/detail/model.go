package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/simpletasks/internal/keys"
	"github.com/nhle/simpletasks/internal/model"
	"github.com/nhle/simpletasks/internal/theme"
)

// DateLayout renders due dates in the detail view.
const DateLayout = "Jan 2, 2006"

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// EditMsg asks the parent to open the form in update mode for Task.
type EditMsg struct {
	Task model.Task
}

// Model is the task detail view component.
type Model struct {
	task     model.Task
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a detail view showing task.
func New(task model.Task, keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, max(height-2, 1))
	vp.Style = lipgloss.NewStyle()

	m := Model{
		task:     task,
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
	m.viewport.SetContent(m.renderContent())
	return m
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Task returns the task being shown.
func (m Model) Task() model.Task {
	return m.task
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Edit):
			task := m.task
			return m, func() tea.Msg { return EditMsg{Task: task} }
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	help := theme.HelpStyle.Render("e edit • esc back")
	return theme.DetailPanelStyle.Render(m.viewport.View()) + "\n" + help
}

// DueText is the due date as the detail view shows it.
func DueText(task model.Task) string {
	due, ok := task.Due()
	if !ok {
		return "Unspecified"
	}
	return due.Format(DateLayout)
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	task := m.task
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(task.Title))

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-8, 80), 10)))
	sections = append(sections, separator)

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections, fmt.Sprintf(
		"%s  %s",
		metaStyle.Render("Priority:"),
		theme.PriorityStyle(task.Priority).Render(string(task.Priority)),
	))
	sections = append(sections, fmt.Sprintf(
		"%s       %s",
		metaStyle.Render("Due:"),
		valStyle.Render(DueText(task)),
	))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetTask updates the task being displayed and re-renders the content.
func (m *Model) SetTask(task model.Task) {
	m.task = task
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 4
	m.viewport.Height = max(height-4, 1)
	m.viewport.SetContent(m.renderContent())
}
