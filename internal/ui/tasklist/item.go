package tasklist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/simpletasks/internal/model"
	"github.com/nhle/simpletasks/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
	now  func() time.Time
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	return string(i.Task.Priority) + " | " + dueLabel(i.Task, clock(i.now))
}

// ItemDelegate implements list.ItemDelegate for rendering list items.
type ItemDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	task := ti.Task
	now := clock(d.now)

	priBadge := theme.PriorityStyle(task.Priority).Render(priorityLabel(task.Priority))

	dueStr := ""
	if due, ok := task.Due(); ok {
		style := lipgloss.NewStyle().Foreground(theme.ColorGray)
		if due.Before(now) {
			style = theme.OverdueStyle
		}
		dueStr = "  " + style.Render(dueLabel(task, now))
	}

	line := fmt.Sprintf("%s %s%s", priBadge, task.Title, dueStr)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// dueLabel returns a human-friendly due string relative to now.
func dueLabel(task model.Task, now time.Time) string {
	due, ok := task.Due()
	if !ok {
		return "no due date"
	}

	d := due.Sub(now)
	if d < 0 {
		return "overdue " + due.Format("Jan 02")
	}
	switch {
	case d < time.Hour:
		return fmt.Sprintf("due in %dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("due in %dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("due in %dd", int(d.Hours()/24))
	default:
		return "due " + due.Format("Jan 02")
	}
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "!!!"
	case model.PriorityNormal:
		return " !!"
	case model.PriorityLow:
		return "  !"
	default:
		return "  ?"
	}
}

func toItems(tasks []model.Task, now func() time.Time) []list.Item {
	items := make([]list.Item, len(tasks))
	for i, task := range tasks {
		items[i] = TaskItem{Task: task, now: now}
	}
	return items
}

// clock reads now, falling back to the wall clock.
func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
