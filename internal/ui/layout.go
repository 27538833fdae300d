package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/simpletasks/internal/theme"
)

// Layout splits the terminal into a one-row header, the active screen and
// a one-row status bar.
type Layout struct {
	Width  int
	Height int
}

// chromeRows is the number of rows taken by the header and status bar.
const chromeRows = 2

// NewLayout creates a Layout for a terminal of the given size.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth returns the width available to the active screen.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the rows left for the active screen. It never
// drops below one row.
func (l Layout) ContentHeight() int {
	return max(l.Height-chromeRows, 1)
}

// Frame joins the header, the active screen and the status bar. The header
// shows title on the left and status on the right; the status bar shows
// hints.
func (l Layout) Frame(title, status, content, hints string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		l.bar(theme.HeaderStyle, title, status),
		content,
		l.bar(theme.StatusBarStyle, hints, ""),
	)
}

// bar renders left and right aligned text on a full-width row of style.
func (l Layout) bar(style lipgloss.Style, left, right string) string {
	leftRendered := style.Render(left)
	var rightRendered string
	if right != "" {
		rightRendered = style.Render(right)
	}

	gap := max(l.Width-lipgloss.Width(leftRendered)-lipgloss.Width(rightRendered), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, leftRendered, filler, rightRendered)
}
