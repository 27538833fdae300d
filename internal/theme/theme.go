// Package theme holds the colors and lipgloss styles shared by every screen.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/simpletasks/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
)

// Frame styles.
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorBlue).
			Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorSubtle).
			Padding(0, 1)

	// DetailPanelStyle boxes the task detail and the help overlay.
	DetailPanelStyle = lipgloss.NewStyle().
				Padding(1, 2).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorSubtle)
)

// Task rows.
var (
	ListItemStyle = lipgloss.NewStyle().PaddingLeft(2)

	SelectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Bold(true).
				Foreground(ColorBlue).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(ColorBlue)

	// OverdueStyle marks due dates that have passed.
	OverdueStyle = lipgloss.NewStyle().Foreground(ColorRed)
)

// Text styles.
var (
	HelpStyle         = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)
	DimmedStyle       = lipgloss.NewStyle().Foreground(ColorGray)
	FocusedInputStyle = lipgloss.NewStyle().Foreground(ColorBlue)

	AlertStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorRed).
			Foreground(ColorRed)
)

// PriorityStyle colors a priority label: high red, normal yellow, low blue.
func PriorityStyle(p model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch p {
	case model.PriorityHigh:
		return base.Foreground(ColorRed)
	case model.PriorityNormal:
		return base.Foreground(ColorYellow)
	case model.PriorityLow:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// RenderAlert draws a failure message with a dismiss hint.
func RenderAlert(message string) string {
	return AlertStyle.Render(message + "\n\n" + HelpStyle.Render("esc to dismiss"))
}
