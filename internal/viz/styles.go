package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles derives the panel styles from the current theme.
type styles struct {
	canvas, panel, header, label, value, graph, help lipgloss.Style
	running, paused, failed                          lipgloss.Style
}

func currentStyles() styles {
	t := CurrentTheme
	return styles{
		canvas: lipgloss.NewStyle().Foreground(t.Stars).Padding(0, 1),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(0, 2).
			Width(42),
		header:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(11),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		graph:   lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		help:    lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		running: lipgloss.NewStyle().Foreground(t.Running).Bold(true),
		paused:  lipgloss.NewStyle().Foreground(t.Paused).Bold(true),
		failed:  lipgloss.NewStyle().Foreground(t.Error).Bold(true),
	}
}

var (
	barHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	barMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	barLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8f7cff"))
)

// ProgressBar renders a filled bar for a fraction in [0, 1].
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent >= 1 {
		return barHigh.Render(bar)
	} else if percent > 0.5 {
		return barMid.Render(bar)
	}
	return barLow.Render(bar)
}
