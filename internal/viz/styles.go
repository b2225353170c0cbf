package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ffff")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	statusRunning  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	statusPaused   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	statusAlert    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
	statusInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))

	sparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	sparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	sparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
)

// ProgressBar renders percent in [0, 1] as a bar of the given width.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// UsageBar colours |v|/limit, red when close to the bound.
func UsageBar(v, limit float64, width int) string {
	if limit <= 0 {
		return ProgressBar(0, width)
	}
	if v < 0 {
		v = -v
	}
	frac := v / limit
	bar := ProgressBar(frac, width)
	switch {
	case frac > 0.9:
		return sparkHigh.Render(bar)
	case frac > 0.5:
		return sparkMid.Render(bar)
	}
	return sparkLow.Render(bar)
}
