package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
)

// Colour palette shared by the command output.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
	colourInfo    = lipgloss.Color("#06B6D4")
	colourBorder  = lipgloss.Color("#45475A")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colourPrimary)
	mutedStyle  = lipgloss.NewStyle().Foreground(colourMuted)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(colourBorder)
)

// runStateStyle colours a run-state by outcome.
func runStateStyle(rs domain.RunState) lipgloss.Style {
	switch rs {
	case domain.RunStateComplete:
		return cellStyle.Foreground(colourSuccess)
	case domain.RunStateIncomplete:
		return cellStyle.Foreground(colourError)
	case domain.RunStateRateLimited:
		return cellStyle.Foreground(colourWarning)
	case domain.RunStateRunning:
		return cellStyle.Foreground(colourInfo)
	default:
		return cellStyle.Foreground(colourMuted)
	}
}

// runStateLabel renders an unset run-state as a dash.
func runStateLabel(rs domain.RunState) string {
	if rs == domain.RunStateUnset {
		return "-"
	}
	return string(rs)
}

// streamLabel renders a key as namespace.name, or name alone.
func streamLabel(key domain.StreamKey) string {
	if !key.HasNamespace() {
		return key.Name
	}
	return key.Namespace + "." + key.Name
}
