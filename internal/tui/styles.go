// Package tui provides a Bubble Tea live view of an in-flight dispatch.
//
// TUI rules, adapted from the teacher's CONTRACT_CLI.md conventions:
//   - TUI is opt-in only (--tui flag)
//   - TUI renders the same ProviderSnapshot/ProviderResult data the
//     non-TUI stdout/JSON rendering path uses; no TUI-exclusive data
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	successColor   = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
)

var (
	// TitleStyle for the header line.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// LabelStyle for the provider id column.
	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(14)

	// ValueStyle for plain values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// SuccessStyle for exited_ok.
	SuccessStyle = lipgloss.NewStyle().Foreground(successColor)

	// WarningStyle for running/stalling/cancelling.
	WarningStyle = lipgloss.NewStyle().Foreground(warningColor)

	// ErrorStyle for exited_err/cancelled_*/spawn_failed.
	ErrorStyle = lipgloss.NewStyle().Foreground(errorColor)

	// MutedStyle for skipped/pending.
	MutedStyle = lipgloss.NewStyle().Foreground(mutedColor)

	// BoxStyle frames the whole provider table.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	// HelpStyle for the footer line.
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)

// RunStateStyle returns the style to render a RunState value with.
func RunStateStyle(state string) lipgloss.Style {
	switch state {
	case "exited_ok":
		return SuccessStyle
	case "running", "stalling", "cancelling", "admitted", "spawning":
		return WarningStyle
	case "exited_err", "cancelled_stall", "cancelled_hard", "spawn_failed":
		return ErrorStyle
	case "skipped_undetected", "pending":
		return MutedStyle
	default:
		return ValueStyle
	}
}
