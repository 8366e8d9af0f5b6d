package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/routineapp/routine/models"
	"github.com/routineapp/routine/pomodoro"
)

var (
	// Colors
	ColorPrimary   = lipgloss.Color("205") // Pink
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("160") // Red
	ColorWarning   = lipgloss.Color("214") // Orange/Yellow
	ColorText      = lipgloss.Color("252") // White/Gray

	// Phase colors, kept from the original timer widget.
	ColorFocus      = lipgloss.Color("#58D68D")
	ColorShortBreak = lipgloss.Color("#5DADE2")
	ColorLongBreak  = lipgloss.Color("#AF7AC5")

	// Base Styles
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)

	StyleTimerBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(1, 3)

	StyleClock = lipgloss.NewStyle().Bold(true)

	StyleStudyTime = lipgloss.NewStyle().Foreground(ColorSuccess)
)

// PhaseStyle returns the styled label color for a phase.
func PhaseStyle(p pomodoro.Phase) lipgloss.Style {
	switch p {
	case pomodoro.PhaseShortBreak:
		return lipgloss.NewStyle().Foreground(ColorShortBreak).Bold(true)
	case pomodoro.PhaseLongBreak:
		return lipgloss.NewStyle().Foreground(ColorLongBreak).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(ColorFocus).Bold(true)
	}
}

// PriorityIcon returns the marker the original list used per priority.
func PriorityIcon(p models.TaskPriority) string {
	switch p {
	case models.PriorityHigh:
		return StyleError.Render("●")
	case models.PriorityLow:
		return StyleSuccess.Render("●")
	default:
		return StyleSubtle.Render("●")
	}
}
