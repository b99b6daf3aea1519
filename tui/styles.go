package tui

import "github.com/charmbracelet/lipgloss"

// Render view palette
const (
	colorCaption = "#F5C518"
	colorDone    = "#3FB950"
	colorFailed  = "#F85149"
	colorMuted   = "#8B949E"
	colorInk     = "#0D1117"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorCaption)).
			MarginTop(1)

	phaseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorCaption))
	failedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorFailed))
	logStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))
	hintStyle   = lipgloss.NewStyle().Faint(true)
	urlStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorDone))

	// doneBadgeStyle marks the finished export, like a burned-in caption box.
	doneBadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorInk)).
			Background(lipgloss.Color(colorCaption)).
			Padding(0, 1)

	resultBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false).
			BorderForeground(lipgloss.Color(colorDone)).
			Padding(0, 1)

	barFilledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorCaption))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))
)
