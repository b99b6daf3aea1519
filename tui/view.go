package tui

import (
	"fmt"
	"strings"
)

const barWidth = 40

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎞  " + m.Title))
	b.WriteString("\n\n")

	b.WriteString(m.getStateText())
	b.WriteString("\n\n")

	if m.State == StateRendering || m.State == StateComplete {
		b.WriteString(progressBar(m.Percent, barWidth))
		b.WriteString("\n\n")
	}

	if len(m.Logs) > 0 {
		b.WriteString(logStyle.Render("ffmpeg log"))
		b.WriteString("\n")
		for _, entry := range m.Logs {
			line := fmt.Sprintf("   %s %s", entry.Timestamp.Format("15:04:05"), entry.Message)
			b.WriteString(logStyle.Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.State == StateComplete && m.Result != nil {
		b.WriteString(resultBoxStyle.Render(m.formatResult()))
		b.WriteString("\n\n")
	}

	if m.State == StateComplete || m.State == StateError {
		b.WriteString(hintStyle.Render("q: exit"))
	} else {
		b.WriteString(hintStyle.Render("q / ctrl+c: cancel render"))
	}
	return b.String()
}

func (m Model) formatResult() string {
	var b strings.Builder
	b.WriteString(doneBadgeStyle.Render("export"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Job: %s\n", m.Result.JobID))
	b.WriteString(fmt.Sprintf("Type: %s\n", m.Result.ContentType))
	b.WriteString(fmt.Sprintf("URL: %s", urlStyle.Render(m.Result.URL)))
	return b.String()
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %3.0f%%", percent)
}
