package tui

import (
	"context"
	"fmt"
	"time"

	"captionburn/transcode"

	tea "github.com/charmbracelet/bubbletea"
)

// State represents the render state machine
type State string

const (
	StatePreparing State = "preparing"
	StateRendering State = "rendering"
	StateComplete  State = "complete"
	StateError     State = "error"
)

const maxLogs = 8

// LogEntry represents a single log line with timestamp
type LogEntry struct {
	Timestamp time.Time
	Message   string
}

// Model is the progress view of one local render.
type Model struct {
	Title   string
	State   State
	Percent float64
	Command string
	Logs    []LogEntry
	Result  *transcode.Result
	Err     error

	cancel context.CancelFunc
	now    func() time.Time
}

// NewModel creates a model; cancel is called when the user quits early.
func NewModel(title string, cancel context.CancelFunc) Model {
	return Model{
		Title:  title,
		State:  StatePreparing,
		Logs:   make([]LogEntry, 0, maxLogs),
		cancel: cancel,
		now:    time.Now,
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return nil
}

// AddLog appends a log line, keeping the most recent entries.
func (m Model) AddLog(message string) Model {
	logs := append(append([]LogEntry(nil), m.Logs...), LogEntry{Timestamp: m.now(), Message: message})
	if len(logs) > maxLogs {
		logs = logs[len(logs)-maxLogs:]
	}
	m.Logs = logs
	return m
}

func (m Model) getStateText() string {
	switch m.State {
	case StatePreparing:
		return phaseStyle.Render("⏳ Staging inputs...")
	case StateRendering:
		return phaseStyle.Render(fmt.Sprintf("🎬 Burning captions... %.0f%%", m.Percent))
	case StateComplete:
		return doneBadgeStyle.Render("✅ rendered")
	case StateError:
		errMsg := "Unknown error"
		if m.Err != nil {
			errMsg = m.Err.Error()
		}
		return failedStyle.Render(fmt.Sprintf("❌ Error: %v", errMsg))
	default:
		return ""
	}
}
