package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case StartedMsg:
		m.State = StateRendering
		m.Command = msg.CommandLine
		return m.AddLog("ffmpeg started"), nil
	case ProgressMsg:
		if msg.Percent > m.Percent {
			m.Percent = msg.Percent
		}
		m.State = StateRendering
		return m, nil
	case DoneMsg:
		return m.handleDone(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleDone(msg DoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m.AddLog("render failed"), tea.Quit
	}
	m.State = StateComplete
	m.Percent = 100
	m.Result = msg.Result
	if msg.Result != nil {
		m = m.AddLog(fmt.Sprintf("stored %s (%s)", msg.Result.StorageID, humanize.Bytes(uint64(msg.Result.Size))))
	}
	return m, tea.Quit
}
