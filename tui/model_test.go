package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"captionburn/transcode"

	tea "github.com/charmbracelet/bubbletea"
)

func TestUpdateTracksRender(t *testing.T) {
	m := NewModel("render", nil)
	m.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }

	next, _ := m.Update(StartedMsg{CommandLine: "ffmpeg -i in.mp4"})
	m = next.(Model)
	if m.State != StateRendering || m.Command != "ffmpeg -i in.mp4" {
		t.Fatalf("state after start = %+v", m)
	}

	for _, p := range []float64{20, 10, 60} {
		next, _ = m.Update(ProgressMsg{Percent: p})
		m = next.(Model)
	}
	if m.Percent != 60 {
		t.Fatalf("percent = %v; want 60", m.Percent)
	}
	if !strings.Contains(m.View(), "60%") {
		t.Fatalf("view missing progress:\n%s", m.View())
	}

	next, cmd := m.Update(DoneMsg{Result: &transcode.Result{JobID: "j", StorageID: "a.mp4", URL: "file:///tmp/a.mp4", Size: 2048}})
	m = next.(Model)
	if m.State != StateComplete || m.Percent != 100 || cmd == nil {
		t.Fatalf("state after done = %+v", m)
	}
	view := m.View()
	for _, want := range []string{"file:///tmp/a.mp4", "rendered", "q: exit"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestViewShowsCancelHintWhileRendering(t *testing.T) {
	m := NewModel("render", nil)
	next, _ := m.Update(ProgressMsg{Percent: 5})
	view := next.(Model).View()
	if !strings.Contains(view, "Burning captions") || !strings.Contains(view, "cancel render") {
		t.Fatalf("unexpected rendering view:\n%s", view)
	}
}

func TestUpdateRecordsFailure(t *testing.T) {
	m := NewModel("render", nil)
	next, _ := m.Update(DoneMsg{Err: errors.New("Transcoding failed: exit 1")})
	m = next.(Model)
	if m.State != StateError || !strings.Contains(m.View(), "exit 1") {
		t.Fatalf("unexpected model: %+v", m)
	}
}

func TestQuitCancelsRender(t *testing.T) {
	canceled := false
	m := NewModel("render", func() { canceled = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !canceled || cmd == nil {
		t.Fatal("quitting should cancel the render")
	}
}

func TestLogsAreBounded(t *testing.T) {
	m := NewModel("render", nil)
	for i := 0; i < maxLogs+5; i++ {
		m = m.AddLog("line")
	}
	if len(m.Logs) != maxLogs {
		t.Fatalf("logs = %d; want %d", len(m.Logs), maxLogs)
	}
}

func TestProgressBarClamps(t *testing.T) {
	if got := progressBar(150, 10); !strings.Contains(got, strings.Repeat("█", 10)) {
		t.Fatalf("bar = %q", got)
	}
	if got := progressBar(-5, 10); strings.Contains(got, "█") {
		t.Fatalf("bar = %q", got)
	}
}

