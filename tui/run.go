package tui

import (
	"context"
	"errors"
	"fmt"

	"captionburn/transcode"
	"captionburn/video"

	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc runs the job whose progress is displayed.
type RenderFunc func(ctx context.Context, obs video.Observer) (*transcode.Result, error)

// Run shows the progress view while render executes and returns its outcome.
// Quitting the view cancels the render.
func Run(ctx context.Context, title string, render RenderFunc, opts ...tea.ProgramOption) (*transcode.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewModel(title, cancel), append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)

	done := make(chan DoneMsg, 1)
	go func() {
		obs := video.ObserverFuncs{
			Start:    func(cmd string) { program.Send(StartedMsg{CommandLine: cmd}) },
			Progress: func(p float64) { program.Send(ProgressMsg{Percent: p}) },
		}
		res, err := render(ctx, obs)
		msg := DoneMsg{Result: res, Err: err}
		done <- msg
		program.Send(msg)
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-done
		return nil, fmt.Errorf("run progress view: %w", err)
	}

	cancel()
	msg := <-done
	return msg.Result, msg.Err
}
