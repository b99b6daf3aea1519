package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"captionburn/config"
)

const (
	stderrTailBytes = 16 * 1024
	stderrTailLines = 6
)

// Observer receives the non-terminal lifecycle events of a render.
// Events are delivered on the rendering goroutine and have no effect on control flow.
type Observer interface {
	OnStart(commandLine string)
	OnProgress(percent float64)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	Start    func(commandLine string)
	Progress func(percent float64)
}

func (o ObserverFuncs) OnStart(commandLine string) {
	if o.Start != nil {
		o.Start(commandLine)
	}
}

func (o ObserverFuncs) OnProgress(percent float64) {
	if o.Progress != nil {
		o.Progress(percent)
	}
}

// Renderer runs one render job to completion. The returned error is the terminal event.
type Renderer interface {
	Render(ctx context.Context, job Job, obs Observer) error
}

// RenderError carries the renderer's own diagnostic output.
type RenderError struct {
	Detail string
	Err    error
}

func (e *RenderError) Error() string {
	return "ffmpeg failed: " + e.Detail
}

func (e *RenderError) Unwrap() error { return e.Err }

// DurationProber reports the duration of a media input.
type DurationProber func(ctx context.Context, input string) (time.Duration, error)

// FFmpegRenderer runs ffmpeg as a subprocess and parses its progress output.
type FFmpegRenderer struct {
	ffmpegPath string
	probe      DurationProber
	logger     *slog.Logger
}

// NewFFmpegRenderer creates a renderer. A nil prober disables percentage progress.
func NewFFmpegRenderer(ffmpegPath string, probe DurationProber, logger *slog.Logger) *FFmpegRenderer {
	if ffmpegPath == "" {
		ffmpegPath = config.DefaultFFmpegPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FFmpegRenderer{ffmpegPath: ffmpegPath, probe: probe, logger: logger}
}

// Render executes the job and blocks until ffmpeg exits.
func (r *FFmpegRenderer) Render(ctx context.Context, job Job, obs Observer) error {
	if obs == nil {
		obs = ObserverFuncs{}
	}

	var duration time.Duration
	if r.probe != nil {
		d, err := r.probe(ctx, job.VideoInput)
		if err != nil {
			r.logger.Warn("probe failed; progress percentage unavailable", slog.String("error", err.Error()))
		} else {
			duration = d
		}
	}

	args := append([]string{"-hide_banner", "-nostats", "-progress", "pipe:1"}, Args(job)...)
	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &RenderError{Detail: err.Error(), Err: err}
	}
	stderr := newTailBuffer(stderrTailBytes)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return &RenderError{Detail: err.Error(), Err: err}
	}
	obs.OnStart(r.ffmpegPath + " " + strings.Join(args, " "))

	done := make(chan struct{})
	go func() {
		defer close(done)
		newProgressParser(duration, obs.OnProgress).consume(stdout)
	}()
	// all progress is delivered before the terminal result
	<-done

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &RenderError{Detail: "render canceled: " + ctxErr.Error(), Err: ctxErr}
		}
		detail := stderr.lastLines(stderrTailLines)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail = fmt.Sprintf("ffmpeg exited with code %d: %s", exitErr.ExitCode(), detail)
		} else if detail == "" {
			detail = err.Error()
		}
		return &RenderError{Detail: strings.TrimSpace(detail), Err: err}
	}
	return nil
}
