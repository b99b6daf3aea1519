package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"captionburn/config"
	"captionburn/jobstate"
	"captionburn/logging"
	"captionburn/shared/kafka"
	"captionburn/transcode"
	"captionburn/types"

	"github.com/google/uuid"
)

// Transcoder runs a single export.
type Transcoder interface {
	Transcode(ctx context.Context, req types.TranscodeRequest, opts transcode.Options) (*transcode.Result, error)
}

// Publisher sends completion events.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Publish retry delays. The delay doubles per attempt up to the max.
const (
	publishRetryBase = 500 * time.Millisecond
	publishRetryMax  = 30 * time.Second
)

// Worker turns export requests into completion events, one per consumed request.
type Worker struct {
	transcoder Transcoder
	publisher  Publisher
	tracker    *jobstate.Tracker
	logger     *slog.Logger

	retryBase time.Duration
	retryMax  time.Duration
}

// New creates a worker. tracker may be nil.
func New(transcoder Transcoder, publisher Publisher, tracker *jobstate.Tracker, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		transcoder: transcoder,
		publisher:  publisher,
		tracker:    tracker,
		logger:     logging.NewComponentLogger(logger, "worker"),
		retryBase:  publishRetryBase,
		retryMax:   publishRetryMax,
	}
}

// Handler adapts the worker to the Kafka consumer.
func (w *Worker) Handler() *kafka.TypedMessageHandler[types.ExportRequested] {
	return &kafka.TypedMessageHandler[types.ExportRequested]{
		Validate: func(msg *types.ExportRequested) bool {
			if msg.Project.ID == "" {
				w.logger.Warn("skipping export request without project id")
				return false
			}
			return true
		},
		Process:    w.Handle,
		AlwaysMark: true,
		Logger:     w.logger,
	}
}

// Handle runs one export and publishes its outcome. The publish is retried
// until it succeeds or ctx ends; only then is an error returned, and the
// consumer stops the claim so the request is redelivered.
func (w *Worker) Handle(ctx context.Context, msg *types.ExportRequested) error {
	jobID := msg.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	logger := w.logger.With(slog.String(logging.FieldJobID, jobID), slog.String(logging.FieldProjectID, msg.Project.ID))
	logger.Info("export requested")

	w.track(ctx, logger, func(t *jobstate.Tracker) error { return t.Queue(ctx, jobID) })

	completed := w.export(ctx, jobID, msg.Project, logger)

	if completed.Status == types.ExportSucceeded {
		w.track(ctx, logger, func(t *jobstate.Tracker) error {
			return t.Succeed(ctx, jobID, completed.StorageID, completed.URL)
		})
	} else {
		w.track(ctx, logger, func(t *jobstate.Tracker) error {
			return t.Fail(ctx, jobID, completed.ErrorKind, completed.Error)
		})
	}

	if err := w.publish(ctx, msg.Project.ID, completed, logger); err != nil {
		return fmt.Errorf("publish completion for job %s: %w", jobID, err)
	}
	logger.Info("export completed", slog.String("status", string(completed.Status)))
	return nil
}

func (w *Worker) publish(ctx context.Context, key string, completed types.ExportCompleted, logger *slog.Logger) error {
	delay := w.retryBase
	for attempt := 1; ; attempt++ {
		err := w.publisher.PublishJSON(ctx, key, completed)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		logger.Warn("publish failed; retrying",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		delay = min(delay*2, w.retryMax)
	}
}

func (w *Worker) export(ctx context.Context, jobID string, project types.Project, logger *slog.Logger) types.ExportCompleted {
	completed := types.ExportCompleted{JobID: jobID, ProjectID: project.ID}

	req, err := types.NewExportRequest(project)
	if err != nil {
		completed.Status = types.ExportFailed
		completed.ErrorKind = string(transcode.KindInvalidParameter)
		completed.Error = err.Error()
		logger.Warn("export rejected", slog.String("error", err.Error()))
		return completed
	}

	opts := transcode.Options{JobID: jobID}
	if w.tracker != nil {
		opts.Observer = w.tracker.Observer(ctx, jobID)
	}

	res, err := w.transcoder.Transcode(ctx, req, opts)
	if err != nil {
		completed.Status = types.ExportFailed
		completed.ErrorKind = string(transcode.KindOf(err))
		completed.Error = FriendlyError(err)
		logger.Error("export failed", slog.String("error", err.Error()))
		return completed
	}

	completed.Status = types.ExportSucceeded
	completed.StorageID = res.StorageID
	completed.URL = res.URL
	return completed
}

func (w *Worker) track(ctx context.Context, logger *slog.Logger, fn func(*jobstate.Tracker) error) {
	if w.tracker == nil || ctx.Err() != nil {
		return
	}
	if err := fn(w.tracker); err != nil {
		logger.Warn("job status update failed", slog.String("error", err.Error()))
	}
}

// maxErrorLen bounds the error text carried in completion events.
const maxErrorLen = 200

// FriendlyError turns a job error into text fit for end users.
func FriendlyError(err error) string {
	if transcode.KindOf(err) == transcode.KindStorageUnavailable {
		return "Video processing service is temporarily unavailable. Please try again later."
	}
	msg := err.Error()
	if len(msg) > maxErrorLen {
		cut := maxErrorLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	return msg
}

// Run consumes export requests until ctx is canceled.
func Run(ctx context.Context, cfg config.Kafka, w *Worker, logger *slog.Logger) error {
	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.RequestTopic,
		GroupID: cfg.GroupID,
		Handler: w.Handler(),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	if err := consumer.Start(ctx); err != nil {
		consumer.Close()
		return err
	}

	<-ctx.Done()
	// let in-flight handlers observe cancellation before leaving the group
	time.Sleep(2 * time.Second)
	return consumer.Close()
}
