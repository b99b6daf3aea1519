package jobstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"captionburn/logging"
	"captionburn/video"
)

// ErrNotFound is returned for unknown job ids.
var ErrNotFound = errors.New("job not found")

// State is the lifecycle position of a tracked job.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Terminal reports whether no further transitions are accepted.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Status is the JSON view of a job returned by GET /api/jobs/:id.
type Status struct {
	JobID     string    `json:"job_id"`
	State     State     `json:"state"`
	Percent   float64   `json:"percent"`
	StorageID string    `json:"storage_id,omitempty"`
	URL       string    `json:"url,omitempty"`
	ErrorKind string    `json:"error_kind,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists job statuses.
type Store interface {
	Save(ctx context.Context, status Status) error
	Load(ctx context.Context, jobID string) (Status, error)
}

// Tracker records job transitions on top of a Store.
// Terminal states are final and progress never decreases.
type Tracker struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	// serializes read-modify-write per tracker
	mu sync.Mutex
}

func NewTracker(store Store, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{store: store, logger: logging.NewComponentLogger(logger, "jobstate"), now: time.Now}
}

// Queue registers a new job. Known jobs keep their current status.
func (t *Tracker) Queue(ctx context.Context, jobID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.store.Load(ctx, jobID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	return t.store.Save(ctx, Status{JobID: jobID, State: StateQueued, UpdatedAt: t.now()})
}

// Start marks the job running.
func (t *Tracker) Start(ctx context.Context, jobID string) error {
	return t.update(ctx, jobID, func(s *Status) {
		s.State = StateRunning
	})
}

// Progress records a completion percentage.
func (t *Tracker) Progress(ctx context.Context, jobID string, percent float64) error {
	return t.update(ctx, jobID, func(s *Status) {
		s.State = StateRunning
		if percent > s.Percent {
			s.Percent = min(percent, 100)
		}
	})
}

// Succeed records the stored artifact.
func (t *Tracker) Succeed(ctx context.Context, jobID, storageID, url string) error {
	return t.update(ctx, jobID, func(s *Status) {
		s.State = StateSucceeded
		s.Percent = 100
		s.StorageID = storageID
		s.URL = url
	})
}

// Fail records the terminal error.
func (t *Tracker) Fail(ctx context.Context, jobID, kind, message string) error {
	return t.update(ctx, jobID, func(s *Status) {
		s.State = StateFailed
		s.ErrorKind = kind
		s.Error = message
	})
}

// Get returns the current status of a job.
func (t *Tracker) Get(ctx context.Context, jobID string) (Status, error) {
	return t.store.Load(ctx, jobID)
}

func (t *Tracker) update(ctx context.Context, jobID string, apply func(*Status)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	status, err := t.store.Load(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if status.State.Terminal() {
		return nil
	}
	apply(&status)
	status.UpdatedAt = t.now()
	return t.store.Save(ctx, status)
}

// Observer forwards render events into the tracker. Tracking errors are logged only.
func (t *Tracker) Observer(ctx context.Context, jobID string) video.Observer {
	logger := t.logger.With(slog.String(logging.FieldJobID, jobID))
	report := func(err error) {
		if err != nil {
			logger.Warn("job status update failed", slog.String("error", err.Error()))
		}
	}
	return video.ObserverFuncs{
		Start:    func(string) { report(t.Start(ctx, jobID)) },
		Progress: func(percent float64) { report(t.Progress(ctx, jobID, percent)) },
	}
}
