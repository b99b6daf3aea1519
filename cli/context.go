package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"captionburn/common"
	"captionburn/config"
	"captionburn/jobstate"
	"captionburn/logging"
	"captionburn/storage"
	"captionburn/transcode"
	"captionburn/video"
)

type commandContext struct {
	configFlag *string

	once      sync.Once
	config    *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	initErr   error

	closers []io.Closer
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensure loads configuration and the logger once per invocation.
func (c *commandContext) ensure() (*config.Config, *slog.Logger, error) {
	c.once.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.initErr = err
			return
		}
		logger, closer, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Dir:    cfg.Logging.Dir,
		})
		if err != nil {
			c.initErr = err
			return
		}
		c.config, c.logger, c.logCloser = cfg, logger, closer
	})
	return c.config, c.logger, c.initErr
}

func (c *commandContext) close() error {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i].Close()
	}
	c.closers = nil
	if c.logCloser != nil {
		return c.logCloser.Close()
	}
	return nil
}

// services are the collaborators shared by the serve, consume and render commands.
type services struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        storage.Store
	orchestrator *transcode.Orchestrator
}

func (c *commandContext) buildServices(ctx context.Context, store storage.Store) (*services, error) {
	cfg, logger, err := c.ensure()
	if err != nil {
		return nil, err
	}

	var objects *common.S3
	if cfg.Storage.Backend == config.StorageS3 {
		objects, err = storage.NewS3Client(ctx, cfg.Storage.S3)
		if err != nil {
			return nil, err
		}
	}

	if store == nil {
		store, err = storage.New(ctx, cfg.Storage, objects, logger)
		if err != nil {
			return nil, err
		}
	}

	var fetcher *storage.Fetcher
	if objects != nil {
		fetcher = storage.NewFetcher(http.DefaultClient, objects)
	} else {
		fetcher = storage.NewFetcher(http.DefaultClient, nil)
	}

	renderer := video.NewFFmpegRenderer(cfg.Render.FFmpegPath, video.ProbeDuration, logging.NewComponentLogger(logger, "ffmpeg"))
	orch := transcode.New(cfg.Render, renderer, fetcher, store, logger)

	return &services{cfg: cfg, logger: logger, store: store, orchestrator: orch}, nil
}

// tracker returns a Redis-backed tracker when configured and an in-memory one otherwise.
func (c *commandContext) tracker(ctx context.Context, s *services) (*jobstate.Tracker, error) {
	if s.cfg.Redis.Addr == "" {
		return jobstate.NewTracker(jobstate.NewMemoryStore(), s.logger), nil
	}
	store, client, err := jobstate.DialRedis(ctx, s.cfg.Redis)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, client)
	return jobstate.NewTracker(store, s.logger), nil
}
