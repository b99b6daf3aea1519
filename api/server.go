package api

import (
	"context"
	"log/slog"
	"time"

	"captionburn/jobstate"
	"captionburn/logging"
	"captionburn/transcode"
	"captionburn/types"

	"github.com/gin-gonic/gin"
)

// Transcoder runs transcode jobs for the HTTP handlers.
type Transcoder interface {
	Transcode(ctx context.Context, req types.TranscodeRequest, opts transcode.Options) (*transcode.Result, error)
}

// Deps are the collaborators the router needs.
type Deps struct {
	Transcoder Transcoder
	// Tracker enables the async job routes when set.
	Tracker *jobstate.Tracker
	// ArtifactDir is served under /artifacts when set.
	ArtifactDir string
	// BaseContext bounds background jobs; defaults to context.Background.
	BaseContext context.Context
	Logger      *slog.Logger
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.BaseContext == nil {
		d.BaseContext = context.Background()
	}
	logger := logging.NewComponentLogger(d.Logger, "api")

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	RegisterHealthRoutes(r)
	RegisterTranscodeRoutes(r, d.Transcoder, logger)
	if d.Tracker != nil {
		RegisterJobRoutes(r, d.Transcoder, d.Tracker, d.BaseContext, logger)
	}
	if d.ArtifactDir != "" {
		r.Static("/artifacts", d.ArtifactDir)
	}
	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
}
