package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"captionburn/jobstate"
	"captionburn/logging"
	"captionburn/transcode"
	"captionburn/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterJobRoutes registers the asynchronous job endpoints.
func RegisterJobRoutes(r *gin.Engine, t Transcoder, tracker *jobstate.Tracker, base context.Context, logger *slog.Logger) {
	h := &jobsHandler{transcoder: t, tracker: tracker, base: base, logger: logger}
	r.POST("/api/jobs", h.handleCreate)
	r.GET("/api/jobs/:id", h.handleGet)
}

type jobsHandler struct {
	transcoder Transcoder
	tracker    *jobstate.Tracker
	base       context.Context
	logger     *slog.Logger
}

func (h *jobsHandler) handleCreate(c *gin.Context) {
	var req types.TranscodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	jobID := uuid.NewString()
	if err := h.tracker.Queue(c.Request.Context(), jobID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	go h.run(jobID, req.Clone())

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

func (h *jobsHandler) run(jobID string, req types.TranscodeRequest) {
	ctx := h.base
	logger := h.logger.With(slog.String(logging.FieldJobID, jobID))

	res, err := h.transcoder.Transcode(ctx, req, transcode.Options{
		JobID:    jobID,
		Observer: h.tracker.Observer(ctx, jobID),
	})
	if err != nil {
		if trackErr := h.tracker.Fail(ctx, jobID, string(transcode.KindOf(err)), err.Error()); trackErr != nil {
			logger.Warn("job status update failed", slog.String("error", trackErr.Error()))
		}
		return
	}
	if trackErr := h.tracker.Succeed(ctx, jobID, res.StorageID, res.URL); trackErr != nil {
		logger.Warn("job status update failed", slog.String("error", trackErr.Error()))
	}
}

func (h *jobsHandler) handleGet(c *gin.Context) {
	status, err := h.tracker.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, jobstate.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Job not found"})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
