package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"captionburn/transcode"
	"captionburn/types"

	"github.com/gin-gonic/gin"
)

// RegisterTranscodeRoutes registers the synchronous transcode endpoints.
func RegisterTranscodeRoutes(r *gin.Engine, t Transcoder, logger *slog.Logger) {
	h := &transcodeHandler{transcoder: t, logger: logger}
	r.POST("/transcode", h.handleBinary)
	r.POST("/api/exports", h.handleExport)
}

type transcodeHandler struct {
	transcoder Transcoder
	logger     *slog.Logger
}

// handleBinary streams the rendered artifact as the response body.
func (h *transcodeHandler) handleBinary(c *gin.Context) {
	var req types.TranscodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	sink := &responseSink{c: c}
	_, err := h.transcoder.Transcode(c.Request.Context(), req, transcode.Options{Store: sink})
	if err != nil {
		if sink.written {
			// headers are gone; the client sees a truncated body
			h.logger.Error("artifact stream interrupted", slog.String("error", err.Error()))
			return
		}
		respondError(c, h.logger, err)
	}
}

// handleExport stores the artifact with the configured backend and returns its location.
func (h *transcodeHandler) handleExport(c *gin.Context) {
	var req types.TranscodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	res, err := h.transcoder.Transcode(c.Request.Context(), req, transcode.Options{})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// responseSink is a store that writes the artifact straight into the HTTP response.
type responseSink struct {
	c       *gin.Context
	written bool
}

func (s *responseSink) Store(ctx context.Context, r io.Reader, contentType string) (string, error) {
	s.written = true
	s.c.Header("Content-Type", contentType)
	if file, ok := r.(*os.File); ok {
		if info, err := file.Stat(); err == nil {
			s.c.Header("Content-Length", strconv.FormatInt(info.Size(), 10))
		}
	}
	s.c.Status(http.StatusOK)
	if _, err := io.Copy(s.c.Writer, r); err != nil {
		return "", fmt.Errorf("stream artifact: %w", err)
	}
	return "response", nil
}

func (s *responseSink) ResolveURL(ctx context.Context, id string) (string, error) {
	return "", nil
}
