package api

import (
	"errors"
	"log/slog"
	"net/http"

	"captionburn/transcode"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var jobErr *transcode.Error
	kind := transcode.KindOf(err)
	if kind == "" {
		logger.Error("request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Details: err.Error()})
		return
	}

	status := transcode.StatusCode(kind)
	resp := ErrorResponse{Error: kind.Message(), Kind: string(kind)}
	if errors.As(err, &jobErr) {
		resp.Details = jobErr.Detail
	}
	if status >= http.StatusInternalServerError {
		logger.Error("transcode failed", slog.String("kind", string(kind)), slog.String("error", err.Error()))
	}
	c.JSON(status, resp)
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   transcode.KindInvalidParameter.Message(),
		Kind:    string(transcode.KindInvalidParameter),
		Details: err.Error(),
	})
}
