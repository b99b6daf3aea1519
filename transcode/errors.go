package transcode

import (
	"errors"
	"net/http"
)

// Kind classifies why a transcode job failed.
type Kind string

const (
	KindMissingParameter    Kind = "missing_parameter"
	KindInvalidParameter    Kind = "invalid_parameter"
	KindInvalidColorFormat  Kind = "invalid_color_format"
	KindSubtitleWriteFailed Kind = "subtitle_write_failed"
	KindTranscodingFailed   Kind = "transcoding_failed"
	KindStorageUnavailable  Kind = "storage_unavailable"
)

var messages = map[Kind]string{
	KindMissingParameter:    "Missing required parameters",
	KindInvalidParameter:    "Invalid parameter",
	KindInvalidColorFormat:  "Invalid color format",
	KindSubtitleWriteFailed: "Failed to write subtitles",
	KindTranscodingFailed:   "Transcoding failed",
	KindStorageUnavailable:  "Storage unavailable",
}

// Message is the human readable summary of a kind.
func (k Kind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}
	return "Internal server error"
}

// Error is the terminal failure of a job.
type Error struct {
	Kind Kind
	// Detail is shown to callers, e.g. ffmpeg's own diagnostic.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Message()
	}
	return e.Kind.Message() + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, detail string, err error) *Error {
	if detail == "" && err != nil {
		detail = err.Error()
	}
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf returns the kind carried by err, or "" when err is not a job error.
func KindOf(err error) Kind {
	var jobErr *Error
	if errors.As(err, &jobErr) {
		return jobErr.Kind
	}
	return ""
}

// StatusCode maps a kind onto the HTTP status returned to callers.
func StatusCode(kind Kind) int {
	switch kind {
	case KindMissingParameter, KindInvalidParameter, KindInvalidColorFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
