package types

import (
	"errors"
	"math"
)

// ExportFontScale converts the preview font size into the export font size.
const ExportFontScale = 0.75

// DefaultExportFormat is the container used for project exports.
const DefaultExportFormat = "mp4"

var (
	ErrProjectNoCaptions = errors.New("project must have captions and caption settings")
	ErrProjectNoVideo    = errors.New("project video URL not found")
)

// Project is the snapshot of a project record taken when an export starts.
type Project struct {
	ID           string           `json:"projectId"`
	VideoURL     string           `json:"videoUrl"`
	AudioURL     string           `json:"audioUrl,omitempty"`
	Captions     []CaptionSegment `json:"captions"`
	CaptionStyle *CaptionStyle    `json:"captionSettings"`
}

// NewExportRequest builds the transcode request for a project export.
func NewExportRequest(p Project) (TranscodeRequest, error) {
	if len(p.Captions) == 0 || p.CaptionStyle == nil {
		return TranscodeRequest{}, ErrProjectNoCaptions
	}
	if p.VideoURL == "" {
		return TranscodeRequest{}, ErrProjectNoVideo
	}

	style := *p.CaptionStyle
	style.FontSize = int(math.Floor(float64(style.FontSize) * ExportFontScale))

	req := TranscodeRequest{
		InputURL:     p.VideoURL,
		OutputFormat: DefaultExportFormat,
		Captions:     p.Captions,
		CaptionStyle: &CaptionStyle{
			FontSize: style.FontSize,
			Position: style.Position,
			Color:    style.Color,
		},
		AudioURL: p.AudioURL,
	}
	return req.Clone(), nil
}

// ExportStatus is the terminal outcome reported for an export.
type ExportStatus string

const (
	ExportSucceeded ExportStatus = "succeeded"
	ExportFailed    ExportStatus = "failed"
)

// ExportRequested is the message that asks the worker to export a project.
type ExportRequested struct {
	JobID   string  `json:"job_id,omitempty"`
	Project Project `json:"project"`
}

// ExportCompleted is published once per consumed export request.
type ExportCompleted struct {
	JobID     string       `json:"job_id"`
	ProjectID string       `json:"project_id"`
	Status    ExportStatus `json:"status"`
	StorageID string       `json:"storage_id,omitempty"`
	URL       string       `json:"url,omitempty"`
	ErrorKind string       `json:"error_kind,omitempty"`
	Error     string       `json:"error,omitempty"`
}
