package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// SegmentType classifies a caption segment as produced by the speech-to-text service.
type SegmentType string

const (
	SegmentWord       SegmentType = "word"
	SegmentSpacing    SegmentType = "spacing"
	SegmentAudioEvent SegmentType = "audio_event"
)

// UnmarshalJSON accepts only the known segment types.
func (t *SegmentType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("segment type: %w", err)
	}
	switch SegmentType(s) {
	case SegmentWord, SegmentSpacing, SegmentAudioEvent:
		*t = SegmentType(s)
		return nil
	default:
		return fmt.Errorf("segment type: unknown value %q", s)
	}
}

// CaptionSegment is one timed unit of caption text. Times are seconds from the start of the video.
type CaptionSegment struct {
	Text      string      `json:"text"`
	Start     float64     `json:"start"`
	End       float64     `json:"end"`
	Type      SegmentType `json:"type"`
	SpeakerID string      `json:"speaker_id"`
}

// Validate checks the timing invariants of a segment.
func (s CaptionSegment) Validate() error {
	if math.IsNaN(s.Start) || math.IsNaN(s.End) || math.IsInf(s.Start, 0) || math.IsInf(s.End, 0) {
		return errors.New("start and end must be finite")
	}
	if s.Start < 0 {
		return fmt.Errorf("start %.3f is negative", s.Start)
	}
	if s.End < s.Start {
		return fmt.Errorf("end %.3f is before start %.3f", s.End, s.Start)
	}
	return nil
}

// Position is the vertical placement of burned-in captions.
type Position string

const (
	PositionTop    Position = "top"
	PositionMiddle Position = "middle"
	PositionBottom Position = "bottom"
)

// UnmarshalJSON accepts only top, middle and bottom.
func (p *Position) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("caption position: %w", err)
	}
	switch Position(s) {
	case PositionTop, PositionMiddle, PositionBottom:
		*p = Position(s)
		return nil
	default:
		return fmt.Errorf("caption position: unknown value %q", s)
	}
}

// CaptionStyle holds the user-facing caption settings of a project.
// BackgroundColor, Padding and BorderRadius are carried for the preview but not burned in.
type CaptionStyle struct {
	FontSize        int      `json:"fontSize"`
	Position        Position `json:"position"`
	Color           string   `json:"color"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	Padding         *int     `json:"padding,omitempty"`
	BorderRadius    *int     `json:"borderRadius,omitempty"`
}

// TranscodeRequest describes one export: the source video, captions, style and optional replacement audio.
type TranscodeRequest struct {
	InputURL     string           `json:"inputUrl"`
	OutputFormat string           `json:"outputFormat"`
	Captions     []CaptionSegment `json:"captions,omitempty"`
	CaptionStyle *CaptionStyle    `json:"captionSettings,omitempty"`
	AudioURL     string           `json:"audioUrl,omitempty"`
}

// UnmarshalJSON also accepts "captionStyle" for the style object.
func (r *TranscodeRequest) UnmarshalJSON(data []byte) error {
	type plain TranscodeRequest
	var aux struct {
		plain
		Alias *CaptionStyle `json:"captionStyle,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = TranscodeRequest(aux.plain)
	if r.CaptionStyle == nil && aux.Alias != nil {
		r.CaptionStyle = aux.Alias
	}
	return nil
}

// HasCaptions reports whether both captions and a style were supplied.
func (r TranscodeRequest) HasCaptions() bool {
	return r.Captions != nil && r.CaptionStyle != nil
}

// Clone returns a deep copy so a running job never observes later edits.
func (r TranscodeRequest) Clone() TranscodeRequest {
	out := r
	if r.Captions != nil {
		out.Captions = append([]CaptionSegment(nil), r.Captions...)
	}
	if r.CaptionStyle != nil {
		style := *r.CaptionStyle
		if style.Padding != nil {
			v := *style.Padding
			style.Padding = &v
		}
		if style.BorderRadius != nil {
			v := *style.BorderRadius
			style.BorderRadius = &v
		}
		out.CaptionStyle = &style
	}
	out.InputURL = strings.TrimSpace(r.InputURL)
	out.OutputFormat = strings.TrimSpace(r.OutputFormat)
	out.AudioURL = strings.TrimSpace(r.AudioURL)
	return out
}

var contentTypes = map[string]string{
	"mp4":  "video/mp4",
	"m4v":  "video/x-m4v",
	"mov":  "video/quicktime",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",
	"ts":   "video/mp2t",
	"gif":  "image/gif",
}

// ContentTypeFor maps a container extension to its MIME type.
func ContentTypeFor(format string) string {
	if ct, ok := contentTypes[strings.ToLower(strings.TrimPrefix(format, "."))]; ok {
		return ct
	}
	return "application/octet-stream"
}
