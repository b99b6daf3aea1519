package subtitles

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"captionburn/types"
)

// ErrUnsupportedSegment is returned for segment types that must be filtered before rendering.
var ErrUnsupportedSegment = errors.New("unsupported caption segment")

// BuildSRT renders segments as sequential subtitle blocks in input order.
// Word and spacing segments both produce a block; an empty input yields "".
func BuildSRT(segments []types.CaptionSegment) (string, error) {
	var b strings.Builder
	for i, seg := range segments {
		if seg.Type == types.SegmentAudioEvent {
			return "", fmt.Errorf("%w: segment %d has type %s", ErrUnsupportedSegment, i+1, seg.Type)
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(EncodeTimecode(seg.Start))
		b.WriteString(" --> ")
		b.WriteString(EncodeTimecode(seg.End))
		b.WriteByte('\n')
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// WriteSRT writes an already built document to path.
func WriteSRT(path, document string) error {
	if err := os.WriteFile(path, []byte(document), 0o600); err != nil {
		return fmt.Errorf("write subtitles: %w", err)
	}
	return nil
}
