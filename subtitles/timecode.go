package subtitles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// msTolerance absorbs binary representation error so 59.999 stays 59999 ms.
const msTolerance = 1e-6

// EncodeTimecode formats seconds as HH:MM:SS.mmm. Milliseconds are truncated,
// hours are at least two digits and grow as needed. Negative input clamps to zero.
func EncodeTimecode(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) {
		return "00:00:00.000"
	}
	total := int64(math.Floor(seconds*1000 + msTolerance))
	ms := total % 1000
	total /= 1000
	secs := total % 60
	total /= 60
	mins := total % 60
	hours := total / 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, mins, secs, ms)
}

// DecodeTimecode parses HH:MM:SS.mmm (or the comma variant) back into seconds.
func DecodeTimecode(tc string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(tc), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timecode %q: expected HH:MM:SS.mmm", tc)
	}
	secPart := strings.Replace(parts[2], ",", ".", 1)
	whole, frac, ok := strings.Cut(secPart, ".")
	if !ok || len(frac) != 3 {
		return 0, fmt.Errorf("timecode %q: expected three millisecond digits", tc)
	}

	fields := []string{parts[0], parts[1], whole, frac}
	values := make([]int64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("timecode %q: invalid field %q", tc, f)
		}
		values[i] = v
	}
	if values[1] > 59 || values[2] > 59 {
		return 0, fmt.Errorf("timecode %q: minutes and seconds must be below 60", tc)
	}

	ms := ((values[0]*60+values[1])*60+values[2])*1000 + values[3]
	return float64(ms) / 1000, nil
}
