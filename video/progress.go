package video

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// progressParser turns ffmpeg "-progress" key=value output into percentages.
// Emitted values never decrease and stay within [0, 100].
type progressParser struct {
	duration time.Duration
	last     float64
	emit     func(percent float64)
}

func newProgressParser(duration time.Duration, emit func(float64)) *progressParser {
	return &progressParser{duration: duration, last: -1, emit: emit}
}

func (p *progressParser) consume(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "out_time_us", "out_time_ms":
			// both keys carry microseconds
			us, err := strconv.ParseInt(value, 10, 64)
			if err != nil || us < 0 || p.duration <= 0 {
				continue
			}
			p.report(float64(time.Duration(us)*time.Microsecond) / float64(p.duration) * 100)
		case "progress":
			if value == "end" {
				p.report(100)
			}
		}
	}
	// drain so ffmpeg never blocks on a full pipe
	_, _ = io.Copy(io.Discard, r)
}

func (p *progressParser) report(percent float64) {
	if percent > 100 {
		percent = 100
	}
	if percent <= p.last {
		return
	}
	p.last = percent
	if p.emit != nil {
		p.emit(percent)
	}
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append([]byte(nil), t.buf[over:]...)
	}
	return len(p), nil
}

// lastLines returns up to n trailing non-empty lines joined by newlines.
func (t *tailBuffer) lastLines(n int) string {
	lines := strings.Split(strings.ReplaceAll(string(t.buf), "\r", "\n"), "\n")
	var out []string
	for i := len(lines) - 1; i >= 0 && len(out) < n; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			out = append(out, line)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return strings.Join(out, "\n")
}
