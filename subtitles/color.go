package subtitles

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidColorFormat is returned for colors that are not six hex digits.
var ErrInvalidColorFormat = errors.New("invalid color format")

// ToRendererColor converts #RRGGBB into the renderer's byte-reversed 0xBBGGRR form.
func ToRendererColor(hex string) (string, error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidColorFormat, hex)
	}
	for _, c := range h {
		if !isHexDigit(c) {
			return "", fmt.Errorf("%w: %q", ErrInvalidColorFormat, hex)
		}
	}
	return "0x" + h[4:6] + h[2:4] + h[0:2], nil
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
