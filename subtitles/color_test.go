package subtitles

import (
	"errors"
	"testing"
)

func TestToRendererColor(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"#FF0000", "0x0000FF"},
		{"#00FF00", "0x00FF00"},
		{"#0000FF", "0xFF0000"},
		{"#FFFFFF", "0xFFFFFF"},
		{"123456", "0x563412"},
		{"#abcdef", "0xefcdab"},
	}
	for _, c := range cases {
		got, err := ToRendererColor(c.in)
		if err != nil {
			t.Fatalf("ToRendererColor(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ToRendererColor(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestToRendererColorRejectsInvalid(t *testing.T) {
	for _, in := range []string{"red", "#FFF", "", "#", "#GGGGGG", "##FFFFFF", "#FFFFFF00"} {
		if _, err := ToRendererColor(in); !errors.Is(err, ErrInvalidColorFormat) {
			t.Errorf("ToRendererColor(%q) err = %v; want ErrInvalidColorFormat", in, err)
		}
	}
}
