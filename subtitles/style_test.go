package subtitles

import (
	"errors"
	"testing"

	"captionburn/types"
)

func TestMapStylePlacement(t *testing.T) {
	cases := []struct {
		position      types.Position
		wantAlignment int
		wantMarginV   int
	}{
		{types.PositionTop, 6, 10},
		{types.PositionMiddle, 10, 25},
		{types.PositionBottom, 2, 50},
	}
	for _, c := range cases {
		t.Run(string(c.position), func(t *testing.T) {
			d, err := MapStyle(types.CaptionStyle{FontSize: 18, Position: c.position, Color: "#FFFFFF"})
			if err != nil {
				t.Fatal(err)
			}
			if d.Alignment != c.wantAlignment || d.MarginV != c.wantMarginV {
				t.Fatalf("got alignment=%d marginV=%d", d.Alignment, d.MarginV)
			}
			if d.Outline != 4 || d.Shadow != 0 || d.BorderStyle != 0 || d.FontSize != 18 {
				t.Fatalf("unexpected fixed directives: %+v", d)
			}
		})
	}
}

func TestMapStyleErrors(t *testing.T) {
	if _, err := MapStyle(types.CaptionStyle{Position: types.PositionTop, Color: "red"}); !errors.Is(err, ErrInvalidColorFormat) {
		t.Fatalf("color err = %v", err)
	}
	if _, err := MapStyle(types.CaptionStyle{Position: "left", Color: "#FFFFFF"}); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("position err = %v", err)
	}
}

func TestForceStyle(t *testing.T) {
	d, err := MapStyle(types.CaptionStyle{FontSize: 24, Position: types.PositionBottom, Color: "#FF8800"})
	if err != nil {
		t.Fatal(err)
	}
	want := "Alignment=2,Shadow=0,FontSize=24,PrimaryColour=0x0088FF,BorderStyle=0,MarginV=50,Outline=4"
	if got := d.ForceStyle(); got != want {
		t.Fatalf("ForceStyle = %q; want %q", got, want)
	}
}
