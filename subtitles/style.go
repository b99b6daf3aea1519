package subtitles

import (
	"errors"
	"fmt"

	"captionburn/config"
	"captionburn/types"
)

// ErrInvalidPosition is returned for positions outside top, middle and bottom.
var ErrInvalidPosition = errors.New("invalid caption position")

// RenderDirectives are the libass style overrides passed to the subtitles filter.
type RenderDirectives struct {
	Alignment    int
	MarginV      int
	FontSize     int
	PrimaryColor string
	Outline      int
	Shadow       int
	BorderStyle  int
}

type placement struct {
	alignment int
	marginV   int
}

var placements = map[types.Position]placement{
	types.PositionTop:    {alignment: 6, marginV: 10},
	types.PositionMiddle: {alignment: 10, marginV: 25},
	types.PositionBottom: {alignment: 2, marginV: 50},
}

// MapStyle translates user caption settings into renderer directives.
func MapStyle(style types.CaptionStyle) (RenderDirectives, error) {
	p, ok := placements[style.Position]
	if !ok {
		return RenderDirectives{}, fmt.Errorf("%w: %q", ErrInvalidPosition, style.Position)
	}
	color, err := ToRendererColor(style.Color)
	if err != nil {
		return RenderDirectives{}, err
	}
	return RenderDirectives{
		Alignment:    p.alignment,
		MarginV:      p.marginV,
		FontSize:     style.FontSize,
		PrimaryColor: color,
		Outline:      config.CaptionOutline,
		Shadow:       config.CaptionShadow,
		BorderStyle:  config.CaptionBorderStyle,
	}, nil
}

// ForceStyle renders the directives in the order the subtitles filter expects.
func (d RenderDirectives) ForceStyle() string {
	return fmt.Sprintf("Alignment=%d,Shadow=%d,FontSize=%d,PrimaryColour=%s,BorderStyle=%d,MarginV=%d,Outline=%d",
		d.Alignment, d.Shadow, d.FontSize, d.PrimaryColor, d.BorderStyle, d.MarginV, d.Outline)
}
