package domain

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorScale maps an emissions value to a fill color with two linear CIELAB
// segments: Min→Low up to Median→Mid, then Median→Mid up to Max→High.
// Values outside [Min, Max] are clamped.
type ColorScale struct {
	Params ColorScaleParameters
	Low    colorful.Color
	Mid    colorful.Color
	High   colorful.Color
}

// NewColorScale parses the three anchor colors as hex strings ("#rrggbb").
func NewColorScale(p ColorScaleParameters, low, mid, high string) (ColorScale, error) {
	s := ColorScale{Params: p}
	var err error
	if s.Low, err = colorful.Hex(low); err != nil {
		return ColorScale{}, fmt.Errorf("low color %q: %w", low, err)
	}
	if s.Mid, err = colorful.Hex(mid); err != nil {
		return ColorScale{}, fmt.Errorf("mid color %q: %w", mid, err)
	}
	if s.High, err = colorful.Hex(high); err != nil {
		return ColorScale{}, fmt.Errorf("high color %q: %w", high, err)
	}
	return s, nil
}

// At returns the color for v. A degenerate scale (Min == Max) is flat Mid.
func (s ColorScale) At(v float64) colorful.Color {
	p := s.Params
	if p.Degenerate() {
		return s.Mid
	}
	v = min(max(v, p.Min), p.Max)

	if v <= p.Median {
		if p.Median == p.Min {
			return s.Mid
		}
		return s.Low.BlendLab(s.Mid, (v-p.Min)/(p.Median-p.Min))
	}
	return s.Mid.BlendLab(s.High, (v-p.Median)/(p.Max-p.Median))
}
