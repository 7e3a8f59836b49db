package render

import (
	"image/color"

	"gonum.org/v1/plot/palette"

	"github.com/couchcryptid/state-emissions-map/internal/domain"
)

// legendMap adapts a ColorScale to palette.ColorMap so plotter.ColorBar can
// draw it. The bar's range is kept separate from the scale because ColorBar
// cannot draw an empty range, while a degenerate scale is legal.
type legendMap struct {
	scale    domain.ColorScale
	min, max float64
	alpha    float64
}

func newLegendMap(s domain.ColorScale) *legendMap {
	lo, hi := s.Params.Min, s.Params.Max
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return &legendMap{scale: s, min: lo, max: hi, alpha: 1}
}

func (m *legendMap) At(v float64) (color.Color, error) {
	c := m.scale.At(v).Clamped()
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(m.alpha * 255)}, nil
}

func (m *legendMap) Max() float64 { return m.max }
func (m *legendMap) Min() float64 { return m.min }
func (m *legendMap) SetMax(v float64) { m.max = v }
func (m *legendMap) SetMin(v float64) { m.min = v }
func (m *legendMap) Alpha() float64 { return m.alpha }
func (m *legendMap) SetAlpha(a float64) { m.alpha = a }
func (m *legendMap) Palette(n int) palette.Palette {
	if n < 2 {
		n = 2
	}
	colors := make(swatches, n)
	step := (m.max - m.min) / float64(n-1)
	for i := range colors {
		colors[i], _ = m.At(m.min + step*float64(i))
	}
	return colors
}

type swatches []color.Color

func (s swatches) Colors() []color.Color { return s }
