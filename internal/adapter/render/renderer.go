// Package render draws a joined emissions table as a static choropleth PNG.
package render

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/state-emissions-map/internal/domain"
)

// Options controls the physical canvas and the fixed parts of the map style.
type Options struct {
	Width  vg.Length
	Height vg.Length
	DPI    int

	NoData      color.Color
	Border      color.Color
	BorderWidth vg.Length

	// MinLabelArea is the smallest projected area (km²) that gets a state
	// label. Smaller regions would be covered by their own text.
	MinLabelArea float64
}

// DefaultOptions is a 14×8 inch canvas at 300 DPI with white no-data fill.
func DefaultOptions() Options {
	return Options{
		Width:        14 * vg.Inch,
		Height:       8 * vg.Inch,
		DPI:          300,
		NoData:       color.White,
		Border:       color.Gray{Y: 0x80},
		BorderWidth:  vg.Points(0.6),
		MinLabelArea: 12000,
	}
}

// Renderer rasterizes maps with gonum/plot.
type Renderer struct {
	opts   Options
	logger *slog.Logger
}

// NewRenderer creates a Renderer. Zero-valued colors fall back to the defaults.
func NewRenderer(opts Options, logger *slog.Logger) *Renderer {
	def := DefaultOptions()
	if opts.NoData == nil {
		opts.NoData = def.NoData
	}
	if opts.Border == nil {
		opts.Border = def.Border
	}
	return &Renderer{opts: opts, logger: logger}
}

// Render draws m and writes it to path as a PNG. The image is written to a
// temporary file in the same directory and renamed into place, so a failed
// render never leaves a partial file at path.
func (r *Renderer) Render(m domain.Choropleth, path string) error {
	if m.Result.Total() == 0 {
		return fmt.Errorf("render: %w", domain.ErrNoGeometry)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(r.opts.Width, r.opts.Height),
		vgimg.UseDPI(r.opts.DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	if err := r.compose(draw.New(c), m); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	n, err := writePNG(c, path)
	if err != nil {
		return err
	}
	r.logger.Info("map rendered",
		"path", path,
		"bytes", n,
		"regions", m.Result.Total(),
		"with_data", m.Result.Matched(),
	)
	return nil
}

func (r *Renderer) compose(dc draw.Canvas, m domain.Choropleth) error {
	l := layoutFor(dc.Size())

	dc.FillText(l.titleStyle(), l.titleAt, m.Title)
	dc.FillText(l.subtitleStyle(), l.subtitleAt, m.Subtitle)
	dc.FillText(l.captionStyle(), l.captionAt, m.Caption)

	mp, err := r.mapPlot(m, l)
	if err != nil {
		return err
	}
	mc := draw.Crop(dc, l.mapArea.Min.X, l.mapArea.Max.X-dc.Max.X, l.mapArea.Min.Y, l.mapArea.Max.Y-dc.Max.Y)
	fitAspect(mp, bounds(m.Result), mc.Size())
	mp.Draw(mc)

	lp := legendPlot(m, l)
	lc := draw.Crop(dc, l.legendArea.Min.X, l.legendArea.Max.X-dc.Max.X, l.legendArea.Min.Y, l.legendArea.Max.Y-dc.Max.Y)
	lp.Draw(lc)
	return nil
}

func (r *Renderer) mapPlot(m domain.Choropleth, l layout) (*plot.Plot, error) {
	p := plot.New()
	p.HideAxes()
	p.X.Padding = 0
	p.Y.Padding = 0

	for _, g := range m.Result.NoData {
		if err := r.addShape(p, g.Shape, r.opts.NoData); err != nil {
			return nil, fmt.Errorf("%s: %w", g.State.Abbrev, err)
		}
	}
	for _, rec := range m.Result.Records {
		fill := m.Scale.At(rec.Value).Clamped()
		if err := r.addShape(p, rec.Geometry.Shape, fill); err != nil {
			return nil, fmt.Errorf("%s: %w", rec.Geometry.State.Abbrev, err)
		}
	}

	if m.Labels {
		labels, err := r.stateLabels(m.Result, l)
		if err != nil {
			return nil, err
		}
		if labels != nil {
			p.Add(labels)
		}
	}
	return p, nil
}

func (r *Renderer) addShape(p *plot.Plot, shape orb.MultiPolygon, fill color.Color) error {
	for _, poly := range shape {
		rings := make([]plotter.XYer, 0, len(poly))
		for _, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			xys := make(plotter.XYs, len(ring))
			for i, pt := range ring {
				xys[i] = plotter.XY{X: pt.X(), Y: pt.Y()}
			}
			rings = append(rings, xys)
		}
		if len(rings) == 0 {
			continue
		}
		pg, err := plotter.NewPolygon(rings...)
		if err != nil {
			return err
		}
		pg.Color = fill
		pg.LineStyle = draw.LineStyle{Color: r.opts.Border, Width: r.opts.BorderWidth}
		p.Add(pg)
	}
	return nil
}

func (r *Renderer) stateLabels(res domain.JoinResult, l layout) (*plotter.Labels, error) {
	var data plotter.XYLabels
	add := func(g domain.StateGeometry) {
		if g.Area < r.opts.MinLabelArea {
			return
		}
		data.XYs = append(data.XYs, plotter.XY{X: g.Label.X(), Y: g.Label.Y()})
		data.Labels = append(data.Labels, g.State.Abbrev)
	}
	for _, rec := range res.Records {
		add(rec.Geometry)
	}
	for _, g := range res.NoData {
		add(g)
	}
	if len(data.Labels) == 0 {
		return nil, nil
	}

	labels, err := plotter.NewLabels(data)
	if err != nil {
		return nil, fmt.Errorf("state labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i] = l.labelStyle()
	}
	return labels, nil
}

func legendPlot(m domain.Choropleth, l layout) *plot.Plot {
	p := plot.New()
	p.HideX()
	p.X.Padding = 0
	p.Y.Padding = 0
	p.Add(&plotter.ColorBar{
		ColorMap: newLegendMap(m.Scale),
		Vertical: true,
		Colors:   256,
	})
	p.Y.Label.Text = m.LegendLabel
	small := l.captionStyle()
	p.Y.Label.TextStyle.Font = small.Font
	p.Y.Label.TextStyle.Color = small.Color
	p.Y.Tick.Label.Font = small.Font
	return p
}

// fitAspect sets the data range so one projected unit has the same length
// on both axes and the shape is centered in the canvas.
func fitAspect(p *plot.Plot, b orb.Bound, size vg.Point) {
	bw, bh := b.Max.X()-b.Min.X(), b.Max.Y()-b.Min.Y()
	if bw <= 0 {
		bw = 1
	}
	if bh <= 0 {
		bh = 1
	}
	cw, ch := float64(size.X), float64(size.Y)
	perPoint := max(bw/cw, bh/ch)
	center := b.Center()

	p.X.Min = center.X() - perPoint*cw/2
	p.X.Max = center.X() + perPoint*cw/2
	p.Y.Min = center.Y() - perPoint*ch/2
	p.Y.Max = center.Y() + perPoint*ch/2
}

func bounds(res domain.JoinResult) orb.Bound {
	var b orb.Bound
	first := true
	extend := func(shape orb.MultiPolygon) {
		if len(shape) == 0 {
			return
		}
		if first {
			b = shape.Bound()
			first = false
			return
		}
		b = b.Union(shape.Bound())
	}
	for _, rec := range res.Records {
		extend(rec.Geometry.Shape)
	}
	for _, g := range res.NoData {
		extend(g.Shape)
	}
	return b
}

// layout positions the fixed canvas elements relative to the canvas size.
type layout struct {
	margin     vg.Length
	titleSize  vg.Length
	subSize    vg.Length
	smallSize  vg.Length
	labelSize  vg.Length
	titleAt    vg.Point
	subtitleAt vg.Point
	captionAt  vg.Point
	mapArea    vg.Rectangle
	legendArea vg.Rectangle
}

func layoutFor(size vg.Point) layout {
	w, h := size.X, size.Y
	l := layout{
		margin:    h * 0.03,
		titleSize: h * 0.04,
		subSize:   h * 0.026,
		smallSize: h * 0.018,
		labelSize: h * 0.014,
	}
	header := l.margin + l.titleSize*1.3 + l.subSize*1.8
	footer := l.margin + l.smallSize*2
	legendW := w * 0.1

	l.titleAt = vg.Point{X: w / 2, Y: h - l.margin}
	l.subtitleAt = vg.Point{X: w / 2, Y: h - l.margin - l.titleSize*1.3}
	l.captionAt = vg.Point{X: l.margin, Y: l.margin}
	l.mapArea = vg.Rectangle{
		Min: vg.Point{X: l.margin, Y: footer},
		Max: vg.Point{X: w - l.margin - legendW, Y: h - header},
	}
	l.legendArea = vg.Rectangle{
		Min: vg.Point{X: w - l.margin - legendW, Y: footer + h*0.1},
		Max: vg.Point{X: w - l.margin, Y: h - header - h*0.05},
	}
	return l
}

func (l layout) style(size vg.Length, weight xfont.Weight) text.Style {
	return text.Style{
		Color:   color.Black,
		Font:    font.Font{Typeface: "Liberation", Variant: "Sans", Weight: weight, Size: size},
		Handler: plot.DefaultTextHandler,
	}
}

func (l layout) titleStyle() text.Style {
	s := l.style(l.titleSize, xfont.WeightBold)
	s.XAlign, s.YAlign = text.XCenter, text.YTop
	return s
}

func (l layout) subtitleStyle() text.Style {
	s := l.style(l.subSize, xfont.WeightNormal)
	s.XAlign, s.YAlign = text.XCenter, text.YTop
	return s
}

func (l layout) captionStyle() text.Style {
	s := l.style(l.smallSize, xfont.WeightNormal)
	s.Color = color.Gray{Y: 0x40}
	s.XAlign, s.YAlign = text.XLeft, text.YBottom
	return s
}

func (l layout) labelStyle() text.Style {
	s := l.style(l.labelSize, xfont.WeightBold)
	s.Color = color.Gray{Y: 0x30}
	s.XAlign, s.YAlign = text.XCenter, text.YCenter
	return s
}

func writePNG(c *vgimg.Canvas, path string) (int64, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("write image %s: %w", path, err)
	}
	tmpName := tmp.Name()

	n, err := vgimg.PngCanvas{Canvas: c}.WriteTo(tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpName, path)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("write image %s: %w", path, err)
	}
	return n, nil
}
