package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/state-emissions-map/internal/config"
	"github.com/couchcryptid/state-emissions-map/internal/domain"
)

const testDPI = 20

func testRenderer(noData color.Color) *Renderer {
	opts := DefaultOptions()
	opts.DPI = testDPI
	opts.NoData = noData
	return NewRenderer(opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func square(x0, y0, x1, y1 float64) orb.MultiPolygon {
	return orb.MultiPolygon{{{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}}
}

func testScale(t *testing.T, p domain.ColorScaleParameters) domain.ColorScale {
	t.Helper()
	s, err := domain.NewColorScale(p, "#1a9850", "#fee08b", "#d73027")
	require.NoError(t, err)
	return s
}

func geometry(abbrev string, shape orb.MultiPolygon) domain.StateGeometry {
	st, _ := domain.LookupState(abbrev)
	return domain.StateGeometry{State: st, Shape: shape, Label: shape.Bound().Center(), Area: 1e6}
}

func decode(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

// mapCenter returns the pixel at the middle of the map drawing area.
func mapCenter(img image.Image) color.NRGBA {
	l := layoutFor(vg.Point{X: 14 * vg.Inch, Y: 8 * vg.Inch})
	cx := (l.mapArea.Min.X + l.mapArea.Max.X) / 2
	cy := (l.mapArea.Min.Y + l.mapArea.Max.Y) / 2
	px := int(cx.Dots(testDPI))
	py := img.Bounds().Dy() - int(cy.Dots(testDPI))
	return color.NRGBAModel.Convert(img.At(px, py)).(color.NRGBA)
}

func assertColorNear(t *testing.T, want, got color.NRGBA) {
	t.Helper()
	near := func(a, b uint8) bool { return int(a)-int(b) <= 2 && int(b)-int(a) <= 2 }
	assert.Truef(t, near(want.R, got.R) && near(want.G, got.G) && near(want.B, got.B) && got.A == 0xff,
		"want %v, got %v", want, got)
}

func TestRender_WritesOpaquePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.png")
	m := domain.Choropleth{
		Title:       "Per Capita Emissions by State, 2022",
		Subtitle:    "Per Capita Emissions",
		Caption:     "Source: test",
		LegendLabel: "t CO2e per person",
		Result: domain.JoinResult{
			Records: []domain.JoinedRecord{
				{Geometry: geometry("CA", square(0, 0, 100, 100)), Value: 5},
				{Geometry: geometry("NV", square(100, 0, 200, 100)), Value: 12},
			},
			NoData: []domain.StateGeometry{geometry("OR", square(0, 100, 100, 200))},
		},
		Scale:  testScale(t, domain.ColorScaleParameters{Min: 5, Median: 8.5, Max: 12}),
		Labels: true,
	}

	require.NoError(t, testRenderer(nil).Render(m, path))

	img := decode(t, path)
	assert.Equal(t, 14*testDPI, img.Bounds().Dx())
	assert.Equal(t, 8*testDPI, img.Bounds().Dy())

	corner := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, corner)
}

func TestRender_IdenticalValuesUseMidColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.png")
	scale := testScale(t, domain.ColorScaleParameters{Min: 7, Median: 7, Max: 7})
	m := domain.Choropleth{
		Title: "flat",
		Result: domain.JoinResult{Records: []domain.JoinedRecord{
			{Geometry: geometry("CO", square(0, 0, 100, 100)), Value: 7},
		}},
		Scale: scale,
	}

	require.NoError(t, testRenderer(nil).Render(m, path))

	r, g, b := scale.Mid.RGB255()
	assertColorNear(t, color.NRGBA{R: r, G: g, B: b, A: 0xff}, mapCenter(decode(t, path)))
}

func TestRender_NoDataFill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodata.png")
	noData := color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	m := domain.Choropleth{
		Result: domain.JoinResult{
			NoData: []domain.StateGeometry{geometry("KS", square(0, 0, 100, 100))},
		},
		Scale: testScale(t, domain.ColorScaleParameters{Min: 1, Median: 2, Max: 3}),
	}

	require.NoError(t, testRenderer(noData).Render(m, path))
	assertColorNear(t, noData, mapCenter(decode(t, path)))
}

func TestRender_UnwritableDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	path := filepath.Join(dir, "map.png")
	m := domain.Choropleth{
		Result: domain.JoinResult{Records: []domain.JoinedRecord{
			{Geometry: geometry("UT", square(0, 0, 10, 10)), Value: 1},
		}},
		Scale: testScale(t, domain.ColorScaleParameters{Min: 1, Median: 1, Max: 1}),
	}

	err := testRenderer(nil).Render(m, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write image")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRender_NothingToDraw(t *testing.T) {
	err := testRenderer(nil).Render(domain.Choropleth{}, filepath.Join(t.TempDir(), "empty.png"))
	require.ErrorIs(t, err, domain.ErrNoGeometry)
}

func TestLegendMap_WidensDegenerateRange(t *testing.T) {
	m := newLegendMap(testScale(t, domain.ColorScaleParameters{Min: 4, Median: 4, Max: 4}))
	assert.InDelta(t, 3.5, m.Min(), 1e-9)
	assert.InDelta(t, 4.5, m.Max(), 1e-9)
}

func TestLegendMap_Palette(t *testing.T) {
	scale := testScale(t, domain.ColorScaleParameters{Min: 0, Median: 5, Max: 10})
	m := newLegendMap(scale)

	colors := m.Palette(11).Colors()
	require.Len(t, colors, 11)

	low := color.NRGBAModel.Convert(colors[0]).(color.NRGBA)
	r, g, b := scale.Low.RGB255()
	assertColorNear(t, color.NRGBA{R: r, G: g, B: b, A: 0xff}, low)

	high := color.NRGBAModel.Convert(colors[10]).(color.NRGBA)
	r, g, b = scale.High.RGB255()
	assertColorNear(t, color.NRGBA{R: r, G: g, B: b, A: 0xff}, high)
}

func TestOptionsFor(t *testing.T) {
	cfg := &config.Config{PlotWidthIn: 14, PlotHeightIn: 8, PlotDPI: 300, ColorNoData: "#ffffff"}

	opts, err := OptionsFor(cfg)
	require.NoError(t, err)
	assert.Equal(t, 14*vg.Inch, opts.Width)
	assert.Equal(t, 8*vg.Inch, opts.Height)
	assert.Equal(t, 300, opts.DPI)
	r, g, b, a := opts.NoData.RGBA()
	assert.Equal(t, [4]uint32{0xffff, 0xffff, 0xffff, 0xffff}, [4]uint32{r, g, b, a})

	cfg.ColorNoData = "white"
	_, err = OptionsFor(cfg)
	require.Error(t, err)
}
