package render

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/state-emissions-map/internal/config"
)

// OptionsFor derives canvas options from the run configuration.
func OptionsFor(cfg *config.Config) (Options, error) {
	noData, err := colorful.Hex(cfg.ColorNoData)
	if err != nil {
		return Options{}, fmt.Errorf("no-data color %q: %w", cfg.ColorNoData, err)
	}
	opts := DefaultOptions()
	opts.Width = vg.Length(cfg.PlotWidthIn) * vg.Inch
	opts.Height = vg.Length(cfg.PlotHeightIn) * vg.Inch
	opts.DPI = cfg.PlotDPI
	opts.NoData = noData.Clamped()
	return opts, nil
}
