package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/state-emissions-map/internal/config"
	"github.com/couchcryptid/state-emissions-map/internal/domain"
	"github.com/couchcryptid/state-emissions-map/internal/observability"
)

// Fetcher makes sure a remote file exists at a local path.
type Fetcher interface {
	Ensure(ctx context.Context, url, dest string) (domain.Download, error)
}

// SheetLoader reads one worksheet of a workbook into a table.
type SheetLoader interface {
	Load(path, sheet string) (domain.Table, error)
}

// GeometryLoader reads projected state boundaries from a file.
type GeometryLoader interface {
	Load(path string) ([]domain.StateGeometry, error)
}

// Renderer rasterizes a prepared choropleth to path.
type Renderer interface {
	Render(m domain.Choropleth, path string) error
}

// Stages groups the pipeline's collaborators.
type Stages struct {
	Fetcher  Fetcher
	Sheets   SheetLoader
	Geometry GeometryLoader
	Renderer Renderer
}

// Prepared is everything known once the emissions table has been joined to
// the map, before any color is assigned.
type Prepared struct {
	Rows  []domain.EmissionsRow
	Clean domain.CleanStats
	Join  domain.JoinResult
}

// Pipeline runs directories → fetch → load → clean → geometry → join →
// statistics → render, strictly in order, stopping at the first fatal error.
type Pipeline struct {
	cfg      *config.Config
	stages   Stages
	logger   *slog.Logger
	metrics  *observability.Metrics
	reporter *Reporter
	clock    clockwork.Clock
}

// New creates a Pipeline. The reporter's clock also times each stage.
func New(cfg *config.Config, stages Stages, logger *slog.Logger, metrics *observability.Metrics, reporter *Reporter) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		stages:   stages,
		logger:   logger,
		metrics:  metrics,
		reporter: reporter,
		clock:    reporter.clock,
	}
}

// Run executes a full pass and writes the map to the configured output path.
func (p *Pipeline) Run(ctx context.Context) error {
	prep, err := p.Prepare(ctx)
	if err != nil {
		return err
	}

	var scale domain.ColorScale
	err = p.step("statistics", func() (string, error) {
		params, err := domain.Summarize(prep.Join.Values())
		if err != nil {
			return "", err
		}
		scale, err = domain.NewColorScale(params, p.cfg.ColorLow, p.cfg.ColorMid, p.cfg.ColorHigh)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("min %.2f, median %.2f, max %.2f", params.Min, params.Median, params.Max), nil
	})
	if err != nil {
		return err
	}

	out := p.cfg.OutputPath()
	err = p.step("render", func() (string, error) {
		if err := p.stages.Renderer.Render(p.choropleth(prep.Join, scale), out); err != nil {
			return "", err
		}
		return out, nil
	})
	if err != nil {
		return err
	}

	p.metrics.LastSuccess.Set(float64(p.clock.Now().Unix()))
	p.reporter.Summary(Summary{
		Matched: prep.Join.Matched(),
		Total:   prep.Join.Total(),
		Min:     scale.Params.Min,
		Max:     scale.Params.Max,
		Unit:    p.cfg.MetricUnit,
		Output:  out,
	})
	p.logger.Info("run complete", "output", out, "matched", prep.Join.Matched(), "total", prep.Join.Total())
	return nil
}

// Prepare runs every stage up to and including the join. It is the whole
// of a dry run.
func (p *Pipeline) Prepare(ctx context.Context) (Prepared, error) {
	var prep Prepared

	err := p.step("directories", func() (string, error) {
		for _, dir := range []string{p.cfg.DataDir, p.cfg.PlotDir} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("create %s: %w", dir, err)
			}
		}
		return p.cfg.DataDir + ", " + p.cfg.PlotDir, nil
	})
	if err != nil {
		return Prepared{}, err
	}

	if err := p.fetch(ctx, "emissions", p.cfg.EmissionsURL, p.cfg.EmissionsPath()); err != nil {
		return Prepared{}, err
	}

	var table domain.Table
	err = p.step("load_sheet", func() (string, error) {
		var err error
		table, err = p.stages.Sheets.Load(p.cfg.EmissionsPath(), p.cfg.EmissionsSheet)
		if err != nil {
			return "", err
		}
		p.metrics.RowsLoaded.Add(float64(len(table.Rows)))
		return fmt.Sprintf("sheet %q, %d rows, %d columns", table.Sheet, len(table.Rows), len(table.Headers)), nil
	})
	if err != nil {
		return Prepared{}, err
	}

	err = p.step("clean", func() (string, error) {
		var err error
		prep.Rows, prep.Clean, err = domain.Clean(table, p.cfg.StateColumn, p.cfg.ValueColumn)
		if err != nil {
			return "", err
		}
		for reason, n := range prep.Clean.Dropped {
			p.metrics.RowsDropped.WithLabelValues(reason).Add(float64(n))
		}
		p.logger.Info("rows cleaned",
			"rows_total", prep.Clean.Total,
			"rows_kept", prep.Clean.Kept,
			"rows_dropped", prep.Clean.DroppedTotal(),
		)
		return fmt.Sprintf("%d kept, %d dropped", prep.Clean.Kept, prep.Clean.DroppedTotal()), nil
	})
	if err != nil {
		return Prepared{}, err
	}

	if err := p.fetch(ctx, "geometry", p.cfg.GeometryURL, p.cfg.GeometryPath()); err != nil {
		return Prepared{}, err
	}

	var geoms []domain.StateGeometry
	err = p.step("load_geometry", func() (string, error) {
		var err error
		geoms, err = p.stages.Geometry.Load(p.cfg.GeometryPath())
		if err != nil {
			return "", err
		}
		if len(geoms) == 0 {
			return "", domain.ErrNoGeometry
		}
		return fmt.Sprintf("%d regions", len(geoms)), nil
	})
	if err != nil {
		return Prepared{}, err
	}

	err = p.step("join", func() (string, error) {
		prep.Join = domain.Join(geoms, prep.Rows)
		matched, total := prep.Join.Matched(), prep.Join.Total()
		p.metrics.RegionsMatched.Set(float64(matched))
		p.metrics.RegionsTotal.Set(float64(total))

		coverage := fmt.Sprintf("%d/%d", matched, total)
		if matched < total {
			p.logger.Warn("partial coverage",
				"coverage", coverage,
				"no_data", strings.Join(noDataCodes(prep.Join), ","),
			)
		} else {
			p.logger.Info("full coverage", "coverage", coverage)
		}
		return coverage + " regions with data", nil
	})
	if err != nil {
		return Prepared{}, err
	}
	return prep, nil
}

func (p *Pipeline) fetch(ctx context.Context, source, url, dest string) error {
	return p.step("fetch_"+source, func() (string, error) {
		d, err := p.stages.Fetcher.Ensure(ctx, url, dest)
		if err != nil {
			p.metrics.Downloads.WithLabelValues(source, "error").Inc()
			return "", err
		}
		if !d.Downloaded {
			p.metrics.Downloads.WithLabelValues(source, "skipped").Inc()
			return fmt.Sprintf("%s present, skipped", d.Path), nil
		}
		p.metrics.Downloads.WithLabelValues(source, "downloaded").Inc()
		return fmt.Sprintf("%s, %d bytes", d.Path, d.Bytes), nil
	})
}

// step times fn, reports it, and wraps any error with the stage name. The
// caller logs the returned error.
func (p *Pipeline) step(name string, fn func() (string, error)) error {
	start := p.clock.Now()
	detail, err := fn()
	elapsed := p.clock.Since(start)

	p.metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	p.reporter.Step(name, elapsed, detail, err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	p.logger.Debug("stage complete", "stage", name, "elapsed", elapsed)
	return nil
}

func (p *Pipeline) choropleth(res domain.JoinResult, scale domain.ColorScale) domain.Choropleth {
	return domain.Choropleth{
		Title:       fmt.Sprintf("Greenhouse Gas Emissions per Capita by State, %d", p.cfg.DataYear),
		Subtitle:    fmt.Sprintf("%s, %s", p.cfg.ValueColumn, p.cfg.MetricUnit),
		Caption:     p.cfg.SourceCaption,
		LegendLabel: fmt.Sprintf("%s (%s)", p.cfg.ValueColumn, p.cfg.MetricUnit),
		Result:      res,
		Scale:       scale,
		Labels:      p.cfg.StateLabels,
	}
}

func noDataCodes(res domain.JoinResult) []string {
	codes := make([]string, len(res.NoData))
	for i, g := range res.NoData {
		codes[i] = g.State.Abbrev
	}
	return codes
}
