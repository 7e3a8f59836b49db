// Command choropleth downloads the per-capita emissions workbook and the U.S.
// state boundaries, joins them, and renders a static PNG map.
//
// Every setting has a default and can be overridden from the environment;
// see internal/config.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/state-emissions-map/internal/adapter/download"
	"github.com/couchcryptid/state-emissions-map/internal/adapter/geometry"
	"github.com/couchcryptid/state-emissions-map/internal/adapter/render"
	"github.com/couchcryptid/state-emissions-map/internal/adapter/xlsx"
	"github.com/couchcryptid/state-emissions-map/internal/config"
	"github.com/couchcryptid/state-emissions-map/internal/observability"
	"github.com/couchcryptid/state-emissions-map/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg).With("run_id", uuid.NewString())
	metrics := observability.NewMetrics()

	opts, err := render.OptionsFor(cfg)
	if err != nil {
		logger.Error("invalid render options", "error", err)
		return 1
	}

	stages := pipeline.Stages{
		Fetcher:  download.NewClient(cfg.HTTPTimeout, logger),
		Sheets:   xlsx.NewLoader(logger),
		Geometry: geometry.NewSource(logger),
		Renderer: render.NewRenderer(opts, logger),
	}
	reporter := pipeline.NewReporter(os.Stdout, clockwork.NewRealClock())
	p := pipeline.New(cfg, stages, logger, metrics, reporter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("run started", "sheet", cfg.EmissionsSheet, "output", cfg.OutputPath())
	runErr := p.Run(ctx)
	if runErr != nil {
		logger.Error("run failed", "error", runErr)
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("failed to write metrics", "error", err)
		}
	}

	if runErr != nil {
		return 1
	}
	return 0
}
