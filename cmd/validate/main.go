// Command validate performs a dry run of the map pipeline: it fetches, loads,
// cleans, and joins the emissions data exactly as the choropleth command
// would, then reports rejected rows and states without data. Nothing is
// rendered.
//
// Usage:
//
//	go run ./cmd/validate -min-coverage 0.95
//
// The exit status is 1 when any stage fails or when the share of map regions
// with data falls below -min-coverage.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/state-emissions-map/internal/adapter/download"
	"github.com/couchcryptid/state-emissions-map/internal/adapter/geometry"
	"github.com/couchcryptid/state-emissions-map/internal/adapter/xlsx"
	"github.com/couchcryptid/state-emissions-map/internal/config"
	"github.com/couchcryptid/state-emissions-map/internal/observability"
	"github.com/couchcryptid/state-emissions-map/internal/pipeline"
)

func main() {
	minCoverage := flag.Float64("min-coverage", 1.0, "minimum fraction of map regions that must have data (0-1)")
	flag.Parse()

	if *minCoverage < 0 || *minCoverage > 1 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*minCoverage))
}

func run(minCoverage float64) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		return 1
	}
	logger := observability.NewLogger(cfg)

	stages := pipeline.Stages{
		Fetcher:  download.NewClient(cfg.HTTPTimeout, logger),
		Sheets:   xlsx.NewLoader(logger),
		Geometry: geometry.NewSource(logger),
	}
	reporter := pipeline.NewReporter(os.Stdout, clockwork.NewRealClock())
	p := pipeline.New(cfg, stages, logger, observability.NewMetrics(), reporter)

	fmt.Println("=== State Emissions Dry Run ===")
	fmt.Println()

	prep, err := p.Prepare(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	if !report(os.Stdout, prep, minCoverage) {
		return 1
	}
	return 0
}

// report prints the cleaning and join outcome and reports whether coverage
// meets minCoverage.
func report(w io.Writer, prep pipeline.Prepared, minCoverage float64) bool {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rows: %d read, %d kept, %d dropped\n",
		prep.Clean.Total, prep.Clean.Kept, prep.Clean.DroppedTotal())

	if len(prep.Clean.Rejected) > 0 {
		fmt.Fprintln(w, "\n--- Dropped rows ---")
		for i, r := range prep.Clean.Rejected {
			fmt.Fprintf(w, "  [%d] sheet row %d: state %q value %q (%s)\n", i+1, r.Line, r.State, r.Value, r.Reason)
		}
	}

	if len(prep.Join.NoData) > 0 {
		codes := make([]string, len(prep.Join.NoData))
		for i, g := range prep.Join.NoData {
			codes[i] = g.State.Abbrev
		}
		fmt.Fprintln(w, "\n--- States with no data ---")
		fmt.Fprintf(w, "  %s\n", strings.Join(codes, ", "))
	}

	matched, total := prep.Join.Matched(), prep.Join.Total()
	coverage := 0.0
	if total > 0 {
		coverage = float64(matched) / float64(total)
	}
	fmt.Fprintf(w, "\nCoverage: %d/%d (%.1f%%), minimum %.1f%%\n", matched, total, coverage*100, minCoverage*100)

	if coverage < minCoverage {
		fmt.Fprintln(w, "\nValidation FAILED.")
		return false
	}
	fmt.Fprintln(w, "\nAll validations passed.")
	return true
}
