package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "state_emissions"

// Metrics holds the Prometheus counters, histograms, and gauges for one
// pipeline run. They live on a private registry because a batch job has no
// scrape endpoint; see WriteTextfile.
type Metrics struct {
	Registry *prometheus.Registry

	RowsLoaded  prometheus.Counter
	RowsDropped *prometheus.CounterVec // labels: reason={unknown_state,invalid_value,duplicate}
	Downloads   *prometheus.CounterVec // labels: source={emissions,geometry}, outcome={downloaded,skipped,error}

	RegionsMatched prometheus.Gauge
	RegionsTotal   prometheus.Gauge

	StageDuration *prometheus.HistogramVec // labels: stage
	LastSuccess   prometheus.Gauge
}

// NewMetrics creates all run metrics and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Data rows read from the emissions sheet.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows removed during cleaning, by reason.",
		}, []string{"reason"}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Presence-gated downloads by source and outcome.",
		}, []string{"source", "outcome"}),
		RegionsMatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regions_matched",
			Help:      "Map regions that received an emissions value.",
		}),
		RegionsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regions_total",
			Help:      "Map regions drawn, with or without data.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time at which the last run finished successfully.",
		}),
	}

	m.Registry.MustRegister(
		m.RowsLoaded,
		m.RowsDropped,
		m.Downloads,
		m.RegionsMatched,
		m.RegionsTotal,
		m.StageDuration,
		m.LastSuccess,
	)

	return m
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text exposition format, for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
