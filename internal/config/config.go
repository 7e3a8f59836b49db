package config

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	defaultEmissionsURL = "https://www.rmi.org/wp-content/uploads/2024/state-ghg-emissions/state_emissions.xlsx"
	defaultGeometryURL  = "https://raw.githubusercontent.com/PublicaMundi/MappingAPI/master/data/geojson/us-states.json"
	defaultCaption      = "Source: state greenhouse gas inventory, per capita emissions by state"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	EmissionsURL   string
	EmissionsSheet string
	StateColumn    string
	ValueColumn    string
	EmissionsFile  string

	GeometryURL  string
	GeometryFile string

	DataDir    string
	PlotDir    string
	OutputFile string

	DataYear      int
	MetricUnit    string
	SourceCaption string

	// Hex color stops for the fill gradient and for regions without data.
	ColorLow    string
	ColorMid    string
	ColorHigh   string
	ColorNoData string

	PlotWidthIn  float64
	PlotHeightIn float64
	PlotDPI      int
	StateLabels  bool

	HTTPTimeout time.Duration
	LogLevel    string
	LogFormat   string

	// MetricsFile, when set, receives the run's metrics in Prometheus text format.
	MetricsFile string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	cfg := &Config{
		EmissionsURL:   sharedcfg.EnvOrDefault("EMISSIONS_URL", defaultEmissionsURL),
		EmissionsSheet: sharedcfg.EnvOrDefault("EMISSIONS_SHEET", "Output - State"),
		StateColumn:    sharedcfg.EnvOrDefault("EMISSIONS_STATE_COLUMN", "State"),
		ValueColumn:    sharedcfg.EnvOrDefault("EMISSIONS_VALUE_COLUMN", "Per Capita Emissions"),
		EmissionsFile:  sharedcfg.EnvOrDefault("EMISSIONS_FILE", "state_emissions.xlsx"),
		GeometryURL:    sharedcfg.EnvOrDefault("GEOMETRY_URL", defaultGeometryURL),
		GeometryFile:   sharedcfg.EnvOrDefault("GEOMETRY_FILE", "us_states.geojson"),
		DataDir:        sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		PlotDir:        sharedcfg.EnvOrDefault("PLOT_DIR", "plots"),
		OutputFile:     sharedcfg.EnvOrDefault("OUTPUT_FILE", "state_emissions_per_capita.png"),
		MetricUnit:     sharedcfg.EnvOrDefault("METRIC_UNIT", "t CO2e per person"),
		SourceCaption:  sharedcfg.EnvOrDefault("SOURCE_CAPTION", defaultCaption),
		ColorLow:       sharedcfg.EnvOrDefault("COLOR_LOW", "#1a9850"),
		ColorMid:       sharedcfg.EnvOrDefault("COLOR_MID", "#fee08b"),
		ColorHigh:      sharedcfg.EnvOrDefault("COLOR_HIGH", "#d73027"),
		ColorNoData:    sharedcfg.EnvOrDefault("COLOR_NO_DATA", "#ffffff"),
		LogLevel:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "text")),
		MetricsFile:    sharedcfg.EnvOrDefault("METRICS_FILE", ""),
	}

	var err error
	if cfg.DataYear, err = positiveInt("DATA_YEAR", "2022"); err != nil {
		return nil, err
	}
	if cfg.PlotDPI, err = positiveInt("PLOT_DPI", "300"); err != nil {
		return nil, err
	}
	if cfg.PlotWidthIn, err = positiveFloat("PLOT_WIDTH_IN", "14"); err != nil {
		return nil, err
	}
	if cfg.PlotHeightIn, err = positiveFloat("PLOT_HEIGHT_IN", "8"); err != nil {
		return nil, err
	}
	if cfg.StateLabels, err = strconv.ParseBool(sharedcfg.EnvOrDefault("STATE_LABELS", "true")); err != nil {
		return nil, fmt.Errorf("invalid STATE_LABELS: %w", err)
	}

	timeout := sharedcfg.EnvOrDefault("HTTP_TIMEOUT", "60s")
	cfg.HTTPTimeout, err = time.ParseDuration(timeout)
	if err != nil || cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT %q", timeout)
	}

	for _, c := range []struct{ env, value string }{
		{"COLOR_LOW", cfg.ColorLow},
		{"COLOR_MID", cfg.ColorMid},
		{"COLOR_HIGH", cfg.ColorHigh},
		{"COLOR_NO_DATA", cfg.ColorNoData},
	} {
		if _, err := colorful.Hex(c.value); err != nil {
			return nil, fmt.Errorf("invalid %s %q: want #rrggbb", c.env, c.value)
		}
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}

// EmissionsPath is where the downloaded spreadsheet is stored.
func (c *Config) EmissionsPath() string { return filepath.Join(c.DataDir, c.EmissionsFile) }

// GeometryPath is where the downloaded state boundaries are stored.
func (c *Config) GeometryPath() string { return filepath.Join(c.DataDir, c.GeometryFile) }

// OutputPath is where the rendered map is written.
func (c *Config) OutputPath() string { return filepath.Join(c.PlotDir, c.OutputFile) }

func positiveInt(env, def string) (int, error) {
	s := sharedcfg.EnvOrDefault(env, def)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive integer", env, s)
	}
	return n, nil
}

func positiveFloat(env, def string) (float64, error) {
	s := sharedcfg.EnvOrDefault(env, def)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q: want a positive number", env, s)
	}
	return f, nil
}
