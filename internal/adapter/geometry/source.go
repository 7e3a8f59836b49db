package geometry

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"

	"github.com/couchcryptid/state-emissions-map/internal/domain"
)

// identifierKeys are feature properties checked, in order, for a state
// identifier when the feature id does not resolve.
var identifierKeys = []string{"STATEFP", "STATE", "GEOID", "fips", "FIPS", "postal", "STUSPS", "name", "NAME"}

// Source reads state boundaries from a GeoJSON FeatureCollection in
// longitude/latitude and projects them for drawing.
type Source struct {
	logger *slog.Logger
}

// NewSource creates a GeoJSON geometry source.
func NewSource(logger *slog.Logger) *Source {
	return &Source{logger: logger}
}

// Load reads and decodes the FeatureCollection at path.
func (s *Source) Load(path string) ([]domain.StateGeometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geometry %s: %w", path, err)
	}
	geoms, err := s.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode geometry %s: %w", path, err)
	}
	return geoms, nil
}

// Decode resolves each feature to a canonical state, projects it, and merges
// features that belong to the same state. Features outside the 50 states and
// D.C. are skipped. The result is in FIPS order.
func (s *Source) Decode(data []byte) ([]domain.StateGeometry, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	byFIPS := make(map[string]*domain.StateGeometry)
	skipped := 0
	for _, f := range fc.Features {
		state, ok := resolveState(f)
		if !ok {
			skipped++
			continue
		}
		shape := multiPolygon(f.Geometry)
		if len(shape) == 0 {
			skipped++
			continue
		}
		shape = project.MultiPolygon(shape, ProjectionFor(state.FIPS))

		g, ok := byFIPS[state.FIPS]
		if !ok {
			g = &domain.StateGeometry{State: state}
			byFIPS[state.FIPS] = g
		}
		g.Shape = append(g.Shape, shape...)
	}

	out := make([]domain.StateGeometry, 0, len(byFIPS))
	for _, g := range byFIPS {
		centroid, area := planar.CentroidArea(g.Shape)
		g.Label = centroid
		g.Area = math.Abs(area)
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b domain.StateGeometry) int {
		return cmp.Compare(a.State.FIPS, b.State.FIPS)
	})

	s.logger.Debug("geometry decoded", "features", len(fc.Features), "states", len(out), "skipped", skipped)
	return out, nil
}

func resolveState(f *geojson.Feature) (domain.State, bool) {
	if id := identifierString(f.ID); id != "" {
		if st, ok := domain.LookupState(id); ok {
			return st, true
		}
	}
	for _, key := range identifierKeys {
		if st, ok := domain.LookupState(identifierString(f.Properties[key])); ok {
			return st, true
		}
	}
	return domain.State{}, false
}

// identifierString renders an id or property value that may have been
// decoded as a string or a JSON number.
func identifierString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.Itoa(int(t))
		}
	}
	return ""
}

func multiPolygon(g orb.Geometry) orb.MultiPolygon {
	switch t := g.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{t.Clone()}
	case orb.MultiPolygon:
		return t.Clone()
	default:
		return nil
	}
}
