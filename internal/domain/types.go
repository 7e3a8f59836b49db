package domain

import "github.com/paulmach/orb"

// Table is a parsed worksheet: unique column headers and the data rows
// beneath them. Rows may be shorter than Headers when trailing cells are empty.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]string
	// Lines holds the 1-based sheet row of each entry in Rows. When nil, rows
	// are assumed to follow the header without gaps.
	Lines []int
}

// Column returns the index of the header equal to name, ignoring case and
// surrounding whitespace.
func (t Table) Column(name string) (int, bool) {
	want := NormalizeStateKey(name)
	for i, h := range t.Headers {
		if NormalizeStateKey(h) == want {
			return i, true
		}
	}
	return -1, false
}

// Line returns the 1-based sheet row that Rows[r] was read from.
func (t Table) Line(r int) int {
	if r < len(t.Lines) {
		return t.Lines[r]
	}
	return r + 2
}

// Cell returns the value at row r, column c, or "" past the end of a short row.
func (t Table) Cell(r, c int) string {
	row := t.Rows[r]
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}

// EmissionsRow is one cleaned observation keyed by canonical state.
type EmissionsRow struct {
	State State
	Value float64
}

// StateGeometry is a region boundary already projected into map units.
type StateGeometry struct {
	State State
	Shape orb.MultiPolygon
	// Label is the area centroid of Shape, used to place the state code.
	Label orb.Point
	// Area is the planar area of Shape in projected units squared.
	Area float64
}

// JoinedRecord pairs a geometry with its matched emissions value.
type JoinedRecord struct {
	Geometry StateGeometry
	Value    float64
}

// JoinResult is the outcome of a geometry-preserving left join. Every input
// geometry ends up in exactly one of Records or NoData.
type JoinResult struct {
	Records []JoinedRecord
	NoData  []StateGeometry
}

// Matched is the number of geometries that received a value.
func (r JoinResult) Matched() int { return len(r.Records) }

// Total is the number of geometries on the map.
func (r JoinResult) Total() int { return len(r.Records) + len(r.NoData) }

// Values returns the matched emissions values in record order.
func (r JoinResult) Values() []float64 {
	out := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.Value
	}
	return out
}

// ColorScaleParameters calibrates the fill gradient.
type ColorScaleParameters struct {
	Min    float64
	Median float64
	Max    float64
}

// Degenerate reports whether every value is identical.
func (p ColorScaleParameters) Degenerate() bool { return p.Max == p.Min }
