package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x, y float64) orb.MultiPolygon {
	return orb.MultiPolygon{{{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}}}
}

func allGeometries() []StateGeometry {
	out := make([]StateGeometry, 0, 51)
	for i, s := range States() {
		out = append(out, StateGeometry{State: s, Shape: square(float64(i), 0)})
	}
	return out
}

func rowsFor(n int) []EmissionsRow {
	out := make([]EmissionsRow, 0, n)
	for i, s := range States()[:n] {
		out = append(out, EmissionsRow{State: s, Value: float64(i + 1)})
	}
	return out
}

func TestJoin_PartialCoverage(t *testing.T) {
	geoms := allGeometries()
	rows := rowsFor(48)

	res := Join(geoms, rows)

	assert.Equal(t, 48, res.Matched())
	assert.Equal(t, 51, res.Total())
	require.Len(t, res.NoData, 3)
	for _, g := range res.NoData {
		assert.NotContains(t, []string{"01", "02"}, g.State.FIPS)
	}
}

func TestJoin_RecordsCarryValueAndShape(t *testing.T) {
	res := Join(allGeometries(), rowsFor(51))

	require.Equal(t, 51, res.Matched())
	assert.Empty(t, res.NoData)
	for _, rec := range res.Records {
		assert.NotEmpty(t, rec.Geometry.Shape)
		assert.Positive(t, rec.Value)
	}
}

func TestJoin_RowsWithoutGeometryIgnored(t *testing.T) {
	geoms := allGeometries()[:5]

	res := Join(geoms, rowsFor(51))

	assert.Equal(t, 5, res.Matched())
	assert.Equal(t, 5, res.Total())
}

func TestJoin_EmptyShapeCountsAsNoData(t *testing.T) {
	geoms := allGeometries()[:2]
	geoms[1].Shape = nil

	res := Join(geoms, rowsFor(2))

	assert.Equal(t, 1, res.Matched())
	require.Len(t, res.NoData, 1)
	assert.Equal(t, geoms[1].State.FIPS, res.NoData[0].State.FIPS)
}

func TestJoin_DuplicateGeometryMatchedOnce(t *testing.T) {
	geoms := allGeometries()[:1]
	geoms = append(geoms, geoms[0])

	res := Join(geoms, rowsFor(1))

	assert.Equal(t, 1, res.Matched())
	assert.Len(t, res.NoData, 1)
}

func TestJoin_CoverageBounds(t *testing.T) {
	tests := []struct {
		name  string
		geoms int
		rows  int
	}{
		{"fewer rows than geometries", 51, 10},
		{"fewer geometries than rows", 10, 51},
		{"no rows", 51, 0},
		{"no geometries", 0, 51},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Join(allGeometries()[:tt.geoms], rowsFor(tt.rows))
			assert.LessOrEqual(t, res.Matched(), res.Total())
			assert.LessOrEqual(t, res.Matched(), tt.rows)
			assert.Equal(t, tt.geoms, res.Total())
		})
	}
}

func TestJoinResult_Values(t *testing.T) {
	res := Join(allGeometries()[:3], rowsFor(3))
	assert.Equal(t, []float64{1, 2, 3}, res.Values())
}
