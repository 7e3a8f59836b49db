package domain

import "errors"

// ErrNoGeometry is returned when the geometry source yields no regions.
var ErrNoGeometry = errors.New("no state geometry available")

// Join attaches emissions values to geometries by FIPS code. Geometries
// without a matching row are kept in NoData so the map outline stays
// complete. Rows without a geometry are ignored.
func Join(geoms []StateGeometry, rows []EmissionsRow) JoinResult {
	values := make(map[string]float64, len(rows))
	for _, r := range rows {
		if _, dup := values[r.State.FIPS]; !dup {
			values[r.State.FIPS] = r.Value
		}
	}

	res := JoinResult{
		Records: make([]JoinedRecord, 0, len(geoms)),
	}
	matched := make(map[string]bool, len(geoms))
	for _, g := range geoms {
		v, ok := values[g.State.FIPS]
		if !ok || matched[g.State.FIPS] || len(g.Shape) == 0 {
			res.NoData = append(res.NoData, g)
			continue
		}
		matched[g.State.FIPS] = true
		res.Records = append(res.Records, JoinedRecord{Geometry: g, Value: v})
	}
	return res
}
