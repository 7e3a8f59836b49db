package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

const earthRadiusKm = 6371.0

// albers is a spherical Albers equal-area conic projection. Output is in
// kilometres from the projection origin.
type albers struct {
	n, c, rho0, lon0 float64
}

func newAlbers(lat0, lon0, lat1, lat2 float64) albers {
	phi1, phi2 := radians(lat1), radians(lat2)
	n := (math.Sin(phi1) + math.Sin(phi2)) / 2
	c := math.Cos(phi1)*math.Cos(phi1) + 2*n*math.Sin(phi1)
	return albers{
		n:    n,
		c:    c,
		rho0: earthRadiusKm * math.Sqrt(c-2*n*math.Sin(radians(lat0))) / n,
		lon0: lon0,
	}
}

func (a albers) project(p orb.Point) orb.Point {
	rho := earthRadiusKm * math.Sqrt(a.c-2*a.n*math.Sin(radians(p.Lat()))) / a.n
	theta := a.n * radians(p.Lon()-a.lon0)
	return orb.Point{rho * math.Sin(theta), a.rho0 - rho*math.Cos(theta)}
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// inset places a separately projected region below the contiguous states.
type inset struct {
	proj       albers
	scale      float64
	dx, dy     float64
	unwrapEast bool // shift positive longitudes west of the antimeridian
}

func (in inset) project(p orb.Point) orb.Point {
	if in.unwrapEast && p.Lon() > 0 {
		p = orb.Point{p.Lon() - 360, p.Lat()}
	}
	q := in.proj.project(p)
	return orb.Point{q.X()*in.scale + in.dx, q.Y()*in.scale + in.dy}
}

// Composite Albers USA: the lower 48 on the USGS standard parallels, with
// Alaska shrunk and Hawaii moved into the space off the southwest coast.
var (
	conus  = newAlbers(37.5, -96, 29.5, 45.5)
	alaska = inset{
		proj:       newAlbers(50, -154, 55, 65),
		scale:      0.35,
		dx:         -1420,
		dy:         -1820,
		unwrapEast: true,
	}
	hawaii = inset{
		proj:  newAlbers(3, -157, 8, 18),
		scale: 1,
		dx:    -560,
		dy:    -3480,
	}
)

// ProjectionFor returns the projection used for the state with the given
// FIPS code.
func ProjectionFor(fips string) orb.Projection {
	switch fips {
	case "02":
		return alaska.project
	case "15":
		return hawaii.project
	default:
		return conus.project
	}
}
