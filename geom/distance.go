package geom

import (
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/tidwall/geodesic"
)

// ErrInvalidGeometry is returned for empty or malformed polylines
var ErrInvalidGeometry = eris.New("invalid geometry")

// GeodesicDistance returns the distance in meters between two lon/lat points on
// the WGS84 ellipsoid
func GeodesicDistance(p1, p2 orb.Point) float64 {
	if p1 == p2 {
		return 0
	}
	var s12 float64
	geodesic.WGS84.Inverse(p1.Lat(), p1.Lon(), p2.Lat(), p2.Lon(), &s12, nil, nil)
	return s12
}

// PathLength sums the geodesic distance between consecutive vertices, in meters
func PathLength(ls orb.LineString) (float64, error) {
	if len(ls) < 2 {
		return 0, eris.Wrapf(ErrInvalidGeometry, "geom: path length needs 2 points, got %d", len(ls))
	}
	total := 0.0
	for i := 0; i < len(ls)-1; i++ {
		total += GeodesicDistance(ls[i], ls[i+1])
	}
	return total, nil
}
