package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
)

// InterpolateByPercentage returns the point pct percent of the way along ls.
// The hit segment is interpolated linearly in lon/lat. Percentages at or past 100
// return the last vertex; percentages at or below 0 return the first.
func InterpolateByPercentage(ls orb.LineString, pct float64) (orb.Point, error) {
	total, err := PathLength(ls)
	if err != nil {
		return orb.Point{}, err
	}
	if pct >= 100 {
		return ls[len(ls)-1], nil
	}
	if pct <= 0 {
		return ls[0], nil
	}

	target := total * pct / 100.0
	acc := 0.0
	for i := 0; i < len(ls)-1; i++ {
		a, b := ls[i], ls[i+1]
		seg := GeodesicDistance(a, b)
		if acc+seg >= target {
			if seg == 0 {
				return a, nil
			}
			frac := (target - acc) / seg
			if frac >= 1 {
				return b, nil
			}
			return orb.Point{
				a[0] + (b[0]-a[0])*frac,
				a[1] + (b[1]-a[1])*frac,
			}, nil
		}
		acc += seg
	}

	// accumulated rounding fell short of the target
	return ls[len(ls)-1], nil
}

// Bearing is the angle in degrees of the first edge of ls, 0 = east and +90 = north.
// It treats lon/lat as planar so it is only an approximate heading.
func Bearing(ls orb.LineString) (float64, error) {
	if len(ls) < 2 {
		return 0, eris.Wrapf(ErrInvalidGeometry, "geom: bearing needs 2 points, got %d", len(ls))
	}
	dy := ls[1][1] - ls[0][1]
	dx := ls[1][0] - ls[0][0]
	return math.Atan2(dy, dx) * 180.0 / math.Pi, nil
}
