package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	gogeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// MetersPerDegree is the fixed factor used when no metric projection is available.
// It ignores the shrinking of longitude degrees away from the equator.
const MetersPerDegree = 111320.0

// Projector maps lon/lat into a local metric plane. It is Web Mercator rescaled by
// cos(lat0), which is true to scale around the reference latitude of a sector.
type Projector struct {
	RefLat float64
	scale  float64
}

// NewProjector creates a projector centred on refLat
func NewProjector(refLat float64) *Projector {
	return &Projector{
		RefLat: refLat,
		scale:  math.Cos(refLat * math.Pi / 180.0),
	}
}

// Point projects a single lon/lat point to meters
func (p *Projector) Point(pt orb.Point) orb.Point {
	m := project.Point(pt, project.WGS84.ToMercator)
	return orb.Point{m[0] * p.scale, m[1] * p.scale}
}

// LineString projects every vertex of ls. The input is left untouched.
func (p *Projector) LineString(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, pt := range ls {
		out[i] = p.Point(pt)
	}
	return out
}

// MinDistanceBetweenPaths returns the minimum distance in meters between two
// projected polylines. Crossing lines are 0 apart. A single vertex is treated as
// a zero-length segment.
func MinDistanceBetweenPaths(a, b orb.LineString) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	minDist := math.Inf(1)
	for _, sa := range edges(a) {
		for _, sb := range edges(b) {
			d := xy.DistanceFromLineToLine(sa[0], sa[1], sb[0], sb[1])
			if d == 0 {
				return 0
			}
			minDist = math.Min(minDist, d)
		}
	}
	return minDist
}

// ApproxMinDistanceDegrees measures two lon/lat polylines directly in degrees and
// converts with MetersPerDegree. Prefer a Projector whenever the sector is known.
func ApproxMinDistanceDegrees(a, b orb.LineString) float64 {
	return MinDistanceBetweenPaths(a, b) * MetersPerDegree
}

func edges(ls orb.LineString) [][2]gogeom.Coord {
	if len(ls) == 1 {
		c := gogeom.Coord{ls[0][0], ls[0][1]}
		return [][2]gogeom.Coord{{c, c}}
	}
	out := make([][2]gogeom.Coord, len(ls)-1)
	for i := range out {
		out[i] = [2]gogeom.Coord{
			{ls[i][0], ls[i][1]},
			{ls[i+1][0], ls[i+1][1]},
		}
	}
	return out
}
