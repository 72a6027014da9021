package geom

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// EnclosingRing closes the area between two carriageways: a, then b walked
// backwards, then back to the start of a.
func EnclosingRing(a, b orb.LineString) orb.Ring {
	ring := make(orb.Ring, 0, len(a)+len(b)+1)
	ring = append(ring, a...)
	for i := len(b) - 1; i >= 0; i-- {
		ring = append(ring, b[i])
	}
	if len(a) > 0 {
		ring = append(ring, a[0])
	}
	return ring
}

// ContainsPoint reports whether pt lies in the ring built from a and b.
// Points on the boundary count as inside.
func ContainsPoint(a, b orb.LineString, pt orb.Point) bool {
	ring := EnclosingRing(a, b)
	if len(ring) < 4 {
		return false
	}
	return planar.RingContains(ring, pt)
}
