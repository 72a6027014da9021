package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func testIndex() *Index {
	x := NewIndex()
	x.Insert(0, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 1}})
	x.Insert(1, orb.Bound{Min: orb.Point{0, 20}, Max: orb.Point{10, 21}})
	x.Insert(2, orb.Bound{Min: orb.Point{0, 5}, Max: orb.Point{10, 6}})
	x.Insert(3, orb.Bound{Min: orb.Point{500, 500}, Max: orb.Point{510, 510}})
	return x
}

func TestIndexNearby(t *testing.T) {
	x := testIndex()
	query := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 1}}

	var order []int
	var dists []float64
	x.Nearby(query, func(pos int, boxDist float64) bool {
		order = append(order, pos)
		dists = append(dists, boxDist)
		return boxDist <= 50
	})

	assert.Equal(t, []int{0, 2, 1, 3}, order)
	assert.InDelta(t, 0, dists[0], 1e-9)
	assert.InDelta(t, 4, dists[1], 1e-9)
	assert.InDelta(t, 19, dists[2], 1e-9)
}

func TestIndexNearbyStops(t *testing.T) {
	x := testIndex()
	query := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 1}}

	var order []int
	x.Nearby(query, func(pos int, boxDist float64) bool {
		if boxDist > 5 {
			return false
		}
		order = append(order, pos)
		return true
	})
	assert.Equal(t, []int{0, 2}, order)
}
