package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/tidwall/geoindex"
	"github.com/tidwall/rtree"
)

// Index is a bounding-box index of polylines keyed by their position in a dataset.
// It wraps tidwall/rtree with geoindex so it can be walked nearest-first.
type Index struct {
	tree *geoindex.Index
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{
		tree: geoindex.Wrap(&rtree.RTree{}),
	}
}

// Insert adds the bound of the item at position pos
func (x *Index) Insert(pos int, b orb.Bound) {
	x.tree.Insert(
		[2]float64{b.Min[0], b.Min[1]},
		[2]float64{b.Max[0], b.Max[1]},
		pos,
	)
}

// Nearby visits items in increasing box distance from b. The distance passed to
// iter is a lower bound of the true distance between the geometries. Returning
// false stops the walk.
func (x *Index) Nearby(b orb.Bound, iter func(pos int, boxDist float64) bool) {
	x.tree.Nearby(
		func(min, max [2]float64, data interface{}, item bool) float64 {
			return boxDistance(b, min, max)
		},
		func(min, max [2]float64, data interface{}, dist float64) bool {
			return iter(data.(int), dist)
		},
	)
}

func boxDistance(b orb.Bound, min, max [2]float64) float64 {
	dx := math.Max(0, math.Max(min[0]-b.Max[0], b.Min[0]-max[0]))
	dy := math.Max(0, math.Max(min[1]-b.Max[1], b.Min[1]-max[1]))
	return math.Hypot(dx, dy)
}
