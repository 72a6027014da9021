package multidigit

import (
	"math"

	"github.com/paulmach/orb"

	"kuanb/carriageway-validator/geom"
	"kuanb/carriageway-validator/roadnet"
)

// DefaultSiblingThreshold is the farthest a paired carriageway may be, in meters
const DefaultSiblingThreshold = 80.0

// Sibling is the opposite carriageway found for a segment
type Sibling struct {
	Segment  *roadnet.RoadSegment
	Distance float64 // meters between the two polylines
}

// SiblingLocator finds the opposite carriageway of a segment among the links
// recorded as divided. Distances are measured in the sector's metric projection.
type SiblingLocator struct {
	Projector   *geom.Projector
	MaxDistance float64
	Index       *geom.Index // nil falls back to a scan of every divided link

	segments  []*roadnet.RoadSegment
	lines     []orb.LineString // working-plane geometry, by position
	positions map[int64]int
	divided   []int          // positions of divided links, in dataset order
	names     map[string]int // divided links per street name
}

// NewSiblingLocator prepares the candidate pool of a sector. A nil projector
// measures in degrees with a fixed meters-per-degree factor.
func NewSiblingLocator(ds *roadnet.SectorDataset, proj *geom.Projector, maxDistance float64) *SiblingLocator {
	if maxDistance <= 0 {
		maxDistance = DefaultSiblingThreshold
	}
	order := ds.Order()
	l := &SiblingLocator{
		Projector:   proj,
		MaxDistance: maxDistance,
		Index:       geom.NewIndex(),
		segments:    make([]*roadnet.RoadSegment, len(order)),
		lines:       make([]orb.LineString, len(order)),
		positions:   make(map[int64]int, len(order)),
		names:       make(map[string]int),
	}

	for pos, id := range order {
		s := ds.Segments[id]
		l.segments[pos] = s
		l.positions[id] = pos
		l.lines[pos] = l.working(s.Geometry)

		if !s.Divided() {
			continue
		}
		l.divided = append(l.divided, pos)
		if s.StreetName != "" {
			l.names[s.StreetName]++
		}
		if len(s.Geometry) >= 2 {
			l.Index.Insert(pos, l.lines[pos].Bound())
		}
	}
	return l
}

// Find returns the nearest divided link within MaxDistance. The street name
// narrows the pool when another divided link shares it. Equal distances go to
// the link loaded first.
func (l *SiblingLocator) Find(s *roadnet.RoadSegment) (Sibling, bool) {
	if len(s.Geometry) < 2 {
		return Sibling{}, false
	}
	query := l.lineOf(s)
	narrow := l.narrowByName(s)

	bestPos := -1
	bestDist := math.Inf(1)
	consider := func(pos int) {
		c := l.segments[pos]
		if c.LinkID == s.LinkID || len(c.Geometry) < 2 {
			return
		}
		if narrow && c.StreetName != s.StreetName {
			return
		}
		d := l.distance(query, l.lines[pos])
		if d > l.MaxDistance {
			return
		}
		if d < bestDist || (d == bestDist && pos < bestPos) {
			bestDist = d
			bestPos = pos
		}
	}

	if l.Index != nil {
		l.Index.Nearby(query.Bound(), func(pos int, boxDist float64) bool {
			if l.toMeters(boxDist) > math.Min(l.MaxDistance, bestDist) {
				return false
			}
			consider(pos)
			return true
		})
	} else {
		for _, pos := range l.divided {
			consider(pos)
		}
	}

	if bestPos < 0 {
		return Sibling{}, false
	}
	return Sibling{Segment: l.segments[bestPos], Distance: bestDist}, true
}

// Distance measures two segments the way Find does
func (l *SiblingLocator) Distance(a, b *roadnet.RoadSegment) float64 {
	return l.distance(l.lineOf(a), l.lineOf(b))
}

func (l *SiblingLocator) narrowByName(s *roadnet.RoadSegment) bool {
	if s.StreetName == "" {
		return false
	}
	shared := l.names[s.StreetName]
	if s.Divided() {
		if pos, ok := l.positions[s.LinkID]; ok && l.segments[pos] == s {
			shared--
		}
	}
	return shared > 0
}

func (l *SiblingLocator) lineOf(s *roadnet.RoadSegment) orb.LineString {
	if pos, ok := l.positions[s.LinkID]; ok && l.segments[pos] == s {
		return l.lines[pos]
	}
	return l.working(s.Geometry)
}

func (l *SiblingLocator) working(ls orb.LineString) orb.LineString {
	if l.Projector == nil {
		return ls
	}
	return l.Projector.LineString(ls)
}

func (l *SiblingLocator) distance(a, b orb.LineString) float64 {
	if l.Projector == nil {
		return geom.ApproxMinDistanceDegrees(a, b)
	}
	return geom.MinDistanceBetweenPaths(a, b)
}

func (l *SiblingLocator) toMeters(d float64) float64 {
	if l.Projector == nil {
		return d * geom.MetersPerDegree
	}
	return d
}
