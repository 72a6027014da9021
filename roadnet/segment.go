// Package roadnet holds the per-sector street network snapshot and its loaders.
package roadnet

import (
	"strings"

	"github.com/paulmach/orb"
)

// Flag is the recorded divided-carriageway attribute (MULTIDIGIT)
type Flag string

const (
	FlagYes Flag = "Y"
	FlagNo  Flag = "N"
)

// Valid reports whether the flag is one of Y or N
func (f Flag) Valid() bool {
	return f == FlagYes || f == FlagNo
}

// DefaultFuncClass is assumed when FUNC_CLASS is missing or unparseable
const DefaultFuncClass = 5

// RoadSegment is one navigable link of the street network
type RoadSegment struct {
	LinkID        int64
	Geometry      orb.LineString
	GroundTruth   Flag
	FuncClass     int // 1 is the highest class
	FormOfWay     string
	Bridge        bool
	Tunnel        bool
	Ramp          bool
	Manoeuvre     bool
	Bidirectional bool
	Lanes         int // 0 when no lane count was recorded
	StreetName    string
}

// Divided reports whether the segment is recorded as a divided carriageway
func (s *RoadSegment) Divided() bool {
	return s.GroundTruth == FlagYes
}

// NamingRecord carries the addressing geometry and street name of a link
type NamingRecord struct {
	LinkID     int64
	Geometry   orb.LineString
	StreetName string
}

// POIRecord places a point of interest at a percentage along a link,
// measured from the link's reference node
type POIRecord struct {
	ID      int64
	Name    string
	LinkID  int64
	Percent float64
}

func normalizeFlag(v string) Flag {
	return Flag(strings.TrimSpace(v))
}
