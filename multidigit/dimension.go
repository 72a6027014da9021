package multidigit

import (
	"math"

	"kuanb/carriageway-validator/roadnet"
)

const (
	// DefaultLaneWidth is a typical urban lane, in meters
	DefaultLaneWidth = 3.25
	// MinDimension keeps separators from collapsing to zero width
	MinDimension = 0.1
)

// Dimensions are the separator width and the distance between carriageway centerlines
type Dimensions struct {
	SeparatorWidth  float64
	RoadbedDistance float64
}

// DimensionEstimator measures separators geometrically when a sibling carriageway
// is known and falls back to attribute heuristics when it is not
type DimensionEstimator struct {
	LaneWidth float64
}

// NewDimensionEstimator creates an estimator; a non-positive lane width means the default
func NewDimensionEstimator(laneWidth float64) *DimensionEstimator {
	if laneWidth <= 0 {
		laneWidth = DefaultLaneWidth
	}
	return &DimensionEstimator{LaneWidth: laneWidth}
}

// EstimateLanes returns the recorded lane count, or infers one from the functional class
func EstimateLanes(s *roadnet.RoadSegment) int {
	if s.Lanes > 0 {
		return s.Lanes
	}
	switch s.FuncClass {
	case 1, 2, 3:
		return 2
	default:
		return 1
	}
}

// EstimateSeparatorWidth is the typical separator width for a separator type on a road class
func EstimateSeparatorWidth(t SeparatorType, funcClass int) float64 {
	switch t {
	case PhysicalBarrier:
		switch funcClass {
		case 1, 2:
			return 3.0
		case 3:
			return 2.0
		default:
			return 1.5
		}
	case Vegetation:
		switch funcClass {
		case 1, 2, 3:
			return 2.5
		default:
			return 1.5
		}
	case LegalBarrier:
		return 0.5
	case Elevated, Rail, Tram:
		return 4.0
	case Walkway:
		return 1.5
	default:
		return MinDimension
	}
}

// WithSibling derives the separator from the measured distance to the paired carriageway:
// the roadbed distance minus half of each carriageway's width
func (e *DimensionEstimator) WithSibling(s, sibling *roadnet.RoadSegment, distance float64) Dimensions {
	halfA := float64(EstimateLanes(s)) * e.LaneWidth / 2
	halfB := float64(EstimateLanes(sibling)) * e.LaneWidth / 2
	return Dimensions{
		SeparatorWidth:  math.Max(MinDimension, distance-(halfA+halfB)),
		RoadbedDistance: math.Max(MinDimension, distance),
	}
}

// WithoutSibling estimates both dimensions from the separator type and road class
func (e *DimensionEstimator) WithoutSibling(s *roadnet.RoadSegment, t SeparatorType) Dimensions {
	width := EstimateSeparatorWidth(t, s.FuncClass)
	roadway := float64(EstimateLanes(s)) * e.LaneWidth
	return Dimensions{
		SeparatorWidth:  math.Max(MinDimension, width),
		RoadbedDistance: math.Max(MinDimension, width+roadway),
	}
}
