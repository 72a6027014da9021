package multidigit

// Thresholds of the multiply-digitised criteria, in meters
const (
	overrideMaxLength = 100.0
	minSeparatorWidth = 3.0
	minLength         = 40.0
	maxRoadbedDist    = 80.0
)

// separator types that can justify two carriageways
var dividingSeparators = map[SeparatorType]struct{}{
	PhysicalBarrier: {},
	LegalBarrier:    {},
	Rail:            {},
	Elevated:        {},
	Tram:            {},
	Walkway:         {},
	Vegetation:      {},
}

// Evaluate decides whether a segment should be flagged as a divided carriageway.
//
// A short but wide separator always qualifies (length < 100 and width > 3).
// Otherwise a dividing separator qualifies when width > 3, length > 40 and the
// carriageways are at most 80 apart.
func Evaluate(t SeparatorType, width, length, roadbedDistance float64) bool {
	if length < overrideMaxLength && width > minSeparatorWidth {
		return true
	}
	if _, ok := dividingSeparators[t]; !ok {
		return false
	}
	return width > minSeparatorWidth && length > minLength && roadbedDistance <= maxRoadbedDist
}
