// Package multidigit decides whether road segments should be digitised as
// divided carriageways and checks that decision against the recorded flag.
package multidigit

import "kuanb/carriageway-validator/roadnet"

// SeparatorType is the physical or legal divider between two carriageways
type SeparatorType string

const (
	PhysicalBarrier SeparatorType = "physical_barrier"
	LegalBarrier    SeparatorType = "legal_barrier"
	Vegetation      SeparatorType = "vegetation"
	Elevated        SeparatorType = "elevated"
	Rail            SeparatorType = "rail"
	Tram            SeparatorType = "tram"
	Walkway         SeparatorType = "walkway"
	NoSeparator     SeparatorType = "none"
)

// FORM_OF_WAY values, both coded and spelled out
var (
	dualCarriagewayForms = map[string]struct{}{
		"1": {}, "2": {}, "Motorway": {}, "Multiple Carriageway": {}, "Dual Carriageway": {},
	}
	dividedRoadForms = map[string]struct{}{
		"6": {}, "Divided Road": {},
	}
	roundaboutForms = map[string]struct{}{
		"4": {}, "Roundabout": {},
	}
)

// ClassifySeparator derives the separator type from link attributes.
// The first matching rule wins:
//   - bridge or tunnel: physical barrier
//   - motorway, dual carriageway or divided road form of way: physical barrier
//   - roundabout: vegetation (the central island)
//   - functional class 1-2: physical barrier, 3-5: vegetation
//   - anything else: none
func ClassifySeparator(s *roadnet.RoadSegment) SeparatorType {
	if s.Bridge || s.Tunnel {
		return PhysicalBarrier
	}

	if _, ok := dualCarriagewayForms[s.FormOfWay]; ok {
		return PhysicalBarrier
	}
	if _, ok := dividedRoadForms[s.FormOfWay]; ok {
		return PhysicalBarrier
	}
	if _, ok := roundaboutForms[s.FormOfWay]; ok {
		return Vegetation
	}

	switch s.FuncClass {
	case 1, 2:
		return PhysicalBarrier
	case 3, 4, 5:
		return Vegetation
	}
	return NoSeparator
}
