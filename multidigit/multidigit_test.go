package multidigit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kuanb/carriageway-validator/roadnet"
)

func TestClassifySeparator(t *testing.T) {
	cases := []struct {
		name string
		seg  roadnet.RoadSegment
		want SeparatorType
	}{
		{"bridge beats class", roadnet.RoadSegment{Bridge: true, FuncClass: 9}, PhysicalBarrier},
		{"tunnel", roadnet.RoadSegment{Tunnel: true, FormOfWay: "4"}, PhysicalBarrier},
		{"motorway code", roadnet.RoadSegment{FormOfWay: "1", FuncClass: 5}, PhysicalBarrier},
		{"dual carriageway name", roadnet.RoadSegment{FormOfWay: "Dual Carriageway", FuncClass: 5}, PhysicalBarrier},
		{"divided road code", roadnet.RoadSegment{FormOfWay: "6", FuncClass: 5}, PhysicalBarrier},
		{"roundabout", roadnet.RoadSegment{FormOfWay: "Roundabout", FuncClass: 1}, Vegetation},
		{"class 2", roadnet.RoadSegment{FuncClass: 2}, PhysicalBarrier},
		{"class 3", roadnet.RoadSegment{FuncClass: 3}, Vegetation},
		{"class 5", roadnet.RoadSegment{FuncClass: 5}, Vegetation},
		{"unknown class", roadnet.RoadSegment{FuncClass: 7}, NoSeparator},
		{"unrecognised form of way", roadnet.RoadSegment{FormOfWay: "11", FuncClass: 0}, NoSeparator},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifySeparator(&tc.seg))
		})
	}
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name    string
		typ     SeparatorType
		width   float64
		length  float64
		roadbed float64
		want    bool
	}{
		{"wide barrier", PhysicalBarrier, 3.5, 50, 60, true},
		{"narrow barrier", PhysicalBarrier, 2.9, 50, 60, false},
		{"short wide override ignores type", NoSeparator, 3.01, 10, 500, true},
		{"override needs length under 100", NoSeparator, 3.5, 100, 60, false},
		{"override needs width over 3", PhysicalBarrier, 3.0, 99, 60, false},
		{"general rule lower bounds", Vegetation, 3.01, 100.5, 80, true},
		{"length 40 with width 3.01", Vegetation, 3.01, 40, 80, true},
		{"general rule roadbed at 80", Vegetation, 3.01, 120, 80, true},
		{"general rule roadbed past 80", Vegetation, 3.01, 120, 80.01, false},
		{"narrow short separator", Vegetation, 2.0, 40, 60, false},
		{"roadbed too far", Rail, 4.0, 150, 80.01, false},
		{"no separator", NoSeparator, 10, 150, 20, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.typ, tc.width, tc.length, tc.roadbed))
		})
	}
}

func TestEstimateLanes(t *testing.T) {
	assert.Equal(t, 3, EstimateLanes(&roadnet.RoadSegment{Lanes: 3, FuncClass: 5}))
	assert.Equal(t, 2, EstimateLanes(&roadnet.RoadSegment{FuncClass: 3}))
	assert.Equal(t, 1, EstimateLanes(&roadnet.RoadSegment{FuncClass: 4}))
	assert.Equal(t, 1, EstimateLanes(&roadnet.RoadSegment{}))
}

func TestEstimateSeparatorWidth(t *testing.T) {
	cases := []struct {
		typ  SeparatorType
		fc   int
		want float64
	}{
		{PhysicalBarrier, 1, 3.0},
		{PhysicalBarrier, 3, 2.0},
		{PhysicalBarrier, 5, 1.5},
		{Vegetation, 3, 2.5},
		{Vegetation, 4, 1.5},
		{LegalBarrier, 1, 0.5},
		{Elevated, 1, 4.0},
		{Rail, 5, 4.0},
		{Tram, 5, 4.0},
		{Walkway, 2, 1.5},
		{NoSeparator, 1, 0.1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EstimateSeparatorWidth(tc.typ, tc.fc), "%s class %d", tc.typ, tc.fc)
	}
}

func TestDimensionsWithSibling(t *testing.T) {
	e := NewDimensionEstimator(0)
	a := &roadnet.RoadSegment{FuncClass: 2}
	b := &roadnet.RoadSegment{FuncClass: 5}

	d := e.WithSibling(a, b, 20)
	assert.InDelta(t, 15.125, d.SeparatorWidth, 1e-9)
	assert.InDelta(t, 20.0, d.RoadbedDistance, 1e-9)

	d = e.WithSibling(a, b, 2)
	assert.Equal(t, MinDimension, d.SeparatorWidth)
	assert.InDelta(t, 2.0, d.RoadbedDistance, 1e-9)

	d = e.WithSibling(a, b, 0)
	assert.Equal(t, MinDimension, d.SeparatorWidth)
	assert.Equal(t, MinDimension, d.RoadbedDistance)
}

func TestDimensionsWithoutSibling(t *testing.T) {
	e := NewDimensionEstimator(DefaultLaneWidth)

	d := e.WithoutSibling(&roadnet.RoadSegment{FuncClass: 1}, PhysicalBarrier)
	assert.InDelta(t, 3.0, d.SeparatorWidth, 1e-9)
	assert.InDelta(t, 9.5, d.RoadbedDistance, 1e-9)

	d = e.WithoutSibling(&roadnet.RoadSegment{FuncClass: 5, Lanes: 3}, NoSeparator)
	assert.InDelta(t, 0.1, d.SeparatorWidth, 1e-9)
	assert.InDelta(t, 0.1+3*3.25, d.RoadbedDistance, 1e-9)

	narrow := NewDimensionEstimator(3.0)
	d = narrow.WithoutSibling(&roadnet.RoadSegment{FuncClass: 4}, Vegetation)
	assert.InDelta(t, 4.5, d.RoadbedDistance, 1e-9)
}
