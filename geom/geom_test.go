package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeodesicDistance(t *testing.T) {
	tests := []struct {
		name     string
		p1, p2   orb.Point
		expected float64
		delta    float64
	}{
		{"same point", orb.Point{-103.35, 20.67}, orb.Point{-103.35, 20.67}, 0, 0},
		{"one degree of longitude on the equator", orb.Point{0, 0}, orb.Point{1, 0}, 111319.49, 0.01},
		{"one degree of latitude from the equator", orb.Point{0, 0}, orb.Point{0, 1}, 110574.39, 0.5},
		{"antipodal points on the equator", orb.Point{0, 0}, orb.Point{180, 0}, 20003931.46, 0.5},
		{"short hop in Guadalajara", orb.Point{-103.35, 20.67}, orb.Point{-103.349, 20.67}, 104.2, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, GeodesicDistance(tt.p1, tt.p2), tt.delta)
		})
	}
}

func TestGeodesicDistanceSymmetric(t *testing.T) {
	a := orb.Point{-103.3501, 20.6702}
	b := orb.Point{-103.3423, 20.6755}
	assert.InDelta(t, GeodesicDistance(a, b), GeodesicDistance(b, a), 1e-6)
}

func TestPathLength(t *testing.T) {
	ls := orb.LineString{{0, 0}, {0.001, 0}, {0.002, 0}}
	length, err := PathLength(ls)
	require.NoError(t, err)
	assert.InDelta(t, 222.64, length, 0.01)

	_, err = PathLength(orb.LineString{{0, 0}})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidGeometry))

	_, err = PathLength(nil)
	assert.True(t, eris.Is(err, ErrInvalidGeometry))
}

func TestInterpolateByPercentageEndpoints(t *testing.T) {
	lines := []orb.LineString{
		{{-103.35, 20.67}, {-103.349, 20.6705}},
		{{-103.35, 20.67}, {-103.3495, 20.6701}, {-103.349, 20.6703}, {-103.3482, 20.6711}},
		{{0, 0}, {0, 0}, {0.001, 0}},
	}

	for _, ls := range lines {
		start, err := InterpolateByPercentage(ls, 0)
		require.NoError(t, err)
		assert.Equal(t, ls[0], start)

		end, err := InterpolateByPercentage(ls, 100)
		require.NoError(t, err)
		assert.Equal(t, ls[len(ls)-1], end)

		past, err := InterpolateByPercentage(ls, 140)
		require.NoError(t, err)
		assert.Equal(t, ls[len(ls)-1], past)

		before, err := InterpolateByPercentage(ls, -5)
		require.NoError(t, err)
		assert.Equal(t, ls[0], before)
	}
}

func TestInterpolateByPercentageMidpoint(t *testing.T) {
	ls := orb.LineString{{0, 0}, {0.001, 0}, {0.002, 0}}

	mid, err := InterpolateByPercentage(ls, 50)
	require.NoError(t, err)
	assert.InDelta(t, 0.001, mid[0], 1e-9)
	assert.Equal(t, 0.0, mid[1])

	quarter, err := InterpolateByPercentage(ls, 25)
	require.NoError(t, err)
	assert.InDelta(t, 0.0005, quarter[0], 1e-9)
}

func TestInterpolateByPercentageMonotonic(t *testing.T) {
	ls := orb.LineString{{-103.35, 20.67}, {-103.3495, 20.6701}, {-103.349, 20.6703}, {-103.3482, 20.6711}}
	total, err := PathLength(ls)
	require.NoError(t, err)

	alongPath := func(pt orb.Point) float64 {
		// distance from the start measured along the polyline
		acc := 0.0
		for i := 0; i < len(ls)-1; i++ {
			seg := GeodesicDistance(ls[i], ls[i+1])
			if MinDistanceBetweenPaths(orb.LineString{ls[i], ls[i+1]}, orb.LineString{pt}) < 1e-9 {
				return acc + GeodesicDistance(ls[i], pt)
			}
			acc += seg
		}
		return acc
	}

	prev := -1.0
	for pct := 0.0; pct <= 100; pct += 5 {
		pt, err := InterpolateByPercentage(ls, pct)
		require.NoError(t, err)
		d := alongPath(pt)
		assert.GreaterOrEqual(t, d, prev, "pct %.0f", pct)
		assert.InDelta(t, total*pct/100, d, 0.5, "pct %.0f", pct)
		prev = d
	}
}

func TestInterpolateByPercentageInvalid(t *testing.T) {
	_, err := InterpolateByPercentage(orb.LineString{{1, 1}}, 50)
	assert.True(t, eris.Is(err, ErrInvalidGeometry))
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name     string
		ls       orb.LineString
		expected float64
	}{
		{"east", orb.LineString{{0, 0}, {1, 0}}, 0},
		{"north", orb.LineString{{0, 0}, {0, 1}}, 90},
		{"north east", orb.LineString{{0, 0}, {1, 1}}, 45},
		{"west", orb.LineString{{0, 0}, {-1, 0}}, 180},
		{"south", orb.LineString{{0, 0}, {0, -1}, {5, 5}}, -90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Bearing(tt.ls)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, b, 1e-9)
		})
	}

	_, err := Bearing(orb.LineString{{0, 0}})
	assert.True(t, eris.Is(err, ErrInvalidGeometry))
}
