package route

import (
	"math"
	"slices"
	"testing"

	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baustructura/bau-geo/internal/marker"
)

var (
	munich    = marker.Position{Lat: 48.137154, Lng: 11.576124}
	nuremberg = marker.Position{Lat: 49.452102, Lng: 11.076665}
	augsburg  = marker.Position{Lat: 48.370545, Lng: 10.897790}
	regensbg  = marker.Position{Lat: 49.013432, Lng: 12.101624}
)

func markersAt(ps ...marker.Position) []marker.Marker {
	out := make([]marker.Marker, len(ps))
	for i, p := range ps {
		out[i] = marker.Marker{Position: p}
	}
	return out
}

func TestTotalDistance_FewerThanTwoMarkers(t *testing.T) {
	assert.Zero(t, TotalDistance(nil))
	assert.Zero(t, TotalDistance(markersAt(munich)))
	assert.Empty(t, Segments(markersAt(munich)))
	assert.Nil(t, Polyline(markersAt(munich)))
}

func TestTotalDistance_MunichNuremberg(t *testing.T) {
	d := TotalDistance(markersAt(munich, nuremberg))
	assert.InDelta(t, 150_500, d, 1_000)
	assert.True(t, d > 150_000 && d < 170_000, "got %f", d)
}

func TestTotalDistance_IdenticalPointsContributeZero(t *testing.T) {
	d := TotalDistance(markersAt(munich, munich, munich))
	assert.Zero(t, d)
	assert.False(t, math.IsNaN(d))

	withDup := TotalDistance(markersAt(munich, munich, nuremberg))
	assert.InDelta(t, TotalDistance(markersAt(munich, nuremberg)), withDup, 1e-9)
}

func TestTotalDistance_SymmetricUnderReversal(t *testing.T) {
	ms := markersAt(munich, augsburg, nuremberg, regensbg)
	rev := slices.Clone(ms)
	slices.Reverse(rev)

	assert.InDelta(t, TotalDistance(ms), TotalDistance(rev), 1e-6)
}

func TestHaversine_AgreesWithReference(t *testing.T) {
	pairs := [][2]marker.Position{
		{munich, nuremberg},
		{munich, augsburg},
		{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}},
		{{Lat: 52.52, Lng: 13.405}, {Lat: 53.5511, Lng: 9.9937}},
		{{Lat: -33.8688, Lng: 151.2093}, {Lat: -37.8136, Lng: 144.9631}},
		{{Lat: 89.9, Lng: 0}, {Lat: 89.9, Lng: 180}},
	}
	for _, p := range pairs {
		got := Haversine(p[0], p[1])
		ref := geo.DistanceHaversine(Point(p[0]), Point(p[1]))
		require.NotZero(t, ref)
		assert.InEpsilon(t, ref, got, 0.005, "%v -> %v", p[0], p[1])
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(markersAt(munich, nuremberg, regensbg))
	require.Len(t, s.Segments, 2)
	require.Len(t, s.Polyline, 3)
	assert.Equal(t, [2]float64{munich.Lat, munich.Lng}, s.Polyline[0])
	assert.InDelta(t, s.Segments[0]+s.Segments[1], s.DistanceMeters, 1e-6)
	assert.InDelta(t, s.DistanceMeters/1000, s.DistanceKm, 1e-9)

	empty := Summarize(nil)
	assert.NotNil(t, empty.Polyline)
	assert.NotNil(t, empty.Segments)
}

func TestCenter(t *testing.T) {
	_, ok := Center(nil)
	assert.False(t, ok)

	c, ok := Center(markersAt(marker.Position{Lat: 10, Lng: 20}, marker.Position{Lat: 20, Lng: 40}))
	require.True(t, ok)
	assert.InDelta(t, 15, c.Lat, 1e-9)
	assert.InDelta(t, 30, c.Lng, 1e-9)
}

func TestBound(t *testing.T) {
	_, ok := Bound(nil)
	assert.False(t, ok)

	b, ok := Bound(markersAt(munich, nuremberg, augsburg))
	require.True(t, ok)
	assert.InDelta(t, augsburg.Lng, b.Left(), 1e-9)
	assert.InDelta(t, munich.Lng, b.Right(), 1e-9)
	assert.InDelta(t, munich.Lat, b.Bottom(), 1e-9)
	assert.InDelta(t, nuremberg.Lat, b.Top(), 1e-9)
}

func TestOptimize(t *testing.T) {
	assert.Equal(t, []int{}, Optimize(nil))
	assert.Equal(t, []int{0, 1}, Optimize(markersAt(munich, nuremberg)))

	// Munich -> Nuremberg -> Augsburg -> Regensburg: Augsburg is closer to Munich.
	order := Optimize(markersAt(munich, nuremberg, augsburg, regensbg))
	assert.Equal(t, []int{0, 2, 1, 3}, order)
}

func TestOptimize_KeepsEndpointsAndShortensDetour(t *testing.T) {
	ms := markersAt(munich, regensbg, augsburg, nuremberg, munich)
	order := Optimize(ms)
	require.Len(t, order, len(ms))
	assert.Equal(t, 0, order[0])
	assert.Equal(t, len(ms)-1, order[len(order)-1])

	reordered := make([]marker.Marker, len(ms))
	for i, idx := range order {
		reordered[i] = ms[idx]
	}
	assert.LessOrEqual(t, TotalDistance(reordered), TotalDistance(ms)+1e-6)
}
