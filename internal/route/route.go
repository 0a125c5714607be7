// Package route derives the polyline and distances of an ordered marker sequence.
package route

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/baustructura/bau-geo/internal/marker"
)

// EarthRadius is the mean spherical earth radius in meters.
const EarthRadius = 6371000.0

// Point converts a marker position into an orb point (x=lng, y=lat).
func Point(p marker.Position) orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b marker.Position) float64 {
	if a == b {
		return 0
	}
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push h a hair past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	return 2 * EarthRadius * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Segments returns the distance of each leg between consecutive markers.
func Segments(markers []marker.Marker) []float64 {
	if len(markers) < 2 {
		return []float64{}
	}
	out := make([]float64, len(markers)-1)
	for i := 1; i < len(markers); i++ {
		out[i-1] = Haversine(markers[i-1].Position, markers[i].Position)
	}
	return out
}

// TotalDistance sums the legs in insertion order; zero for fewer than two markers.
func TotalDistance(markers []marker.Marker) float64 {
	var total float64
	for _, d := range Segments(markers) {
		total += d
	}
	return total
}

// Polyline returns the markers as a line string in insertion order, or nil
// when there is nothing to connect.
func Polyline(markers []marker.Marker) orb.LineString {
	if len(markers) < 2 {
		return nil
	}
	ls := make(orb.LineString, len(markers))
	for i, m := range markers {
		ls[i] = Point(m.Position)
	}
	return ls
}

// Bound returns the bounding box of the markers. ok is false when there are
// no markers.
func Bound(markers []marker.Marker) (orb.Bound, bool) {
	if len(markers) == 0 {
		return orb.Bound{}, false
	}
	mp := make(orb.MultiPoint, len(markers))
	for i, m := range markers {
		mp[i] = Point(m.Position)
	}
	return mp.Bound(), true
}

// Center returns the centre of the markers' bounding box. ok is false when
// there are no markers.
func Center(markers []marker.Marker) (marker.Position, bool) {
	b, ok := Bound(markers)
	if !ok {
		return marker.Position{}, false
	}
	c := b.Center()
	return marker.Position{Lat: c.Lat(), Lng: c.Lon()}, true
}

// Summary is the read-only route projection of a marker sequence.
type Summary struct {
	DistanceMeters float64      `json:"distanceMeters" doc:"Total route length in meters"`
	DistanceKm     float64      `json:"distanceKm" doc:"Total route length in kilometers"`
	Segments       []float64    `json:"segments" doc:"Leg lengths in meters, in route order"`
	Polyline       [][2]float64 `json:"polyline" doc:"Route as [lat, lng] pairs; empty below two markers"`
}

// Summarize derives the route projection of markers.
func Summarize(markers []marker.Marker) Summary {
	segments := Segments(markers)
	var total float64
	for _, d := range segments {
		total += d
	}
	line := [][2]float64{}
	for _, p := range Polyline(markers) {
		line = append(line, [2]float64{p.Lat(), p.Lon()})
	}
	return Summary{
		DistanceMeters: total,
		DistanceKm:     total / 1000,
		Segments:       segments,
		Polyline:       line,
	}
}
