package mapview

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/baustructura/bau-geo/internal/marker"
	"github.com/baustructura/bau-geo/internal/palette"
	"github.com/baustructura/bau-geo/internal/route"
)

// DefaultCenter is the centre of Germany, used while no marker is placed.
var DefaultCenter = marker.Position{Lat: 51.1657, Lng: 10.4515}

const (
	defaultZoom = 6
	markerZoom  = 13
)

// Tooltip is the popup content of a marker.
type Tooltip struct {
	Title     string `json:"title" example:"Hauptstraße 1"`
	Locality  string `json:"locality,omitempty" example:"80331 München"`
	LoadClass string `json:"loadClass" example:"Bk3.2"`
	Notes     string `json:"notes,omitempty"`
}

// MarkerView is one drawn marker.
type MarkerView struct {
	Index     int              `json:"index"`
	Position  marker.Position  `json:"position"`
	LoadClass marker.LoadClass `json:"loadClass"`
	Color     string           `json:"color"`
	Icon      palette.Icon     `json:"icon"`
	Tooltip   Tooltip          `json:"tooltip"`
	Selected  bool             `json:"selected"`
}

// Fallback replaces the tile map when tiles cannot be loaded.
type Fallback struct {
	MarkerCount   int             `json:"markerCount"`
	Center        marker.Position `json:"center"`
	MapURL        string          `json:"mapUrl" doc:"OpenStreetMap deep link centred on the markers"`
	DirectionsURL string          `json:"directionsUrl,omitempty" doc:"Google Maps directions through all markers"`
}

// View is the full render state of a surface. It is a pure projection of the
// marker store plus the surface's own UI state.
type View struct {
	Version        uint64               `json:"version" doc:"Marker store version; a view with a lower version is stale"`
	Mode           Mode                 `json:"mode"`
	SelectedClass  marker.LoadClass     `json:"selectedClass"`
	TileStatus     TileStatus           `json:"tileStatus"`
	Center         marker.Position      `json:"center"`
	Zoom           int                  `json:"zoom"`
	Markers        []MarkerView         `json:"markers"`
	Polyline       [][2]float64         `json:"polyline,omitempty" doc:"[lat, lng] pairs; absent below two markers"`
	RouteColor     string               `json:"routeColor"`
	DistanceMeters float64              `json:"distanceMeters"`
	DistanceKm     float64              `json:"distanceKm"`
	Segments       []float64            `json:"segments"`
	Legend         []palette.LegendItem `json:"legend"`
	Editing        *EditForm            `json:"editing,omitempty"`
	Fallback       *Fallback            `json:"fallback,omitempty"`
}

// Render projects the current state. It never fails; a failed tile layer
// yields a view with Fallback set.
func (s *Surface) Render() View {
	markers := s.store.List()
	summary := route.Summarize(markers)

	v := View{
		Version:        s.store.Version(),
		Mode:           s.mode,
		SelectedClass:  s.selected,
		TileStatus:     s.tiles,
		Center:         DefaultCenter,
		Zoom:           defaultZoom,
		Markers:        make([]MarkerView, 0, len(markers)),
		RouteColor:     palette.RouteColor,
		DistanceMeters: summary.DistanceMeters,
		DistanceKm:     summary.DistanceKm,
		Segments:       summary.Segments,
		Legend:         palette.Legend(),
	}
	if len(markers) >= 2 {
		v.Polyline = summary.Polyline
	}
	if c, ok := route.Center(markers); ok {
		v.Center = c
		v.Zoom = markerZoom
	}

	for i, m := range markers {
		v.Markers = append(v.Markers, MarkerView{
			Index:     i,
			Position:  m.Position,
			LoadClass: m.LoadClass,
			Color:     palette.ColorFor(m.LoadClass),
			Icon:      palette.IconFor(m.LoadClass),
			Tooltip: Tooltip{
				Title:     m.Title(i),
				Locality:  m.Locality(),
				LoadClass: palette.Label(m.LoadClass),
				Notes:     m.Notes,
			},
			Selected: i == s.editing,
		})
	}

	if form, ok := s.Editing(); ok {
		v.Editing = &form
	}
	if s.tiles == TilesFailed {
		fb := NewFallback(markers)
		v.Fallback = &fb
	}
	return v
}

// NewFallback builds the link-based view for markers.
func NewFallback(markers []marker.Marker) Fallback {
	center, ok := route.Center(markers)
	zoom := markerZoom
	if !ok {
		center = DefaultCenter
		zoom = defaultZoom
	}
	return Fallback{
		MarkerCount:   len(markers),
		Center:        center,
		MapURL:        OSMLink(center, zoom),
		DirectionsURL: DirectionsLink(markers),
	}
}

// OSMLink links to openstreetmap.org centred on p.
func OSMLink(p marker.Position, zoom int) string {
	q := url.Values{}
	q.Set("mlat", fmt.Sprintf("%.6f", p.Lat))
	q.Set("mlon", fmt.Sprintf("%.6f", p.Lng))
	return fmt.Sprintf("https://www.openstreetmap.org/?%s#map=%d/%.6f/%.6f", q.Encode(), zoom, p.Lat, p.Lng)
}

// DirectionsLink links to Google Maps directions through every marker in
// route order, or returns "" for fewer than two markers.
func DirectionsLink(markers []marker.Marker) string {
	if len(markers) < 2 {
		return ""
	}
	stops := make([]string, len(markers))
	for i, m := range markers {
		stops[i] = fmt.Sprintf("%.6f,%.6f", m.Position.Lat, m.Position.Lng)
	}
	return "https://www.google.com/maps/dir/" + strings.Join(stops, "/")
}
