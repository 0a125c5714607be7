package export

import (
	"fmt"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/baustructura/bau-geo/internal/marker"
)

// RouteGeometry is the route as a simple feature: a LineString for two or
// more distinct positions, a Point when every marker sits on the same spot and
// an empty LineString for none.
func RouteGeometry(markers []marker.Marker) (geom.Geometry, error) {
	if len(markers) == 0 {
		return geom.LineString{}.AsGeometry(), nil
	}
	if !distinctPositions(markers) {
		p := markers[0].Position
		pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: p.Lng, Y: p.Lat}, Type: geom.DimXY})
		if err != nil {
			return geom.Geometry{}, fmt.Errorf("route point: %w", err)
		}
		return pt.AsGeometry(), nil
	}
	coords := make([]float64, 0, len(markers)*2)
	for _, m := range markers {
		coords = append(coords, m.Position.Lng, m.Position.Lat)
	}
	ls, err := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("route line: %w", err)
	}
	return ls.AsGeometry(), nil
}

func distinctPositions(markers []marker.Marker) bool {
	for _, m := range markers[1:] {
		if m.Position != markers[0].Position {
			return true
		}
	}
	return false
}

// WKT renders the route geometry as well-known text (x=lng, y=lat).
func WKT(markers []marker.Marker) (string, error) {
	g, err := RouteGeometry(markers)
	if err != nil {
		return "", err
	}
	return g.AsText(), nil
}
