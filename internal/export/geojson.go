// Package export encodes a marker route for other tools: GeoJSON for web
// maps, WKT for GIS and databases, msgpack for compact transfer.
package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/baustructura/bau-geo/internal/marker"
	"github.com/baustructura/bau-geo/internal/palette"
	"github.com/baustructura/bau-geo/internal/route"
)

// GeoJSON returns one Point feature per marker in route order, followed by a
// LineString feature for the route when there are at least two markers. The
// collection carries the bounding box of the markers.
func GeoJSON(markers []marker.Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, m := range markers {
		f := geojson.NewFeature(route.Point(m.Position))
		f.Properties["index"] = i
		f.Properties["title"] = m.Title(i)
		f.Properties["loadClass"] = m.LoadClass.String()
		f.Properties["color"] = palette.ColorFor(m.LoadClass)
		setIf(f.Properties, "name", m.Name)
		setIf(f.Properties, "street", m.Street)
		setIf(f.Properties, "houseNumber", m.HouseNumber)
		setIf(f.Properties, "postalCode", m.PostalCode)
		setIf(f.Properties, "city", m.City)
		setIf(f.Properties, "notes", m.Notes)
		fc.Append(f)
	}

	if line := route.Polyline(markers); line != nil {
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["distanceMeters"] = route.TotalDistance(markers)
		f.Properties["stroke"] = palette.RouteColor
		fc.Append(f)
	}
	if b, ok := route.Bound(markers); ok {
		fc.BBox = geojson.NewBBox(b)
	}
	return fc
}

// FromGeoJSON reads the Point features of fc back into markers, in document
// order. Non-point features are skipped.
func FromGeoJSON(fc *geojson.FeatureCollection) []marker.Marker {
	var out []marker.Marker
	for _, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		out = append(out, marker.Marker{
			Position:    marker.Position{Lat: p.Lat(), Lng: p.Lon()},
			Name:        f.Properties.MustString("name", ""),
			Street:      f.Properties.MustString("street", ""),
			HouseNumber: f.Properties.MustString("houseNumber", ""),
			PostalCode:  f.Properties.MustString("postalCode", ""),
			City:        f.Properties.MustString("city", ""),
			LoadClass:   marker.ParseLoadClass(f.Properties.MustString("loadClass", "")),
			Notes:       f.Properties.MustString("notes", ""),
		})
	}
	return out
}

func setIf(props geojson.Properties, key, value string) {
	if value != "" {
		props[key] = value
	}
}
