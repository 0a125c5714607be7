package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baustructura/bau-geo/internal/marker"
)

func sampleRoute() []marker.Marker {
	return []marker.Marker{
		{
			Position: marker.Position{Lat: 48.137154, Lng: 11.576124},
			Street:   "Marienplatz", HouseNumber: "1", PostalCode: "80331", City: "München",
			LoadClass: marker.Bk3_2, Notes: "Rathaus",
		},
		{
			Position:  marker.Position{Lat: 49.452102, Lng: 11.076665},
			Name:      "Nürnberg Hbf",
			LoadClass: marker.None,
		},
	}
}

func TestGeoJSON(t *testing.T) {
	fc := GeoJSON(sampleRoute())
	require.Len(t, fc.Features, 3)

	first := fc.Features[0]
	assert.Equal(t, orb.Point{11.576124, 48.137154}, first.Geometry)
	assert.Equal(t, "Bk3_2", first.Properties["loadClass"])
	assert.Equal(t, "#008000", first.Properties["color"])
	assert.Equal(t, "Marienplatz 1", first.Properties["title"])
	assert.Equal(t, "Rathaus", first.Properties["notes"])
	_, hasName := first.Properties["name"]
	assert.False(t, hasName)

	line := fc.Features[2]
	ls, ok := line.Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, ls, 2)
	assert.Equal(t, "route", line.Properties["kind"])
	assert.InDelta(t, 150_500, line.Properties["distanceMeters"].(float64), 1_000)

	require.Len(t, fc.BBox, 4)
	assert.InDelta(t, 48.137154, fc.BBox[1], 1e-9)
}

func TestGeoJSON_SingleMarkerHasNoLine(t *testing.T) {
	fc := GeoJSON(sampleRoute()[:1])
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Point", fc.Features[0].Geometry.GeoJSONType())

	empty := GeoJSON(nil)
	assert.Empty(t, empty.Features)
	assert.Nil(t, empty.BBox)
}

func TestGeoJSON_RoundTripThroughJSON(t *testing.T) {
	data, err := json.Marshal(GeoJSON(sampleRoute()))
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)

	got := FromGeoJSON(fc)
	assert.Equal(t, sampleRoute(), got)
}

func TestWKT(t *testing.T) {
	cases := []struct {
		name    string
		markers []marker.Marker
		want    string
	}{
		{"empty", nil, "LINESTRING EMPTY"},
		{"single", sampleRoute()[:1], "POINT(11.576124 48.137154)"},
		{"line", sampleRoute(), "LINESTRING(11.576124 48.137154,11.076665 49.452102)"},
		{"same spot twice", []marker.Marker{sampleRoute()[0], sampleRoute()[0]}, "POINT(11.576124 48.137154)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := WKT(tc.markers)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRouteGeometry_Types(t *testing.T) {
	g, err := RouteGeometry(sampleRoute())
	require.NoError(t, err)
	assert.Equal(t, geom.TypeLineString, g.Type())
	assert.Equal(t, 2, g.MustAsLineString().Coordinates().Length())

	g, err = RouteGeometry(sampleRoute()[:1])
	require.NoError(t, err)
	assert.Equal(t, geom.TypePoint, g.Type())
}

func TestPack(t *testing.T) {
	saved := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	doc := NewDocument("ring-ost", "Ring Ost", sampleRoute(), 150_512.3, saved)

	data, err := Pack(doc)
	require.NoError(t, err)

	got, err := Unpack(data)
	require.NoError(t, err)
	assert.Equal(t, "ring-ost", got.RouteID)
	assert.True(t, saved.Equal(got.SavedAt))
	assert.Equal(t, sampleRoute(), got.Markers())

	_, err = Unpack([]byte{0xc1})
	assert.Error(t, err)
}
