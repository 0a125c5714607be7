package export

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/baustructura/bau-geo/internal/marker"
)

// MsgpackContentType is the media type of Pack output.
const MsgpackContentType = "application/msgpack"

// Stop is the wire form of a marker.
type Stop struct {
	Lat         float64 `msgpack:"lat"`
	Lng         float64 `msgpack:"lng"`
	Name        string  `msgpack:"name,omitempty"`
	Street      string  `msgpack:"street,omitempty"`
	HouseNumber string  `msgpack:"houseNumber,omitempty"`
	PostalCode  string  `msgpack:"postalCode,omitempty"`
	City        string  `msgpack:"city,omitempty"`
	LoadClass   string  `msgpack:"loadClass"`
	Notes       string  `msgpack:"notes,omitempty"`
}

// Document is a route packed for transfer.
type Document struct {
	RouteID        string    `msgpack:"routeId"`
	Name           string    `msgpack:"name,omitempty"`
	DistanceMeters float64   `msgpack:"distanceMeters"`
	SavedAt        time.Time `msgpack:"savedAt"`
	Stops          []Stop    `msgpack:"stops"`
}

// NewDocument converts markers to their wire form.
func NewDocument(routeID, name string, markers []marker.Marker, distance float64, savedAt time.Time) Document {
	doc := Document{
		RouteID:        routeID,
		Name:           name,
		DistanceMeters: distance,
		SavedAt:        savedAt,
		Stops:          make([]Stop, len(markers)),
	}
	for i, m := range markers {
		doc.Stops[i] = Stop{
			Lat:         m.Position.Lat,
			Lng:         m.Position.Lng,
			Name:        m.Name,
			Street:      m.Street,
			HouseNumber: m.HouseNumber,
			PostalCode:  m.PostalCode,
			City:        m.City,
			LoadClass:   m.LoadClass.String(),
			Notes:       m.Notes,
		}
	}
	return doc
}

// Markers converts the stops back. Unknown load classes become None.
func (d Document) Markers() []marker.Marker {
	out := make([]marker.Marker, len(d.Stops))
	for i, s := range d.Stops {
		out[i] = marker.Marker{
			Position:    marker.Position{Lat: s.Lat, Lng: s.Lng},
			Name:        s.Name,
			Street:      s.Street,
			HouseNumber: s.HouseNumber,
			PostalCode:  s.PostalCode,
			City:        s.City,
			LoadClass:   marker.ParseLoadClass(s.LoadClass),
			Notes:       s.Notes,
		}
	}
	return out
}

// Pack encodes doc as msgpack.
func Pack(doc Document) ([]byte, error) {
	data, err := msgpack.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode msgpack: %w", err)
	}
	return data, nil
}

// Unpack decodes a Pack result.
func Unpack(data []byte) (Document, error) {
	var doc Document
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode msgpack: %w", err)
	}
	return doc, nil
}
