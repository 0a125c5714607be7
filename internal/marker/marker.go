// Package marker holds the placed location markers of a map editing session.
package marker

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidCoordinate is returned for a latitude outside [-90,90] or a
	// longitude outside [-180,180].
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrIndexOutOfRange is returned when an index no longer names a marker.
	ErrIndexOutOfRange = errors.New("marker index out of range")
)

// Position is a WGS84 latitude/longitude pair.
type Position struct {
	Lat float64 `json:"lat" minimum:"-90" maximum:"90" doc:"Latitude" example:"48.137154"`
	Lng float64 `json:"lng" minimum:"-180" maximum:"180" doc:"Longitude" example:"11.576124"`
}

// Validate reports ErrInvalidCoordinate for out of range or non-finite values.
func (p Position) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinate, p.Lat, p.Lng)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v not in [-90, 90]", ErrInvalidCoordinate, p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: longitude %v not in [-180, 180]", ErrInvalidCoordinate, p.Lng)
	}
	return nil
}

// ParsePosition parses "lat,lng" as typed on the command line.
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Position{}, fmt.Errorf("%w: %q is not lat,lng", ErrInvalidCoordinate, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Position{}, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinate, parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Position{}, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinate, parts[1])
	}
	p := Position{Lat: lat, Lng: lng}
	return p, p.Validate()
}

// Marker is one surveyed or planned point on the map.
type Marker struct {
	Position    Position  `json:"position"`
	Name        string    `json:"name,omitempty" doc:"Display name from address search"`
	Street      string    `json:"street,omitempty" doc:"Street name"`
	HouseNumber string    `json:"houseNumber,omitempty" doc:"House number"`
	PostalCode  string    `json:"postalCode,omitempty" doc:"Postal code"`
	City        string    `json:"city,omitempty" doc:"City"`
	LoadClass   LoadClass `json:"loadClass" doc:"Pavement load class (Belastungsklasse)" example:"Bk3_2"`
	Notes       string    `json:"notes,omitempty" doc:"Free text notes"`
}

// Attributes is a partial marker update; nil fields are left untouched.
type Attributes struct {
	Name        *string    `json:"name,omitempty" doc:"Display name"`
	Street      *string    `json:"street,omitempty" doc:"Street name"`
	HouseNumber *string    `json:"houseNumber,omitempty" doc:"House number"`
	PostalCode  *string    `json:"postalCode,omitempty" doc:"Postal code"`
	City        *string    `json:"city,omitempty" doc:"City"`
	LoadClass   *LoadClass `json:"loadClass,omitempty" doc:"Pavement load class" example:"Bk10"`
	Notes       *string    `json:"notes,omitempty" doc:"Free text notes"`
}

// apply merges the set fields of a into m.
func (a Attributes) apply(m *Marker) {
	if a.Name != nil {
		m.Name = *a.Name
	}
	if a.Street != nil {
		m.Street = *a.Street
	}
	if a.HouseNumber != nil {
		m.HouseNumber = *a.HouseNumber
	}
	if a.PostalCode != nil {
		m.PostalCode = *a.PostalCode
	}
	if a.City != nil {
		m.City = *a.City
	}
	if a.LoadClass != nil {
		m.LoadClass = *a.LoadClass
		if !m.LoadClass.Valid() {
			m.LoadClass = None
		}
	}
	if a.Notes != nil {
		m.Notes = *a.Notes
	}
}

// Title is the heading shown in a marker tooltip.
func (m Marker) Title(index int) string {
	switch {
	case m.Street != "" && m.HouseNumber != "":
		return m.Street + " " + m.HouseNumber
	case m.Street != "":
		return m.Street
	case m.Name != "":
		return m.Name
	}
	return fmt.Sprintf("Standort %d", index+1)
}

// Locality joins postal code and city.
func (m Marker) Locality() string {
	switch {
	case m.PostalCode != "" && m.City != "":
		return m.PostalCode + " " + m.City
	case m.PostalCode != "":
		return m.PostalCode
	}
	return m.City
}

// String returns s as a pointer, for building Attributes.
func String(s string) *string { return &s }

// Class returns c as a pointer, for building Attributes.
func Class(c LoadClass) *LoadClass { return &c }
