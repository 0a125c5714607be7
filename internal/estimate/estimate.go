// Package estimate prices the pavement build-up of a planned route.
package estimate

import (
	"fmt"

	"github.com/baustructura/bau-geo/internal/marker"
	"github.com/baustructura/bau-geo/internal/palette"
)

// RoadType is a standard road category with a typical carriageway width.
type RoadType struct {
	Name   string  `json:"name" example:"Kreisstraße"`
	WidthM float64 `json:"widthM" doc:"Standard width in meters" example:"6.5"`
}

// RoadTypes lists the standard widths, widest first.
var RoadTypes = []RoadType{
	{Name: "Autobahn", WidthM: 15.5},
	{Name: "Bundesstraße", WidthM: 12.5},
	{Name: "Landstraße", WidthM: 8.5},
	{Name: "Kreisstraße", WidthM: 6.5},
	{Name: "Gemeindestraße", WidthM: 5.5},
}

// DefaultCustomWidth is used when a custom road type has no width set.
const DefaultCustomWidth = 3.5

// Width returns the standard width of the named road type.
func Width(roadType string) (float64, bool) {
	for _, rt := range RoadTypes {
		if rt.Name == roadType {
			return rt.WidthM, true
		}
	}
	return 0, false
}

// Prices in EUR per m².
const (
	PriceSurface = 32.0
	PriceBase    = 24.0
	PriceFrost   = 14.0
	PriceGravel  = 18.0
)

// LineItem is one priced layer.
type LineItem struct {
	Name       string  `json:"name" example:"Asphaltdecke"`
	Thickness  string  `json:"thickness" example:"4 cm"`
	AreaM2     float64 `json:"areaM2"`
	PricePerM2 float64 `json:"pricePerM2"`
	TotalEUR   float64 `json:"totalEUR"`
}

// Estimate is the material bill for a route.
type Estimate struct {
	LoadClass marker.LoadClass `json:"loadClass"`
	LengthKm  float64          `json:"lengthKm"`
	WidthM    float64          `json:"widthM"`
	AreaM2    float64          `json:"areaM2"`
	Items     []LineItem       `json:"items"`
	TotalEUR  float64          `json:"totalEUR"`
}

// Materials prices the standard build-up of class over a road of the given
// length and width. Unclassified routes and non-positive dimensions yield an
// empty estimate.
func Materials(lengthKm, widthM float64, class marker.LoadClass) Estimate {
	est := Estimate{LoadClass: class, LengthKm: lengthKm, WidthM: widthM, Items: []LineItem{}}
	if lengthKm <= 0 || widthM <= 0 {
		return est
	}
	info, ok := palette.Info(class)
	if !ok {
		return est
	}

	area := lengthKm * 1000 * widthM
	est.AreaM2 = area

	add := func(name string, cm int, price float64) {
		item := LineItem{
			Name:       name,
			Thickness:  fmt.Sprintf("%d cm", cm),
			AreaM2:     area,
			PricePerM2: price,
			TotalEUR:   area * price,
		}
		est.Items = append(est.Items, item)
		est.TotalEUR += item.TotalEUR
	}

	add("Asphaltdecke", info.SurfaceCm, PriceSurface)
	add("Asphalttragschicht", info.BaseCm, PriceBase)
	if info.HasGravelBase() {
		add("Schottertragschicht", info.GravelCm, PriceGravel)
		add("Frostschutzschicht", info.FrostWithGravelCm, PriceFrost)
	} else {
		add("Frostschutzschicht", info.FrostCm, PriceFrost)
	}
	return est
}
