// Package palette maps pavement load classes to their display colour, marker
// icon and RStO construction data.
package palette

import (
	"fmt"

	"github.com/baustructura/bau-geo/internal/marker"
)

var colors = map[marker.LoadClass]string{
	marker.Bk100: "#FF0000",
	marker.Bk32:  "#FFA500",
	marker.Bk10:  "#FFFF00",
	marker.Bk3_2: "#008000",
	marker.Bk1_8: "#0000FF",
	marker.Bk1_0: "#800080",
	marker.Bk0_3: "#A52A2A",
	marker.None:  "#808080",
}

// RouteColor is the stroke colour of the connecting polyline.
const RouteColor = "#3b82f6"

// Icon describes how a marker is drawn.
type Icon struct {
	Shape        string `json:"shape" doc:"Icon shape" example:"pin"`
	Color        string `json:"color" doc:"Fill colour (CSS)" example:"#FF0000"`
	Width        int    `json:"width" doc:"Icon width in pixels" example:"24"`
	Height       int    `json:"height" doc:"Icon height in pixels" example:"36"`
	AnchorX      int    `json:"anchorX" doc:"Anchor x offset in pixels"`
	AnchorY      int    `json:"anchorY" doc:"Anchor y offset in pixels"`
	PopupAnchorX int    `json:"popupAnchorX" doc:"Popup anchor x offset"`
	PopupAnchorY int    `json:"popupAnchorY" doc:"Popup anchor y offset"`
	SVG          string `json:"svg" doc:"Inline SVG markup"`
}

const pinPath = "M12 0C5.4 0 0 5.4 0 12c0 7.2 12 24 12 24s12-16.8 12-24c0-6.6-5.4-12-12-12zm0 18c-3.3 0-6-2.7-6-6s2.7-6 6-6 6 2.7 6 6-2.7 6-6 6z"

// ColorFor returns the colour token of c. Values outside the enumeration get
// the None colour.
func ColorFor(c marker.LoadClass) string {
	if color, ok := colors[c]; ok {
		return color
	}
	return colors[marker.None]
}

// ColorForName styles a raw, possibly legacy, load class string.
func ColorForName(name string) string {
	return ColorFor(marker.ParseLoadClass(name))
}

// IconFor returns the pin icon for c.
func IconFor(c marker.LoadClass) Icon {
	color := ColorFor(c)
	return Icon{
		Shape:        "pin",
		Color:        color,
		Width:        24,
		Height:       36,
		AnchorX:      12,
		AnchorY:      36,
		PopupAnchorX: 0,
		PopupAnchorY: -36,
		SVG: fmt.Sprintf(`<svg viewBox="0 0 24 36" width="24" height="36" fill="%s"><path d="%s"/></svg>`,
			color, pinPath),
	}
}

// LegendItem is one row of the load class legend.
type LegendItem struct {
	LoadClass marker.LoadClass `json:"loadClass" doc:"Load class"`
	Label     string           `json:"label" doc:"Human readable label" example:"Bk3.2"`
	Color     string           `json:"color" doc:"Colour (CSS)"`
}

// Legend lists every class in descending load capacity, followed by None.
func Legend() []LegendItem {
	items := make([]LegendItem, 0, len(marker.LoadClasses)+1)
	for _, c := range marker.LoadClasses {
		items = append(items, LegendItem{LoadClass: c, Label: Label(c), Color: ColorFor(c)})
	}
	return append(items, LegendItem{LoadClass: marker.None, Label: Label(marker.None), Color: ColorFor(marker.None)})
}

// Label is the spelling used on construction documents ("Bk3.2").
func Label(c marker.LoadClass) string {
	switch c {
	case marker.Bk100:
		return "Bk100"
	case marker.Bk32:
		return "Bk32"
	case marker.Bk10:
		return "Bk10"
	case marker.Bk3_2:
		return "Bk3.2"
	case marker.Bk1_8:
		return "Bk1.8"
	case marker.Bk1_0:
		return "Bk1.0"
	case marker.Bk0_3:
		return "Bk0.3"
	}
	return "keine"
}
