package estimate

import (
	"slices"

	"github.com/baustructura/bau-geo/internal/marker"
)

// Machine is a rentable construction machine.
type Machine struct {
	Name        string             `json:"name" example:"Walze HD 110"`
	Description string             `json:"description"`
	Suitable    []marker.LoadClass `json:"suitable" doc:"Load classes the machine is suited for"`
	DailyRent   float64            `json:"dailyRentEUR" doc:"Daily rent in EUR"`
	OutputM2    float64            `json:"outputM2PerDay" doc:"Daily output in m²"`
	ImageURL    string             `json:"imageUrl,omitempty"`
}

var machines = []Machine{
	{
		Name:        "Straßenfräse W 200 H",
		Description: "Große Straßenfräse für hohe Beanspruchung",
		Suitable:    []marker.LoadClass{marker.Bk100, marker.Bk32, marker.Bk10},
		DailyRent:   2800,
		OutputM2:    3000,
		ImageURL:    "/maschinen/strassenfraese.jpg",
	},
	{
		Name:        "Fertiger BF 600 C",
		Description: "Asphaltfertiger für mittlere bis hohe Belastungen",
		Suitable:    []marker.LoadClass{marker.Bk100, marker.Bk32, marker.Bk10, marker.Bk3_2},
		DailyRent:   2400,
		OutputM2:    2500,
		ImageURL:    "/maschinen/fertiger.jpg",
	},
	{
		Name:        "Walze HD 110",
		Description: "Tandemwalze für vibrationsarmes Verdichten",
		Suitable:    []marker.LoadClass{marker.Bk100, marker.Bk32, marker.Bk10, marker.Bk3_2, marker.Bk1_8, marker.Bk1_0},
		DailyRent:   1200,
		OutputM2:    4000,
		ImageURL:    "/maschinen/walze.jpg",
	},
	{
		Name:        "Kompaktfertiger BF 300",
		Description: "Kleiner Asphaltfertiger für geringe Belastungen",
		Suitable:    []marker.LoadClass{marker.Bk3_2, marker.Bk1_8, marker.Bk1_0, marker.Bk0_3},
		DailyRent:   1600,
		OutputM2:    1500,
		ImageURL:    "/maschinen/kompaktfertiger.jpg",
	},
	{
		Name:        "Mini-Walze HD 12",
		Description: "Kompaktwalze für leichte Verdichtungsarbeiten",
		Suitable:    []marker.LoadClass{marker.Bk1_8, marker.Bk1_0, marker.Bk0_3},
		DailyRent:   450,
		OutputM2:    2000,
		ImageURL:    "/maschinen/miniwalze.jpg",
	},
}

// Machines returns the machines suited for class, in catalogue order.
func Machines(class marker.LoadClass) []Machine {
	out := []Machine{}
	for _, m := range machines {
		if slices.Contains(m.Suitable, class) {
			out = append(out, m)
		}
	}
	return out
}

// Catalogue returns every machine.
func Catalogue() []Machine {
	return slices.Clone(machines)
}
