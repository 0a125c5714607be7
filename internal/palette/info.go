package palette

import "github.com/baustructura/bau-geo/internal/marker"

// ClassInfo is the RStO standard build-up for a load class. Thicknesses are
// in centimetres; zero means the layer is not part of the build-up.
type ClassInfo struct {
	LoadClass         marker.LoadClass `json:"loadClass" doc:"Load class"`
	Stress            string           `json:"stress" doc:"Traffic stress (Beanspruchung)" example:"Mittel"`
	Example           string           `json:"example" doc:"Typical roads" example:"Kreisstraßen, Erschließungsstraßen"`
	ConstructionClass string           `json:"constructionClass" doc:"Former Bauklasse" example:"III"`
	TotalCm           int              `json:"totalCm" doc:"Total asphalt build-up thickness"`
	SurfaceCm         int              `json:"surfaceCm" doc:"Asphalt surface course (Asphaltdecke)"`
	BaseCm            int              `json:"baseCm" doc:"Asphalt base course (Asphalttragschicht)"`
	FrostCm           int              `json:"frostCm" doc:"Frost protection layer without gravel base"`
	GravelCm          int              `json:"gravelCm,omitempty" doc:"Gravel base course (Schottertragschicht)"`
	FrostWithGravelCm int              `json:"frostWithGravelCm,omitempty" doc:"Frost protection layer below gravel base"`
}

// HasGravelBase reports whether the build-up uses a gravel base course.
func (i ClassInfo) HasGravelBase() bool {
	return i.GravelCm > 0
}

var infos = map[marker.LoadClass]ClassInfo{
	marker.Bk100: {
		Stress: "Sehr stark", Example: "Autobahnen, Industriegebiete", ConstructionClass: "SV",
		TotalCm: 79, SurfaceCm: 4, BaseCm: 22, FrostCm: 53,
	},
	marker.Bk32: {
		Stress: "Stark", Example: "Bundesstraßen, Hauptverkehrsstraßen", ConstructionClass: "I-II",
		TotalCm: 74, SurfaceCm: 4, BaseCm: 18, FrostCm: 52,
	},
	marker.Bk10: {
		Stress: "Mittel", Example: "Kreisstraßen, Erschließungsstraßen", ConstructionClass: "III",
		TotalCm: 69, SurfaceCm: 4, BaseCm: 14, FrostCm: 51, GravelCm: 15, FrostWithGravelCm: 36,
	},
	marker.Bk3_2: {
		Stress: "Gering", Example: "Anliegerstraßen, Wohnstraßen", ConstructionClass: "IV",
		TotalCm: 67, SurfaceCm: 4, BaseCm: 12, FrostCm: 51, GravelCm: 15, FrostWithGravelCm: 36,
	},
	marker.Bk1_8: {
		Stress: "Sehr gering", Example: "Wohnwege, Grundstückszufahrten", ConstructionClass: "V",
		TotalCm: 64, SurfaceCm: 4, BaseCm: 10, FrostCm: 50, GravelCm: 15, FrostWithGravelCm: 35,
	},
	// Bk1.0 shares the class V build-up; the planning tables never listed it separately.
	marker.Bk1_0: {
		Stress: "Sehr gering", Example: "Wohnwege, Grundstückszufahrten", ConstructionClass: "V",
		TotalCm: 64, SurfaceCm: 4, BaseCm: 10, FrostCm: 50, GravelCm: 15, FrostWithGravelCm: 35,
	},
	marker.Bk0_3: {
		Stress: "Minimal", Example: "Geh- und Radwege", ConstructionClass: "VI",
		TotalCm: 62, SurfaceCm: 4, BaseCm: 8, FrostCm: 50, GravelCm: 15, FrostWithGravelCm: 35,
	},
}

// Info returns the build-up for c. ok is false for None and unknown values.
func Info(c marker.LoadClass) (ClassInfo, bool) {
	info, ok := infos[c]
	if !ok {
		return ClassInfo{}, false
	}
	info.LoadClass = c
	return info, true
}

// Infos returns the build-up of every classified value in descending load capacity.
func Infos() []ClassInfo {
	out := make([]ClassInfo, 0, len(marker.LoadClasses))
	for _, c := range marker.LoadClasses {
		info, _ := Info(c)
		out = append(out, info)
	}
	return out
}
