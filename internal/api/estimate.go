package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baustructura/bau-geo/internal/estimate"
	"github.com/baustructura/bau-geo/internal/marker"
)

type EstimateBody struct {
	LengthKm  float64          `json:"lengthKm" minimum:"0" doc:"Route length in kilometers" example:"2.4"`
	WidthM    float64          `json:"widthM,omitempty" minimum:"0" doc:"Road width in meters; derived from roadType when omitted"`
	RoadType  string           `json:"roadType,omitempty" doc:"Standard road type" example:"Kreisstraße"`
	LoadClass marker.LoadClass `json:"loadClass"`
}

type SessionEstimateInput struct {
	SessionInput
	RoadType  string  `query:"roadType" doc:"Standard road type" example:"Kreisstraße"`
	WidthM    float64 `query:"widthM" minimum:"0" doc:"Road width in meters; overrides roadType"`
	LoadClass string  `query:"loadClass" doc:"Load class; defaults to the session's selected class"`
}

type EstimateOutput struct {
	Body estimate.Estimate
}

type MachinesInput struct {
	LoadClass string `query:"loadClass" doc:"Only machines suited for this class" example:"Bk3_2"`
}

// RegisterEstimate registers the cost estimate routes.
func (h *APIHandler) RegisterEstimate(api huma.API) {
	tags := huma.OperationTags("estimate")
	huma.Get(api, "/api/v1/estimate/road-types", h.ListRoadTypes, tags)
	huma.Get(api, "/api/v1/estimate/machines", h.ListMachines, tags)
	huma.Post(api, "/api/v1/estimate", h.Estimate, tags)
	huma.Get(api, "/api/v1/sessions/{session}/estimate", h.SessionEstimate, tags)
}

func (h *APIHandler) ListRoadTypes(ctx context.Context, input *struct{}) (*struct{ Body []estimate.RoadType }, error) {
	return &struct{ Body []estimate.RoadType }{Body: estimate.RoadTypes}, nil
}

func (h *APIHandler) ListMachines(ctx context.Context, input *MachinesInput) (*struct{ Body []estimate.Machine }, error) {
	if input.LoadClass == "" {
		return &struct{ Body []estimate.Machine }{Body: estimate.Catalogue()}, nil
	}
	return &struct{ Body []estimate.Machine }{Body: estimate.Machines(marker.ParseLoadClass(input.LoadClass))}, nil
}

// roadWidth resolves an explicit width, then a standard road type, then the
// custom default.
func roadWidth(widthM float64, roadType string) float64 {
	if widthM > 0 {
		return widthM
	}
	if w, ok := estimate.Width(roadType); ok {
		return w
	}
	return estimate.DefaultCustomWidth
}

func (h *APIHandler) Estimate(ctx context.Context, input *struct{ Body EstimateBody }) (*EstimateOutput, error) {
	b := input.Body
	return &EstimateOutput{Body: estimate.Materials(b.LengthKm, roadWidth(b.WidthM, b.RoadType), b.LoadClass)}, nil
}

// SessionEstimate prices the session's current route.
func (h *APIHandler) SessionEstimate(ctx context.Context, input *SessionEstimateInput) (*EstimateOutput, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	view := sess.View()
	class := view.SelectedClass
	if input.LoadClass != "" {
		class = marker.ParseLoadClass(input.LoadClass)
	}
	return &EstimateOutput{Body: estimate.Materials(view.DistanceKm, roadWidth(input.WidthM, input.RoadType), class)}, nil
}
