package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baustructura/bau-geo/internal/geocode"
)

type GeocodeInput struct {
	Query string `query:"q" required:"true" doc:"Address to look up" example:"Hauptstraße 1, 80331 München"`
}

type GeocodeOutput struct {
	Body []geocode.Result
}

// RegisterGeocode registers the stateless address lookup.
func (h *APIHandler) RegisterGeocode(api huma.API) {
	huma.Get(api, "/api/v1/geocode", h.Geocode, huma.OperationTags("geocode"))
}

// Geocode returns all candidates for a query without touching any session.
func (h *APIHandler) Geocode(ctx context.Context, input *GeocodeInput) (*GeocodeOutput, error) {
	q, err := geocode.NormalizeQuery(input.Query)
	if err != nil {
		return nil, problem(err)
	}
	results, err := h.svc.Geocoder.Search(ctx, q)
	if err != nil {
		return nil, problem(err)
	}
	return &GeocodeOutput{Body: results}, nil
}
