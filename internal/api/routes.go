// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baustructura/bau-geo/internal/geocode"
	"github.com/baustructura/bau-geo/internal/mapview"
	"github.com/baustructura/bau-geo/internal/marker"
	"github.com/baustructura/bau-geo/internal/service"
	"github.com/baustructura/bau-geo/internal/storage"
	"github.com/baustructura/bau-geo/internal/templates"
)

// Version is reported by the health and info endpoints.
const Version = "1.0.0"

// Services holds the service dependencies for API handlers.
type Services struct {
	Sessions *service.SessionService
	Geocoder geocode.Gateway
	Tiles    *mapview.TileProvider
	DB       *sql.DB // DuckDB, nil unless the duckdb storage driver is active
	Renderer *templates.Renderer
	Info     InfoConfig
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds the REST handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every REST route.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
	NewInfoHandler(svc.Info, svc.Tiles).RegisterRoutes(api)
	NewDBHandler(svc.DB).RegisterRoutes(api)
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: Version}}, nil
}

// created sets 201 as the success status.
func created(o *huma.Operation) {
	o.DefaultStatus = http.StatusCreated
}

// problem maps domain errors to Huma status errors.
func problem(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, marker.ErrInvalidCoordinate),
		errors.Is(err, geocode.ErrQueryTooShort),
		errors.Is(err, storage.ErrInvalidID),
		errors.Is(err, mapview.ErrInvalidMode):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, marker.ErrIndexOutOfRange),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, storage.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, geocode.ErrBusy),
		errors.Is(err, geocode.ErrStale),
		errors.Is(err, geocode.ErrClosed),
		errors.Is(err, mapview.ErrNotEditing):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, service.ErrTooManySessions):
		return huma.Error503ServiceUnavailable(err.Error())
	case errors.Is(err, geocode.ErrGeocode):
		return huma.Error502BadGateway(err.Error())
	}
	return huma.Error500InternalServerError("internal error", err)
}
