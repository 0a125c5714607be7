// Package editor contains the Datastar SSE handlers and HTML pages of the map
// editor.
package editor

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"

	"github.com/baustructura/bau-geo/internal/humastar"
	"github.com/baustructura/bau-geo/internal/mapview"
	"github.com/baustructura/bau-geo/internal/service"
	"github.com/baustructura/bau-geo/internal/templates"
)

// Handler serves the editor of every session.
type Handler struct {
	humastar.Handler
	sessions *service.SessionService
	tiles    *mapview.TileProvider
}

func New(sessions *service.SessionService, tiles *mapview.TileProvider, renderer *templates.Renderer, log zerolog.Logger) *Handler {
	return &Handler{
		Handler:  humastar.Handler{Renderer: renderer, Log: log.With().Str("component", "editor").Logger()},
		sessions: sessions,
		tiles:    tiles,
	}
}

type SessionInput struct {
	Session string `path:"session" doc:"Session ID"`
}

type SessionSignalsInput struct {
	SessionInput
	humastar.SignalsInput
}

type MarkerInput struct {
	SessionInput
	Index int `path:"index" minimum:"0" doc:"Marker index in route order"`
}

type MarkerSignalsInput struct {
	MarkerInput
	humastar.SignalsInput
}

// RegisterRoutes registers the SSE endpoints. They are tagged "editor" so
// the link builder leaves them out.
func (h *Handler) RegisterRoutes(api huma.API) {
	tags := huma.OperationTags("editor")
	huma.Get(api, "/api/v1/editor/{session}/view", h.View, tags)
	huma.Get(api, "/api/v1/editor/{session}/events", h.Events, tags)

	huma.Post(api, "/api/v1/editor/{session}/click", h.Click, tags)
	huma.Post(api, "/api/v1/editor/{session}/markers/{index}/drag", h.Drag, tags)
	huma.Post(api, "/api/v1/editor/{session}/markers/{index}/select", h.Select, tags)
	huma.Delete(api, "/api/v1/editor/{session}/markers/{index}", h.Remove, tags)
	huma.Post(api, "/api/v1/editor/{session}/edit", h.SubmitEdit, tags)
	huma.Post(api, "/api/v1/editor/{session}/edit/cancel", h.CancelEdit, tags)

	huma.Post(api, "/api/v1/editor/{session}/mode", h.SetMode, tags)
	huma.Post(api, "/api/v1/editor/{session}/class", h.SelectClass, tags)
	huma.Post(api, "/api/v1/editor/{session}/tiles", h.SetTileStatus, tags)
	huma.Post(api, "/api/v1/editor/{session}/optimize", h.Optimize, tags)

	huma.Post(api, "/api/v1/editor/{session}/search", h.Search, tags)
	huma.Post(api, "/api/v1/editor/{session}/save", h.Save, tags)
	huma.Post(api, "/api/v1/editor/{session}/estimate", h.Estimate, tags)
}

func (h *Handler) session(id string) (*service.Session, error) {
	sess, err := h.sessions.Get(id)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	return sess, nil
}

// surfaceData is what every surface fragment renders from.
type surfaceData struct {
	Session string
	View    mapview.View
}

// patchSurface re-renders the side panel fragments and hands the view to the
// Leaflet map through the "map-view" event.
func (h *Handler) patchSurface(sse humastar.SSE, sess *service.Session) {
	data := surfaceData{Session: sess.ID, View: sess.View()}
	sse.Patch(h.Render("fallback", data), "#fallback")
	sse.Patch(h.Render("route-summary", data), "#route-summary")
	sse.Patch(h.Render("edit-form", data), "#edit-form")
	sse.Patch(h.Render("marker-list", data), "#marker-list")
	sse.DispatchCustomEvent("map-view", data.View)
}

// act runs fn inside the response stream. A failure becomes the error
// signal; otherwise msg (if any) becomes the success signal and the surface
// is re-rendered.
func (h *Handler) act(sessionID string, fn func(sess *service.Session) (msg string, err error)) (*huma.StreamResponse, error) {
	sess, err := h.session(sessionID)
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		msg, err := fn(sess)
		if err != nil {
			sse.Error(message(err))
			return
		}
		if msg != "" {
			sse.Success(msg)
		}
		h.patchSurface(sse, sess)
	}), nil
}
