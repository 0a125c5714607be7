package editor

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baustructura/bau-geo/internal/estimate"
	"github.com/baustructura/bau-geo/internal/mapview"
	"github.com/baustructura/bau-geo/internal/marker"
	"github.com/baustructura/bau-geo/internal/palette"
	"github.com/baustructura/bau-geo/internal/service"
	"github.com/baustructura/bau-geo/internal/storage"
)

// RegisterPages registers the HTML pages on the plain mux; they are not part
// of the OpenAPI document.
func (h *Handler) RegisterPages(mux *http.ServeMux) {
	mux.HandleFunc("GET /editor", h.handleNew)
	mux.HandleFunc("GET /editor/routes", h.handleRoutes)
	mux.HandleFunc("GET /editor/open/{route}", h.handleOpen)
	mux.HandleFunc("GET /editor/{session}", h.handleEditor)
}

type editorPage struct {
	Title       string
	Session     string
	Signals     string
	TileURL     string
	Attribution string
	Legend      []palette.LegendItem
	RoadTypes   []estimate.RoadType
	Surface     surfaceData
	View        mapview.View
}

// pageSignals seeds the Datastar signals bound by the page controls.
func pageSignals(sess *service.Session, view mapview.View) (string, error) {
	signals := map[string]any{
		"mode":      view.Mode,
		"loadclass": view.SelectedClass.String(),
		"query":     "",
		"routename": sess.Info().Name,
		"roadtype":  estimate.RoadTypes[0].Name,
		"width":     "",
		"error":     "",
		"success":   "",
	}
	for k, v := range editSignals(marker.Marker{}) {
		signals[k] = v
	}
	b, err := json.Marshal(signals)
	return string(b), err
}

func (h *Handler) handleNew(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Create(r.URL.Query().Get("name"))
	if err != nil {
		h.pageError(w, err)
		return
	}
	http.Redirect(w, r, "/editor/"+sess.ID, http.StatusSeeOther)
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Open(r.Context(), r.PathValue("route"))
	if err != nil {
		h.pageError(w, err)
		return
	}
	http.Redirect(w, r, "/editor/"+sess.ID, http.StatusSeeOther)
}

func (h *Handler) handleEditor(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r.PathValue("session"))
	if err != nil {
		h.pageError(w, err)
		return
	}
	view := sess.View()
	signals, err := pageSignals(sess, view)
	if err != nil {
		h.pageError(w, err)
		return
	}
	title := sess.Info().Name
	if title == "" {
		title = "Neue Route"
	}
	h.page(w, "editor-page", editorPage{
		Title:       title,
		Session:     sess.ID,
		Signals:     signals,
		TileURL:     h.tiles.URLTemplate(),
		Attribution: h.tiles.Attribution(),
		Legend:      view.Legend,
		RoadTypes:   estimate.RoadTypes,
		Surface:     surfaceData{Session: sess.ID, View: view},
		View:        view,
	})
}

func (h *Handler) handleRoutes(w http.ResponseWriter, r *http.Request) {
	infos, err := h.sessions.Snapshots(r.Context())
	if err != nil {
		h.pageError(w, err)
		return
	}
	h.page(w, "routes-page", map[string]any{"Snapshots": infos})
}

func (h *Handler) page(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.Renderer.Execute(w, name, data); err != nil {
		h.Log.Error().Err(err).Str("template", name).Msg("page render failed")
	}
}

func (h *Handler) pageError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidID):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrTooManySessions):
		status = http.StatusServiceUnavailable
	default:
		h.Log.Error().Err(err).Msg("editor page failed")
	}
	http.Error(w, err.Error(), status)
}
