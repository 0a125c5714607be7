package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baustructura/bau-geo/internal/estimate"
	"github.com/baustructura/bau-geo/internal/geocode"
	"github.com/baustructura/bau-geo/internal/humastar"
)

// Search geocodes the query signal and adds the first hit. A search that was
// overtaken by a newer one ends silently; the newer one reports.
func (h *Handler) Search(ctx context.Context, input *SessionSignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.Parse()
	if err != nil {
		return nil, err
	}
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	query := signals.String("query")
	return h.Stream(func(sse humastar.SSE) {
		index, res, err := sess.SearchAndAdd(ctx, query)
		switch {
		case errors.Is(err, geocode.ErrStale), errors.Is(err, geocode.ErrClosed):
			return
		case err != nil:
			h.Log.Debug().Err(err).Str("session", sess.ID).Msg("address search failed")
			sse.Error(message(err))
			return
		}
		sse.Signals(map[string]any{"query": ""})
		sse.Success(fmt.Sprintf("Standort %d: %s", index+1, res.DisplayName))
		h.patchSurface(sse, sess)
	}), nil
}

// Save stores the session under the routename signal.
func (h *Handler) Save(ctx context.Context, input *SessionSignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.Parse()
	if err != nil {
		return nil, err
	}
	if _, err := h.session(input.Session); err != nil {
		return nil, err
	}
	name := signals.String("routename")
	return h.Stream(func(sse humastar.SSE) {
		info, err := h.sessions.Save(ctx, input.Session, "", name)
		if err != nil {
			sse.Error(message(err))
			return
		}
		sse.Success(fmt.Sprintf("Route %q gespeichert", info.RouteID))
	}), nil
}

type estimateData struct {
	Estimate estimate.Estimate
	Machines []estimate.Machine
}

// Estimate prices the current route for the selected load class. The width
// signal wins over the road type's standard width.
func (h *Handler) Estimate(ctx context.Context, input *SessionSignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.Parse()
	if err != nil {
		return nil, err
	}
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	width, ok := signals.Float("width")
	if !ok || width <= 0 {
		if width, ok = estimate.Width(signals.String("roadtype")); !ok {
			width = estimate.DefaultCustomWidth
		}
	}
	return h.Stream(func(sse humastar.SSE) {
		view := sess.View()
		data := estimateData{
			Estimate: estimate.Materials(view.DistanceKm, width, view.SelectedClass),
			Machines: estimate.Machines(view.SelectedClass),
		}
		sse.Patch(h.Render("estimate", data), "#estimate")
	}), nil
}
