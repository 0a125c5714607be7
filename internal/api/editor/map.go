package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baustructura/bau-geo/internal/geocode"
	"github.com/baustructura/bau-geo/internal/humastar"
	"github.com/baustructura/bau-geo/internal/mapview"
	"github.com/baustructura/bau-geo/internal/marker"
	"github.com/baustructura/bau-geo/internal/service"
	"github.com/baustructura/bau-geo/internal/storage"
)

// message turns a domain error into the text shown in the editor.
func message(err error) string {
	switch {
	case errors.Is(err, marker.ErrInvalidCoordinate):
		return "Ungültige Koordinate"
	case errors.Is(err, marker.ErrIndexOutOfRange):
		return "Standort existiert nicht mehr"
	case errors.Is(err, mapview.ErrNotEditing):
		return "Kein Standort in Bearbeitung"
	case errors.Is(err, mapview.ErrInvalidMode):
		return "Unbekannter Modus"
	case errors.Is(err, geocode.ErrQueryTooShort):
		return fmt.Sprintf("Bitte mindestens %d Zeichen eingeben", geocode.MinQueryLength)
	case errors.Is(err, geocode.ErrBusy):
		return "Suche läuft bereits"
	case errors.Is(err, geocode.ErrNoResults):
		return "Adresse nicht gefunden"
	case errors.Is(err, geocode.ErrGeocode):
		return "Adresssuche fehlgeschlagen"
	case errors.Is(err, storage.ErrInvalidID):
		return "Ungültiger Routenname"
	}
	return err.Error()
}

// position reads the lat/lng signals sent by the map script.
func position(s humastar.Signals) (marker.Position, error) {
	lat, okLat := s.Float("lat")
	lng, okLng := s.Float("lng")
	if !okLat || !okLng {
		return marker.Position{}, huma.Error400BadRequest("lat and lng are required")
	}
	return marker.Position{Lat: lat, Lng: lng}, nil
}

func (h *Handler) View(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		h.patchSurface(sse, sess)
		sse.Patch(h.Render("legend", surfaceData{Session: sess.ID, View: sess.View()}), "#legend")
	}), nil
}

// Click handles a tap on the map. It only adds a marker in add mode.
func (h *Handler) Click(ctx context.Context, input *SessionSignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.Parse()
	if err != nil {
		return nil, err
	}
	p, err := position(signals)
	if err != nil {
		return nil, err
	}
	return h.act(input.Session, func(sess *service.Session) (string, error) {
		index, added, err := sess.Click(p)
		if err != nil || !added {
			return "", err
		}
		return fmt.Sprintf("Standort %d hinzugefügt", index+1), nil
	})
}

func (h *Handler) Drag(ctx context.Context, input *MarkerSignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.Parse()
	if err != nil {
		return nil, err
	}
	p, err := position(signals)
	if err != nil {
		return nil, err
	}
	return h.act(input.Session, func(sess *service.Session) (string, error) {
		return "", sess.MoveMarker(input.Index, p)
	})
}

// editSignals fills the edit form inputs.
func editSignals(m marker.Marker) map[string]any {
	return map[string]any{
		"editname":        m.Name,
		"editstreet":      m.Street,
		"edithousenumber": m.HouseNumber,
		"editpostalcode":  m.PostalCode,
		"editcity":        m.City,
		"editloadclass":   m.LoadClass.String(),
		"editnotes":       m.Notes,
	}
}

// editAttributes collects the submitted form fields. Signals the client did
// not send are left untouched.
func editAttributes(s humastar.Signals) marker.Attributes {
	var attrs marker.Attributes
	str := func(key string) *string {
		if !s.Has(key) {
			return nil
		}
		return marker.String(s.String(key))
	}
	attrs.Name = str("editname")
	attrs.Street = str("editstreet")
	attrs.HouseNumber = str("edithousenumber")
	attrs.PostalCode = str("editpostalcode")
	attrs.City = str("editcity")
	attrs.Notes = str("editnotes")
	if s.Has("editloadclass") {
		attrs.LoadClass = marker.Class(marker.ParseLoadClass(s.String("editloadclass")))
	}
	return attrs
}

func (h *Handler) Select(ctx context.Context, input *MarkerInput) (*huma.StreamResponse, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		form, err := sess.SelectMarker(input.Index)
		if err != nil {
			sse.Error(message(err))
			return
		}
		sse.Signals(editSignals(form.Marker))
		h.patchSurface(sse, sess)
	}), nil
}

func (h *Handler) SubmitEdit(ctx context.Context, input *SessionSignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.Parse()
	if err != nil {
		return nil, err
	}
	return h.act(input.Session, func(sess *service.Session) (string, error) {
		index, err := sess.SubmitEdit(editAttributes(signals))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Standort %d gespeichert", index+1), nil
	})
}

func (h *Handler) CancelEdit(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	return h.act(input.Session, func(sess *service.Session) (string, error) {
		sess.CancelEdit()
		return "", nil
	})
}

func (h *Handler) Remove(ctx context.Context, input *MarkerInput) (*huma.StreamResponse, error) {
	return h.act(input.Session, func(sess *service.Session) (string, error) {
		if err := sess.RemoveMarker(input.Index); err != nil {
			return "", err
		}
		return "Standort entfernt", nil
	})
}

func (h *Handler) SetMode(ctx context.Context, input *SessionSignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.Parse()
	if err != nil {
		return nil, err
	}
	return h.act(input.Session, func(sess *service.Session) (string, error) {
		mode, err := mapview.ParseMode(signals.String("mode"))
		if err != nil {
			return "", err
		}
		return "", sess.SetMode(mode)
	})
}

func (h *Handler) SelectClass(ctx context.Context, input *SessionSignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.Parse()
	if err != nil {
		return nil, err
	}
	return h.act(input.Session, func(sess *service.Session) (string, error) {
		sess.SelectLoadClass(marker.ParseLoadClass(signals.String("loadclass")))
		return "", nil
	})
}

// SetTileStatus records the tile layer state reported by the browser. A
// failure switches the map to the fallback links.
func (h *Handler) SetTileStatus(ctx context.Context, input *SessionSignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.Parse()
	if err != nil {
		return nil, err
	}
	status := mapview.TileStatus(signals.String("tilestatus"))
	switch status {
	case mapview.TilesLoading, mapview.TilesReady, mapview.TilesFailed:
	default:
		return nil, huma.Error400BadRequest(fmt.Sprintf("unknown tile status %q", status))
	}
	return h.act(input.Session, func(sess *service.Session) (string, error) {
		sess.SetTileStatus(status)
		return "", nil
	})
}

func (h *Handler) Optimize(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	return h.act(input.Session, func(sess *service.Session) (string, error) {
		if _, err := sess.Optimize(); err != nil {
			return "", err
		}
		return fmt.Sprintf("Route optimiert: %.2f km", sess.Route().DistanceKm), nil
	})
}
