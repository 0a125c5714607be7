package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baustructura/bau-geo/internal/humastar"
)

// Events keeps the editor of one session in sync: every change published for
// the session re-renders the surface, whoever caused it.
func (h *Handler) Events(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := humastar.NewSSE(humaCtx)
			bus := h.sessions.Bus()
			ch := bus.SubscribeSession(sess.ID)
			defer bus.Unsubscribe(ch)

			h.patchSurface(sse, sess)
			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-ch:
					switch {
					case ev.Resource == "sessions" && ev.ID == sess.ID && ev.Action != "created":
						sse.Error("Sitzung beendet")
						return
					case ev.Session == sess.ID:
						h.patchSurface(sse, sess)
					}
					sse.DispatchCustomEvent("resource-changed", map[string]any{
						"resource": ev.Resource,
						"action":   ev.Action,
						"id":       ev.ID,
					})
				}
			}
		},
	}, nil
}
