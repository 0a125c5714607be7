package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baustructura/bau-geo/internal/geocode"
	"github.com/baustructura/bau-geo/internal/humastar"
	"github.com/baustructura/bau-geo/internal/mapview"
	"github.com/baustructura/bau-geo/internal/marker"
	"github.com/baustructura/bau-geo/internal/palette"
	"github.com/baustructura/bau-geo/internal/route"
	"github.com/baustructura/bau-geo/internal/service"
)

type SessionInput struct {
	Session string `path:"session" doc:"Session ID"`
}

type MarkerInput struct {
	SessionInput
	Index int `path:"index" minimum:"0" doc:"Marker index in route order"`
}

type SessionOutput struct {
	Body service.SessionInfo
}

type CreateSessionBody struct {
	Name    string `json:"name,omitempty" doc:"Route name" example:"Ortsdurchfahrt Süd"`
	RouteID string `json:"routeId,omitempty" doc:"Open a stored route instead of starting empty"`
}

type ViewOutput struct {
	Body mapview.View
}

type SettingsBody struct {
	Mode       *mapview.Mode       `json:"mode,omitempty" enum:"view,add" doc:"What a map click does"`
	LoadClass  *marker.LoadClass   `json:"loadClass,omitempty" doc:"Load class for new markers"`
	TileStatus *mapview.TileStatus `json:"tileStatus,omitempty" enum:"loading,ready,failed" doc:"Tile layer load state reported by the client"`
}

type ClickBody struct {
	Index int  `json:"index" doc:"Index of the added marker, -1 in view mode"`
	Added bool `json:"added"`
}

// MarkerBody is a marker with its index and display colour.
type MarkerBody struct {
	Index int    `json:"index"`
	Title string `json:"title" doc:"Tooltip title"`
	Color string `json:"color" doc:"Load class colour"`
	marker.Marker

	session string
}

var markerActions = []humastar.ActionDef{
	{Rel: "edit", Pattern: "/api/v1/sessions/%s/markers/%d", Method: http.MethodPatch, Title: "Update attributes"},
	{Rel: "move", Pattern: "/api/v1/sessions/%s/markers/%d/position", Method: http.MethodPut, Title: "Move marker"},
	{Rel: "select", Pattern: "/api/v1/sessions/%s/markers/%d/select", Method: http.MethodPost, Title: "Open edit form"},
	{Rel: "delete", Pattern: "/api/v1/sessions/%s/markers/%d", Method: http.MethodDelete, Title: "Remove marker"},
}

// Actions implements humastar.Actor.
func (m MarkerBody) Actions() []humastar.Action {
	return humastar.ActionsFor(markerActions, m.session, m.Index)
}

func newMarkerBody(session string, index int, m marker.Marker) MarkerBody {
	return MarkerBody{
		Index:   index,
		Title:   m.Title(index),
		Color:   palette.ColorFor(m.LoadClass),
		Marker:  m,
		session: session,
	}
}

type MarkerOutput struct {
	Body MarkerBody
}

type AddMarkerBody struct {
	Position   marker.Position   `json:"position"`
	Attributes marker.Attributes `json:"attributes,omitempty"`
}

type OptimizeBody struct {
	Order []int         `json:"order" doc:"Applied permutation of the previous indices"`
	Route route.Summary `json:"route"`
}

type SearchBody struct {
	Query string `json:"query" minLength:"1" doc:"Address to look up" example:"Marienplatz 1, München"`
}

type SearchResultBody struct {
	Result geocode.Result `json:"result" doc:"First geocoder candidate"`
	Marker MarkerBody     `json:"marker" doc:"Marker added for it"`
}

// RegisterSessions registers session routes.
func (h *APIHandler) RegisterSessions(api huma.API) {
	tags := huma.OperationTags("sessions")
	huma.Get(api, "/api/v1/sessions", h.ListSessions, tags)
	huma.Post(api, "/api/v1/sessions", h.CreateSession, tags, created)
	huma.Get(api, "/api/v1/sessions/{session}", h.GetSession, tags)
	huma.Delete(api, "/api/v1/sessions/{session}", h.DeleteSession, tags)
	huma.Get(api, "/api/v1/sessions/{session}/view", h.GetView, tags)
	huma.Put(api, "/api/v1/sessions/{session}/settings", h.PutSettings, tags)
	huma.Post(api, "/api/v1/sessions/{session}/click", h.Click, tags)
	huma.Post(api, "/api/v1/sessions/{session}/search", h.SearchAndAdd, tags, created)
}

// RegisterMarkers registers marker routes.
func (h *APIHandler) RegisterMarkers(api huma.API) {
	tags := huma.OperationTags("markers")
	huma.Get(api, "/api/v1/sessions/{session}/markers", h.ListMarkers, tags)
	huma.Post(api, "/api/v1/sessions/{session}/markers", h.AddMarker, tags, created)
	huma.Get(api, "/api/v1/sessions/{session}/markers/{index}", h.GetMarker, tags)
	huma.Patch(api, "/api/v1/sessions/{session}/markers/{index}", h.UpdateMarker, tags)
	huma.Delete(api, "/api/v1/sessions/{session}/markers/{index}", h.DeleteMarker, tags)
	huma.Put(api, "/api/v1/sessions/{session}/markers/{index}/position", h.MoveMarker, tags)
	huma.Post(api, "/api/v1/sessions/{session}/markers/{index}/select", h.SelectMarker, tags)
	huma.Put(api, "/api/v1/sessions/{session}/edit", h.SubmitEdit, tags)
	huma.Delete(api, "/api/v1/sessions/{session}/edit", h.CancelEdit, tags)
}

// RegisterRoute registers route metric routes.
func (h *APIHandler) RegisterRoute(api huma.API) {
	tags := huma.OperationTags("route")
	huma.Get(api, "/api/v1/sessions/{session}/route", h.GetRoute, tags)
	huma.Post(api, "/api/v1/sessions/{session}/route/optimize", h.OptimizeRoute, tags)
}

func (h *APIHandler) session(id string) (*service.Session, error) {
	sess, err := h.svc.Sessions.Get(id)
	return sess, problem(err)
}

func (h *APIHandler) ListSessions(ctx context.Context, input *struct{}) (*struct{ Body []service.SessionInfo }, error) {
	return &struct{ Body []service.SessionInfo }{Body: h.svc.Sessions.List()}, nil
}

func (h *APIHandler) CreateSession(ctx context.Context, input *struct {
	Body *CreateSessionBody
}) (*SessionOutput, error) {
	var body CreateSessionBody
	if input.Body != nil {
		body = *input.Body
	}
	var (
		sess *service.Session
		err  error
	)
	if body.RouteID != "" {
		sess, err = h.svc.Sessions.Open(ctx, body.RouteID)
	} else {
		sess, err = h.svc.Sessions.Create(body.Name)
	}
	if err != nil {
		return nil, problem(err)
	}
	return &SessionOutput{Body: sess.Info()}, nil
}

func (h *APIHandler) GetSession(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: sess.Info()}, nil
}

func (h *APIHandler) DeleteSession(ctx context.Context, input *SessionInput) (*struct{}, error) {
	if err := h.svc.Sessions.Delete(input.Session); err != nil {
		return nil, problem(err)
	}
	return &struct{}{}, nil
}

func (h *APIHandler) GetView(ctx context.Context, input *SessionInput) (*ViewOutput, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	return &ViewOutput{Body: sess.View()}, nil
}

func (h *APIHandler) PutSettings(ctx context.Context, input *struct {
	SessionInput
	Body SettingsBody
}) (*ViewOutput, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	if m := input.Body.Mode; m != nil {
		if err := sess.SetMode(*m); err != nil {
			return nil, problem(err)
		}
	}
	if c := input.Body.LoadClass; c != nil {
		sess.SelectLoadClass(*c)
	}
	if s := input.Body.TileStatus; s != nil {
		sess.SetTileStatus(*s)
	}
	return &ViewOutput{Body: sess.View()}, nil
}

func (h *APIHandler) Click(ctx context.Context, input *struct {
	SessionInput
	Body marker.Position
}) (*struct{ Body ClickBody }, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	index, added, err := sess.Click(input.Body)
	if err != nil {
		return nil, problem(err)
	}
	return &struct{ Body ClickBody }{Body: ClickBody{Index: index, Added: added}}, nil
}

func (h *APIHandler) SearchAndAdd(ctx context.Context, input *struct {
	SessionInput
	Body SearchBody
}) (*struct{ Body SearchResultBody }, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	index, res, err := sess.SearchAndAdd(ctx, input.Body.Query)
	if err != nil {
		return nil, problem(err)
	}
	m, err := sess.Marker(index)
	if err != nil {
		return nil, problem(err)
	}
	return &struct{ Body SearchResultBody }{Body: SearchResultBody{
		Result: res,
		Marker: newMarkerBody(sess.ID, index, m),
	}}, nil
}

func (h *APIHandler) ListMarkers(ctx context.Context, input *SessionInput) (*struct{ Body []MarkerBody }, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	markers := sess.Markers()
	out := make([]MarkerBody, len(markers))
	for i, m := range markers {
		out[i] = newMarkerBody(sess.ID, i, m)
	}
	return &struct{ Body []MarkerBody }{Body: out}, nil
}

// markerOutput reads back the marker at index after a mutation.
func markerOutput(sess *service.Session, index int) (*MarkerOutput, error) {
	m, err := sess.Marker(index)
	if err != nil {
		return nil, problem(err)
	}
	return &MarkerOutput{Body: newMarkerBody(sess.ID, index, m)}, nil
}

func (h *APIHandler) AddMarker(ctx context.Context, input *struct {
	SessionInput
	Body AddMarkerBody
}) (*MarkerOutput, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	index, err := sess.AddMarker(input.Body.Position, input.Body.Attributes)
	if err != nil {
		return nil, problem(err)
	}
	return markerOutput(sess, index)
}

func (h *APIHandler) GetMarker(ctx context.Context, input *MarkerInput) (*MarkerOutput, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	return markerOutput(sess, input.Index)
}

func (h *APIHandler) UpdateMarker(ctx context.Context, input *struct {
	MarkerInput
	Body marker.Attributes
}) (*MarkerOutput, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	if err := sess.UpdateMarker(input.Index, input.Body); err != nil {
		return nil, problem(err)
	}
	return markerOutput(sess, input.Index)
}

func (h *APIHandler) DeleteMarker(ctx context.Context, input *MarkerInput) (*struct{}, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	if err := sess.RemoveMarker(input.Index); err != nil {
		return nil, problem(err)
	}
	return &struct{}{}, nil
}

func (h *APIHandler) MoveMarker(ctx context.Context, input *struct {
	MarkerInput
	Body marker.Position
}) (*MarkerOutput, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	if err := sess.MoveMarker(input.Index, input.Body); err != nil {
		return nil, problem(err)
	}
	return markerOutput(sess, input.Index)
}

func (h *APIHandler) SelectMarker(ctx context.Context, input *MarkerInput) (*struct{ Body mapview.EditForm }, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	form, err := sess.SelectMarker(input.Index)
	if err != nil {
		return nil, problem(err)
	}
	return &struct{ Body mapview.EditForm }{Body: form}, nil
}

func (h *APIHandler) SubmitEdit(ctx context.Context, input *struct {
	SessionInput
	Body marker.Attributes
}) (*MarkerOutput, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	index, err := sess.SubmitEdit(input.Body)
	if err != nil {
		return nil, problem(err)
	}
	return markerOutput(sess, index)
}

func (h *APIHandler) CancelEdit(ctx context.Context, input *SessionInput) (*struct{}, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	sess.CancelEdit()
	return &struct{}{}, nil
}

func (h *APIHandler) GetRoute(ctx context.Context, input *SessionInput) (*struct{ Body route.Summary }, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	return &struct{ Body route.Summary }{Body: sess.Route()}, nil
}

func (h *APIHandler) OptimizeRoute(ctx context.Context, input *SessionInput) (*struct{ Body OptimizeBody }, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	order, err := sess.Optimize()
	if err != nil {
		return nil, problem(err)
	}
	return &struct{ Body OptimizeBody }{Body: OptimizeBody{Order: order, Route: sess.Route()}}, nil
}
