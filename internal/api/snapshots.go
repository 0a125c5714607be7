package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baustructura/bau-geo/internal/export"
	"github.com/baustructura/bau-geo/internal/humastar"
	"github.com/baustructura/bau-geo/internal/storage"
)

type RouteInput struct {
	Route string `path:"route" doc:"Route ID" example:"ring-ost"`
}

type ListSnapshotsInput struct {
	Offset int `query:"offset" minimum:"0" default:"0"`
	Limit  int `query:"limit" minimum:"1" maximum:"100" default:"20"`
}

type SaveBody struct {
	RouteID string `json:"routeId,omitempty" doc:"Target route ID; derived from the name when omitted" example:"ring-ost"`
	Name    string `json:"name,omitempty" doc:"Route name" example:"Ring Ost"`
}

type SnapshotInfoOutput struct {
	Body storage.Info
}

// RegisterSnapshots registers the persisted route routes.
func (h *APIHandler) RegisterSnapshots(api huma.API) {
	tags := huma.OperationTags("snapshots")
	huma.Get(api, "/api/v1/snapshots", h.ListSnapshots, tags)
	huma.Post(api, "/api/v1/snapshots", h.ImportSnapshot, tags, created)
	huma.Get(api, "/api/v1/snapshots/{route}", h.GetSnapshot, tags)
	huma.Delete(api, "/api/v1/snapshots/{route}", h.DeleteSnapshot, tags)
	huma.Get(api, "/api/v1/snapshots/{route}/msgpack", h.GetSnapshotMsgpack, tags)
	huma.Post(api, "/api/v1/snapshots/{route}/open", h.OpenSnapshot, tags, created)
	huma.Post(api, "/api/v1/sessions/{session}/save", h.SaveSession, tags, created)
}

func (h *APIHandler) ListSnapshots(ctx context.Context, input *ListSnapshotsInput) (*struct {
	Body humastar.PageBody[storage.Info]
}, error) {
	infos, err := h.svc.Sessions.Snapshots(ctx)
	if err != nil {
		return nil, problem(err)
	}
	return &struct {
		Body humastar.PageBody[storage.Info]
	}{Body: humastar.Paginate(infos, input.Offset, input.Limit)}, nil
}

func (h *APIHandler) GetSnapshot(ctx context.Context, input *RouteInput) (*struct{ Body storage.Snapshot }, error) {
	snap, err := h.svc.Sessions.Snapshot(ctx, input.Route)
	if err != nil {
		return nil, problem(err)
	}
	return &struct{ Body storage.Snapshot }{Body: snap}, nil
}

func (h *APIHandler) DeleteSnapshot(ctx context.Context, input *RouteInput) (*struct{}, error) {
	if err := h.svc.Sessions.DeleteSnapshot(ctx, input.Route); err != nil {
		return nil, problem(err)
	}
	return &struct{}{}, nil
}

func (h *APIHandler) GetSnapshotMsgpack(ctx context.Context, input *RouteInput) (*FileOutput, error) {
	snap, err := h.svc.Sessions.Snapshot(ctx, input.Route)
	if err != nil {
		return nil, problem(err)
	}
	data, err := export.Pack(export.NewDocument(snap.RouteID, snap.Name, snap.Markers, snap.DistanceMeters, snap.SavedAt))
	if err != nil {
		return nil, huma.Error500InternalServerError("encode msgpack", err)
	}
	return &FileOutput{
		ContentType:        export.MsgpackContentType,
		ContentDisposition: attachment(snap.RouteID, "msgpack"),
		Body:               data,
	}, nil
}

// ImportSnapshot stores a msgpack document produced by one of the msgpack
// exports.
func (h *APIHandler) ImportSnapshot(ctx context.Context, input *struct {
	RawBody []byte
}) (*SnapshotInfoOutput, error) {
	doc, err := export.Unpack(input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid msgpack document: " + err.Error())
	}
	info, err := h.svc.Sessions.Import(ctx, storage.Snapshot{
		RouteID:        doc.RouteID,
		Name:           doc.Name,
		Markers:        doc.Markers(),
		DistanceMeters: doc.DistanceMeters,
		SavedAt:        doc.SavedAt,
	})
	if err != nil {
		return nil, problem(err)
	}
	return &SnapshotInfoOutput{Body: info}, nil
}

func (h *APIHandler) OpenSnapshot(ctx context.Context, input *RouteInput) (*SessionOutput, error) {
	sess, err := h.svc.Sessions.Open(ctx, input.Route)
	if err != nil {
		return nil, problem(err)
	}
	return &SessionOutput{Body: sess.Info()}, nil
}

func (h *APIHandler) SaveSession(ctx context.Context, input *struct {
	SessionInput
	Body *SaveBody
}) (*SnapshotInfoOutput, error) {
	var body SaveBody
	if input.Body != nil {
		body = *input.Body
	}
	info, err := h.svc.Sessions.Save(ctx, input.Session, body.RouteID, body.Name)
	if err != nil {
		return nil, problem(err)
	}
	return &SnapshotInfoOutput{Body: info}, nil
}
