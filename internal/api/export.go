package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/geojson"

	"github.com/baustructura/bau-geo/internal/estimate"
	"github.com/baustructura/bau-geo/internal/export"
	"github.com/baustructura/bau-geo/internal/mapview"
	"github.com/baustructura/bau-geo/internal/marker"
	"github.com/baustructura/bau-geo/internal/palette"
	"github.com/baustructura/bau-geo/internal/route"
)

const (
	GeoJSONContentType = "application/geo+json"
	WKTContentType     = "text/plain; charset=utf-8"
	ReportContentType  = "text/html; charset=utf-8"
)

// FileOutput is a non-JSON download.
type FileOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func attachment(name, ext string) string {
	return fmt.Sprintf(`attachment; filename="%s.%s"`, name, ext)
}

// RegisterExport registers session export and import routes.
func (h *APIHandler) RegisterExport(api huma.API) {
	tags := huma.OperationTags("export")
	huma.Get(api, "/api/v1/sessions/{session}/export/geojson", h.ExportGeoJSON, tags)
	huma.Get(api, "/api/v1/sessions/{session}/export/wkt", h.ExportWKT, tags)
	huma.Get(api, "/api/v1/sessions/{session}/export/msgpack", h.ExportMsgpack, tags)
	huma.Get(api, "/api/v1/sessions/{session}/export/report", h.ExportReport, tags)
	huma.Post(api, "/api/v1/sessions/{session}/import/geojson", h.ImportGeoJSON, tags)
}

func (h *APIHandler) ExportGeoJSON(ctx context.Context, input *SessionInput) (*FileOutput, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(export.GeoJSON(sess.Markers()))
	if err != nil {
		return nil, huma.Error500InternalServerError("encode geojson", err)
	}
	return &FileOutput{
		ContentType:        GeoJSONContentType,
		ContentDisposition: attachment(sess.ID, "geojson"),
		Body:               data,
	}, nil
}

func (h *APIHandler) ExportWKT(ctx context.Context, input *SessionInput) (*FileOutput, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	wkt, err := export.WKT(sess.Markers())
	if err != nil {
		return nil, huma.Error500InternalServerError("encode wkt", err)
	}
	return &FileOutput{
		ContentType: WKTContentType,
		Body:        []byte(wkt),
	}, nil
}

func (h *APIHandler) ExportMsgpack(ctx context.Context, input *SessionInput) (*FileOutput, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	info := sess.Info()
	markers := sess.Markers()
	data, err := export.Pack(export.NewDocument(info.RouteID, info.Name, markers, route.TotalDistance(markers), time.Now()))
	if err != nil {
		return nil, huma.Error500InternalServerError("encode msgpack", err)
	}
	return &FileOutput{
		ContentType:        export.MsgpackContentType,
		ContentDisposition: attachment(sess.ID, "msgpack"),
		Body:               data,
	}, nil
}

type reportData struct {
	Title     string
	CreatedAt time.Time
	View      mapview.View
	WidthM    float64
	LoadClass string
	Estimate  estimate.Estimate
}

// ExportReport renders the printable planning report: route length, road
// width, load class, material bill and the stops in route order.
func (h *APIHandler) ExportReport(ctx context.Context, input *SessionEstimateInput) (*FileOutput, error) {
	if h.svc.Renderer == nil {
		return nil, huma.Error503ServiceUnavailable("report rendering not configured")
	}
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	view := sess.View()
	class := view.SelectedClass
	if input.LoadClass != "" {
		class = marker.ParseLoadClass(input.LoadClass)
	}
	width := roadWidth(input.WidthM, input.RoadType)

	title := sess.Info().Name
	if title == "" {
		title = "Neue Route"
	}
	data := reportData{
		Title:     title,
		CreatedAt: time.Now(),
		View:      view,
		WidthM:    width,
		LoadClass: palette.Label(class),
		Estimate:  estimate.Materials(view.DistanceKm, width, class),
	}
	html, err := h.svc.Renderer.Render("report-page", data)
	if err != nil {
		return nil, huma.Error500InternalServerError("render report", err)
	}
	return &FileOutput{
		ContentType:        ReportContentType,
		ContentDisposition: fmt.Sprintf(`inline; filename="%s-report.html"`, sess.ID),
		Body:               []byte(html),
	}, nil
}

// ImportGeoJSON replaces the session's markers with the Point features of an
// uploaded FeatureCollection.
func (h *APIHandler) ImportGeoJSON(ctx context.Context, input *struct {
	SessionInput
	RawBody []byte
}) (*SessionOutput, error) {
	sess, err := h.session(input.Session)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid GeoJSON: " + err.Error())
	}
	if err := sess.Import(export.FromGeoJSON(fc)); err != nil {
		return nil, problem(err)
	}
	return &SessionOutput{Body: sess.Info()}, nil
}
