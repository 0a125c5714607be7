package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baustructura/bau-geo/internal/mapview"
	"github.com/baustructura/bau-geo/internal/marker"
	"github.com/baustructura/bau-geo/internal/palette"
)

// InfoConfig is the static part of the info response.
type InfoConfig struct {
	DataDir         string
	StorageDriver   string
	GeocodeProvider string
}

type InfoHandler struct {
	cfg   InfoConfig
	tiles *mapview.TileProvider
}

func NewInfoHandler(cfg InfoConfig, tiles *mapview.TileProvider) *InfoHandler {
	return &InfoHandler{cfg: cfg, tiles: tiles}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
	huma.Get(api, "/api/v1/tiles", h.GetTiles, huma.OperationTags("health"))

	tags := huma.OperationTags("palette")
	huma.Get(api, "/api/v1/palette", h.GetPalette, tags)
	huma.Get(api, "/api/v1/palette/classes", h.ListClasses, tags)
	huma.Get(api, "/api/v1/palette/{class}", h.GetClass, tags)
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	DataDir  string   `json:"dataDir" doc:"Data directory path"`
	Storage  string   `json:"storage" doc:"Active snapshot storage driver" example:"file"`
	Geocoder string   `json:"geocoder" doc:"Active geocoding provider" example:"nominatim"`
	Tiles    string   `json:"tiles" doc:"Tile provider status" enum:"loading,ready,failed"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	features := []string{"sessions", "route-metrics", "optimize", "estimate", "export", "snapshots", "editor"}
	if h.cfg.GeocodeProvider != "" && h.cfg.GeocodeProvider != "none" {
		features = append(features, "geocode")
	}
	if h.cfg.StorageDriver == "duckdb" {
		features = append(features, "duckdb")
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:     "bau-geo",
		Version:  Version,
		DataDir:  h.cfg.DataDir,
		Storage:  h.cfg.StorageDriver,
		Geocoder: h.cfg.GeocodeProvider,
		Tiles:    string(h.tiles.Status()),
		Features: features,
	}}, nil
}

type TilesBody struct {
	Status      mapview.TileStatus `json:"status" enum:"loading,ready,failed"`
	URLTemplate string             `json:"urlTemplate" example:"https://tile.openstreetmap.org/{z}/{x}/{y}.png"`
	Attribution string             `json:"attribution"`
	ProbeURL    string             `json:"probeUrl" doc:"Tile fetched by the readiness probe"`
}

func (h *InfoHandler) GetTiles(ctx context.Context, input *struct{}) (*struct{ Body TilesBody }, error) {
	t := mapview.ProbeTile()
	return &struct{ Body TilesBody }{Body: TilesBody{
		Status:      h.tiles.Status(),
		URLTemplate: h.tiles.URLTemplate(),
		Attribution: h.tiles.Attribution(),
		ProbeURL:    h.tiles.TileURL(uint32(t.Z), t.X, t.Y),
	}}, nil
}

type PaletteBody struct {
	RouteColor string               `json:"routeColor" doc:"Polyline stroke colour"`
	Legend     []palette.LegendItem `json:"legend"`
}

func (h *InfoHandler) GetPalette(ctx context.Context, input *struct{}) (*struct{ Body PaletteBody }, error) {
	return &struct{ Body PaletteBody }{Body: PaletteBody{RouteColor: palette.RouteColor, Legend: palette.Legend()}}, nil
}

func (h *InfoHandler) ListClasses(ctx context.Context, input *struct{}) (*struct{ Body []palette.ClassInfo }, error) {
	return &struct{ Body []palette.ClassInfo }{Body: palette.Infos()}, nil
}

type ClassBody struct {
	LoadClass marker.LoadClass   `json:"loadClass"`
	Label     string             `json:"label" example:"Bk3.2"`
	Color     string             `json:"color"`
	Icon      palette.Icon       `json:"icon"`
	Info      *palette.ClassInfo `json:"info,omitempty" doc:"RStO build-up; absent for None"`
}

// GetClass describes one class. Legacy spellings such as "Bk3.2" resolve;
// anything unknown is styled as None.
func (h *InfoHandler) GetClass(ctx context.Context, input *struct {
	Class string `path:"class" example:"Bk3_2"`
}) (*struct{ Body ClassBody }, error) {
	c := marker.ParseLoadClass(input.Class)
	body := ClassBody{LoadClass: c, Label: palette.Label(c), Color: palette.ColorFor(c), Icon: palette.IconFor(c)}
	if info, ok := palette.Info(c); ok {
		body.Info = &info
	}
	return &struct{ Body ClassBody }{Body: body}, nil
}
