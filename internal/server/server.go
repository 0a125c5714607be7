// Package server wires storage, geocoding, sessions and the HTTP routes
// into one handler.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog"

	"github.com/baustructura/bau-geo/internal/api"
	"github.com/baustructura/bau-geo/internal/api/editor"
	"github.com/baustructura/bau-geo/internal/config"
	"github.com/baustructura/bau-geo/internal/db"
	"github.com/baustructura/bau-geo/internal/geocode"
	"github.com/baustructura/bau-geo/internal/humastar"
	"github.com/baustructura/bau-geo/internal/mapview"
	"github.com/baustructura/bau-geo/internal/service"
	"github.com/baustructura/bau-geo/internal/storage"
	"github.com/baustructura/bau-geo/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	App     config.Config
	Logger  zerolog.Logger
}

// Server is the bau-geo HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	links    *humastar.Links
	db       *sql.DB
	store    storage.Backend
	geocoder geocode.Gateway
	sessions *service.SessionService
	tiles    *mapview.TileProvider
	renderer *templates.Renderer
	log      zerolog.Logger
	cancel   context.CancelFunc
}

// New creates a new server. Background work starts with Start.
func New(cfg Config) (*Server, error) {
	log := cfg.Logger.With().Str("component", "server").Logger()
	app := cfg.App

	store, err := storage.NewBackend(context.Background(), storage.Config{
		Driver:      app.Storage.Driver,
		DataDir:     cfg.DataDir,
		SQLitePath:  app.Storage.SQLitePath,
		PostgresDSN: app.Storage.PostgresDSN,
	}, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	gw, err := geocode.New(geocode.Config{
		Provider:  app.Geocode.Provider,
		Token:     app.Geocode.Token,
		BaseURL:   app.Geocode.URL,
		UserAgent: app.Geocode.UserAgent,
		Timeout:   app.Geocode.Timeout,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("geocoder: %w", err)
	}

	renderer, err := templates.New()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("templates: %w", err)
	}

	s := &Server{
		config:   cfg,
		mux:      http.NewServeMux(),
		links:    humastar.NewLinks(),
		store:    store,
		geocoder: gw,
		renderer: renderer,
		log:      log,
		tiles: mapview.NewTileProvider(mapview.TileConfig{
			URLTemplate: app.Tiles.URL,
			Attribution: app.Tiles.Attribution,
			SkipProbe:   !app.Tiles.Probe,
			Timeout:     app.Tiles.Timeout,
		}, cfg.Logger),
	}

	// The duckdb backend shares the singleton connection; other drivers leave
	// the db endpoints unavailable.
	if app.Storage.Driver == "duckdb" {
		conn, err := db.Get(db.Config{DataDir: cfg.DataDir, DBName: "baugeo", Logger: cfg.Logger})
		if err == nil {
			s.db = conn
		}
	}

	s.sessions = service.NewSessionService(store, gw, s.tiles, nil, cfg.Logger, service.Options{
		IdleTimeout: app.Session.IdleTimeout,
		MaxSessions: app.Session.Max,
	})

	humaConfig := huma.DefaultConfig("bau-geo API", api.Version)
	humaConfig.Info.Description = "Route planning for construction sites: markers, load classes, route metrics, geocoding and cost estimates."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, s.links.Transformer())
	s.humaAPI = humago.New(s.mux, humaConfig)

	s.routes()
	return s, nil
}

// Start begins the tile probe and the idle session sweep. They stop on Close.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		if err := s.tiles.EnsureReady(ctx); err != nil {
			s.log.Warn().Err(err).Msg("tile server unreachable, editor shows fallback links")
		}
	}()
	go s.sessions.Run(ctx, s.config.App.Session.CleanupInterval)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Close stops background work and closes server resources.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.sessions.Close()
	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.db != nil {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Server) routes() {
	api.RegisterRoutes(s.humaAPI, &api.Services{
		Sessions: s.sessions,
		Geocoder: s.geocoder,
		Tiles:    s.tiles,
		DB:       s.db,
		Renderer: s.renderer,
		Info: api.InfoConfig{
			DataDir:         s.config.DataDir,
			StorageDriver:   s.config.App.Storage.Driver,
			GeocodeProvider: s.config.App.Geocode.Provider,
		},
	})

	ed := editor.New(s.sessions, s.tiles, s.renderer, s.config.Logger)
	ed.RegisterRoutes(s.humaAPI)
	ed.RegisterPages(s.mux)

	s.links.Build(s.humaAPI, humastar.LinkOptions{
		EntryPoint: "/health",
		Search:     "/api/v1/geocode",
		SkipTags:   []string{"editor"},
	})

	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"service": "bau-geo",
		"status":  "running",
		"links": map[string]string{
			"editor":  "/editor",
			"routes":  "/editor/routes",
			"docs":    "/docs",
			"openapi": "/openapi.json",
		},
	})
}
