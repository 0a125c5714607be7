package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/baustructura/bau-geo/internal/db"
)

// Config selects a backend.
type Config struct {
	Driver      string // file, duckdb, sqlite or postgres
	DataDir     string
	SQLitePath  string // defaults to <dataDir>/sqlite/routes.db
	PostgresDSN string
}

// NewBackend creates a storage backend based on configuration.
func NewBackend(ctx context.Context, cfg Config, log zerolog.Logger) (Backend, error) {
	log = log.With().Str("component", "storage").Str("driver", cfg.Driver).Logger()

	switch cfg.Driver {
	case "", "file":
		return NewFileBackend(cfg.DataDir, log)
	case "duckdb":
		conn, err := db.Get(db.Config{DataDir: cfg.DataDir, DBName: "baugeo", Logger: log})
		if err != nil {
			return nil, err
		}
		return NewDuckDBBackend(ctx, conn, false)
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.DataDir, "sqlite", "routes.db")
		}
		gdb, err := OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
		log.Info().Str("path", path).Msg("using local SQLite DB")
		return NewGormBackend(gdb)
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage needs storage.postgresDsn")
		}
		gdb, err := OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info().Msg("connected to Postgres")
		return NewGormBackend(gdb)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
