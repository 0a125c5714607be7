package api

import (
	"context"
	"database/sql"

	"github.com/danielgtaylor/huma/v2"
)

// DBHandler exposes read-only views of the embedded DuckDB store.
type DBHandler struct {
	db *sql.DB
}

// NewDBHandler creates a new database handler. db may be nil when another
// storage driver is active; the routes then answer 503.
func NewDBHandler(db *sql.DB) *DBHandler {
	return &DBHandler{db: db}
}

// RegisterRoutes registers database routes with Huma.
func (h *DBHandler) RegisterRoutes(api huma.API) {
	tags := huma.OperationTags("db")
	huma.Get(api, "/api/v1/db/tables", h.ListTables, tags)
	huma.Get(api, "/api/v1/db/stats", h.Stats, tags)
}

// TablesOutput is the response for listing tables.
type TablesOutput struct {
	Body struct {
		Tables []string `json:"tables" doc:"List of table names"`
	}
}

// ListTables returns all DuckDB tables.
func (h *DBHandler) ListTables(ctx context.Context, input *struct{}) (*TablesOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	rows, err := h.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}
	defer rows.Close()

	out := &TablesOutput{}
	out.Body.Tables = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			out.Body.Tables = append(out.Body.Tables, name)
		}
	}
	return out, rows.Err()
}

// StatsBody aggregates the stored route snapshots.
type StatsBody struct {
	Routes              int64   `json:"routes" doc:"Stored route snapshots"`
	Markers             int64   `json:"markers" doc:"Markers across all snapshots"`
	TotalDistanceMeters float64 `json:"totalDistanceMeters" doc:"Summed route length"`
}

// Stats sums the route_snapshots table.
func (h *DBHandler) Stats(ctx context.Context, input *struct{}) (*struct{ Body StatsBody }, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	var body StatsBody
	err := h.db.QueryRowContext(ctx, `SELECT count(*),
		coalesce(sum(marker_count), 0),
		coalesce(sum(distance_meters), 0)
		FROM route_snapshots`).Scan(&body.Routes, &body.Markers, &body.TotalDistanceMeters)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to read stats", err)
	}
	return &struct{ Body StatsBody }{Body: body}, nil
}
