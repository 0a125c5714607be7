package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/baustructura/bau-geo/internal/db"
	"github.com/baustructura/bau-geo/internal/export"
)

const duckdbSchema = `CREATE TABLE IF NOT EXISTS route_snapshots (
	route_id        VARCHAR PRIMARY KEY,
	name            VARCHAR,
	markers         VARCHAR NOT NULL,
	geometry        VARCHAR,
	marker_count    INTEGER,
	distance_meters DOUBLE,
	saved_at        TIMESTAMP
)`

// DuckDBBackend stores snapshots in the embedded DuckDB database. Markers are
// kept as JSON text next to the route geometry in WKT, so the table can be
// queried with the spatial extension.
type DuckDBBackend struct {
	conn  *sql.DB
	owned bool
}

// NewDuckDBBackend uses conn, creating the table if needed. If owned is true
// Close also closes conn.
func NewDuckDBBackend(ctx context.Context, conn *sql.DB, owned bool) (*DuckDBBackend, error) {
	if err := db.Migrate(ctx, conn, duckdbSchema); err != nil {
		return nil, err
	}
	return &DuckDBBackend{conn: conn, owned: owned}, nil
}

func (b *DuckDBBackend) Save(ctx context.Context, snap Snapshot) error {
	snap, err := normalize(snap)
	if err != nil {
		return err
	}
	markers, err := json.Marshal(snap.Markers)
	if err != nil {
		return err
	}
	geometry, err := export.WKT(snap.Markers)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.RouteID, err)
	}
	_, err = b.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO route_snapshots
		 (route_id, name, markers, geometry, marker_count, distance_meters, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.RouteID, snap.Name, string(markers), geometry,
		len(snap.Markers), snap.DistanceMeters, snap.SavedAt)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.RouteID, err)
	}
	return nil
}

func (b *DuckDBBackend) Load(ctx context.Context, routeID string) (Snapshot, error) {
	if err := ValidateID(routeID); err != nil {
		return Snapshot{}, err
	}
	var (
		snap    Snapshot
		name    sql.NullString
		markers string
	)
	err := b.conn.QueryRowContext(ctx,
		`SELECT route_id, name, markers, distance_meters, saved_at
		 FROM route_snapshots WHERE route_id = ?`, routeID).
		Scan(&snap.RouteID, &name, &markers, &snap.DistanceMeters, &snap.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, routeID)
	}
	if err != nil {
		return Snapshot{}, err
	}
	snap.Name = name.String
	snap.SavedAt = snap.SavedAt.UTC()
	if err := json.Unmarshal([]byte(markers), &snap.Markers); err != nil {
		return Snapshot{}, fmt.Errorf("decode markers of %s: %w", routeID, err)
	}
	return snap, nil
}

func (b *DuckDBBackend) List(ctx context.Context) ([]Info, error) {
	rows, err := b.conn.QueryContext(ctx,
		`SELECT route_id, name, marker_count, distance_meters, saved_at FROM route_snapshots`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		var (
			info Info
			name sql.NullString
			at   time.Time
		)
		if err := rows.Scan(&info.RouteID, &name, &info.MarkerCount, &info.DistanceMeters, &at); err != nil {
			return nil, err
		}
		info.Name = name.String
		info.SavedAt = at.UTC()
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortInfos(infos)
	return infos, nil
}

func (b *DuckDBBackend) Delete(ctx context.Context, routeID string) error {
	if err := ValidateID(routeID); err != nil {
		return err
	}
	res, err := b.conn.ExecContext(ctx, `DELETE FROM route_snapshots WHERE route_id = ?`, routeID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, routeID)
	}
	return nil
}

func (b *DuckDBBackend) Close() error {
	if b.owned {
		return b.conn.Close()
	}
	return nil
}
