package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baustructura/bau-geo/internal/db"
	"github.com/baustructura/bau-geo/internal/marker"
)

// Compile-time interface checks
var (
	_ Backend = (*FileBackend)(nil)
	_ Backend = (*DuckDBBackend)(nil)
	_ Backend = (*GormBackend)(nil)
)

func sampleSnapshot(id string, at time.Time) Snapshot {
	return Snapshot{
		RouteID: id,
		Name:    "Ring Ost",
		Markers: []marker.Marker{
			{Position: marker.Position{Lat: 48.137154, Lng: 11.576124}, Street: "Marienplatz", LoadClass: marker.Bk10},
			{Position: marker.Position{Lat: 49.452102, Lng: 11.076665}, Notes: "Baustelle"},
		},
		DistanceMeters: 150_512,
		SavedAt:        at,
	}
}

// backendContract runs the behaviour every backend shares.
func backendContract(t *testing.T, b Backend) {
	ctx := context.Background()
	t1 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	infos, err := b.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)

	_, err = b.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, b.Delete(ctx, "missing"), ErrNotFound)

	require.NoError(t, b.Save(ctx, sampleSnapshot("ring-ost", t1)))
	require.NoError(t, b.Save(ctx, sampleSnapshot("b2-sued", t2)))

	got, err := b.Load(ctx, "ring-ost")
	require.NoError(t, err)
	want := sampleSnapshot("ring-ost", t1)
	assert.Equal(t, want.Markers, got.Markers)
	assert.Equal(t, want.Name, got.Name)
	assert.InDelta(t, want.DistanceMeters, got.DistanceMeters, 1e-9)
	assert.True(t, t1.Equal(got.SavedAt), "saved at %s", got.SavedAt)

	infos, err = b.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "b2-sued", infos[0].RouteID, "newest first")
	assert.Equal(t, 2, infos[1].MarkerCount)

	// overwrite
	updated := sampleSnapshot("ring-ost", t2.Add(time.Hour))
	updated.Markers = updated.Markers[:1]
	require.NoError(t, b.Save(ctx, updated))
	got, err = b.Load(ctx, "ring-ost")
	require.NoError(t, err)
	assert.Len(t, got.Markers, 1)

	require.NoError(t, b.Delete(ctx, "ring-ost"))
	_, err = b.Load(ctx, "ring-ost")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, b.Save(ctx, sampleSnapshot("../etc", t1)), ErrInvalidID)
	_, err = b.Load(ctx, "Upper Case")
	assert.ErrorIs(t, err, ErrInvalidID)

	bad := sampleSnapshot("bad", t1)
	bad.Markers[0].Position.Lat = 95
	assert.ErrorIs(t, b.Save(ctx, bad), marker.ErrInvalidCoordinate)
}

func TestFileBackend(t *testing.T) {
	b, err := NewFileBackend(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()
	backendContract(t, b)
}

func TestFileBackend_SkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, b.Save(context.Background(), sampleSnapshot("ok", time.Now())))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "routes", "broken.json"), []byte("{"), 0644))

	infos, err := b.List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "ok", infos[0].RouteID)
}

func TestDuckDBBackend(t *testing.T) {
	conn, err := db.Open(db.Config{DataDir: t.TempDir(), DBName: "test"})
	require.NoError(t, err)
	b, err := NewDuckDBBackend(context.Background(), conn, true)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	backendContract(t, b)

	ctx := context.Background()
	require.NoError(t, b.Save(ctx, sampleSnapshot("geo", time.Now())))
	var geometry string
	require.NoError(t, conn.QueryRowContext(ctx,
		`SELECT geometry FROM route_snapshots WHERE route_id = ?`, "geo").Scan(&geometry))
	assert.Equal(t, "LINESTRING(11.576124 48.137154,11.076665 49.452102)", geometry)
}

func TestGormBackend_SQLite(t *testing.T) {
	gdb, err := OpenSQLite(filepath.Join(t.TempDir(), "routes.db"))
	require.NoError(t, err)
	b, err := NewGormBackend(gdb)
	require.NoError(t, err)
	defer b.Close()

	backendContract(t, b)

	require.NoError(t, b.Save(context.Background(), sampleSnapshot("geo", time.Now())))
	var row RouteSnapshot
	require.NoError(t, gdb.First(&row, "route_id = ?", "geo").Error)
	assert.Equal(t, "LINESTRING(11.576124 48.137154,11.076665 49.452102)", row.Geometry)
	assert.Equal(t, 2, row.MarkerCount)

	stacked := sampleSnapshot("stacked", time.Now())
	stacked.Markers[1].Position = stacked.Markers[0].Position
	require.NoError(t, b.Save(context.Background(), stacked))
	require.NoError(t, gdb.First(&row, "route_id = ?", "stacked").Error)
	assert.Equal(t, "POINT(11.576124 48.137154)", row.Geometry)
}

func TestNewBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := NewBackend(ctx, Config{Driver: "file", DataDir: dir}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	b, err = NewBackend(ctx, Config{Driver: "sqlite", DataDir: dir}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &GormBackend{}, b)
	b.Close()
	assert.FileExists(t, filepath.Join(dir, "sqlite", "routes.db"))

	_, err = NewBackend(ctx, Config{Driver: "postgres"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewBackend(ctx, Config{Driver: "redis"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Ring Ost":            "ring-ost",
		"  Straße Süd 2 ":     "strasse-sued-2",
		"B2 / Abschnitt (A)":  "b2--abschnitt-a",
		"---":                 "",
		"Großbaustelle_Nord!": "grossbaustelle_nord",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), in)
		if want != "" {
			assert.NoError(t, ValidateID(want))
		}
	}
}
