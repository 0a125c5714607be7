package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesFileUnderDataDir(t *testing.T) {
	dir := t.TempDir()
	conn, err := Open(Config{DataDir: dir, DBName: "routes"})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = os.Stat(filepath.Join(dir, "duckdb", "routes.duckdb"))
	assert.NoError(t, err)
}

func TestMigrate(t *testing.T) {
	conn, err := Open(Config{})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, conn,
		`CREATE TABLE IF NOT EXISTS a (id INTEGER)`,
		`CREATE TABLE IF NOT EXISTS b (id INTEGER)`,
	))
	// idempotent
	require.NoError(t, Migrate(ctx, conn, `CREATE TABLE IF NOT EXISTS a (id INTEGER)`))

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT count(*) FROM information_schema.tables WHERE table_name IN ('a', 'b')`).Scan(&n))
	assert.Equal(t, 2, n)

	assert.Error(t, Migrate(ctx, conn, `CREATE TABLE broken (`))
}
