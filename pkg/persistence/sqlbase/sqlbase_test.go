package sqlbase_test

import (
	"database/sql"
	"log/slog"
	"testing"

	"github.com/dukex/flowsuite/pkg/persistence/sqlbase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestDialect_Rebind(t *testing.T) {
	query := "UPDATE t SET a = $1, b = $2 WHERE id = $10 OR id = $1"

	assert.Equal(t, query, sqlbase.DialectPostgres.Rebind(query))
	assert.Equal(t, "UPDATE t SET a = ?1, b = ?2 WHERE id = ?10 OR id = ?1", sqlbase.DialectSQLite.Rebind(query))
}

func openMemory(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	db.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestMigrationManager_AppliesInOrder(t *testing.T) {
	db := openMemory(t)

	migrations := map[int][]string{
		3: {"ALTER TABLE things ADD COLUMN color TEXT"},
		1: {"CREATE TABLE things (id TEXT PRIMARY KEY)"},
		2: {"ALTER TABLE things ADD COLUMN size INTEGER", "CREATE INDEX idx_things_size ON things(size)"},
	}

	manager := sqlbase.NewMigrationManager(slog.New(slog.DiscardHandler), db, sqlbase.DialectSQLite, migrations)

	require.NoError(t, manager.RunMigrations(t.Context()))

	version, err := manager.CurrentVersion(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, version)
	assert.Equal(t, 3, manager.LatestVersion())

	_, err = db.ExecContext(t.Context(), "INSERT INTO things (id, size, color) VALUES ('a', 1, 'red')")
	require.NoError(t, err)

	// A second run is a no-op.
	require.NoError(t, manager.RunMigrations(t.Context()))
}

func TestMigrationManager_ResumesFromCurrentVersion(t *testing.T) {
	db := openMemory(t)
	logger := slog.New(slog.DiscardHandler)

	first := map[int][]string{1: {"CREATE TABLE things (id TEXT PRIMARY KEY)"}}
	require.NoError(t, sqlbase.NewMigrationManager(logger, db, sqlbase.DialectSQLite, first).RunMigrations(t.Context()))

	second := map[int][]string{
		1: {"CREATE TABLE things (id TEXT PRIMARY KEY)"},
		2: {"CREATE TABLE others (id TEXT PRIMARY KEY)"},
	}
	manager := sqlbase.NewMigrationManager(logger, db, sqlbase.DialectSQLite, second)

	require.NoError(t, manager.RunMigrations(t.Context()))

	version, err := manager.CurrentVersion(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestMigrationManager_FailedMigrationRollsBack(t *testing.T) {
	db := openMemory(t)

	migrations := map[int][]string{
		1: {"CREATE TABLE things (id TEXT PRIMARY KEY)", "THIS IS NOT SQL"},
	}
	manager := sqlbase.NewMigrationManager(slog.New(slog.DiscardHandler), db, sqlbase.DialectSQLite, migrations)

	require.Error(t, manager.RunMigrations(t.Context()))

	version, err := manager.CurrentVersion(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, version)
}
