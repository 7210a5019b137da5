package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/docket/internal/db"
)

// NewTestDB opens a migrated in-memory database, closed at test cleanup.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()
	return open(t, ":memory:")
}

// NewTestDBFile opens a migrated database file under t.TempDir. Unlike
// NewTestDB it serves several connections at once, so concurrent writers
// contend for the lock.
func NewTestDBFile(t testing.TB) *sql.DB {
	t.Helper()
	return open(t, filepath.Join(t.TempDir(), "docket.db"))
}

func open(t testing.TB, path string) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(path)
	require.NoError(t, err, "opening test database")
	t.Cleanup(func() { _ = database.Close() })
	return database
}
