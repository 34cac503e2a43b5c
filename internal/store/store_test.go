package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/movinv/movinv/internal/db"
	"github.com/movinv/movinv/internal/domain"
)

// openTestDB opens a fresh migrated database in a per-test temp directory.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, database.Close())
	})
	return database
}

func createTestSession(t *testing.T, database *sql.DB, name string) *domain.Session {
	t.Helper()
	session, err := NewSessionStore(database).Create(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, session)
	return session
}
