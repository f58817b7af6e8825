package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/markpad/internal/infrastructure/sqlite"
)

func TestOpen_CreatesSchemaViaMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markpad.db")

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	for _, table := range []string{"documents", "revisions", "schema_migrations"} {
		var name string
		err := store.DB().QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestOpen_ReopenExistingStoreIsNoChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markpad.db")

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Second open sees the schema already migrated.
	store, err = sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestOpen_InMemory(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NotNil(t, store.Documents())
}
