// Package testutil provides test utilities for store setup.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/markpad/internal/infrastructure/sqlite"
)

// NewTestStore opens a migrated store in a per-test temp directory.
// The store is closed automatically when the test finishes.
func NewTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "markpad-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
