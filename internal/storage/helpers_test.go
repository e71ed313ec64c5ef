// ABOUTME: Shared test helpers for storage tests.
// ABOUTME: Opens every backend so the contract tests run against each.
package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB creates a SQLite database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reps.db")
	db, err := Open(path)
	require.NoError(t, err, "open sqlite")
	require.Equal(t, path, db.Path())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// setupTestKV creates an in-memory Badger store.
func setupTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := OpenKV("")
	require.NoError(t, err, "open badger")
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

// forEachBackend runs fn once per Repository implementation.
func forEachBackend(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) { fn(t, setupTestDB(t)) })
	t.Run("badger", func(t *testing.T) { fn(t, setupTestKV(t)) })
}
