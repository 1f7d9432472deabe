// Package testutil holds helpers shared by tests that need a real cache
// database.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/storage"
)

// NewStore opens a migrated SQLite store under t.TempDir and closes it when
// the test ends.
func NewStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	return OpenStore(t, filepath.Join(t.TempDir(), "cache.db"))
}

// OpenStore opens and migrates the store at path.
func OpenStore(t *testing.T, path string) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// SeedGeneration stores a 200 response for each path under generation and
// optionally activates it.
func SeedGeneration(t *testing.T, store *storage.SQLiteStorage, generation string, activate bool, paths ...string) {
	t.Helper()
	ctx := context.Background()

	if err := store.CreateGeneration(ctx, generation); err != nil {
		t.Fatalf("failed to create generation %s: %v", generation, err)
	}
	for _, path := range paths {
		resp := &model.CachedResponse{
			Path:        path,
			Status:      200,
			ContentType: "text/plain",
			Body:        []byte(generation + ":" + path),
		}
		if err := store.PutResponse(ctx, generation, resp); err != nil {
			t.Fatalf("failed to seed %s: %v", path, err)
		}
	}
	if activate {
		if _, err := store.ActivateGeneration(ctx, generation); err != nil {
			t.Fatalf("failed to activate %s: %v", generation, err)
		}
	}
}
