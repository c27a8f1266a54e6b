package testsupport

import (
	"context"
	"testing"

	"festive/internal/config"
	"festive/internal/history"
)

// MustOpenHistory opens the job ledger for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// StartRecord creates a ledger row for sourcePath.
func StartRecord(t testing.TB, store *history.Store, sourcePath string) *history.Record {
	t.Helper()

	record, err := store.Start(context.Background(), sourcePath)
	if err != nil {
		t.Fatalf("store.Start: %v", err)
	}
	return record
}
