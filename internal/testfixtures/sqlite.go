package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/coworking-booking/internal/persistence"
	"github.com/example/coworking-booking/internal/persistence/memory"
	"github.com/example/coworking-booking/internal/persistence/sqlite"
)

// StoreHarness exposes the repositories of one store backend to tests.
type StoreHarness struct {
	Actors       persistence.ActorRepository
	Resources    persistence.ResourceRepository
	Reservations persistence.ReservationRepository
	Store        persistence.Store

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *StoreHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a StoreHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *StoreHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "booking.db")

	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	return newHarness(tb, storage)
}

// NewMemoryHarness constructs a StoreHarness backed by the in-memory store.
func NewMemoryHarness(tb testing.TB) *StoreHarness {
	tb.Helper()
	return newHarness(tb, memory.Open())
}

func newHarness(tb testing.TB, store persistence.Store) *StoreHarness {
	harness := &StoreHarness{
		Actors:       store,
		Resources:    store,
		Reservations: store,
		Store:        store,
		cleanup: func() {
			_ = store.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}
