package testfixtures

import (
	"context"
	"os"
	"testing"

	"github.com/example/coworking-booking/internal/persistence/postgres"
)

// PostgresDSNEnv names the variable holding a disposable PostgreSQL database
// for integration tests.
const PostgresDSNEnv = "BOOKING_TEST_POSTGRES_DSN"

// NewPostgresHarness constructs a StoreHarness against the database named by
// PostgresDSNEnv, skipping the test when it is unset. Every table is emptied
// before the harness is returned.
func NewPostgresHarness(tb testing.TB) *StoreHarness {
	tb.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		tb.Skipf("%s not set", PostgresDSNEnv)
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, dsn)
	if err != nil {
		tb.Fatalf("failed to connect: %v", err)
	}

	storage := postgres.New(pool, nil)
	if err := storage.Migrate(ctx); err != nil {
		pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE reservations, resources, actors`); err != nil {
		pool.Close()
		tb.Fatalf("failed to reset tables: %v", err)
	}

	return newHarness(tb, storage)
}
