// Package sqlite implements the persistence repositories on top of
// modernc.org/sqlite.
package sqlite

import (
	"context"
	"embed"
	"log/slog"
	"time"

	"github.com/example/coworking-booking/internal/persistence/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationDir = "migrations"

// Storage implements persistence.Store.
type Storage struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	logger *slog.Logger
}

// Open opens the database at dsn with DefaultConfig.
func Open(dsn string) (*Storage, error) {
	return OpenWithConfig(DefaultConfig(dsn), nil)
}

// OpenWithConfig opens the database described by cfg.
func OpenWithConfig(cfg Config, logger *slog.Logger) (*Storage, error) {
	pool, err := NewConnectionPool(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		logger: logger.With("store", "sqlite"),
	}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Ping checks that the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewMigrationManager(
		migration.NewFileScanner(migrationFiles),
		migration.NewSQLExecutor(s.pool.DB(), migration.SQLite),
		migrationDir,
		s.logger,
	)
	return manager.RunMigrations(ctx)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(column, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, &timeParseError{column: column, err: err}
	}
	return t, nil
}

type timeParseError struct {
	column string
	err    error
}

func (e *timeParseError) Error() string {
	return "failed to parse " + e.column + ": " + e.err.Error()
}

func (e *timeParseError) Unwrap() error {
	return e.err
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
