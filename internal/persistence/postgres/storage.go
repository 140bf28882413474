package postgres

import (
	"context"
	"embed"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/example/coworking-booking/internal/persistence"
	"github.com/example/coworking-booking/internal/persistence/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationDir = "migrations"

// Storage implements persistence.Store.
type Storage struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to dsn.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	pool, err := Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return New(pool, logger), nil
}

// New wraps an existing pool. Close closes the pool.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{pool: pool, logger: logger.With("store", "postgres")}
}

// Close releases the pool.
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks that the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	manager := migration.NewMigrationManager(
		migration.NewFileScanner(migrationFiles),
		migration.NewSQLExecutor(db, migration.Postgres),
		migrationDir,
		s.logger,
	)
	return manager.RunMigrations(ctx)
}

func requireAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
