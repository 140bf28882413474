package migration

import (
	"context"
	"time"
)

// Migration is one versioned SQL file.
type Migration struct {
	Version     string
	Description string
	SQL         string
	FilePath    string
	Checksum    string
}

// AppliedMigration is a row of the schema_migrations table.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// MigrationStatus summarises the applied and pending migrations.
type MigrationStatus struct {
	CurrentVersion    string
	PendingCount      int
	AppliedMigrations []AppliedMigration
	PendingMigrations []Migration
}

// MigrationManager orchestrates scanning and executing migrations.
type MigrationManager interface {
	RunMigrations(ctx context.Context) error
	GetPendingMigrations(ctx context.Context) ([]Migration, error)
	GetMigrationStatus(ctx context.Context) (*MigrationStatus, error)
}

// FileScanner discovers migration files.
type FileScanner interface {
	ScanMigrations(migrationDir string) ([]Migration, error)
	ValidateFileName(filename string) error
}

// Executor runs migrations against a database and tracks applied versions.
type Executor interface {
	ExecuteMigration(ctx context.Context, migration Migration) error
	InitializeVersionTable(ctx context.Context) error
	RecordMigration(ctx context.Context, migration Migration, executionTime time.Duration) error
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}
