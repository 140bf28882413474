package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

type migrationManager struct {
	scanner      FileScanner
	executor     Executor
	migrationDir string
	logger       *slog.Logger
}

// NewMigrationManager wires a scanner and executor together. A nil logger
// falls back to slog.Default.
func NewMigrationManager(scanner FileScanner, executor Executor, migrationDir string, logger *slog.Logger) MigrationManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &migrationManager{
		scanner:      scanner,
		executor:     executor,
		migrationDir: migrationDir,
		logger:       logger.With("component", "migration"),
	}
}

// RunMigrations executes every pending migration in version order and stops
// at the first failure.
func (m *migrationManager) RunMigrations(ctx context.Context) error {
	started := time.Now()

	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		m.logger.ErrorContext(ctx, "failed to initialize schema_migrations", "error", err)
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	pending, err := m.GetPendingMigrations(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to resolve pending migrations", "error", err)
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}
	if len(pending) == 0 {
		m.logger.InfoContext(ctx, "schema up to date")
		return nil
	}

	m.logger.InfoContext(ctx, "applying migrations", "pending_count", len(pending))

	for i, migration := range pending {
		logger := m.logger.With(
			"version", migration.Version,
			"description", migration.Description,
			"position", fmt.Sprintf("%d/%d", i+1, len(pending)),
		)
		migrationStarted := time.Now()

		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return NewMigrationError(migration.Version, migration.FilePath,
				"execute migration", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}

		elapsed := time.Since(migrationStarted)
		if err := m.executor.RecordMigration(ctx, migration, elapsed); err != nil {
			logger.ErrorContext(ctx, "failed to record migration", "error", err)
			return NewMigrationError(migration.Version, migration.FilePath,
				"record migration", fmt.Errorf("failed to record migration: %w", err))
		}

		logger.InfoContext(ctx, "migration applied", "duration", elapsed)
	}

	m.logger.InfoContext(ctx, "migrations completed", "applied_count", len(pending), "duration", time.Since(started))
	return nil
}

// GetPendingMigrations returns the scanned migrations that have not been
// recorded yet, after validating that the sequence has no gaps.
func (m *migrationManager) GetPendingMigrations(ctx context.Context) ([]Migration, error) {
	available, err := m.scanner.ScanMigrations(m.migrationDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations: %w", err)
	}

	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize version table: %w", err)
	}
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}

	if err := validateSequence(available, applied); err != nil {
		return nil, fmt.Errorf("migration sequence validation failed: %w", err)
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, a := range applied {
		appliedSet[a.Version] = true
	}

	var pending []Migration
	for _, migration := range available {
		if !appliedSet[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// GetMigrationStatus reports the highest applied version and what remains.
func (m *migrationManager) GetMigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	pending, err := m.GetPendingMigrations(ctx)
	if err != nil {
		return nil, err
	}
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	current, highest := "", -1
	for _, a := range applied {
		if v, err := strconv.Atoi(a.Version); err == nil && v > highest {
			highest, current = v, a.Version
		}
	}

	return &MigrationStatus{
		CurrentVersion:    current,
		PendingCount:      len(pending),
		AppliedMigrations: applied,
		PendingMigrations: pending,
	}, nil
}

func validateSequence(available []Migration, applied []AppliedMigration) error {
	versions := make(map[int]bool, len(available))
	lowest, highest := 0, 0
	for i, migration := range available {
		v, err := strconv.Atoi(migration.Version)
		if err != nil {
			return NewMigrationError(migration.Version, migration.FilePath, "validate sequence",
				fmt.Errorf("%w: version '%s' is not numeric", ErrInvalidVersion, migration.Version))
		}
		versions[v] = true
		if i == 0 || v < lowest {
			lowest = v
		}
		if v > highest {
			highest = v
		}
	}

	if len(available) > 0 {
		for v := lowest; v <= highest; v++ {
			if !versions[v] {
				return fmt.Errorf("%w: missing migration version %03d in sequence", ErrVersionConflict, v)
			}
		}
	}

	for _, a := range applied {
		v, err := strconv.Atoi(a.Version)
		if err != nil || !versions[v] {
			return fmt.Errorf("%w: applied migration %s not found in available migrations", ErrVersionConflict, a.Version)
		}
	}
	return nil
}
