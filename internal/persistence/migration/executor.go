package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Dialect captures the SQL differences between supported databases.
type Dialect struct {
	Name        string
	placeholder func(n int) string
}

var (
	// SQLite uses "?" placeholders.
	SQLite = Dialect{Name: "sqlite", placeholder: func(int) string { return "?" }}
	// Postgres uses "$n" placeholders.
	Postgres = Dialect{Name: "postgres", placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
)

// SQLExecutor implements Executor over database/sql.
type SQLExecutor struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLExecutor creates an executor for db using the given dialect.
func NewSQLExecutor(db *sql.DB, dialect Dialect) *SQLExecutor {
	return &SQLExecutor{db: db, dialect: dialect}
}

// ExecuteMigration runs every statement of migration in a single transaction.
func (e *SQLExecutor) ExecuteMigration(ctx context.Context, migration Migration) (err error) {
	statements := splitStatements(migration.SQL)
	if len(statements) == 0 {
		return NewMigrationError(migration.Version, migration.FilePath, "parse SQL",
			fmt.Errorf("no SQL statements found in migration"))
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return NewDatabaseError(migration.Version, "", "begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback error: %v)", err, rbErr)
			}
		}
	}()

	for i, stmt := range statements {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			return NewDatabaseError(migration.Version, stmt, fmt.Sprintf("execute statement %d", i+1), execErr)
		}
	}

	if err = tx.Commit(); err != nil {
		return NewDatabaseError(migration.Version, "", "commit transaction", err)
	}
	return nil
}

// InitializeVersionTable creates schema_migrations if it does not exist.
func (e *SQLExecutor) InitializeVersionTable(ctx context.Context) error {
	const createTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT,
			execution_time_ms BIGINT
		)`

	if _, err := e.db.ExecContext(ctx, createTableSQL); err != nil {
		return NewDatabaseError("", createTableSQL, "create schema_migrations table", err)
	}
	return nil
}

// RecordMigration marks migration as applied.
func (e *SQLExecutor) RecordMigration(ctx context.Context, migration Migration, executionTime time.Duration) error {
	insertSQL := fmt.Sprintf(
		`INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms) VALUES (%s, %s, %s, %s)`,
		e.dialect.placeholder(1), e.dialect.placeholder(2), e.dialect.placeholder(3), e.dialect.placeholder(4),
	)

	appliedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := e.db.ExecContext(ctx, insertSQL, migration.Version, appliedAt, migration.Checksum, executionTime.Milliseconds()); err != nil {
		return NewDatabaseError(migration.Version, insertSQL, "record migration", err)
	}
	return nil
}

// GetAppliedVersions lists the rows of schema_migrations.
func (e *SQLExecutor) GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error) {
	const querySQL = `
		SELECT version, applied_at, COALESCE(execution_time_ms, 0), COALESCE(checksum, '')
		FROM schema_migrations
		ORDER BY version ASC`

	rows, err := e.db.QueryContext(ctx, querySQL)
	if err != nil {
		return nil, NewDatabaseError("", querySQL, "get applied versions", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			version, appliedAtStr, checksum string
			executionTimeMs                 int64
		)
		if err := rows.Scan(&version, &appliedAtStr, &executionTimeMs, &checksum); err != nil {
			return nil, NewDatabaseError("", querySQL, "scan applied migration", err)
		}
		appliedAt, _ := time.Parse(time.RFC3339, appliedAtStr)
		applied = append(applied, AppliedMigration{
			Version:       version,
			AppliedAt:     appliedAt,
			ExecutionTime: time.Duration(executionTimeMs) * time.Millisecond,
			Checksum:      checksum,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, NewDatabaseError("", querySQL, "iterate applied migrations", err)
	}

	return applied, nil
}
