package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/example/coworking-booking/internal/persistence"
)

// SQLSTATE codes the store translates.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
	codeExclusionViolation  = "23P01"
)

// mapError translates pgx errors into persistence sentinels. Unrecognised
// errors are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return persistence.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeExclusionViolation:
		return fmt.Errorf("%w: %s", persistence.ErrOverlap, pgErr.ConstraintName)
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", persistence.ErrDuplicate, pgErr.ConstraintName)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", persistence.ErrForeignKeyViolation, pgErr.ConstraintName)
	case codeCheckViolation, codeNotNullViolation:
		return fmt.Errorf("%w: %s", persistence.ErrConstraintViolation, pgErr.ConstraintName)
	}
	return err
}
