package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique key (id or name) is already taken.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a record fails a schema check.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a record references a missing parent.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrOverlap is returned when the store itself rejects a reservation whose
	// slot overlaps another reservation on the same resource.
	ErrOverlap = errors.New("persistence: overlapping reservation")
)
