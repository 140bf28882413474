package application

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/example/coworking-booking/internal/persistence"
)

var (
	// ErrMalformedTimestamp is returned when a timestamp does not match the expected layout.
	ErrMalformedTimestamp = errors.New("application: malformed timestamp")
	// ErrInvalidInterval is returned when a slot does not end strictly after it starts.
	ErrInvalidInterval = errors.New("application: invalid interval")
	// ErrBookingConflict is returned when a candidate slot collides with an existing reservation.
	ErrBookingConflict = errors.New("application: booking conflict")
	// ErrIncompleteRequest is returned when required request fields are missing or unresolvable.
	ErrIncompleteRequest = errors.New("application: incomplete request")
	// ErrNotFound is returned when the requested reservation does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrResourceNotFound is returned when no resource carries the requested name.
	ErrResourceNotFound = errors.New("application: resource not found")
	// ErrUnauthorized is returned when the acting actor lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrUnknownSortKey is returned for an unrecognised listing order.
	ErrUnknownSortKey = errors.New("application: unknown sort key")
	// ErrAlreadyExists is returned when a unique name is already taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrStoreFailure marks errors raised by the backing store rather than by business rules.
	ErrStoreFailure = errors.New("application: store failure")
)

// ValidationError captures field level validation issues that callers can surface to users.
// Kind is the sentinel the error matches with errors.Is.
type ValidationError struct {
	Kind        error
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	msg := "validation failed"
	if v.Kind != nil {
		msg = v.Kind.Error()
	}
	if len(v.FieldErrors) == 0 {
		return msg
	}

	fields := slices.Sorted(maps.Keys(v.FieldErrors))
	details := make([]string, 0, len(fields))
	for _, field := range fields {
		details = append(details, field+": "+v.FieldErrors[field])
	}
	return msg + " (" + strings.Join(details, "; ") + ")"
}

// Unwrap exposes Kind to errors.Is.
func (v *ValidationError) Unwrap() error {
	if v == nil {
		return nil
	}
	return v.Kind
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func newValidationError(kind error, field, message string) *ValidationError {
	vErr := &ValidationError{Kind: kind}
	vErr.add(field, message)
	return vErr
}

// ConflictError reports the reservation a candidate slot collided with.
type ConflictError struct {
	Resource Resource
	Existing Reservation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %q is already reserved from %s to %s",
		ErrBookingConflict,
		e.Resource.Name,
		e.Existing.Slot.Start.Format(TimestampLayout),
		e.Existing.Slot.End.Format(TimestampLayout),
	)
}

func (e *ConflictError) Unwrap() error {
	return ErrBookingConflict
}

// StoreError wraps a failure of the reservation store or resource catalog.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreFailure, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches ErrStoreFailure.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}

// mapStoreError translates repository errors into application errors. Errors
// that are not business-rule failures are wrapped in a StoreError.
func mapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrResourceNotFound):
		return ErrResourceNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, ErrBookingConflict), errors.Is(err, persistence.ErrOverlap):
		return fmt.Errorf("%w: %v", ErrBookingConflict, err)
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return ErrResourceNotFound
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return err
	}
	var sErr *StoreError
	if errors.As(err, &sErr) {
		return err
	}

	return &StoreError{Op: op, Err: err}
}
