package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/coworking-booking/internal/persistence"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{Kind: ErrIncompleteRequest, FieldErrors: map[string]string{"start": "start is required", "end": "end is required"}}
	want := "application: incomplete request (end: end is required; start: start is required)"
	if got := withFields.Error(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if err := (&ValidationError{}).HasErrors(); err {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	if err := (&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors(); !err {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_Add(t *testing.T) {
	t.Parallel()

	vErr := &ValidationError{}
	vErr.add("resource", "resource is required")
	vErr.add("start", "start is required")
	if len(vErr.FieldErrors) != 2 || vErr.FieldErrors["start"] != "start is required" {
		t.Fatalf("expected add to populate map, got %v", vErr.FieldErrors)
	}

	vErr.add("start", "start must use YYYY-MM-DD HH:MM")
	if got := vErr.FieldErrors["start"]; got != "start must use YYYY-MM-DD HH:MM" {
		t.Fatalf("expected later message to replace earlier one, got %q", got)
	}
}

func TestValidationError_MatchesKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", newValidationError(ErrMalformedTimestamp, "start", "bad"))
	if !errors.Is(err, ErrMalformedTimestamp) {
		t.Fatalf("expected errors.Is to match ErrMalformedTimestamp, got %v", err)
	}
	if errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected no match for a different kind")
	}
}

func TestConflictError(t *testing.T) {
	t.Parallel()

	err := &ConflictError{
		Resource: deskA,
		Existing: Reservation{ID: "rsv-1", Resource: deskA, Slot: slotOf(9, 30, 11, 30)},
	}
	if !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("expected ConflictError to match ErrBookingConflict")
	}
	want := `application: booking conflict: "Desk A" is already reserved from 2024-06-22 09:30 to 2024-06-22 11:30`
	if got := err.Error(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := &StoreError{Op: "save reservation", Err: cause}
	if !errors.Is(err, ErrStoreFailure) {
		t.Fatalf("expected StoreError to match ErrStoreFailure")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected StoreError to unwrap to its cause")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("expected StoreError not to match ErrNotFound")
	}
}

func TestMapStoreError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"persistence not found", persistence.ErrNotFound, ErrNotFound},
		{"wrapped duplicate", fmt.Errorf("sqlite: %w", persistence.ErrDuplicate), ErrAlreadyExists},
		{"overlap constraint", persistence.ErrOverlap, ErrBookingConflict},
		{"foreign key", persistence.ErrForeignKeyViolation, ErrResourceNotFound},
		{"application sentinel passes through", ErrUnauthorized, ErrUnauthorized},
		{"unknown failure", errors.New("connection reset"), ErrStoreFailure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mapStoreError("op", tc.in)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
