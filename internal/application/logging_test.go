package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{newValidationError(ErrMalformedTimestamp, "start", "bad"), "malformed_timestamp"},
		{newValidationError(ErrInvalidInterval, "end", "bad"), "invalid_interval"},
		{&ConflictError{Resource: deskA}, "booking_conflict"},
		{newValidationError(ErrIncompleteRequest, "resource", "missing"), "incomplete_request"},
		{ErrNotFound, "not_found"},
		{ErrResourceNotFound, "resource_not_found"},
		{ErrUnauthorized, "unauthorized"},
		{newValidationError(ErrUnknownSortKey, "sort", "bad"), "unknown_sort_key"},
		{ErrAlreadyExists, "already_exists"},
		{&StoreError{Op: "list", Err: context.DeadlineExceeded}, "store_failure"},
		{&ValidationError{FieldErrors: map[string]string{"x": "y"}}, "validation"},
		{errors.New("boom"), "unexpected"},
	}

	for _, tc := range tests {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v): expected %q, got %q", tc.err, tc.want, got)
		}
	}
}
