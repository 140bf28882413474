package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/coworking-booking/internal/application"
)

var (
	errBadRequestBody  = errors.New("request body is not valid JSON")
	errMissingToken    = errors.New("a bearer token is required")
	errInvalidToken    = errors.New("the bearer token is invalid or expired")
	errMissingDate     = errors.New("date query parameter is required")
	errMissingActor    = errors.New("no authenticated actor")
	errMissingResource = errors.New("resource name is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request rejected", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps application errors to status codes. The error kind
// is echoed so clients can branch without parsing messages.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	resp := errorResponse{ErrorCode: application.ErrorKind(err), Message: err.Error()}
	var vErr *application.ValidationError
	if errors.As(err, &vErr) && vErr.HasErrors() {
		resp.Errors = vErr.FieldErrors
		if vErr.Kind != nil {
			resp.Message = vErr.Kind.Error()
		}
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		resp.Message = http.StatusText(status)
	}
	r.writeJSON(ctx, w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrMalformedTimestamp),
		errors.Is(err, application.ErrInvalidInterval),
		errors.Is(err, application.ErrIncompleteRequest),
		errors.Is(err, application.ErrUnknownSortKey):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrBookingConflict),
		errors.Is(err, application.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, application.ErrNotFound),
		errors.Is(err, application.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, application.ErrStoreFailure):
		return http.StatusServiceUnavailable
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
