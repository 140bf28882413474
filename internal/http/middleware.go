package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/coworking-booking/internal/application"
	"github.com/example/coworking-booking/internal/auth"
)

type actorProvisioner interface {
	EnsureActor(ctx context.Context, actor application.Actor) (application.Actor, error)
}

// RequireActor authenticates the bearer token and stores the resulting actor
// in the request context. Actors are provisioned on first sight.
func RequireActor(validator auth.TokenValidator, actors actorProvisioner, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := auth.ExtractBearerToken(r)
			if token == "" {
				responder.writeError(ctx, w, http.StatusUnauthorized, errMissingToken)
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				responder.loggerFor(ctx).WarnContext(ctx, "token rejected", "error", err)
				responder.writeError(ctx, w, http.StatusUnauthorized, errInvalidToken)
				return
			}
			actor, err := claims.Actor()
			if err != nil {
				responder.loggerFor(ctx).WarnContext(ctx, "token carries an invalid actor", "error", err)
				responder.writeError(ctx, w, http.StatusUnauthorized, errInvalidToken)
				return
			}

			if actors != nil {
				actor, err = actors.EnsureActor(ctx, actor)
				if err != nil {
					responder.loggerFor(ctx).WarnContext(ctx, "actor provisioning failed", "error", err, "error_kind", application.ErrorKind(err))
					responder.handleServiceError(ctx, w, err)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(ContextWithActor(ctx, actor)))
		})
	}
}

// RequestLogger attaches a logger carrying the chi request ID, method and path
// to the request context and logs each completed request with its status.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.InfoContext(ctx, "request completed",
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
