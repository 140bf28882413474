package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig wires handlers into the router. Nil handlers leave their
// routes unregistered.
type RouterConfig struct {
	Reservations *ReservationHandler
	Resources    *ResourceHandler
	// Authenticate guards every route except /healthz.
	Authenticate func(http.Handler) http.Handler
	// Health reports whether backing services are reachable.
	Health  func(ctx context.Context) error
	Logger  *slog.Logger
	Timeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(cfg.Logger), middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", healthHandler(cfg.Health, newResponder(cfg.Logger)))

	r.Group(func(r chi.Router) {
		if cfg.Authenticate != nil {
			r.Use(cfg.Authenticate)
		}

		if h := cfg.Reservations; h != nil {
			r.Post("/reservations", h.Create)
			r.Get("/reservations", h.List)
			r.Get("/reservations/mine", h.ListMine)
			r.Delete("/reservations/{id}", h.Cancel)
			r.Get("/availability", h.Availability)
		}

		if h := cfg.Resources; h != nil {
			r.Get("/resources", h.List)
			r.Post("/resources", h.Create)
			r.Put("/resources/{name}", h.Update)
			r.Delete("/resources/{name}", h.Delete)
		}
	})

	return r
}

func healthHandler(check func(ctx context.Context) error, responder responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				responder.writeError(r.Context(), w, http.StatusServiceUnavailable, err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
