package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/coworking-booking/internal/application"
	"github.com/example/coworking-booking/internal/auth"
	"github.com/example/coworking-booking/internal/config"
	httptransport "github.com/example/coworking-booking/internal/http"
	"github.com/example/coworking-booking/internal/kafka"
	"github.com/example/coworking-booking/internal/logging"
	"github.com/example/coworking-booking/internal/persistence"
	"github.com/example/coworking-booking/internal/persistence/memory"
	"github.com/example/coworking-booking/internal/persistence/postgres"
	"github.com/example/coworking-booking/internal/persistence/sqlite"
	"github.com/example/coworking-booking/internal/redisx"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Overload()

	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(runToken(os.Args[2:], os.Stdout, os.Stderr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		slog.Error("booking service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logOutput io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(logOutput, logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr, "store", cfg.StoreDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// App holds the wired HTTP handler and everything that must be released on
// shutdown.
type App struct {
	Handler http.Handler

	closers []func()
}

// Close releases resources in reverse acquisition order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{}
	ready := false
	defer func() {
		if !ready {
			app.Close()
		}
	}()

	store, health, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	})

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	locker, err := newLocker(ctx, cfg, logger, app)
	if err != nil {
		return nil, err
	}
	publisher := newPublisher(ctx, cfg, logger, app)

	ids := uuid.NewString
	reservationStore := newReservationStoreAdapter(store, ids, cfg.Location)
	resources := newResourceRepositoryAdapter(store)
	actors := newActorRepositoryAdapter(store)

	reservationService := application.NewReservationService(reservationStore, resources,
		application.WithLogger(logger),
		application.WithLocker(locker),
		application.WithPublisher(publisher),
		application.WithLocation(cfg.Location),
	)
	resourceService := application.NewResourceServiceWithLogger(resources, ids, logger)
	resourceService.SetPublisher(publisher)
	actorService := application.NewActorServiceWithLogger(actors, logger)

	app.Handler = httptransport.NewRouter(httptransport.RouterConfig{
		Reservations: httptransport.NewReservationHandler(reservationService, logger),
		Resources:    httptransport.NewResourceHandler(resourceService, reservationService, logger),
		Authenticate: httptransport.RequireActor(auth.NewJWTValidator(cfg.JWTSecret), actorService, logger),
		Health:       health,
		Logger:       logger,
	})
	ready = true
	return app, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Store, func(context.Context) error, error) {
	var store persistence.Store
	switch cfg.StoreDriver {
	case config.DriverMemory:
		store = memory.Open()
	case config.DriverPostgres:
		storage, err := postgres.Open(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		store = storage
	default:
		storage, err := sqlite.OpenWithConfig(sqlite.DefaultConfig(cfg.SQLiteDSN), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		store = storage
	}

	var health func(context.Context) error
	if p, ok := store.(pinger); ok {
		health = p.Ping
	}
	return store, health, nil
}

func newLocker(ctx context.Context, cfg config.Config, logger *slog.Logger, app *App) (application.ResourceLocker, error) {
	if cfg.RedisAddr == "" {
		return application.NewKeyedMutex(), nil
	}

	rdb := redisx.New(cfg.RedisAddr)
	app.closers = append(app.closers, func() { _ = rdb.Close() })
	if err := redisx.Ping(ctx, rdb); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("using redis resource lock", "addr", cfg.RedisAddr)
	return redisx.NewResourceLock(rdb,
		redisx.WithTTL(cfg.LockTTL),
		redisx.WithWait(cfg.LockWait),
		redisx.WithLogger(logger),
	), nil
}

func newPublisher(ctx context.Context, cfg config.Config, logger *slog.Logger, app *App) application.EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		return logPublisher{logger: logger}
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 1024, logger)
	producer.Start(ctx)
	app.closers = append(app.closers, func() {
		producer.Close()
		producer.WaitClosed()
	})
	logger.Info("publishing events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return kafka.NewEventPublisher(producer)
}

// logPublisher records events in the service log when no broker is
// configured.
type logPublisher struct {
	logger *slog.Logger
}

func (p logPublisher) Publish(ctx context.Context, event application.Event) error {
	p.logger.InfoContext(ctx, "event",
		"event_type", string(event.Type),
		"reservation_id", event.ReservationID,
		"resource_id", event.ResourceID,
		"actor_id", event.ActorID,
	)
	return nil
}
