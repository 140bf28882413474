package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/coworking-booking/internal/application"
	"github.com/example/coworking-booking/internal/scheduler"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator(ResourceIDPrefix),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator(ResourceIDPrefix)
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// ReservationServiceDeps captures dependencies for constructing a reservation service.
type ReservationServiceDeps struct {
	Store     application.ReservationStore
	Catalog   application.ResourceCatalog
	Locker    application.ResourceLocker
	Publisher application.EventPublisher
	Location  *time.Location
	Window    *scheduler.BusinessWindow
	Logger    *slog.Logger
}

// NewReservationService builds a reservation service using the supplied
// dependencies and the factory clock.
func (f *ServiceFactory) NewReservationService(deps ReservationServiceDeps) *application.ReservationService {
	opts := []application.ReservationServiceOption{
		application.WithClock(f.Clock.NowFunc()),
		application.WithLogger(deps.Logger),
		application.WithLocation(deps.Location),
	}
	if deps.Locker != nil {
		opts = append(opts, application.WithLocker(deps.Locker))
	}
	if deps.Publisher != nil {
		opts = append(opts, application.WithPublisher(deps.Publisher))
	}
	if deps.Window != nil {
		opts = append(opts, application.WithBusinessWindow(*deps.Window))
	}
	return application.NewReservationService(deps.Store, deps.Catalog, opts...)
}

// ResourceServiceDeps captures dependencies for constructing a resource service.
type ResourceServiceDeps struct {
	Resources   application.ResourceRepository
	IDGenerator func() string
	Publisher   application.EventPublisher
	Logger      *slog.Logger
}

// NewResourceService builds a resource service using the supplied dependencies.
func (f *ServiceFactory) NewResourceService(deps ResourceServiceDeps) *application.ResourceService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	svc := application.NewResourceServiceWithLogger(deps.Resources, idGen, deps.Logger)
	svc.SetPublisher(deps.Publisher)
	return svc
}

// NewActorService builds an actor service.
func (f *ServiceFactory) NewActorService(actors application.ActorRepository, logger *slog.Logger) *application.ActorService {
	return application.NewActorServiceWithLogger(actors, logger)
}
