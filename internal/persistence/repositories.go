package persistence

import "context"

// ActorRepository stores actors.
type ActorRepository interface {
	CreateActor(ctx context.Context, actor Actor) error
	GetActor(ctx context.Context, id string) (Actor, error)
	GetActorByName(ctx context.Context, name string) (Actor, error)
}

// ResourceRepository stores the resource catalog. Deleting a resource removes
// its reservations as well.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource Resource) error
	UpdateResource(ctx context.Context, resource Resource) error
	GetResource(ctx context.Context, id string) (Resource, error)
	GetResourceByName(ctx context.Context, name string) (Resource, error)
	ListResources(ctx context.Context) ([]Resource, error)
	DeleteResourceByName(ctx context.Context, name string) error
}

// ReservationFilter narrows reservation queries. Empty fields match everything.
type ReservationFilter struct {
	ActorID    string
	ResourceID string
}

// ReservationRepository stores reservations. Listings are returned in
// insertion order.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

// Store bundles every repository a backend provides.
type Store interface {
	ActorRepository
	ResourceRepository
	ReservationRepository
	Migrate(ctx context.Context) error
	Close() error
}
