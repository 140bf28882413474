package application

import (
	"context"

	"github.com/example/coworking-booking/internal/scheduler"
)

// ReservationStore persists reservations. Implementations return
// ErrNotFound (or persistence.ErrNotFound) for unknown IDs.
type ReservationStore interface {
	SaveReservation(ctx context.Context, resource Resource, actor Actor, slot scheduler.TimeSlot) (string, error)
	ListReservations(ctx context.Context) ([]Reservation, error)
	ListReservationsByActor(ctx context.Context, actor Actor) ([]Reservation, error)
	GetReservation(ctx context.Context, id string) (Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

// ResourceCatalog resolves resources by name. Deleting a resource removes its
// reservations as well.
type ResourceCatalog interface {
	FindResourceByName(ctx context.Context, name string) (Resource, error)
	ListResources(ctx context.Context) ([]Resource, error)
	DeleteResourceByName(ctx context.Context, name string) error
}

// ResourceRepository extends the catalog with write operations.
type ResourceRepository interface {
	ResourceCatalog
	CreateResource(ctx context.Context, resource Resource) (Resource, error)
	UpdateResource(ctx context.Context, resource Resource) (Resource, error)
}

// ActorRepository stores actors.
type ActorRepository interface {
	GetActor(ctx context.Context, id string) (Actor, error)
	GetActorByName(ctx context.Context, name string) (Actor, error)
	CreateActor(ctx context.Context, actor Actor) (Actor, error)
}
