package application

import (
	"context"
	"time"
)

// EventType names a reservation lifecycle event.
type EventType string

const (
	EventReservationCreated   EventType = "reservation.created"
	EventReservationCancelled EventType = "reservation.cancelled"
	EventResourceCreated      EventType = "resource.created"
	EventResourceUpdated      EventType = "resource.updated"
	EventResourceRemoved      EventType = "resource.removed"
)

// Event records a committed change for auditing.
type Event struct {
	Type          EventType
	ReservationID string
	ResourceID    string
	ResourceName  string
	ActorID       string
	Start         time.Time
	End           time.Time
	OccurredAt    time.Time
}

// EventPublisher delivers events after the change they describe has been
// committed. Publishing failures never undo the change.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
