package kafka

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/coworking-booking/internal/application"
)

// Envelope is the JSON body of every published event.
type Envelope struct {
	ID         string            `json:"id"`
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId"`
	Topic      string            `json:"topic"`
	OccurredAt time.Time         `json:"occurredAt"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       EventData         `json:"data"`
}

// EventData carries the event payload.
type EventData struct {
	ReservationID string     `json:"reservationId,omitempty"`
	ResourceName  string     `json:"resourceName,omitempty"`
	ActorID       string     `json:"actorId,omitempty"`
	Start         *time.Time `json:"start,omitempty"`
	End           *time.Time `json:"end,omitempty"`
}

// NewEnvelope wraps event. Entity and action come from the dotted event type.
func NewEnvelope(event application.Event) Envelope {
	entity, action, _ := strings.Cut(string(event.Type), ".")
	env := Envelope{
		ID:         uuid.NewString(),
		Entity:     entity,
		Action:     action,
		ResourceID: event.ResourceID,
		Topic:      string(event.Type),
		OccurredAt: event.OccurredAt.UTC(),
		Data: EventData{
			ReservationID: event.ReservationID,
			ResourceName:  event.ResourceName,
			ActorID:       event.ActorID,
		},
	}
	if !event.Start.IsZero() {
		start := event.Start.UTC()
		env.Data.Start = &start
	}
	if !event.End.IsZero() {
		end := event.End.UTC()
		env.Data.End = &end
	}
	return env
}
