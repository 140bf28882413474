package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/example/coworking-booking/internal/application"
)

type messageSink interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error
}

// EventPublisher adapts a Producer to application.EventPublisher. Events are
// keyed by resource ID so one resource's history stays ordered.
type EventPublisher struct {
	sink messageSink
}

// NewEventPublisher returns a publisher writing through producer.
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{sink: producer}
}

// Publish encodes event as an Envelope and queues it.
func (p *EventPublisher) Publish(ctx context.Context, event application.Event) error {
	env := NewEnvelope(event)
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	return p.sink.Publish(ctx, []byte(event.ResourceID), value,
		kafka.Header{Key: "event-type", Value: []byte(event.Type)},
		kafka.Header{Key: "event-id", Value: []byte(env.ID)},
	)
}
