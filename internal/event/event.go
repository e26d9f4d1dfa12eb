package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/cursorkeep/internal/event/topic"
)

// Event is an immutable typed event envelope.
type Event[T any] struct {
	// Type is the hierarchical event type.
	Type topic.Topic

	// Payload contains the event-specific data.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata is attached to every event.
type Metadata struct {
	// ID uniquely identifies this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the publisher (e.g. "term", "config").
	Source string
}

// New creates an event with the given type and payload.
func New[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic returns the event's topic for type-erased handling.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Type
}

// EventMetadata returns the event's metadata for type-erased handling.
func (e Event[T]) EventMetadata() Metadata {
	return e.Metadata
}

// TopicProvider is implemented by anything the bus can route.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// Payload extracts a typed payload from a type-erased event.
func Payload[T any](ev any) (T, bool) {
	switch e := ev.(type) {
	case Event[T]:
		return e.Payload, true
	case *Event[T]:
		if e != nil {
			return e.Payload, true
		}
	}
	var zero T
	return zero, false
}
