package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event[T] wraps a topic name and provides type-safe publishing and decoding.
type Event[T any] struct {
	topicName   string
	description string
}

// NewEvent creates a typed event bound to a topic name.
func NewEvent[T any](name, description string) Event[T] {
	return Event[T]{topicName: name, description: description}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topicName
}

// Description returns the human readable description of the event.
func (e Event[T]) Description() string {
	return e.description
}

// Decode unmarshals a received message into the event's payload type.
func (e Event[T]) Decode(msg Message) (T, error) {
	var payload T
	if msg.Topic != "" && msg.Topic != e.topicName {
		return payload, fmt.Errorf("message topic %q does not match event %q", msg.Topic, e.topicName)
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to decode %s payload: %w", e.topicName, err)
	}
	return payload, nil
}

// Publish sends a typed event. The compiler ensures 'payload' matches 'T'.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], userID string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		UserID:  userID,
		Payload: data,
	})
}
