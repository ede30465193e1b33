// Package pubsub carries account lifecycle events between the auth service
// and in-process consumers such as the audit log.
package pubsub

import (
	"context"
)

// Message is the structure passed between components on the bus.
type Message struct {
	// Topic identifies the event (e.g., "account.signed_up").
	Topic string
	// UserID identifies the user the event is about, when known.
	UserID string
	// Payload contains the JSON encoded event body.
	Payload []byte
	// Metadata can contain arbitrary key-value pairs for context (e.g., request IDs).
	Metadata map[string]string
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the Pub/Sub system.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the Pub/Sub system.
type Subscriber interface {
	// Subscribe starts listening to the given topic, processing messages with the handler.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
