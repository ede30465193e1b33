// Package audit records account lifecycle events as structured log lines
// and metrics.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/authweb/internal/metrics"
	"github.com/nfrund/authweb/internal/pubsub"
)

// Subscriber consumes every account event from the bus.
type Subscriber struct {
	sub     pubsub.Subscriber
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewSubscriber creates an audit Subscriber. m may be nil to skip metrics.
func NewSubscriber(sub pubsub.Subscriber, m *metrics.Metrics) *Subscriber {
	return &Subscriber{
		sub:     sub,
		metrics: m,
		logger:  slog.Default().With("component", "audit"),
	}
}

// Start subscribes to all account topics. Handlers run until ctx is canceled.
func (s *Subscriber) Start(ctx context.Context) error {
	for _, event := range pubsub.AccountEvents {
		if err := s.sub.Subscribe(ctx, event.Name(), s.handler(event)); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", event.Name(), err)
		}
	}
	s.logger.Info("Audit subscriber started", "topics", len(pubsub.AccountEvents))
	return nil
}

func (s *Subscriber) handler(event pubsub.Event[pubsub.AccountEvent]) pubsub.Handler {
	return func(ctx context.Context, msg pubsub.Message) error {
		payload, err := event.Decode(msg)
		if err != nil {
			return err
		}

		level := slog.LevelInfo
		if event.Name() == pubsub.UserLoginFailed.Name() || event.Name() == pubsub.ResetEmailFailed.Name() {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, event.Description(),
			"event", event.Name(),
			"user_id", msg.UserID,
			"email", payload.Email,
			"occurred_at", payload.OccurredAt,
			"detail", payload.Detail,
		)

		if s.metrics != nil {
			s.metrics.RecordAccountEvent(event.Name())
		}
		return nil
	}
}
