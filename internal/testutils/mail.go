package testutils

import (
	"context"
	"regexp"
	"sync"

	"github.com/nfrund/authweb/internal/domain"
	"github.com/nfrund/authweb/internal/pubsub"
)

// RecordingSender captures outgoing emails instead of delivering them.
type RecordingSender struct {
	mu   sync.Mutex
	sent []domain.EmailMessage

	// Err, when set, is returned from Send and the message is not recorded.
	Err error
}

func (s *RecordingSender) Send(_ context.Context, msg domain.EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.sent = append(s.sent, msg)
	return nil
}

// Sent returns every recorded message.
func (s *RecordingSender) Sent() []domain.EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.EmailMessage(nil), s.sent...)
}

// Last returns the most recent message, or false when nothing was sent.
func (s *RecordingSender) Last() (domain.EmailMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return domain.EmailMessage{}, false
	}
	return s.sent[len(s.sent)-1], true
}

var resetLinkPattern = regexp.MustCompile(`/reset-password/([0-9a-f]+)`)

// ResetToken extracts the token from the last reset email, or "".
func (s *RecordingSender) ResetToken() string {
	msg, ok := s.Last()
	if !ok {
		return ""
	}
	m := resetLinkPattern.FindStringSubmatch(msg.TextBody)
	if m == nil {
		return ""
	}
	return m[1]
}

// RecordingPublisher captures published messages in order.
type RecordingPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

func (p *RecordingPublisher) Publish(_ context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Topics returns the topics of every published message, in order.
func (p *RecordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	topics := make([]string, len(p.messages))
	for i, m := range p.messages {
		topics[i] = m.Topic
	}
	return topics
}

// Messages returns a copy of every published message.
func (p *RecordingPublisher) Messages() []pubsub.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pubsub.Message(nil), p.messages...)
}
