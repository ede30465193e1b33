package email

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/nfrund/authweb/internal/domain"
)

// defaultSMTPTimeout bounds a send whose context carries no deadline.
const defaultSMTPTimeout = 15 * time.Second

// SMTPSender delivers mail through an SMTP relay such as Gmail.
type SMTPSender struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPSender creates a sender for host:port. When user is empty the
// session is unauthenticated.
func NewSMTPSender(host, port, user, pass, from string) (*SMTPSender, error) {
	p, err := strconv.Atoi(port)
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid SMTP_PORT %q", port)
	}
	if from == "" {
		from = user
	}
	return &SMTPSender{host: host, port: p, user: user, pass: pass, from: from}, nil
}

// Send delivers msg in a single SMTP transaction. STARTTLS is used when the
// relay offers it. The context deadline bounds the whole conversation.
func (s *SMTPSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	m, err := buildMessage(s.from, msg, time.Now())
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.host, s.clientOptions(ctx)...)
	if err != nil {
		return fmt.Errorf("failed to configure smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email via smtp relay %s: %w", s.host, err)
	}

	slog.InfoContext(ctx, "Successfully sent email via SMTP", "to", msg.To, "subject", msg.Subject, "relay", s.host)
	return nil
}

func (s *SMTPSender) clientOptions(ctx context.Context) []mail.Option {
	timeout := defaultSMTPTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			timeout = time.Millisecond
		}
	}

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTimeout(timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.user),
			mail.WithPassword(s.pass),
		)
	}
	return opts
}

// buildMessage renders msg as a MIME message, multipart/alternative when
// both bodies are present.
func buildMessage(from string, msg domain.EmailMessage, date time.Time) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(date)

	switch {
	case msg.TextBody != "":
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
		if msg.HTMLBody != "" {
			m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
		}
	case msg.HTMLBody != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	default:
		return nil, fmt.Errorf("email to %s has no body", msg.To)
	}
	return m, nil
}
