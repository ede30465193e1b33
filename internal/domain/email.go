package domain

import "context"

// EmailSender defines the interface for sending emails. This allows for
// different implementations (e.g., SMTP relay, Resend, logging).
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a single outgoing email with both an HTML and a plain text body.
type EmailMessage struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}
