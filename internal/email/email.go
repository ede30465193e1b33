package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/nfrund/authweb/internal/domain"
)

// --- LogSender (for development) ---

// LogSender prints emails to the log instead of sending them.
type LogSender struct {
	senderAddress string
}

// NewLogSender creates a LogSender that reports sender as the From address.
func NewLogSender(sender string) *LogSender {
	return &LogSender{senderAddress: sender}
}

// Send logs the email content.
func (s *LogSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	slog.InfoContext(ctx, "Email sent (logged)",
		"from", s.senderAddress,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.TextBody,
	)
	return nil
}

// --- ResendSender ---

const resendEndpoint = "https://api.resend.com/emails"

// ResendSender sends emails using the Resend API.
type ResendSender struct {
	apiKey        string
	senderAddress string
	endpoint      string
	client        *http.Client
}

// NewResendSender creates a ResendSender using the public Resend endpoint.
func NewResendSender(apiKey, sender string) *ResendSender {
	return &ResendSender{
		apiKey:        apiKey,
		senderAddress: sender,
		endpoint:      resendEndpoint,
		client:        &http.Client{},
	}
}

type resendPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text,omitempty"`
}

// Send dispatches an email using the Resend API.
func (s *ResendSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	sender := s.senderAddress
	if sender == "" {
		sender = "Auth <onboarding@resend.dev>" // Default sender for testing with Resend
	}

	body, err := json.Marshal(resendPayload{
		From:    sender,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTMLBody,
		Text:    msg.TextBody,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend API returned an error: status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	slog.InfoContext(ctx, "Successfully sent email via Resend", "to", msg.To, "subject", msg.Subject)
	return nil
}
