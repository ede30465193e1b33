package email

import (
	"bytes"
	"fmt"
	"time"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/authweb/internal/domain"
)

const resetSubject = "Password Reset Request"

// NewPasswordResetMessage composes the email that carries a reset link.
// The link is valid for ttl.
func NewPasswordResetMessage(to, link string, ttl time.Duration) (domain.EmailMessage, error) {
	text := fmt.Sprintf("You are receiving this because you (or someone else) have requested the reset of the password for your account.\n\n"+
		"Please click on the following link, or paste this into your browser to complete the process:\n\n"+
		"%s\n\n"+
		"This link expires in %s.\n\n"+
		"If you did not request this, please ignore this email and your password will remain unchanged.\n", link, humanDuration(ttl))

	var html bytes.Buffer
	if err := resetEmailBody(link, ttl).Render(&html); err != nil {
		return domain.EmailMessage{}, fmt.Errorf("failed to render reset email: %w", err)
	}

	return domain.EmailMessage{
		To:       to,
		Subject:  resetSubject,
		TextBody: text,
		HTMLBody: html.String(),
	}, nil
}

func resetEmailBody(link string, ttl time.Duration) g.Node {
	return h.Doctype(
		h.HTML(
			h.Body(
				h.P(g.Text("You are receiving this because you (or someone else) have requested the reset of the password for your account.")),
				h.P(g.Text("Please click on the following link, or paste it into your browser to complete the process:")),
				h.P(h.A(h.Href(link), g.Text(link))),
				h.P(g.Textf("This link expires in %s.", humanDuration(ttl))),
				h.P(g.Text("If you did not request this, please ignore this email and your password will remain unchanged.")),
			),
		),
	)
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
