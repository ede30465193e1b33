package email

import (
	"fmt"

	"github.com/nfrund/authweb/internal/config"
	"github.com/nfrund/authweb/internal/domain"
)

// NewEmailService creates and returns an email sender based on the configuration.
func NewEmailService(cfg config.Provider) (domain.EmailSender, error) {
	switch cfg.GetEmailProvider() {
	case "smtp":
		if cfg.GetSMTPHost() == "" {
			return nil, fmt.Errorf("email provider is 'smtp' but SMTP_HOST is not set")
		}
		sender, err := NewSMTPSender(cfg.GetSMTPHost(), cfg.GetSMTPPort(), cfg.GetEmailUser(), cfg.GetEmailPass(), cfg.GetEmailSender())
		if err != nil {
			return nil, err
		}
		return sender, nil
	case "log":
		return NewLogSender(cfg.GetEmailSender()), nil
	case "resend":
		if cfg.GetEmailAPIKey() == "" {
			return nil, fmt.Errorf("email provider is 'resend' but EMAIL_API_KEY is not set")
		}
		return NewResendSender(cfg.GetEmailAPIKey(), cfg.GetEmailSender()), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.GetEmailProvider())
	}
}
