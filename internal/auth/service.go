// Package auth implements account sign-up, login and the password reset
// flow on top of a domain.UserRepository.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/nfrund/authweb/internal/domain"
	"github.com/nfrund/authweb/internal/email"
	"github.com/nfrund/authweb/internal/pubsub"
)

// DefaultResetTokenTTL is how long an emailed reset link stays valid.
const DefaultResetTokenTTL = time.Hour

// SignUpInput carries the fields of the sign-up form.
type SignUpInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Options tunes a Service. Zero values select defaults.
type Options struct {
	// BaseURL is the externally visible origin used to build reset links.
	BaseURL     string
	TokenTTL    time.Duration
	MailTimeout time.Duration
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Service holds the account business rules. It is safe for concurrent use.
type Service struct {
	users       domain.UserRepository
	hasher      PasswordHasher
	mailer      domain.EmailSender
	events      pubsub.Publisher
	baseURL     string
	tokenTTL    time.Duration
	mailTimeout time.Duration
	now         func() time.Time
}

// NewService wires a Service. events may be nil, in which case no account
// events are published.
func NewService(users domain.UserRepository, hasher PasswordHasher, mailer domain.EmailSender, events pubsub.Publisher, opts Options) *Service {
	s := &Service{
		users:       users,
		hasher:      hasher,
		mailer:      mailer,
		events:      events,
		baseURL:     opts.BaseURL,
		tokenTTL:    opts.TokenTTL,
		mailTimeout: opts.MailTimeout,
		now:         opts.Clock,
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = DefaultResetTokenTTL
	}
	if s.mailTimeout <= 0 {
		s.mailTimeout = 10 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SignUp creates an account. The password is stored only as a hash.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*domain.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	// The unique email index still guards against a concurrent sign-up
	// slipping in between the lookup and the insert.
	user, err := s.users.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.InfoContext(ctx, "User signed up", "email", user.Email, "user_id", user.Key())
	s.publish(ctx, pubsub.UserSignedUp, user.Key(), user.Email, "")
	return user, nil
}

// LogIn checks an email and password pair. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) LogIn(ctx context.Context, emailAddr, password string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		s.publish(ctx, pubsub.UserLoginFailed, "", emailAddr, "unknown email")
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.publish(ctx, pubsub.UserLoginFailed, user.Key(), emailAddr, "wrong password")
		return nil, domain.ErrInvalidCredentials
	}

	s.publish(ctx, pubsub.UserLoggedIn, user.Key(), user.Email, "")
	return user, nil
}

// LoggedOut records that user ended their session. It is a no-op for nil.
func (s *Service) LoggedOut(ctx context.Context, user *domain.User) {
	if user == nil {
		return
	}
	s.publish(ctx, pubsub.UserLoggedOut, user.Key(), user.Email, "")
}

// RequestPasswordReset issues a fresh reset token for the account with
// emailAddr and mails a link carrying it. Any earlier token is replaced.
//
// It returns ErrNotFound for unknown emails. When the mail transport fails
// the token stays stored and the error wraps ErrEmailDelivery.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return domain.ErrNotFound
	}

	token, digest, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, user.ID, digest, s.now().Add(s.tokenTTL)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	msg, err := email.NewPasswordResetMessage(user.Email, s.ResetLink(token), s.tokenTTL)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()
	if err := s.mailer.Send(sendCtx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to send password reset email", "email", user.Email, "error", err)
		s.publish(ctx, pubsub.ResetEmailFailed, user.Key(), user.Email, err.Error())
		return fmt.Errorf("%w: %v", domain.ErrEmailDelivery, err)
	}

	slog.InfoContext(ctx, "Password reset email sent", "email", user.Email)
	s.publish(ctx, pubsub.ResetRequested, user.Key(), user.Email, "")
	return nil
}

// ValidateResetToken returns the user holding token if it has not expired.
func (s *Service) ValidateResetToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidResetToken
	}
	user, err := s.users.FindByResetToken(ctx, digestToken(token), s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidResetToken
	}
	return user, nil
}

// ResetPassword replaces the password of the user holding token and
// invalidates the token. The token is checked before the confirmation so an
// expired link is reported as such even when the passwords differ.
func (s *Service) ResetPassword(ctx context.Context, token, password, confirm string) (*domain.User, error) {
	if _, err := s.ValidateResetToken(ctx, token); err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, domain.ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	// Re-checked atomically, since the token may have expired or been used
	// by a concurrent request since validation.
	user, err := s.users.ConsumeResetToken(ctx, digestToken(token), hash, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidResetToken
	}

	slog.InfoContext(ctx, "Password reset", "email", user.Email, "user_id", user.Key())
	s.publish(ctx, pubsub.PasswordReset, user.Key(), user.Email, "")
	return user, nil
}

// PruneExpiredTokens clears reset tokens that can no longer be used.
func (s *Service) PruneExpiredTokens(ctx context.Context) (int, error) {
	n, err := s.users.ClearExpiredResetTokens(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to prune reset tokens: %w", err)
	}
	return n, nil
}

// ResetLink builds the absolute URL a user follows to choose a new password.
func (s *Service) ResetLink(token string) string {
	return s.baseURL + "/reset-password/" + url.PathEscape(token)
}

func (s *Service) publish(ctx context.Context, event pubsub.Event[pubsub.AccountEvent], userID, emailAddr, detail string) {
	if s.events == nil {
		return
	}
	payload := pubsub.AccountEvent{Email: emailAddr, OccurredAt: s.now().UTC(), Detail: detail}
	if err := pubsub.Publish(ctx, s.events, event, userID, payload); err != nil {
		slog.WarnContext(ctx, "Failed to publish account event", "topic", event.Name(), "error", err)
	}
}
