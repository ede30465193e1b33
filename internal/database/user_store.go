package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/nfrund/authweb/internal/config"
	"github.com/nfrund/authweb/internal/domain"
)

// UserStore is the SurrealDB implementation of domain.UserRepository.
type UserStore struct {
	db             *surrealdb.DB
	queryTimeout   time.Duration
	executeTimeout time.Duration
}

var _ domain.UserRepository = (*UserStore)(nil)

// NewUserStore creates a UserStore using the timeouts from cfg.
func NewUserStore(db *surrealdb.DB, cfg config.Provider) *UserStore {
	return &UserStore{
		db:             db,
		queryTimeout:   cfg.GetDBQueryTimeout(),
		executeTimeout: cfg.GetDBExecuteTimeout(),
	}
}

// Create inserts user. A duplicate email is reported as
// domain.ErrUserAlreadyExists.
func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	query := "CREATE user CONTENT $data"
	params := map[string]any{
		"data": map[string]any{
			"name":     user.Name,
			"email":    user.Email,
			"password": user.PasswordHash,
		},
	}

	created, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("failed to create user: no record returned")
	}
	return created, nil
}

// FindByEmail queries for a single user by their email address.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	user, err := QueryOne[domain.User](ctx, s.db, "SELECT * FROM user WHERE email = $email", map[string]any{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByKey loads a user by record key, as stored in the session.
func (s *UserStore) FindByKey(ctx context.Context, key string) (*domain.User, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := getTimeoutFromContext(ctx, s.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	user, err := QueryOne[domain.User](ctx, s.db, "SELECT * FROM $id", map[string]any{"id": domain.NewUserRecordID(key)})
	if err != nil {
		return nil, fmt.Errorf("failed to find user by key: %w", err)
	}
	return user, nil
}

// SetResetToken overwrites any previous token on the user.
func (s *UserStore) SetResetToken(ctx context.Context, id *surrealmodels.RecordID, digest string, expiresAt time.Time) error {
	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	query := "UPDATE $id SET resetToken = $digest, resetTokenExpires = $expires"
	params := map[string]any{
		"id":      id,
		"digest":  digest,
		"expires": surrealmodels.CustomDateTime{Time: expiresAt.UTC()},
	}
	if err := Execute(ctx, s.db, query, params); err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	return nil
}

func (s *UserStore) FindByResetToken(ctx context.Context, digest string, now time.Time) (*domain.User, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	query := "SELECT * FROM user WHERE resetToken = $digest AND resetTokenExpires > $now"
	params := map[string]any{
		"digest": digest,
		"now":    surrealmodels.CustomDateTime{Time: now.UTC()},
	}
	user, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by reset token: %w", err)
	}
	return user, nil
}

// ConsumeResetToken sets the new hash and clears the token in one
// conditional UPDATE, so two concurrent resets cannot both succeed.
func (s *UserStore) ConsumeResetToken(ctx context.Context, digest, passwordHash string, now time.Time) (*domain.User, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	query := `
		UPDATE user SET
			password = $password,
			resetToken = NONE,
			resetTokenExpires = NONE
		WHERE resetToken = $digest AND resetTokenExpires > $now
		RETURN AFTER
	`
	params := map[string]any{
		"digest":   digest,
		"password": passwordHash,
		"now":      surrealmodels.CustomDateTime{Time: now.UTC()},
	}
	user, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}
	return user, nil
}

func (s *UserStore) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	query := `
		UPDATE user SET
			resetToken = NONE,
			resetTokenExpires = NONE
		WHERE resetToken != NONE AND resetTokenExpires <= $now
		RETURN AFTER
	`
	users, err := Query[domain.User](ctx, s.db, query, map[string]any{"now": surrealmodels.CustomDateTime{Time: now.UTC()}})
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", err)
	}
	return len(users), nil
}
