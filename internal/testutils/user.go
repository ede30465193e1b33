package testutils

import (
	"context"
	"sync"
	"testing"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
	"golang.org/x/crypto/bcrypt"

	"github.com/nfrund/authweb/internal/domain"
)

// MemoryUserStore is an in-memory domain.UserRepository for unit tests.
// Returned users are copies, so callers cannot mutate stored state.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User

	// Err, when set, is returned by every method.
	Err error
}

// NewMemoryUserStore creates an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*domain.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserAlreadyExists
		}
	}
	stored := clone(user)
	if stored.ID == nil {
		stored.ID = NewTestRecordID(domain.UserTable)
	}
	s.users[stored.Key()] = stored
	return clone(stored), nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryUserStore) FindByKey(_ context.Context, key string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if u, ok := s.users[key]; ok {
		return clone(u), nil
	}
	return nil, nil
}

func (s *MemoryUserStore) SetResetToken(_ context.Context, id *surrealmodels.RecordID, digest string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[(&domain.User{ID: id}).Key()]
	if !ok {
		return domain.ErrNotFound
	}
	u.ResetToken = &digest
	u.ResetTokenExpires = &surrealmodels.CustomDateTime{Time: expiresAt}
	return nil
}

func (s *MemoryUserStore) FindByResetToken(_ context.Context, digest string, now time.Time) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if u := s.byToken(digest, now); u != nil {
		return clone(u), nil
	}
	return nil, nil
}

func (s *MemoryUserStore) ConsumeResetToken(_ context.Context, digest, passwordHash string, now time.Time) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u := s.byToken(digest, now)
	if u == nil {
		return nil, nil
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpires = nil
	return clone(u), nil
}

func (s *MemoryUserStore) ClearExpiredResetTokens(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	n := 0
	for _, u := range s.users {
		if u.ResetToken != nil && !u.HasActiveResetToken(now) {
			u.ResetToken = nil
			u.ResetTokenExpires = nil
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored users.
func (s *MemoryUserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Get returns a copy of the stored user with the given email, or nil.
func (s *MemoryUserStore) Get(email string) *domain.User {
	u, _ := s.FindByEmail(context.Background(), email)
	return u
}

func (s *MemoryUserStore) byToken(digest string, now time.Time) *domain.User {
	for _, u := range s.users {
		if u.ResetToken != nil && *u.ResetToken == digest && u.HasActiveResetToken(now) {
			return u
		}
	}
	return nil
}

func clone(u *domain.User) *domain.User {
	c := *u
	if u.ID != nil {
		id := *u.ID
		c.ID = &id
	}
	if u.ResetToken != nil {
		tok := *u.ResetToken
		c.ResetToken = &tok
	}
	if u.ResetTokenExpires != nil {
		exp := *u.ResetTokenExpires
		c.ResetTokenExpires = &exp
	}
	return &c
}

// SeedUser stores a user whose password hash matches password, using the
// minimum bcrypt cost to keep tests fast.
func SeedUser(t *testing.T, store domain.UserRepository, name, email, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user, err := store.Create(context.Background(), &domain.User{Name: name, Email: email, PasswordHash: string(hash)})
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}
