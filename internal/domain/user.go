package domain

import (
	"context"
	"fmt"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// UserTable is the document table holding user records.
const UserTable = "user"

// User represents the core user model in the application domain.
// PasswordHash always holds a bcrypt hash, never the plaintext password.
// ResetToken holds the SHA-256 digest of the issued token; it and
// ResetTokenExpires are either both set or both nil.
type User struct {
	ID                *surrealmodels.RecordID       `json:"id,omitempty"`
	Name              string                        `json:"name"`
	Email             string                        `json:"email"`
	PasswordHash      string                        `json:"password,omitempty"`
	ResetToken        *string                       `json:"resetToken,omitempty"`
	ResetTokenExpires *surrealmodels.CustomDateTime `json:"resetTokenExpires,omitempty"`
}

// Key returns the record key without the table prefix, suitable for storing in
// a session. It returns "" for a user that has not been persisted.
func (u *User) Key() string {
	if u == nil || u.ID == nil || u.ID.ID == nil {
		return ""
	}
	return fmt.Sprint(u.ID.ID)
}

// HasActiveResetToken reports whether a reset token is present and unexpired at now.
func (u *User) HasActiveResetToken(now time.Time) bool {
	if u == nil || u.ResetToken == nil || u.ResetTokenExpires == nil {
		return false
	}
	return now.Before(u.ResetTokenExpires.Time)
}

// NewUserRecordID builds the record ID for a user key.
func NewUserRecordID(key string) *surrealmodels.RecordID {
	id := surrealmodels.NewRecordID(UserTable, key)
	return &id
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
//
// Finder methods return (nil, nil) when no record matches.
type UserRepository interface {
	// Create inserts a new user. It returns ErrUserAlreadyExists when the
	// email is already taken.
	Create(ctx context.Context, user *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByKey(ctx context.Context, key string) (*User, error)

	// SetResetToken stores a token digest and its expiry on the user.
	SetResetToken(ctx context.Context, id *surrealmodels.RecordID, digest string, expiresAt time.Time) error
	// FindByResetToken returns the user holding digest if it expires after now.
	FindByResetToken(ctx context.Context, digest string, now time.Time) (*User, error)
	// ConsumeResetToken atomically replaces the password hash and clears the
	// token, but only while the token is still valid at now.
	ConsumeResetToken(ctx context.Context, digest, passwordHash string, now time.Time) (*User, error)
	// ClearExpiredResetTokens removes tokens whose expiry is not after now and
	// returns how many users were updated.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int, error)
}
