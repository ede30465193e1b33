package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials provided")
	ErrNotFound           = errors.New("requested resource not found")

	// ErrPasswordMismatch indicates the password and its confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidResetToken indicates that a password reset request used a token
	// that is either expired, already used, or was never valid.
	ErrInvalidResetToken = errors.New("invalid or expired password reset token")

	// ErrEmailDelivery indicates the reset token was stored but the email
	// carrying it could not be handed to the mail transport.
	ErrEmailDelivery = errors.New("password reset email could not be sent")
)
