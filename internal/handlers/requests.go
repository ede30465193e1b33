package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	emailaddress "github.com/mcnijman/go-emailaddress"
	"golang.org/x/text/unicode/norm"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// maxPasswordBytes is bcrypt's input limit. It counts bytes, not runes.
const maxPasswordBytes = 72

// NewValidator creates a new CustomValidator with two extra rules: "mailbox"
// accepts addresses that go-emailaddress can parse, and "bcryptlen" caps a
// field at maxPasswordBytes bytes.
func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		_, err := emailaddress.Parse(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return &CustomValidator{validator: v}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// SignupRequest is the signup form.
type SignupRequest struct {
	Name            string `form:"name" validate:"required,max=100"`
	Email           string `form:"email" validate:"required,max=254,mailbox"`
	Password        string `form:"password" validate:"required,bcryptlen"`
	ConfirmPassword string `form:"confirmpassword"`
}

func (r *SignupRequest) normalize() {
	r.Name = normalizeText(r.Name)
	r.Email = normalizeEmail(r.Email)
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (r *LoginRequest) normalize() {
	r.Email = normalizeEmail(r.Email)
}

// ForgotPasswordRequest is the form requesting a reset email.
type ForgotPasswordRequest struct {
	Email string `form:"email" validate:"required,max=254,mailbox"`
}

func (r *ForgotPasswordRequest) normalize() {
	r.Email = normalizeEmail(r.Email)
}

// ResetPasswordRequest is the new-password form. The token comes from the path.
type ResetPasswordRequest struct {
	Token           string `param:"token"`
	Password        string `form:"password" validate:"required,bcryptlen"`
	ConfirmPassword string `form:"confirmPassword"`
}

// normalizeText trims surrounding space and composes Unicode so visually
// identical input compares equal.
func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// normalizeEmail canonicalizes an address by lowercasing its domain, which
// is case-insensitive. The local part is kept as typed. Unparseable input
// is returned trimmed and left for validation to reject.
func normalizeEmail(s string) string {
	s = normalizeText(s)
	addr, err := emailaddress.Parse(s)
	if err != nil {
		return s
	}
	return addr.LocalPart + "@" + strings.ToLower(addr.Domain)
}

// validationMessage turns the first failed rule into a user-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgGenericError
	}
	fe := verrs[0]
	switch {
	case fe.Tag() == "required":
		return msgMissingFields
	case fe.Tag() == "mailbox" || fe.Field() == "Email":
		return msgInvalidEmail
	case fe.Tag() == "bcryptlen":
		return msgPasswordTooLong
	case fe.Field() == "Name" && fe.Tag() == "max":
		return msgNameTooLong
	default:
		return msgGenericError
	}
}
