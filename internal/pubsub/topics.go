package pubsub

import "time"

// AccountEvent is the payload carried by every account lifecycle event.
type AccountEvent struct {
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
	Detail     string    `json:"detail,omitempty"`
}

// Account lifecycle events published by the auth service.
var (
	UserSignedUp     = NewEvent[AccountEvent]("account.signed_up", "A new user account was created")
	UserLoggedIn     = NewEvent[AccountEvent]("account.logged_in", "A user authenticated with email and password")
	UserLoginFailed  = NewEvent[AccountEvent]("account.login_failed", "A login attempt was rejected")
	UserLoggedOut    = NewEvent[AccountEvent]("account.logged_out", "A user cleared their session")
	ResetRequested   = NewEvent[AccountEvent]("account.reset_requested", "A password reset token was issued and emailed")
	ResetEmailFailed = NewEvent[AccountEvent]("account.reset_email_failed", "A password reset email could not be delivered")
	PasswordReset    = NewEvent[AccountEvent]("account.password_reset", "A reset token was consumed and the password replaced")
)

// AccountEvents lists every account event, in publication order of a typical lifecycle.
var AccountEvents = []Event[AccountEvent]{
	UserSignedUp,
	UserLoggedIn,
	UserLoginFailed,
	UserLoggedOut,
	ResetRequested,
	ResetEmailFailed,
	PasswordReset,
}
