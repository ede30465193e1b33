package auth

// LoginData is a View Model (DTO) used specifically for the login page.
// It carries a previously submitted email so a failed attempt keeps it.
type LoginData struct {
	Email string
}

// ForgotPasswordData is used to transfer data (like a pre-filled email) to the forgot password page.
type ForgotPasswordData struct {
	Email string
}

// ResetPasswordData is used to transfer the necessary token to the password reset form.
type ResetPasswordData struct {
	Token string
}

// SignupData is used to transfer previously entered values back to the signup page.
type SignupData struct {
	Name  string
	Email string
}
