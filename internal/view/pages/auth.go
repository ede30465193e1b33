package pages

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	authdto "github.com/nfrund/authweb/internal/view/dto/auth"
)

// Signup renders the registration form.
func Signup(p Props, data authdto.SignupData) g.Node {
	p.Title = "Sign up"
	return Layout(p,
		h.H1(g.Text("Sign up")),
		h.Form(
			h.Method("post"), h.Action("/signup"),
			field("Name", "text", "name", data.Name, h.AutoComplete("name")),
			field("Email", "email", "email", data.Email, h.AutoComplete("email")),
			field("Password", "password", "password", "", h.AutoComplete("new-password")),
			field("Confirm password", "password", "confirmpassword", "", h.AutoComplete("new-password")),
			submit("Sign up"),
		),
		h.P(g.Text("Already have an account? "), h.A(h.Href("/login"), g.Text("Log in"))),
	)
}

// Login renders the login form.
func Login(p Props, data authdto.LoginData) g.Node {
	p.Title = "Log in"
	return Layout(p,
		h.H1(g.Text("Log in")),
		h.Form(
			h.Method("post"), h.Action("/login"),
			field("Email", "email", "email", data.Email, h.AutoComplete("email")),
			field("Password", "password", "password", "", h.AutoComplete("current-password")),
			submit("Log in"),
		),
		h.P(h.A(h.Href("/forgot-password"), g.Text("Forgot your password?"))),
		h.P(g.Text("No account yet? "), h.A(h.Href("/signup"), g.Text("Sign up"))),
	)
}

// ForgotPassword renders the form requesting a reset email.
func ForgotPassword(p Props, data authdto.ForgotPasswordData) g.Node {
	p.Title = "Forgot password"
	return Layout(p,
		h.H1(g.Text("Forgot password")),
		h.P(g.Text("Enter your email address and we will send you a link to reset your password.")),
		h.Form(
			h.Method("post"), h.Action("/forgot-password"),
			field("Email", "email", "email", data.Email, h.AutoComplete("email")),
			submit("Send reset link"),
		),
	)
}

// ResetPassword renders the new-password form for a valid token.
func ResetPassword(p Props, data authdto.ResetPasswordData) g.Node {
	p.Title = "Reset password"
	return Layout(p,
		h.H1(g.Text("Reset password")),
		h.Form(
			h.Method("post"), h.Action("/reset-password/"+data.Token),
			field("New password", "password", "password", "", h.AutoComplete("new-password")),
			field("Confirm password", "password", "confirmPassword", "", h.AutoComplete("new-password")),
			submit("Reset password"),
		),
	)
}
