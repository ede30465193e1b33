package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	g "maragu.dev/gomponents"

	"github.com/nfrund/authweb/internal/auth"
	"github.com/nfrund/authweb/internal/domain"
	"github.com/nfrund/authweb/internal/middleware"
	"github.com/nfrund/authweb/internal/rendering"
	"github.com/nfrund/authweb/internal/session"
	"github.com/nfrund/authweb/internal/view"
	authdto "github.com/nfrund/authweb/internal/view/dto/auth"
	"github.com/nfrund/authweb/internal/view/pages"
)

// User-facing messages.
const (
	msgPasswordMismatch = "Passwords do not match"
	msgEmailExists      = "Email already exists"
	msgBadCredentials   = "Email or password is incorrect"
	msgNoSuchEmail      = "No user with that email address found"
	msgResetSent        = "Password reset email sent"
	msgInvalidToken     = "Password reset token is invalid or has expired"
	msgResetDone        = "Password reset successfully"
	msgGenericError     = "An error occurred"
	msgMissingFields    = "Please fill in all fields"
	msgInvalidEmail     = "Please enter a valid email address"
	msgPasswordTooLong  = "Password must be at most 72 bytes long"
	msgNameTooLong      = "Name must be at most 100 characters"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	auth     *auth.Service
	renderer rendering.Renderer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service, renderer rendering.Renderer) *AuthHandler {
	return &AuthHandler{auth: authService, renderer: renderer}
}

// SignupGet renders the signup page (GET /signup).
func (h *AuthHandler) SignupGet(c echo.Context) error {
	data := authdto.SignupData{
		Name:  view.GetFormValue(c, "name"),
		Email: view.GetFormValue(c, "email"),
	}
	return render(c, h.renderer, http.StatusOK, pages.Signup(pageProps(c), data))
}

// SignupPost creates an account and logs the new user in (POST /signup).
func (h *AuthHandler) SignupPost(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return h.signupFailed(c, req, msgGenericError)
	}
	req.normalize()

	if req.Password != req.ConfirmPassword {
		return h.signupFailed(c, req, msgPasswordMismatch)
	}
	if err := c.Validate(&req); err != nil {
		return h.signupFailed(c, req, validationMessage(err))
	}

	user, err := h.auth.SignUp(ctx, auth.SignUpInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	switch {
	case errors.Is(err, domain.ErrPasswordMismatch):
		return h.signupFailed(c, req, msgPasswordMismatch)
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return h.signupFailed(c, req, msgEmailExists)
	case err != nil:
		logger.Error("Error creating user", "email", req.Email, "error", err)
		return h.signupFailed(c, req, msgGenericError)
	}

	if err := session.Login(c, user); err != nil {
		logger.Error("Failed to start session after signup", "email", user.Email, "error", err)
		view.SetFlashError(c, msgGenericError)
		return c.Redirect(http.StatusSeeOther, "/signup")
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) signupFailed(c echo.Context, req SignupRequest, msg string) error {
	view.SetFormValue(c, "name", req.Name)
	view.SetFormValue(c, "email", req.Email)
	view.SetFlashError(c, msg)
	return c.Redirect(http.StatusSeeOther, "/signup")
}

// LoginGet renders the login page (GET /login).
func (h *AuthHandler) LoginGet(c echo.Context) error {
	data := authdto.LoginData{Email: view.GetFormValue(c, "email")}
	return render(c, h.renderer, http.StatusOK, pages.Login(pageProps(c), data))
}

// LoginPost authenticates with email and password (POST /login).
func (h *AuthHandler) LoginPost(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return h.loginFailed(c, "", msgGenericError)
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return h.loginFailed(c, req.Email, msgBadCredentials)
	}

	user, err := h.auth.LogIn(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		logger.Info("Login rejected", "email", req.Email)
		return h.loginFailed(c, req.Email, msgBadCredentials)
	case err != nil:
		logger.Error("Error during login", "email", req.Email, "error", err)
		return h.loginFailed(c, req.Email, msgGenericError)
	}

	if err := session.Login(c, user); err != nil {
		logger.Error("Failed to start session", "email", user.Email, "error", err)
		return h.loginFailed(c, req.Email, msgGenericError)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) loginFailed(c echo.Context, email, msg string) error {
	view.SetFormValue(c, "email", email)
	view.SetFlashError(c, msg)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// Logout clears the session and returns to the index (GET /logout).
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	h.auth.LoggedOut(ctx, middleware.UserFromContext(c))
	if err := session.Logout(c); err != nil {
		middleware.FromContext(ctx).Error("Failed to clear session", "error", err)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// ForgotPasswordGet renders the reset request page (GET /forgot-password).
func (h *AuthHandler) ForgotPasswordGet(c echo.Context) error {
	data := authdto.ForgotPasswordData{Email: view.GetFormValue(c, "email")}
	return render(c, h.renderer, http.StatusOK, pages.ForgotPassword(pageProps(c), data))
}

// ForgotPasswordPost issues a reset token and emails the link (POST /forgot-password).
func (h *AuthHandler) ForgotPasswordPost(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return h.forgotFailed(c, "", msgGenericError)
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return h.forgotFailed(c, req.Email, validationMessage(err))
	}

	err := h.auth.RequestPasswordReset(ctx, req.Email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return h.forgotFailed(c, req.Email, msgNoSuchEmail)
	case err != nil:
		logger.Error("Password reset request failed", "email", req.Email, "error", err)
		return h.forgotFailed(c, req.Email, msgGenericError)
	}

	view.SetFlashSuccess(c, msgResetSent)
	return c.Redirect(http.StatusSeeOther, "/forgot-password")
}

func (h *AuthHandler) forgotFailed(c echo.Context, email, msg string) error {
	view.SetFormValue(c, "email", email)
	view.SetFlashError(c, msg)
	return c.Redirect(http.StatusSeeOther, "/forgot-password")
}

// ResetPasswordGet shows the new-password form for a valid token
// (GET /reset-password/:token).
func (h *AuthHandler) ResetPasswordGet(c echo.Context) error {
	token := c.Param("token")
	if _, err := h.auth.ValidateResetToken(c.Request().Context(), token); err != nil {
		return h.tokenRejected(c, err)
	}
	data := authdto.ResetPasswordData{Token: token}
	return render(c, h.renderer, http.StatusOK, pages.ResetPassword(pageProps(c), data))
}

// ResetPasswordPost replaces the password and consumes the token
// (POST /reset-password/:token).
func (h *AuthHandler) ResetPasswordPost(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)
	token := c.Param("token")
	back := "/reset-password/" + token

	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		view.SetFlashError(c, msgGenericError)
		return c.Redirect(http.StatusSeeOther, back)
	}

	if err := c.Validate(&req); err != nil {
		// Expired links are reported before problems with the form.
		if _, tokenErr := h.auth.ValidateResetToken(ctx, token); tokenErr != nil {
			return h.tokenRejected(c, tokenErr)
		}
		view.SetFlashError(c, validationMessage(err))
		return c.Redirect(http.StatusSeeOther, back)
	}

	_, err := h.auth.ResetPassword(ctx, token, req.Password, req.ConfirmPassword)
	switch {
	case errors.Is(err, domain.ErrInvalidResetToken):
		return h.tokenRejected(c, err)
	case errors.Is(err, domain.ErrPasswordMismatch):
		view.SetFlashError(c, msgPasswordMismatch)
		return c.Redirect(http.StatusSeeOther, back)
	case err != nil:
		logger.Error("Password reset failed", "error", err)
		view.SetFlashError(c, msgGenericError)
		return c.Redirect(http.StatusSeeOther, back)
	}

	view.SetFlashSuccess(c, msgResetDone)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// tokenRejected sends the user back to request a new link.
func (h *AuthHandler) tokenRejected(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrInvalidResetToken) {
		view.SetFlashError(c, msgInvalidToken)
	} else {
		middleware.FromContext(c.Request().Context()).Error("Failed to validate reset token", "error", err)
		view.SetFlashError(c, msgGenericError)
	}
	return c.Redirect(http.StatusSeeOther, "/forgot-password")
}

// pageProps collects the layout data for the current request. Reading the
// flash data clears it.
func pageProps(c echo.Context) pages.Props {
	return pages.Props{
		User:  middleware.UserFromContext(c),
		Flash: view.GetFlashData(c),
	}
}

func render(c echo.Context, r rendering.Renderer, status int, node g.Node) error {
	return r.RenderPage(c, status, view.AdaptGomponentToTempl(node))
}
