// Package session ties an authenticated user to a server-side session.
// Only the session ID travels in the cookie; session values live in the
// filesystem store.
package session

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/authweb/internal/config"
	"github.com/nfrund/authweb/internal/domain"
)

const (
	authSessionName = "auth-session"
	userKeyField    = "user_key"

	maxAge = 7 * 24 * 60 * 60
)

// NewStore creates the filesystem-backed session store in the configured
// directory, creating it if needed. Cookies are marked Secure when the
// application is served over https.
func NewStore(cfg config.Provider) (*sessions.FilesystemStore, error) {
	dir := cfg.GetSessionDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory %s: %w", dir, err)
	}

	store := sessions.NewFilesystemStore(dir, []byte(cfg.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(strings.ToLower(cfg.GetAppBaseURL()), "https://"),
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}

// Login starts an authenticated session for user. The previous session is
// erased and a fresh ID issued, so an identifier planted before login
// cannot be reused.
func Login(c echo.Context, user *domain.User) error {
	sess, err := load(c)
	if err != nil {
		return err
	}
	if !sess.IsNew && sess.ID != "" {
		opts := *sess.Options
		sess.Options.MaxAge = -1
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return fmt.Errorf("failed to expire previous session: %w", err)
		}
		*sess.Options = opts
	}
	sess.ID = ""
	sess.Values = map[interface{}]interface{}{userKeyField: user.Key()}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout removes the user reference and deletes the stored session.
func Logout(c echo.Context) error {
	sess, err := load(c)
	if err != nil {
		return err
	}
	delete(sess.Values, userKeyField)
	sess.Options.MaxAge = -1
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// UserKey returns the key of the logged-in user, or "" when the request
// carries no authenticated session.
func UserKey(c echo.Context) string {
	sess, err := session.Get(authSessionName, c)
	if err != nil {
		return ""
	}
	key, _ := sess.Values[userKeyField].(string)
	return key
}

// load returns the auth session. A cookie pointing at a session that no
// longer exists still yields a usable new session.
func load(c echo.Context) (*sessions.Session, error) {
	sess, err := session.Get(authSessionName, c)
	if sess == nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}
