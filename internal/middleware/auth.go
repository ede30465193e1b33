package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/nfrund/authweb/internal/domain"
	"github.com/nfrund/authweb/internal/session"
)

// UserContextKey is the echo.Context key holding the current *domain.User.
const UserContextKey = "user"

// CurrentUser resolves the session's user key to a user record and stores it
// in the context. Requests without a valid session continue anonymously; a
// failed lookup is logged and also treated as anonymous.
func CurrentUser(users domain.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := session.UserKey(c)
			if key == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			user, err := users.FindByKey(ctx, key)
			if err != nil {
				FromContext(ctx).Error("Failed to load session user", "user_id", key, "error", err)
				return next(c)
			}
			if user != nil {
				c.Set(UserContextKey, user)
			}
			return next(c)
		}
	}
}

// UserFromContext returns the user stored by CurrentUser, or nil.
func UserFromContext(c echo.Context) *domain.User {
	user, _ := c.Get(UserContextKey).(*domain.User)
	return user
}
