package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/authweb/internal/session"
	"github.com/nfrund/authweb/internal/testutils"
)

func TestCurrentUser(t *testing.T) {
	users := testutils.NewMemoryUserStore()
	ann := testutils.SeedUser(t, users, "Ann", "a@x.io", "p1")

	e := echo.New()
	e.Use(echosession.Middleware(sessions.NewCookieStore([]byte("test-secret"))))
	e.Use(CurrentUser(users))
	e.GET("/login", func(c echo.Context) error {
		if err := session.Login(c, ann); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/me", func(c echo.Context) error {
		if u := UserFromContext(c); u != nil {
			return c.String(http.StatusOK, u.Email)
		}
		return c.String(http.StatusOK, "anonymous")
	})

	get := func(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("anonymous without session", func(t *testing.T) {
		assert.Equal(t, "anonymous", get("/me", nil).Body.String())
	})

	cookies := get("/login", nil).Result().Cookies()
	require.NotEmpty(t, cookies)

	t.Run("loads user from session", func(t *testing.T) {
		assert.Equal(t, "a@x.io", get("/me", cookies).Body.String())
	})

	t.Run("repository error is anonymous", func(t *testing.T) {
		users.Err = errors.New("db down")
		defer func() { users.Err = nil }()
		assert.Equal(t, "anonymous", get("/me", cookies).Body.String())
	})
}

func TestUserFromContext_Empty(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, UserFromContext(c))
}
