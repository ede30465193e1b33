package handlers_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nfrund/authweb/internal/auth"
	"github.com/nfrund/authweb/internal/config"
	"github.com/nfrund/authweb/internal/handlers"
	"github.com/nfrund/authweb/internal/middleware"
	"github.com/nfrund/authweb/internal/rendering"
	authsession "github.com/nfrund/authweb/internal/session"
	"github.com/nfrund/authweb/internal/storage"
	"github.com/nfrund/authweb/internal/testutils"
)

type testApp struct {
	server *httptest.Server
	users  *testutils.MemoryUserStore
	mailer *testutils.RecordingSender
	now    time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	app := &testApp{
		users:  testutils.NewMemoryUserStore(),
		mailer: &testutils.RecordingSender{},
		now:    time.Now(),
	}

	store, err := authsession.NewStore(&config.Config{SessionDir: t.TempDir(), SessionSecret: "test-session-secret"})
	require.NoError(t, err)

	svc := auth.NewService(app.users, auth.NewBcryptHasher(bcrypt.MinCost), app.mailer, nil, auth.Options{
		BaseURL: "http://example.test",
		Clock:   func() time.Time { return app.now },
	})
	renderer := rendering.NewUniversalRenderer()

	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "about.html", []byte("<h1>About this app</h1>"), 0o644))

	e := echo.New()
	e.Validator = handlers.NewValidator()
	e.Use(session.Middleware(store))
	e.Use(middleware.CurrentUser(app.users))

	ah := handlers.NewAuthHandler(svc, renderer)
	ph := handlers.NewPageHandler(storage.NewPageStore(memFs), renderer)
	e.GET("/", ph.Index)
	e.GET("/about", ph.Static("about", "About"))
	e.GET("/home", ph.Static("home", "Home"))
	e.GET("/signup", ah.SignupGet)
	e.POST("/signup", ah.SignupPost)
	e.GET("/login", ah.LoginGet)
	e.POST("/login", ah.LoginPost)
	e.GET("/logout", ah.Logout)
	e.GET("/forgot-password", ah.ForgotPasswordGet)
	e.POST("/forgot-password", ah.ForgotPasswordPost)
	e.GET("/reset-password/:token", ah.ResetPasswordGet)
	e.POST("/reset-password/:token", ah.ResetPasswordPost)

	app.server = httptest.NewServer(e)
	t.Cleanup(app.server.Close)
	return app
}

// browser keeps cookies across requests and does not follow redirects.
type browser struct {
	t      *testing.T
	app    *testApp
	client *http.Client
}

func (a *testApp) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:   t,
		app: a,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) (int, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.app.server.URL + path)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp.StatusCode, string(body)
}

// post submits a form and returns the redirect location.
func (b *browser) post(path string, form url.Values) string {
	b.t.Helper()
	resp, err := b.client.PostForm(b.app.server.URL+path, form)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode)
	return resp.Header.Get("Location")
}

func signupForm(name, email, password, confirm string) url.Values {
	return url.Values{"name": {name}, "email": {email}, "password": {password}, "confirmpassword": {confirm}}
}

func TestSignup(t *testing.T) {
	t.Run("creates user and logs in", func(t *testing.T) {
		app := newTestApp(t)
		b := app.browser(t)

		assert.Equal(t, "/", b.post("/signup", signupForm("Ann", "a@x.io", "p1", "p1")))

		_, body := b.get("/")
		assert.Contains(t, body, "Welcome, Ann")

		stored := app.users.Get("a@x.io")
		require.NotNil(t, stored)
		assert.NotEqual(t, "p1", stored.PasswordHash)
	})

	t.Run("password mismatch", func(t *testing.T) {
		app := newTestApp(t)
		b := app.browser(t)

		assert.Equal(t, "/signup", b.post("/signup", signupForm("Ann", "a@x.io", "p1", "p2")))
		_, body := b.get("/signup")
		assert.Contains(t, body, "Passwords do not match")
		assert.Contains(t, body, `value="a@x.io"`)
		assert.Zero(t, app.users.Len())

		_, body = b.get("/signup")
		assert.NotContains(t, body, "Passwords do not match", "flash is shown once")
	})

	t.Run("duplicate email", func(t *testing.T) {
		app := newTestApp(t)
		app.browser(t).post("/signup", signupForm("Ann", "a@x.io", "p1", "p1"))

		b := app.browser(t)
		assert.Equal(t, "/signup", b.post("/signup", signupForm("Bob", "a@X.IO", "p2", "p2")))
		_, body := b.get("/signup")
		assert.Contains(t, body, "Email already exists")
		assert.Equal(t, 1, app.users.Len())
	})

	t.Run("invalid email", func(t *testing.T) {
		app := newTestApp(t)
		b := app.browser(t)
		assert.Equal(t, "/signup", b.post("/signup", signupForm("Ann", "not-an-email", "p1", "p1")))
		_, body := b.get("/signup")
		assert.Contains(t, body, "Please enter a valid email address")
	})

	t.Run("missing name", func(t *testing.T) {
		app := newTestApp(t)
		b := app.browser(t)
		assert.Equal(t, "/signup", b.post("/signup", signupForm("", "a@x.io", "p1", "p1")))
		_, body := b.get("/signup")
		assert.Contains(t, body, "Please fill in all fields")
	})

	t.Run("password over 72 bytes", func(t *testing.T) {
		app := newTestApp(t)
		b := app.browser(t)
		pw := strings.Repeat("é", 40)
		assert.Equal(t, "/signup", b.post("/signup", signupForm("Ann", "a@x.io", pw, pw)))
		_, body := b.get("/signup")
		assert.Contains(t, body, "Password must be at most 72 bytes long")
		assert.Zero(t, app.users.Len())
	})
}

func TestLoginLogout(t *testing.T) {
	app := newTestApp(t)
	testutils.SeedUser(t, app.users, "Ann", "a@x.io", "p1")

	t.Run("wrong password", func(t *testing.T) {
		b := app.browser(t)
		assert.Equal(t, "/login", b.post("/login", url.Values{"email": {"a@x.io"}, "password": {"nope"}}))
		_, body := b.get("/login")
		assert.Contains(t, body, "Email or password is incorrect")
		assert.Contains(t, body, `value="a@x.io"`)
	})

	t.Run("unknown email gives the same message", func(t *testing.T) {
		b := app.browser(t)
		assert.Equal(t, "/login", b.post("/login", url.Values{"email": {"ghost@x.io"}, "password": {"p1"}}))
		_, body := b.get("/login")
		assert.Contains(t, body, "Email or password is incorrect")
	})

	t.Run("success then logout", func(t *testing.T) {
		b := app.browser(t)
		assert.Equal(t, "/", b.post("/login", url.Values{"email": {"a@x.io"}, "password": {"p1"}}))

		_, body := b.get("/")
		assert.Contains(t, body, "Welcome, Ann")

		status, _ := b.get("/logout")
		assert.Equal(t, http.StatusSeeOther, status)

		_, body = b.get("/")
		assert.Contains(t, body, "You are not logged in.")
	})
}

func TestForgotPassword(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		app := newTestApp(t)
		b := app.browser(t)
		assert.Equal(t, "/forgot-password", b.post("/forgot-password", url.Values{"email": {"ghost@x.io"}}))
		_, body := b.get("/forgot-password")
		assert.Contains(t, body, "No user with that email address found")
		assert.Empty(t, app.mailer.Sent())
	})

	t.Run("sends link", func(t *testing.T) {
		app := newTestApp(t)
		testutils.SeedUser(t, app.users, "Ann", "a@x.io", "p1")
		b := app.browser(t)

		assert.Equal(t, "/forgot-password", b.post("/forgot-password", url.Values{"email": {"a@x.io"}}))
		_, body := b.get("/forgot-password")
		assert.Contains(t, body, "Password reset email sent")

		msg, ok := app.mailer.Last()
		require.True(t, ok)
		assert.Contains(t, msg.TextBody, "http://example.test/reset-password/"+app.mailer.ResetToken())
	})

	t.Run("mail failure", func(t *testing.T) {
		app := newTestApp(t)
		testutils.SeedUser(t, app.users, "Ann", "a@x.io", "p1")
		app.mailer.Err = assert.AnError
		b := app.browser(t)

		assert.Equal(t, "/forgot-password", b.post("/forgot-password", url.Values{"email": {"a@x.io"}}))
		_, body := b.get("/forgot-password")
		assert.Contains(t, body, "An error occurred")
	})
}

func TestResetPassword(t *testing.T) {
	setup := func(t *testing.T) (*testApp, *browser, string) {
		app := newTestApp(t)
		testutils.SeedUser(t, app.users, "Ann", "a@x.io", "p1")
		b := app.browser(t)
		b.post("/forgot-password", url.Values{"email": {"a@x.io"}})
		token := app.mailer.ResetToken()
		require.NotEmpty(t, token)
		return app, b, token
	}

	t.Run("unknown token", func(t *testing.T) {
		_, b, _ := setup(t)
		status, _ := b.get("/reset-password/deadbeef")
		assert.Equal(t, http.StatusSeeOther, status)
		_, body := b.get("/forgot-password")
		assert.Contains(t, body, "Password reset token is invalid or has expired")
	})

	t.Run("full flow", func(t *testing.T) {
		app, b, token := setup(t)

		status, body := b.get("/reset-password/" + token)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, `action="/reset-password/`+token+`"`)

		loc := b.post("/reset-password/"+token, url.Values{"password": {"new1"}, "confirmPassword": {"new2"}})
		assert.Equal(t, "/reset-password/"+token, loc)
		_, body = b.get(loc)
		assert.Contains(t, body, "Passwords do not match")

		loc = b.post("/reset-password/"+token, url.Values{"password": {"new1"}, "confirmPassword": {"new1"}})
		assert.Equal(t, "/login", loc)
		_, body = b.get("/login")
		assert.Contains(t, body, "Password reset successfully")

		assert.Equal(t, "/login", b.post("/login", url.Values{"email": {"a@x.io"}, "password": {"p1"}}))
		assert.Equal(t, "/", b.post("/login", url.Values{"email": {"a@x.io"}, "password": {"new1"}}))
		assert.Nil(t, app.users.Get("a@x.io").ResetToken)

		loc = b.post("/reset-password/"+token, url.Values{"password": {"new2"}, "confirmPassword": {"new2"}})
		assert.Equal(t, "/forgot-password", loc, "a used token is rejected")
	})

	t.Run("expired token wins over mismatch", func(t *testing.T) {
		app, b, token := setup(t)
		app.now = app.now.Add(time.Hour)

		loc := b.post("/reset-password/"+token, url.Values{"password": {"a"}, "confirmPassword": {"b"}})
		assert.Equal(t, "/forgot-password", loc)
		_, body := b.get("/forgot-password")
		assert.Contains(t, body, "Password reset token is invalid or has expired")
	})

	t.Run("empty password", func(t *testing.T) {
		_, b, token := setup(t)
		loc := b.post("/reset-password/"+token, url.Values{"password": {""}, "confirmPassword": {""}})
		assert.Equal(t, "/reset-password/"+token, loc)
		_, body := b.get(loc)
		assert.Contains(t, body, "Please fill in all fields")
	})

	t.Run("password over 72 bytes", func(t *testing.T) {
		app, b, token := setup(t)
		pw := strings.Repeat("é", 40)
		loc := b.post("/reset-password/"+token, url.Values{"password": {pw}, "confirmPassword": {pw}})
		assert.Equal(t, "/reset-password/"+token, loc)
		_, body := b.get(loc)
		assert.Contains(t, body, "Password must be at most 72 bytes long")
		assert.NotNil(t, app.users.Get("a@x.io").ResetToken, "token is kept for another try")
	})
}

func TestStaticPages(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	status, body := b.get("/about")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<h1>About this app</h1>")
	assert.True(t, strings.Contains(body, "<title>About | Auth App</title>"))

	status, _ = b.get("/home")
	assert.Equal(t, http.StatusNotFound, status)
}
