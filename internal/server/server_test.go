package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nfrund/authweb/internal/auth"
	"github.com/nfrund/authweb/internal/metrics"
	"github.com/nfrund/authweb/internal/rendering"
	"github.com/nfrund/authweb/internal/storage"
	"github.com/nfrund/authweb/internal/testutils"
)

func newTestServer(t *testing.T, health HealthFunc) *Server {
	t.Helper()
	users := testutils.NewMemoryUserStore()
	svc := auth.NewService(users, auth.NewBcryptHasher(bcrypt.MinCost), &testutils.RecordingSender{}, nil, auth.Options{BaseURL: "http://example.test"})

	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "about.html", []byte("<p>About us</p>"), 0o644))

	return New(Dependencies{
		Users:    users,
		Auth:     svc,
		Pages:    storage.NewPageStore(memFs),
		Renderer: rendering.NewUniversalRenderer(),
		Sessions: sessions.NewCookieStore([]byte("test-secret")),
		Registry: metrics.NewRegistry(),
		Static:   fstest.MapFS{"css/app.css": {Data: []byte("body{}")}},
		Health:   health,
	})
}

func serve(s *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, req)
	return rec
}

func TestHTTPErrorHandler_WithStackTrace(t *testing.T) {
	e := echo.New()

	var logBuffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuffer, &slog.HandlerOptions{AddSource: true}))
	originalLogger := slog.Default()
	slog.SetDefault(logger)
	defer slog.SetDefault(originalLogger)

	setupErrorHandling(e, rendering.NewUniversalRenderer())

	e.GET("/test-unhandled-error", func(c echo.Context) error {
		return errors.New("a deliberate unhandled error occurred")
	})

	req := httptest.NewRequest(http.MethodGet, "/test-unhandled-error", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "500: Something went wrong")
	assert.NotContains(t, rec.Body.String(), "deliberate", "internal errors are not shown to users")

	logOutput := logBuffer.String()
	assert.Contains(t, logOutput, "Internal Server Error (Unhandled)")
	assert.Contains(t, logOutput, "error=\"a deliberate unhandled error occurred\"")
	assert.Contains(t, logOutput, "stack_trace=")
	assert.Contains(t, logOutput, "runtime/debug/stack.go")
	assert.Contains(t, logOutput, "internal/server/server_test.go")
}

func TestRequestLog_OmitsResetToken(t *testing.T) {
	var logBuffer bytes.Buffer
	originalLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logBuffer, nil)))
	defer slog.SetDefault(originalLogger)

	s := newTestServer(t, nil)
	const token = "0123456789abcdef0123456789abcdef"

	assert.Equal(t, http.StatusSeeOther, serve(s, http.MethodGet, "/reset-password/"+token).Code)
	assert.Equal(t, http.StatusSeeOther, serve(s, http.MethodPost, "/reset-password/"+token+"?x=1").Code)
	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/reset-password/"+token+"/extra").Code)

	logOutput := logBuffer.String()
	assert.Contains(t, logOutput, "HTTP request")
	assert.Contains(t, logOutput, "path=/reset-password/:token")
	assert.NotContains(t, logOutput, token)
}

func TestLogPath(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/reset-password/abc/def", nil), httptest.NewRecorder())
	assert.Equal(t, "/reset-password/[redacted]", logPath(c))

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/nowhere", nil), httptest.NewRecorder())
	assert.Equal(t, "/nowhere", logPath(c))

	c.SetPath("/reset-password/:token")
	assert.Equal(t, "/reset-password/:token", logPath(c))
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name     string
		target   string
		status   int
		contains string
	}{
		{name: "index", target: "/", status: http.StatusOK, contains: "You are not logged in."},
		{name: "signup", target: "/signup", status: http.StatusOK, contains: `action="/signup"`},
		{name: "login", target: "/login", status: http.StatusOK, contains: `action="/login"`},
		{name: "forgot password", target: "/forgot-password", status: http.StatusOK, contains: `action="/forgot-password"`},
		{name: "static page", target: "/about", status: http.StatusOK, contains: "<p>About us</p>"},
		{name: "missing static page", target: "/contact", status: http.StatusNotFound, contains: "404: Page not found"},
		{name: "unknown route", target: "/nope", status: http.StatusNotFound, contains: "404: Page not found"},
		{name: "invalid reset token", target: "/reset-password/abc", status: http.StatusSeeOther},
		{name: "stylesheet", target: "/static/css/app.css", status: http.StatusOK, contains: "body{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, http.MethodGet, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			if tt.contains != "" {
				assert.Contains(t, rec.Body.String(), tt.contains)
			}
		})
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, http.MethodGet, "/")

	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML))
}

func TestHealth(t *testing.T) {
	t.Run("up", func(t *testing.T) {
		s := newTestServer(t, func(context.Context) error { return nil })
		rec := serve(s, http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","database":"up"}`, rec.Body.String())
	})

	t.Run("down", func(t *testing.T) {
		s := newTestServer(t, func(context.Context) error { return errors.New("connection refused") })
		rec := serve(s, http.MethodGet, "/health")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable","database":"down"}`, rec.Body.String())
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	serve(s, http.MethodGet, "/login")

	rec := serve(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "authweb_http_requests_total")
	assert.Contains(t, rec.Body.String(), `url="/login"`)
}

func TestStart_StopsOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, "127.0.0.1:0") }()

	cancel()
	assert.NoError(t, <-done)
}
