package server

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nfrund/authweb/internal/auth"
	"github.com/nfrund/authweb/internal/domain"
	"github.com/nfrund/authweb/internal/handlers"
	appmiddleware "github.com/nfrund/authweb/internal/middleware"
	"github.com/nfrund/authweb/internal/rendering"
	"github.com/nfrund/authweb/internal/storage"
)

// HealthFunc reports whether a backing service is reachable.
type HealthFunc func(ctx context.Context) error

// Dependencies holds everything the HTTP layer needs.
type Dependencies struct {
	Users    domain.UserRepository
	Auth     *auth.Service
	Pages    *storage.PageStore
	Renderer rendering.Renderer
	Sessions sessions.Store
	Registry *prometheus.Registry
	Static   fs.FS
	Health   HealthFunc

	// RequestsPerMinute bounds the POST auth routes per client IP.
	// Zero uses the middleware default.
	RequestsPerMinute int
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E    *echo.Echo
	deps Dependencies
}

// New creates a Server with the middleware chain installed and every route
// registered.
func New(deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()

	s := &Server{E: e, deps: deps}
	setupErrorHandling(e, deps.Renderer)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(appmiddleware.Logger)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= 500 {
				level = slog.LevelError
			}
			appmiddleware.FromContext(c.Request().Context()).LogAttrs(c.Request().Context(), level, "HTTP request",
				slog.String("method", v.Method),
				slog.String("path", logPath(c)),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	if deps.Registry != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:                 "authweb",
			Subsystem:                 "http",
			Registerer:                deps.Registry,
			DoNotUseRequestPathFor404: true,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
	}
	e.Use(session.Middleware(deps.Sessions))
	e.Use(appmiddleware.CurrentUser(deps.Users))

	s.RegisterRoutes()
	return s
}
