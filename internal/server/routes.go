package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/authweb/internal/handlers"
	"github.com/nfrund/authweb/internal/middleware"
)

const healthTimeout = 2 * time.Second

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	pageHandler := handlers.NewPageHandler(s.deps.Pages, s.deps.Renderer)
	authHandler := handlers.NewAuthHandler(s.deps.Auth, s.deps.Renderer)

	rateLimiter := middleware.RateLimiter()
	if s.deps.RequestsPerMinute > 0 {
		rateLimiter = middleware.RateLimiterPerMinute(s.deps.RequestsPerMinute)
	}

	s.E.GET("/", pageHandler.Index)
	s.E.GET("/home", pageHandler.Static("home", "Home"))
	s.E.GET("/about", pageHandler.Static("about", "About"))
	s.E.GET("/contact", pageHandler.Static("contact", "Contact"))

	s.E.GET("/signup", authHandler.SignupGet)
	s.E.POST("/signup", authHandler.SignupPost, rateLimiter)

	s.E.GET("/login", authHandler.LoginGet)
	s.E.POST("/login", authHandler.LoginPost, rateLimiter)
	s.E.GET("/logout", authHandler.Logout)

	s.E.GET("/forgot-password", authHandler.ForgotPasswordGet)
	s.E.POST("/forgot-password", authHandler.ForgotPasswordPost, rateLimiter)

	s.E.GET("/reset-password/:token", authHandler.ResetPasswordGet)
	s.E.POST("/reset-password/:token", authHandler.ResetPasswordPost, rateLimiter)

	if s.deps.Static != nil {
		s.E.StaticFS("/static", s.deps.Static)
	}
	if s.deps.Registry != nil {
		s.E.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: s.deps.Registry}))
	}
	s.E.GET("/health", s.health)
}

// health reports 503 while the database is unreachable.
func (s *Server) health(c echo.Context) error {
	if s.deps.Health == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	if err := s.deps.Health(ctx); err != nil {
		middleware.FromContext(ctx).Warn("Health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "database": "up"})
}
