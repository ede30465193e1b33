package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerMinute is the per-IP budget for rate limited routes.
const DefaultRequestsPerMinute = 10

// RateLimiter limits each client IP to DefaultRequestsPerMinute requests,
// allowing that many in a burst.
func RateLimiter() echo.MiddlewareFunc {
	return RateLimiterPerMinute(DefaultRequestsPerMinute)
}

// RateLimiterPerMinute limits each client IP to perMinute requests per minute.
func RateLimiterPerMinute(perMinute int) echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		// An in-memory store is suitable for single-instance deployments.
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(perMinute) / 60),
			Burst:     perMinute,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			FromContext(c.Request().Context()).Warn("Rate limit exceeded", "ip", identifier, "path", c.Path())
			return c.String(http.StatusTooManyRequests, "Too many requests. Please try again later.")
		},
	}
	return middleware.RateLimiterWithConfig(config)
}
