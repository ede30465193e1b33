package server

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/authweb/internal/middleware"
	"github.com/nfrund/authweb/internal/rendering"
	"github.com/nfrund/authweb/internal/view"
	"github.com/nfrund/authweb/internal/view/pages"
)

const resetPrefix = "/reset-password/"

// logPath returns the matched route template so that path parameters such
// as reset tokens never reach the logs. Unmatched requests fall back to the
// raw path with anything after the reset prefix masked.
func logPath(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	p := c.Request().URL.Path
	if i := strings.Index(p, resetPrefix); i >= 0 {
		return p[:i+len(resetPrefix)] + "[redacted]"
	}
	return p
}

// setupErrorHandling installs an error handler that renders status pages
// and logs unhandled errors with a stack trace.
func setupErrorHandling(e *echo.Echo, renderer rendering.Renderer) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if he.Internal != nil {
				slog.Warn("HTTP error", "status", status, "error", he.Internal, "path", logPath(c))
			}
		} else {
			middleware.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
				"error", err,
				"path", logPath(c),
				"stack_trace", string(debug.Stack()),
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}

		if renderer != nil {
			props := pages.Props{User: middleware.UserFromContext(c)}
			node := pages.ErrorFor(props, status)
			if rerr := renderer.RenderPage(c, status, view.AdaptGomponentToTempl(node)); rerr == nil {
				return
			}
		}
		_ = c.String(status, http.StatusText(status))
	}
}
