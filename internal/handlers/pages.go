package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/authweb/internal/rendering"
	"github.com/nfrund/authweb/internal/storage"
	"github.com/nfrund/authweb/internal/view/pages"
)

// PageHandler serves the index and the static informational pages.
type PageHandler struct {
	pages    *storage.PageStore
	renderer rendering.Renderer
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(store *storage.PageStore, renderer rendering.Renderer) *PageHandler {
	return &PageHandler{pages: store, renderer: renderer}
}

// Index renders the landing page with the current user, if any (GET /).
func (h *PageHandler) Index(c echo.Context) error {
	return render(c, h.renderer, http.StatusOK, pages.Index(pageProps(c)))
}

// Static returns a handler serving the named page from the store.
func (h *PageHandler) Static(name, title string) echo.HandlerFunc {
	return func(c echo.Context) error {
		content, err := h.pages.Page(c.Request().Context(), name)
		if errors.Is(err, storage.ErrPageNotFound) {
			return echo.ErrNotFound
		}
		if err != nil {
			return err
		}
		props := pageProps(c)
		props.Title = title
		return render(c, h.renderer, http.StatusOK, pages.Static(props, content))
	}
}
