package pages

import (
	"net/http"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Error renders a status page such as "404: Page not found".
func Error(p Props, status int, message string) g.Node {
	if p.Title == "" {
		p.Title = http.StatusText(status)
	}
	return Layout(p,
		h.Section(h.Class("error"),
			h.H1(g.Textf("%d: %s", status, message)),
			h.P(h.A(h.Href("/"), g.Text("Back to home"))),
		),
	)
}

// statusMessage is the user-facing text for common error statuses.
func statusMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "Page not found"
	case http.StatusTooManyRequests:
		return "Too many requests"
	case http.StatusInternalServerError:
		return "Something went wrong"
	default:
		return http.StatusText(status)
	}
}

// ErrorFor renders the standard page for status.
func ErrorFor(p Props, status int) g.Node {
	return Error(p, status, statusMessage(status))
}

