// Package pages holds the server-rendered HTML pages, built with gomponents.
package pages

import (
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/authweb/internal/domain"
	"github.com/nfrund/authweb/internal/view"
)

// Props is the data every page needs for its chrome.
type Props struct {
	Title string
	User  *domain.User
	Flash view.FlashData
}

// Layout wraps body in the shared document shell: navigation, flash
// messages and the stylesheet. Links and forms are boosted by htmx.
func Layout(p Props, body ...g.Node) g.Node {
	title := "Auth App"
	if p.Title != "" {
		title = p.Title + " | Auth App"
	}

	return h.Doctype(
		h.HTML(
			h.Lang("en"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
				h.TitleEl(g.Text(title)),
				h.Link(h.Rel("stylesheet"), h.Href("/static/css/app.css")),
				h.Script(h.Src("https://unpkg.com/htmx.org@2.0.4"), h.Defer()),
			),
			h.Body(
				hx.Boost("true"),
				nav(p.User),
				h.Main(
					h.Class("container"),
					flashes(p.Flash),
					g.Group(body),
				),
			),
		),
	)
}

func nav(user *domain.User) g.Node {
	return h.Nav(
		h.Class("nav"),
		h.A(h.Href("/"), g.Text("Index")),
		h.A(h.Href("/home"), g.Text("Home")),
		h.A(h.Href("/about"), g.Text("About")),
		h.A(h.Href("/contact"), g.Text("Contact")),
		h.Span(h.Class("spacer")),
		g.If(user != nil, h.A(h.Href("/logout"), g.Text("Logout"))),
		g.If(user == nil, g.Group{
			h.A(h.Href("/login"), g.Text("Login")),
			h.A(h.Href("/signup"), g.Text("Sign up")),
		}),
	)
}

func flashes(f view.FlashData) g.Node {
	if f.Empty() {
		return nil
	}
	return h.Div(
		h.Class("flashes"),
		h.Role("status"),
		g.Map(f.Success, func(msg string) g.Node {
			return h.P(h.Class("flash flash-success"), g.Text(msg))
		}),
		g.Map(f.Error, func(msg string) g.Node {
			return h.P(h.Class("flash flash-error"), g.Text(msg))
		}),
	)
}

// field renders a labelled input.
func field(label, typ, name, value string, attrs ...g.Node) g.Node {
	return h.Div(
		h.Class("field"),
		h.Label(h.For(name), g.Text(label)),
		h.Input(
			h.Type(typ),
			h.ID(name),
			h.Name(name),
			g.If(value != "", h.Value(value)),
			h.Required(),
			g.Group(attrs),
		),
	)
}

func submit(label string) g.Node {
	return h.Button(h.Type("submit"), h.Class("button"), g.Text(label))
}
