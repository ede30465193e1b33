package pages

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

var titleCase = cases.Title(language.Und)

// Index greets the current user, or invites a visitor to log in.
func Index(p Props) g.Node {
	if p.Title == "" {
		p.Title = "Welcome"
	}

	if p.User == nil {
		return Layout(p,
			h.H1(g.Text("Welcome")),
			h.P(g.Text("You are not logged in.")),
			h.P(
				h.A(h.Href("/login"), g.Text("Log in")),
				g.Text(" or "),
				h.A(h.Href("/signup"), g.Text("create an account")),
				g.Text("."),
			),
		)
	}

	return Layout(p,
		h.H1(g.Textf("Welcome, %s", titleCase.String(p.User.Name))),
		h.P(g.Textf("You are logged in as %s.", p.User.Email)),
		h.P(h.A(h.Href("/logout"), g.Text("Log out"))),
	)
}
