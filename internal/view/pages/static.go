package pages

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Static embeds a trusted HTML fragment from the page store in the layout.
func Static(p Props, content []byte) g.Node {
	return Layout(p, h.Article(h.Class("static"), g.Raw(string(content))))
}
