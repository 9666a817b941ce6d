package resolve

import (
	"golang.org/x/net/html"

	"github.com/hazyhaar/locsynth/internal/dom"
)

func defaultFuzzy() map[string]FuzzyMatcher {
	return map[string]FuzzyMatcher{
		"link": FuzzyFunc(sameLink),
	}
}

// sameLink accepts another anchor with identical text and destination, e.g.
// the header and footer copies of a "Log in" link.
func sameLink(resolved, original *html.Node) bool {
	if dom.Tag(resolved) != "a" || dom.Tag(original) != "a" {
		return false
	}
	if dom.LinkText(dom.TextContent(resolved)) != dom.LinkText(dom.TextContent(original)) {
		return false
	}
	rh, rok := dom.Attr(resolved, "href")
	oh, ook := dom.Attr(original, "href")
	return rok && ook && rh == oh
}
