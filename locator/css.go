package locator

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/locsynth/internal/dom"
)

// cssAttributes are tried in order after id and class.
var cssAttributes = []string{"name", "type", "alt", "title", "value"}

var cssIdent = regexp.MustCompile(`^-?[_a-zA-Z\x{80}-\x{10FFFF}][_a-zA-Z0-9\x{80}-\x{10FFFF}-]*$`)

// CSSSubPath returns a CSS selector for e alone, without ancestors:
// "#id", "tag.c1.c2", `tag[attr="v"]`, "tag:nth-of-type(n)" or "tag".
func CSSSubPath(e *html.Node) string {
	tag := dom.Tag(e)

	if id := dom.AttrValue(e, "id"); id != "" {
		if cssIdent.MatchString(id) {
			return "#" + id
		}
		return tag + `[id="` + cssString(id) + `"]`
	}

	if classes := strings.Fields(dom.AttrValue(e, "class")); len(classes) > 0 && allIdents(classes) {
		return tag + "." + strings.Join(classes, ".")
	}

	for _, attr := range cssAttributes {
		if v := dom.AttrValue(e, attr); v != "" {
			return tag + "[" + attr + `="` + cssString(v) + `"]`
		}
	}

	if idx := dom.SameTagIndex(e); idx > 0 {
		return tag + ":nth-of-type(" + strconv.Itoa(idx+1) + ")"
	}
	return tag
}

func allIdents(names []string) bool {
	for _, n := range names {
		if !cssIdent.MatchString(n) {
			return false
		}
	}
	return true
}

var cssQuote = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)

// cssString escapes v for use inside a double-quoted CSS string.
func cssString(v string) string {
	return cssQuote.Replace(v)
}
