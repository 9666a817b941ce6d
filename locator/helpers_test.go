package locator

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/hazyhaar/locsynth/internal/dom"
	"github.com/hazyhaar/locsynth/resolve"
)

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

// mustFind returns the element a locator resolves to, failing the test if none.
func mustFind(t *testing.T, doc *html.Node, locator string) *html.Node {
	t.Helper()
	n := resolve.New(doc).Resolve(locator)
	if n == nil {
		t.Fatalf("fixture locator %q matched nothing", locator)
	}
	return n
}

// stubResolver resolves through a lookup table and records what it was asked.
type stubResolver struct {
	table map[string]*html.Node
	fuzzy func(strategy string, resolved, original *html.Node) bool
	asked []string
	panic bool
}

func (s *stubResolver) Resolve(locator string) *html.Node {
	s.asked = append(s.asked, locator)
	if s.panic {
		panic("resolver exploded")
	}
	return s.table[locator]
}

func (s *stubResolver) IsFuzzyMatch(strategy string, resolved, original *html.Node) bool {
	if s.fuzzy == nil {
		return false
	}
	return s.fuzzy(strategy, resolved, original)
}

func fixed(loc string) Strategy {
	return func(_ *Toolkit, _, _ *html.Node) (string, bool, error) { return loc, true, nil }
}

func tagOf(n *html.Node) string { return dom.Tag(n) }
