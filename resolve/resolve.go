// Package resolve is the reference resolution backend for locator strings
// over a parsed HTML document. It turns "id=", "name=", "identifier=",
// "link=", "css=" and XPath locators back into element nodes.
//
// Resolution never fails loudly: malformed selectors, XPath syntax errors and
// evaluator panics all resolve to nil.
package resolve

import (
	"log/slog"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/hazyhaar/locsynth/internal/dom"
)

// FuzzyMatcher approves a resolved element as a stand-in for the original one.
type FuzzyMatcher interface {
	IsFuzzyMatch(resolved, original *html.Node) bool
}

// FuzzyFunc adapts a plain function to FuzzyMatcher.
type FuzzyFunc func(resolved, original *html.Node) bool

// IsFuzzyMatch calls f.
func (f FuzzyFunc) IsFuzzyMatch(resolved, original *html.Node) bool { return f(resolved, original) }

// Adapter resolves locators against one document.
type Adapter struct {
	doc    *html.Node
	fuzzy  map[string]FuzzyMatcher
	logger *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used for debug traces of failed resolutions.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// WithFuzzyMatcher adds or replaces the fuzzy matcher of a strategy name.
// A nil matcher removes the entry.
func WithFuzzyMatcher(strategy string, m FuzzyMatcher) Option {
	return func(a *Adapter) {
		if m == nil {
			delete(a.fuzzy, strategy)
			return
		}
		a.fuzzy[strategy] = m
	}
}

// New creates an Adapter for doc, normally the node returned by html.Parse.
func New(doc *html.Node, opts ...Option) *Adapter {
	a := &Adapter{
		doc:    doc,
		fuzzy:  defaultFuzzy(),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Document returns the document the adapter resolves against.
func (a *Adapter) Document() *html.Node { return a.doc }

// Resolve returns the first element matching locator, or nil.
func (a *Adapter) Resolve(locator string) (n *html.Node) {
	if a.doc == nil || locator == "" {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Debug("resolve: evaluator panic", "locator", locator, "panic", r)
			n = nil
		}
	}()

	kind, value := Split(locator)
	switch kind {
	case "id":
		return a.byAttr("id", value)
	case "name":
		return a.byAttr("name", value)
	case "identifier":
		if n := a.byAttr("id", value); n != nil {
			return n
		}
		return a.byAttr("name", value)
	case "link":
		return a.byLinkText(value)
	case "css":
		return a.byCSS(value)
	case "xpath":
		return a.byXPath(value)
	default:
		a.logger.Debug("resolve: unsupported locator type", "type", kind)
		return nil
	}
}

// IsFuzzyMatch consults the fuzzy table for strategy. Strategies without an
// entry only accept exact identity, so this returns false for them.
func (a *Adapter) IsFuzzyMatch(strategy string, resolved, original *html.Node) bool {
	if resolved == nil || original == nil {
		return false
	}
	m, ok := a.fuzzy[strategy]
	if !ok {
		return false
	}
	return m.IsFuzzyMatch(resolved, original)
}

// HasFuzzyMatcher reports whether strategy has a fuzzy table entry.
func (a *Adapter) HasFuzzyMatcher(strategy string) bool {
	_, ok := a.fuzzy[strategy]
	return ok
}

// Split separates a locator into its type and value. XPath expressions
// starting with "/" or "(" need no prefix; an unknown or missing prefix means
// "identifier".
func Split(locator string) (kind, value string) {
	if strings.HasPrefix(locator, "/") || strings.HasPrefix(locator, "(") {
		return "xpath", locator
	}
	if i := strings.IndexByte(locator, '='); i > 0 {
		switch k := locator[:i]; k {
		case "id", "name", "identifier", "link", "css", "xpath", "dom", "ui":
			return k, locator[i+1:]
		}
	}
	return "identifier", locator
}

func (a *Adapter) byAttr(key, value string) *html.Node {
	return dom.Find(a.doc, func(n *html.Node) bool {
		v, ok := dom.Attr(n, key)
		return ok && v == value
	})
}

func (a *Adapter) byLinkText(value string) *html.Node {
	value = strings.TrimPrefix(value, "exact:")
	return dom.Find(a.doc, func(n *html.Node) bool {
		return dom.Tag(n) == "a" && dom.LinkText(dom.TextContent(n)) == value
	})
}

func (a *Adapter) byCSS(sel string) *html.Node {
	s, err := cascadia.Compile(sel)
	if err != nil {
		a.logger.Debug("resolve: bad css selector", "selector", sel, "error", err)
		return nil
	}
	return s.MatchFirst(a.doc)
}

func (a *Adapter) byXPath(expr string) *html.Node {
	n, err := htmlquery.Query(a.doc, expr)
	if err != nil {
		a.logger.Debug("resolve: bad xpath", "expr", expr, "error", err)
		return nil
	}
	if !dom.IsElement(n) {
		return nil
	}
	return n
}
