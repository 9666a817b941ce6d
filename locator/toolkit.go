package locator

import (
	"log/slog"

	"golang.org/x/net/html"
)

// Toolkit is what strategies get to work with: a guarded resolver plus the
// escaping and disambiguation helpers.
type Toolkit struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewToolkit wraps r for use by strategies outside a Builder.
func NewToolkit(r Resolver, opts ...Option) *Toolkit {
	o := newOptions(opts)
	return newToolkit(r, o.logger)
}

func newToolkit(r Resolver, logger *slog.Logger) *Toolkit {
	return &Toolkit{resolver: r, logger: logger}
}

// Resolve resolves locator. A panicking resolver counts as no match.
func (tk *Toolkit) Resolve(locator string) (n *html.Node) {
	if tk.resolver == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			tk.logger.Warn("locator: resolver panic", "locator", locator, "panic", r)
			n = nil
		}
	}()
	return tk.resolver.Resolve(locator)
}

// Finds reports whether locator resolves to e.
func (tk *Toolkit) Finds(locator string, e *html.Node) bool {
	return e != nil && tk.Resolve(locator) == e
}

// PreciseXPath disambiguates expr so that it resolves to e. See PreciseXPath.
func (tk *Toolkit) PreciseXPath(expr string, e *html.Node) string {
	return preciseXPath(tk, expr, e)
}

// AttributeValue renders value as an XPath string literal.
func (tk *Toolkit) AttributeValue(value string) string {
	return AttributeValue(value)
}

// CSSSubPath returns the single-element CSS selector for e.
func (tk *Toolkit) CSSSubPath(e *html.Node) string {
	return CSSSubPath(e)
}

func (tk *Toolkit) isFuzzyMatch(strategy string, resolved, original *html.Node) (ok bool) {
	if tk.resolver == nil || resolved == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			tk.logger.Warn("locator: fuzzy matcher panic", "strategy", strategy, "panic", r)
			ok = false
		}
	}()
	return tk.resolver.IsFuzzyMatch(strategy, resolved, original)
}
