// Package locator synthesises locator strings for DOM elements recorded on a
// page: id references, link text, CSS selectors and XPath expressions.
//
// A Builder runs every strategy of a Registry against an element, resolves
// each result back through a Resolver and keeps only the locators that find
// the same element again. Candidates come out in registry order.
package locator

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/locsynth/internal/dom"
)

// LocatorDetectionFailed is what Build returns when no strategy produced a
// verified locator.
const LocatorDetectionFailed = "LOCATOR_DETECTION_FAILED"

// Resolver turns locator strings back into elements. Implementations must
// return nil instead of failing.
type Resolver interface {
	Resolve(locator string) *html.Node
	// IsFuzzyMatch reports whether resolved is an acceptable stand-in for
	// original under the named strategy's policy. Strategies without a policy
	// return false.
	IsFuzzyMatch(strategy string, resolved, original *html.Node) bool
}

// Candidate is a verified locator and the strategy that produced it.
type Candidate struct {
	Locator  string `json:"locator"`
	Strategy string `json:"strategy"`
}

type options struct {
	logger *slog.Logger
}

// Option configures builders and window caches.
type Option func(*options)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Builder synthesises locators for elements of an ordinary document.
type Builder struct {
	reg    *Registry
	tk     *Toolkit
	logger *slog.Logger
}

// NewBuilder binds a registry to a resolver.
func NewBuilder(reg *Registry, r Resolver, opts ...Option) *Builder {
	o := newOptions(opts)
	return &Builder{reg: reg, tk: newToolkit(r, o.logger), logger: o.logger}
}

// Build returns the highest-priority verified locator for e, or
// LocatorDetectionFailed.
func (b *Builder) Build(e *html.Node) string {
	cands := b.BuildAll(e)
	if len(cands) == 0 {
		return LocatorDetectionFailed
	}
	return cands[0].Locator
}

// BuildAll returns every verified candidate for e in registry order. A
// candidate is kept when it resolves to e itself or to an element the
// resolver approves as a fuzzy match for that strategy.
func (b *Builder) BuildAll(e *html.Node) []Candidate {
	return run(b.reg, b.tk, e, b.logger, func(name string, found *html.Node) bool {
		return found == e || b.tk.isFuzzyMatch(name, found, e)
	})
}

// BuildWith runs a single strategy without verification.
func (b *Builder) BuildWith(name string, e, boundary *html.Node) (string, bool, error) {
	return buildWith(b.reg, b.tk, name, e, boundary)
}

// Toolkit exposes the helpers handed to strategies, for callers writing
// their own.
func (b *Builder) Toolkit() *Toolkit { return b.tk }

// FrameBuilder synthesises locators for frame and iframe elements. It only
// accepts locators resolving to the frame element itself.
type FrameBuilder struct {
	reg    *Registry
	tk     *Toolkit
	logger *slog.Logger
}

// NewFrameBuilder binds a frame registry to a resolver.
func NewFrameBuilder(reg *Registry, r Resolver, opts ...Option) *FrameBuilder {
	o := newOptions(opts)
	return &FrameBuilder{reg: reg, tk: newToolkit(r, o.logger), logger: o.logger}
}

// BuildAll returns every verified candidate for the frame element e.
func (b *FrameBuilder) BuildAll(e *html.Node) []Candidate {
	return run(b.reg, b.tk, e, b.logger, func(_ string, found *html.Node) bool {
		return found == e
	})
}

// BuildWith runs a single frame strategy without verification.
func (b *FrameBuilder) BuildWith(name string, e, boundary *html.Node) (string, bool, error) {
	return buildWith(b.reg, b.tk, name, e, boundary)
}

func run(reg *Registry, tk *Toolkit, e *html.Node, logger *slog.Logger, accept func(string, *html.Node) bool) []Candidate {
	if !dom.IsElement(e) {
		logger.Debug("locator: not an element, nothing to build")
		return nil
	}

	var out []Candidate
	for _, name := range reg.order {
		loc, ok, err := invoke(name, reg.strategies[name], tk, e, nil)
		if err != nil {
			logger.Warn("locator: strategy failed", "strategy", name, "error", err)
			continue
		}
		if !ok || loc == "" {
			continue
		}
		loc = singleLine(loc)
		found := tk.Resolve(loc)
		if !accept(name, found) {
			logger.Debug("locator: candidate rejected", "strategy", name, "locator", loc)
			continue
		}
		out = append(out, Candidate{Locator: loc, Strategy: name})
	}
	return out
}

func buildWith(reg *Registry, tk *Toolkit, name string, e, boundary *html.Node) (string, bool, error) {
	fn, ok := reg.Lookup(name)
	if !ok {
		return "", false, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}
	return invoke(name, fn, tk, e, boundary)
}

// invoke calls fn, turning errors and panics into a *StrategyError.
func invoke(name string, fn Strategy, tk *Toolkit, e, boundary *html.Node) (loc string, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			loc, ok = "", false
			err = &StrategyError{Strategy: name, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	loc, ok, err = fn(tk, e, boundary)
	if err != nil {
		return "", false, &StrategyError{Strategy: name, Cause: err}
	}
	return loc, ok, nil
}

var newlines = strings.NewReplacer("\r\n", `\n`, "\r", `\n`, "\n", `\n`)

// singleLine replaces line breaks with the two characters `\n`.
func singleLine(s string) string {
	return newlines.Replace(s)
}
