package locator

import (
	"slices"

	"golang.org/x/net/html"
)

// Strategy synthesises one locator for e. boundary, when non-nil, is an
// ancestor the strategy must not walk past.
//
// ok == false with a nil error means the strategy does not apply to e.
type Strategy func(tk *Toolkit, e, boundary *html.Node) (locator string, ok bool, err error)

// Registry is an ordered set of named strategies. The order is the priority
// used by builders; nothing else ranks candidates.
type Registry struct {
	order      []string
	strategies map[string]Strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register appends a strategy at the lowest priority. Registering a name
// twice replaces the function in place: the name keeps its first slot and
// runs once per build.
func (r *Registry) Register(name string, fn Strategy) *Registry {
	if _, dup := r.strategies[name]; !dup {
		r.order = append(r.order, name)
	}
	r.strategies[name] = fn
	return r
}

// Names returns the strategy names in priority order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Len returns the number of registered strategies.
func (r *Registry) Len() int { return len(r.order) }

// Lookup returns the strategy registered under name.
func (r *Registry) Lookup(name string) (Strategy, bool) {
	fn, ok := r.strategies[name]
	return fn, ok
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		order:      slices.Clone(r.order),
		strategies: make(map[string]Strategy, len(r.strategies)),
	}
	for k, v := range r.strategies {
		c.strategies[k] = v
	}
	return c
}

// Reorder returns a copy whose order lists the preferred names first, in the
// preferred order, followed by every other strategy in its current relative
// order. Preferred names that are not registered are ignored.
func (r *Registry) Reorder(preferred []string) *Registry {
	c := r.Clone()
	rank := func(name string) int {
		if i := slices.Index(preferred, name); i >= 0 {
			return i
		}
		return len(preferred)
	}
	slices.SortStableFunc(c.order, func(a, b string) int {
		return rank(a) - rank(b)
	})
	return c
}

// MergeOrder appends to preferred every name it does not list yet and reports
// whether anything was added. preferred itself is not modified.
func MergeOrder(preferred, names []string) ([]string, bool) {
	out := slices.Clone(preferred)
	changed := false
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
			changed = true
		}
	}
	return out, changed
}

// DocumentRegistry returns the strategies for elements inside a document,
// highest priority first.
func DocumentRegistry() *Registry {
	return NewRegistry().
		Register("id", byID).
		Register("link", byLink).
		Register("name", byName).
		Register("css", byCSS).
		Register("xpath:link", xpathLink).
		Register("xpath:img", xpathImg).
		Register("xpath:attributes", xpathAttributes).
		Register("xpath:idRelative", xpathIDRelative).
		Register("xpath:href", xpathHref).
		Register("xpath:position", xpathPosition)
}

// FrameRegistry returns the strategies for frame and iframe elements.
func FrameRegistry() *Registry {
	return NewRegistry().
		Register("xpath:attributes", frameAttributes).
		Register("xpath:position", framePosition)
}
