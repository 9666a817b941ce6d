package locator

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// Window is one browsing context: a parsed document and where it came from.
type Window struct {
	ID       string
	URL      string
	Document *html.Node
}

// NewWindow wraps doc in a Window with a fresh UUIDv7 identifier.
func NewWindow(doc *html.Node, url string) *Window {
	return &Window{
		ID:       uuid.Must(uuid.NewV7()).String(),
		URL:      url,
		Document: doc,
	}
}

// ResolverFactory creates the resolver for a window.
type ResolverFactory func(*Window) Resolver

// Windows caches one Resolver per window, created on first use and kept
// until Detach.
type Windows struct {
	mu        sync.Mutex
	factory   ResolverFactory
	resolvers map[string]Resolver
	opts      []Option
	logger    *slog.Logger
}

// NewWindows creates an empty cache. opts are also passed to the builders it
// constructs.
func NewWindows(factory ResolverFactory, opts ...Option) *Windows {
	o := newOptions(opts)
	return &Windows{
		factory:   factory,
		resolvers: make(map[string]Resolver),
		opts:      opts,
		logger:    o.logger,
	}
}

// Resolver returns the cached resolver of win, creating it if needed.
func (w *Windows) Resolver(win *Window) Resolver {
	w.mu.Lock()
	defer w.mu.Unlock()

	if r, ok := w.resolvers[win.ID]; ok {
		return r
	}
	r := w.factory(win)
	w.resolvers[win.ID] = r
	w.logger.Debug("locator: resolver attached", "window", win.ID, "url", win.URL)
	return r
}

// Builder returns a document-scope builder over win's cached resolver.
func (w *Windows) Builder(win *Window, reg *Registry) *Builder {
	return NewBuilder(reg, w.Resolver(win), w.opts...)
}

// FrameBuilder returns a frame-scope builder over win's cached resolver.
func (w *Windows) FrameBuilder(win *Window, reg *Registry) *FrameBuilder {
	return NewFrameBuilder(reg, w.Resolver(win), w.opts...)
}

// Detach drops the resolver cached for the window ID. It reports whether
// one was cached.
func (w *Windows) Detach(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.resolvers[id]; !ok {
		return false
	}
	delete(w.resolvers, id)
	w.logger.Debug("locator: resolver detached", "window", id)
	return true
}

// Len returns the number of cached resolvers.
func (w *Windows) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.resolvers)
}
