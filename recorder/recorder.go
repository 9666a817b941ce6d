// Package recorder serves locator synthesis over pages supplied as HTML or
// fetched by URL. It owns the strategy registries, their persisted priority
// order and the page acquisition path (plain HTTP, then headless Chrome).
package recorder

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/hazyhaar/locsynth/internal/dom"
	"github.com/hazyhaar/locsynth/locator"
	"github.com/hazyhaar/locsynth/recorder/internal/browser"
	"github.com/hazyhaar/locsynth/recorder/internal/fetcher"
	"github.com/hazyhaar/locsynth/recorder/internal/store"
	"github.com/hazyhaar/locsynth/resolve"
)

// Scopes accepted by Locate and SetOrder.
const (
	ScopeDocument = "document"
	ScopeFrame    = "frame"
)

// Renderer produces the live DOM of a URL.
type Renderer interface {
	Render(ctx context.Context, pageURL string) ([]byte, error)
	Close() error
}

// LocateRequest asks for the locators of one element.
type LocateRequest struct {
	HTML   string `json:"html,omitempty"`
	URL    string `json:"url,omitempty"`
	Target string `json:"target"`          // any locator form the resolver accepts
	Scope  string `json:"scope,omitempty"` // document (default) or frame
	Render bool   `json:"render,omitempty"`
}

// LocateResult holds the verified candidates, best first.
type LocateResult struct {
	Window     string              `json:"window"`
	URL        string              `json:"url,omitempty"`
	Scope      string              `json:"scope"`
	Locator    string              `json:"locator"`
	Candidates []locator.Candidate `json:"candidates"`
	Rendered   bool                `json:"rendered"`
}

// StrategyOrder is the current priority order of both scopes.
type StrategyOrder struct {
	Document []string `json:"document"`
	Frame    []string `json:"frame"`
}

// Recorder is the locator synthesis service.
type Recorder struct {
	cfg      *Config
	logger   *slog.Logger
	store    *store.Store
	fetcher  *fetcher.Fetcher
	renderer Renderer
	windows  *locator.Windows

	mu       sync.RWMutex
	docReg   *locator.Registry
	frameReg *locator.Registry
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithRenderer replaces the headless Chrome renderer.
func WithRenderer(rd Renderer) Option {
	return func(r *Recorder) { r.renderer = rd }
}

// WithStore uses an already opened preference store instead of cfg.DBPath.
func WithStore(s *store.Store) Option {
	return func(r *Recorder) { r.store = s }
}

// New builds a Recorder: it opens the preference store when cfg.DBPath is
// set, applies the configured strategy order and then the stored one.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Recorder, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	r := &Recorder{
		cfg:      cfg,
		logger:   slog.Default(),
		docReg:   locator.DocumentRegistry(),
		frameReg: locator.FrameRegistry(),
	}
	for _, o := range opts {
		o(r)
	}

	r.fetcher = fetcher.New(
		fetcher.WithUserAgent(cfg.Fetch.UserAgent),
		fetcher.WithTimeout(cfg.Fetch.Timeout),
		fetcher.WithMaxBody(cfg.Fetch.MaxBody),
		fetcher.WithAllowPrivate(cfg.Fetch.AllowPrivate),
		fetcher.WithLogger(r.logger),
	)
	if r.renderer == nil && cfg.Browser.Enabled {
		r.renderer = browser.NewManager(browser.Config{
			RemoteURL:        cfg.Browser.Remote,
			Stealth:          cfg.Browser.Stealth,
			ResourceBlocking: cfg.Browser.ResourceBlocking,
			NavTimeout:       cfg.Browser.NavTimeout,
			Logger:           r.logger,
		})
	}
	r.windows = locator.NewWindows(func(w *locator.Window) locator.Resolver {
		return resolve.New(w.Document, resolve.WithLogger(r.logger))
	}, locator.WithLogger(r.logger))

	if r.store == nil && cfg.DBPath != "" {
		s, err := store.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("recorder: %w", err)
		}
		r.store = s
	}

	r.docReg = r.applyOrder(r.docReg, ScopeDocument, cfg.Strategies.Order)
	r.frameReg = r.applyOrder(r.frameReg, ScopeFrame, cfg.Strategies.FrameOrder)
	if err := r.loadStored(ctx); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the browser and the preference store.
func (r *Recorder) Close() error {
	if r.renderer != nil {
		if err := r.renderer.Close(); err != nil {
			r.logger.Warn("recorder: close renderer", "error", err)
		}
	}
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

// Locate acquires the document, resolves the target element and returns
// every verified locator for it.
func (r *Recorder) Locate(ctx context.Context, req LocateRequest) (*LocateResult, error) {
	scope, err := normaliseScope(req.Scope)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Target) == "" {
		return nil, fmt.Errorf("%w: target is required", ErrInvalidRequest)
	}

	doc, pageURL, rendered, err := r.acquire(ctx, req)
	if err != nil {
		return nil, err
	}

	win := locator.NewWindow(doc, pageURL)
	defer r.windows.Detach(win.ID)

	target := r.windows.Resolver(win).Resolve(req.Target)
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, req.Target)
	}

	docReg, frameReg := r.registries()
	var cands []locator.Candidate
	switch scope {
	case ScopeFrame:
		if tag := dom.Tag(target); tag != "frame" && tag != "iframe" {
			return nil, fmt.Errorf("%w: <%s>", ErrNotFrame, tag)
		}
		cands = r.windows.FrameBuilder(win, frameReg).BuildAll(target)
	default:
		cands = r.windows.Builder(win, docReg).BuildAll(target)
	}

	res := &LocateResult{
		Window:     win.ID,
		URL:        pageURL,
		Scope:      scope,
		Locator:    locator.LocatorDetectionFailed,
		Candidates: cands,
		Rendered:   rendered,
	}
	if res.Candidates == nil {
		res.Candidates = []locator.Candidate{}
	}
	if len(cands) > 0 {
		res.Locator = cands[0].Locator
	}

	r.logger.Debug("recorder: located",
		"window", win.ID, "scope", scope, "target", req.Target,
		"candidates", len(cands), "rendered", rendered)
	return res, nil
}

// Strategies returns the current order of both scopes.
func (r *Recorder) Strategies() StrategyOrder {
	docReg, frameReg := r.registries()
	return StrategyOrder{Document: docReg.Names(), Frame: frameReg.Names()}
}

// SetOrder moves the named strategies of scope to the front, in the given
// order, and persists the resulting full order. Unknown names are rejected.
func (r *Recorder) SetOrder(ctx context.Context, scope string, names []string) ([]string, error) {
	scope, err := normaliseScope(scope)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.docReg
	if scope == ScopeFrame {
		cur = r.frameReg
	}
	for _, n := range names {
		if _, ok := cur.Lookup(n); !ok {
			return nil, fmt.Errorf("%w: %s (scope %s)", locator.ErrUnknownStrategy, n, scope)
		}
	}

	next := cur.Reorder(names)
	full := next.Names()
	if r.store != nil {
		if err := r.store.SaveOrder(ctx, scope, full); err != nil {
			return nil, fmt.Errorf("recorder: %w", err)
		}
	}
	if scope == ScopeFrame {
		r.frameReg = next
	} else {
		r.docReg = next
	}

	r.logger.Info("recorder: strategy order changed", "scope", scope, "order", full)
	return full, nil
}

func (r *Recorder) registries() (doc, frame *locator.Registry) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.docReg, r.frameReg
}

// applyOrder reorders reg by a configured preference, dropping unknown names.
func (r *Recorder) applyOrder(reg *locator.Registry, scope string, preferred []string) *locator.Registry {
	if len(preferred) == 0 {
		return reg
	}
	var known []string
	for _, n := range preferred {
		if _, ok := reg.Lookup(n); ok {
			known = append(known, n)
		} else {
			r.logger.Warn("recorder: unknown strategy in order", "scope", scope, "strategy", n)
		}
	}
	return reg.Reorder(known)
}

// loadStored applies stored orders over the configured ones. Strategies added
// since the order was saved are appended and the order is saved again.
func (r *Recorder) loadStored(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	for _, scope := range []string{ScopeDocument, ScopeFrame} {
		stored, err := r.store.LoadOrder(ctx, scope)
		if err != nil {
			return fmt.Errorf("recorder: %w", err)
		}
		if len(stored) == 0 {
			continue
		}

		reg := r.docReg
		if scope == ScopeFrame {
			reg = r.frameReg
		}
		reg = r.applyOrder(reg, scope, stored)
		if _, changed := locator.MergeOrder(stored, reg.Names()); changed {
			if err := r.store.SaveOrder(ctx, scope, reg.Names()); err != nil {
				return fmt.Errorf("recorder: %w", err)
			}
		}
		if scope == ScopeFrame {
			r.frameReg = reg
		} else {
			r.docReg = reg
		}
	}
	return nil
}

// acquire returns the parsed document, its URL and whether it was rendered.
func (r *Recorder) acquire(ctx context.Context, req LocateRequest) (*html.Node, string, bool, error) {
	if req.HTML != "" {
		doc, err := html.Parse(strings.NewReader(req.HTML))
		if err != nil {
			return nil, "", false, fmt.Errorf("%w: parse html: %v", ErrInvalidRequest, err)
		}
		return doc, req.URL, false, nil
	}
	if req.URL == "" {
		return nil, "", false, ErrNoDocument
	}
	if req.Render && r.renderer == nil {
		return nil, "", false, ErrRenderUnavailable
	}
	if err := r.fetcher.Check(req.URL); err != nil {
		return nil, "", false, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	if req.Render {
		body, err := r.renderer.Render(ctx, req.URL)
		if err != nil {
			return nil, "", false, fmt.Errorf("%w: render %s: %v", ErrFetch, req.URL, err)
		}
		doc, err := html.Parse(bytes.NewReader(body))
		if err != nil {
			return nil, "", false, fmt.Errorf("%w: parse %s: %v", ErrFetch, req.URL, err)
		}
		return doc, req.URL, true, nil
	}

	res, err := r.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, "", false, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if res.StatusCode >= 400 {
		return nil, "", false, fmt.Errorf("%w: %s: status %d", ErrFetch, req.URL, res.StatusCode)
	}

	body, rendered := res.HTML, false
	if !res.Sufficient && r.renderer != nil {
		out, err := r.renderer.Render(ctx, res.URL)
		if err != nil {
			r.logger.Warn("recorder: render failed, using fetched html", "url", res.URL, "error", err)
		} else {
			body, rendered = out, true
		}
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, "", false, fmt.Errorf("%w: parse %s: %v", ErrFetch, res.URL, err)
	}
	return doc, res.URL, rendered, nil
}

func normaliseScope(scope string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(scope)) {
	case "", ScopeDocument:
		return ScopeDocument, nil
	case ScopeFrame:
		return ScopeFrame, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}
}
