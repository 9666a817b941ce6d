// Package fetcher implements the HTTP-only acquisition path: one GET, no
// browser, no JS. Static pages need nothing more; IsSufficient tells the
// caller when a rendered DOM is worth the cost.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"
)

// DefaultMaxBody caps the bytes read from a response.
const DefaultMaxBody int64 = 10 << 20

// ErrTooLarge is returned when a body exceeds the configured cap.
var ErrTooLarge = errors.New("fetcher: response body too large")

// Result is the outcome of an HTTP fetch.
type Result struct {
	URL         string // after redirects
	HTML        []byte
	StatusCode  int
	ContentType string
	Sufficient  bool // true if no browser rendering is needed
}

// Fetcher performs HTTP GETs of HTML pages.
type Fetcher struct {
	client       *http.Client
	ua           string
	maxBody      int64
	allowPrivate bool
	logger       *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets a custom HTTP client. Its CheckRedirect is replaced unless
// private targets are allowed.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.ua = ua
		}
	}
}

// WithTimeout sets the client timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithMaxBody caps the response body size. Default: DefaultMaxBody.
func WithMaxBody(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// WithAllowPrivate disables the loopback and private network guard.
func WithAllowPrivate(allow bool) Option {
	return func(f *Fetcher) { f.allowPrivate = allow }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New creates a Fetcher with sensible defaults.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: 30 * time.Second},
		ua:      "Mozilla/5.0 (compatible; locsynth/1.0)",
		maxBody: DefaultMaxBody,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	if !f.allowPrivate {
		f.client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("fetcher: stopped after 10 redirects")
			}
			return ValidateURL(req.URL.String())
		}
	}
	return f
}

// Check applies the URL guard this fetcher was configured with. Callers
// handing a URL to another client (a browser) use it to keep the same policy.
func (f *Fetcher) Check(pageURL string) error {
	if f.allowPrivate {
		return nil
	}
	return ValidateURL(pageURL)
}

// Fetch GETs pageURL and reports whether the HTML can be used as is.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	if err := f.Check(pageURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetcher: new request: %w", err)
	}
	req.Header.Set("User-Agent", f.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetcher: do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("fetcher: read body: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, pageURL, f.maxBody)
	}

	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	res := &Result{
		URL:         resp.Request.URL.String(),
		HTML:        body,
		StatusCode:  resp.StatusCode,
		ContentType: ct,
		Sufficient:  IsSufficient(body),
	}

	f.logger.Debug("fetcher: fetched",
		"url", pageURL, "status", resp.StatusCode,
		"size", len(body), "sufficient", res.Sufficient)

	return res, nil
}
