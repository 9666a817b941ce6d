package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Tab is one navigated page.
type Tab struct {
	Page    *rod.Page
	PageURL string

	cleanups []func() error // run by Close before the page closes
}

// OpenTab creates a tab with stealth and resource blocking applied, navigates
// to pageURL and waits for the load event.
func OpenTab(ctx context.Context, b *rod.Browser, cfg Config, pageURL string) (*Tab, error) {
	var page *rod.Page
	var err error
	if cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	tab := &Tab{Page: page, PageURL: pageURL}
	if len(cfg.ResourceBlocking) > 0 {
		router := applyResourceBlocking(page, cfg.ResourceBlocking)
		tab.cleanups = append(tab.cleanups, router.Stop)
	}

	navCtx, cancel := context.WithTimeout(ctx, cfg.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		tab.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	return tab, nil
}

// GetFullDOM serialises the live DOM, doctype included.
func (t *Tab) GetFullDOM(ctx context.Context) ([]byte, error) {
	res, err := t.Page.Context(ctx).Eval(`() => {
		const dt = document.doctype ? new XMLSerializer().serializeToString(document.doctype) : "";
		return dt + document.documentElement.outerHTML;
	}`)
	if err != nil {
		return nil, fmt.Errorf("browser: get DOM: %w", err)
	}
	return []byte(res.Value.Str()), nil
}

// Close stops the tab's request router and closes the page. The first error
// is returned; every step runs regardless.
func (t *Tab) Close() error {
	var first error
	for _, fn := range t.cleanups {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	t.cleanups = nil
	if t.Page != nil {
		if err := t.Page.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
