package recorder

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/hazyhaar/locsynth/dbopen"
	"github.com/hazyhaar/locsynth/recorder/internal/store"
)

const loginPage = `<html><body>
<form id="login" action="/session">
  <input name="user" type="text">
  <input name="pass" type="password">
  <input type="submit" value="Go">
</form>
<a href="/help">Need help?</a>
<iframe name="ads" src="/ads.html"></iframe>
</body></html>`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRenderer returns fixed HTML and counts calls.
type fakeRenderer struct {
	mu     sync.Mutex
	html   string
	err    error
	calls  []string
	closed bool
}

func (f *fakeRenderer) Render(_ context.Context, pageURL string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pageURL)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.html), nil
}

func (f *fakeRenderer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func memStore(t *testing.T) *store.Store {
	t.Helper()
	return &store.Store{DB: dbopen.OpenMemory(t, dbopen.WithSchema(store.Schema))}
}

func newTestRecorder(t *testing.T, cfg *Config, opts ...Option) *Recorder {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	r, err := New(context.Background(), cfg, append([]Option{WithLogger(quietLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}
