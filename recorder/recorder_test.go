package recorder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/hazyhaar/locsynth/locator"
)

func TestLocate_HTML(t *testing.T) {
	r := newTestRecorder(t, nil)
	ctx := context.Background()

	res, err := r.Locate(ctx, LocateRequest{HTML: loginPage, Target: "name=pass"})
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if res.Scope != ScopeDocument {
		t.Errorf("scope = %q", res.Scope)
	}
	if res.Locator != "name=pass" {
		t.Errorf("locator = %q, want name=pass", res.Locator)
	}
	if res.Window == "" {
		t.Error("empty window id")
	}
	want := []string{"name", "css", "xpath:attributes", "xpath:idRelative", "xpath:position"}
	var got []string
	for _, c := range res.Candidates {
		got = append(got, c.Strategy)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("strategies (-want +got):\n%s", diff)
	}
	if r.windows.Len() != 0 {
		t.Errorf("window not detached: %d cached", r.windows.Len())
	}
}

func TestLocate_Frame(t *testing.T) {
	r := newTestRecorder(t, nil)
	ctx := context.Background()

	res, err := r.Locate(ctx, LocateRequest{HTML: loginPage, Target: "//iframe", Scope: "frame"})
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	want := []locator.Candidate{
		{Locator: "//iframe[contains(@name,'ads')]", Strategy: "xpath:attributes"},
		{Locator: "//body/iframe", Strategy: "xpath:position"},
	}
	if diff := cmp.Diff(want, res.Candidates); diff != "" {
		t.Errorf("frame candidates (-want +got):\n%s", diff)
	}

	_, err = r.Locate(ctx, LocateRequest{HTML: loginPage, Target: "id=login", Scope: "frame"})
	if !errors.Is(err, ErrNotFrame) {
		t.Errorf("err = %v, want ErrNotFrame", err)
	}
}

func TestLocate_Errors(t *testing.T) {
	r := newTestRecorder(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  LocateRequest
		want error
	}{
		{"no target", LocateRequest{HTML: loginPage}, ErrInvalidRequest},
		{"no document", LocateRequest{Target: "id=x"}, ErrNoDocument},
		{"missing target", LocateRequest{HTML: loginPage, Target: "id=nope"}, ErrTargetNotFound},
		{"bad scope", LocateRequest{HTML: loginPage, Target: "id=login", Scope: "window"}, ErrUnknownScope},
		{"render disabled", LocateRequest{URL: "https://example.com/", Target: "id=x", Render: true}, ErrRenderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Locate(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLocate_NoCandidates(t *testing.T) {
	r := newTestRecorder(t, nil)
	reg := locator.NewRegistry().Register("never", func(*locator.Toolkit, *html.Node, *html.Node) (string, bool, error) {
		return "", false, nil
	})
	r.docReg = reg

	res, err := r.Locate(context.Background(), LocateRequest{HTML: loginPage, Target: "id=login"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Locator != locator.LocatorDetectionFailed {
		t.Errorf("locator = %q", res.Locator)
	}
	if res.Candidates == nil || len(res.Candidates) != 0 {
		t.Errorf("candidates = %#v, want empty non-nil", res.Candidates)
	}
}

func TestLocate_URL(t *testing.T) {
	static := `<html><body><main><h1 id="title">Docs</h1><p>` +
		strings.Repeat("Plenty of server-rendered prose here. ", 20) + `</p></main></body></html>`
	shell := `<html><head><title>App</title></head><body><div id="root"></div>` +
		`<script src="/app.js"></script>` + strings.Repeat(" ", 300) + `</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/static":
			w.Write([]byte(static))
		case "/spa":
			w.Write([]byte(shell))
		default:
			http.NotFound(w, req)
		}
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Fetch.AllowPrivate = true
	fr := &fakeRenderer{html: `<html><body><div id="root"><button id="go">Go</button></div></body></html>`}
	r := newTestRecorder(t, cfg, WithRenderer(fr))
	ctx := context.Background()

	res, err := r.Locate(ctx, LocateRequest{URL: srv.URL + "/static", Target: "id=title"})
	if err != nil {
		t.Fatalf("static: %v", err)
	}
	if res.Rendered || res.Locator != "id=title" || res.URL != srv.URL+"/static" {
		t.Errorf("static result = %+v", res)
	}
	if len(fr.calls) != 0 {
		t.Errorf("static page was rendered: %v", fr.calls)
	}

	res, err = r.Locate(ctx, LocateRequest{URL: srv.URL + "/spa", Target: "id=go"})
	if err != nil {
		t.Fatalf("spa: %v", err)
	}
	if !res.Rendered || res.Locator != "id=go" {
		t.Errorf("spa result = %+v", res)
	}

	res, err = r.Locate(ctx, LocateRequest{URL: srv.URL + "/static", Target: "id=go", Render: true})
	if err != nil {
		t.Fatalf("forced render: %v", err)
	}
	if !res.Rendered {
		t.Error("forced render not rendered")
	}

	_, err = r.Locate(ctx, LocateRequest{URL: srv.URL + "/gone", Target: "id=x"})
	if !errors.Is(err, ErrFetch) {
		t.Errorf("404 err = %v, want ErrFetch", err)
	}

	fr.err = errors.New("chrome died")
	res, err = r.Locate(ctx, LocateRequest{URL: srv.URL + "/spa", Target: "id=root"})
	if err != nil {
		t.Fatalf("render failure should fall back: %v", err)
	}
	if res.Rendered {
		t.Error("fallback reported rendered")
	}

	r.Close()
	if !fr.closed {
		t.Error("renderer not closed")
	}
}

func TestLocate_RenderGuardsPrivateTargets(t *testing.T) {
	fr := &fakeRenderer{html: loginPage}
	r := newTestRecorder(t, nil, WithRenderer(fr))

	for _, u := range []string{
		"http://127.0.0.1:6379/",
		"http://169.254.169.254/latest/meta-data/",
		"file:///etc/passwd",
	} {
		res, err := r.Locate(context.Background(), LocateRequest{URL: u, Target: "id=login", Render: true})
		if !errors.Is(err, ErrFetch) {
			t.Errorf("%s: err = %v (result %+v), want ErrFetch", u, err, res)
		}
	}
	if len(fr.calls) != 0 {
		t.Errorf("renderer reached: %v", fr.calls)
	}
}

func TestSetOrder(t *testing.T) {
	s := memStore(t)
	r := newTestRecorder(t, nil, WithStore(s))
	ctx := context.Background()

	order, err := r.SetOrder(ctx, "document", []string{"css", "xpath:position"})
	if err != nil {
		t.Fatalf("SetOrder: %v", err)
	}
	if order[0] != "css" || order[1] != "xpath:position" || order[2] != "id" || len(order) != 10 {
		t.Errorf("order = %v", order)
	}
	if diff := cmp.Diff(order, r.Strategies().Document); diff != "" {
		t.Errorf("Strategies mismatch (-want +got):\n%s", diff)
	}
	stored, _ := s.LoadOrder(ctx, ScopeDocument)
	if diff := cmp.Diff(order, stored); diff != "" {
		t.Errorf("stored (-want +got):\n%s", diff)
	}

	res, err := r.Locate(ctx, LocateRequest{HTML: loginPage, Target: "id=login"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Candidates[0].Strategy != "css" {
		t.Errorf("first candidate = %+v, want css", res.Candidates[0])
	}

	if _, err := r.SetOrder(ctx, "document", []string{"nope"}); !errors.Is(err, locator.ErrUnknownStrategy) {
		t.Errorf("unknown strategy err = %v", err)
	}
	if _, err := r.SetOrder(ctx, "page", nil); !errors.Is(err, ErrUnknownScope) {
		t.Errorf("unknown scope err = %v", err)
	}
	if _, err := r.SetOrder(ctx, "frame", []string{"id"}); !errors.Is(err, locator.ErrUnknownStrategy) {
		t.Errorf("document strategy in frame scope: err = %v", err)
	}
}

func TestNew_OrderPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.DBPath = path
	cfg.Strategies.Order = []string{"name", "bogus", "link"}
	cfg.Strategies.FrameOrder = []string{"xpath:position"}

	r := newTestRecorder(t, cfg)
	got := r.Strategies()
	if got.Document[0] != "name" || got.Document[1] != "link" || got.Document[2] != "id" {
		t.Errorf("configured document order = %v", got.Document)
	}
	if diff := cmp.Diff([]string{"xpath:position", "xpath:attributes"}, got.Frame); diff != "" {
		t.Errorf("configured frame order (-want +got):\n%s", diff)
	}
	if _, err := r.SetOrder(ctx, "document", []string{"xpath:href"}); err != nil {
		t.Fatal(err)
	}
	r.Close()

	// Stored order wins over the configuration on the next start.
	r = newTestRecorder(t, cfg)
	defer r.Close()
	if first := r.Strategies().Document[0]; first != "xpath:href" {
		t.Errorf("first document strategy after restart = %q, want xpath:href", first)
	}
	if first := r.Strategies().Frame[0]; first != "xpath:position" {
		t.Errorf("frame order without stored preference = %q", first)
	}
}

func TestNew_StoredOrderGainsNewStrategies(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()
	if err := s.SaveOrder(ctx, ScopeDocument, []string{"css", "id", "retired"}); err != nil {
		t.Fatal(err)
	}

	r := newTestRecorder(t, nil, WithStore(s))
	doc := r.Strategies().Document
	if doc[0] != "css" || doc[1] != "id" || len(doc) != 10 {
		t.Errorf("document order = %v", doc)
	}
	stored, _ := s.LoadOrder(ctx, ScopeDocument)
	if diff := cmp.Diff(doc, stored); diff != "" {
		t.Errorf("merged order not saved (-want +got):\n%s", diff)
	}
}
