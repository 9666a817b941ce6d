package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/old":
			http.Redirect(w, r, "/page", http.StatusFound)
		case "/page":
			gotUA = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(`<html><body><div id="root"></div></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := New(WithAllowPrivate(true), WithUserAgent("probe/1"))
	res, err := f.Fetch(context.Background(), srv.URL+"/old")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d", res.StatusCode)
	}
	if res.URL != srv.URL+"/page" {
		t.Errorf("final URL = %q", res.URL)
	}
	if res.ContentType != "text/html" {
		t.Errorf("content type = %q", res.ContentType)
	}
	if res.Sufficient {
		t.Error("SPA shell reported sufficient")
	}
	if gotUA != "probe/1" {
		t.Errorf("User-Agent = %q", gotUA)
	}

	res, err = f.Fetch(context.Background(), srv.URL+"/missing")
	if err != nil {
		t.Fatalf("fetch 404: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", res.StatusCode)
	}
}

func TestFetch_MaxBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	_, err := New(WithAllowPrivate(true), WithMaxBody(1024)).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}

func TestFetch_GuardsPrivateTargets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("guarded fetch reached the server")
	}))
	defer srv.Close()

	_, err := New().Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrSSRF) {
		t.Fatalf("err = %v, want ErrSSRF", err)
	}
}

func TestCheck(t *testing.T) {
	if err := New().Check("http://127.0.0.1/"); !errors.Is(err, ErrSSRF) {
		t.Errorf("guarded Check = %v, want ErrSSRF", err)
	}
	if err := New().Check("file:///etc/passwd"); !errors.Is(err, ErrUnsafeScheme) {
		t.Errorf("file scheme Check = %v, want ErrUnsafeScheme", err)
	}
	if err := New(WithAllowPrivate(true)).Check("http://127.0.0.1/"); err != nil {
		t.Errorf("allow-private Check = %v", err)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url  string
		want error
	}{
		{"ftp://example.com/x", ErrUnsafeScheme},
		{"javascript:alert(1)", ErrUnsafeScheme},
		{"http://127.0.0.1:8080/", ErrSSRF},
		{"http://10.1.2.3/", ErrSSRF},
		{"http://192.168.0.10/", ErrSSRF},
		{"http://169.254.169.254/latest/meta-data", ErrSSRF},
		{"http://[::1]/", ErrSSRF},
		{"http://[::ffff:127.0.0.1]/", ErrSSRF},
		{"https://93.184.215.14/", nil},
	}
	for _, tt := range tests {
		err := ValidateURL(tt.url)
		if tt.want == nil {
			if err != nil {
				t.Errorf("ValidateURL(%q) = %v, want nil", tt.url, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("ValidateURL(%q) = %v, want %v", tt.url, err, tt.want)
		}
	}

	if err := ValidateURL("http:///nohost"); err == nil {
		t.Error("expected error for URL without host")
	}
}
