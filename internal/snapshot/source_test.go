package snapshot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestHTTPSourceFetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("t")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"localIP":"10.0.0.5","networkInterface":"eth0","lastUpdate":"now","history":[]}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/data.json", time.Second)
	src.now = func() time.Time { return time.UnixMilli(1714572185000) }

	s, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if s.LocalIP != "10.0.0.5" {
		t.Fatalf("unexpected ip %q", s.LocalIP)
	}
	if gotQuery != "1714572185000" {
		t.Fatalf("expected cache-busting parameter, got %q", gotQuery)
	}
}

func TestHTTPSourceRequestURLChangesOverTime(t *testing.T) {
	src := NewHTTPSource("http://example.invalid/data.json?x=1", time.Second)
	a, err := src.RequestURL(time.UnixMilli(1000))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := src.RequestURL(time.UnixMilli(2000))
	if a == b {
		t.Fatalf("expected distinct URLs, got %q twice", a)
	}
	if !strings.Contains(a, "x=1") || !strings.Contains(a, "t=1000") {
		t.Fatalf("unexpected url %q", a)
	}
}

func TestHTTPSourceNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, time.Second).Fetch(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("expected StatusError 404, got %v", err)
	}
}

func TestHTTPSourceNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	if _, err := NewHTTPSource(addr, time.Second).Fetch(context.Background()); err == nil {
		t.Fatal("expected error from closed server")
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	if err := os.WriteFile(path, []byte(`{"localIP":"192.168.1.5"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileSource(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if s.LocalIP != "192.168.1.5" || s.NetworkInterface != Unreachable {
		t.Fatalf("unexpected snapshot %+v", s)
	}

	if _, err := NewFileSource(filepath.Join(dir, "missing.json")).Fetch(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewSourceSelectsImplementation(t *testing.T) {
	cases := map[string]string{
		"data.json":                     "file",
		"../data.json":                  "file",
		"file:///srv/ip/data.json":      "file",
		"http://host/data.json":         "http",
		"https://user.github.io/x.json": "http",
	}
	for loc, want := range cases {
		src, err := NewSource(loc, time.Second)
		if err != nil {
			t.Fatalf("%s: %v", loc, err)
		}
		var got string
		switch src.(type) {
		case *FileSource:
			got = "file"
		case *HTTPSource:
			got = "http"
		}
		if got != want {
			t.Errorf("%s: got %s want %s", loc, got, want)
		}
	}
	if _, err := NewSource("ftp://host/data.json", time.Second); err == nil {
		t.Error("expected unsupported scheme error")
	}
	if _, err := NewSource("  ", time.Second); !errors.Is(err, ErrEmptyLocation) {
		t.Errorf("expected ErrEmptyLocation, got %v", err)
	}
}

func TestSwappableKeepsOldSourceOnInvalidLocation(t *testing.T) {
	sw, err := NewSwappable("data.json", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if err := sw.Set("gopher://nope"); err == nil {
		t.Fatal("expected error")
	}
	if sw.Location() != "data.json" {
		t.Fatalf("location changed to %q", sw.Location())
	}
	if err := sw.Set("http://host/data.json"); err != nil {
		t.Fatal(err)
	}
	if sw.Location() != "http://host/data.json" {
		t.Fatalf("location not updated: %q", sw.Location())
	}
}
