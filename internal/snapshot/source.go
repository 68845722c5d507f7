package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Source produces the latest snapshot.
type Source interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Code)
}

// ErrEmptyLocation is returned when no source location is configured.
var ErrEmptyLocation = errors.New("snapshot source location is empty")

// maxDocumentBytes bounds how much of a response is read.
const maxDocumentBytes = 4 << 20

// HTTPSource fetches the snapshot over HTTP. Every request carries a
// changing "t" query parameter so intermediate caches cannot answer with a
// stale copy.
type HTTPSource struct {
	url    string
	client *http.Client
	now    func() time.Time
}

// NewHTTPSource creates an HTTP source with the given request timeout.
func NewHTTPSource(rawURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		url:    rawURL,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// RequestURL returns the cache-busted URL for a request issued at t.
func (s *HTTPSource) RequestURL(t time.Time) (string, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return "", fmt.Errorf("parse source url: %w", err)
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(t.UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch performs one GET and decodes the body.
func (s *HTTPSource) Fetch(ctx context.Context) (Snapshot, error) {
	target, err := s.RequestURL(s.now())
	if err != nil {
		return Snapshot{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Snapshot{}, &StatusError{URL: s.url, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", s.url, err)
	}
	snap, err := Decode(body)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w", s.url, err)
	}
	return snap, nil
}

// FileSource reads the snapshot from a local file.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading path on every fetch.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Fetch(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	snap, err := Decode(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return snap, nil
}

// NewSource picks an implementation for location: http and https URLs are
// fetched over the network, file URLs and bare paths are read from disk.
func NewSource(location string, timeout time.Duration) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrEmptyLocation
	}
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// No scheme, or a Windows drive letter.
		return NewFileSource(location), nil
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPSource(location, timeout), nil
	case "file":
		return NewFileSource(u.Path), nil
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}

// Swappable lets the location be changed while a controller holds the
// source.
type Swappable struct {
	mu       sync.RWMutex
	src      Source
	location string
	timeout  time.Duration
}

// NewSwappable builds the initial source for location.
func NewSwappable(location string, timeout time.Duration) (*Swappable, error) {
	src, err := NewSource(location, timeout)
	if err != nil {
		return nil, err
	}
	return &Swappable{src: src, location: location, timeout: timeout}, nil
}

// Location returns the configured location.
func (s *Swappable) Location() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}

// Set replaces the underlying source. The old one stays in place when the
// new location is invalid.
func (s *Swappable) Set(location string) error {
	src, err := NewSource(location, s.timeout)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.src = src
	s.location = strings.TrimSpace(location)
	s.mu.Unlock()
	return nil
}

func (s *Swappable) Fetch(ctx context.Context) (Snapshot, error) {
	s.mu.RLock()
	src := s.src
	s.mu.RUnlock()
	return src.Fetch(ctx)
}
