package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Source yields CSV bytes. ID identifies the source for load idempotence:
// loading a source whose ID matches the loaded one is a no-op.
type Source interface {
	ID() string
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads a local file.
type FileSource struct {
	Path string
}

func (f FileSource) ID() string   { return f.Path }
func (f FileSource) Name() string { return filepath.Base(f.Path) }

func (f FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// DefaultFetchTimeout bounds a URL fetch when neither the context nor the
// client sets a deadline.
const DefaultFetchTimeout = 30 * time.Second

// URLSource downloads a CSV over HTTP(S).
type URLSource struct {
	Label   string
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

func (u URLSource) ID() string { return u.URL }

func (u URLSource) Name() string {
	if u.Label != "" {
		return u.Label
	}
	return u.URL
}

func (u URLSource) Open(ctx context.Context) (io.ReadCloser, error) {
	client := u.Client
	if client == nil {
		timeout := u.Timeout
		if timeout <= 0 {
			timeout = DefaultFetchTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("fetch: unexpected status %s: %s", resp.Status, string(b))
	}
	return resp.Body, nil
}

// ReaderSource wraps an in-memory reader, e.g. an upload. Key defaults to
// Label when empty.
type ReaderSource struct {
	Key    string
	Label  string
	Reader io.Reader
}

func (r ReaderSource) ID() string {
	if r.Key != "" {
		return r.Key
	}
	return r.Label
}

func (r ReaderSource) Name() string { return r.Label }

func (r ReaderSource) Open(_ context.Context) (io.ReadCloser, error) {
	if r.Reader == nil {
		return nil, fmt.Errorf("nil reader")
	}
	return io.NopCloser(r.Reader), nil
}
