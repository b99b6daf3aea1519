package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// ErrUnsupportedLocator is returned for locator schemes the fetcher cannot read.
var ErrUnsupportedLocator = errors.New("unsupported locator scheme")

// ObjectGetter reads objects from a bucket.
type ObjectGetter interface {
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Fetcher opens input locators: http(s) URLs, s3://bucket/key and local paths.
type Fetcher struct {
	client  *http.Client
	objects ObjectGetter
}

// NewFetcher creates a fetcher. objects may be nil when s3 locators are not used.
func NewFetcher(client *http.Client, objects ObjectGetter) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, objects: objects}
}

// Fetch opens locator for reading. Caller must Close the result.
func (f *Fetcher) Fetch(ctx context.Context, locator string) (io.ReadCloser, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return nil, fmt.Errorf("parse locator %q: %w", locator, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, locator)
	case "s3":
		if f.objects == nil {
			return nil, fmt.Errorf("fetch %s: no s3 client configured", locator)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("fetch %s: expected s3://bucket/key", locator)
		}
		return f.objects.Get(ctx, u.Host, key)
	case "file":
		return openLocal(u.Path)
	case "":
		return openLocal(locator)
	default:
		return nil, fmt.Errorf("fetch %s: %w", locator, ErrUnsupportedLocator)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, locator string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", locator, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", locator, resp.Status)
	}
	return resp.Body, nil
}

func openLocal(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return file, nil
}
