package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// FileSink copies the artifact to one fixed path. Its id is that path.
type FileSink struct {
	Path string
}

func (f FileSink) Store(ctx context.Context, r io.Reader, contentType string) (string, error) {
	path, err := filepath.Abs(f.Path)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	if _, err := io.Copy(out, &contextReader{ctx: ctx, r: r}); err != nil {
		out.Close()
		return "", fmt.Errorf("write output: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close output: %w", err)
	}
	return path, nil
}

func (f FileSink) ResolveURL(ctx context.Context, id string) (string, error) {
	if _, err := os.Stat(id); err != nil {
		return "", fmt.Errorf("output %s: %w", id, ErrNotFound)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(id)}).String(), nil
}
