package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"captionburn/config"
)

// ObjectStore is the subset of common.S3 used by S3Store.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// S3Store keeps artifacts under a bucket prefix.
type S3Store struct {
	objects       ObjectStore
	bucket        string
	prefix        string
	publicBaseURL string
	ttl           time.Duration
	logger        *slog.Logger
}

// NewS3Store creates a store on top of an S3 client.
func NewS3Store(objects ObjectStore, cfg config.S3, logger *slog.Logger) *S3Store {
	prefix := cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	ttl := cfg.PresignTTL.Duration
	if ttl <= 0 {
		ttl = config.DefaultPresignTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Store{
		objects:       objects,
		bucket:        cfg.Bucket,
		prefix:        prefix,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		ttl:           ttl,
		logger:        logger,
	}
}

func (s *S3Store) Store(ctx context.Context, r io.Reader, contentType string) (string, error) {
	id := newArtifactID(contentType)

	var size int64
	if file, ok := r.(*os.File); ok {
		if info, err := file.Stat(); err == nil {
			size = info.Size()
		}
	}

	if err := s.objects.Put(ctx, s.bucket, s.prefix+id, r, size, contentType); err != nil {
		return "", err
	}
	s.logger.Info("artifact uploaded", slog.String("bucket", s.bucket), slog.String("key", s.prefix+id))
	return id, nil
}

func (s *S3Store) ResolveURL(ctx context.Context, id string) (string, error) {
	key := s.prefix + id
	ok, err := s.objects.Exists(ctx, s.bucket, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("s3://%s/%s: %w", s.bucket, key, ErrNotFound)
	}

	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + (&url.URL{Path: key}).EscapedPath(), nil
	}
	return s.objects.PresignGet(ctx, s.bucket, key, s.ttl)
}
