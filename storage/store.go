package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"captionburn/common"
	"captionburn/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrNotFound is returned when an artifact id is unknown to a store.
var ErrNotFound = errors.New("artifact not found")

// Store persists rendered artifacts and resolves them to URLs.
type Store interface {
	Store(ctx context.Context, r io.Reader, contentType string) (string, error)
	ResolveURL(ctx context.Context, id string) (string, error)
}

// New builds the store selected by cfg.Backend. objects is reused for the S3
// backend when non-nil.
func New(ctx context.Context, cfg config.Storage, objects *common.S3, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Backend {
	case config.StorageLocal:
		return NewLocalStore(cfg.Local.Dir, cfg.Local.BaseURL)
	case config.StorageS3:
		if objects == nil {
			var err error
			objects, err = NewS3Client(ctx, cfg.S3)
			if err != nil {
				return nil, err
			}
		}
		return NewS3Store(objects, cfg.S3, logger), nil
	case config.StorageYouTube:
		return NewYouTubeStore(ctx, cfg.YouTube, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// NewS3Client creates the S3 wrapper described by cfg.
func NewS3Client(ctx context.Context, cfg config.S3) (*common.S3, error) {
	return common.NewS3(ctx, common.S3Config{
		Region:       cfg.Region,
		Profile:      cfg.Profile,
		UsePathStyle: cfg.UsePathStyle,
	})
}

// newArtifactID returns a fresh id whose extension matches contentType.
func newArtifactID(contentType string) string {
	id := uuid.NewString()
	if m := mimetype.Lookup(contentType); m != nil {
		id += m.Extension()
	}
	return id
}
