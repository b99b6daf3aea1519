package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"captionburn/config"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// DefaultVideoTitle names uploads when no metadata is supplied.
const DefaultVideoTitle = "Captioned export"

// VideoMetadata describes an uploaded video.
type VideoMetadata struct {
	Title       string
	Description string
	Tags        []string
}

// YouTubeStore publishes artifacts as YouTube videos. Ids are YouTube video ids.
type YouTubeStore struct {
	service    *youtube.Service
	privacy    string
	categoryID string
	metadata   VideoMetadata
	logger     *slog.Logger
}

// NewYouTubeStore authenticates with a service account file.
func NewYouTubeStore(ctx context.Context, cfg config.YouTube, logger *slog.Logger) (*YouTubeStore, error) {
	data, err := os.ReadFile(cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file: %w", err)
	}
	jwt, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account: %w", err)
	}
	return NewYouTubeStoreWithOptions(ctx, cfg, logger, option.WithHTTPClient(jwt.Client(ctx)))
}

// NewYouTubeStoreWithOptions builds the store from explicit client options.
func NewYouTubeStoreWithOptions(ctx context.Context, cfg config.YouTube, logger *slog.Logger, opts ...option.ClientOption) (*YouTubeStore, error) {
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	privacy := cfg.PrivacyStatus
	if privacy == "" {
		privacy = config.YouTubePrivacyStatus
	}
	category := cfg.CategoryID
	if category == "" {
		category = config.YouTubeCategoryID
	}
	return &YouTubeStore{
		service:    service,
		privacy:    privacy,
		categoryID: category,
		metadata:   VideoMetadata{Title: DefaultVideoTitle},
		logger:     logger,
	}, nil
}

// WithMetadata returns a copy of the store that uploads with md.
func (y *YouTubeStore) WithMetadata(md VideoMetadata) *YouTubeStore {
	clone := *y
	if md.Title == "" {
		md.Title = DefaultVideoTitle
	}
	if len(md.Title) > 100 {
		md.Title = md.Title[:97] + "..."
	}
	clone.metadata = md
	return &clone
}

func (y *YouTubeStore) Store(ctx context.Context, r io.Reader, contentType string) (string, error) {
	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       y.metadata.Title,
			Description: y.metadata.Description,
			Tags:        y.metadata.Tags,
			CategoryId:  y.categoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           y.privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	call := y.service.Videos.Insert([]string{"snippet", "status"}, video).
		Media(r, googleapi.ContentType(contentType)).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}
	y.logger.Info("video uploaded", slog.String("video_id", resp.Id), slog.String("privacy", y.privacy))
	return resp.Id, nil
}

func (y *YouTubeStore) ResolveURL(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrNotFound
	}
	return "https://www.youtube.com/watch?v=" + id, nil
}
