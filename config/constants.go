package config

import "time"

// Render Constants
const (
	// AudioCodec re-encodes replacement audio tracks
	AudioCodec = "aac"

	// DefaultOutputFormat is used when a config does not name one for exports
	DefaultOutputFormat = "mp4"

	// SubtitleFileName is the subtitle document written into each job's working directory
	SubtitleFileName = "captions.srt"

	// OutputBaseName is the artifact file name (without extension) inside the working directory
	OutputBaseName = "output"

	// WorkDirPrefix names job working directories; a random suffix is appended
	WorkDirPrefix = "transcode-"
)

// Caption Style Constants
const (
	// CaptionOutline is the outline width applied to every caption
	CaptionOutline = 4

	// CaptionShadow disables the drop shadow
	CaptionShadow = 0

	// CaptionBorderStyle selects outline-and-shadow rendering
	CaptionBorderStyle = 0
)

// Service Defaults
const (
	DefaultAddr         = ":3001"
	DefaultFFmpegPath   = "ffmpeg"
	DefaultFetchTimeout = 10 * time.Minute
	DefaultPresignTTL   = 24 * time.Hour
	DefaultJobStateTTL  = 24 * time.Hour
	DefaultStorage      = "local"
	DefaultLocalDir     = "output"
)

// Kafka Defaults
const (
	DefaultKafkaBrokers = "localhost:9093"
	DefaultRequestTopic = "caption-export-requests"
	DefaultResultTopic  = "caption-export-results"
	DefaultGroupID      = "captionburn-consumer-group"
)

// YouTube Constants
const (
	// YouTubeCategoryID for People & Blogs
	YouTubeCategoryID = "22"

	// YouTubePrivacyStatus sets video visibility
	YouTubePrivacyStatus = "private"
)
