package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Storage backends.
const (
	StorageLocal   = "local"
	StorageS3      = "s3"
	StorageYouTube = "youtube"
)

// Render controls the ffmpeg subprocess and working directories.
type Render struct {
	FFmpegPath string `toml:"ffmpeg_path"`
	// WorkRoot is where job working directories are created; empty means os.TempDir.
	WorkRoot     string   `toml:"work_root"`
	StageInputs  bool     `toml:"stage_inputs"`
	FetchTimeout Duration `toml:"fetch_timeout"`
	// AllowLocalInputs accepts file:// and bare path inputs. Only the render
	// command sets it; network callers are limited to remote locators.
	AllowLocalInputs bool `toml:"-"`
}

// Logging configures the slog logger. Dir is optional.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Dir    string `toml:"dir"`
}

// S3 configures the S3 artifact backend.
type S3 struct {
	Bucket        string   `toml:"bucket"`
	Prefix        string   `toml:"prefix"`
	Region        string   `toml:"region"`
	Profile       string   `toml:"profile"`
	UsePathStyle  bool     `toml:"use_path_style"`
	PublicBaseURL string   `toml:"public_base_url"`
	PresignTTL    Duration `toml:"presign_ttl"`
}

// Local configures the filesystem artifact backend.
type Local struct {
	Dir     string `toml:"dir"`
	BaseURL string `toml:"base_url"`
}

// YouTube configures the YouTube publishing backend.
type YouTube struct {
	ServiceAccountFile string `toml:"service_account_file"`
	PrivacyStatus      string `toml:"privacy_status"`
	CategoryID         string `toml:"category_id"`
}

// Storage selects and configures the artifact store.
type Storage struct {
	Backend string  `toml:"backend"`
	S3      S3      `toml:"s3"`
	Local   Local   `toml:"local"`
	YouTube YouTube `toml:"youtube"`
}

// Redis configures job status tracking. An empty Addr keeps status in memory.
type Redis struct {
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	TTL      Duration `toml:"ttl"`
}

// Kafka configures the export worker.
type Kafka struct {
	Brokers      []string `toml:"brokers"`
	RequestTopic string   `toml:"request_topic"`
	ResultTopic  string   `toml:"result_topic"`
	GroupID      string   `toml:"group_id"`
}

// Config is the full service configuration.
type Config struct {
	Addr    string  `toml:"addr"`
	Render  Render  `toml:"render"`
	Logging Logging `toml:"logging"`
	Storage Storage `toml:"storage"`
	Redis   Redis   `toml:"redis"`
	Kafka   Kafka   `toml:"kafka"`
}

// Default returns a configuration that runs locally without external services.
func Default() Config {
	return Config{
		Addr: DefaultAddr,
		Render: Render{
			FFmpegPath:   DefaultFFmpegPath,
			StageInputs:  true,
			FetchTimeout: Duration{DefaultFetchTimeout},
		},
		Logging: Logging{Level: "info", Format: "console"},
		Storage: Storage{
			Backend: DefaultStorage,
			S3:      S3{PresignTTL: Duration{DefaultPresignTTL}},
			Local:   Local{Dir: DefaultLocalDir},
			YouTube: YouTube{PrivacyStatus: YouTubePrivacyStatus, CategoryID: YouTubeCategoryID},
		},
		Redis: Redis{TTL: Duration{DefaultJobStateTTL}},
		Kafka: Kafka{
			Brokers:      strings.Split(DefaultKafkaBrokers, ","),
			RequestTopic: DefaultRequestTopic,
			ResultTopic:  DefaultResultTopic,
			GroupID:      DefaultGroupID,
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file, .env and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Addr, "CAPTIONBURN_ADDR")
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		c.Addr = ":" + port
	}

	setString(&c.Render.FFmpegPath, "CAPTIONBURN_FFMPEG")
	setString(&c.Render.WorkRoot, "CAPTIONBURN_WORK_ROOT")
	if err := setBool(&c.Render.StageInputs, "CAPTIONBURN_STAGE_INPUTS"); err != nil {
		return err
	}
	if err := setDuration(&c.Render.FetchTimeout, "CAPTIONBURN_FETCH_TIMEOUT"); err != nil {
		return err
	}

	setString(&c.Logging.Level, "CAPTIONBURN_LOG_LEVEL")
	setString(&c.Logging.Format, "CAPTIONBURN_LOG_FORMAT")
	setString(&c.Logging.Dir, "CAPTIONBURN_LOG_DIR")

	setString(&c.Storage.Backend, "CAPTIONBURN_STORAGE")
	setString(&c.Storage.Local.Dir, "CAPTIONBURN_LOCAL_DIR")
	setString(&c.Storage.Local.BaseURL, "CAPTIONBURN_LOCAL_BASE_URL")
	setString(&c.Storage.S3.Bucket, "S3_BUCKET")
	setString(&c.Storage.S3.Prefix, "S3_PREFIX")
	setString(&c.Storage.S3.Region, "S3_REGION")
	setString(&c.Storage.S3.Profile, "S3_PROFILE")
	setString(&c.Storage.S3.PublicBaseURL, "S3_PUBLIC_BASE_URL")
	if err := setBool(&c.Storage.S3.UsePathStyle, "S3_USE_PATH_STYLE"); err != nil {
		return err
	}
	if err := setDuration(&c.Storage.S3.PresignTTL, "S3_PRESIGN_TTL"); err != nil {
		return err
	}
	setString(&c.Storage.YouTube.ServiceAccountFile, "YOUTUBE_SERVICE_ACCOUNT_FILE")
	setString(&c.Storage.YouTube.PrivacyStatus, "YOUTUBE_PRIVACY_STATUS")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASS")
	if v := strings.TrimSpace(os.Getenv("REDIS_DB")); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Redis.DB = db
	}

	if v := strings.TrimSpace(os.Getenv("KAFKA_BOOTSTRAP_SERVERS")); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	setString(&c.Kafka.RequestTopic, "KAFKA_TOPIC_EXPORT_REQUESTS")
	setString(&c.Kafka.ResultTopic, "KAFKA_TOPIC_EXPORT_RESULTS")
	setString(&c.Kafka.GroupID, "KAFKA_CONSUMER_GROUP_ID")
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageLocal:
		if strings.TrimSpace(c.Storage.Local.Dir) == "" {
			return errors.New("storage.local.dir must be set")
		}
	case StorageS3:
		if strings.TrimSpace(c.Storage.S3.Bucket) == "" {
			return errors.New("storage.s3.bucket is required. Set S3_BUCKET env var")
		}
		if c.Storage.S3.PublicBaseURL == "" && c.Storage.S3.PresignTTL.Duration <= 0 {
			return errors.New("storage.s3.presign_ttl must be positive when no public_base_url is set")
		}
	case StorageYouTube:
		if strings.TrimSpace(c.Storage.YouTube.ServiceAccountFile) == "" {
			return errors.New("storage.youtube.service_account_file is required")
		}
	default:
		return fmt.Errorf("storage.backend: unsupported value %q", c.Storage.Backend)
	}
	if c.Render.FFmpegPath == "" {
		return errors.New("render.ffmpeg_path must be set")
	}
	if c.Render.FetchTimeout.Duration < 0 {
		return errors.New("render.fetch_timeout must not be negative")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	if err := dst.UnmarshalText([]byte(v)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Duration is a time.Duration written as "90s" or "10m" in config files.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
