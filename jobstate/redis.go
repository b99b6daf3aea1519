package jobstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"captionburn/config"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces job status keys.
const KeyPrefix = "captionburn:job:"

// RedisClient is the subset of *redis.Client used by RedisStore.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps statuses in Redis so any API replica can answer status queries.
type RedisStore struct {
	client RedisClient
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. Keys expire after ttl.
func NewRedisStore(client RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// DialRedis connects to cfg.Addr and verifies connectivity.
func DialRedis(ctx context.Context, cfg config.Redis) (*RedisStore, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	ttl := cfg.TTL.Duration
	if ttl <= 0 {
		ttl = config.DefaultJobStateTTL
	}
	return NewRedisStore(client, ttl), client, nil
}

func (r *RedisStore) Save(ctx context.Context, status Status) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode job status: %w", err)
	}
	if err := r.client.Set(ctx, KeyPrefix+status.JobID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save job status: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, jobID string) (Status, error) {
	data, err := r.client.Get(ctx, KeyPrefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Status{}, ErrNotFound
	}
	if err != nil {
		return Status{}, fmt.Errorf("load job status: %w", err)
	}

	var status Status
	if err := json.Unmarshal(data, &status); err != nil {
		return Status{}, fmt.Errorf("decode job status: %w", err)
	}
	return status, nil
}
