package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisDefaultChannel is the default pub/sub channel name.
const RedisDefaultChannel = "mco:run_completed"

// RedisDefaultTimeout bounds how long a single PUBLISH may take.
const RedisDefaultTimeout = 5 * time.Second

// RedisConfig configures the Redis pub/sub notifier.
type RedisConfig struct {
	// URL is the Redis connection URL, e.g. redis://[:password@]host:port[/db].
	URL     string
	Channel string
	Timeout time.Duration
}

// Redis publishes a run-completed event via a single PUBLISH, best
// effort: the caller already discards Notify's error, so there's no
// retry loop here.
type Redis struct {
	config RedisConfig
	client *goredis.Client
}

// NewRedis creates a Redis pub/sub notifier.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis notifier requires a URL")
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis notifier: invalid URL: %w", err)
	}
	if cfg.Channel == "" {
		cfg.Channel = RedisDefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = RedisDefaultTimeout
	}
	return &Redis{config: cfg, client: goredis.NewClient(opts)}, nil
}

// newRedisFromClient builds a Redis notifier around an existing client,
// used by tests to point at an in-process fake Redis server.
func newRedisFromClient(client *goredis.Client, cfg RedisConfig) *Redis {
	if cfg.Channel == "" {
		cfg.Channel = RedisDefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = RedisDefaultTimeout
	}
	return &Redis{config: cfg, client: client}
}

// Notify implements Notifier.
func (r *Redis) Notify(ctx context.Context, event RunCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	if err := r.client.Publish(publishCtx, r.config.Channel, body).Err(); err != nil {
		return fmt.Errorf("redis: publish: %w", err)
	}
	return nil
}

// Close implements Notifier.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Notifier = (*Redis)(nil)
