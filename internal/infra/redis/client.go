package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"

	"github.com/redis/go-redis/v9"
)

const keyNamespace = "storefront"

// Client wraps the redis commands used for rate limiting.
type Client struct {
	raw *redis.Client
}

// 接続してPINGまで確認する
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	return NewFromClient(ctx, redis.NewClient(opts))
}

func NewFromClient(ctx context.Context, raw *redis.Client) (*Client, error) {
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{raw: raw}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.raw.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.raw.Close()
}

// IncrWithTTL increments key and starts its TTL on the first hit (fixed window).
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	key = keyNamespace + ":" + key
	count, err := c.raw.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if count == 1 && ttl > 0 {
		if err := c.raw.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return count, nil
}
