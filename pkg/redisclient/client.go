package redisclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"notification-dispatch/pkg/config"

	"github.com/redis/go-redis/v9"
)

// Client wraps the shared go-redis client.
type Client struct {
	raw *redis.Client
}

// New connects to Redis and verifies the connection with a ping.
func New(cfg config.RedisConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if cfg.EnableTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	raw := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("redisclient: ping %s: %w", cfg.GetRedisAddr(), err)
	}
	return &Client{raw: raw}, nil
}

// Raw exposes the underlying *redis.Client for packages that need
// Pub/Sub or scripting.
func (c *Client) Raw() *redis.Client {
	return c.raw
}

func (c *Client) Close() error {
	return c.raw.Close()
}
