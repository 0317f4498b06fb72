// Package cache provides the Redis access layer: book read-through cache
// and token-bucket rate limiting.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	poolSize        = 10
	minIdleConns    = 2
	poolTimeout     = 4 * time.Second
	connMaxIdleTime = 5 * time.Minute

	// Book lookups fall back to Postgres, so Redis calls must stay short.
	readTimeout  = 500 * time.Millisecond
	writeTimeout = 500 * time.Millisecond

	pingTimeout = 3 * time.Second
)

// Cache provides Redis cache access methods.
type Cache struct {
	client *redis.Client
}

// New connects to redisURL (redis://[:password@]host:port/db) and verifies
// the connection with a ping.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = poolSize
	opt.MinIdleConns = minIdleConns
	opt.PoolTimeout = poolTimeout
	opt.ConnMaxIdleTime = connMaxIdleTime
	opt.ReadTimeout = readTimeout
	opt.WriteTimeout = writeTimeout

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client for the activity stream publisher.
func (c *Cache) Client() *redis.Client {
	return c.client
}
