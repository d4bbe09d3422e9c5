package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the Redis client.
type Options struct {
	Addr        string
	DB          int
	PingTimeout time.Duration
}

// NewClient creates a Redis client without contacting the server.
func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: opts.Addr,
		DB:   opts.DB,
	})
}

// New creates a Redis client and verifies the server answers.
func New(ctx context.Context, opts Options) (*redis.Client, error) {
	client := NewClient(opts)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping %s: %w", opts.Addr, err)
	}

	return client, nil
}
