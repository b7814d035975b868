package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect parses redisURL, creates a client, and verifies connectivity with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis %s: %w", opts.Addr, err)
	}

	return client, nil
}

// Open returns a Redis-backed WeatherCache when redisURL is set and an
// in-process one otherwise. The returned close function is never nil.
func Open(ctx context.Context, redisURL string, ttl time.Duration) (WeatherCache, func() error, error) {
	if redisURL == "" {
		return NewMemory(ttl), func() error { return nil }, nil
	}

	client, err := Connect(ctx, redisURL)
	if err != nil {
		return nil, nil, err
	}
	return NewRedis(client, ttl), client.Close, nil
}
