// Package cache keeps the last known weather observation per location so
// that reads can fall back to it while the weather provider is down.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/flysen-catalog/internal/catalog"
)

const defaultTTL = time.Hour

// WeatherCache stores weather observations keyed by coordinates.
type WeatherCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, lat, lon float64) (*catalog.WeatherInfo, error)
	Set(ctx context.Context, lat, lon float64, info *catalog.WeatherInfo) error
}

// key rounds coordinates to two decimals, roughly one kilometre.
func key(lat, lon float64) string {
	return fmt.Sprintf("weather:%.2f,%.2f", round2(lat), round2(lon))
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // avoid "-0.00"
	}
	return r
}

// Redis is a WeatherCache backed by Redis.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

var _ WeatherCache = (*Redis)(nil)

// NewRedis constructs a Redis cache. A non-positive ttl means one hour.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context, lat, lon float64) (*catalog.WeatherInfo, error) {
	k := key(lat, lon)
	val, err := c.client.Get(ctx, k).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get for %s: %w", k, err)
	}

	var info catalog.WeatherInfo
	if err := json.Unmarshal([]byte(val), &info); err != nil {
		return nil, fmt.Errorf("unmarshaling cached weather for %s: %w", k, err)
	}

	return &info, nil
}

// Set stores info with the configured TTL. A nil info is ignored.
func (c *Redis) Set(ctx context.Context, lat, lon float64, info *catalog.WeatherInfo) error {
	if info == nil {
		return nil
	}

	k := key(lat, lon)
	b, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshaling weather for %s: %w", k, err)
	}

	if err := c.client.Set(ctx, k, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set for %s: %w", k, err)
	}

	return nil
}

// Ping checks the Redis connection.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
