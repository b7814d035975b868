package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/neexbeast/flysen-catalog/internal/catalog"
)

// Memory is an in-process WeatherCache used when no Redis is configured.
type Memory struct {
	items *gocache.Cache
}

var _ WeatherCache = (*Memory)(nil)

// NewMemory constructs a Memory cache. A non-positive ttl means one hour.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Memory{items: gocache.New(ttl, 2*ttl)}
}

func (c *Memory) Get(_ context.Context, lat, lon float64) (*catalog.WeatherInfo, error) {
	v, ok := c.items.Get(key(lat, lon))
	if !ok {
		return nil, nil
	}
	info := v.(catalog.WeatherInfo)
	return &info, nil
}

func (c *Memory) Set(_ context.Context, lat, lon float64, info *catalog.WeatherInfo) error {
	if info == nil {
		return nil
	}
	// Copied; pointer fields inside are shared.
	c.items.SetDefault(key(lat, lon), *info)
	return nil
}
