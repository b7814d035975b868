// Package service composes repository calls with best-effort enrichment from
// the weather and places providers.
package service

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"github.com/neexbeast/flysen-catalog/internal/breaker"
	"github.com/neexbeast/flysen-catalog/internal/cache"
	"github.com/neexbeast/flysen-catalog/internal/catalog"
	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
	"github.com/neexbeast/flysen-catalog/internal/provider"
)

// ConditionsFetcher is the interface satisfied by provider.WeatherClient.
type ConditionsFetcher interface {
	CurrentConditions(ctx context.Context, lat, lon float64) (*provider.Conditions, error)
}

// WeatherEnricher attaches current weather to records with coordinates.
type WeatherEnricher struct {
	weather  ConditionsFetcher
	cache    cache.WeatherCache
	breakers *breaker.Registry
	log      *slog.Logger
}

// NewWeatherEnricher constructs a WeatherEnricher. weather and cache may be nil.
func NewWeatherEnricher(weather ConditionsFetcher, c cache.WeatherCache, breakers *breaker.Registry, log *slog.Logger) *WeatherEnricher {
	if log == nil {
		log = slog.Default()
	}
	return &WeatherEnricher{weather: weather, cache: c, breakers: breakers, log: log}
}

// Enrich returns fresh weather for the point. When the provider fails or its
// breaker is open it falls back to the last cached observation, then to
// current, then to nil. It never fails.
func (e *WeatherEnricher) Enrich(ctx context.Context, lat, lon float64, current *catalog.WeatherInfo) *catalog.WeatherInfo {
	if e.weather == nil {
		return e.stale(ctx, lat, lon, current, ierr.NewError("no weather provider configured").Mark(ierr.ErrEnrichmentUnavailable))
	}

	cond, err := breaker.Execute(ctx, e.breakers, breaker.WeatherAPI,
		func(ctx context.Context) (*provider.Conditions, error) {
			return e.weather.CurrentConditions(ctx, lat, lon)
		}, nil)
	if err == nil && cond == nil {
		err = ierr.NewError("weather provider returned no conditions").Error()
	}
	if err != nil {
		return e.stale(ctx, lat, lon, current, ierr.WithError(err).Mark(ierr.ErrEnrichmentUnavailable))
	}

	info := toWeatherInfo(cond)
	if e.cache != nil {
		if err := e.cache.Set(ctx, lat, lon, info); err != nil {
			e.log.Warn("caching weather", "lat", lat, "lon", lon, "err", err)
		}
	}
	return info
}

func (e *WeatherEnricher) stale(ctx context.Context, lat, lon float64, current *catalog.WeatherInfo, cause error) *catalog.WeatherInfo {
	e.log.Warn("weather enrichment unavailable", "lat", lat, "lon", lon, "err", cause)

	if e.cache != nil {
		cached, err := e.cache.Get(ctx, lat, lon)
		if err != nil {
			e.log.Warn("reading cached weather", "lat", lat, "lon", lon, "err", err)
		} else if cached != nil {
			return cached
		}
	}
	return current
}

func toWeatherInfo(c *provider.Conditions) *catalog.WeatherInfo {
	return &catalog.WeatherInfo{
		Temperature: lo.ToPtr(c.Temperature),
		Humidity:    lo.ToPtr(c.Humidity),
		Condition:   c.Condition,
		Description: c.Description,
		LastUpdated: catalog.NewTimestamp(c.ObservedAt),
	}
}

func notFound(kind, id string) error {
	return ierr.NewError(kind+" not found").
		WithHintf("%s %q not found", kind, id).
		Mark(ierr.ErrNotFound)
}
