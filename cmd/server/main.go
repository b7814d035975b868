package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/flysen-catalog/internal/api"
	"github.com/neexbeast/flysen-catalog/internal/breaker"
	"github.com/neexbeast/flysen-catalog/internal/cache"
	"github.com/neexbeast/flysen-catalog/internal/config"
	"github.com/neexbeast/flysen-catalog/internal/provider"
	"github.com/neexbeast/flysen-catalog/internal/repository"
	"github.com/neexbeast/flysen-catalog/internal/service"
	"github.com/neexbeast/flysen-catalog/internal/storage"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	weatherCache, closeCache, err := cache.Open(ctx, cfg.RedisURL, cfg.WeatherCacheTTL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = closeCache() }()

	breakers := breaker.NewRegistry(cfg.BreakerSettings(), nil, log)

	var weather service.ConditionsFetcher
	if cfg.OpenWeatherAPIKey != "" {
		weather = weatherClient(cfg)
	} else {
		log.Warn("OPENWEATHER_API_KEY not set, weather enrichment disabled")
	}
	var places service.PlacesFinder
	if cfg.GooglePlacesAPIKey != "" {
		places = placesClient(cfg)
	} else {
		log.Warn("GOOGLE_PLACES_API_KEY not set, nearby places disabled")
	}

	destRepo := repository.NewDestinations(store, breakers, log)
	eventRepo := repository.NewEvents(store, breakers, log)
	serviceRepo := repository.NewAirportServices(store, breakers, log)

	handlers := api.NewHandlers(
		service.NewDestinations(destRepo, service.NewWeatherEnricher(weather, weatherCache, breakers, log), places, breakers, log),
		service.NewEvents(eventRepo),
		service.NewAirportServices(serviceRepo, repository.NewProducts(serviceRepo)),
		log,
	)

	var cachePinger api.Pinger
	if rc, ok := weatherCache.(*cache.Redis); ok {
		cachePinger = rc
	}
	health := api.HealthHandlerFunc(store, cachePinger, breakers, log)
	router := api.NewRouter(handlers, cfg.BearerToken, cfg.RateLimitPerMinute, health, log)

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server shut down cleanly")
	return nil
}

type pingStore interface {
	storage.Store
	api.Pinger
}

func openStore(ctx context.Context, cfg *config.Configuration, log *slog.Logger) (pingStore, func() error, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := storage.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := storage.RunMigrations(ctx, pool, os.DirFS(cfg.Migrations), log); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied")
		return storage.NewPostgres(pool), func() error { pool.Close(); return nil }, nil

	case config.StoreDriverBolt:
		db, err := storage.OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening bolt store: %w", err)
		}
		return db, db.Close, nil

	default:
		log.Warn("using in-memory store, data is lost on restart")
		return storage.NewMemory(), func() error { return nil }, nil
	}
}

func weatherClient(cfg *config.Configuration) *provider.WeatherClient {
	if cfg.WeatherAPIURL != "" {
		return provider.NewWeatherClientWithURL(cfg.WeatherAPIURL, cfg.OpenWeatherAPIKey)
	}
	return provider.NewWeatherClient(cfg.OpenWeatherAPIKey)
}

func placesClient(cfg *config.Configuration) *provider.PlacesClient {
	if cfg.PlacesAPIURL != "" {
		return provider.NewPlacesClientWithURL(cfg.PlacesAPIURL, cfg.GooglePlacesAPIKey)
	}
	return provider.NewPlacesClient(cfg.GooglePlacesAPIKey)
}
