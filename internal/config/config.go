// Package config loads service settings from the environment and an optional
// .env file.
package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/neexbeast/flysen-catalog/internal/breaker"
	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverBolt     = "bolt"
	StoreDriverMemory   = "memory"
)

type Configuration struct {
	Port        string `mapstructure:"PORT" validate:"required,numeric"`
	BearerToken string `mapstructure:"BEARER_TOKEN" validate:"required"`

	StoreDriver string `mapstructure:"STORE_DRIVER" validate:"oneof=postgres bolt memory"`
	DatabaseURL string `mapstructure:"DATABASE_URL" validate:"required_if=StoreDriver postgres"`
	BoltPath    string `mapstructure:"BOLT_PATH" validate:"required_if=StoreDriver bolt"`
	Migrations  string `mapstructure:"MIGRATIONS_DIR"`

	RedisURL        string        `mapstructure:"REDIS_URL"`
	WeatherCacheTTL time.Duration `mapstructure:"WEATHER_CACHE_TTL" validate:"gte=0"`

	OpenWeatherAPIKey  string `mapstructure:"OPENWEATHER_API_KEY"`
	WeatherAPIURL      string `mapstructure:"WEATHER_API_URL" validate:"omitempty,url"`
	GooglePlacesAPIKey string `mapstructure:"GOOGLE_PLACES_API_KEY"`
	PlacesAPIURL       string `mapstructure:"PLACES_API_URL" validate:"omitempty,url"`

	RateLimitPerMinute int `mapstructure:"RATE_LIMIT_PER_MINUTE" validate:"gte=0"`

	Breaker BreakerConfig `mapstructure:",squash"`
}

// BreakerConfig applies to every guarded dependency.
type BreakerConfig struct {
	WindowSize       int           `mapstructure:"BREAKER_WINDOW_SIZE" validate:"gte=1"`
	MinimumCalls     int           `mapstructure:"BREAKER_MINIMUM_CALLS" validate:"gte=1"`
	FailureThreshold float64       `mapstructure:"BREAKER_FAILURE_THRESHOLD" validate:"gt=0,lte=1"`
	OpenTimeout      time.Duration `mapstructure:"BREAKER_OPEN_TIMEOUT" validate:"gt=0"`
	HalfOpenCalls    int           `mapstructure:"BREAKER_HALF_OPEN_CALLS" validate:"gte=1"`
	CallTimeout      time.Duration `mapstructure:"BREAKER_CALL_TIMEOUT" validate:"gte=0"`
}

func defaults() map[string]any {
	b := breaker.DefaultSettings()
	return map[string]any{
		"PORT":                      "8080",
		"BEARER_TOKEN":              "",
		"STORE_DRIVER":              StoreDriverPostgres,
		"DATABASE_URL":              "",
		"BOLT_PATH":                 "catalog.db",
		"MIGRATIONS_DIR":            "migrations",
		"REDIS_URL":                 "",
		"WEATHER_CACHE_TTL":         time.Hour,
		"OPENWEATHER_API_KEY":       "",
		"WEATHER_API_URL":           "",
		"GOOGLE_PLACES_API_KEY":     "",
		"PLACES_API_URL":            "",
		"RATE_LIMIT_PER_MINUTE":     60,
		"BREAKER_WINDOW_SIZE":       b.WindowSize,
		"BREAKER_MINIMUM_CALLS":     b.MinimumCalls,
		"BREAKER_FAILURE_THRESHOLD": b.FailureRateThreshold,
		"BREAKER_OPEN_TIMEOUT":      b.OpenTimeout,
		"BREAKER_HALF_OPEN_CALLS":   b.HalfOpenMaxCalls,
		"BREAKER_CALL_TIMEOUT":      b.CallTimeout,
	}
}

// Load reads envFiles (default ".env") into the process environment without
// overriding variables already set, then builds and validates the
// configuration. Missing env files are ignored.
func Load(envFiles ...string) (*Configuration, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about.
	for k, def := range defaults() {
		v.SetDefault(k, def)
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("configuration could not be parsed").
			Mark(ierr.ErrValidation)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return ierr.WithError(err).
			WithHintf("invalid configuration: %v", err).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BreakerSettings returns the circuit breaker settings for every dependency.
func (c Configuration) BreakerSettings() breaker.Settings {
	return breaker.Settings{
		WindowSize:           c.Breaker.WindowSize,
		MinimumCalls:         c.Breaker.MinimumCalls,
		FailureRateThreshold: c.Breaker.FailureThreshold,
		OpenTimeout:          c.Breaker.OpenTimeout,
		HalfOpenMaxCalls:     c.Breaker.HalfOpenCalls,
		CallTimeout:          c.Breaker.CallTimeout,
	}
}

// Address is the listen address of the HTTP server.
func (c Configuration) Address() string { return ":" + c.Port }
