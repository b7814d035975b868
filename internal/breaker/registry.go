package breaker

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// Well-known dependency names.
const (
	DocStore   = "docstore"
	WeatherAPI = "weather-api"
	PlacesAPI  = "places-api"
)

// Registry owns one breaker per dependency name. It is built once at startup
// and passed to every component that makes remote calls.
type Registry struct {
	defaults  Settings
	overrides map[string]Settings
	log       *slog.Logger

	mu        sync.Mutex
	breakers  map[string]*Breaker
	listeners []StateChangeFunc
}

// NewRegistry constructs an empty Registry. Breakers are created on first use
// with the override for their name, or defaults.
func NewRegistry(defaults Settings, overrides map[string]Settings, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		defaults:  defaults,
		overrides: overrides,
		log:       log,
		breakers:  make(map[string]*Breaker),
	}
}

// Get returns the breaker for name, creating it if needed.
func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[name]; ok {
		return b
	}

	settings := r.defaults
	if s, ok := r.overrides[name]; ok {
		settings = s
	}
	b := New(name, settings, r.logStateChange)
	r.breakers[name] = b
	return b
}

// Snapshot returns the current state of every breaker created so far.
func (r *Registry) Snapshot() map[string]State {
	r.mu.Lock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.Unlock()

	out := make(map[string]State, len(breakers))
	for _, b := range breakers {
		out[b.Name()] = b.State()
	}
	return out
}

// Names returns the registered dependency names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OnStateChange registers fn to be called on every transition of every
// breaker in the registry.
func (r *Registry) OnStateChange(fn StateChangeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *Registry) logStateChange(name string, from, to State) {
	level := slog.LevelInfo
	if to == StateOpen {
		level = slog.LevelWarn
	}
	r.log.Log(context.Background(), level, "circuit breaker state changed", "dependency", name, "from", from.String(), "to", to.String())

	r.mu.Lock()
	listeners := append([]StateChangeFunc(nil), r.listeners...)
	r.mu.Unlock()
	for _, fn := range listeners {
		fn(name, from, to)
	}
}
