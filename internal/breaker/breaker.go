// Package breaker guards calls to remote dependencies with a per-dependency
// circuit breaker. Each named dependency has its own state and its own
// rolling failure window.
package breaker

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// State represents the state of a circuit breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ErrOpen is passed to the fallback when a call is rejected without reaching
// the dependency.
var ErrOpen = errors.New("circuit breaker is open")

// Settings configures a single breaker.
type Settings struct {
	// WindowSize is the number of most recent outcomes considered.
	WindowSize int
	// MinimumCalls is the number of recorded outcomes required before the
	// failure rate is evaluated.
	MinimumCalls int
	// FailureRateThreshold in (0, 1]. The breaker opens when the failure
	// rate of the window reaches it.
	FailureRateThreshold float64
	// OpenTimeout is the cool-down before an open breaker admits trial calls.
	OpenTimeout time.Duration
	// HalfOpenMaxCalls bounds concurrent trial calls while half-open.
	HalfOpenMaxCalls int
	// CallTimeout bounds every guarded call. Zero disables it.
	CallTimeout time.Duration
}

// DefaultSettings returns the settings used for dependencies without an
// explicit override.
func DefaultSettings() Settings {
	return Settings{
		WindowSize:           20,
		MinimumCalls:         5,
		FailureRateThreshold: 0.5,
		OpenTimeout:          30 * time.Second,
		HalfOpenMaxCalls:     3,
		CallTimeout:          10 * time.Second,
	}
}

func (s Settings) normalized() Settings {
	d := DefaultSettings()
	if s.WindowSize <= 0 {
		s.WindowSize = d.WindowSize
	}
	if s.MinimumCalls <= 0 {
		s.MinimumCalls = d.MinimumCalls
	}
	if s.MinimumCalls > s.WindowSize {
		s.MinimumCalls = s.WindowSize
	}
	if s.FailureRateThreshold <= 0 || s.FailureRateThreshold > 1 {
		s.FailureRateThreshold = d.FailureRateThreshold
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = d.OpenTimeout
	}
	if s.HalfOpenMaxCalls <= 0 {
		s.HalfOpenMaxCalls = d.HalfOpenMaxCalls
	}
	return s
}

// StateChangeFunc is called after a transition, outside the breaker lock.
type StateChangeFunc func(name string, from, to State)

// Breaker is a count-based circuit breaker for one dependency.
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time
	onChange StateChangeFunc

	mu         sync.Mutex
	state      State
	generation uint64
	outcomes   []bool // ring buffer, true = failure
	next       int
	recorded   int
	failures   int
	openedAt   time.Time
	trials     int
}

// New creates a closed breaker.
func New(name string, settings Settings, onChange StateChangeFunc) *Breaker {
	s := settings.normalized()
	return &Breaker{
		name:     name,
		settings: s,
		now:      time.Now,
		onChange: onChange,
		state:    StateClosed,
		outcomes: make([]bool, s.WindowSize),
	}
}

// Name returns the dependency name.
func (b *Breaker) Name() string { return b.name }

// Settings returns the effective settings.
func (b *Breaker) Settings() Settings { return b.settings }

// State returns the current state, applying the open to half-open transition
// if the cool-down has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	from, to, changed := b.refresh()
	state := b.state
	b.mu.Unlock()

	b.notify(changed, from, to)
	return state
}

// allow admits a call and returns the generation it belongs to.
func (b *Breaker) allow() (uint64, error) {
	b.mu.Lock()
	from, to, changed := b.refresh()

	var err error
	switch b.state {
	case StateOpen:
		err = ErrOpen
	case StateHalfOpen:
		if b.trials >= b.settings.HalfOpenMaxCalls {
			err = ErrOpen
		} else {
			b.trials++
		}
	}
	gen := b.generation
	b.mu.Unlock()

	b.notify(changed, from, to)
	return gen, err
}

// record stores the outcome of a call admitted in generation gen. Outcomes
// from an older generation are dropped.
func (b *Breaker) record(gen uint64, failed bool) {
	b.mu.Lock()
	if gen != b.generation {
		b.mu.Unlock()
		return
	}

	from := b.state
	switch b.state {
	case StateHalfOpen:
		if failed {
			b.setState(StateOpen)
		} else {
			b.setState(StateClosed)
		}
	case StateClosed:
		b.push(failed)
		if b.recorded >= b.settings.MinimumCalls &&
			float64(b.failures)/float64(b.recorded) >= b.settings.FailureRateThreshold {
			b.setState(StateOpen)
		}
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from != to, from, to)
}

// release gives back a half-open trial slot for a call whose outcome says
// nothing about the dependency's health.
func (b *Breaker) release(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen == b.generation && b.state == StateHalfOpen && b.trials > 0 {
		b.trials--
	}
}

func (b *Breaker) push(failed bool) {
	if b.recorded == len(b.outcomes) {
		if b.outcomes[b.next] {
			b.failures--
		}
	} else {
		b.recorded++
	}
	b.outcomes[b.next] = failed
	if failed {
		b.failures++
	}
	b.next = (b.next + 1) % len(b.outcomes)
}

// refresh must be called with mu held.
func (b *Breaker) refresh() (State, State, bool) {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.settings.OpenTimeout {
		b.setState(StateHalfOpen)
		return StateOpen, StateHalfOpen, true
	}
	return b.state, b.state, false
}

// setState must be called with mu held. Every transition starts a new
// generation with an empty window.
func (b *Breaker) setState(s State) {
	if b.state == s {
		return
	}
	b.state = s
	b.generation++
	b.trials = 0
	b.recorded, b.failures, b.next = 0, 0, 0
	for i := range b.outcomes {
		b.outcomes[i] = false
	}
	if s == StateOpen {
		b.openedAt = b.now()
	}
}

func (b *Breaker) notify(changed bool, from, to State) {
	if changed && b.onChange != nil {
		b.onChange(b.name, from, to)
	}
}
