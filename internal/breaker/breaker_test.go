package breaker_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/flysen-catalog/internal/breaker"
	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
)

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings() breaker.Settings {
	return breaker.Settings{
		WindowSize:           4,
		MinimumCalls:         4,
		FailureRateThreshold: 0.5,
		OpenTimeout:          50 * time.Millisecond,
		HalfOpenMaxCalls:     1,
		CallTimeout:          time.Second,
	}
}

func newRegistry() *breaker.Registry {
	return breaker.NewRegistry(testSettings(), nil, discardLogger())
}

func succeed(_ context.Context) (string, error) { return "ok", nil }
func fail(_ context.Context) (string, error)    { return "", errBoom }

func emptyFallback(err error) (string, error) { return "fallback", nil }

func run(r *breaker.Registry, name string, op breaker.Operation[string]) (string, error) {
	return breaker.Execute(context.Background(), r, name, op, emptyFallback)
}

func TestExecute_SuccessPassesThrough(t *testing.T) {
	r := newRegistry()

	got, err := run(r, breaker.DocStore, succeed)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, breaker.StateClosed, r.Get(breaker.DocStore).State())
}

func TestExecute_FailureInvokesFallback(t *testing.T) {
	r := newRegistry()

	var seen error
	got, err := breaker.Execute(context.Background(), r, breaker.DocStore, fail, func(cause error) (string, error) {
		seen = cause
		return "degraded", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "degraded", got)
	assert.ErrorIs(t, seen, errBoom)
}

func TestExecute_StaysClosedBelowThreshold(t *testing.T) {
	r := newRegistry()

	for i := 0; i < 3; i++ {
		_, _ = run(r, breaker.DocStore, succeed)
	}
	_, _ = run(r, breaker.DocStore, fail)

	assert.Equal(t, breaker.StateClosed, r.Get(breaker.DocStore).State())
}

func TestExecute_OpensWhenFailureRateReached(t *testing.T) {
	r := newRegistry()

	_, _ = run(r, breaker.DocStore, succeed)
	_, _ = run(r, breaker.DocStore, succeed)
	_, _ = run(r, breaker.DocStore, fail)
	assert.Equal(t, breaker.StateClosed, r.Get(breaker.DocStore).State(), "minimum calls not reached yet")

	_, _ = run(r, breaker.DocStore, fail)
	assert.Equal(t, breaker.StateOpen, r.Get(breaker.DocStore).State())
}

func TestExecute_OpenSkipsOperation(t *testing.T) {
	r := newRegistry()
	for i := 0; i < 4; i++ {
		_, _ = run(r, breaker.DocStore, fail)
	}
	require.Equal(t, breaker.StateOpen, r.Get(breaker.DocStore).State())

	var calls atomic.Int32
	var seen error
	_, err := breaker.Execute(context.Background(), r, breaker.DocStore,
		func(_ context.Context) (string, error) {
			calls.Add(1)
			return "ok", nil
		},
		func(cause error) (string, error) {
			seen = cause
			return "", nil
		})
	require.NoError(t, err)
	assert.Zero(t, calls.Load(), "operation must not run while open")
	assert.ErrorIs(t, seen, breaker.ErrOpen)
}

func TestExecute_HalfOpenSuccessCloses(t *testing.T) {
	r := newRegistry()
	for i := 0; i < 4; i++ {
		_, _ = run(r, breaker.DocStore, fail)
	}

	time.Sleep(70 * time.Millisecond)
	assert.Equal(t, breaker.StateHalfOpen, r.Get(breaker.DocStore).State())

	got, err := run(r, breaker.DocStore, succeed)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, breaker.StateClosed, r.Get(breaker.DocStore).State())
}

func TestExecute_HalfOpenFailureReopens(t *testing.T) {
	r := newRegistry()
	for i := 0; i < 4; i++ {
		_, _ = run(r, breaker.DocStore, fail)
	}

	time.Sleep(70 * time.Millisecond)
	_, _ = run(r, breaker.DocStore, fail)
	assert.Equal(t, breaker.StateOpen, r.Get(breaker.DocStore).State())
}

func TestExecute_HalfOpenLimitsTrialCalls(t *testing.T) {
	r := newRegistry()
	for i := 0; i < 4; i++ {
		_, _ = run(r, breaker.DocStore, fail)
	}
	time.Sleep(70 * time.Millisecond)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = run(r, breaker.DocStore, func(_ context.Context) (string, error) {
			close(started)
			<-release
			return "ok", nil
		})
	}()
	<-started

	var seen error
	_, _ = breaker.Execute(context.Background(), r, breaker.DocStore, succeed, func(cause error) (string, error) {
		seen = cause
		return "", nil
	})
	assert.ErrorIs(t, seen, breaker.ErrOpen, "second trial must be rejected")

	close(release)
	<-done
	assert.Equal(t, breaker.StateClosed, r.Get(breaker.DocStore).State())
}

func TestExecute_DependenciesAreIsolated(t *testing.T) {
	r := newRegistry()
	for i := 0; i < 10; i++ {
		_, _ = run(r, breaker.DocStore, fail)
	}
	require.Equal(t, breaker.StateOpen, r.Get(breaker.DocStore).State())

	var weatherCalls atomic.Int32
	got, err := run(r, breaker.WeatherAPI, func(_ context.Context) (string, error) {
		weatherCalls.Add(1)
		return "sunny", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "sunny", got)
	assert.Equal(t, int32(1), weatherCalls.Load())
	assert.Equal(t, breaker.StateClosed, r.Get(breaker.WeatherAPI).State())
}

func TestExecute_NotFoundIsNotAFailure(t *testing.T) {
	r := newRegistry()

	for i := 0; i < 10; i++ {
		_, err := breaker.Execute(context.Background(), r, breaker.DocStore,
			func(_ context.Context) (string, error) {
				return "", ierr.WithError(errors.New("missing")).Mark(ierr.ErrNotFound)
			},
			func(cause error) (string, error) {
				t.Fatal("fallback must not run for not-found")
				return "", nil
			})
		require.Error(t, err)
		assert.True(t, ierr.IsNotFound(err))
	}
	assert.Equal(t, breaker.StateClosed, r.Get(breaker.DocStore).State())
}

func TestExecute_CallTimeoutCountsAsFailure(t *testing.T) {
	settings := testSettings()
	settings.CallTimeout = 10 * time.Millisecond
	settings.MinimumCalls = 1
	settings.WindowSize = 1
	r := breaker.NewRegistry(settings, nil, discardLogger())

	var seen error
	_, _ = breaker.Execute(context.Background(), r, breaker.WeatherAPI,
		func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
		func(cause error) (string, error) {
			seen = cause
			return "", nil
		})
	assert.ErrorIs(t, seen, context.DeadlineExceeded)
	assert.Equal(t, breaker.StateOpen, r.Get(breaker.WeatherAPI).State())
}

func TestExecute_CallerCancellationIsNotAFailure(t *testing.T) {
	settings := testSettings()
	settings.MinimumCalls = 1
	settings.WindowSize = 1
	r := breaker.NewRegistry(settings, nil, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := breaker.Execute(ctx, r, breaker.DocStore,
		func(ctx context.Context) (string, error) { return "", ctx.Err() },
		emptyFallback)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, breaker.StateClosed, r.Get(breaker.DocStore).State())
}

func TestExecute_PanicIsRecordedAsFailure(t *testing.T) {
	r := newRegistry()

	var seen error
	_, err := breaker.Execute(context.Background(), r, breaker.PlacesAPI,
		func(_ context.Context) (string, error) { panic("kaboom") },
		func(cause error) (string, error) {
			seen = cause
			return "", nil
		})
	require.NoError(t, err)
	require.Error(t, seen)
	assert.Contains(t, seen.Error(), "kaboom")
}

func TestExecute_ConcurrentFailuresOpenBreaker(t *testing.T) {
	r := newRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = run(r, breaker.DocStore, fail)
		}()
	}
	wg.Wait()

	assert.Equal(t, breaker.StateOpen, r.Get(breaker.DocStore).State())
}

func TestRegistry_OnStateChange(t *testing.T) {
	r := newRegistry()

	var mu sync.Mutex
	var changes []string
	r.OnStateChange(func(name string, from, to breaker.State) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, name+":"+from.String()+"->"+to.String())
	})

	for i := 0; i < 4; i++ {
		_, _ = run(r, breaker.DocStore, fail)
	}
	time.Sleep(70 * time.Millisecond)
	_, _ = run(r, breaker.DocStore, succeed)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"docstore:closed->open",
		"docstore:open->half_open",
		"docstore:half_open->closed",
	}, changes)
}

func TestReadFallback_ReturnsZeroValue(t *testing.T) {
	fb := breaker.ReadFallback[[]string](discardLogger(), breaker.DocStore, "list")

	got, err := fb(errBoom)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWriteFallback_MarksStoreUnavailable(t *testing.T) {
	fb := breaker.WriteFallback[string](discardLogger(), breaker.DocStore, "create")

	id, err := fb(errBoom)
	require.Error(t, err)
	assert.Empty(t, id, "writes must never fabricate a value")
	assert.True(t, ierr.IsStoreUnavailable(err))
	assert.False(t, errors.Is(err, ierr.ErrWriteRejected))
	assert.True(t, ierr.IsRetryable(err))
}

func TestWriteFallback_OpenBreakerMarksWriteRejected(t *testing.T) {
	fb := breaker.WriteFallback[string](discardLogger(), breaker.DocStore, "create")

	_, err := fb(fmt.Errorf("rejected: %w", breaker.ErrOpen))
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.ErrWriteRejected))
	assert.True(t, ierr.IsStoreUnavailable(err))
}

func TestRegistry_OverridesAndSnapshot(t *testing.T) {
	override := testSettings()
	override.WindowSize = 2
	override.MinimumCalls = 2
	r := breaker.NewRegistry(testSettings(), map[string]breaker.Settings{breaker.WeatherAPI: override}, discardLogger())

	assert.Equal(t, 2, r.Get(breaker.WeatherAPI).Settings().WindowSize)
	assert.Equal(t, 4, r.Get(breaker.DocStore).Settings().WindowSize)
	assert.Same(t, r.Get(breaker.DocStore), r.Get(breaker.DocStore))

	snap := r.Snapshot()
	assert.Equal(t, breaker.StateClosed, snap[breaker.DocStore])
	assert.Equal(t, []string{breaker.DocStore, breaker.WeatherAPI}, r.Names())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", breaker.StateClosed.String())
	assert.Equal(t, "open", breaker.StateOpen.String())
	assert.Equal(t, "half_open", breaker.StateHalfOpen.String())
}
