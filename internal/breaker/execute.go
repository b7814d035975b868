package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
)

// Operation is a guarded remote call.
type Operation[T any] func(ctx context.Context) (T, error)

// Fallback produces the result returned in place of a failed or rejected
// call. It receives ErrOpen when the call never reached the dependency.
type Fallback[T any] func(err error) (T, error)

// Execute runs op through the breaker registered under name.
//
// When the breaker rejects the call, op is skipped and fallback receives
// ErrOpen. When op fails, the failure is recorded before fallback runs.
// Errors that say nothing about the dependency's health (not found,
// validation, cancellation by the caller) are returned as is.
func Execute[T any](ctx context.Context, r *Registry, name string, op Operation[T], fallback Fallback[T]) (T, error) {
	var zero T
	b := r.Get(name)

	gen, err := b.allow()
	if err != nil {
		return runFallback(fallback, err)
	}

	callCtx := ctx
	if timeout := b.Settings().CallTimeout; timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := call(callCtx, op)
	if err == nil {
		b.record(gen, false)
		return result, nil
	}

	if !isDependencyFailure(ctx, err) {
		b.release(gen)
		return zero, err
	}

	b.record(gen, true)
	return runFallback(fallback, err)
}

func call[T any](ctx context.Context, op Operation[T]) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("guarded call panicked: %v", r)
		}
	}()
	return op(ctx)
}

func runFallback[T any](fallback Fallback[T], cause error) (T, error) {
	if fallback == nil {
		var zero T
		return zero, cause
	}
	return fallback(cause)
}

func isDependencyFailure(ctx context.Context, err error) bool {
	if ierr.IsNotFound(err) || ierr.IsValidation(err) {
		return false
	}
	// The caller gave up; the dependency may be fine.
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return false
	}
	return true
}

// ReadFallback degrades a read to the zero value of T (an empty list or an
// absent record) and logs the cause.
func ReadFallback[T any](log *slog.Logger, name, op string) Fallback[T] {
	return func(err error) (T, error) {
		var zero T
		if log != nil {
			log.Warn("read degraded to empty result", "dependency", name, "operation", op, "err", err)
		}
		return zero, nil
	}
}

// WriteFallback turns any failure into a retryable ErrStoreUnavailable.
// Writes rejected by an open breaker are also marked ErrWriteRejected.
func WriteFallback[T any](log *slog.Logger, name, op string) Fallback[T] {
	return func(err error) (T, error) {
		var zero T
		if log != nil {
			log.Error("write failed", "dependency", name, "operation", op, "err", err)
		}

		wrapped := ierr.WithError(err).
			WithMessagef("%s %s", name, op).
			WithHint("Service temporarily unavailable. Please try again later.").
			Mark(ierr.ErrStoreUnavailable)
		if errors.Is(err, ErrOpen) {
			wrapped = ierr.Mark(wrapped, ierr.ErrWriteRejected)
		}
		return zero, wrapped
	}
}
