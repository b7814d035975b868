package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/neexbeast/flysen-catalog/internal/breaker"
	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
)

// retryAfterSeconds is sent with 503 responses.
const retryAfterSeconds = "30"

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	destinations DestinationService
	events       EventService
	services     AirportServiceService
	log          *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(destinations DestinationService, events EventService, services AirportServiceService, log *slog.Logger) *Handlers {
	return &Handlers{
		destinations: destinations,
		events:       events,
		services:     services,
		log:          log,
	}
}

// response is the envelope of every catalog response.
type response struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Data       any            `json:"data,omitempty"`
	NextCursor string         `json:"nextCursor,omitempty"`
	Error      string         `json:"error,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, response{Success: true, Message: message, Data: data})
}

// writeError maps err to a status code and a client-facing message.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := ierr.HTTPStatusFromErr(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	} else {
		h.log.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}

	writeJSON(w, status, response{
		Success: false,
		Message: ierr.Hint(err, http.StatusText(status)),
		Error:   errorCode(err),
		Details: ierr.Details(err),
	})
}

func errorCode(err error) string {
	for _, sentinel := range []*ierr.InternalError{
		ierr.ErrWriteRejected, ierr.ErrStoreUnavailable, ierr.ErrNotFound, ierr.ErrInvalidEnum,
		ierr.ErrValidation, ierr.ErrEnrichmentUnavailable, ierr.ErrHTTPClient,
	} {
		if ierr.Is(err, sentinel) {
			return sentinel.Code
		}
	}
	return ierr.ErrCodeSystemError
}

// queryInt reads a non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ierr.NewError("invalid query parameter").
			WithHintf("query parameter %q must be a non-negative integer", name).
			Mark(ierr.ErrValidation)
	}
	return n, nil
}

func requiredQuery(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", ierr.NewError("missing query parameter").
			WithHintf("query parameter %q is required", name).
			Mark(ierr.ErrValidation)
	}
	return v, nil
}

// mapAll converts records to their transfer form.
func mapAll[T, D any](items []T, fn func(T) D) []D {
	return lo.Map(items, func(it T, _ int) D { return fn(it) })
}

// HealthHandlerFunc returns an http.HandlerFunc reporting store and cache
// connectivity and the state of every circuit breaker. The cache is optional.
func HealthHandlerFunc(store, cache Pinger, breakers BreakerStates, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]any{}

		body["store"] = "ok"
		if err := store.Ping(ctx); err != nil {
			log.Error("health check: store ping failed", "err", err)
			body["store"] = "error"
			status = http.StatusServiceUnavailable
		}

		if cache != nil {
			body["cache"] = "ok"
			if err := cache.Ping(ctx); err != nil {
				log.Warn("health check: cache ping failed", "err", err)
				body["cache"] = "error"
			}
		}

		states := map[string]string{}
		for name, s := range breakers.Snapshot() {
			states[name] = s.String()
			if name == breaker.DocStore && s == breaker.StateOpen {
				status = http.StatusServiceUnavailable
			}
		}
		body["breakers"] = states

		body["status"] = "ok"
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		writeJSON(w, status, body)
	}
}
