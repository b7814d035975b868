package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel errors. Lower layers mark their errors with one of these so callers
// can classify failures with errors.Is regardless of wrapping.
var (
	ErrNotFound              = new(ErrCodeNotFound, "resource not found")
	ErrValidation            = new(ErrCodeValidation, "validation error")
	ErrInvalidEnum           = new(ErrCodeInvalidEnum, "invalid enum value")
	ErrStoreUnavailable      = new(ErrCodeStoreUnavailable, "document store unavailable")
	ErrWriteRejected         = new(ErrCodeWriteRejected, "write rejected while circuit open")
	ErrEnrichmentUnavailable = new(ErrCodeEnrichmentUnavailable, "enrichment provider unavailable")
	ErrHTTPClient            = new(ErrCodeHTTPClient, "http client error")
	ErrSystem                = new(ErrCodeSystemError, "system error")

	// ErrWriteRejected is listed before ErrStoreUnavailable on purpose: a
	// rejected write carries both marks.
	statusCodes = []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrValidation, http.StatusBadRequest},
		{ErrInvalidEnum, http.StatusBadRequest},
		{ErrWriteRejected, http.StatusServiceUnavailable},
		{ErrStoreUnavailable, http.StatusServiceUnavailable},
		{ErrEnrichmentUnavailable, http.StatusServiceUnavailable},
		{ErrHTTPClient, http.StatusBadGateway},
		{ErrSystem, http.StatusInternalServerError},
	}
)

const (
	ErrCodeNotFound              = "not_found"
	ErrCodeValidation            = "validation_error"
	ErrCodeInvalidEnum           = "invalid_enum"
	ErrCodeStoreUnavailable      = "store_unavailable"
	ErrCodeWriteRejected         = "write_rejected"
	ErrCodeEnrichmentUnavailable = "enrichment_unavailable"
	ErrCodeHTTPClient            = "http_client_error"
	ErrCodeSystemError           = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidEnum)
}

// IsStoreUnavailable reports a failed or rejected store call. Rejected writes
// match as well.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsRetryable reports whether the caller should retry the operation later.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrWriteRejected) || errors.Is(err, ErrStoreUnavailable)
}

func HTTPStatusFromErr(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}

// Hint returns the first user-facing hint attached to err, or fallback.
func Hint(err error, fallback string) string {
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	return fallback
}

// Details collects the structured details attached with WithReportableDetails.
// Later keys overwrite earlier ones. Returns nil when there are none.
func Details(err error) map[string]any {
	var details map[string]any
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			raw, ok := strings.CutPrefix(payload, jsonDetailPrefix)
			if !ok {
				continue
			}
			var m map[string]any
			if json.Unmarshal([]byte(raw), &m) != nil {
				continue
			}
			if details == nil {
				details = make(map[string]any, len(m))
			}
			for k, v := range m {
				details[k] = v
			}
		}
	}
	return details
}

// Mark attaches reference as an additional mark on err.
func Mark(err, reference error) error {
	return errors.Mark(err, reference)
}
