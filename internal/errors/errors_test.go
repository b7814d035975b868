package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
)

func TestDetails(t *testing.T) {
	err := ierr.NewError("bad input").
		WithHint("invalid request").
		WithReportableDetails(map[string]any{"fields": map[string]any{"name": "required"}}).
		WithReportableDetails(map[string]any{"attempt": 2}).
		Mark(ierr.ErrValidation)

	wrapped := fmt.Errorf("decoding: %w", err)
	assert.Equal(t, map[string]any{
		"fields":  map[string]any{"name": "required"},
		"attempt": float64(2),
	}, ierr.Details(wrapped))
	assert.Equal(t, "invalid request", ierr.Hint(wrapped, ""))
	assert.Equal(t, http.StatusBadRequest, ierr.HTTPStatusFromErr(wrapped))
}

func TestDetails_None(t *testing.T) {
	assert.Nil(t, ierr.Details(ierr.NewError("plain").Mark(ierr.ErrNotFound)))
	assert.Nil(t, ierr.Details(nil))
}
