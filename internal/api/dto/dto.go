// Package dto maps catalog records to and from their wire form. Timestamps
// travel as RFC 3339 strings and enumerations as their labels; malformed
// values are rejected instead of replaced.
package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/neexbeast/flysen-catalog/internal/catalog"
	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Request is implemented by every request body.
type Request interface {
	// RequiredOnCreate names the struct fields that only creates must set.
	RequiredOnCreate() []string
}

// Decode reads a JSON body into dst and validates it. Partial bodies, used by
// updates, may leave the create-only required fields unset.
func Decode(r io.Reader, dst Request, partial bool) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return ierr.WithError(err).
			WithHintf("malformed request body: %s", err.Error()).
			Mark(ierr.ErrValidation)
	}

	var err error
	if partial {
		err = validate.StructExcept(dst, dst.RequiredOnCreate()...)
	} else {
		err = validate.Struct(dst)
	}
	return validationError(err)
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !ierr.As(err, &fieldErrs) {
		return ierr.WithError(err).Mark(ierr.ErrValidation)
	}

	msgs := make([]string, 0, len(fieldErrs))
	fields := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fe.Field()+": "+rule)
		// Namespace starts with the request type name.
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		fields[path] = rule
	}
	return ierr.WithError(err).
		WithHintf("invalid request: %s", strings.Join(msgs, ", ")).
		WithReportableDetails(map[string]any{"fields": fields}).
		Mark(ierr.ErrValidation)
}

// formatTime renders t as RFC 3339 with nanoseconds, or "" when unset.
func formatTime(t catalog.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(field, s string) (catalog.Timestamp, error) {
	ts, err := catalog.ParseTimestamp(s)
	if err != nil {
		return catalog.Timestamp{}, fmt.Errorf("%s: %w", field, err)
	}
	return ts, nil
}

// WeatherInfo is the wire form of catalog.WeatherInfo.
type WeatherInfo struct {
	Temperature *float64 `json:"temperature,omitempty"`
	Condition   string   `json:"condition,omitempty"`
	Humidity    *int     `json:"humidity,omitempty" validate:"omitempty,gte=0,lte=100"`
	Description string   `json:"description,omitempty"`
	LastUpdated string   `json:"lastUpdated,omitempty"`
}

func fromWeather(w *catalog.WeatherInfo) *WeatherInfo {
	if w == nil {
		return nil
	}
	return &WeatherInfo{
		Temperature: w.Temperature,
		Condition:   w.Condition,
		Humidity:    w.Humidity,
		Description: w.Description,
		LastUpdated: formatTime(w.LastUpdated),
	}
}

func (w *WeatherInfo) toModel() (*catalog.WeatherInfo, error) {
	if w == nil {
		return nil, nil
	}
	updated, err := parseTime("currentWeather.lastUpdated", w.LastUpdated)
	if err != nil {
		return nil, err
	}
	return &catalog.WeatherInfo{
		Temperature: w.Temperature,
		Condition:   w.Condition,
		Humidity:    w.Humidity,
		Description: w.Description,
		LastUpdated: updated,
	}, nil
}

// Meta carries the bookkeeping fields returned with every record. They are
// ignored on input.
type Meta struct {
	ID             string `json:"id,omitempty"`
	Active         bool   `json:"active"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
	CreatedBy      string `json:"createdBy,omitempty"`
	LastModifiedBy string `json:"lastModifiedBy,omitempty"`
}

func fromBase(b catalog.Base) Meta {
	return Meta{
		ID:             b.ID,
		Active:         b.Active,
		CreatedAt:      formatTime(b.CreatedAt),
		UpdatedAt:      formatTime(b.UpdatedAt),
		CreatedBy:      b.CreatedBy,
		LastModifiedBy: b.LastModifiedBy,
	}
}

// toBase keeps only the client-settable authorship fields.
func (m Meta) toBase() catalog.Base {
	return catalog.Base{CreatedBy: m.CreatedBy, LastModifiedBy: m.LastModifiedBy}
}
