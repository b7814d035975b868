// Package catalog defines the travel catalog records: destinations, events
// and airport services, together with their closed enumerations.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
)

// Base carries the bookkeeping fields shared by every record.
type Base struct {
	ID             string    `json:"id"`
	Active         bool      `json:"active"`
	CreatedAt      Timestamp `json:"createdAt"`
	UpdatedAt      Timestamp `json:"updatedAt"`
	CreatedBy      string    `json:"createdBy,omitempty"`
	LastModifiedBy string    `json:"lastModifiedBy,omitempty"`
}

// Meta returns the embedded bookkeeping fields.
func (b *Base) Meta() *Base { return b }

// Entity is implemented by pointers to every catalog record.
type Entity interface {
	Meta() *Base
	// SearchFields returns the texts matched by free-text search.
	SearchFields() []string
}

// TimestampLayout has a fixed width so that lexical order of encoded
// timestamps equals chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// Timestamp is a UTC instant stored as a fixed-width string. The zero value
// encodes as null.
type Timestamp struct {
	time.Time
}

// NewTimestamp normalizes t to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// Now returns the current instant.
func Now() Timestamp {
	return NewTimestamp(time.Now())
}

// String returns the stored form, or "" for the zero value.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding timestamp: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTimestamp accepts any RFC 3339 instant. An empty string yields the
// zero Timestamp.
func ParseTimestamp(s string) (Timestamp, error) {
	if s == "" {
		return Timestamp{}, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Timestamp{}, ierr.WithError(err).
			WithHintf("%q is not an ISO-8601 timestamp", s).
			Mark(ierr.ErrValidation)
	}
	return NewTimestamp(parsed), nil
}
