package storage

import (
	"context"
	"encoding/json"
	"fmt"

	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
)

// Document is a stored record in its JSON-decoded form: values are string,
// float64, bool, nil, []any or map[string]any.
type Document map[string]any

// Op is a filter comparison operator.
type Op string

const (
	OpEqual          Op = "=="
	OpGreaterOrEqual Op = ">="
	OpLessOrEqual    Op = "<="
)

// Filter is a predicate on a top-level document field.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter { return Filter{Field: field, Op: OpEqual, Value: value} }

// Gte builds a ">=" filter.
func Gte(field string, value any) Filter { return Filter{Field: field, Op: OpGreaterOrEqual, Value: value} }

// Lte builds a "<=" filter.
func Lte(field string, value any) Filter { return Filter{Field: field, Op: OpLessOrEqual, Value: value} }

// Order sorts query results by a top-level field. Documents without the
// field are excluded from ordered queries.
type Order struct {
	Field string
	Desc  bool
}

// Query selects documents of one collection. Without OrderBy results come
// back in insertion order. StartAfter is the id of a document; results
// resume strictly after it.
type Query struct {
	Filters    []Filter
	OrderBy    *Order
	Limit      int
	StartAfter string
}

// Store is the document store consumed by the repositories.
type Store interface {
	// Put creates or replaces the document stored under id.
	Put(ctx context.Context, collection, id string, doc Document) error
	// Get returns nil, nil when the document does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	// Merge deep-merges patch into the stored document. Nested objects are
	// merged, every other value (lists included) is replaced.
	Merge(ctx context.Context, collection, id string, patch Document) error
	// UpdateFields overwrites the given top-level fields.
	UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error
}

var (
	// ErrNotFound is returned by Merge and UpdateFields for a missing id.
	ErrNotFound = ierr.NewError("document not found").Mark(ierr.ErrNotFound)
	// ErrCursorNotFound is returned by Query when StartAfter names a missing document.
	ErrCursorNotFound = ierr.NewError("cursor document not found").Mark(ierr.ErrNotFound)
)

func notFound(collection, id string) error {
	return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
}

// Normalize converts v into its JSON-decoded form so that values written by
// callers compare equal to values read back from a store.
func Normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling value: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("unmarshaling value: %w", err)
	}
	return out, nil
}

// ToDocument encodes any JSON-serializable value as a Document.
func ToDocument(v any) (Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling document: %w", err)
	}
	return doc, nil
}

// FromDocument decodes doc into dst.
func FromDocument(doc Document, dst any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("unmarshaling document: %w", err)
	}
	return nil
}

// DeepMerge merges patch into dst in place and returns dst.
func DeepMerge(dst, patch Document) Document {
	if dst == nil {
		dst = Document{}
	}
	for k, pv := range patch {
		pm, pIsMap := asMap(pv)
		dm, dIsMap := asMap(dst[k])
		if pIsMap && dIsMap {
			dst[k] = map[string]any(DeepMerge(Document(dm), Document(pm)))
			continue
		}
		dst[k] = cloneValue(pv)
	}
	return dst
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	default:
		return nil, false
	}
}

// Clone returns a deep copy of doc.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Document(t).Clone())
	case Document:
		return map[string]any(t.Clone())
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func normalizeFilters(filters []Filter) ([]Filter, error) {
	out := make([]Filter, len(filters))
	for i, f := range filters {
		switch f.Op {
		case OpEqual, OpGreaterOrEqual, OpLessOrEqual:
		default:
			return nil, ierr.NewError(fmt.Sprintf("unsupported filter operator %q", f.Op)).Mark(ierr.ErrValidation)
		}
		v, err := Normalize(f.Value)
		if err != nil {
			return nil, fmt.Errorf("normalizing filter on %s: %w", f.Field, err)
		}
		out[i] = Filter{Field: f.Field, Op: f.Op, Value: v}
	}
	return out, nil
}
