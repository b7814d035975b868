package storage

import (
	"reflect"
	"sort"
	"strings"
)

// entry is a stored document together with its insertion sequence.
type entry struct {
	seq uint64
	id  string
	doc Document
}

// evaluate runs q over entries, which must be in insertion order. Filters
// are expected to be normalized. Bolt and Memory share it.
func evaluate(entries []entry, q Query) ([]Document, error) {
	var cursor *entry
	if q.StartAfter != "" {
		for i := range entries {
			if entries[i].id == q.StartAfter {
				cursor = &entries[i]
				break
			}
		}
		if cursor == nil {
			return nil, ErrCursorNotFound
		}
	}

	matched := make([]entry, 0, len(entries))
	for _, e := range entries {
		if matchesAll(e.doc, q.Filters) && (q.OrderBy == nil || hasValue(e.doc, q.OrderBy.Field)) {
			matched = append(matched, e)
		}
	}

	if q.OrderBy != nil {
		field, desc := q.OrderBy.Field, q.OrderBy.Desc
		sort.SliceStable(matched, func(i, j int) bool {
			return entryLess(matched[i], matched[j], field, desc)
		})
	}

	out := make([]Document, 0, len(matched))
	for _, e := range matched {
		if cursor != nil && !after(e, *cursor, q.OrderBy) {
			continue
		}
		out = append(out, e.doc.Clone())
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// after reports whether e sorts strictly after the cursor entry.
func after(e, cursor entry, order *Order) bool {
	if order == nil {
		return e.seq > cursor.seq
	}
	if !hasValue(cursor.doc, order.Field) {
		return false
	}
	return entryLess(cursor, e, order.Field, order.Desc)
}

// entryLess orders by field value, ties broken by insertion sequence.
func entryLess(a, b entry, field string, desc bool) bool {
	c := compareValues(a.doc[field], b.doc[field])
	if desc {
		c = -c
	}
	if c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}

func hasValue(doc Document, field string) bool {
	v, ok := doc[field]
	return ok && v != nil
}

func matchesAll(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if !matches(doc, f) {
			return false
		}
	}
	return true
}

func matches(doc Document, f Filter) bool {
	v, ok := doc[f.Field]
	if !ok {
		return false
	}
	switch f.Op {
	case OpEqual:
		return reflect.DeepEqual(v, f.Value)
	case OpGreaterOrEqual, OpLessOrEqual:
		if typeRank(v) != typeRank(f.Value) || !rangeComparable(v) {
			return false
		}
		c := compareValues(v, f.Value)
		if f.Op == OpGreaterOrEqual {
			return c >= 0
		}
		return c <= 0
	default:
		return false
	}
}

func rangeComparable(v any) bool {
	switch v.(type) {
	case string, float64, bool:
		return true
	default:
		return false
	}
}

// typeRank follows the jsonb cross-type ordering used by the Postgres backend.
func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case string:
		return 1
	case float64:
		return 2
	case bool:
		return 3
	case []any:
		return 4
	default:
		return 5
	}
}

func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch av := a.(type) {
	case string:
		return strings.Compare(av, b.(string))
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	default:
		return 0
	}
}
