package repository

import (
	"context"

	"github.com/samber/lo"

	"github.com/neexbeast/flysen-catalog/internal/breaker"
	"github.com/neexbeast/flysen-catalog/internal/catalog"
)

// SubItems edits a list of items nested inside a parent record, such as the
// products of an airport service. Each operation reads the parent, edits the
// list and writes back only the list and updatedAt, all within one guarded
// write. Concurrent edits of the same parent may overwrite each other.
type SubItems[T any, PT Record[T], I any] struct {
	repo  *Repository[T, PT]
	field string
	list  func(PT) *[]I
	id    func(*I) *string
}

// NewSubItems binds the list stored under field. list and id give access to
// the parent's list and to an item's id.
func NewSubItems[T any, PT Record[T], I any](repo *Repository[T, PT], field string, list func(PT) *[]I, id func(*I) *string) *SubItems[T, PT, I] {
	return &SubItems[T, PT, I]{repo: repo, field: field, list: list, id: id}
}

// Add appends item under a fresh id. A missing parent yields nil, nil.
func (s *SubItems[T, PT, I]) Add(ctx context.Context, parentID string, item I) (PT, error) {
	return s.modify(ctx, parentID, "add_"+s.field, func(items []I) ([]I, bool) {
		*s.id(&item) = s.repo.newID()
		return append(items, item), true
	})
}

// Update replaces the first item with itemID, keeping its id. When the item
// does not exist the parent is returned unchanged and nothing is written.
func (s *SubItems[T, PT, I]) Update(ctx context.Context, parentID, itemID string, item I) (PT, error) {
	return s.modify(ctx, parentID, "update_"+s.field, func(items []I) ([]I, bool) {
		_, idx, found := lo.FindIndexOf(items, func(it I) bool { return *s.id(&it) == itemID })
		if !found {
			return items, false
		}
		*s.id(&item) = itemID
		items[idx] = item
		return items, true
	})
}

// Remove drops every item with itemID.
func (s *SubItems[T, PT, I]) Remove(ctx context.Context, parentID, itemID string) (PT, error) {
	return s.modify(ctx, parentID, "remove_"+s.field, func(items []I) ([]I, bool) {
		return lo.Reject(items, func(it I, _ int) bool { return *s.id(&it) == itemID }), true
	})
}

func (s *SubItems[T, PT, I]) modify(ctx context.Context, parentID, op string, edit func([]I) ([]I, bool)) (PT, error) {
	r := s.repo
	return breaker.Execute(ctx, r.breakers, breaker.DocStore,
		func(ctx context.Context) (PT, error) {
			doc, err := r.store.Get(ctx, r.collection, parentID)
			if err != nil || doc == nil {
				return nil, err
			}
			parent, err := r.decode(doc)
			if err != nil {
				return nil, err
			}

			list := s.list(parent)
			items, changed := edit(append([]I(nil), *list...))
			if !changed {
				return parent, nil
			}

			now := catalog.NewTimestamp(r.now())
			if items == nil {
				items = []I{}
			}
			fields := map[string]any{s.field: items, "updatedAt": now}
			if err := r.store.UpdateFields(ctx, r.collection, parentID, fields); err != nil {
				return nil, err
			}
			*list = items
			parent.Meta().UpdatedAt = now
			return parent, nil
		},
		breaker.WriteFallback[PT](r.log, breaker.DocStore, r.collection+"."+op))
}
