// Package repository persists catalog records in a document store. Every
// store call is guarded by the docstore circuit breaker: reads degrade to
// empty results, writes fail with a retryable error.
package repository

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/neexbeast/flysen-catalog/internal/breaker"
	"github.com/neexbeast/flysen-catalog/internal/catalog"
	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
	"github.com/neexbeast/flysen-catalog/internal/storage"
)

// Record constrains PT to a pointer to a catalog record type T.
type Record[T any] interface {
	*T
	catalog.Entity
}

// Repository is a collection of catalog records of one kind.
type Repository[T any, PT Record[T]] struct {
	collection string
	store      storage.Store
	breakers   *breaker.Registry
	log        *slog.Logger
	now        func() time.Time
	newID      func() string
}

// New constructs a Repository over the given collection.
func New[T any, PT Record[T]](collection string, store storage.Store, breakers *breaker.Registry, log *slog.Logger) *Repository[T, PT] {
	if log == nil {
		log = slog.Default()
	}
	return &Repository[T, PT]{
		collection: collection,
		store:      store,
		breakers:   breakers,
		log:        log.With("collection", collection),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Collection returns the document collection name.
func (r *Repository[T, PT]) Collection() string { return r.collection }

// Create stores rec as a new active record and returns its fresh id. rec is
// updated with the assigned bookkeeping fields only when the write succeeds.
func (r *Repository[T, PT]) Create(ctx context.Context, rec PT) (string, error) {
	cp := *rec
	meta := PT(&cp).Meta()
	now := catalog.NewTimestamp(r.now())
	meta.ID = r.newID()
	meta.Active = true
	meta.CreatedAt = now
	meta.UpdatedAt = now

	doc, err := storage.ToDocument(PT(&cp))
	if err != nil {
		return "", ierr.WithError(err).WithHint("record could not be encoded").Mark(ierr.ErrValidation)
	}

	err = r.write(ctx, "create", func(ctx context.Context) error {
		return r.store.Put(ctx, r.collection, meta.ID, doc)
	})
	if err != nil {
		return "", err
	}

	*rec = cp
	return meta.ID, nil
}

// GetByID returns the record whether or not it is active.
func (r *Repository[T, PT]) GetByID(ctx context.Context, id string) (PT, bool) {
	doc, err := breaker.Execute(ctx, r.breakers, breaker.DocStore,
		func(ctx context.Context) (storage.Document, error) {
			return r.store.Get(ctx, r.collection, id)
		},
		breaker.ReadFallback[storage.Document](r.log, breaker.DocStore, r.collection+".get"))
	if err != nil {
		r.log.Warn("get failed", "id", id, "err", err)
		return nil, false
	}
	if doc == nil {
		return nil, false
	}

	rec, err := r.decode(doc)
	if err != nil {
		r.log.Error("decoding record", "id", id, "err", err)
		return nil, false
	}
	return rec, true
}

// List returns active records in insertion order.
func (r *Repository[T, PT]) List(ctx context.Context, limit int, cursor string) []PT {
	return r.Page(ctx, PageRequest{Limit: limit, Cursor: cursor}).Items
}

// Page is List with the cursor of the next page.
func (r *Repository[T, PT]) Page(ctx context.Context, req PageRequest) PageResult[PT] {
	req = normalizePageRequest(req)
	items := r.query(ctx, "list", storage.Query{
		Filters:    []storage.Filter{storage.Eq("active", true)},
		Limit:      req.Limit,
		StartAfter: req.Cursor,
	})

	res := PageResult[PT]{Items: items}
	if len(items) == req.Limit {
		res.NextCursor = items[len(items)-1].Meta().ID
	}
	return res
}

// ListByField returns active records whose field equals value.
func (r *Repository[T, PT]) ListByField(ctx context.Context, field string, value any) []PT {
	return r.ListWhere(ctx, storage.Eq(field, value))
}

// ListWhere returns active records matching every filter, in insertion order.
func (r *Repository[T, PT]) ListWhere(ctx context.Context, filters ...storage.Filter) []PT {
	q := storage.Query{Filters: append([]storage.Filter{storage.Eq("active", true)}, filters...)}
	return r.query(ctx, "list_where", q)
}

// ListSorted returns active records matching filters, stably sorted by less
// and truncated to limit when limit is positive.
func (r *Repository[T, PT]) ListSorted(ctx context.Context, filters []storage.Filter, less func(a, b PT) bool, limit int) []PT {
	items := r.ListWhere(ctx, filters...)
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	return truncate(items, limit)
}

// ListTopRated returns the highest rated active records within scope.
// Records without a rating are dropped. An empty scopeField ranks every
// active record.
func (r *Repository[T, PT]) ListTopRated(ctx context.Context, scopeField string, scopeValue any, limit int, rating func(PT) *float64) []PT {
	items := lo.Filter(r.scoped(ctx, scopeField, scopeValue), func(rec PT, _ int) bool {
		return rating(rec) != nil
	})
	sort.SliceStable(items, func(i, j int) bool { return *rating(items[i]) > *rating(items[j]) })
	return truncate(items, normalizeLimit(limit))
}

// ListByCategoryScored returns active records of one category within scope,
// by score descending with unscored records last.
func (r *Repository[T, PT]) ListByCategoryScored(ctx context.Context, scopeField string, scopeValue any, categoryField string, category any, score func(PT) *float64) []PT {
	items := r.ListWhere(ctx, storage.Eq(scopeField, scopeValue), storage.Eq(categoryField, category))
	sort.SliceStable(items, func(i, j int) bool {
		a, b := score(items[i]), score(items[j])
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return items
}

// Search matches term case-insensitively against each record's search
// fields. An empty scopeField searches every active record.
func (r *Repository[T, PT]) Search(ctx context.Context, scopeField string, scopeValue any, term string) []PT {
	needle := strings.ToLower(term)
	return lo.Filter(r.scoped(ctx, scopeField, scopeValue), func(rec PT, _ int) bool {
		return lo.SomeBy(rec.SearchFields(), func(s string) bool {
			return strings.Contains(strings.ToLower(s), needle)
		})
	})
}

// Update merges the fields set on rec into the stored record. The id, the
// active flag and the creation time are never changed.
func (r *Repository[T, PT]) Update(ctx context.Context, id string, rec PT) error {
	patch, err := updatePatch(rec, catalog.NewTimestamp(r.now()))
	if err != nil {
		return ierr.WithError(err).WithHint("record could not be encoded").Mark(ierr.ErrValidation)
	}
	return r.write(ctx, "update", func(ctx context.Context) error {
		return r.store.Merge(ctx, r.collection, id, patch)
	})
}

// Delete marks the record inactive.
func (r *Repository[T, PT]) Delete(ctx context.Context, id string) error {
	fields := map[string]any{
		"active":    false,
		"updatedAt": catalog.NewTimestamp(r.now()),
	}
	return r.write(ctx, "delete", func(ctx context.Context) error {
		return r.store.UpdateFields(ctx, r.collection, id, fields)
	})
}

func (r *Repository[T, PT]) scoped(ctx context.Context, field string, value any) []PT {
	if field == "" {
		return r.ListWhere(ctx)
	}
	return r.ListByField(ctx, field, value)
}

func (r *Repository[T, PT]) query(ctx context.Context, op string, q storage.Query) []PT {
	docs, err := breaker.Execute(ctx, r.breakers, breaker.DocStore,
		func(ctx context.Context) ([]storage.Document, error) {
			return r.store.Query(ctx, r.collection, q)
		},
		breaker.ReadFallback[[]storage.Document](r.log, breaker.DocStore, r.collection+"."+op))
	if err != nil {
		// Unknown cursor, rejected filter or a canceled caller.
		r.log.Warn("query returned no results", "operation", op, "err", err)
		return []PT{}
	}

	items := make([]PT, 0, len(docs))
	for _, doc := range docs {
		rec, err := r.decode(doc)
		if err != nil {
			r.log.Error("skipping undecodable record", "id", doc["id"], "err", err)
			continue
		}
		items = append(items, rec)
	}
	return items
}

func (r *Repository[T, PT]) write(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	_, err := breaker.Execute(ctx, r.breakers, breaker.DocStore,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, fn(ctx)
		},
		breaker.WriteFallback[struct{}](r.log, breaker.DocStore, r.collection+"."+op))
	return err
}

func (r *Repository[T, PT]) decode(doc storage.Document) (PT, error) {
	var v T
	if err := storage.FromDocument(doc, &v); err != nil {
		return nil, err
	}
	return PT(&v), nil
}

// updatePatch encodes rec as a merge patch holding only the fields it sets.
func updatePatch(rec any, now catalog.Timestamp) (storage.Document, error) {
	doc, err := storage.ToDocument(rec)
	if err != nil {
		return nil, err
	}
	doc = dropNils(doc)
	delete(doc, "id")
	delete(doc, "active")
	delete(doc, "createdAt")
	doc["updatedAt"] = now
	return doc, nil
}

func dropNils(doc map[string]any) map[string]any {
	for k, v := range doc {
		switch t := v.(type) {
		case nil:
			delete(doc, k)
		case map[string]any:
			doc[k] = dropNils(t)
		}
	}
	return doc
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
