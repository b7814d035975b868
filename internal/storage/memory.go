package storage

import (
	"context"
	"sync"
)

// Memory is a goroutine-safe in-process Store. Documents are copied on the
// way in and out so callers never share state with the store.
type Memory struct {
	mu          sync.RWMutex
	seq         uint64
	collections map[string]*memCollection
}

type memCollection struct {
	byID  map[string]*entry
	order []*entry
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memCollection)}
}

func (m *Memory) collection(name string) *memCollection {
	c, ok := m.collections[name]
	if !ok {
		c = &memCollection{byID: make(map[string]*entry)}
		m.collections[name] = c
	}
	return c
}

// Ping always succeeds.
func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) Put(ctx context.Context, collection, id string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	norm, err := ToDocument(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	if e, ok := c.byID[id]; ok {
		e.doc = norm
		return nil
	}
	m.seq++
	e := &entry{seq: m.seq, id: id, doc: norm}
	c.byID[id] = e
	c.order = append(c.order, e)
	return nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return nil, nil
	}
	e, ok := c.byID[id]
	if !ok {
		return nil, nil
	}
	return e.doc.Clone(), nil
}

func (m *Memory) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return nil, err
	}
	q.Filters = filters

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		if q.StartAfter != "" {
			return nil, ErrCursorNotFound
		}
		return []Document{}, nil
	}
	entries := make([]entry, len(c.order))
	for i, e := range c.order {
		entries[i] = *e
	}
	return evaluate(entries, q)
}

func (m *Memory) Merge(ctx context.Context, collection, id string, patch Document) error {
	norm, err := ToDocument(patch)
	if err != nil {
		return err
	}
	return m.mutate(ctx, collection, id, func(doc Document) Document {
		return DeepMerge(doc, norm)
	})
}

func (m *Memory) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	norm, err := ToDocument(fields)
	if err != nil {
		return err
	}
	return m.mutate(ctx, collection, id, func(doc Document) Document {
		for k, v := range norm {
			doc[k] = v
		}
		return doc
	})
}

func (m *Memory) mutate(ctx context.Context, collection, id string, fn func(Document) Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		return notFound(collection, id)
	}
	e, ok := c.byID[id]
	if !ok {
		return notFound(collection, id)
	}
	e.doc = fn(e.doc.Clone())
	return nil
}
