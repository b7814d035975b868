package storage_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
	"github.com/neexbeast/flysen-catalog/internal/storage"
)

// backends returns every embedded Store implementation, freshly created.
func backends(t *testing.T) map[string]storage.Store {
	t.Helper()
	b, err := storage.OpenBolt(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	return map[string]storage.Store{
		"memory": storage.NewMemory(),
		"bolt":   b,
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s storage.Store)) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) { fn(t, s) })
	}
}

func put(t *testing.T, s storage.Store, coll, id string, doc storage.Document) {
	t.Helper()
	doc["id"] = id
	require.NoError(t, s.Put(context.Background(), coll, id, doc))
}

func ids(docs []storage.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i], _ = d["id"].(string)
	}
	return out
}

func TestStore_PutGet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		put(t, s, "destinations", "d1", storage.Document{"name": "Paris", "tags": []string{"a"}})

		doc, err := s.Get(ctx, "destinations", "d1")
		require.NoError(t, err)
		assert.Equal(t, "Paris", doc["name"])
		assert.Equal(t, []any{"a"}, doc["tags"])

		missing, err := s.Get(ctx, "destinations", "nope")
		require.NoError(t, err)
		assert.Nil(t, missing)

		missing, err = s.Get(ctx, "unknown", "d1")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestStore_GetReturnsCopy(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		put(t, s, "destinations", "d1", storage.Document{"name": "Paris"})

		doc, err := s.Get(ctx, "destinations", "d1")
		require.NoError(t, err)
		doc["name"] = "changed"

		again, err := s.Get(ctx, "destinations", "d1")
		require.NoError(t, err)
		assert.Equal(t, "Paris", again["name"])
	})
}

func TestStore_PutReplacesAndKeepsPosition(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s storage.Store) {
		put(t, s, "c", "a", storage.Document{"v": 1})
		put(t, s, "c", "b", storage.Document{"v": 2})
		put(t, s, "c", "a", storage.Document{"v": 3})

		docs, err := s.Query(context.Background(), "c", storage.Query{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids(docs))
		assert.Equal(t, 3.0, docs[0]["v"])
	})
}

func TestStore_QueryFilters(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s storage.Store) {
		put(t, s, "events", "e1", storage.Document{"type": "CONCERT", "date": "2026-03-01", "active": true, "capacity": 100})
		put(t, s, "events", "e2", storage.Document{"type": "FESTIVAL", "date": "2026-04-01", "active": true, "capacity": 500})
		put(t, s, "events", "e3", storage.Document{"type": "CONCERT", "date": "2026-05-01", "active": false, "capacity": 50})
		put(t, s, "events", "e4", storage.Document{"type": "CONCERT", "date": "2026-06-01", "active": true})

		ctx := context.Background()
		docs, err := s.Query(ctx, "events", storage.Query{Filters: []storage.Filter{
			storage.Eq("type", "CONCERT"), storage.Eq("active", true),
		}})
		require.NoError(t, err)
		assert.Equal(t, []string{"e1", "e4"}, ids(docs))

		docs, err = s.Query(ctx, "events", storage.Query{Filters: []storage.Filter{
			storage.Gte("date", "2026-03-15"), storage.Lte("date", "2026-05-01"),
		}})
		require.NoError(t, err)
		assert.Equal(t, []string{"e2", "e3"}, ids(docs))

		docs, err = s.Query(ctx, "events", storage.Query{Filters: []storage.Filter{storage.Gte("capacity", 100)}})
		require.NoError(t, err)
		assert.Equal(t, []string{"e1", "e2"}, ids(docs))

		docs, err = s.Query(ctx, "events", storage.Query{Filters: []storage.Filter{storage.Gte("capacity", "100")}})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestStore_QueryUnsupportedOperator(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s storage.Store) {
		_, err := s.Query(context.Background(), "events", storage.Query{Filters: []storage.Filter{
			{Field: "type", Op: "!=", Value: "x"},
		}})
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})
}

func TestStore_QueryOrderAndLimit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s storage.Store) {
		put(t, s, "d", "a", storage.Document{"score": 2.5})
		put(t, s, "d", "b", storage.Document{})
		put(t, s, "d", "c", storage.Document{"score": 4.8})
		put(t, s, "d", "d", storage.Document{"score": 2.5})
		put(t, s, "d", "e", storage.Document{"score": nil})

		ctx := context.Background()
		docs, err := s.Query(ctx, "d", storage.Query{OrderBy: &storage.Order{Field: "score", Desc: true}})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "d"}, ids(docs))

		docs, err = s.Query(ctx, "d", storage.Query{OrderBy: &storage.Order{Field: "score"}, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "d"}, ids(docs))
	})
}

func TestStore_QueryCursor(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s storage.Store) {
		for _, id := range []string{"a", "b", "c", "d", "e"} {
			put(t, s, "d", id, storage.Document{"active": true})
		}

		ctx := context.Background()
		var seen []string
		cursor := ""
		for {
			docs, err := s.Query(ctx, "d", storage.Query{Limit: 2, StartAfter: cursor})
			require.NoError(t, err)
			if len(docs) == 0 {
				break
			}
			seen = append(seen, ids(docs)...)
			cursor = ids(docs)[len(docs)-1]
		}
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, seen)

		_, err := s.Query(ctx, "d", storage.Query{StartAfter: "zzz"})
		require.ErrorIs(t, err, storage.ErrCursorNotFound)
		assert.True(t, ierr.IsNotFound(err))
	})
}

func TestStore_QueryOrderedCursor(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s storage.Store) {
		put(t, s, "d", "a", storage.Document{"score": 1})
		put(t, s, "d", "b", storage.Document{"score": 3})
		put(t, s, "d", "c", storage.Document{"score": 3})
		put(t, s, "d", "d", storage.Document{"score": 2})

		docs, err := s.Query(context.Background(), "d", storage.Query{
			OrderBy:    &storage.Order{Field: "score", Desc: true},
			StartAfter: "b",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "d", "a"}, ids(docs))
	})
}

func TestStore_Merge(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		put(t, s, "d", "a", storage.Document{
			"name":   "Paris",
			"stats":  map[string]any{"views": 3, "likes": 1},
			"images": []string{"x", "y"},
		})

		require.NoError(t, s.Merge(ctx, "d", "a", storage.Document{
			"stats":  map[string]any{"views": 4},
			"images": []string{"z"},
		}))

		doc, err := s.Get(ctx, "d", "a")
		require.NoError(t, err)
		assert.Equal(t, "Paris", doc["name"])
		assert.Equal(t, map[string]any{"views": 4.0, "likes": 1.0}, doc["stats"])
		assert.Equal(t, []any{"z"}, doc["images"])

		err = s.Merge(ctx, "d", "missing", storage.Document{"name": "x"})
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestStore_UpdateFields(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		put(t, s, "d", "a", storage.Document{"name": "Paris", "active": true, "stats": map[string]any{"views": 1}})

		require.NoError(t, s.UpdateFields(ctx, "d", "a", map[string]any{
			"active": false,
			"stats":  map[string]any{"likes": 2},
		}))

		doc, err := s.Get(ctx, "d", "a")
		require.NoError(t, err)
		assert.Equal(t, false, doc["active"])
		assert.Equal(t, "Paris", doc["name"])
		assert.Equal(t, map[string]any{"likes": 2.0}, doc["stats"])

		err = s.UpdateFields(ctx, "other", "a", map[string]any{"active": false})
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestStore_CanceledContext(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s storage.Store) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.ErrorIs(t, s.Put(ctx, "d", "a", storage.Document{}), context.Canceled)
		_, err := s.Get(ctx, "d", "a")
		require.ErrorIs(t, err, context.Canceled)
	})
}

// Run with -race: every backend must tolerate concurrent writers and readers.
func TestStore_ConcurrentWrites(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s storage.Store) {
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := string(rune('a'+i%26)) + "-" + string(rune('0'+i/26))
				assert.NoError(t, s.Put(ctx, "d", id, storage.Document{"n": i}))
				_, err := s.Get(ctx, "d", id)
				assert.NoError(t, err)
				assert.NoError(t, s.UpdateFields(ctx, "d", id, map[string]any{"seen": true}))
			}(i)
		}
		wg.Wait()

		docs, err := s.Query(ctx, "d", storage.Query{Filters: []storage.Filter{storage.Eq("seen", true)}})
		require.NoError(t, err)
		assert.Len(t, docs, 50)
	})
}

func TestDeepMerge(t *testing.T) {
	dst := storage.Document{"a": map[string]any{"b": 1.0, "c": 2.0}, "list": []any{1.0}}
	out := storage.DeepMerge(dst, storage.Document{"a": map[string]any{"c": 3.0}, "list": []any{2.0, 3.0}, "n": "x"})

	assert.Equal(t, storage.Document{
		"a":    map[string]any{"b": 1.0, "c": 3.0},
		"list": []any{2.0, 3.0},
		"n":    "x",
	}, out)
}

func TestBolt_Ping(t *testing.T) {
	b, err := storage.OpenBolt(filepath.Join(t.TempDir(), "ping.db"))
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Ping(context.Background()))
}

func TestBolt_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	b, err := storage.OpenBolt(path)
	require.NoError(t, err)
	put(t, b, "d", "a", storage.Document{"name": "Paris"})
	require.NoError(t, b.Close())

	b, err = storage.OpenBolt(path)
	require.NoError(t, err)
	defer b.Close()

	doc, err := b.Get(context.Background(), "d", "a")
	require.NoError(t, err)
	assert.Equal(t, "Paris", doc["name"])
}
