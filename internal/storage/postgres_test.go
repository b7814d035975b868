package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
	"github.com/neexbeast/flysen-catalog/internal/storage"
)

// ---- mock Querier ----

type mockQuerier struct {
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	beginFn    func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.queryRowFn(ctx, sql, args...)
}
func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return m.queryFn(ctx, sql, args...)
}
func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return m.execFn(ctx, sql, args...)
}
func (m *mockQuerier) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.beginFn(ctx)
}

// ---- mock pgx.Row ----

type fakeRow struct {
	scanFn func(dest ...any) error
}

func (f *fakeRow) Scan(dest ...any) error { return f.scanFn(dest...) }

func dataRow(data string) *fakeRow {
	return &fakeRow{scanFn: func(dest ...any) error {
		*dest[0].(*[]byte) = []byte(data)
		return nil
	}}
}

func errRow(err error) *fakeRow {
	return &fakeRow{scanFn: func(...any) error { return err }}
}

// ---- mock pgx.Rows ----

type fakeRows struct {
	rows    [][]any
	idx     int
	rowErr  error
	scanErr error
}

func (f *fakeRows) Next() bool                                   { f.idx++; return f.idx <= len(f.rows) }
func (f *fakeRows) Err() error                                   { return f.rowErr }
func (f *fakeRows) Close()                                       {}
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

func (f *fakeRows) Scan(dest ...any) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	row := f.rows[f.idx-1]
	for i, d := range dest {
		if i >= len(row) {
			break
		}
		switch v := d.(type) {
		case *int64:
			*v = row[i].(int64)
		case *string:
			*v = row[i].(string)
		case *[]byte:
			*v = row[i].([]byte)
		}
	}
	return nil
}

// ---- mock pgx.Tx ----

type mockTx struct {
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (t *mockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.execFn(ctx, sql, args...)
}
func (t *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.queryRowFn(ctx, sql, args...)
}
func (t *mockTx) Commit(ctx context.Context) error   { return t.commitFn(ctx) }
func (t *mockTx) Rollback(ctx context.Context) error { return t.rollbackFn(ctx) }

// pgx.Tx has many more methods; stub them all out.
func (t *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (t *mockTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *mockTx) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }
func (t *mockTx) LargeObjects() pgx.LargeObjects                             { return pgx.LargeObjects{} }
func (t *mockTx) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *mockTx) Conn() *pgx.Conn { return nil }

func okExec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

// ---- Get ----

func TestPostgresGet_Found(t *testing.T) {
	var capturedArgs []any
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, args ...any) pgx.Row {
			capturedArgs = args
			return dataRow(`{"id":"d1","name":"Paris","active":true}`)
		},
	}

	doc, err := storage.NewPostgresWithQuerier(q).Get(context.Background(), "destinations", "d1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Paris", doc["name"])
	assert.Equal(t, []any{"destinations", "d1"}, capturedArgs)
}

func TestPostgresGet_NotFound(t *testing.T) {
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row { return errRow(pgx.ErrNoRows) },
	}

	doc, err := storage.NewPostgresWithQuerier(q).Get(context.Background(), "destinations", "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestPostgresGet_DBError(t *testing.T) {
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return errRow(fmt.Errorf("connection reset"))
		},
	}

	_, err := storage.NewPostgresWithQuerier(q).Get(context.Background(), "destinations", "d1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "getting destinations/d1")
}

func TestPostgresGet_BadJSON(t *testing.T) {
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row { return dataRow("not-valid-json") },
	}

	_, err := storage.NewPostgresWithQuerier(q).Get(context.Background(), "destinations", "d1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshaling")
}

// ---- Put ----

func TestPostgresPut_Success(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	q := &mockQuerier{
		execFn: func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			capturedSQL, capturedArgs = sql, args
			return pgconn.CommandTag{}, nil
		},
	}

	err := storage.NewPostgresWithQuerier(q).Put(context.Background(), "events", "e1", storage.Document{"name": "Jazz"})
	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "ON CONFLICT (collection, id)")
	require.Len(t, capturedArgs, 3)
	assert.Equal(t, "events", capturedArgs[0])
	assert.Equal(t, "e1", capturedArgs[1])
	assert.JSONEq(t, `{"name":"Jazz"}`, string(capturedArgs[2].([]byte)))
}

func TestPostgresPut_DBError(t *testing.T) {
	q := &mockQuerier{
		execFn: func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, fmt.Errorf("db error")
		},
	}

	err := storage.NewPostgresWithQuerier(q).Put(context.Background(), "events", "e1", storage.Document{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "putting events/e1")
}

// ---- Query ----

func TestPostgresQuery_EqualityUsesContainment(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	q := &mockQuerier{
		queryFn: func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
			capturedSQL, capturedArgs = sql, args
			return &fakeRows{rows: [][]any{{[]byte(`{"id":"d1","region":"Europe"}`)}}}, nil
		},
	}

	docs, err := storage.NewPostgresWithQuerier(q).Query(context.Background(), "destinations", storage.Query{
		Filters: []storage.Filter{storage.Eq("region", "Europe")},
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "d1", docs[0]["id"])
	assert.Equal(t,
		"SELECT data FROM documents WHERE collection = $1 AND data @> $2::jsonb ORDER BY seq LIMIT $3",
		capturedSQL)
	require.Len(t, capturedArgs, 3)
	assert.JSONEq(t, `{"region":"Europe"}`, capturedArgs[1].(string))
	assert.Equal(t, 10, capturedArgs[2])
}

func TestPostgresQuery_RangeFilters(t *testing.T) {
	var capturedSQL string
	q := &mockQuerier{
		queryFn: func(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
			capturedSQL = sql
			return &fakeRows{}, nil
		},
	}

	docs, err := storage.NewPostgresWithQuerier(q).Query(context.Background(), "events", storage.Query{
		Filters: []storage.Filter{
			storage.Gte("date", "2026-01-01T00:00:00.000000000Z"),
			storage.Lte("remainingCapacity", 50),
		},
	})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Contains(t, capturedSQL, `COLLATE "C" >= $3::text COLLATE "C"`)
	assert.Contains(t, capturedSQL, "::numeric END) <= $5::numeric")
}

func TestPostgresQuery_UnsupportedRangeValue(t *testing.T) {
	_, err := storage.NewPostgresWithQuerier(&mockQuerier{}).Query(context.Background(), "events", storage.Query{
		Filters: []storage.Filter{storage.Gte("tags", []string{"a"})},
	})
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestPostgresQuery_OrderedCursor(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &fakeRow{scanFn: func(dest ...any) error {
				*dest[0].(*int64) = 7
				*dest[1].(*[]byte) = []byte(`{"id":"d7","popularityScore":4.5}`)
				return nil
			}}
		},
		queryFn: func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
			capturedSQL, capturedArgs = sql, args
			return &fakeRows{}, nil
		},
	}

	_, err := storage.NewPostgresWithQuerier(q).Query(context.Background(), "destinations", storage.Query{
		OrderBy:    &storage.Order{Field: "popularityScore", Desc: true},
		StartAfter: "d7",
	})
	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "data -> $2::text < $3::jsonb OR (data -> $2::text = $3::jsonb AND seq > $4)")
	assert.Contains(t, capturedSQL, "ORDER BY data -> $2::text DESC, seq")
	assert.Equal(t, "4.5", capturedArgs[2])
	assert.Equal(t, int64(7), capturedArgs[3])
}

func TestPostgresQuery_InsertionOrderCursor(t *testing.T) {
	var capturedSQL string
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &fakeRow{scanFn: func(dest ...any) error {
				*dest[0].(*int64) = 3
				*dest[1].(*[]byte) = []byte(`{"id":"d3"}`)
				return nil
			}}
		},
		queryFn: func(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
			capturedSQL = sql
			return &fakeRows{}, nil
		},
	}

	_, err := storage.NewPostgresWithQuerier(q).Query(context.Background(), "destinations", storage.Query{StartAfter: "d3"})
	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "seq > $2 ORDER BY seq")
}

func TestPostgresQuery_UnknownCursor(t *testing.T) {
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row { return errRow(pgx.ErrNoRows) },
	}

	_, err := storage.NewPostgresWithQuerier(q).Query(context.Background(), "destinations", storage.Query{StartAfter: "nope"})
	require.ErrorIs(t, err, storage.ErrCursorNotFound)
}

func TestPostgresQuery_QueryError(t *testing.T) {
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
			return nil, fmt.Errorf("query failed")
		},
	}

	_, err := storage.NewPostgresWithQuerier(q).Query(context.Background(), "events", storage.Query{})
	require.Error(t, err)
}

func TestPostgresQuery_ScanError(t *testing.T) {
	rows := &fakeRows{rows: [][]any{{[]byte("{}")}}, scanErr: fmt.Errorf("scan failed")}
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return rows, nil },
	}

	_, err := storage.NewPostgresWithQuerier(q).Query(context.Background(), "events", storage.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanning")
}

func TestPostgresQuery_RowsErr(t *testing.T) {
	rows := &fakeRows{rowErr: fmt.Errorf("rows iteration error")}
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return rows, nil },
	}

	_, err := storage.NewPostgresWithQuerier(q).Query(context.Background(), "events", storage.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterating")
}

func TestPostgresQuery_BadJSON(t *testing.T) {
	rows := &fakeRows{rows: [][]any{{[]byte("not-json")}}}
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return rows, nil },
	}

	_, err := storage.NewPostgresWithQuerier(q).Query(context.Background(), "events", storage.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshaling")
}

// ---- Merge ----

func TestPostgresMerge_DeepMergesInTransaction(t *testing.T) {
	var written []byte
	committed := false
	tx := &mockTx{
		queryRowFn: func(_ context.Context, sql string, _ ...any) pgx.Row {
			assert.Contains(t, sql, "FOR UPDATE")
			return dataRow(`{"id":"d1","name":"Paris","stats":{"views":3,"likes":1},"images":["a","b"]}`)
		},
		execFn: func(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
			written = args[2].([]byte)
			return pgconn.CommandTag{}, nil
		},
		commitFn:   func(_ context.Context) error { committed = true; return nil },
		rollbackFn: func(_ context.Context) error { return nil },
	}
	q := &mockQuerier{beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil }}

	err := storage.NewPostgresWithQuerier(q).Merge(context.Background(), "destinations", "d1", storage.Document{
		"stats":  map[string]any{"views": 4},
		"images": []string{"c"},
	})
	require.NoError(t, err)
	assert.True(t, committed)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(written, &doc))
	assert.Equal(t, "Paris", doc["name"])
	assert.Equal(t, map[string]any{"views": 4.0, "likes": 1.0}, doc["stats"])
	assert.Equal(t, []any{"c"}, doc["images"])
}

func TestPostgresMerge_NotFound(t *testing.T) {
	rolledBack := false
	tx := &mockTx{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row { return errRow(pgx.ErrNoRows) },
		execFn:     okExec,
		commitFn:   func(_ context.Context) error { return nil },
		rollbackFn: func(_ context.Context) error { rolledBack = true; return nil },
	}
	q := &mockQuerier{beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil }}

	err := storage.NewPostgresWithQuerier(q).Merge(context.Background(), "destinations", "missing", storage.Document{"name": "x"})
	require.ErrorIs(t, err, storage.ErrNotFound)
	assert.True(t, ierr.IsNotFound(err))
	assert.True(t, rolledBack)
}

func TestPostgresMerge_BeginError(t *testing.T) {
	q := &mockQuerier{beginFn: func(_ context.Context) (pgx.Tx, error) { return nil, errors.New("pool closed") }}

	err := storage.NewPostgresWithQuerier(q).Merge(context.Background(), "destinations", "d1", storage.Document{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beginning transaction")
}

// ---- UpdateFields ----

func TestPostgresUpdateFields_Success(t *testing.T) {
	var capturedArgs []any
	q := &mockQuerier{
		execFn: func(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
			capturedArgs = args
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}

	err := storage.NewPostgresWithQuerier(q).UpdateFields(context.Background(), "events", "e1", map[string]any{"active": false})
	require.NoError(t, err)
	assert.JSONEq(t, `{"active":false}`, string(capturedArgs[2].([]byte)))
}

func TestPostgresUpdateFields_NotFound(t *testing.T) {
	q := &mockQuerier{
		execFn: func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		},
	}

	err := storage.NewPostgresWithQuerier(q).UpdateFields(context.Background(), "events", "missing", map[string]any{"active": false})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNewPostgres_NotNil(t *testing.T) {
	assert.NotNil(t, storage.NewPostgres(nil))
}
