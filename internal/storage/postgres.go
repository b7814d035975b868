package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
)

// Querier abstracts the subset of pgxpool.Pool used by Postgres.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres stores every collection in the single documents table as JSONB.
type Postgres struct {
	q Querier
}

var _ Store = (*Postgres)(nil)

// NewPostgres constructs a Postgres store backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{q: pool}
}

// NewPostgresWithQuerier constructs a Postgres store with a custom Querier (for tests).
func NewPostgresWithQuerier(q Querier) *Postgres {
	return &Postgres{q: q}
}

// Ping verifies connectivity when the underlying Querier supports it.
func (p *Postgres) Ping(ctx context.Context) error {
	pinger, ok := p.q.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	return pinger.Ping(ctx)
}

// Put inserts or replaces a document. A replaced document keeps its sequence.
func (p *Postgres) Put(ctx context.Context, collection, id string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling %s/%s: %w", collection, id, err)
	}

	const q = `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (collection, id) DO UPDATE
		SET data       = EXCLUDED.data,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := p.q.Exec(ctx, q, collection, id, data); err != nil {
		return fmt.Errorf("putting %s/%s: %w", collection, id, err)
	}
	return nil
}

// Get returns nil, nil when the document is not found.
func (p *Postgres) Get(ctx context.Context, collection, id string) (Document, error) {
	const q = `SELECT data FROM documents WHERE collection = $1 AND id = $2`

	var data []byte
	if err := p.q.QueryRow(ctx, q, collection, id).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting %s/%s: %w", collection, id, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (p *Postgres) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return nil, err
	}
	q.Filters = filters

	var cur *cursor
	if q.StartAfter != "" {
		cur, err = p.cursor(ctx, collection, q.StartAfter)
		if err != nil {
			return nil, err
		}
		if q.OrderBy != nil && !hasValue(cur.doc, q.OrderBy.Field) {
			return []Document{}, nil
		}
	}

	sql, args, err := buildSelect(collection, q, cur)
	if err != nil {
		return nil, err
	}

	rows, err := p.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	results := []Document{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", collection, err)
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("unmarshaling %s row: %w", collection, err)
		}
		results = append(results, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", collection, err)
	}
	return results, nil
}

type cursor struct {
	seq int64
	doc Document
}

func (p *Postgres) cursor(ctx context.Context, collection, id string) (*cursor, error) {
	const q = `SELECT seq, data FROM documents WHERE collection = $1 AND id = $2`

	var c cursor
	var data []byte
	if err := p.q.QueryRow(ctx, q, collection, id).Scan(&c.seq, &data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCursorNotFound
		}
		return nil, fmt.Errorf("loading cursor %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(data, &c.doc); err != nil {
		return nil, fmt.Errorf("unmarshaling cursor %s/%s: %w", collection, id, err)
	}
	return &c, nil
}

// selectBuilder accumulates positional arguments for a single statement.
type selectBuilder struct {
	where []string
	args  []any
}

func (b *selectBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func buildSelect(collection string, q Query, cur *cursor) (string, []any, error) {
	b := &selectBuilder{}
	b.where = append(b.where, "collection = "+b.arg(collection))

	for _, f := range q.Filters {
		clause, err := b.filterClause(f)
		if err != nil {
			return "", nil, err
		}
		b.where = append(b.where, clause)
	}

	orderBy := "seq"
	if q.OrderBy != nil {
		field := b.arg(q.OrderBy.Field) + "::text"
		b.where = append(b.where, fmt.Sprintf("COALESCE(jsonb_typeof(data -> %s), 'null') <> 'null'", field))
		dir := "ASC"
		if q.OrderBy.Desc {
			dir = "DESC"
		}
		orderBy = fmt.Sprintf("data -> %s %s, seq", field, dir)

		if cur != nil {
			v, err := json.Marshal(cur.doc[q.OrderBy.Field])
			if err != nil {
				return "", nil, fmt.Errorf("marshaling cursor value: %w", err)
			}
			cmp := ">"
			if q.OrderBy.Desc {
				cmp = "<"
			}
			val, seq := b.arg(string(v)), b.arg(cur.seq)
			b.where = append(b.where, fmt.Sprintf(
				"(data -> %[1]s %[2]s %[3]s::jsonb OR (data -> %[1]s = %[3]s::jsonb AND seq > %[4]s))",
				field, cmp, val, seq))
		}
	} else if cur != nil {
		b.where = append(b.where, "seq > "+b.arg(cur.seq))
	}

	sql := fmt.Sprintf("SELECT data FROM documents WHERE %s ORDER BY %s",
		strings.Join(b.where, " AND "), orderBy)
	if q.Limit > 0 {
		sql += " LIMIT " + b.arg(q.Limit)
	}
	return sql, b.args, nil
}

func (b *selectBuilder) filterClause(f Filter) (string, error) {
	if f.Op == OpEqual {
		switch f.Value.(type) {
		case []any, map[string]any:
			v, err := json.Marshal(f.Value)
			if err != nil {
				return "", fmt.Errorf("marshaling filter on %s: %w", f.Field, err)
			}
			return fmt.Sprintf("data -> %s::text = %s::jsonb", b.arg(f.Field), b.arg(string(v))), nil
		}
		v, err := json.Marshal(map[string]any{f.Field: f.Value})
		if err != nil {
			return "", fmt.Errorf("marshaling filter on %s: %w", f.Field, err)
		}
		return "data @> " + b.arg(string(v)) + "::jsonb", nil
	}

	cmp := ">="
	if f.Op == OpLessOrEqual {
		cmp = "<="
	}
	field := b.arg(f.Field) + "::text"
	switch v := f.Value.(type) {
	case string:
		return fmt.Sprintf(`(jsonb_typeof(data -> %[1]s) = 'string' AND (data ->> %[1]s) COLLATE "C" %[2]s %[3]s::text COLLATE "C")`,
			field, cmp, b.arg(v)), nil
	case float64:
		return fmt.Sprintf("(CASE WHEN jsonb_typeof(data -> %[1]s) = 'number' THEN (data ->> %[1]s)::numeric END) %[2]s %[3]s::numeric",
			field, cmp, b.arg(v)), nil
	case bool:
		return fmt.Sprintf("(jsonb_typeof(data -> %[1]s) = 'boolean' AND data -> %[1]s %[2]s %[3]s::jsonb)",
			field, cmp, b.arg(fmt.Sprintf("%t", v))), nil
	default:
		return "", ierr.NewError(fmt.Sprintf("range filter on %s needs a string, number or boolean", f.Field)).
			Mark(ierr.ErrValidation)
	}
}

// Merge deep-merges patch into the stored document inside a transaction,
// holding a row lock between the read and the write.
func (p *Postgres) Merge(ctx context.Context, collection, id string, patch Document) error {
	norm, err := ToDocument(patch)
	if err != nil {
		return err
	}

	tx, err := p.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const sel = `SELECT data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`

	var data []byte
	if err := tx.QueryRow(ctx, sel, collection, id).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(collection, id)
		}
		return fmt.Errorf("locking %s/%s: %w", collection, id, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshaling %s/%s: %w", collection, id, err)
	}
	merged, err := json.Marshal(DeepMerge(doc, norm))
	if err != nil {
		return fmt.Errorf("marshaling %s/%s: %w", collection, id, err)
	}

	const upd = `UPDATE documents SET data = $3, updated_at = NOW() WHERE collection = $1 AND id = $2`
	if _, err := tx.Exec(ctx, upd, collection, id, merged); err != nil {
		return fmt.Errorf("merging %s/%s: %w", collection, id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// UpdateFields overwrites top-level keys with the JSONB || operator.
func (p *Postgres) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshaling fields for %s/%s: %w", collection, id, err)
	}

	const q = `
		UPDATE documents
		SET data       = data || $3::jsonb,
		    updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`

	tag, err := p.q.Exec(ctx, q, collection, id, data)
	if err != nil {
		return fmt.Errorf("updating fields of %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(collection, id)
	}
	return nil
}
