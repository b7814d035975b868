package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	docsBucket = []byte("docs")
	idsBucket  = []byte("ids")
)

// Bolt is an embedded single-file Store. Each collection is a top-level
// bucket holding two sub-buckets: docs (big-endian sequence -> JSON) keeps
// insertion order, ids (id -> sequence) is the primary-key index.
type Bolt struct {
	db *bolt.DB
}

var _ Store = (*Bolt)(nil)

// OpenBolt opens (or creates) the database file at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database %s: %w", path, err)
	}
	return &Bolt{db: db}, nil
}

// Close releases the database file lock.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Ping runs an empty read transaction.
func (b *Bolt) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.View(func(*bolt.Tx) error { return nil })
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

func collectionBuckets(tx *bolt.Tx, collection string) (docs, ids *bolt.Bucket) {
	root := tx.Bucket([]byte(collection))
	if root == nil {
		return nil, nil
	}
	return root.Bucket(docsBucket), root.Bucket(idsBucket)
}

func (b *Bolt) Put(ctx context.Context, collection, id string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling %s/%s: %w", collection, id, err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return err
		}
		docs, err := root.CreateBucketIfNotExists(docsBucket)
		if err != nil {
			return err
		}
		ids, err := root.CreateBucketIfNotExists(idsBucket)
		if err != nil {
			return err
		}

		key := ids.Get([]byte(id))
		if key == nil {
			seq, err := docs.NextSequence()
			if err != nil {
				return err
			}
			key = seqKey(seq)
			if err := ids.Put([]byte(id), key); err != nil {
				return err
			}
		}
		return docs.Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("putting %s/%s: %w", collection, id, err)
	}
	return nil
}

func (b *Bolt) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc Document
	err := b.db.View(func(tx *bolt.Tx) error {
		docs, ids := collectionBuckets(tx, collection)
		if docs == nil {
			return nil
		}
		key := ids.Get([]byte(id))
		if key == nil {
			return nil
		}
		return json.Unmarshal(docs.Get(key), &doc)
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (b *Bolt) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return nil, err
	}
	q.Filters = filters

	var entries []entry
	err = b.db.View(func(tx *bolt.Tx) error {
		docs, ids := collectionBuckets(tx, collection)
		if docs == nil {
			return nil
		}
		idBySeq := make(map[uint64]string, ids.Stats().KeyN)
		if err := ids.ForEach(func(k, v []byte) error {
			idBySeq[binary.BigEndian.Uint64(v)] = string(k)
			return nil
		}); err != nil {
			return err
		}
		return docs.ForEach(func(k, v []byte) error {
			var doc Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			seq := binary.BigEndian.Uint64(k)
			entries = append(entries, entry{seq: seq, id: idBySeq[seq], doc: doc})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	return evaluate(entries, q)
}

func (b *Bolt) Merge(ctx context.Context, collection, id string, patch Document) error {
	norm, err := ToDocument(patch)
	if err != nil {
		return err
	}
	return b.mutate(ctx, collection, id, func(doc Document) Document {
		return DeepMerge(doc, norm)
	})
}

func (b *Bolt) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	norm, err := ToDocument(fields)
	if err != nil {
		return err
	}
	return b.mutate(ctx, collection, id, func(doc Document) Document {
		for k, v := range norm {
			doc[k] = v
		}
		return doc
	})
}

// mutate applies fn to the stored document inside a single write transaction.
func (b *Bolt) mutate(ctx context.Context, collection, id string, fn func(Document) Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		docs, ids := collectionBuckets(tx, collection)
		if docs == nil {
			return notFound(collection, id)
		}
		key := ids.Get([]byte(id))
		if key == nil {
			return notFound(collection, id)
		}

		var doc Document
		if err := json.Unmarshal(docs.Get(key), &doc); err != nil {
			return fmt.Errorf("unmarshaling %s/%s: %w", collection, id, err)
		}
		data, err := json.Marshal(fn(doc))
		if err != nil {
			return fmt.Errorf("marshaling %s/%s: %w", collection, id, err)
		}
		return docs.Put(key, data)
	})
}
