// Package kvx is the badger counterpart of dbx: a handle that is either the
// database itself or a transaction already in progress, plus JSON helpers
// used by the embedded repositories.
package kvx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/filex"
)

// Open opens a badger database at path, creating the directory if needed.
// An empty path opens an in-memory instance, which is what tests use.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true).WithMemTableSize(16 << 20)
	} else {
		dir, err := filex.EnsureDir(path)
		if err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(dir).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open: %w", err)
	}
	return db, nil
}

// Store runs reads and writes either in their own transaction or, when
// bound with Bind, inside the caller's transaction.
type Store struct {
	db  *badger.DB
	txn *badger.Txn
}

func NewStore(db *badger.DB) *Store {
	return &Store{db: db}
}

// Bind returns a Store whose operations join txn instead of opening new ones.
func (s *Store) Bind(txn *badger.Txn) *Store {
	return &Store{db: s.db, txn: txn}
}

// View runs fn read-only.
func (s *Store) View(fn func(txn *badger.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	return s.db.View(fn)
}

// Update runs fn read-write and commits when it returns nil.
func (s *Store) Update(fn func(txn *badger.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	return s.db.Update(fn)
}

// maxConflictRetries bounds WithTx retries after badger.ErrConflict.
const maxConflictRetries = 3

// WithTx runs fn inside a read-write transaction and commits on success.
// Commits that lose an optimistic-concurrency race are retried a few times,
// so fn must be safe to run again.
func WithTx(ctx context.Context, db *badger.DB, fn func(ctx context.Context, txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = db.Update(func(txn *badger.Txn) error {
			return fn(ctx, txn)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// GetJSON decodes the value stored under key into v. A missing key yields
// common.ErrorNotFound.
func GetJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("kv error: %w", err)
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, v); err != nil {
			return fmt.Errorf("kv decode %s: %w", key, err)
		}
		return nil
	})
}

// Exists reports whether key is present.
func Exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("kv error: %w", err)
}

// SetJSON stores v under key.
func SetJSON(txn *badger.Txn, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv encode %s: %w", key, err)
	}
	if err := txn.Set([]byte(key), b); err != nil {
		return fmt.Errorf("kv error: %w", err)
	}
	return nil
}

// SetRaw stores a raw value under key.
func SetRaw(txn *badger.Txn, key string, val []byte) error {
	if err := txn.Set([]byte(key), val); err != nil {
		return fmt.Errorf("kv error: %w", err)
	}
	return nil
}

// GetRaw returns a copy of the raw value under key.
func GetRaw(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("kv error: %w", err)
	}
	return item.ValueCopy(nil)
}

// Delete removes key. Deleting a missing key is not an error.
func Delete(txn *badger.Txn, key string) error {
	if err := txn.Delete([]byte(key)); err != nil {
		return fmt.Errorf("kv error: %w", err)
	}
	return nil
}

// Scan decodes every value whose key starts with prefix, in key order.
func Scan[T any](txn *badger.Txn, prefix string) ([]T, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	out := make([]T, 0)
	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		var v T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
		if err != nil {
			return nil, fmt.Errorf("kv decode %s: %w", it.Item().Key(), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Keys returns every key starting with prefix, in key order, without
// reading values.
func Keys(txn *badger.Txn, prefix string) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	out := make([]string, 0)
	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		out = append(out, string(it.Item().KeyCopy(nil)))
	}
	return out, nil
}
