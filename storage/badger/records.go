package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/newsroom/core"
	"github.com/poiesic/newsroom/storage"
)

// RecordStore implements storage.RecordStore on BadgerDB.
type RecordStore struct {
	backend   *Backend
	seq       *badger.Sequence
	ownsStore bool
	closeOnce sync.Once
}

var _ storage.RecordStore = (*RecordStore)(nil)

// NewStore opens a durable store rooted at path.
func NewStore(path string, opts ...BackendOption) (storage.RecordStore, error) {
	backend, err := OpenBackend(path, false, opts...)
	if err != nil {
		return nil, err
	}
	return openOwned(backend)
}

// NewMemoryStore opens a non-durable Badger store, useful in tests.
func NewMemoryStore() (storage.RecordStore, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return openOwned(backend)
}

func openOwned(backend *Backend) (*RecordStore, error) {
	store, err := NewRecordStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	store.ownsStore = true
	return store, nil
}

// NewRecordStore builds a store over an existing backend.
// Closing the store does not close the backend.
func NewRecordStore(backend *Backend) (*RecordStore, error) {
	seq, err := backend.GetSequence(recordIndexSeq)
	if err != nil {
		return nil, err
	}
	return &RecordStore{backend: backend, seq: seq}, nil
}

// Save implements storage.RecordStore.
func (r *RecordStore) Save(ctx context.Context, record *core.Record) error {
	if err := core.ValidateRecord(record); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := storage.MarshalRecord(record)
	if err != nil {
		return err
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRecordKey(record.ID)
		if _, err := tx.Get(key); err == nil {
			return storage.ErrDuplicateKey
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		pos, err := r.seq.Next()
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		if err := tx.Set(makeIndexKey(pos, record.ID), nil); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	// Only the record key is read, so a conflict means a concurrent Save
	// of the same ID committed first.
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %w", storage.ErrDuplicateKey, err)
	}
	return err
}

// Get implements storage.RecordStore.
func (r *RecordStore) Get(ctx context.Context, id core.ID) (*core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record *core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = readRecord(tx, makeRecordKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// List implements storage.RecordStore. It walks the insertion index.
func (r *RecordStore) List(ctx context.Context, topic core.Topic, limit int) ([]*core.Record, error) {
	limit = storage.EffectiveLimit(limit)
	var records []*core.Record

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(recordIndexPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, ok := parseIndexKey(iter.Item().Key())
			if !ok {
				continue
			}
			record, err := readRecord(tx, makeRecordKey(id))
			if errors.Is(err, storage.ErrNotFound) {
				r.backend.logger.Warn("dangling index entry", "id", id)
				continue
			}
			if err != nil {
				return err
			}
			if !storage.Matches(record, topic) {
				continue
			}
			records = append(records, record)
			if len(records) == limit {
				break
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*core.Record{}
	}
	return records, nil
}

// Close releases the index sequence and, for stores opened by NewStore or
// NewMemoryStore, the underlying backend.
func (r *RecordStore) Close() error {
	var err error
	r.closeOnce.Do(func() {
		if r.backend.IsClosed() {
			return
		}
		err = r.seq.Release()
		if r.ownsStore {
			err = errors.Join(err, r.backend.Close())
		}
	})
	return err
}

func readRecord(tx *badger.Txn, key []byte) (*core.Record, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var record *core.Record
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalRecord(val)
		return err
	})
	return record, err
}
