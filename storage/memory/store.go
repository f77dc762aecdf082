package memory

import (
	"context"
	"sync"

	"github.com/poiesic/newsroom/core"
	"github.com/poiesic/newsroom/storage"
)

// Store is a process-local RecordStore. Records live as long as the process.
type Store struct {
	mu      sync.RWMutex
	records map[core.ID]*core.Record
	order   []core.ID
	closed  bool
}

var _ storage.RecordStore = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() storage.RecordStore {
	return newStore()
}

func newStore() *Store {
	return &Store{records: make(map[core.ID]*core.Record)}
}

// Save implements storage.RecordStore.
func (s *Store) Save(ctx context.Context, record *core.Record) error {
	if err := core.ValidateRecord(record); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}
	if _, ok := s.records[record.ID]; ok {
		return storage.ErrDuplicateKey
	}
	s.records[record.ID] = storage.CloneRecord(record)
	s.order = append(s.order, record.ID)
	return nil
}

// Get implements storage.RecordStore.
func (s *Store) Get(ctx context.Context, id core.ID) (*core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return storage.CloneRecord(rec), nil
}

// List implements storage.RecordStore.
func (s *Store) List(ctx context.Context, topic core.Topic, limit int) ([]*core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = storage.EffectiveLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	out := make([]*core.Record, 0, min(limit, len(s.order)))
	for _, id := range s.order {
		rec := s.records[id]
		if !storage.Matches(rec, topic) {
			continue
		}
		out = append(out, storage.CloneRecord(rec))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Close implements storage.RecordStore.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
