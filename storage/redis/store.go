package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/poiesic/newsroom/core"
	"github.com/poiesic/newsroom/storage"
)

const (
	// DefaultKeyPrefix namespaces every key the store writes.
	DefaultKeyPrefix = "news:"

	connectTimeout = 15 * time.Second
	listPageSize   = 64
)

// saveScript stores the record only if its key is free, then appends the ID
// to the insertion index under the next sequence number. Running it as one
// script keeps record and index consistent.
var saveScript = redis.NewScript(`
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
  return 0
end
local pos = redis.call("INCR", KEYS[3])
redis.call("ZADD", KEYS[2], pos, ARGV[2])
return 1
`)

// Store implements storage.RecordStore on Redis.
type Store struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
	closed atomic.Bool
}

var _ storage.RecordStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) error {
		if prefix == "" {
			return errors.New("key prefix cannot be empty")
		}
		s.prefix = prefix
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// Connect dials addr and verifies the connection with PING.
func Connect(ctx context.Context, addr, password string, db int, opts ...Option) (storage.RecordStore, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	store, err := New(client, opts...)
	if err != nil {
		client.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing client. The store takes ownership of the client.
func New(client *redis.Client, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	s := &Store{
		client: client,
		prefix: DefaultKeyPrefix,
		logger: slog.Default().With("component", "redis-store"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) recordKey(id core.ID) string {
	return s.prefix + "record:" + string(id)
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) seqKey() string {
	return s.prefix + "seq"
}

// Save implements storage.RecordStore.
func (s *Store) Save(ctx context.Context, record *core.Record) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	if err := core.ValidateRecord(record); err != nil {
		return err
	}

	value, err := storage.MarshalRecord(record)
	if err != nil {
		return err
	}

	keys := []string{s.recordKey(record.ID), s.indexKey(), s.seqKey()}
	stored, err := saveScript.Run(ctx, s.client, keys, string(value), string(record.ID)).Int()
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}
	if stored == 0 {
		return storage.ErrDuplicateKey
	}
	return nil
}

// Get implements storage.RecordStore.
func (s *Store) Get(ctx context.Context, id core.ID) (*core.Record, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}
	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalRecord(data)
}

// List implements storage.RecordStore. The index is read a page at a time
// until limit matching records have been collected.
func (s *Store) List(ctx context.Context, topic core.Topic, limit int) ([]*core.Record, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}
	limit = storage.EffectiveLimit(limit)
	records := []*core.Record{}

	for start := int64(0); len(records) < limit; start += listPageSize {
		ids, err := s.client.ZRange(ctx, s.indexKey(), start, start+listPageSize-1).Result()
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			break
		}

		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = s.recordKey(core.ID(id))
		}
		values, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, err
		}

		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				s.logger.Warn("dangling index entry", "id", ids[i])
				continue
			}
			record, err := storage.UnmarshalRecord([]byte(raw))
			if err != nil {
				return nil, err
			}
			if !storage.Matches(record, topic) {
				continue
			}
			records = append(records, record)
			if len(records) == limit {
				break
			}
		}

		if len(ids) < listPageSize {
			break
		}
	}
	return records, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close implements storage.RecordStore.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.client.Close()
}
