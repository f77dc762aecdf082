package storage

import (
	"context"

	"github.com/poiesic/newsroom/core"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 10

// RecordStore keeps enriched articles.
// Implementations must be safe for concurrent use.
type RecordStore interface {
	// Save stores a new record. The record must pass core.ValidateRecord.
	// Saving an ID that already exists returns ErrDuplicateKey and leaves
	// the stored record untouched.
	Save(ctx context.Context, record *core.Record) error

	// Get returns the record with the given ID, or ErrNotFound.
	Get(ctx context.Context, id core.ID) (*core.Record, error)

	// List returns up to limit records in insertion order. An empty topic
	// matches every record; otherwise only records with exactly that topic
	// are returned. limit <= 0 means DefaultListLimit.
	List(ctx context.Context, topic core.Topic, limit int) ([]*core.Record, error)

	// Close releases the store. Further calls return ErrStorageClosed.
	Close() error
}

// EffectiveLimit resolves the limit a List call should honor.
func EffectiveLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// Matches reports whether record belongs in a List for topic.
func Matches(record *core.Record, topic core.Topic) bool {
	return topic == "" || record.Topic == topic
}
