// Package docstore defines the document store the stream consumer writes to.
//
// A document is the decoded JSON object of one stream message, stored as-is
// with no schema enforcement. Two identical messages produce two documents.
package docstore

import (
	"context"
	"errors"
)

// ErrNilDocument is returned by Insert when the document is nil.
var ErrNilDocument = errors.New("document cannot be nil")

// Store persists free-form documents.
// Implementations must be safe for concurrent use.
type Store interface {
	// Insert writes doc as a new document. It never updates an existing one.
	Insert(ctx context.Context, doc map[string]any) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection.
	Close(ctx context.Context) error
}
