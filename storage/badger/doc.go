// Package badger provides a durable storage.RecordStore backed by BadgerDB.
//
// Records are stored as JSON under "newsrec:{id}". Insertion order is kept
// in a separate index keyed by a monotonically increasing sequence, so List
// returns records in the order they were saved even across restarts.
package badger
