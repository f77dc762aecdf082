// Package stream connects the ingestion side and the archive side through a
// Kafka topic.
//
// A Publisher writes raw article batches as JSON messages. A Consumer reads
// them back one at a time and inserts each decoded object into a
// docstore.Store, committing the offset after the write attempt. Delivery is
// at-least-once and no idempotency key is enforced, so a replayed message
// produces a second document.
package stream
