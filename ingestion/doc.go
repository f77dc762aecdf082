// Package ingestion runs the fetch, publish, enrich and store cycle.
//
// A cycle fetches a batch from the provider gateway, hands a copy of the raw
// batch to the stream publisher on a worker pool, then enriches and stores
// each article in order. Failures are contained per article: a cycle only
// returns an error when the pipeline itself is unusable.
package ingestion
