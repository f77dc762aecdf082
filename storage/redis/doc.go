// Package redis provides a storage.RecordStore shared between processes.
//
// Layout, with the default "news:" prefix:
//
//	news:record:{id}  record JSON
//	news:index        sorted set of IDs scored by insertion sequence
//	news:seq          insertion sequence counter
package redis
