package badger

import (
	"encoding/binary"

	"github.com/poiesic/newsroom/core"
)

// Key prefixes for different data types
const (
	recordPrefix      = "newsrec:"
	recordIndexPrefix = "newsidx:"
	recordIndexSeq    = "newsidxseq"
)

// makeRecordKey generates a key for a record by ID.
func makeRecordKey(id core.ID) []byte {
	return []byte(recordPrefix + string(id))
}

// makeIndexKey generates a key for the insertion-order index.
// Format: prefix + 8-byte big-endian sequence + id
func makeIndexKey(seq uint64, id core.ID) []byte {
	buf := make([]byte, len(recordIndexPrefix)+8+len(id))
	offset := copy(buf, recordIndexPrefix)
	// BigEndian so lexicographic order is insertion order
	binary.BigEndian.PutUint64(buf[offset:], seq)
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// parseIndexKey extracts the record ID from an index key.
func parseIndexKey(key []byte) (core.ID, bool) {
	start := len(recordIndexPrefix) + 8
	if len(key) <= start {
		return "", false
	}
	return core.ID(key[start:]), true
}
