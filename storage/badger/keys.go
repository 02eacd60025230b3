package badger

import (
	"encoding/binary"

	"github.com/edilaw/normakit/core"
)

// Key layout: one prefix per collection, record ID appended in BigEndian so
// iteration order is stable.
const recordPrefix = "colrec"

// collectionPrefix generates the iteration prefix for a collection.
func collectionPrefix(collection string) []byte {
	return []byte(recordPrefix + ":" + collection + ":")
}

// makeRecordKey generates the key for a record in a collection.
// Format: prefix:collection:id
func makeRecordKey(collection string, id core.ID) []byte {
	prefix := collectionPrefix(collection)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
