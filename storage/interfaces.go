package storage

import (
	"context"

	"github.com/edilaw/normakit/core"
)

// Record is the unit persisted by the index backend: a chunk's text, its
// embedding vector, and the flattened metadata used for filtering.
type Record struct {
	ID       core.ID
	Text     string
	Vector   []float32
	Metadata map[string]string
}

// ScoredRecord pairs a record with its similarity score for a query vector.
type ScoredRecord struct {
	Record Record
	Score  float32
}

// Backend is the vector index capability consumed by the index layer: named
// collections supporting upsert, nearest-neighbor query with optional
// metadata-equality filters, filtered deletion, and counting.
//
// Implementations must be thread-safe and support concurrent access; no
// caller holds a lock across Backend calls.
type Backend interface {
	// Upsert inserts or replaces the given records in a collection.
	// Records with an existing ID are overwritten.
	Upsert(ctx context.Context, collection string, records []Record) error

	// Query returns up to k records nearest to the query vector, ordered by
	// similarity score (highest first). filter, when non-nil, is a
	// metadata-equality conjunction: only records whose metadata contains
	// every filter pair are candidates.
	Query(ctx context.Context, collection string, vector []float32, k int, filter map[string]string) ([]ScoredRecord, error)

	// DeleteWhere removes every record matching the metadata filter and
	// returns the IDs removed. An empty filter matches nothing.
	DeleteWhere(ctx context.Context, collection string, filter map[string]string) ([]core.ID, error)

	// Count returns the number of records in a collection.
	Count(ctx context.Context, collection string) (int, error)

	// Iterate calls fn for every record in a collection, stopping early if
	// fn returns an error. Used for maintenance operations like reindexing.
	Iterate(ctx context.Context, collection string, fn func(Record) error) error

	// Reset drops every record in a collection.
	Reset(ctx context.Context, collection string) error

	// Close closes the backend and releases resources.
	Close() error
}
