package badger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/edilaw/normakit/core"
	"github.com/edilaw/normakit/storage"
)

// Backend implements storage.Backend on a BadgerDB instance.
// Collections are key-prefix namespaces within one database.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ storage.Backend = (*Backend)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Backend{
		db:     db,
		logger: slog.Default().With("component", "badger-backend"),
	}, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// withTx executes a function within a BadgerDB transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) withTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// Upsert inserts or replaces records in a collection.
func (b *Backend) Upsert(ctx context.Context, collection string, records []storage.Record) error {
	return b.withTx(func(tx *badger.Txn) error {
		for i := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			record := &records[i]
			key := makeRecordKey(collection, record.ID)
			if err := tx.Set(key, storage.MarshalRecord(record)); err != nil {
				return fmt.Errorf("upsert %s id %d: %w", collection, record.ID, err)
			}
		}
		return tx.Commit()
	}, true)
}

// Query returns up to k records nearest to the query vector under cosine
// similarity, optionally restricted to records whose metadata contains
// every filter pair. This is an exact scan: correct on the collection sizes
// this system targets, and swappable for an ANN service behind
// storage.Backend if those grow.
func (b *Backend) Query(ctx context.Context, collection string, vector []float32, k int, filter map[string]string) ([]storage.ScoredRecord, error) {
	if k <= 0 {
		return nil, nil
	}

	var results []storage.ScoredRecord
	err := b.iterate(ctx, collection, func(record storage.Record) error {
		if !matchesFilter(record.Metadata, filter) {
			return nil
		}
		if len(record.Vector) == 0 {
			return nil
		}
		results = append(results, storage.ScoredRecord{
			Record: record,
			Score:  cosineSimilarity(vector, record.Vector),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending; ties broken by ID for determinism
	slices.SortFunc(results, func(a, b storage.ScoredRecord) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.Record.ID < b.Record.ID {
			return -1
		}
		if a.Record.ID > b.Record.ID {
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// DeleteWhere removes every record matching the metadata filter.
func (b *Backend) DeleteWhere(ctx context.Context, collection string, filter map[string]string) ([]core.ID, error) {
	if len(filter) == 0 {
		return nil, storage.ErrEmptyFilter
	}

	// Enumerate matching ids first, then delete them
	var ids []core.ID
	err := b.iterate(ctx, collection, func(record storage.Record) error {
		if matchesFilter(record.Metadata, filter) {
			ids = append(ids, record.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	err = b.withTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeRecordKey(collection, id)); err != nil {
				return fmt.Errorf("delete %s id %d: %w", collection, id, err)
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("deleted records by filter", "collection", collection, "count", len(ids))
	return ids, nil
}

// Count returns the number of records in a collection.
func (b *Backend) Count(ctx context.Context, collection string) (int, error) {
	count := 0
	err := b.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = collectionPrefix(collection)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Iterate calls fn for every record in a collection.
func (b *Backend) Iterate(ctx context.Context, collection string, fn func(storage.Record) error) error {
	return b.iterate(ctx, collection, fn)
}

func (b *Backend) iterate(ctx context.Context, collection string, fn func(storage.Record) error) error {
	return b.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = collectionPrefix(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *storage.Record
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			if err := fn(*record); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// Reset drops every record in a collection.
func (b *Backend) Reset(ctx context.Context, collection string) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	return b.db.DropPrefix(collectionPrefix(collection))
}

// matchesFilter reports whether metadata contains every filter pair.
// A nil or empty filter matches everything.
func matchesFilter(metadata, filter map[string]string) bool {
	for key, want := range filter {
		if metadata[key] != want {
			return false
		}
	}
	return true
}

// cosineSimilarity calculates the cosine similarity of two vectors.
func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
