// Copyright 2026 Edilaw Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package index

import (
	"context"
	"log/slog"

	"github.com/edilaw/normakit/ai"
	"github.com/edilaw/normakit/core"
	"github.com/edilaw/normakit/storage"
)

// DefaultBatchSize is the number of chunks embedded and committed per batch.
const DefaultBatchSize = 100

// CollectionForLevel returns the backend collection name for a level.
func CollectionForLevel(level core.Level) string {
	return "normative_" + string(level)
}

// Stats describes the state of one level index.
type Stats struct {
	Level          core.Level
	Documents      int
	EmbeddingModel string
}

// LevelIndex manages the vector collection for one jurisdiction tier:
// embedding chunks, committing them in batches, and scoped similarity
// search. All methods are safe for concurrent use as long as the backend is.
type LevelIndex struct {
	level          core.Level
	collection     string
	backend        storage.Backend
	embedder       ai.Embedder
	embeddingModel string
	batchSize      int
	logger         *slog.Logger
}

// Option configures a LevelIndex.
type Option func(*LevelIndex) error

// WithBatchSize sets the indexing batch size.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(li *LevelIndex) error {
		if size <= 0 {
			size = DefaultBatchSize
		}
		li.batchSize = size
		return nil
	}
}

// WithEmbeddingModelName records the embedding model name reported by Stats.
func WithEmbeddingModelName(name string) Option {
	return func(li *LevelIndex) error {
		li.embeddingModel = name
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(li *LevelIndex) error {
		if logger == nil {
			logger = slog.Default()
		}
		li.logger = logger
		return nil
	}
}

// NewLevelIndex creates the index for one jurisdiction tier.
// A nil embedder puts the index in degraded keyword-only mode: a static
// embedder keeps the collection schema intact while every vector compares
// equal, so ranking falls entirely to the retrieval layer's keyword scoring.
func NewLevelIndex(level core.Level, backend storage.Backend, embedder ai.Embedder, opts ...Option) (*LevelIndex, error) {
	if _, err := core.ParseLevel(string(level)); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, ErrBackendRequired
	}

	li := &LevelIndex{
		level:          level,
		collection:     CollectionForLevel(level),
		backend:        backend,
		embedder:       embedder,
		embeddingModel: "static",
		batchSize:      DefaultBatchSize,
		logger:         slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(li); err != nil {
			return nil, err
		}
	}
	li.logger = li.logger.With("component", "level-index", "level", string(level))

	if li.embedder == nil {
		li.embedder = ai.NewStaticEmbedder(ai.DefaultEmbeddingDim)
		// Stats must report the embedder actually producing vectors,
		// even when a model name was configured
		li.embeddingModel = "static"
		li.logger.Warn("no embedder configured, running in degraded keyword-only mode")
	}

	return li, nil
}

// Level returns the jurisdiction tier this index serves.
func (li *LevelIndex) Level() core.Level {
	return li.level
}

// Collection returns the backend collection name.
func (li *LevelIndex) Collection() string {
	return li.collection
}

// AddChunks validates, embeds, and commits chunks in batches.
// Returns the IDs committed so far. On a mid-run failure the error is a
// *BatchError identifying the failed batch; earlier batches stay committed.
func (li *LevelIndex) AddChunks(ctx context.Context, chunks []core.Chunk) ([]core.ID, error) {
	for i := range chunks {
		if err := core.ValidateChunk(&chunks[i]); err != nil {
			return nil, err
		}
		if chunks[i].Metadata.Level != li.level {
			return nil, ErrLevelMismatch
		}
	}

	committed := make([]core.ID, 0, len(chunks))
	for batch := 0; batch*li.batchSize < len(chunks); batch++ {
		start := batch * li.batchSize
		end := min(start+li.batchSize, len(chunks))

		ids, err := li.commitBatch(ctx, chunks[start:end])
		if err != nil {
			return committed, &BatchError{Batch: batch, Err: err}
		}
		committed = append(committed, ids...)
	}

	li.logger.Info("indexed chunks", "count", len(committed))
	return committed, nil
}

func (li *LevelIndex) commitBatch(ctx context.Context, chunks []core.Chunk) ([]core.ID, error) {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors, err := li.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, ErrEmbeddingCountMismatch
	}

	records := make([]storage.Record, len(chunks))
	ids := make([]core.ID, len(chunks))
	for i := range chunks {
		ids[i] = chunks[i].RecordID()
		records[i] = storage.Record{
			ID:       ids[i],
			Text:     chunks[i].Text,
			Vector:   vectors[i],
			Metadata: chunks[i].Metadata.ToMap(),
		}
	}

	if err := li.backend.Upsert(ctx, li.collection, records); err != nil {
		return nil, err
	}
	return ids, nil
}

// Search returns up to k chunks nearest to the query, optionally restricted
// by a metadata-equality filter. Scores are not attached to the results.
func (li *LevelIndex) Search(ctx context.Context, query string, k int, filter map[string]string) ([]core.Chunk, error) {
	scored, err := li.SearchWithScore(ctx, query, k, -1, filter)
	if err != nil {
		return nil, err
	}
	chunks := make([]core.Chunk, len(scored))
	for i := range scored {
		chunks[i] = scored[i].Chunk
	}
	return chunks, nil
}

// SearchWithScore returns up to k chunks nearest to the query with their
// similarity scores, dropping results below minScore. Each returned chunk
// carries its score in Metadata as well, so downstream ranking can read it
// after the chunk leaves this layer.
func (li *LevelIndex) SearchWithScore(ctx context.Context, query string, k int, minScore float32, filter map[string]string) ([]core.ScoredChunk, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		return nil, nil
	}

	vector, err := li.embedder.EmbedText(ctx, query)
	if err != nil {
		li.logger.Error("error embedding query", "err", err)
		return nil, err
	}

	records, err := li.backend.Query(ctx, li.collection, vector, k, filter)
	if err != nil {
		li.logger.Error("error querying collection", "collection", li.collection, "err", err)
		return nil, err
	}

	results := make([]core.ScoredChunk, 0, len(records))
	for _, rec := range records {
		if rec.Score < minScore {
			continue
		}
		chunk := core.Chunk{
			Text:     rec.Record.Text,
			Metadata: core.MetadataFromMap(rec.Record.Metadata),
		}
		chunk.Metadata.Score = rec.Score
		chunk.Metadata.Scored = true
		results = append(results, core.ScoredChunk{Chunk: chunk, Score: rec.Score})
	}
	return results, nil
}

// DeleteByMetadata removes every chunk matching the metadata filter and
// returns how many were removed.
func (li *LevelIndex) DeleteByMetadata(ctx context.Context, filter map[string]string) (int, error) {
	ids, err := li.backend.DeleteWhere(ctx, li.collection, filter)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Stats reports the size and embedding model of the index.
func (li *LevelIndex) Stats(ctx context.Context) (Stats, error) {
	count, err := li.backend.Count(ctx, li.collection)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Level:          li.level,
		Documents:      count,
		EmbeddingModel: li.embeddingModel,
	}, nil
}

// Reindex re-embeds every stored chunk with the current embedder and
// rewrites it in place. Returns the number of chunks reindexed. Used after
// switching embedding models so vectors and queries agree again.
func (li *LevelIndex) Reindex(ctx context.Context) (int, error) {
	var stale []storage.Record
	err := li.backend.Iterate(ctx, li.collection, func(rec storage.Record) error {
		stale = append(stale, rec)
		return nil
	})
	if err != nil {
		return 0, err
	}

	total := 0
	for start := 0; start < len(stale); start += li.batchSize {
		end := min(start+li.batchSize, len(stale))
		batch := stale[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Text
		}
		vectors, err := li.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return total, err
		}
		if len(vectors) != len(batch) {
			return total, ErrEmbeddingCountMismatch
		}
		for i := range batch {
			batch[i].Vector = vectors[i]
		}
		if err := li.backend.Upsert(ctx, li.collection, batch); err != nil {
			return total, err
		}
		total += len(batch)
	}

	li.logger.Info("reindexed collection", "count", total)
	return total, nil
}

// Reset drops every chunk in the index.
func (li *LevelIndex) Reset(ctx context.Context) error {
	return li.backend.Reset(ctx, li.collection)
}
