package index

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edilaw/normakit/ai/mock"
	"github.com/edilaw/normakit/core"
	"github.com/edilaw/normakit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, level core.Level, embedder *mock.MockEmbedder, opts ...Option) *LevelIndex {
	t.Helper()
	backend, err := badger.NewMemoryBackend()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = backend.Close()
	})

	li, err := NewLevelIndex(level, backend, embedder, opts...)
	require.NoError(t, err)
	return li
}

func regionalChunk(text, region string) core.Chunk {
	return core.Chunk{
		Text: text,
		Metadata: core.Metadata{
			Level:         core.LevelRegionale,
			Region:        region,
			ProcessedDate: time.Now(),
		},
	}
}

func TestNewLevelIndex(t *testing.T) {
	backend, err := badger.NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := NewLevelIndex("europeo", backend, mock.NewMockEmbedder())
		require.ErrorIs(t, err, core.ErrUnknownLevel)
	})

	t.Run("rejects nil backend", func(t *testing.T) {
		_, err := NewLevelIndex(core.LevelRegionale, nil, mock.NewMockEmbedder())
		require.ErrorIs(t, err, ErrBackendRequired)
	})

	t.Run("nil embedder enables degraded mode", func(t *testing.T) {
		li, err := NewLevelIndex(core.LevelRegionale, backend, nil)
		require.NoError(t, err)
		require.NotNil(t, li)

		_, err = li.AddChunks(context.Background(), []core.Chunk{
			regionalChunk("Articolo 1. Disposizioni generali.", "Lazio"),
		})
		require.NoError(t, err)
	})

	t.Run("degraded mode overrides configured model name", func(t *testing.T) {
		li, err := NewLevelIndex(core.LevelRegionale, backend, nil,
			WithEmbeddingModelName("paraphrase-multilingual"))
		require.NoError(t, err)

		stats, err := li.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "static", stats.EmbeddingModel)
	})
}

func TestLevelIndexAddChunks(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects level mismatch", func(t *testing.T) {
		li := newTestIndex(t, core.LevelNazionale, mock.NewMockEmbedder())
		_, err := li.AddChunks(ctx, []core.Chunk{
			regionalChunk("testo regionale", "Lazio"),
		})
		require.ErrorIs(t, err, ErrLevelMismatch)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		li := newTestIndex(t, core.LevelRegionale, mock.NewMockEmbedder())
		_, err := li.AddChunks(ctx, []core.Chunk{regionalChunk("", "Lazio")})
		require.Error(t, err)
	})

	t.Run("commits and counts", func(t *testing.T) {
		li := newTestIndex(t, core.LevelRegionale, mock.NewMockEmbedder())
		ids, err := li.AddChunks(ctx, []core.Chunk{
			regionalChunk("Articolo 1. Altezza massima degli edifici.", "Lazio"),
			regionalChunk("Articolo 2. Distanze tra fabbricati.", "Lazio"),
		})
		require.NoError(t, err)
		require.Len(t, ids, 2)
		assert.NotEqual(t, ids[0], ids[1])

		stats, err := li.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Documents)
	})

	t.Run("reingesting identical chunks does not duplicate", func(t *testing.T) {
		li := newTestIndex(t, core.LevelRegionale, mock.NewMockEmbedder())
		chunks := []core.Chunk{
			regionalChunk("Articolo 1. Altezza massima degli edifici.", "Lazio"),
		}
		_, err := li.AddChunks(ctx, chunks)
		require.NoError(t, err)
		_, err = li.AddChunks(ctx, chunks)
		require.NoError(t, err)

		stats, err := li.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Documents)
	})
}

func TestLevelIndexBatchError(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()

	calls := 0
	embedFailure := errors.New("embedding service unavailable")
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls > 1 {
			return nil, embedFailure
		}
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0, 0}
		}
		return vectors, nil
	}

	li := newTestIndex(t, core.LevelRegionale, embedder, WithBatchSize(2))

	chunks := []core.Chunk{
		regionalChunk("Articolo 1.", "Lazio"),
		regionalChunk("Articolo 2.", "Lazio"),
		regionalChunk("Articolo 3.", "Lazio"),
		regionalChunk("Articolo 4.", "Lazio"),
	}
	ids, err := li.AddChunks(ctx, chunks)

	// First batch committed, second failed
	require.Error(t, err)
	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Batch)
	require.ErrorIs(t, err, embedFailure)
	assert.Len(t, ids, 2)

	stats, statsErr := li.Stats(ctx)
	require.NoError(t, statsErr)
	assert.Equal(t, 2, stats.Documents)
}

func TestLevelIndexSearchWithScore(t *testing.T) {
	ctx := context.Background()
	li := newTestIndex(t, core.LevelRegionale, mock.NewMockEmbedder())

	target := "Articolo 7. Vincolo paesaggistico sulle aree costiere."
	_, err := li.AddChunks(ctx, []core.Chunk{
		regionalChunk(target, "Lazio"),
		regionalChunk("Articolo 12. Oneri di urbanizzazione primaria.", "Lazio"),
		regionalChunk("Articolo 3. Classificazione sismica del territorio.", "Toscana"),
	})
	require.NoError(t, err)

	t.Run("rejects empty query", func(t *testing.T) {
		_, err := li.SearchWithScore(ctx, "", 5, -1, nil)
		require.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("identical text ranks first with score attached", func(t *testing.T) {
		results, err := li.SearchWithScore(ctx, target, 3, -1, nil)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, target, results[0].Chunk.Text)
		assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
		assert.True(t, results[0].Chunk.Metadata.Scored)
		assert.Equal(t, results[0].Score, results[0].Chunk.Metadata.Score)
	})

	t.Run("minScore filters weak matches", func(t *testing.T) {
		results, err := li.SearchWithScore(ctx, target, 3, 0.9999, nil)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, target, results[0].Chunk.Text)
	})

	t.Run("metadata filter scopes by region", func(t *testing.T) {
		results, err := li.SearchWithScore(ctx, target, 3, -1, map[string]string{
			core.KeyRegion: "Toscana",
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Toscana", results[0].Chunk.Metadata.Region)
	})
}

func TestLevelIndexDeleteByMetadata(t *testing.T) {
	ctx := context.Background()
	li := newTestIndex(t, core.LevelRegionale, mock.NewMockEmbedder())

	_, err := li.AddChunks(ctx, []core.Chunk{
		regionalChunk("Articolo 1.", "Lazio"),
		regionalChunk("Articolo 2.", "Lazio"),
		regionalChunk("Articolo 1.", "Toscana"),
	})
	require.NoError(t, err)

	deleted, err := li.DeleteByMetadata(ctx, map[string]string{core.KeyRegion: "Lazio"})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	stats, err := li.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
}

func TestLevelIndexReindex(t *testing.T) {
	ctx := context.Background()
	li := newTestIndex(t, core.LevelRegionale, mock.NewMockEmbedder())

	_, err := li.AddChunks(ctx, []core.Chunk{
		regionalChunk("Articolo 1.", "Lazio"),
		regionalChunk("Articolo 2.", "Lazio"),
	})
	require.NoError(t, err)

	count, err := li.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Still searchable after reindex
	results, err := li.SearchWithScore(ctx, "Articolo 1.", 1, -1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Articolo 1.", results[0].Chunk.Text)
}

func TestLevelIndexReset(t *testing.T) {
	ctx := context.Background()
	li := newTestIndex(t, core.LevelRegionale, mock.NewMockEmbedder())

	_, err := li.AddChunks(ctx, []core.Chunk{regionalChunk("Articolo 1.", "Lazio")})
	require.NoError(t, err)
	require.NoError(t, li.Reset(ctx))

	stats, err := li.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Documents)
}
