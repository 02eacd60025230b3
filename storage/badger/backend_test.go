package badger

import (
	"context"
	"testing"

	"github.com/edilaw/normakit/core"
	"github.com/edilaw/normakit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = backend.Close()
	})
	return backend
}

func testRecord(id core.ID, text string, vector []float32, metadata map[string]string) storage.Record {
	return storage.Record{
		ID:       id,
		Text:     text,
		Vector:   vector,
		Metadata: metadata,
	}
}

func TestBackendUpsertAndCount(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	records := []storage.Record{
		testRecord(1, "primo", []float32{1, 0}, map[string]string{"region": "Lazio"}),
		testRecord(2, "secondo", []float32{0, 1}, map[string]string{"region": "Lazio"}),
	}
	require.NoError(t, backend.Upsert(ctx, "normative_regionale", records))

	count, err := backend.Count(ctx, "normative_regionale")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Upsert with same id replaces, not duplicates
	records[0].Text = "primo aggiornato"
	require.NoError(t, backend.Upsert(ctx, "normative_regionale", records[:1]))

	count, err = backend.Count(ctx, "normative_regionale")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBackendCollectionsAreIsolated(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Upsert(ctx, "normative_nazionale", []storage.Record{
		testRecord(1, "nazionale", []float32{1}, nil),
	}))
	require.NoError(t, backend.Upsert(ctx, "normative_comunale", []storage.Record{
		testRecord(1, "comunale", []float32{1}, nil),
	}))

	count, err := backend.Count(ctx, "normative_nazionale")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var texts []string
	err = backend.Iterate(ctx, "normative_comunale", func(r storage.Record) error {
		texts = append(texts, r.Text)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"comunale"}, texts)
}

func TestBackendQuery(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	records := []storage.Record{
		testRecord(1, "parallel", []float32{1, 0, 0}, map[string]string{"region": "Lazio"}),
		testRecord(2, "orthogonal", []float32{0, 1, 0}, map[string]string{"region": "Lazio"}),
		testRecord(3, "diagonal", []float32{1, 1, 0}, map[string]string{"region": "Toscana"}),
	}
	require.NoError(t, backend.Upsert(ctx, "normative_regionale", records))

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		results, err := backend.Query(ctx, "normative_regionale", []float32{1, 0, 0}, 3, nil)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, core.ID(1), results[0].Record.ID)
		assert.Equal(t, core.ID(3), results[1].Record.ID)
		assert.Equal(t, core.ID(2), results[2].Record.ID)
		assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
	})

	t.Run("respects k", func(t *testing.T) {
		results, err := backend.Query(ctx, "normative_regionale", []float32{1, 0, 0}, 1, nil)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, core.ID(1), results[0].Record.ID)
	})

	t.Run("applies metadata filter", func(t *testing.T) {
		results, err := backend.Query(ctx, "normative_regionale", []float32{1, 0, 0}, 3, map[string]string{"region": "Toscana"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, core.ID(3), results[0].Record.ID)
	})

	t.Run("empty collection", func(t *testing.T) {
		results, err := backend.Query(ctx, "missing", []float32{1, 0, 0}, 3, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestBackendDeleteWhere(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	records := []storage.Record{
		testRecord(1, "a", []float32{1}, map[string]string{"municipality": "Tarquinia"}),
		testRecord(2, "b", []float32{1}, map[string]string{"municipality": "Tarquinia"}),
		testRecord(3, "c", []float32{1}, map[string]string{"municipality": "Montalto di Castro"}),
	}
	require.NoError(t, backend.Upsert(ctx, "normative_comunale", records))

	t.Run("rejects empty filter", func(t *testing.T) {
		_, err := backend.DeleteWhere(ctx, "normative_comunale", nil)
		require.ErrorIs(t, err, storage.ErrEmptyFilter)
	})

	t.Run("deletes matching records", func(t *testing.T) {
		ids, err := backend.DeleteWhere(ctx, "normative_comunale", map[string]string{"municipality": "Tarquinia"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []core.ID{1, 2}, ids)

		count, err := backend.Count(ctx, "normative_comunale")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("no matches is not an error", func(t *testing.T) {
		ids, err := backend.DeleteWhere(ctx, "normative_comunale", map[string]string{"municipality": "Viterbo"})
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestBackendReset(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Upsert(ctx, "normative_nazionale", []storage.Record{
		testRecord(1, "uno", []float32{1}, nil),
	}))
	require.NoError(t, backend.Upsert(ctx, "normative_regionale", []storage.Record{
		testRecord(2, "due", []float32{1}, nil),
	}))

	require.NoError(t, backend.Reset(ctx, "normative_nazionale"))

	count, err := backend.Count(ctx, "normative_nazionale")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Other collections are untouched
	count, err = backend.Count(ctx, "normative_regionale")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBackendClosed(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	err = backend.Upsert(context.Background(), "normative_nazionale", []storage.Record{
		testRecord(1, "uno", []float32{1}, nil),
	})
	require.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, float64(cosineSimilarity([]float32{1, 2}, []float32{2, 4})), 1e-6)
	assert.InDelta(t, 0.0, float64(cosineSimilarity([]float32{1, 0}, []float32{0, 1})), 1e-6)
	assert.InDelta(t, -1.0, float64(cosineSimilarity([]float32{1, 0}, []float32{-1, 0})), 1e-6)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
