package index

import (
	"context"
	"errors"
	"testing"

	"github.com/edilaw/normakit/ai/mock"
	"github.com/edilaw/normakit/core"
	"github.com/edilaw/normakit/storage"
	"github.com/edilaw/normakit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkAt(text string, level core.Level, region, province, municipality string) core.Chunk {
	return core.Chunk{
		Text: text,
		Metadata: core.Metadata{
			Level:        level,
			Region:       region,
			Province:     province,
			Municipality: municipality,
		},
	}
}

// fixtureChunks covers all tiers: two national, two regional (one carrying
// a province), two communal.
func fixtureChunks() []core.Chunk {
	return []core.Chunk{
		chunkAt("Articolo 9. Testo unico dell'edilizia, titoli abilitativi.", core.LevelNazionale, "", "", ""),
		chunkAt("Articolo 10. Interventi subordinati a permesso di costruire.", core.LevelNazionale, "", "", ""),
		chunkAt("Articolo 4. Norme regionali per il governo del territorio.", core.LevelRegionale, "Lazio", "", ""),
		chunkAt("Articolo 6. Disposizioni provinciali sulle aree protette.", core.LevelRegionale, "Lazio", "Viterbo", ""),
		chunkAt("Articolo 3. Regolamento edilizio comunale, altezze massime.", core.LevelComunale, "Lazio", "Viterbo", "Tarquinia"),
		chunkAt("Articolo 8. Piano regolatore, zone omogenee.", core.LevelComunale, "Lazio", "Viterbo", "Montalto di Castro"),
	}
}

func newTestRouter(t *testing.T, backend storage.Backend) *MultiLevel {
	t.Helper()
	if backend == nil {
		var err error
		backend, err = badger.NewMemoryBackend()
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = backend.Close()
		})
	}

	router, err := NewMultiLevel(backend, mock.NewMockEmbedder(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = router.Close()
	})
	return router
}

func seedRouter(t *testing.T, router *MultiLevel) {
	t.Helper()
	committed, err := router.AddChunks(context.Background(), fixtureChunks())
	require.NoError(t, err)
	require.Len(t, committed[core.LevelNazionale], 2)
	require.Len(t, committed[core.LevelRegionale], 2)
	require.Len(t, committed[core.LevelComunale], 2)
}

func TestMultiLevelAddChunks(t *testing.T) {
	router := newTestRouter(t, nil)

	t.Run("routes chunks to their tier", func(t *testing.T) {
		seedRouter(t, router)

		stats, err := router.Stats(context.Background())
		require.NoError(t, err)
		require.Len(t, stats, 3)
		for _, s := range stats {
			assert.Equal(t, 2, s.Documents, "level %s", s.Level)
		}
	})

	t.Run("rejects unknown level before committing", func(t *testing.T) {
		_, err := router.AddChunks(context.Background(), []core.Chunk{
			chunkAt("testo", "sovranazionale", "", "", ""),
		})
		require.ErrorIs(t, err, core.ErrUnknownLevel)
	})
}

func TestSearchHierarchical(t *testing.T) {
	router := newTestRouter(t, nil)
	seedRouter(t, router)
	ctx := context.Background()

	fullScope := Scope{Region: "Lazio", Province: "Viterbo", Municipality: "Tarquinia"}

	t.Run("rejects empty query", func(t *testing.T) {
		_, err := router.SearchHierarchical(ctx, "", fullScope, 5)
		require.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("full scope returns all tiers most specific first", func(t *testing.T) {
		results, err := router.SearchHierarchical(ctx, "altezze massime edifici", fullScope, 5)
		require.NoError(t, err)

		var order []core.HierarchyLevel
		for _, r := range results {
			order = append(order, r.Chunk.Metadata.HierarchyLevel)
		}
		assert.Equal(t, []core.HierarchyLevel{
			core.HierarchyComunale,
			core.HierarchyProvinciale,
			core.HierarchyRegionale,
			core.HierarchyRegionale,
			core.HierarchyNazionale,
			core.HierarchyNazionale,
		}, order)
	})

	t.Run("stamps context scope", func(t *testing.T) {
		results, err := router.SearchHierarchical(ctx, "permesso di costruire", fullScope, 5)
		require.NoError(t, err)

		scopes := make(map[core.HierarchyLevel]string)
		for _, r := range results {
			scopes[r.Chunk.Metadata.HierarchyLevel] = r.Chunk.Metadata.ContextScope
		}
		assert.Equal(t, "Tarquinia", scopes[core.HierarchyComunale])
		assert.Equal(t, "Viterbo", scopes[core.HierarchyProvinciale])
		assert.Equal(t, "Lazio", scopes[core.HierarchyRegionale])
		assert.Equal(t, core.NationalScope, scopes[core.HierarchyNazionale])
	})

	t.Run("municipality filter excludes other municipalities", func(t *testing.T) {
		results, err := router.SearchHierarchical(ctx, "piano regolatore", fullScope, 5)
		require.NoError(t, err)
		for _, r := range results {
			if r.Chunk.Metadata.HierarchyLevel == core.HierarchyComunale {
				assert.Equal(t, "Tarquinia", r.Chunk.Metadata.Municipality)
			}
		}
	})

	t.Run("regional scope skips communal and provincial tiers", func(t *testing.T) {
		results, err := router.SearchHierarchical(ctx, "governo del territorio", Scope{Region: "Lazio"}, 5)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		for _, r := range results {
			assert.Contains(t, []core.HierarchyLevel{
				core.HierarchyRegionale, core.HierarchyNazionale,
			}, r.Chunk.Metadata.HierarchyLevel)
		}
	})

	t.Run("empty scope still returns national law", func(t *testing.T) {
		results, err := router.SearchHierarchical(ctx, "titoli abilitativi", Scope{}, 5)
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Equal(t, core.HierarchyNazionale, r.Chunk.Metadata.HierarchyLevel)
		}
	})
}

// faultyBackend fails Query for one collection, passing everything else
// through to the wrapped backend.
type faultyBackend struct {
	storage.Backend
	failCollection string
}

func (f *faultyBackend) Query(ctx context.Context, collection string, vector []float32, k int, filter map[string]string) ([]storage.ScoredRecord, error) {
	if collection == f.failCollection {
		return nil, errors.New("collection unavailable")
	}
	return f.Backend.Query(ctx, collection, vector, k, filter)
}

func TestSearchHierarchicalTierIsolation(t *testing.T) {
	inner, err := badger.NewMemoryBackend()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = inner.Close()
	})

	router := newTestRouter(t, &faultyBackend{
		Backend:        inner,
		failCollection: CollectionForLevel(core.LevelComunale),
	})
	seedRouter(t, router)

	results, err := router.SearchHierarchical(context.Background(), "altezze massime",
		Scope{Region: "Lazio", Province: "Viterbo", Municipality: "Tarquinia"}, 5)
	require.NoError(t, err)

	// Communal tier failed and was skipped; the others all answered
	levels := make(map[core.HierarchyLevel]bool)
	for _, r := range results {
		levels[r.Chunk.Metadata.HierarchyLevel] = true
	}
	assert.False(t, levels[core.HierarchyComunale])
	assert.True(t, levels[core.HierarchyProvinciale])
	assert.True(t, levels[core.HierarchyRegionale])
	assert.True(t, levels[core.HierarchyNazionale])
}

func TestSearchAllLevels(t *testing.T) {
	router := newTestRouter(t, nil)
	seedRouter(t, router)
	ctx := context.Background()

	target := "Articolo 3. Regolamento edilizio comunale, altezze massime."
	results, err := router.SearchAllLevels(ctx, target, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Best match first, scores non-increasing
	assert.Equal(t, target, results[0].Chunk.Text)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestMultiLevelReset(t *testing.T) {
	router := newTestRouter(t, nil)
	seedRouter(t, router)
	ctx := context.Background()

	require.NoError(t, router.Reset(ctx))

	stats, err := router.Stats(ctx)
	require.NoError(t, err)
	for _, s := range stats {
		assert.Equal(t, 0, s.Documents)
	}
}

func TestMultiLevelClosed(t *testing.T) {
	router := newTestRouter(t, nil)
	require.NoError(t, router.Close())
	require.NoError(t, router.Close()) // idempotent

	_, err := router.SearchHierarchical(context.Background(), "query", Scope{}, 5)
	require.ErrorIs(t, err, ErrRouterClosed)

	_, err = router.AddChunks(context.Background(), fixtureChunks())
	require.ErrorIs(t, err, ErrRouterClosed)
}
