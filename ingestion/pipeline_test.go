package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/edilaw/normakit/ai/mock"
	"github.com/edilaw/normakit/core"
	"github.com/edilaw/normakit/index"
	"github.com/edilaw/normakit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("plain text", func(t *testing.T) {
		path := filepath.Join(dir, "norme.txt")
		require.NoError(t, os.WriteFile(path, []byte("Articolo 1 Oggetto."), 0644))

		text, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Articolo 1 Oggetto.", text)
	})

	t.Run("html is stripped to text", func(t *testing.T) {
		path := filepath.Join(dir, "norme.html")
		html := "<html><head><style>p{}</style></head><body><p>Articolo 1 Oggetto.</p><p>Articolo 2 Ambito.</p></body></html>"
		require.NoError(t, os.WriteFile(path, []byte(html), 0644))

		text, err := LoadFile(path)
		require.NoError(t, err)
		assert.Contains(t, text, "Articolo 1 Oggetto.")
		assert.Contains(t, text, "Articolo 2 Ambito.")
		assert.NotContains(t, text, "<p>")
		assert.NotContains(t, text, "p{}")
	})

	t.Run("unsupported format", func(t *testing.T) {
		path := filepath.Join(dir, "norme.docx")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

		_, err := LoadFile(path)
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "missing.txt"))
		require.Error(t, err)
	})
}

func newTestPipeline(t *testing.T) (*Pipeline, *index.MultiLevel) {
	t.Helper()
	backend, err := badger.NewMemoryBackend()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = backend.Close()
	})

	router, err := index.NewMultiLevel(backend, mock.NewMockEmbedder(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = router.Close()
	})

	pipeline, err := NewPipeline(nil, router, WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, router
}

func TestPipelineIngestText(t *testing.T) {
	pipeline, router := newTestPipeline(t)
	ctx := context.Background()

	count, err := pipeline.IngestText(ctx, "lr-38-1999.txt",
		"Articolo 1 Oggetto della legge regionale. Articolo 2 Definizioni di piano territoriale.",
		Assignment{Level: core.LevelRegionale, Region: "Lazio"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	li, err := router.Index(core.LevelRegionale)
	require.NoError(t, err)
	stats, err := li.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
}

func TestPipelineIngestDirectory(t *testing.T) {
	pipeline, router := newTestPipeline(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeFile := func(name, contents string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
	}
	writeFile("regolamento.txt", "Articolo 1 Altezze massime degli edifici. Articolo 2 Distanze minime dai confini.")
	writeFile("piano.html", "<p>Articolo 3 Zone territoriali omogenee.</p><p>Articolo 4 Aree di rispetto.</p>")
	writeFile("vuoto.txt", "\x00")         // fails processing, must not abort the run
	writeFile("appunti.docx", "ignorami")  // unsupported, silently skipped

	report, err := pipeline.IngestDirectory(ctx, dir,
		Assignment{Level: core.LevelComunale, Region: "Lazio", Municipality: "Tarquinia"}, true)
	require.NoError(t, err)

	require.Len(t, report.Files, 3)
	assert.Equal(t, 4, report.TotalChunks)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Path, "vuoto.txt")
	require.ErrorIs(t, failed[0].Err, ErrEmptyDocument)

	li, err := router.Index(core.LevelComunale)
	require.NoError(t, err)
	stats, err := li.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Documents)
}

func TestPipelineRequiresRouter(t *testing.T) {
	_, err := NewPipeline(nil, nil)
	require.ErrorIs(t, err, ErrRouterRequired)
}
