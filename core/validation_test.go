package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateChunk(t *testing.T) {
	t.Run("valid chunk", func(t *testing.T) {
		chunk := &Chunk{
			Text:     "Articolo 1 Disposizioni generali",
			Metadata: Metadata{Level: LevelNazionale},
		}
		assert.NoError(t, ValidateChunk(chunk))
	})

	t.Run("nil chunk", func(t *testing.T) {
		assert.ErrorIs(t, ValidateChunk(nil), ErrInvalidChunk)
	})

	t.Run("empty text", func(t *testing.T) {
		chunk := &Chunk{Metadata: Metadata{Level: LevelComunale}}
		err := ValidateChunk(chunk)
		assert.ErrorIs(t, err, ErrInvalidChunk)
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("unknown level", func(t *testing.T) {
		chunk := &Chunk{Text: "testo", Metadata: Metadata{Level: "continentale"}}
		assert.ErrorIs(t, ValidateChunk(chunk), ErrUnknownLevel)
	})

	t.Run("negative article part", func(t *testing.T) {
		chunk := &Chunk{
			Text:     "testo",
			Metadata: Metadata{Level: LevelComunale, ArticlePart: -1},
		}
		assert.ErrorIs(t, ValidateChunk(chunk), ErrInvalidArticlePart)
	})
}

func TestValidateDocument(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := &Document{Text: "Articolo 1", Level: LevelRegionale, Region: "Lazio"}
		assert.NoError(t, ValidateDocument(doc))
	})

	t.Run("empty text", func(t *testing.T) {
		doc := &Document{Level: LevelNazionale}
		assert.ErrorIs(t, ValidateDocument(doc), ErrEmptyText)
	})

	t.Run("unknown level", func(t *testing.T) {
		doc := &Document{Text: "testo", Level: "europeo"}
		assert.ErrorIs(t, ValidateDocument(doc), ErrUnknownLevel)
	})

	t.Run("missing geography is accepted", func(t *testing.T) {
		// Tier/geography consistency is deferred to callers.
		doc := &Document{Text: "testo", Level: LevelComunale}
		assert.NoError(t, ValidateDocument(doc))
	})
}
