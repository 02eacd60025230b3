package search

import (
	"strings"
	"testing"

	"github.com/edilaw/normakit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatContext(t *testing.T) {
	t.Run("full reference label", func(t *testing.T) {
		chunk := core.Chunk{
			Text: "Le altezze massime sono fissate in metri dieci.",
			Metadata: core.Metadata{
				Level:        core.LevelComunale,
				Municipality: "Tarquinia",
				Article:      "12",
				LawType:      "LR",
				LawNumber:    "38",
				LawYear:      "1999",
			},
		}
		got := FormatContext([]core.Chunk{chunk})
		assert.Equal(t, "[LR 38/1999 - Art. 12 - Comune di Tarquinia]\nLe altezze massime sono fissate in metri dieci.\n", got)
	})

	t.Run("regional qualifier", func(t *testing.T) {
		chunk := core.Chunk{
			Text:     "La regione disciplina il territorio.",
			Metadata: core.Metadata{Level: core.LevelRegionale, Region: "Lazio"},
		}
		got := FormatContext([]core.Chunk{chunk})
		assert.True(t, strings.HasPrefix(got, "[Regione Lazio]\n"))
	})

	t.Run("ordinal fallback", func(t *testing.T) {
		chunks := []core.Chunk{
			{Text: "primo testo", Metadata: core.Metadata{Level: core.LevelNazionale}},
			{Text: "secondo testo", Metadata: core.Metadata{Level: core.LevelNazionale}},
		}
		got := FormatContext(chunks)
		assert.Contains(t, got, "[Documento 1]\nprimo testo")
		assert.Contains(t, got, "[Documento 2]\nsecondo testo")
	})

	t.Run("chunks separated by rule", func(t *testing.T) {
		chunks := []core.Chunk{
			{Text: "uno", Metadata: core.Metadata{Level: core.LevelNazionale}},
			{Text: "due", Metadata: core.Metadata{Level: core.LevelNazionale}},
		}
		got := FormatContext(chunks)
		assert.Equal(t, 1, strings.Count(got, "\n---\n\n"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, FormatContext(nil))
	})
}

func TestCitations(t *testing.T) {
	long := strings.Repeat("norma ", 50) // 300 chars

	chunks := []core.Chunk{
		{
			Text: long,
			Metadata: core.Metadata{
				Level:     core.LevelRegionale,
				Region:    "Lazio",
				Article:   "12",
				LawType:   "LR",
				LawNumber: "38",
				LawYear:   "1999",
			},
		},
		{
			Text:     "testo comunale",
			Metadata: core.Metadata{Level: core.LevelComunale, Region: "Lazio", Municipality: "Tarquinia"},
		},
	}

	citations := Citations(chunks)
	require.Len(t, citations, 2)

	assert.Equal(t, "LR 38/1999", citations[0].Law)
	assert.Equal(t, "12", citations[0].Article)
	assert.Equal(t, "Lazio", citations[0].Region)
	assert.Len(t, citations[0].Text, 203) // 200-char preview plus ellipsis
	assert.True(t, strings.HasSuffix(citations[0].Text, "..."))

	// Municipality wins over region
	assert.Equal(t, "Tarquinia", citations[1].Municipality)
	assert.Empty(t, citations[1].Region)
	assert.Equal(t, "testo comunale", citations[1].Text)
}
