package storage

import (
	"testing"

	"github.com/edilaw/normakit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSerializationRoundTrip(t *testing.T) {
	record := &Record{
		ID:     core.IDFromContent("Articolo 12 distanze minime"),
		Text:   "Articolo 12 Le distanze minime tra fabbricati sono di dieci metri.",
		Vector: []float32{0.1, -0.5, 0.92},
		Metadata: map[string]string{
			core.KeyLevel:        "regionale",
			core.KeyRegion:       "Lazio",
			core.KeyArticle:      "12",
			core.KeyLawType:      "LR",
			core.KeyLawNumber:    "38",
			core.KeyLawYear:      "1999",
			core.KeyProcessedDate: "2026-03-14T10:30:00Z",
		},
	}

	out, err := UnmarshalRecord(MarshalRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record, out)
}

func TestUnmarshalRecordTruncatedData(t *testing.T) {
	record := &Record{
		ID:       42,
		Text:     "testo",
		Vector:   []float32{1, 2, 3},
		Metadata: map[string]string{core.KeyLevel: "nazionale"},
	}

	data := MarshalRecord(record)
	_, err := UnmarshalRecord(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
