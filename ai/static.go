package ai

import (
	"context"
	"math"
)

// StaticEmbedder is the degraded-mode embedding capability: it returns the
// same fixed unit vector for every input. Keyword scoring downstream still
// works, and the index schema is unchanged, so a real embedder can be
// swapped in later without re-creating collections.
type StaticEmbedder struct {
	vector []float32
}

var _ Embedder = (*StaticEmbedder)(nil)

// NewStaticEmbedder creates a degraded-mode embedder producing vectors of
// the given dimension. The vector is deterministic and content-independent.
func NewStaticEmbedder(dim int) *StaticEmbedder {
	if dim < 1 {
		dim = 1
	}
	component := float32(1.0 / math.Sqrt(float64(dim)))
	vector := make([]float32, dim)
	for i := range vector {
		vector[i] = component
	}
	return &StaticEmbedder{vector: vector}
}

// EmbedText returns the fixed pseudo-embedding.
func (e *StaticEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	out := make([]float32, len(e.vector))
	copy(out, e.vector)
	return out, nil
}

// EmbedTexts returns one fixed pseudo-embedding per input text.
func (e *StaticEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, len(e.vector))
		copy(vec, e.vector)
		out[i] = vec
	}
	return out, nil
}

// Dimension returns the pseudo-embedding dimension.
func (e *StaticEmbedder) Dimension() int {
	return len(e.vector)
}
