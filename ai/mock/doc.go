// Package mock provides test doubles for the ai package interfaces.
//
// Mocks default to deterministic behavior and accept injected functions for
// per-test control:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{1, 0, 0}, nil
//	}
package mock
