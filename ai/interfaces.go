package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Reranker prunes a candidate passage list down to the passages most
// relevant to a query. Implementations must be treated as unreliable:
// callers always keep a non-failing fallback path.
type Reranker interface {
	// Rerank returns the indexes of the passages judged relevant to the
	// query, most relevant first. Indexes outside [0, len(passages)) must
	// be ignored by callers. An empty result means nothing was judged
	// relevant.
	Rerank(ctx context.Context, query string, passages []string) ([]int, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// Reranker instances, ensuring they share configuration appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Reranker returns the relevance pruning service, or nil when
	// re-ranking is not configured.
	Reranker() Reranker

	// Close releases resources held by the provider and its services.
	Close() error
}
