// Package search is the retrieval orchestration layer. A Retriever runs a
// linear pipeline over the multi-level index: hierarchical or tier-scoped
// candidate fetch, hybrid re-scoring blending rank-based semantic order
// with Italian keyword overlap, optional LLM re-ranking with a non-failing
// fallback, and score-threshold filtering. FormatContext and Citations
// turn the surviving chunks into prompt context and structured references
// for downstream consumers.
package search
