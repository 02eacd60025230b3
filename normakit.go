// Copyright 2026 Edilaw Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package normakit retrieves Italian building and zoning regulations
// across the national, regional, provincial, and municipal tiers, ranking
// passages by a blend of semantic similarity and keyword overlap and
// returning machine-checkable citations.
package normakit

import (
	"context"
	"log/slog"

	"github.com/edilaw/normakit/ai"
	"github.com/edilaw/normakit/ai/openai"
	"github.com/edilaw/normakit/config"
	"github.com/edilaw/normakit/index"
	"github.com/edilaw/normakit/ingestion"
	"github.com/edilaw/normakit/search"
	"github.com/edilaw/normakit/storage/badger"
)

// System owns the storage backend, AI provider, and tier indexes, and
// hands out ingestion pipelines and retrievers wired to them.
type System struct {
	cfg      *config.AppConfig
	backend  *badger.Backend
	provider ai.Provider
	router   *index.MultiLevel
	logger   *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	inMemory bool
}

// WithInMemory keeps the index in memory instead of on disk. Intended for
// tests and throwaway sessions.
func WithInMemory() SystemOption {
	return func(o *systemOptions) {
		o.inMemory = true
	}
}

// Open builds a System from configuration. A nil cfg uses defaults. In
// degraded mode (no embedding service) the system still ingests and
// answers queries on keyword overlap alone.
func Open(cfg *config.AppConfig, opts ...SystemOption) (*System, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	options := &systemOptions{}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(cfg.DataDir, options.inMemory)
	if err != nil {
		return nil, err
	}

	var provider ai.Provider
	var embedder ai.Embedder
	if aiCfg := cfg.AIServiceConfig(); aiCfg != nil {
		provider, err = openai.NewProvider(aiCfg)
		if err != nil {
			backend.Close()
			return nil, err
		}
		embedder = provider.Embedder()
	}

	router, err := index.NewMultiLevel(backend, embedder, nil,
		index.WithEmbeddingModelName(cfg.AI.EmbeddingModel))
	if err != nil {
		if provider != nil {
			provider.Close()
		}
		backend.Close()
		return nil, err
	}

	return &System{
		cfg:      cfg,
		backend:  backend,
		provider: provider,
		router:   router,
		logger:   slog.Default().With("component", "normakit"),
	}, nil
}

// Close releases the router, AI provider, and storage backend.
func (s *System) Close() error {
	if err := s.router.Close(); err != nil {
		s.logger.Error("error closing router", "err", err)
	}
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
		}
	}
	return s.backend.Close()
}

// Router returns the multi-level index router.
func (s *System) Router() *index.MultiLevel {
	return s.router
}

// NewPipeline creates an ingestion pipeline committing to this system's
// indexes, with the configured chunking geometry.
func (s *System) NewPipeline(opts ...ingestion.PipelineOption) (*ingestion.Pipeline, error) {
	processor, err := ingestion.NewProcessor(
		ingestion.WithChunkSize(s.cfg.Chunking.ChunkSize),
		ingestion.WithChunkOverlap(s.cfg.Chunking.ChunkOverlap),
	)
	if err != nil {
		return nil, err
	}
	return ingestion.NewPipeline(processor, s.router, opts...)
}

// NewRetriever creates a retriever over this system's indexes with the
// configured retrieval tuning. The reranker is wired only when the AI
// provider carries one.
func (s *System) NewRetriever(opts ...search.Option) (*search.Retriever, error) {
	var reranker ai.Reranker
	if s.provider != nil {
		reranker = s.provider.Reranker()
	}
	base := []search.Option{
		search.WithTopK(s.cfg.Retrieval.TopK),
		search.WithKeywordWeight(s.cfg.Retrieval.KeywordWeight),
		search.WithScoreThreshold(s.cfg.Retrieval.ScoreThreshold),
		search.WithRerankByDefault(s.cfg.Retrieval.Rerank),
	}
	return search.NewRetriever(s.router, reranker, append(base, opts...)...)
}

// Stats reports per-tier index statistics.
func (s *System) Stats(ctx context.Context) ([]index.Stats, error) {
	return s.router.Stats(ctx)
}

// Reset drops every indexed chunk in every tier.
func (s *System) Reset(ctx context.Context) error {
	return s.router.Reset(ctx)
}
