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

package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/edilaw/normakit/ai"
	"github.com/edilaw/normakit/core"
	"github.com/edilaw/normakit/index"
)

// Retrieval defaults, tuned for comparative normative analysis.
const (
	DefaultTopK           = 5
	DefaultKeywordWeight  = 0.3
	DefaultScoreThreshold = 0.7
)

// TierProvinciale is the explicit tier name routing a query to the
// regional collection narrowed by province. The other tier names are the
// core levels.
const TierProvinciale = "provinciale"

// RerankSetting controls re-ranking for one query.
type RerankSetting int

const (
	// RerankDefault applies the retriever's configured default.
	RerankDefault RerankSetting = iota
	// RerankOn forces re-ranking for this query.
	RerankOn
	// RerankOff disables re-ranking for this query.
	RerankOff
)

// Query describes one retrieval request. Geographic fields scope the
// hierarchical search; Tier, when set, restricts the search to a single
// tier instead. K and Rerank default to the retriever's configuration.
type Query struct {
	Text         string
	Municipality string
	Province     string
	Region       string
	Tier         string
	K            int
	Rerank       RerankSetting
}

// Retriever orchestrates retrieval: hierarchical or tier-scoped fetch,
// hybrid semantic-plus-keyword re-scoring, optional relevance re-ranking,
// score-threshold filtering, and context/citation formatting.
type Retriever struct {
	router         *index.MultiLevel
	reranker       ai.Reranker
	topK           int
	keywordWeight  float32
	scoreThreshold float32
	rerankDefault  bool
	logger         *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithTopK sets the default result count.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(r *Retriever) error {
		if k > 0 {
			r.topK = k
		}
		return nil
	}
}

// WithKeywordWeight sets the keyword share of the hybrid score, in [0, 1].
// Default is DefaultKeywordWeight.
func WithKeywordWeight(w float32) Option {
	return func(r *Retriever) error {
		if w >= 0 && w <= 1 {
			r.keywordWeight = w
		}
		return nil
	}
}

// WithScoreThreshold sets the minimum metadata-carried similarity score.
// Candidates without a recorded score always pass. Default is
// DefaultScoreThreshold.
func WithScoreThreshold(threshold float32) Option {
	return func(r *Retriever) error {
		r.scoreThreshold = threshold
		return nil
	}
}

// WithRerankByDefault makes queries re-rank unless they opt out.
func WithRerankByDefault(enabled bool) Option {
	return func(r *Retriever) error {
		r.rerankDefault = enabled
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a retriever over the multi-level router. reranker
// may be nil, in which case re-ranking is skipped regardless of settings.
func NewRetriever(router *index.MultiLevel, reranker ai.Reranker, opts ...Option) (*Retriever, error) {
	if router == nil {
		return nil, ErrRouterRequired
	}

	r := &Retriever{
		router:         router,
		reranker:       reranker,
		topK:           DefaultTopK,
		keywordWeight:  DefaultKeywordWeight,
		scoreThreshold: DefaultScoreThreshold,
	}

	// Apply options
	r.logger = slog.Default()
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "retriever")

	return r, nil
}

// Retrieve runs the retrieval pipeline and returns up to k chunks ordered
// by relevance. The pipeline is linear: fetch, hybrid re-scoring, optional
// re-ranking, threshold filter, truncation.
func (r *Retriever) Retrieve(ctx context.Context, q Query) ([]core.Chunk, error) {
	if q.Text == "" {
		return nil, ErrEmptyQuery
	}
	k := q.K
	if k <= 0 {
		k = r.topK
	}

	var candidates []core.Chunk
	var err error
	if q.Tier != "" {
		candidates, err = r.fetchTier(ctx, q, k)
	} else {
		candidates, err = r.fetchHierarchical(ctx, q, k)
	}
	if err != nil {
		return nil, err
	}

	candidates = r.hybridRescore(q.Text, candidates)

	rerank := r.rerankDefault
	switch q.Rerank {
	case RerankOn:
		rerank = true
	case RerankOff:
		rerank = false
	}
	if rerank && r.reranker != nil && len(candidates) > k {
		candidates = r.rerankCandidates(ctx, q.Text, candidates, k)
	}

	candidates = r.filterByScore(candidates)

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	r.logger.Info("retrieval complete", "query", q.Text, "results", len(candidates))
	return candidates, nil
}

// fetchHierarchical over-fetches 2k candidates per tier through the
// router, leaving room for the re-scoring stages to prune.
func (r *Retriever) fetchHierarchical(ctx context.Context, q Query, k int) ([]core.Chunk, error) {
	scored, err := r.router.SearchHierarchical(ctx, q.Text, index.Scope{
		Region:       q.Region,
		Province:     q.Province,
		Municipality: q.Municipality,
	}, 2*k)
	if err != nil {
		return nil, err
	}

	chunks := make([]core.Chunk, len(scored))
	for i := range scored {
		chunks[i] = scored[i].Chunk
	}
	return chunks, nil
}

// fetchTier searches a single explicitly named tier. The provincial tier
// maps onto the regional collection. The filter cascades through the
// supplied geography: municipality scopes the communal tier only, then
// province, then region scope any sub-national tier.
func (r *Retriever) fetchTier(ctx context.Context, q Query, k int) ([]core.Chunk, error) {
	level := core.Level(q.Tier)
	filter := map[string]string{}

	switch q.Tier {
	case string(core.LevelNazionale):
		// National law is never geographically scoped
	case string(core.LevelComunale), TierProvinciale, string(core.LevelRegionale):
		if q.Tier == TierProvinciale {
			level = core.LevelRegionale
		}
		if q.Municipality != "" && q.Tier == string(core.LevelComunale) {
			filter[core.KeyMunicipality] = q.Municipality
		} else if q.Province != "" {
			filter[core.KeyProvince] = q.Province
		} else if q.Region != "" {
			filter[core.KeyRegion] = q.Region
		}
	default:
		return nil, ErrUnknownTier
	}
	if len(filter) == 0 {
		filter = nil
	}

	li, err := r.router.Index(level)
	if err != nil {
		return nil, err
	}
	scored, err := li.SearchWithScore(ctx, q.Text, k, -1, filter)
	if err != nil {
		return nil, err
	}

	chunks := make([]core.Chunk, len(scored))
	for i := range scored {
		chunks[i] = scored[i].Chunk
	}
	return chunks, nil
}

// hybridRescore re-orders candidates by a blend of rank-based semantic
// score and keyword overlap. The semantic score is a rank proxy, 1 - i/N
// over fetched order, since tiers report scores on different scales. The
// sort is stable, so ties keep their fetched order.
func (r *Retriever) hybridRescore(query string, candidates []core.Chunk) []core.Chunk {
	n := len(candidates)
	if n == 0 {
		return candidates
	}

	keywords := extractKeywords(query)
	combined := make([]float32, n)
	for i := range candidates {
		semantic := 1 - float32(i)/float32(n)
		keyword := keywordMatchScore(candidates[i].Text, keywords)
		combined[i] = (1-r.keywordWeight)*semantic + r.keywordWeight*keyword
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return combined[order[a]] > combined[order[b]]
	})

	out := make([]core.Chunk, n)
	for i, idx := range order {
		out[i] = candidates[idx]
	}
	return out
}

// rerankCandidates asks the external reranker to prune the candidate list.
// The reranker is treated as unreliable: any failure falls back to the
// pre-rerank order truncated to k.
func (r *Retriever) rerankCandidates(ctx context.Context, query string, candidates []core.Chunk, k int) []core.Chunk {
	passages := make([]string, len(candidates))
	for i := range candidates {
		passages[i] = candidates[i].Text
	}

	kept, err := r.reranker.Rerank(ctx, query, passages)
	if err != nil {
		r.logger.Warn("re-ranking failed, keeping original order", "err", err)
		return candidates[:k]
	}

	out := make([]core.Chunk, 0, min(len(kept), k))
	for _, idx := range kept {
		if idx < 0 || idx >= len(candidates) {
			continue
		}
		out = append(out, candidates[idx])
		if len(out) == k {
			break
		}
	}
	return out
}

// filterByScore drops candidates whose recorded similarity score is below
// the threshold. Candidates without a recorded score are kept; the filter
// is best-effort, not authoritative.
func (r *Retriever) filterByScore(candidates []core.Chunk) []core.Chunk {
	out := candidates[:0]
	dropped := 0
	for _, c := range candidates {
		if c.Metadata.Scored && c.Metadata.Score < r.scoreThreshold {
			dropped++
			continue
		}
		out = append(out, c)
	}
	if dropped > 0 {
		r.logger.Debug("dropped candidates below score threshold",
			"dropped", dropped, "threshold", r.scoreThreshold)
	}
	return out
}
