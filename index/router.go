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

package index

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/edilaw/normakit/ai"
	"github.com/edilaw/normakit/core"
	"github.com/edilaw/normakit/storage"
	"github.com/panjf2000/ants/v2"
)

const (
	// DefaultTierConcurrency caps how many tier queries run at once during
	// a hierarchical search.
	DefaultTierConcurrency = 4

	// DefaultTierTimeout bounds each individual tier query.
	DefaultTierTimeout = 15 * time.Second
)

// Scope narrows a hierarchical search to a geographic area. Empty fields
// skip the corresponding tiers: a scope with only Region set queries only
// the regional and national tiers.
type Scope struct {
	Region       string
	Province     string
	Municipality string
}

// MultiLevel routes documents and queries across the per-tier level
// indexes. Hierarchical searches fan out concurrently, one task per tier,
// with per-tier timeouts; a failing tier is dropped from the result rather
// than failing the whole search.
type MultiLevel struct {
	indexes     map[core.Level]*LevelIndex
	pool        *ants.Pool
	tierTimeout time.Duration
	logger      *slog.Logger

	mu     sync.Mutex
	closed bool
}

// RouterOption configures a MultiLevel router.
type RouterOption func(*MultiLevel) error

// WithTierTimeout bounds each tier query during hierarchical search.
// Default is DefaultTierTimeout.
func WithTierTimeout(d time.Duration) RouterOption {
	return func(ml *MultiLevel) error {
		if d > 0 {
			ml.tierTimeout = d
		}
		return nil
	}
}

// WithRouterLogger sets a custom logger.
// Default is slog.Default().
func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(ml *MultiLevel) error {
		if logger == nil {
			logger = slog.Default()
		}
		ml.logger = logger
		return nil
	}
}

// NewMultiLevel creates the router and one LevelIndex per jurisdiction
// tier, all sharing the given backend and embedder. indexOpts are applied
// to every level index.
func NewMultiLevel(backend storage.Backend, embedder ai.Embedder, opts []RouterOption, indexOpts ...Option) (*MultiLevel, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}

	ml := &MultiLevel{
		indexes:     make(map[core.Level]*LevelIndex, len(core.Levels)),
		tierTimeout: DefaultTierTimeout,
		logger:      slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(ml); err != nil {
			return nil, err
		}
	}
	ml.logger = ml.logger.With("component", "multi-level-router")

	for _, level := range core.Levels {
		li, err := NewLevelIndex(level, backend, embedder, indexOpts...)
		if err != nil {
			return nil, err
		}
		ml.indexes[level] = li
	}

	pool, err := ants.NewPool(DefaultTierConcurrency)
	if err != nil {
		return nil, err
	}
	ml.pool = pool

	return ml, nil
}

// Close releases the router's worker pool. The backend is owned by the
// caller and stays open.
func (ml *MultiLevel) Close() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	if ml.closed {
		return nil
	}
	ml.closed = true
	ml.pool.Release()
	return nil
}

func (ml *MultiLevel) isClosed() bool {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return ml.closed
}

// Index returns the level index for one jurisdiction tier.
func (ml *MultiLevel) Index(level core.Level) (*LevelIndex, error) {
	li, ok := ml.indexes[level]
	if !ok {
		return nil, core.ErrUnknownLevel
	}
	return li, nil
}

// AddChunks routes chunks to their tier's index by metadata level and
// commits each tier's group. A chunk with an unrecognized level fails the
// whole call before anything is committed.
func (ml *MultiLevel) AddChunks(ctx context.Context, chunks []core.Chunk) (map[core.Level][]core.ID, error) {
	if ml.isClosed() {
		return nil, ErrRouterClosed
	}

	groups := make(map[core.Level][]core.Chunk)
	for i := range chunks {
		level := chunks[i].Metadata.Level
		if _, ok := ml.indexes[level]; !ok {
			return nil, core.ErrUnknownLevel
		}
		groups[level] = append(groups[level], chunks[i])
	}

	committed := make(map[core.Level][]core.ID, len(groups))
	for _, level := range core.Levels {
		group := groups[level]
		if len(group) == 0 {
			continue
		}
		ids, err := ml.indexes[level].AddChunks(ctx, group)
		if len(ids) > 0 {
			committed[level] = ids
		}
		if err != nil {
			return committed, err
		}
	}
	return committed, nil
}

// tierQuery is one unit of a hierarchical fan-out: a tier label, the level
// index to query, the metadata filter scoping it, and the presentation
// stamps applied to its results.
type tierQuery struct {
	hierarchy core.HierarchyLevel
	index     *LevelIndex
	filter    map[string]string
	scope     string
}

// tiersForScope builds the tier queries for a geographic scope, most
// specific first. Tiers whose geographic value is absent are skipped; the
// national tier is always queried. Provincial law lives in the regional
// collection, narrowed by a province filter.
func (ml *MultiLevel) tiersForScope(scope Scope) []tierQuery {
	tiers := make([]tierQuery, 0, 4)
	if scope.Municipality != "" {
		tiers = append(tiers, tierQuery{
			hierarchy: core.HierarchyComunale,
			index:     ml.indexes[core.LevelComunale],
			filter:    map[string]string{core.KeyMunicipality: scope.Municipality},
			scope:     scope.Municipality,
		})
	}
	if scope.Province != "" {
		tiers = append(tiers, tierQuery{
			hierarchy: core.HierarchyProvinciale,
			index:     ml.indexes[core.LevelRegionale],
			filter:    map[string]string{core.KeyProvince: scope.Province},
			scope:     scope.Province,
		})
	}
	if scope.Region != "" {
		tiers = append(tiers, tierQuery{
			hierarchy: core.HierarchyRegionale,
			index:     ml.indexes[core.LevelRegionale],
			filter:    map[string]string{core.KeyRegion: scope.Region},
			scope:     scope.Region,
		})
	}
	tiers = append(tiers, tierQuery{
		hierarchy: core.HierarchyNazionale,
		index:     ml.indexes[core.LevelNazionale],
		scope:     core.NationalScope,
	})
	return tiers
}

// SearchHierarchical queries every tier applicable to the scope and returns
// the union of their results, most specific tier first, each chunk stamped
// with its tier label and geographic scope. kPerTier bounds each tier's
// contribution; the union is never truncated, so callers can see how the
// tiers compare. Tiers that fail or time out are logged and skipped.
func (ml *MultiLevel) SearchHierarchical(ctx context.Context, query string, scope Scope, kPerTier int) ([]core.ScoredChunk, error) {
	if ml.isClosed() {
		return nil, ErrRouterClosed
	}
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if kPerTier <= 0 {
		return nil, nil
	}

	tiers := ml.tiersForScope(scope)
	perTier := make([][]core.ScoredChunk, len(tiers))

	var wg sync.WaitGroup
	for i := range tiers {
		i := i
		tier := tiers[i]
		wg.Add(1)
		err := ml.pool.Submit(func() {
			defer wg.Done()

			tierCtx, cancel := context.WithTimeout(ctx, ml.tierTimeout)
			defer cancel()

			results, err := tier.index.SearchWithScore(tierCtx, query, kPerTier, -1, tier.filter)
			if err != nil {
				ml.logger.Warn("tier query failed, skipping tier",
					"tier", string(tier.hierarchy), "err", err)
				return
			}
			for j := range results {
				results[j].Chunk.Metadata.HierarchyLevel = tier.hierarchy
				results[j].Chunk.Metadata.ContextScope = tier.scope
			}
			perTier[i] = results
		})
		if err != nil {
			wg.Done()
			ml.logger.Warn("failed to submit tier query", "tier", string(tier.hierarchy), "err", err)
		}
	}
	wg.Wait()

	var merged []core.ScoredChunk
	for _, results := range perTier {
		merged = append(merged, results...)
	}
	return merged, nil
}

// SearchAllLevels queries every tier without geographic filters and merges
// the results into a single list of the k highest-scoring chunks.
func (ml *MultiLevel) SearchAllLevels(ctx context.Context, query string, k int) ([]core.ScoredChunk, error) {
	if ml.isClosed() {
		return nil, ErrRouterClosed
	}
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		return nil, nil
	}

	var merged []core.ScoredChunk
	for _, level := range core.Levels {
		results, err := ml.indexes[level].SearchWithScore(ctx, query, k, -1, nil)
		if err != nil {
			ml.logger.Warn("level query failed, skipping level", "level", string(level), "err", err)
			continue
		}
		merged = append(merged, results...)
	}

	slices.SortStableFunc(merged, func(a, b core.ScoredChunk) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}

// Stats reports stats for every tier index.
func (ml *MultiLevel) Stats(ctx context.Context) ([]Stats, error) {
	stats := make([]Stats, 0, len(core.Levels))
	for _, level := range core.Levels {
		s, err := ml.indexes[level].Stats(ctx)
		if err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// Reset drops every chunk in every tier index.
func (ml *MultiLevel) Reset(ctx context.Context) error {
	for _, level := range core.Levels {
		if err := ml.indexes[level].Reset(ctx); err != nil {
			return err
		}
	}
	return nil
}
