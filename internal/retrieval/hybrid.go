package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
)

// HybridConfig holds the fusion weights. The soft invariant
// w_v + w_k ≈ 1.0 (within 0.01) is logged, not enforced.
type HybridConfig struct {
	VectorWeight  float64
	KeywordWeight float64
}

// DefaultHybridConfig returns the process default weights.
func DefaultHybridConfig() HybridConfig {
	return HybridConfig{VectorWeight: 0.7, KeywordWeight: 0.3}
}

func (c HybridConfig) validate() {
	if math.Abs(c.VectorWeight+c.KeywordWeight-1.0) > 0.01 {
		slog.Warn("hybrid_weights_do_not_sum_to_one",
			slog.Float64("vector_weight", c.VectorWeight),
			slog.Float64("keyword_weight", c.KeywordWeight))
	}
}

// HybridEngine fans out to a Keyword and a Vector engine concurrently,
// then merges their results by document name under configured weights.
//
// Weight updates (UpdateWeights) apply to subsequent searches only;
// there is no read/write barrier against in-flight searches, so a
// concurrent update may race with a dispatched search. Last writer
// wins for the next search. This is documented behavior, not a bug.
type HybridEngine struct {
	keyword Engine
	vector  Engine

	mu     sync.RWMutex
	config HybridConfig
}

// NewHybridEngine creates a HybridEngine over keyword and vector
// engines with the given initial config.
func NewHybridEngine(keyword, vector Engine, config HybridConfig) *HybridEngine {
	config.validate()
	return &HybridEngine{keyword: keyword, vector: vector, config: config}
}

// UpdateWeights replaces the fusion weights used by subsequent searches.
func (h *HybridEngine) UpdateWeights(config HybridConfig) {
	config.validate()
	h.mu.Lock()
	h.config = config
	h.mu.Unlock()
}

// Search dispatches to the Keyword and Vector engines concurrently,
// fetching 3k candidates from each, then merges by name. If either
// engine fails, the hybrid search fails.
func (h *HybridEngine) Search(ctx context.Context, query string, k int, trace string) ([]SearchResultItem, error) {
	h.mu.RLock()
	cfg := h.config
	h.mu.RUnlock()

	fetch := 3 * k

	var keywordResults, vectorResults []SearchResultItem
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		keywordResults, err = h.keyword.Search(gctx, query, fetch, trace)
		return err
	})
	g.Go(func() error {
		var err error
		vectorResults, err = h.vector.Search(gctx, query, fetch, trace)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("hybrid engine: %w", err)
	}

	merged := mergeByName(keywordResults, vectorResults, cfg)
	sortByScoreDesc(merged)
	return truncate(merged, k), nil
}

var _ Engine = (*HybridEngine)(nil)

// mergeByName combines keyword and vector results keyed by document
// name: each vector result seeds an entry at v.score*w_v; each keyword
// result either adds k.score*w_k to an existing entry (replacing the
// snippet if the keyword engine's is longer) or inserts its own entry
// at k.score*w_k. The identity key is the display name, a known wart;
// a stable document identifier would be safer when names collide.
func mergeByName(keywordResults, vectorResults []SearchResultItem, cfg HybridConfig) []SearchResultItem {
	entries := make(map[string]*SearchResultItem, len(vectorResults)+len(keywordResults))
	order := make([]string, 0, len(vectorResults)+len(keywordResults))

	for _, v := range vectorResults {
		item := v
		item.Score = v.Score * cfg.VectorWeight
		item.MatchType = MatchHybrid
		entries[v.Name] = &item
		order = append(order, v.Name)
	}

	for _, kw := range keywordResults {
		if existing, ok := entries[kw.Name]; ok {
			existing.Score += kw.Score * cfg.KeywordWeight
			if len(kw.Snippet) > len(existing.Snippet) {
				existing.Snippet = kw.Snippet
			}
			continue
		}
		item := kw
		item.Score = kw.Score * cfg.KeywordWeight
		item.MatchType = MatchHybrid
		entries[kw.Name] = &item
		order = append(order, kw.Name)
	}

	results := make([]SearchResultItem, 0, len(order))
	for _, name := range order {
		results = append(results, *entries[name])
	}
	return results
}
