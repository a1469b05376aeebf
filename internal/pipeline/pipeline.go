// Package pipeline implements the Retrieval Pipeline (component H): it
// dispatches a query to the Keyword, Vector, or Hybrid engine, invokes
// the LLM Re-ranker when enabled, and returns the final top-K results.
//
// Construction is fallible the way a preflight health check is: a
// Pipeline with a missing dependency reports a dedicated
// ErrPipelineNotReady on every Search call rather than panicking or
// exiting the process.
package pipeline

import (
	"context"
	"fmt"

	"github.com/Aman-CERP/resumeretrieval/internal/rerank"
	"github.com/Aman-CERP/resumeretrieval/internal/retrieval"
)

// SearchType selects which engine serves a query.
type SearchType string

const (
	SearchKeyword SearchType = "keyword"
	SearchVector  SearchType = "vector"
	SearchHybrid  SearchType = "hybrid"
)

// RerankConfig controls whether the re-rank stage runs, and how many
// candidates to fetch ahead of it.
type RerankConfig struct {
	Enabled       bool
	RetrievalTopK int
}

// Engines groups the three candidate-generation engines the pipeline
// dispatches to by SearchType.
type Engines struct {
	Keyword retrieval.Engine
	Vector  retrieval.Engine
	Hybrid  retrieval.Engine
}

// Result is one search's full output: the ranked items plus the
// re-rank analysis, when G ran.
type Result struct {
	Items    []retrieval.SearchResultItem
	Analysis *rerank.AnalysisRecord
}

// Pipeline orchestrates the retrieval engines, the re-ranker, and the
// final top-K truncation.
type Pipeline struct {
	engines  Engines
	reranker *rerank.Reranker
	config   RerankConfig
	ready    bool
	readyErr error
}

// New constructs a Pipeline. A nil Keyword, Vector, or Hybrid engine
// marks the pipeline not-ready: Search will report ErrPipelineNotReady
// instead of panicking on a nil dereference (e.g. the store was
// unreachable at startup).
func New(engines Engines, reranker *rerank.Reranker, config RerankConfig) *Pipeline {
	p := &Pipeline{engines: engines, reranker: reranker, config: config}

	switch {
	case engines.Keyword == nil:
		p.readyErr = fmt.Errorf("pipeline: keyword engine not wired")
	case engines.Vector == nil:
		p.readyErr = fmt.Errorf("pipeline: vector engine not wired")
	case engines.Hybrid == nil:
		p.readyErr = fmt.Errorf("pipeline: hybrid engine not wired")
	case config.Enabled && reranker == nil:
		p.readyErr = fmt.Errorf("pipeline: re-rank enabled but reranker not wired")
	default:
		p.ready = true
	}

	return p
}

// Ready reports whether the pipeline was constructed with every
// dependency its current configuration needs.
func (p *Pipeline) Ready() (bool, error) {
	return p.ready, p.readyErr
}

// Search dispatches query to the engine named by searchType, runs the
// re-rank/filter stage when enabled, and truncates to k.
func (p *Pipeline) Search(ctx context.Context, query string, searchType SearchType, k int, trace string) (Result, error) {
	if !p.ready {
		return Result{}, ErrPipelineNotReady{Cause: p.readyErr}
	}

	engine, err := p.engineFor(searchType)
	if err != nil {
		return Result{}, err
	}

	fetch := k
	if p.config.Enabled {
		fetch = p.config.RetrievalTopK
		if fetch < k {
			fetch = k
		}
	}

	items, err := engine.Search(ctx, query, fetch, trace)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: %s search failed: %w", searchType, err)
	}

	var analysis *rerank.AnalysisRecord
	if p.config.Enabled && len(items) > 0 {
		reranked, a, err := p.reranker.RerankAndFilter(ctx, query, items, trace)
		if err != nil {
			return Result{}, fmt.Errorf("pipeline: re-rank failed: %w", err)
		}
		items = reranked
		analysis = &a
	}

	if k >= 0 && k < len(items) {
		items = items[:k]
	}

	return Result{Items: items, Analysis: analysis}, nil
}

func (p *Pipeline) engineFor(searchType SearchType) (retrieval.Engine, error) {
	switch searchType {
	case SearchKeyword:
		return p.engines.Keyword, nil
	case SearchVector:
		return p.engines.Vector, nil
	case SearchHybrid:
		return p.engines.Hybrid, nil
	default:
		return nil, fmt.Errorf("pipeline: unknown search type %q", searchType)
	}
}

// ErrPipelineNotReady is returned by Search when the pipeline was
// constructed without a required dependency.
type ErrPipelineNotReady struct {
	Cause error
}

func (e ErrPipelineNotReady) Error() string {
	return fmt.Sprintf("pipeline not initialized: %v", e.Cause)
}

func (e ErrPipelineNotReady) Unwrap() error {
	return e.Cause
}
