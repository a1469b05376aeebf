// Package retrieval implements the Keyword, Vector, and Hybrid search
// engines that generate candidate resumes for a query, ahead of LLM
// re-ranking.
package retrieval

import "context"

// MatchType records which stage last owned a result's ranking.
type MatchType string

const (
	MatchKeyword     MatchType = "keyword"
	MatchVector      MatchType = "vector"
	MatchHybrid      MatchType = "hybrid"
	MatchLLMReranked MatchType = "llm-reranked"
)

// ExtractedInfo is the LLM re-ranker's optional structured read of a
// candidate. Fields are evidence-based strings, not guarantees.
type ExtractedInfo struct {
	CurrentCompany string
	Location       string
	Skills         []string
	Experience     string
	KeyHighlights  []string
}

// SearchResultItem is a single ranked candidate returned by any engine.
type SearchResultItem struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	Snippet       string
	Score         float64
	MatchType     MatchType
	ExtractedInfo *ExtractedInfo
	LLMReasoning  string
}

// Engine is satisfied by the Keyword, Vector, and Hybrid engines. The
// Hybrid Engine holds two Engine values rather than concrete types so
// it can fan out over either implementation uniformly.
type Engine interface {
	Search(ctx context.Context, query string, k int, trace string) ([]SearchResultItem, error)
}

const snippetMaxLen = 200
