package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aman-CERP/resumeretrieval/internal/embed"
	"github.com/Aman-CERP/resumeretrieval/internal/store"
)

// ErrNilEmbedder is returned when constructing a VectorEngine without
// an embedder.
var ErrNilEmbedder = errors.New("vector engine: embedder is required")

// ErrNilVectorStore is returned when constructing a VectorEngine
// without a store.
var ErrNilVectorStore = errors.New("vector engine: store is required")

// VectorEngine embeds the query and issues an ANN search against the
// Document Store Adapter.
type VectorEngine struct {
	embedder embed.Embedder
	store    store.ResumeStore
}

// NewVectorEngine creates a VectorEngine over embedder and s.
func NewVectorEngine(embedder embed.Embedder, s store.ResumeStore) (*VectorEngine, error) {
	if embedder == nil {
		return nil, ErrNilEmbedder
	}
	if s == nil {
		return nil, ErrNilVectorStore
	}
	return &VectorEngine{embedder: embedder, store: s}, nil
}

// Search embeds query, issues a vector_query, and clamps raw cosine
// similarities into [0,1]. A dimension mismatch reported by the store
// is fatal for this request and is returned wrapped, still matchable
// as store.ErrDimensionMismatch with errors.As.
func (e *VectorEngine) Search(ctx context.Context, query string, k int, trace string) ([]SearchResultItem, error) {
	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vector engine: embedding query failed: %w", err)
	}

	hits, err := e.store.VectorQuery(ctx, vec, k)
	if err != nil {
		var dimErr store.ErrDimensionMismatch
		if errors.As(err, &dimErr) {
			return nil, fmt.Errorf("vector engine: %w", dimErr)
		}
		return nil, fmt.Errorf("vector engine: store query failed: %w", err)
	}

	items := make([]SearchResultItem, 0, len(hits))
	for _, hit := range hits {
		items = append(items, SearchResultItem{
			ID:        hit.Document.ID,
			Name:      hit.Document.Name,
			Email:     hit.Document.Email,
			Phone:     hit.Document.Phone,
			Snippet:   headSnippet(hit.Document.Text),
			Score:     clamp01(float64(hit.Similarity)),
			MatchType: MatchVector,
		})
	}

	return items, nil
}

var _ Engine = (*VectorEngine)(nil)

// headSnippet returns the leading snippetMaxLen chars of text, with a
// trailing ellipsis if truncated.
func headSnippet(text string) string {
	if len(text) <= snippetMaxLen {
		return text
	}
	return text[:snippetMaxLen] + "..."
}
