// Package store provides the document store adapter: a keyword index
// (bleve) and a vector index (coder/hnsw) over resume documents, both
// safe for concurrent use.
package store

import (
	"context"
	"fmt"
)

// DefaultDimensions is the process-wide embedding dimension used when a
// caller doesn't override it.
const DefaultDimensions = 1024

// ResumeDocument is a read-only record as seen by the retrieval core.
// Documents are created by the (out-of-scope) ingestion path and are
// never mutated here.
type ResumeDocument struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Role      string
	Skills    []string
	Company   string
	Text      string
	Embedding []float32
}

// QueryableFields lists the document fields a keyword query may
// search, in a fixed, stable order.
var QueryableFields = []string{"text", "name", "email", "skills", "role", "company"}

// FieldRegexPlan describes a keyword query: a single case-insensitive
// pattern matched as a disjunction over Fields. An empty Fields list
// means all of QueryableFields.
type FieldRegexPlan struct {
	Pattern string
	Fields  []string
}

// fieldsOrDefault returns the plan's fields, or QueryableFields if unset.
func (p FieldRegexPlan) fieldsOrDefault() []string {
	if len(p.Fields) == 0 {
		return QueryableFields
	}
	return p.Fields
}

// VectorHit pairs a document with its raw cosine similarity to a query
// vector. Similarity is unnormalized and unclamped: typically in [0,1]
// but can range down to -1 for opposing vectors.
type VectorHit struct {
	Document   *ResumeDocument
	Similarity float32
}

// ResumeStore is the Document Store Adapter: it executes keyword and
// vector queries against an index of resume documents and returns raw,
// unscored (keyword) or raw-similarity (vector) results. Callers (the
// Keyword and Vector Engines) do their own scoring and normalization.
//
// Implementations must be safe for concurrent use: the store is shared
// across every request the pipeline serves.
type ResumeStore interface {
	// KeywordQuery returns up to limit documents matching plan, in the
	// order the keyword index returns them (its own relevance order).
	// No score is attached to the returned documents.
	KeywordQuery(ctx context.Context, plan FieldRegexPlan, limit int) ([]*ResumeDocument, error)

	// VectorQuery returns the k nearest documents to vec by cosine
	// similarity, ordered nearest-first. Returns ErrVectorIndexUnavailable
	// if the vector index has no vectors loaded.
	VectorQuery(ctx context.Context, vec []float32, k int) ([]VectorHit, error)

	// Load seeds the store with documents. Used by the (out-of-scope)
	// ingestion path and by tests; the core never calls it mid-pipeline.
	Load(ctx context.Context, docs []*ResumeDocument) error

	// GetByID returns the full document for id, or ErrDocumentNotFound.
	// The LLM re-ranker needs more of a candidate's content than the
	// short snippet carried on a SearchResultItem; this lookup lets it
	// resolve the full text without the keyword/vector engines widening
	// their own result type.
	GetByID(ctx context.Context, id string) (*ResumeDocument, error)

	// Close releases index resources.
	Close() error
}

// ErrDocumentNotFound indicates GetByID was called with an id the
// store has no document for.
var ErrDocumentNotFound = fmt.Errorf("document not found")

// ErrDimensionMismatch indicates a query vector's dimension doesn't
// match the index's configured dimension.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

// ErrVectorIndexUnavailable indicates the vector index has no vectors
// loaded, so a vector_query cannot be served.
var ErrVectorIndexUnavailable = fmt.Errorf("vector index unavailable: no vectors loaded")
