package store

import (
	"context"
	"sync"
)

// DocumentStoreAdapter implements ResumeStore over an in-memory bleve
// keyword index and a coder/hnsw vector index, sharing a document map
// so both query paths can return fully-populated ResumeDocuments.
type DocumentStoreAdapter struct {
	mu   sync.RWMutex
	docs map[string]*ResumeDocument

	keyword *keywordIndex
	vector  *vectorIndex
}

// NewDocumentStoreAdapter creates an adapter whose vector index expects
// embeddings of the given dimension.
func NewDocumentStoreAdapter(dimensions int) (*DocumentStoreAdapter, error) {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}

	kw, err := newKeywordIndex()
	if err != nil {
		return nil, err
	}

	return &DocumentStoreAdapter{
		docs:    make(map[string]*ResumeDocument),
		keyword: kw,
		vector:  newVectorIndex(dimensions),
	}, nil
}

// Load seeds the store with documents, replacing any existing entries
// sharing an ID. Not called by the retrieval core; used by ingestion
// (out of scope) and by tests.
func (a *DocumentStoreAdapter) Load(ctx context.Context, docs []*ResumeDocument) error {
	if len(docs) == 0 {
		return nil
	}

	if err := a.keyword.indexDocuments(docs); err != nil {
		return err
	}

	ids := make([]string, 0, len(docs))
	vecs := make([][]float32, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) > 0 {
			ids = append(ids, doc.ID)
			vecs = append(vecs, doc.Embedding)
		}
	}
	if len(ids) > 0 {
		if err := a.vector.add(ids, vecs); err != nil {
			return err
		}
	}

	a.mu.Lock()
	for _, doc := range docs {
		a.docs[doc.ID] = doc
	}
	a.mu.Unlock()

	return nil
}

// KeywordQuery executes plan against the keyword index and resolves
// hits to full documents, in the index's returned order.
func (a *DocumentStoreAdapter) KeywordQuery(ctx context.Context, plan FieldRegexPlan, limit int) ([]*ResumeDocument, error) {
	ids, err := a.keyword.regexQuery(ctx, plan, limit)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	results := make([]*ResumeDocument, 0, len(ids))
	for _, id := range ids {
		if doc, ok := a.docs[id]; ok {
			results = append(results, doc)
		}
	}
	return results, nil
}

// VectorQuery executes an ANN search against the vector index and
// resolves hits to full documents.
func (a *DocumentStoreAdapter) VectorQuery(ctx context.Context, vec []float32, k int) ([]VectorHit, error) {
	idHits, err := a.vector.search(vec, k)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	results := make([]VectorHit, 0, len(idHits))
	for _, hit := range idHits {
		doc, ok := a.docs[hit.id]
		if !ok {
			continue
		}
		results = append(results, VectorHit{Document: doc, Similarity: hit.similarity})
	}
	return results, nil
}

// GetByID returns the full document for id.
func (a *DocumentStoreAdapter) GetByID(ctx context.Context, id string) (*ResumeDocument, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	doc, ok := a.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Close releases both underlying indexes.
func (a *DocumentStoreAdapter) Close() error {
	kwErr := a.keyword.close()
	vecErr := a.vector.close()
	if kwErr != nil {
		return kwErr
	}
	return vecErr
}

var _ ResumeStore = (*DocumentStoreAdapter)(nil)
