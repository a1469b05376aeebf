package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
)

const (
	fieldAnalyzerName  = "field_analyzer"
	fieldTokenizerName = "field_tokenizer"
)

func init() {
	_ = registry.RegisterTokenizer(fieldTokenizerName, fieldTokenizerConstructor)
}

// keywordIndex wraps an in-memory bleve index over resume document
// fields. Persistence is out of scope (no durable index): the index is
// rebuilt by Load on process start.
type keywordIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	closed bool
}

// bleveFields is the document shape handed to bleve for indexing.
type bleveFields struct {
	Text    string `json:"text"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Skills  string `json:"skills"`
	Role    string `json:"role"`
	Company string `json:"company"`
}

func newKeywordIndex() (*keywordIndex, error) {
	indexMapping, err := createFieldMapping()
	if err != nil {
		return nil, fmt.Errorf("failed to create index mapping: %w", err)
	}

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory index: %w", err)
	}

	return &keywordIndex{index: idx}, nil
}

func createFieldMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(fieldAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": fieldTokenizerName,
		"token_filters": []string{
			lowercase.Name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add field analyzer: %w", err)
	}

	indexMapping.DefaultAnalyzer = fieldAnalyzerName

	return indexMapping, nil
}

// indexDocuments replaces any existing entries for the given documents.
func (k *keywordIndex) indexDocuments(docs []*ResumeDocument) error {
	if len(docs) == 0 {
		return nil
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return fmt.Errorf("keyword index is closed")
	}

	batch := k.index.NewBatch()
	for _, doc := range docs {
		fields := bleveFields{
			Text:    doc.Text,
			Name:    doc.Name,
			Email:   doc.Email,
			Skills:  strings.Join(doc.Skills, " "),
			Role:    doc.Role,
			Company: doc.Company,
		}
		if err := batch.Index(doc.ID, fields); err != nil {
			return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
		}
	}

	return k.index.Batch(batch)
}

// regexQuery returns document IDs matching pattern across fields, in
// the order bleve returns them, capped at limit.
func (k *keywordIndex) regexQuery(ctx context.Context, plan FieldRegexPlan, limit int) ([]string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.closed {
		return nil, fmt.Errorf("keyword index is closed")
	}

	if strings.TrimSpace(plan.Pattern) == "" {
		return nil, nil
	}

	// Indexed terms are always lowercase (field analyzer); lowercase the
	// pattern too so matching is case-insensitive regardless of the
	// caller's input.
	pattern := strings.ToLower(plan.Pattern)

	fields := plan.fieldsOrDefault()
	queries := make([]bleve.Query, 0, len(fields))
	for _, field := range fields {
		rq := bleve.NewRegexpQuery(pattern)
		rq.SetField(field)
		queries = append(queries, rq)
	}

	disjunction := bleve.NewDisjunctionQuery(queries...)
	req := bleve.NewSearchRequest(disjunction)
	req.Size = limit
	req.Fields = []string{}

	result, err := k.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword query failed: %w", err)
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func (k *keywordIndex) close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil
	}
	k.closed = true
	return k.index.Close()
}

// fieldTokenizerConstructor builds the tokenizer bleve uses for every
// field in createFieldMapping.
func fieldTokenizerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &resumeFieldTokenizer{}, nil
}

// resumeFieldTokenizer implements analysis.Tokenizer over TokenizeField.
type resumeFieldTokenizer struct{}

func (t *resumeFieldTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	tokens := TokenizeField(text)

	result := make(analysis.TokenStream, 0, len(tokens))
	pos := 1
	offset := 0

	for _, token := range tokens {
		start := strings.Index(strings.ToLower(text[offset:]), strings.ToLower(token))
		if start == -1 {
			start = offset
		} else {
			start += offset
		}
		end := start + len(token)

		result = append(result, &analysis.Token{
			Term:     []byte(token),
			Start:    start,
			End:      end,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		pos++
		if end <= len(text) {
			offset = end
		}
	}

	return result
}
