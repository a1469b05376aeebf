package retrieval

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Aman-CERP/resumeretrieval/internal/store"
)

// Weighted field contributions to the keyword match score (company is
// queried but, per the scoring formula, does not itself contribute).
const (
	weightText   = 1.0
	weightName   = 2.0
	weightEmail  = 1.5
	weightSkills = 3.0
	weightRole   = 2.5

	scoreNormalizer = 30.0
)

// ErrNilKeywordStore is returned when constructing a KeywordEngine
// without a store.
var ErrNilKeywordStore = errors.New("keyword engine: store is required")

// KeywordEngine issues a field-weighted keyword query against the
// Document Store Adapter and scores the raw results itself.
type KeywordEngine struct {
	store store.ResumeStore
}

// NewKeywordEngine creates a KeywordEngine over s.
func NewKeywordEngine(s store.ResumeStore) (*KeywordEngine, error) {
	if s == nil {
		return nil, ErrNilKeywordStore
	}
	return &KeywordEngine{store: s}, nil
}

// Search tokenizes query by whitespace, issues a single alternation
// regex query over all queryable fields, scores each returned document
// by weighted match count, and returns the top k.
func (e *KeywordEngine) Search(ctx context.Context, query string, k int, trace string) ([]SearchResultItem, error) {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return []SearchResultItem{}, nil
	}

	plan := store.FieldRegexPlan{Pattern: alternationPattern(tokens)}
	docs, err := e.store.KeywordQuery(ctx, plan, 2*k)
	if err != nil {
		return nil, fmt.Errorf("keyword engine: store query failed: %w", err)
	}

	items := make([]SearchResultItem, 0, len(docs))
	for _, doc := range docs {
		raw := weightText*countIn(doc.Text, tokens) +
			weightName*countIn(doc.Name, tokens) +
			weightEmail*countIn(doc.Email, tokens) +
			weightSkills*countIn(strings.Join(doc.Skills, " "), tokens) +
			weightRole*countIn(doc.Role, tokens)

		items = append(items, SearchResultItem{
			ID:        doc.ID,
			Name:      doc.Name,
			Email:     doc.Email,
			Phone:     doc.Phone,
			Snippet:   snippetAroundMatch(doc.Text, tokens),
			Score:     clamp01(raw / scoreNormalizer),
			MatchType: MatchKeyword,
		})
	}

	sortByScoreDesc(items)
	return truncate(items, k), nil
}

var _ Engine = (*KeywordEngine)(nil)

// alternationPattern builds a case-insensitive alternation regex from
// query tokens. Indexed terms are lowercased by the store, so the
// pattern itself need not carry a case-insensitivity flag.
func alternationPattern(tokens []string) string {
	escaped := make([]string, len(tokens))
	for i, tok := range tokens {
		escaped[i] = regexp.QuoteMeta(tok)
	}
	return strings.Join(escaped, "|")
}

// countIn counts the total case-insensitive occurrences of any token
// in field.
func countIn(field string, tokens []string) float64 {
	if field == "" {
		return 0
	}
	lower := strings.ToLower(field)
	var count float64
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		count += float64(strings.Count(lower, strings.ToLower(tok)))
	}
	return count
}

// snippetAroundMatch extracts a window (<=snippetMaxLen chars) around
// the first token match in text, with ellipses on each truncated side.
// If no token matches, returns the leading snippetMaxLen chars with a
// trailing ellipsis if text was truncated.
func snippetAroundMatch(text string, tokens []string) string {
	if text == "" {
		return ""
	}

	lower := strings.ToLower(text)
	matchStart, matchLen := -1, 0
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if idx := strings.Index(lower, strings.ToLower(tok)); idx != -1 && (matchStart == -1 || idx < matchStart) {
			matchStart, matchLen = idx, len(tok)
		}
	}

	if matchStart == -1 {
		if len(text) <= snippetMaxLen {
			return text
		}
		return text[:snippetMaxLen] + "..."
	}

	half := (snippetMaxLen - matchLen) / 2
	start := matchStart - half
	if start < 0 {
		start = 0
	}
	end := start + snippetMaxLen
	if end > len(text) {
		end = len(text)
		start = end - snippetMaxLen
		if start < 0 {
			start = 0
		}
	}

	snippet := text[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet = snippet + "..."
	}
	return snippet
}
