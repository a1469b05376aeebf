// Package rerank implements the LLM Re-ranker (component G): it takes
// the Hybrid Engine's candidates, asks a chat model to judge each
// against the original query, and returns a filtered, re-scored list.
//
// Failures are absorbed, never propagated as a dropped candidate: a
// parse failure or chat-model transport error falls back to returning
// the original candidates unchanged, with a summary explaining why.
package rerank

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/Aman-CERP/resumeretrieval/internal/chatmodel"
	"github.com/Aman-CERP/resumeretrieval/internal/llmjson"
	"github.com/Aman-CERP/resumeretrieval/internal/retrieval"
	"github.com/Aman-CERP/resumeretrieval/internal/store"
)

// Verdict is one candidate's judgment from the chat model.
type Verdict struct {
	Name            string                   `json:"name"`
	RelevanceScore  float64                  `json:"relevanceScore"`
	MatchesCriteria bool                     `json:"matchesCriteria"`
	Reasoning       string                   `json:"reasoning"`
	ExtractedInfo   *retrieval.ExtractedInfo `json:"-"`
}

// AnalysisRecord carries the chat model's human-readable summary and
// the per-candidate verdicts that produced the returned result list.
type AnalysisRecord struct {
	Summary  string
	Verdicts []Verdict
}

// contentTruncateLen is the maximum number of resume-content characters
// shown per candidate in the prompt.
const contentTruncateLen = 3000

// truncationMarker is appended when a candidate's content is truncated
// for the prompt.
const truncationMarker = "... [truncated]"

// responseEnvelope is the JSON shape the chat model is instructed to
// return.
type responseEnvelope struct {
	Matches []matchJSON `json:"matches"`
	Summary string      `json:"summary"`
}

// matchJSON is one entry of responseEnvelope.Matches. ExtractedInfo's
// Skills/KeyHighlights tolerate either a JSON array or a single
// comma-separated string.
type matchJSON struct {
	Name            string             `json:"name"`
	RelevanceScore  float64            `json:"relevanceScore"`
	MatchesCriteria bool               `json:"matchesCriteria"`
	Reasoning       string             `json:"reasoning"`
	ExtractedInfo   *extractedInfoJSON `json:"extractedInfo"`
}

type extractedInfoJSON struct {
	CurrentCompany string               `json:"currentCompany"`
	Location       string               `json:"location"`
	Skills         llmjson.StringOrList `json:"skills"`
	Experience     string               `json:"experience"`
	KeyHighlights  llmjson.StringOrList `json:"keyHighlights"`
}

func (e *extractedInfoJSON) toDomain() *retrieval.ExtractedInfo {
	if e == nil {
		return nil
	}
	return &retrieval.ExtractedInfo{
		CurrentCompany: e.CurrentCompany,
		Location:       e.Location,
		Skills:         []string(e.Skills),
		Experience:     e.Experience,
		KeyHighlights:  []string(e.KeyHighlights),
	}
}

// Reranker formats a batch of candidates into a single chat-completion
// prompt, asks the chat model to judge and score them against the
// query, and filters/re-orders the candidates by the response.
type Reranker struct {
	chat  chatmodel.Client
	store store.ResumeStore
}

// New creates a Reranker. store is used only to resolve each
// candidate's full resume text for the prompt, since a
// SearchResultItem only carries a short snippet; it is never queried
// or mutated otherwise. store may be nil, in which case the
// candidate's existing snippet is used as-is, a documented narrowing
// rather than a crash.
func New(chat chatmodel.Client, resumeStore store.ResumeStore) *Reranker {
	return &Reranker{chat: chat, store: resumeStore}
}

// RerankAndFilter judges candidates against query via a single chat
// completion call, drops candidates the model marks as not matching,
// and re-scores/re-orders the rest.
//
// This never returns an error that should abort the caller's request:
// chat-model transport failures and unparseable responses are
// absorbed and reported through AnalysisRecord.Summary, with
// candidates returned unchanged (fail-open).
func (r *Reranker) RerankAndFilter(ctx context.Context, query string, candidates []retrieval.SearchResultItem, trace string) ([]retrieval.SearchResultItem, AnalysisRecord, error) {
	if len(candidates) == 0 {
		return []retrieval.SearchResultItem{}, AnalysisRecord{}, nil
	}

	prompt := r.resolveContent(ctx, candidates)

	messages := []chatmodel.Message{
		{Role: chatmodel.RoleSystem, Content: systemInstructions},
		{Role: chatmodel.RoleUser, Content: buildUserMessage(query, prompt)},
	}

	raw, err := r.chat.Complete(ctx, messages)
	if err != nil {
		slog.Warn("rerank_chat_transport_failed", slog.String("trace", trace), slog.String("error", err.Error()))
		return candidates, AnalysisRecord{
			Summary: "re-rank unavailable (chat model error); returning unranked candidates",
		}, nil
	}

	env, err := parseResponse(raw)
	if err != nil {
		slog.Warn("rerank_parse_failed", slog.String("trace", trace), slog.String("error", err.Error()))
		return candidates, AnalysisRecord{
			Summary: "re-rank response could not be parsed; returning unranked candidates",
		}, nil
	}

	byName := make(map[string]retrieval.SearchResultItem, len(candidates))
	for _, c := range candidates {
		byName[c.Name] = c
	}

	verdicts := make([]Verdict, 0, len(env.Matches))
	results := make([]retrieval.SearchResultItem, 0, len(candidates))

	for _, m := range env.Matches {
		original, ok := byName[m.Name]
		if !ok {
			slog.Warn("rerank_verdict_unknown_candidate", slog.String("trace", trace), slog.String("name", m.Name))
			continue
		}

		verdicts = append(verdicts, Verdict{
			Name:            m.Name,
			RelevanceScore:  m.RelevanceScore,
			MatchesCriteria: m.MatchesCriteria,
			Reasoning:       m.Reasoning,
			ExtractedInfo:   m.ExtractedInfo.toDomain(),
		})

		if !m.MatchesCriteria {
			continue
		}

		item := original
		item.Score = clamp01(m.RelevanceScore)
		item.MatchType = retrieval.MatchLLMReranked
		item.LLMReasoning = m.Reasoning
		item.ExtractedInfo = m.ExtractedInfo.toDomain()
		results = append(results, item)
	}

	sortByScoreDesc(results)

	return results, AnalysisRecord{Summary: env.Summary, Verdicts: verdicts}, nil
}

// resolveContent returns candidates with Snippet replaced by up to
// contentTruncateLen characters of the document's full text, when a
// store is available and the lookup succeeds. Lookup failures fall
// back to the candidate's existing (short) snippet rather than
// failing the whole re-rank.
func (r *Reranker) resolveContent(ctx context.Context, candidates []retrieval.SearchResultItem) []retrieval.SearchResultItem {
	if r.store == nil {
		return candidates
	}

	out := make([]retrieval.SearchResultItem, len(candidates))
	for i, c := range candidates {
		out[i] = c
		doc, err := r.store.GetByID(ctx, c.ID)
		if err != nil {
			continue
		}
		out[i].Snippet = doc.Text
	}
	return out
}

// parseResponse extracts and decodes the JSON envelope from raw,
// unwrapping a fenced code block if present.
func parseResponse(raw string) (responseEnvelope, error) {
	var env responseEnvelope
	if err := json.Unmarshal([]byte(llmjson.Extract(raw)), &env); err != nil {
		return responseEnvelope{}, err
	}
	return env, nil
}

// sortByScoreDesc sorts results by score descending, preserving the
// relative order of equal scores.
func sortByScoreDesc(items []retrieval.SearchResultItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
