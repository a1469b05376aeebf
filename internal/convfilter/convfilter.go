// Package convfilter implements the Conversational Filter (component
// J): it re-judges a conversation's previously-cached retrieval
// results against a new natural-language criterion, via a single chat
// completion call, without touching the document store.
package convfilter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Aman-CERP/resumeretrieval/internal/chatmodel"
	"github.com/Aman-CERP/resumeretrieval/internal/llmjson"
	"github.com/Aman-CERP/resumeretrieval/internal/retrieval"
)

// intentTokens are the fixed, case-insensitive substrings that signal
// a follow-up message is narrowing previous results rather than
// issuing a fresh query. Language-brittle by design; treat as
// configuration.
var intentTokens = []string{
	"only", "filter", "show me", "display", "from those", "from the above",
	"from previous", "from these", "among them", "out of these",
	"narrow down", "refine",
}

// hasFilterIntent reports whether message contains any filter-intent
// token, case-insensitively. Kept separate from the conversation-id
// based selection in handleChat (which already implies intent for an
// existing conversation) so the token list can be exercised on its own.
func hasFilterIntent(message string) bool {
	lower := strings.ToLower(message)
	for _, tok := range intentTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

const systemInstructions = `You are narrowing an existing list of resume candidates by a new
criterion the user just gave. You are NOT allowed to modify any
candidate's data, and you must NOT invent a match that isn't supported
by the candidate's extracted information below. Judge each candidate
against the user's new criterion and nothing else.

Typical filter categories include: whether a company is service-based
or product-based, a location mentioned in the criterion, a minimum
years-of-experience threshold, or the presence of a named skill. Use
whichever category the criterion actually names.

Return exactly this JSON shape and nothing else:

{
  "filteredResults": [
    {"name": "<candidate name exactly as given>", "matches": true, "reasoning": "<short reason>"}
  ],
  "summary": "<one sentence>"
}`

type filterResponse struct {
	FilteredResults []filterMatchJSON `json:"filteredResults"`
	Summary         string             `json:"summary"`
}

type filterMatchJSON struct {
	Name      string `json:"name"`
	Matches   bool   `json:"matches"`
	Reasoning string `json:"reasoning"`
}

// Filter re-judges cached results against criteria via a single chat
// completion call (component J).
type Filter struct {
	chat chatmodel.Client
}

// New creates a Filter over chat.
func New(chat chatmodel.Client) *Filter {
	return &Filter{chat: chat}
}

// Apply filters cachedResults by criteria and returns the matching
// subset, preserving cachedResults' original order, plus a textual
// summary.
//
// On chat-model transport error or unparseable response, this fails
// open: ALL cached results are returned with an explanatory summary.
// It never drops a candidate silently.
func (f *Filter) Apply(ctx context.Context, criteria string, cachedResults []retrieval.SearchResultItem, trace string) ([]retrieval.SearchResultItem, string, error) {
	if len(cachedResults) == 0 {
		return []retrieval.SearchResultItem{}, "", nil
	}

	messages := []chatmodel.Message{
		{Role: chatmodel.RoleSystem, Content: systemInstructions},
		{Role: chatmodel.RoleUser, Content: buildUserMessage(criteria, cachedResults)},
	}

	raw, err := f.chat.Complete(ctx, messages)
	if err != nil {
		slog.Warn("convfilter_chat_transport_failed", slog.String("trace", trace), slog.String("error", err.Error()))
		return cachedResults, "filter unavailable (chat model error); returning all previous results", nil
	}

	var resp filterResponse
	if err := json.Unmarshal([]byte(llmjson.Extract(raw)), &resp); err != nil {
		slog.Warn("convfilter_parse_failed", slog.String("trace", trace), slog.String("error", err.Error()))
		return cachedResults, "filter response could not be parsed; returning all previous results", nil
	}

	matchesByName := make(map[string]bool, len(resp.FilteredResults))
	for _, m := range resp.FilteredResults {
		matchesByName[m.Name] = m.Matches
	}

	out := make([]retrieval.SearchResultItem, 0, len(cachedResults))
	for _, c := range cachedResults {
		if matchesByName[c.Name] {
			out = append(out, c)
		}
	}

	return out, resp.Summary, nil
}

func buildUserMessage(criteria string, cached []retrieval.SearchResultItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "New criterion: %s\n\nPrevious candidates:\n", criteria)

	for i, c := range cached {
		fmt.Fprintf(&sb, "\n%d. Name: %s\n", i+1, c.Name)
		if c.ExtractedInfo != nil {
			info := c.ExtractedInfo
			fmt.Fprintf(&sb, "   Current company: %s\n   Location: %s\n   Skills: %s\n   Experience: %s\n   Key highlights: %s\n",
				info.CurrentCompany, info.Location, strings.Join(info.Skills, ", "), info.Experience, strings.Join(info.KeyHighlights, ", "))
		}
	}

	return sb.String()
}
