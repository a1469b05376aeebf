package rerank

import (
	"fmt"
	"strings"

	"github.com/Aman-CERP/resumeretrieval/internal/retrieval"
)

// systemInstructions is the long, stable instruction set the LLM
// re-ranker sends as its system message. It defines the two judging
// modes the model must pick between per query: strict, for queries
// naming concrete criteria, and lenient, for generic "top candidates"
// requests.
const systemInstructions = `You are a resume screening assistant. You will be given a search
query and a numbered list of candidate resumes. Judge each candidate
against the query and return a single JSON object, nothing else.

Pick one of two modes based on the query:

STRICT MODE — the query names concrete criteria: a city or location,
a company name, specific skills, a minimum years-of-experience
threshold, or similar. In strict mode:
  - A candidate only matches a named city if that city's name appears
    explicitly in the candidate's text. Do not infer location from a
    phone number's area code or from a company's known headquarters.
  - A candidate only matches a named skill if the skill (or a close
    synonym) appears explicitly in the candidate's text.
  - Score relevance from 0.0 to 1.0: 1.0 means every named criterion
    is explicitly satisfied; 0.0 means none are. Partial matches score
    proportionally to the fraction of criteria satisfied.
  - matchesCriteria is true only when the candidate satisfies the
    query's criteria well enough to surface to the caller (relevance
    at or above roughly 0.5 for queries with a single criterion, or
    satisfying a clear majority of criteria for multi-criterion
    queries).

LENIENT MODE — the query is generic ("top candidates", "best
engineers", "who should I interview") with no concrete criteria. In
lenient mode:
  - Mark every candidate as matchesCriteria: true.
  - Score relevance by overall resume quality and apparent seniority,
    ranking stronger candidates higher.

For every candidate, also extract, when evident from the text:
current company, location, a list of skills, a free-text experience
summary, and a short list of key highlights. Omit any field you
cannot support from the text; never fabricate values.

Return exactly this JSON shape and nothing else (no prose before or
after, fenced in a single ` + "```json" + ` block is acceptable):

{
  "matches": [
    {
      "name": "<candidate name exactly as given>",
      "relevanceScore": 0.0,
      "matchesCriteria": true,
      "reasoning": "<one or two sentences>",
      "extractedInfo": {
        "currentCompany": "...",
        "location": "...",
        "skills": ["..."],
        "experience": "...",
        "keyHighlights": ["..."]
      }
    }
  ],
  "summary": "<one sentence summarizing the result set>"
}`

// buildUserMessage formats the verbatim query and the numbered
// candidate list: name, email, phone, and the first
// contentTruncateLen characters of content.
func buildUserMessage(query string, candidates []retrieval.SearchResultItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n\nCandidates:\n", query)

	for i, c := range candidates {
		content := c.Snippet
		if len(content) > contentTruncateLen {
			content = content[:contentTruncateLen] + truncationMarker
		}
		fmt.Fprintf(&sb, "\n%d. Name: %s\n   Email: %s\n   Phone: %s\n   Content: %s\n",
			i+1, c.Name, c.Email, c.Phone, content)
	}

	return sb.String()
}
