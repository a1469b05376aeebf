// Package httpapi implements the JSON/HTTP transport: the Search,
// Chat, History, and Delete endpoints. This package is a thin,
// deliberately stdlib-only surface that wires the core's retrieval
// components to HTTP, using the rest of the codebase's logging and
// error conventions.
package httpapi

import "github.com/Aman-CERP/resumeretrieval/internal/retrieval"

// SearchRequest is the Search endpoint's request body.
type SearchRequest struct {
	Query      string `json:"query"`
	SearchType string `json:"searchType"`
	TopK       int    `json:"topK"`
}

// SearchResultDTO is the wire shape of a retrieval.SearchResultItem.
type SearchResultDTO struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Phone         string            `json:"phone"`
	Content       string            `json:"content"`
	Score         float64           `json:"score"`
	MatchType     string            `json:"matchType"`
	ExtractedInfo *ExtractedInfoDTO `json:"extractedInfo,omitempty"`
	LLMReasoning  string            `json:"llmReasoning,omitempty"`
}

// ExtractedInfoDTO is the wire shape of a retrieval.ExtractedInfo.
type ExtractedInfoDTO struct {
	CurrentCompany string   `json:"currentCompany,omitempty"`
	Location       string   `json:"location,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Experience     string   `json:"experience,omitempty"`
	KeyHighlights  []string `json:"keyHighlights,omitempty"`
}

// SearchMetadata is the Search endpoint's response metadata.
type SearchMetadata struct {
	TraceID       string   `json:"traceId"`
	HybridWeights *Weights `json:"hybridWeights,omitempty"`
}

// Weights mirrors retrieval.HybridConfig for the wire.
type Weights struct {
	Vector  float64 `json:"vector"`
	Keyword float64 `json:"keyword"`
}

// SearchResponse is the Search endpoint's response body.
type SearchResponse struct {
	Query       string            `json:"query"`
	SearchType  string            `json:"searchType"`
	TopK        int               `json:"topK"`
	ResultCount int               `json:"resultCount"`
	DurationMs  int64             `json:"duration_ms"`
	Results     []SearchResultDTO `json:"results"`
	Metadata    SearchMetadata    `json:"metadata"`
}

// ChatRequest is the Chat endpoint's request body. IncludeHistory is
// accepted for wire compatibility; conversation history is always
// appended to memory, and this transport layer has no separate
// history-augmented prompt path to gate.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	IncludeHistory *bool  `json:"includeHistory"`
	TopK           int    `json:"topK"`
}

// ChatSearchMetadata is the Chat endpoint's nested search metadata.
type ChatSearchMetadata struct {
	Query       string `json:"query"`
	SearchType  string `json:"searchType"`
	ResultCount int    `json:"resultCount"`
	DurationMs  int64  `json:"duration_ms"`
}

// ChatResponse is the Chat endpoint's response body.
type ChatResponse struct {
	Response       string             `json:"response"`
	ConversationID string             `json:"conversationId"`
	MessageCount   int                `json:"messageCount"`
	Model          string             `json:"model"`
	Provider       string             `json:"provider"`
	SearchResults  []SearchResultDTO  `json:"searchResults"`
	SearchMetadata ChatSearchMetadata `json:"searchMetadata"`
}

// HistoryMessageDTO is one message in the History endpoint's response.
type HistoryMessageDTO struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// HistoryResponse is the History endpoint's response body.
type HistoryResponse struct {
	ConversationID string              `json:"conversationId"`
	Messages       []HistoryMessageDTO `json:"messages"`
	MessageCount   int                 `json:"messageCount"`
}

// toResultDTO converts a core SearchResultItem to its wire shape.
func toResultDTO(item retrieval.SearchResultItem) SearchResultDTO {
	dto := SearchResultDTO{
		ID:           item.ID,
		Name:         item.Name,
		Email:        item.Email,
		Phone:        item.Phone,
		Content:      item.Snippet,
		Score:        item.Score,
		MatchType:    string(item.MatchType),
		LLMReasoning: item.LLMReasoning,
	}
	if item.ExtractedInfo != nil {
		dto.ExtractedInfo = &ExtractedInfoDTO{
			CurrentCompany: item.ExtractedInfo.CurrentCompany,
			Location:       item.ExtractedInfo.Location,
			Skills:         item.ExtractedInfo.Skills,
			Experience:     item.ExtractedInfo.Experience,
			KeyHighlights:  item.ExtractedInfo.KeyHighlights,
		}
	}
	return dto
}

func toResultDTOs(items []retrieval.SearchResultItem) []SearchResultDTO {
	out := make([]SearchResultDTO, len(items))
	for i, item := range items {
		out[i] = toResultDTO(item)
	}
	return out
}
