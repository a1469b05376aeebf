package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	coreerrors "github.com/Aman-CERP/resumeretrieval/internal/errors"
	"github.com/Aman-CERP/resumeretrieval/internal/pipeline"
	"github.com/Aman-CERP/resumeretrieval/internal/retrieval"
)

// handleSearch serves the Search endpoint.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	trace := generateID()
	logRequest(r, trace)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, coreerrors.InputError("malformed request body", err))
		return
	}
	if req.Query == "" {
		writeError(w, coreerrors.New(coreerrors.ErrCodeQueryEmpty, "query must not be empty", nil))
		return
	}
	if req.TopK <= 0 {
		req.TopK = 3
	}

	searchType := pipeline.SearchType(req.SearchType)
	switch searchType {
	case pipeline.SearchKeyword, pipeline.SearchVector, pipeline.SearchHybrid:
	default:
		writeError(w, coreerrors.InputError("searchType must be one of keyword, vector, hybrid", nil))
		return
	}

	if ready, err := s.pipeline.Ready(); !ready {
		writeError(w, coreerrors.PipelineNotReadyError(err.Error()))
		return
	}

	start := time.Now()
	result, err := s.pipeline.Search(r.Context(), req.Query, searchType, req.TopK, trace)
	duration := time.Since(start)
	if err != nil {
		writeError(w, translatePipelineError(err))
		return
	}

	meta := SearchMetadata{TraceID: trace}
	if searchType == pipeline.SearchHybrid {
		meta.HybridWeights = &s.weights
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Query:       req.Query,
		SearchType:  req.SearchType,
		TopK:        req.TopK,
		ResultCount: len(result.Items),
		DurationMs:  duration.Milliseconds(),
		Results:     toResultDTOs(result.Items),
		Metadata:    meta,
	})
}

// handleChat serves the Chat endpoint: it selects between the
// conversational filter and the full retrieval pipeline depending on
// whether the conversation already has cached results to narrow.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	trace := generateID()
	logRequest(r, trace)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, coreerrors.InputError("malformed request body", err))
		return
	}
	if req.Message == "" {
		writeError(w, coreerrors.New(coreerrors.ErrCodeQueryEmpty, "message must not be empty", nil))
		return
	}
	if req.TopK <= 0 {
		req.TopK = 10
	}

	isNewConversation := req.ConversationID == ""
	if isNewConversation {
		req.ConversationID = generateID()
	}
	mem := s.conv.GetOrCreate(req.ConversationID)

	var (
		items      []retrieval.SearchResultItem
		summary    string
		searchType string
		start      = time.Now()
	)

	useFilter := !isNewConversation && mem.HasResults()
	if useFilter {
		cached, _ := mem.GetLastResults()
		filtered, filterSummary, err := s.filter.Apply(r.Context(), req.Message, cached, trace)
		if err != nil {
			writeError(w, translatePipelineError(err))
			return
		}
		items = filtered
		summary = filterSummary
		searchType = "filter"
	} else {
		if ready, err := s.pipeline.Ready(); !ready {
			writeError(w, coreerrors.PipelineNotReadyError(err.Error()))
			return
		}
		result, err := s.pipeline.Search(r.Context(), req.Message, pipeline.SearchHybrid, req.TopK, trace)
		if err != nil {
			writeError(w, translatePipelineError(err))
			return
		}
		items = result.Items
		searchType = "hybrid"
		if result.Analysis != nil {
			summary = result.Analysis.Summary
		}
		mem.SetLastResults(result.Items)
	}

	duration := time.Since(start)
	responseText := summary
	if responseText == "" {
		responseText = defaultResponseText(len(items), req.Message)
	}

	mem.AddExchange(req.Message, responseText)

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:       responseText,
		ConversationID: req.ConversationID,
		MessageCount:   len(mem.Messages()),
		Model:          s.model.Model,
		Provider:       s.model.Provider,
		SearchResults:  toResultDTOs(items),
		SearchMetadata: ChatSearchMetadata{
			Query:       req.Message,
			SearchType:  searchType,
			ResultCount: len(items),
			DurationMs:  duration.Milliseconds(),
		},
	})
}

// handleHistory serves the History endpoint.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	mem, ok := s.conv.Get(id)
	if !ok {
		writeError(w, coreerrors.UnknownConversationError(id))
		return
	}

	msgs := mem.Messages()
	dtos := make([]HistoryMessageDTO, len(msgs))
	for i, m := range msgs {
		dtos[i] = HistoryMessageDTO{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339),
		}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		ConversationID: id,
		Messages:       dtos,
		MessageCount:   len(dtos),
	})
}

// handleDelete serves the Delete endpoint.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.conv.Delete(id) {
		writeError(w, coreerrors.UnknownConversationError(id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func defaultResponseText(resultCount int, query string) string {
	if resultCount == 0 {
		return "No matching candidates found for \"" + query + "\"."
	}
	return "Found matching candidates for \"" + query + "\"."
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	body, marshalErr := coreerrors.FormatJSON(err)
	if marshalErr != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// statusForError maps a ServiceError's category to an HTTP status.
func statusForError(err error) int {
	switch coreerrors.GetCategory(err) {
	case coreerrors.CategoryInput:
		return http.StatusBadRequest
	case coreerrors.CategoryTransport:
		return http.StatusBadGateway
	case coreerrors.CategorySemantic:
		return http.StatusUnprocessableEntity
	case coreerrors.CategoryPipeline:
		return http.StatusServiceUnavailable
	case coreerrors.CategoryConversation:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// translatePipelineError wraps a pipeline/engine error as a
// ServiceError so statusForError can route it, preserving a pipeline
// not-ready error's own category rather than flattening everything to
// transport.
func translatePipelineError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*coreerrors.ServiceError); ok {
		return err
	}
	var notReady pipeline.ErrPipelineNotReady
	if errors.As(err, &notReady) {
		return coreerrors.PipelineNotReadyError(err.Error())
	}
	return coreerrors.TransportError("retrieval failed", err)
}
