package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Aman-CERP/resumeretrieval/internal/chatmodel"
	"github.com/Aman-CERP/resumeretrieval/internal/conversation"
	"github.com/Aman-CERP/resumeretrieval/internal/convfilter"
	"github.com/Aman-CERP/resumeretrieval/internal/pipeline"
	"github.com/Aman-CERP/resumeretrieval/internal/retrieval"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	items []retrieval.SearchResultItem
}

func (s *stubEngine) Search(ctx context.Context, query string, k int, trace string) ([]retrieval.SearchResultItem, error) {
	if k < len(s.items) {
		return s.items[:k], nil
	}
	return s.items, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	hybrid := &stubEngine{items: []retrieval.SearchResultItem{
		{Name: "Alice", Email: "alice@x.com", Score: 0.9, MatchType: retrieval.MatchHybrid},
		{Name: "Bob", Email: "bob@x.com", Score: 0.5, MatchType: retrieval.MatchHybrid},
	}}
	p := pipeline.New(pipeline.Engines{Keyword: &stubEngine{}, Vector: &stubEngine{}, Hybrid: hybrid}, nil, pipeline.RerankConfig{Enabled: false})

	convStore, err := conversation.NewStore(10, 10)
	require.NoError(t, err)

	filterStub := chatmodel.NewStubClient(chatmodel.StubResponse{
		Content: `{"filteredResults":[{"name":"Alice","matches":true,"reasoning":"ok"}],"summary":"1 match"}`,
	})
	filter := convfilter.New(filterStub)

	return NewServer(p, convStore, filter, ModelInfo{Model: "llama3.1:8b", Provider: "ollama"}, Weights{Vector: 0.7, Keyword: 0.3})
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleSearch_Hybrid(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodPost, "/search", SearchRequest{Query: "Go engineer", SearchType: "hybrid", TopK: 2})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.ResultCount)
	require.NotNil(t, resp.Metadata.HybridWeights)
	require.Equal(t, 0.7, resp.Metadata.HybridWeights.Vector)
	require.NotEmpty(t, resp.Metadata.TraceID)
}

func TestHandleSearch_EmptyQueryRejected(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodPost, "/search", SearchRequest{Query: "", SearchType: "hybrid"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSearch_InvalidSearchTypeRejected(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodPost, "/search", SearchRequest{Query: "q", SearchType: "bogus"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// A new conversation runs retrieval and caches results; a follow-up
// with filter intent uses the filter path without re-querying the
// store (scenario 6, §8).
func TestHandleChat_NewThenFilterFollowUp(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec1 := doRequest(t, h, http.MethodPost, "/chat", ChatRequest{Message: "Find QA engineers"})
	require.Equal(t, http.StatusOK, rec1.Code)

	var resp1 ChatResponse
	require.NoError(t, json.Unmarshal(rec1.Body.Bytes(), &resp1))
	require.Equal(t, "hybrid", resp1.SearchMetadata.SearchType)
	require.NotEmpty(t, resp1.ConversationID)
	require.Len(t, resp1.SearchResults, 2)

	rec2 := doRequest(t, h, http.MethodPost, "/chat", ChatRequest{
		Message:        "only those in Bengaluru",
		ConversationID: resp1.ConversationID,
	})
	require.Equal(t, http.StatusOK, rec2.Code)

	var resp2 ChatResponse
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &resp2))
	require.Equal(t, "filter", resp2.SearchMetadata.SearchType)
	require.Len(t, resp2.SearchResults, 1)
	require.Equal(t, "Alice", resp2.SearchResults[0].Name)
	require.Equal(t, resp1.ConversationID, resp2.ConversationID)
}

func TestHandleHistory_UnknownConversation(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodGet, "/conversations/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHistory_AfterChat(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	chatRec := doRequest(t, h, http.MethodPost, "/chat", ChatRequest{Message: "Find QA engineers"})
	var chatResp ChatResponse
	require.NoError(t, json.Unmarshal(chatRec.Body.Bytes(), &chatResp))

	rec := doRequest(t, h, http.MethodGet, "/conversations/"+chatResp.ConversationID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.MessageCount)
	require.Equal(t, "user", resp.Messages[0].Role)
	require.Equal(t, "assistant", resp.Messages[1].Role)
}

func TestHandleDelete(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	chatRec := doRequest(t, h, http.MethodPost, "/chat", ChatRequest{Message: "Find QA engineers"})
	var chatResp ChatResponse
	require.NoError(t, json.Unmarshal(chatRec.Body.Bytes(), &chatResp))

	delRec := doRequest(t, h, http.MethodDelete, "/conversations/"+chatResp.ConversationID, nil)
	require.Equal(t, http.StatusNoContent, delRec.Code)

	getRec := doRequest(t, h, http.MethodGet, "/conversations/"+chatResp.ConversationID, nil)
	require.Equal(t, http.StatusNotFound, getRec.Code)

	delAgainRec := doRequest(t, h, http.MethodDelete, "/conversations/"+chatResp.ConversationID, nil)
	require.Equal(t, http.StatusNotFound, delAgainRec.Code)
}
