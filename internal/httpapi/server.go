package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/Aman-CERP/resumeretrieval/internal/conversation"
	"github.com/Aman-CERP/resumeretrieval/internal/convfilter"
	"github.com/Aman-CERP/resumeretrieval/internal/pipeline"
)

// ModelInfo names the chat model and provider surfaced in Chat
// responses.
type ModelInfo struct {
	Model    string
	Provider string
}

// Server wires the core's components (Retrieval Pipeline,
// Conversation Store, Conversational Filter) to the JSON/HTTP
// endpoints. No third-party router is used: a handful of JSON routes
// don't warrant one.
type Server struct {
	pipeline *pipeline.Pipeline
	conv     *conversation.Store
	filter   *convfilter.Filter
	model    ModelInfo
	weights  Weights
}

// NewServer creates a Server over its wired collaborators.
func NewServer(p *pipeline.Pipeline, conv *conversation.Store, filter *convfilter.Filter, model ModelInfo, weights Weights) *Server {
	return &Server{pipeline: p, conv: conv, filter: filter, model: model, weights: weights}
}

// Handler returns the configured http.Handler for the service's four
// endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /conversations/{id}", s.handleHistory)
	mux.HandleFunc("DELETE /conversations/{id}", s.handleDelete)
	return mux
}

func logRequest(r *http.Request, trace string) {
	slog.Info("http_request", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.String("trace", trace))
}
