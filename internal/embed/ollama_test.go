package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOllamaServer(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(OllamaModelListResponse{
			Models: []OllamaModelInfo{{Name: "nomic-embed-text:latest"}},
		})
	})
	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		var req OllamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var n int
		switch req.Input.(type) {
		case []any:
			n = len(req.Input.([]any))
		default:
			n = 1
		}

		embeddings := make([][]float64, n)
		for i := range embeddings {
			vec := make([]float64, dims)
			vec[0] = 1.0
			embeddings[i] = vec
		}
		_ = json.NewEncoder(w).Encode(OllamaEmbedResponse{Model: req.Model, Embeddings: embeddings})
	})
	return httptest.NewServer(mux)
}

func TestNewOllamaEmbedder_DiscoversModelAndDimensions(t *testing.T) {
	// Given: a fake Ollama server exposing nomic-embed-text
	srv := newTestOllamaServer(t, 8)
	defer srv.Close()

	cfg := DefaultOllamaConfig()
	cfg.Host = srv.URL
	cfg.Model = "nomic-embed-text"
	cfg.ConnectTimeout = 2 * time.Second

	// When: constructing the embedder
	e, err := NewOllamaEmbedder(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	// Then: it resolves the model and auto-detects dimensions
	assert.Equal(t, "nomic-embed-text:latest", e.ModelName())
	assert.Equal(t, 8, e.Dimensions())
}

func TestNewOllamaEmbedder_MissingModelReturnsError(t *testing.T) {
	srv := newTestOllamaServer(t, 8)
	defer srv.Close()

	cfg := DefaultOllamaConfig()
	cfg.Host = srv.URL
	cfg.Model = "does-not-exist"

	_, err := NewOllamaEmbedder(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOllamaEmbedder_Embed_NormalizesVector(t *testing.T) {
	srv := newTestOllamaServer(t, 4)
	defer srv.Close()

	cfg := DefaultOllamaConfig()
	cfg.Host = srv.URL
	cfg.Model = "nomic-embed-text"
	e, err := NewOllamaEmbedder(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	vec, err := e.Embed(context.Background(), "senior backend engineer")
	require.NoError(t, err)
	require.Len(t, vec, 4)

	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sumSquares, 1e-6)
}

func TestOllamaEmbedder_Embed_EmptyTextSkipsRequest(t *testing.T) {
	srv := newTestOllamaServer(t, 4)
	defer srv.Close()

	cfg := DefaultOllamaConfig()
	cfg.Host = srv.URL
	cfg.Model = "nomic-embed-text"
	e, err := NewOllamaEmbedder(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	vec, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestOllamaEmbedder_EmbedBatch_HandlesMixedEmptyAndNonEmpty(t *testing.T) {
	srv := newTestOllamaServer(t, 4)
	defer srv.Close()

	cfg := DefaultOllamaConfig()
	cfg.Host = srv.URL
	cfg.Model = "nomic-embed-text"
	e, err := NewOllamaEmbedder(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	results, err := e.EmbedBatch(context.Background(), []string{"engineer", "", "designer"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NotZero(t, results[0][0])
	assert.Zero(t, results[1][0])
	assert.NotZero(t, results[2][0])
}

func TestOllamaEmbedder_Close_IsIdempotent(t *testing.T) {
	srv := newTestOllamaServer(t, 4)
	defer srv.Close()

	cfg := DefaultOllamaConfig()
	cfg.Host = srv.URL
	cfg.Model = "nomic-embed-text"
	e, err := NewOllamaEmbedder(context.Background(), cfg)
	require.NoError(t, err)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	_, err = e.Embed(context.Background(), "text")
	assert.Error(t, err)
}
