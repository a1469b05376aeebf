package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// OllamaEmbedder generates embeddings using Ollama's HTTP API.
type OllamaEmbedder struct {
	client    *http.Client
	transport *http.Transport
	config    OllamaConfig
	modelName string
	dims      int

	mu     sync.RWMutex
	closed bool
}

var _ Embedder = (*OllamaEmbedder)(nil)

// NewOllamaEmbedder creates a new Ollama embedder, discovering a usable
// model and its dimensionality unless the caller skips the health check.
func NewOllamaEmbedder(ctx context.Context, cfg OllamaConfig) (*OllamaEmbedder, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = ConnectTimeout
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = OllamaPoolSize
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.PoolSize,
		MaxIdleConnsPerHost: cfg.PoolSize,
		MaxConnsPerHost:     cfg.PoolSize * 2,
		IdleConnTimeout:     10 * time.Second,
	}

	// The client carries no static Timeout; every call derives its
	// deadline from the caller's context so request cancellation works.
	client := &http.Client{Transport: transport}

	e := &OllamaEmbedder{
		client:    client,
		transport: transport,
		config:    cfg,
		modelName: cfg.Model,
		dims:      cfg.Dimensions,
	}

	if !cfg.SkipHealthCheck {
		checkCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()

		modelName, err := e.findAvailableModel(checkCtx)
		if err != nil {
			transport.CloseIdleConnections()
			return nil, fmt.Errorf("failed to connect to Ollama or find model: %w", err)
		}
		e.modelName = modelName

		if cfg.Dimensions == 0 {
			dims, err := e.detectDimensions(checkCtx)
			if err != nil {
				transport.CloseIdleConnections()
				return nil, fmt.Errorf("failed to detect embedding dimensions: %w", err)
			}
			e.dims = dims
		}
	}

	if e.dims == 0 {
		e.dims = DefaultDimensions
	}

	return e, nil
}

// listModels gets available models from Ollama.
func (e *OllamaEmbedder) listModels(ctx context.Context) ([]OllamaModelInfo, error) {
	url := e.config.Host + "/api/tags"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result OllamaModelListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Models, nil
}

// findAvailableModel confirms the configured model is installed.
func (e *OllamaEmbedder) findAvailableModel(ctx context.Context) (string, error) {
	models, err := e.listModels(ctx)
	if err != nil {
		return "", err
	}

	available := make(map[string]string)
	for _, m := range models {
		name := strings.ToLower(m.Name)
		available[name] = m.Name
		base := strings.Split(name, ":")[0]
		if _, exists := available[base]; !exists {
			available[base] = m.Name
		}
	}

	primaryName := strings.ToLower(e.config.Model)
	if actual, ok := available[primaryName]; ok {
		return actual, nil
	}
	primaryBase := strings.Split(primaryName, ":")[0]
	if actual, ok := available[primaryBase]; ok {
		return actual, nil
	}

	return "", fmt.Errorf("embedding model %q not found in Ollama", e.config.Model)
}

// detectDimensions auto-detects embedding dimensions from a test embedding.
func (e *OllamaEmbedder) detectDimensions(ctx context.Context) (int, error) {
	emb, err := e.doEmbed(ctx, []string{"dimension detection"})
	if err != nil {
		return 0, err
	}
	if len(emb) == 0 || len(emb[0]) == 0 {
		return 0, fmt.Errorf("empty embedding returned")
	}
	return len(emb[0]), nil
}

// Embed generates an embedding for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, fmt.Errorf("embedder is closed")
	}
	e.mu.RUnlock()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, e.dims), nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	embeddings, err := e.doEmbed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts using Ollama's batch API.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, fmt.Errorf("embedder is closed")
	}
	e.mu.RUnlock()

	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	type indexedText struct {
		idx  int
		text string
	}
	var nonEmpty []indexedText
	results := make([][]float32, len(texts))

	for i, text := range texts {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			results[i] = make([]float32, e.dims)
		} else {
			nonEmpty = append(nonEmpty, indexedText{i, text})
		}
	}

	if len(nonEmpty) == 0 {
		return results, nil
	}

	for start := 0; start < len(nonEmpty); start += e.config.BatchSize {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		end := start + e.config.BatchSize
		if end > len(nonEmpty) {
			end = len(nonEmpty)
		}

		batch := nonEmpty[start:end]
		batchTexts := make([]string, len(batch))
		for i, it := range batch {
			batchTexts[i] = it.text
		}

		batchCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
		embeddings, err := e.doEmbed(batchCtx, batchTexts)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch: %w", err)
		}

		for i, emb := range embeddings {
			results[batch[i].idx] = emb
		}
	}

	return results, nil
}

// doEmbed performs a single HTTP embedding request.
func (e *OllamaEmbedder) doEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	url := e.config.Host + "/api/embed"

	var input any
	if len(texts) == 1 {
		input = texts[0]
	} else {
		input = texts
	}

	reqBody := OllamaEmbedRequest{
		Model: e.modelName,
		Input: input,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResult OllamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResult); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	embeddings := make([][]float32, len(apiResult.Embeddings))
	for i, emb := range apiResult.Embeddings {
		embedding := make([]float32, len(emb))
		for j, v := range emb {
			embedding[j] = float32(v)
		}
		embeddings[i] = normalizeVector(embedding)
	}

	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dims
}

// ModelName returns the model identifier.
func (e *OllamaEmbedder) ModelName() string {
	return e.modelName
}

// Available checks if Ollama is running and the model is installed.
func (e *OllamaEmbedder) Available(ctx context.Context) bool {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return false
	}
	e.mu.RUnlock()

	models, err := e.listModels(ctx)
	if err != nil {
		return false
	}

	modelLower := strings.ToLower(e.modelName)
	for _, m := range models {
		if strings.EqualFold(m.Name, e.modelName) || strings.Contains(strings.ToLower(m.Name), modelLower) {
			return true
		}
	}
	return false
}

// Close releases resources.
func (e *OllamaEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if e.transport != nil {
		e.transport.CloseIdleConnections()
	}

	return nil
}
