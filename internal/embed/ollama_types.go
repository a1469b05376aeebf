package embed

import "time"

// Ollama API constants.
const (
	// DefaultOllamaHost is the default Ollama API endpoint.
	DefaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is the recommended embedding model.
	DefaultOllamaModel = "nomic-embed-text"

	// OllamaPoolSize is the default HTTP connection pool size.
	OllamaPoolSize = 4
)

// OllamaConfig configures the Ollama embedder.
type OllamaConfig struct {
	// Host is the Ollama API endpoint (default: http://localhost:11434).
	Host string

	// Model is the embedding model to use.
	Model string

	// Dimensions can be set to override auto-detection (0 = auto-detect).
	Dimensions int

	// BatchSize for batch embedding requests.
	BatchSize int

	// Timeout for a single API request.
	Timeout time.Duration

	// ConnectTimeout bounds the initial health check / model discovery.
	ConnectTimeout time.Duration

	// PoolSize for the HTTP connection pool.
	PoolSize int

	// SkipHealthCheck skips the initial Ollama availability check (for tests).
	SkipHealthCheck bool
}

// DefaultOllamaConfig returns sensible defaults.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		Host:           DefaultOllamaHost,
		Model:          DefaultOllamaModel,
		Dimensions:     0,
		BatchSize:      DefaultBatchSize,
		Timeout:        DefaultTimeout,
		ConnectTimeout: ConnectTimeout,
		PoolSize:       OllamaPoolSize,
	}
}

// OllamaEmbedRequest is the Ollama /api/embed request body.
type OllamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"` // string or []string for batch
}

// OllamaEmbedResponse is the Ollama /api/embed response body.
type OllamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

// OllamaModelListResponse is the Ollama /api/tags response body.
type OllamaModelListResponse struct {
	Models []OllamaModelInfo `json:"models"`
}

// OllamaModelInfo describes an installed model.
type OllamaModelInfo struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
}
