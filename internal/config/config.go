// Package config loads process-level configuration for the resume
// retrieval service from defaults, an optional YAML file, and
// RESUMESEARCH_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete process configuration.
type Config struct {
	Store        StoreConfig        `yaml:"store" json:"store"`
	Embeddings   EmbeddingsConfig   `yaml:"embeddings" json:"embeddings"`
	ChatModel    ChatModelConfig    `yaml:"chat_model" json:"chat_model"`
	Search       SearchConfig       `yaml:"search" json:"search"`
	Rerank       RerankConfig       `yaml:"rerank" json:"rerank"`
	Conversation ConversationConfig `yaml:"conversation" json:"conversation"`
	Server       ServerConfig       `yaml:"server" json:"server"`
}

// StoreConfig configures the document store adapter's backing indices.
type StoreConfig struct {
	// URI identifies the external document collection (opaque to the
	// core; interpreted by the store adapter's concrete backend).
	URI        string `yaml:"uri" json:"uri"`
	Database   string `yaml:"database" json:"database"`
	Collection string `yaml:"collection" json:"collection"`
	VectorIndex string `yaml:"vector_index" json:"vector_index"`
}

// EmbeddingsConfig configures the embedding client (component B).
type EmbeddingsConfig struct {
	Model      string `yaml:"model" json:"model"`
	Dimensions int    `yaml:"dimensions" json:"dimensions"`
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`
}

// ChatModelConfig configures the chat model client (component C).
type ChatModelConfig struct {
	Provider   string `yaml:"provider" json:"provider"`
	Model      string `yaml:"model" json:"model"`
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`
}

// SearchConfig configures the hybrid score-fusion weights.
type SearchConfig struct {
	// VectorWeight is the weight given to normalized vector scores.
	VectorWeight float64 `yaml:"vector_weight" json:"vector_weight"`
	// KeywordWeight is the weight given to normalized keyword scores.
	KeywordWeight float64 `yaml:"keyword_weight" json:"keyword_weight"`
}

// RerankConfig configures the LLM re-rank/filter stage.
type RerankConfig struct {
	Enabled      bool `yaml:"enabled" json:"enabled"`
	RetrievalTopK int  `yaml:"retrieval_top_k" json:"retrieval_top_k"`
}

// ConversationConfig configures the conversation store (component I).
type ConversationConfig struct {
	// MaxHistory bounds the per-conversation message history.
	MaxHistory int `yaml:"max_history" json:"max_history"`
	// MaxConversations bounds the number of live conversations kept
	// in-process before the oldest is evicted (LRU).
	MaxConversations int `yaml:"max_conversations" json:"max_conversations"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultEmbeddingDimensions is the process-wide embedding dimension.
const DefaultEmbeddingDimensions = 1024

// NewConfig returns a Config populated with the service's default values.
func NewConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Database:    "resumes",
			Collection:  "candidates",
			VectorIndex: "candidates_vector",
		},
		Embeddings: EmbeddingsConfig{
			Model:      "nomic-embed-text",
			Dimensions: DefaultEmbeddingDimensions,
			OllamaHost: "http://localhost:11434",
		},
		ChatModel: ChatModelConfig{
			Provider:   "ollama",
			Model:      "llama3.1:8b",
			OllamaHost: "http://localhost:11434",
		},
		Search: SearchConfig{
			VectorWeight:  0.7,
			KeywordWeight: 0.3,
		},
		Rerank: RerankConfig{
			Enabled:       true,
			RetrievalTopK: 10,
		},
		Conversation: ConversationConfig{
			MaxHistory:       10,
			MaxConversations: 500,
		},
		Server: ServerConfig{
			Addr:     ":8080",
			LogLevel: "info",
		},
	}
}

// Load builds configuration in order of increasing precedence:
//  1. Hardcoded defaults (NewConfig)
//  2. YAML file at path, if non-empty and present
//  3. RESUMESEARCH_* environment variables
//
// Soft invariants (e.g. the hybrid weights summing to roughly 1.0) are
// logged, not rejected.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.checkSoftInvariants()

	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var parsed Config
	// Seed the one bool whose zero value is meaningful, so a file that
	// omits rerank.enabled keeps the current setting.
	parsed.Rerank.Enabled = c.Rerank.Enabled
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays non-zero fields from other onto c. Rerank.Enabled
// is always copied; loadYAML seeds it with c's value before decoding.
func (c *Config) mergeWith(other *Config) {
	if other.Store.URI != "" {
		c.Store.URI = other.Store.URI
	}
	if other.Store.Database != "" {
		c.Store.Database = other.Store.Database
	}
	if other.Store.Collection != "" {
		c.Store.Collection = other.Store.Collection
	}
	if other.Store.VectorIndex != "" {
		c.Store.VectorIndex = other.Store.VectorIndex
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}
	if other.ChatModel.Provider != "" {
		c.ChatModel.Provider = other.ChatModel.Provider
	}
	if other.ChatModel.Model != "" {
		c.ChatModel.Model = other.ChatModel.Model
	}
	if other.ChatModel.OllamaHost != "" {
		c.ChatModel.OllamaHost = other.ChatModel.OllamaHost
	}
	if other.Search.VectorWeight != 0 {
		c.Search.VectorWeight = other.Search.VectorWeight
	}
	if other.Search.KeywordWeight != 0 {
		c.Search.KeywordWeight = other.Search.KeywordWeight
	}
	if other.Rerank.RetrievalTopK != 0 {
		c.Rerank.RetrievalTopK = other.Rerank.RetrievalTopK
	}
	c.Rerank.Enabled = other.Rerank.Enabled
	if other.Conversation.MaxHistory != 0 {
		c.Conversation.MaxHistory = other.Conversation.MaxHistory
	}
	if other.Conversation.MaxConversations != 0 {
		c.Conversation.MaxConversations = other.Conversation.MaxConversations
	}
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies RESUMESEARCH_* environment variable overrides,
// the highest-precedence configuration layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("RESUMESEARCH_STORE_URI"); v != "" {
		c.Store.URI = v
	}
	if v := os.Getenv("RESUMESEARCH_STORE_DATABASE"); v != "" {
		c.Store.Database = v
	}
	if v := os.Getenv("RESUMESEARCH_STORE_COLLECTION"); v != "" {
		c.Store.Collection = v
	}
	if v := os.Getenv("RESUMESEARCH_VECTOR_INDEX"); v != "" {
		c.Store.VectorIndex = v
	}
	if v := os.Getenv("RESUMESEARCH_EMBEDDING_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("RESUMESEARCH_EMBEDDING_DIMENSIONS"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 {
			c.Embeddings.Dimensions = d
		}
	}
	if v := os.Getenv("RESUMESEARCH_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
		c.ChatModel.OllamaHost = v
	}
	if v := os.Getenv("RESUMESEARCH_CHAT_PROVIDER"); v != "" {
		c.ChatModel.Provider = v
	}
	if v := os.Getenv("RESUMESEARCH_CHAT_MODEL"); v != "" {
		c.ChatModel.Model = v
	}
	if v := os.Getenv("RESUMESEARCH_VECTOR_WEIGHT"); v != "" {
		if w, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.VectorWeight = w
		}
	}
	if v := os.Getenv("RESUMESEARCH_KEYWORD_WEIGHT"); v != "" {
		if w, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.KeywordWeight = w
		}
	}
	if v := os.Getenv("RESUMESEARCH_RERANK_ENABLED"); v != "" {
		c.Rerank.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("RESUMESEARCH_RERANK_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Rerank.RetrievalTopK = k
		}
	}
	if v := os.Getenv("RESUMESEARCH_MAX_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Conversation.MaxHistory = n
		}
	}
	if v := os.Getenv("RESUMESEARCH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("RESUMESEARCH_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// checkSoftInvariants logs, but does not reject, configuration that
// violates soft invariants.
func (c *Config) checkSoftInvariants() {
	sum := c.Search.VectorWeight + c.Search.KeywordWeight
	if math.Abs(sum-1.0) > 0.01 {
		slog.Warn("hybrid_weights_not_normalized",
			slog.Float64("vector_weight", c.Search.VectorWeight),
			slog.Float64("keyword_weight", c.Search.KeywordWeight),
			slog.Float64("sum", sum))
	}
}

// GetUserConfigPath returns the path to the user/global configuration
// file, following the XDG Base Directory convention.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "resumeretrieval", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "resumeretrieval", "config.yaml")
	}
	return filepath.Join(home, ".config", "resumeretrieval", "config.yaml")
}
