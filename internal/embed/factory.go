package embed

import (
	"context"
	"fmt"
	"strings"
)

// ProviderType represents an embedding provider.
type ProviderType string

const (
	// ProviderOllama uses Ollama's HTTP API for embeddings.
	ProviderOllama ProviderType = "ollama"

	// ProviderStatic uses a deterministic hash-based embedder with no
	// external dependencies, for local development and tests.
	ProviderStatic ProviderType = "static"
)

// NewEmbedder creates an embedder for the given provider.
func NewEmbedder(ctx context.Context, provider ProviderType, model string, host string) (Embedder, error) {
	switch provider {
	case ProviderStatic:
		return NewStaticEmbedder(), nil
	case ProviderOllama:
		cfg := DefaultOllamaConfig()
		if model != "" {
			cfg.Model = model
		}
		if host != "" {
			cfg.Host = host
		}
		embedder, err := NewOllamaEmbedder(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ollama embedder unavailable: %w", err)
		}
		return embedder, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}

// ParseProvider converts a string to a ProviderType, defaulting to Ollama.
func ParseProvider(s string) ProviderType {
	switch strings.ToLower(s) {
	case "static":
		return ProviderStatic
	default:
		return ProviderOllama
	}
}

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	return string(p)
}

// ValidProviders returns all valid provider names.
func ValidProviders() []string {
	return []string{string(ProviderOllama), string(ProviderStatic)}
}

// IsValidProvider checks if a provider name is valid.
func IsValidProvider(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range ValidProviders() {
		if lower == p {
			return true
		}
	}
	return false
}

// EmbedderInfo describes an embedder's runtime configuration.
type EmbedderInfo struct {
	Provider   ProviderType
	Model      string
	Dimensions int
	Available  bool
}

// GetInfo returns information about an embedder.
func GetInfo(ctx context.Context, embedder Embedder) EmbedderInfo {
	info := EmbedderInfo{
		Model:      embedder.ModelName(),
		Dimensions: embedder.Dimensions(),
		Available:  embedder.Available(ctx),
	}

	switch embedder.(type) {
	case *OllamaEmbedder:
		info.Provider = ProviderOllama
	default:
		info.Provider = ProviderStatic
	}

	return info
}
