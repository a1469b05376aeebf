package chatmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OllamaConfig configures an OllamaClient.
type OllamaConfig struct {
	Host           string
	Model          string
	Timeout        time.Duration
	ConnectTimeout time.Duration

	// SkipHealthCheck skips the startup model-availability probe;
	// used in tests against a client that never calls a real server.
	SkipHealthCheck bool
}

// OllamaClient completes chat messages against Ollama's /api/chat.
type OllamaClient struct {
	client *http.Client
	host   string
	model  string
	config OllamaConfig
}

var _ Client = (*OllamaClient)(nil)

// NewOllamaClient creates an OllamaClient, optionally confirming the
// configured model is installed before returning.
func NewOllamaClient(ctx context.Context, cfg OllamaConfig) (*OllamaClient, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = ConnectTimeout
	}

	c := &OllamaClient{
		client: &http.Client{},
		host:   cfg.Host,
		model:  cfg.Model,
		config: cfg,
	}

	if !cfg.SkipHealthCheck {
		checkCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		if err := c.checkModelAvailable(checkCtx); err != nil {
			return nil, fmt.Errorf("failed to connect to Ollama or find chat model: %w", err)
		}
	}

	return c, nil
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (c *OllamaClient) checkModelAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	for _, m := range result.Models {
		if m.Name == c.model {
			return nil
		}
	}
	return fmt.Errorf("chat model %q not found in Ollama", c.model)
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string               `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Complete sends messages to Ollama's /api/chat and returns the
// assistant's text content. There is no retry: a transport or
// non-2xx-status failure is returned verbatim to the caller.
func (c *OllamaClient) Complete(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	payload := make([]ollamaChatMessage, len(messages))
	for i, m := range messages {
		payload[i] = ollamaChatMessage{Role: string(m.Role), Content: m.Content}
	}

	body, err := json.Marshal(ollamaChatRequest{Model: c.model, Messages: payload, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat completion failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	return result.Message.Content, nil
}
