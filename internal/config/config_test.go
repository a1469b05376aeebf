package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, 0.7, cfg.Search.VectorWeight)
	assert.Equal(t, 0.3, cfg.Search.KeywordWeight)
	assert.Equal(t, DefaultEmbeddingDimensions, cfg.Embeddings.Dimensions)
	assert.True(t, cfg.Rerank.Enabled)
	assert.Equal(t, 10, cfg.Rerank.RetrievalTopK)
	assert.Equal(t, 10, cfg.Conversation.MaxHistory)
}

func TestConfig_SearchWeightsSumToOne(t *testing.T) {
	cfg := NewConfig()
	sum := cfg.Search.VectorWeight + cfg.Search.KeywordWeight
	assert.InDelta(t, 1.0, sum, 0.01)
}

func TestLoad_NoFile_ReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.Search.VectorWeight)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "search:\n  vector_weight: 0.5\n  keyword_weight: 0.5\nrerank:\n  enabled: false\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Search.VectorWeight)
	assert.Equal(t, 0.5, cfg.Search.KeywordWeight)
	assert.False(t, cfg.Rerank.Enabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("RESUMESEARCH_VECTOR_WEIGHT", "0.9")
	t.Setenv("RESUMESEARCH_KEYWORD_WEIGHT", "0.1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Search.VectorWeight)
	assert.Equal(t, 0.1, cfg.Search.KeywordWeight)
}

func TestLoad_MissingFile_IsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NotNil(t, cfg)
}

func TestCheckSoftInvariants_DoesNotFailOnImbalance(t *testing.T) {
	cfg := NewConfig()
	cfg.Search.VectorWeight = 0.9
	cfg.Search.KeywordWeight = 0.9
	// Should only log a warning, never panic or return an error.
	cfg.checkSoftInvariants()
}

func TestGetUserConfigPath_RespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdgtest")
	assert.Equal(t, "/tmp/xdgtest/resumeretrieval/config.yaml", GetUserConfigPath())
}
