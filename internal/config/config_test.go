package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("REDIS_URL", "")
	t.Setenv("QDRANT_URL", "")
	t.Setenv("EMBEDDING_URL", "")
	t.Setenv("LOG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "redis://127.0.0.1:6379", cfg.RedisURL)
	assert.Equal(t, "http://127.0.0.1:6334", cfg.QdrantURL)
	assert.Equal(t, "http://127.0.0.1:8001/embed", cfg.EmbeddingURL)
	assert.Equal(t, "./requests.log", cfg.LogPath)
	assert.Equal(t, "llm_cache", cfg.VectorCollection)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_URL", "redis://cache:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "redis://cache:6379", cfg.RedisURL)
}
