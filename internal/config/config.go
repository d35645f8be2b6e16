// Package config loads the proxy's fixed environment-variable configuration.
package config

import (
	"fmt"
	"os"
	"time"
)

// UpstreamBaseURL is Groq's OpenAI-compatible completions endpoint. There
// is no environment override for it — only the API key is configurable,
// matching the spec's fixed-provider deployment.
const UpstreamBaseURL = "https://api.groq.com/openai/v1"

// Config holds the process-wide settings read once at startup.
type Config struct {
	Port             string
	GroqAPIKey       string
	RedisURL         string
	QdrantURL        string
	EmbeddingURL     string
	LogPath          string
	LogFormat        string
	VectorCollection string
	ShutdownTimeout  time.Duration
}

// Load reads the environment and returns a validated Config.
//
// GROQ_API_KEY is the only required variable; its absence is a ConfigError
// and the caller is expected to abort the process.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "3000"),
		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		RedisURL:         getEnv("REDIS_URL", "redis://127.0.0.1:6379"),
		QdrantURL:        getEnv("QDRANT_URL", "http://127.0.0.1:6334"),
		EmbeddingURL:     getEnv("EMBEDDING_URL", "http://127.0.0.1:8001/embed"),
		LogPath:          getEnv("LOG_PATH", "./requests.log"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		VectorCollection: getEnv("VECTOR_COLLECTION", "llm_cache"),
		ShutdownTimeout:  10 * time.Second,
	}

	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
