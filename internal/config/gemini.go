package config

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// GeminiConfig drives both the Gemini summarizer and criteria embeddings.
// EmbeddingDimensions must match the vector column of model.JobCriteria.
type GeminiConfig struct {
	APIKey              string
	Model               string
	EmbeddingModel      string
	EmbeddingDimensions int32
	RequestTimeout      time.Duration
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		geminiConfig = &GeminiConfig{
			APIKey:              os.Getenv("GEMINI_API_KEY"),
			Model:               envDefault("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbeddingModel:      envDefault("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001"),
			EmbeddingDimensions: int32(envInt("GEMINI_EMBEDDING_DIMENSIONS", 3072)),
			RequestTimeout:      envDuration("GEMINI_TIMEOUT", 90*time.Second),
		}
	})
	return geminiConfig
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
