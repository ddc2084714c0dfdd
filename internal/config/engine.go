package config

import (
	"log"
	"os"
	"sync"
	"time"
)

const (
	defaultEngineBaseURL = "http://localhost:8000/api/v1"
	defaultRevisionID    = "5ccc4a42-1e24-4b82-a550-e7e9c6ffa48b"
	defaultFeedbackUser  = "cv_batch_user"
)

// EngineConfig holds the evaluation engine address and credentials.
type EngineConfig struct {
	BaseURL      string
	Username     string
	Password     string
	RevisionID   string
	FeedbackUser string
	Timeout      time.Duration
}

var (
	engineConfig *EngineConfig
	engineOnce   sync.Once
)

func LoadEngineConfig() *EngineConfig {
	engineOnce.Do(func() {
		engineConfig = &EngineConfig{
			BaseURL:      envDefault("ENGINE_BASE_URL", defaultEngineBaseURL),
			Username:     os.Getenv("ENGINE_USERNAME"),
			Password:     os.Getenv("ENGINE_PASSWORD"),
			RevisionID:   envDefault("REVISION_ID", defaultRevisionID),
			FeedbackUser: envDefault("ENGINE_FEEDBACK_USER", defaultFeedbackUser),
			Timeout:      envDuration("ENGINE_TIMEOUT", 2*time.Minute),
		}
	})
	return engineConfig
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		log.Printf("Warning: %s=%q is not a valid duration, using %s", key, raw, def)
		return def
	}
	return d
}
