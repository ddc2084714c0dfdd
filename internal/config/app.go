package config

import (
	"log"
	"os"
	"strconv"
	"sync"
)

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	BaseURL  string
	LogJSON  bool
	LogDebug bool
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		port := os.Getenv("APP_PORT")
		if port == "" {
			port = ":8080"
		}
		appConfig = &AppConfig{
			Name:     os.Getenv("APP_NAME"),
			Env:      env,
			Port:     port,
			BaseURL:  os.Getenv("APP_URL"),
			LogJSON:  envBool("LOG_JSON", env == "production"),
			LogDebug: envBool("LOG_DEBUG", false),
		}
	})
	return appConfig
}

func envBool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: %s=%q is not a boolean, using %v", key, raw, def)
		return def
	}
	return v
}
