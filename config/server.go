package config

import (
	"fmt"
	"strings"
)

type ServerConfig struct {
	Port           string
	WorkerPoolSize int
	LogLevel       string
	Locale         string
	MockProvider   bool
	// MockStoryFile replaces the embedded canned story when set.
	MockStoryFile string
}

func GetServerConfig() (*ServerConfig, error) {
	poolSize, err := getIntEnv("WORKER_POOL_SIZE", 32)
	if err != nil {
		return nil, err
	}
	if poolSize < 1 {
		return nil, fmt.Errorf("WORKER_POOL_SIZE must be positive")
	}

	mockProvider, err := getBoolEnv("MOCK_PROVIDER", false)
	if err != nil {
		return nil, err
	}

	return &ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		WorkerPoolSize: poolSize,
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		Locale:         strings.ToLower(getEnvOrDefault("APP_LOCALE", "en")),
		MockProvider:   mockProvider,
		MockStoryFile:  getEnvOrDefault("MOCK_STORY_FILE", ""),
	}, nil
}
