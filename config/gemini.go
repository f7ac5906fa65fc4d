package config

import (
	"fmt"
	"os"
	"storybook-generator/domain"
	"time"
)

type GeminiConfig struct {
	ApiKey       string
	TextModel    string
	ImageModel   string
	TTSModel     string
	VideoModel   string
	RateInterval time.Duration
}

func GetGeminiConfig() (*GeminiConfig, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY must be set", domain.ErrMissingConfiguration)
	}

	rateInterval, err := getDurationEnv("GEMINI_RATE_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	return &GeminiConfig{
		ApiKey:       apiKey,
		TextModel:    getEnvOrDefault("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		ImageModel:   getEnvOrDefault("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		TTSModel:     getEnvOrDefault("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		VideoModel:   getEnvOrDefault("GEMINI_VIDEO_MODEL", "veo-2.0-generate-001"),
		RateInterval: rateInterval,
	}, nil
}
