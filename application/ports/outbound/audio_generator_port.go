package outbound

import (
	"context"
	"storybook-generator/domain"
)

type GenerateAudioRequest struct {
	Text  string
	Voice domain.Voice
}

// AudioGeneratorPort returns base64 encoded 16-bit mono PCM at 24 kHz.
type AudioGeneratorPort interface {
	Generate(ctx context.Context, req GenerateAudioRequest) (string, error)
}
