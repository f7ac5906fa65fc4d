package outbound

import (
	"context"
	"storybook-generator/domain"
)

type GenerateImageRequest struct {
	Prompt         string
	CharacterImage *domain.UploadedImage
}

type ImageGeneratorPort interface {
	Generate(ctx context.Context, req GenerateImageRequest) (*domain.GeneratedImage, error)
}
