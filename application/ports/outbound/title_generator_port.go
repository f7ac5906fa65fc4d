package outbound

import (
	"context"
	"storybook-generator/domain"
)

type GenerateTitleRequest struct {
	Plot           string
	CharacterImage *domain.UploadedImage
}

type TitleGeneratorPort interface {
	Generate(ctx context.Context, req GenerateTitleRequest) (string, error)
}
