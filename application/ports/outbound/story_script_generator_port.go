package outbound

import (
	"context"
	"storybook-generator/domain"
)

type GenerateStoryScriptRequest struct {
	Title          string
	Plot           string
	NumPages       int
	CharacterImage *domain.UploadedImage
}

// StoryScriptGeneratorPort returns one script per page, in page order.
type StoryScriptGeneratorPort interface {
	Generate(ctx context.Context, req GenerateStoryScriptRequest) ([]domain.PageScript, error)
}
