package inbound

import (
	"context"
	"storybook-generator/domain"
)

type PageRegeneratorPort interface {
	RegenerateImage(ctx context.Context, pageNumber int) (domain.StoryPage, error)
	RegenerateAudio(ctx context.Context, pageNumber int, voice domain.Voice) (domain.StoryPage, error)
	NarrateCover(ctx context.Context, voice domain.Voice) error
}
