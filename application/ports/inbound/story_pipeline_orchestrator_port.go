package inbound

import (
	"context"
	"storybook-generator/domain"
)

type StartPipelineParams struct {
	Mode           domain.GenerationMode
	Prompt         string
	NumPages       int
	CharacterImage *domain.UploadedImage
	Voice          domain.Voice
}

type StoryPipelineOrchestrator interface {
	StartPipeline(ctx context.Context, request StartPipelineParams) (<-chan domain.PipelineEvent, <-chan error)
}
