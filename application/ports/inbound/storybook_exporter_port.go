package inbound

import (
	"context"
	"storybook-generator/domain"
)

type ExportResult struct {
	StoryID string   `json:"story_id"`
	Keys    []string `json:"keys"`
}

type StorybookExporterPort interface {
	CopyAllText() (string, error)
	ExportStorybook(ctx context.Context) (*ExportResult, error)
	PageImage(pageNumber int) (*domain.GeneratedImage, error)
	PageAudioWAV(pageNumber int) ([]byte, error)
}
