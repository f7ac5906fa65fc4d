package outbound

import (
	"context"
	"storybook-generator/domain"
)

type GenerateVideoRequest struct {
	Prompt    string
	SeedImage *domain.GeneratedImage
}

type VideoOperation struct {
	Name string
	Done bool
	// Error carries the provider's error message when the job failed.
	Error string
	URI   string
	// Handle is the provider specific operation value that Poll needs.
	Handle any
}

type VideoGeneratorPort interface {
	Start(ctx context.Context, req GenerateVideoRequest) (*VideoOperation, error)
	Poll(ctx context.Context, op *VideoOperation) (*VideoOperation, error)
	// DownloadURL appends the API credential the provider requires on download links.
	DownloadURL(uri string) (string, error)
}

type VideoDownloaderPort interface {
	Download(ctx context.Context, url string) ([]byte, string, error)
}
