package inbound

import (
	"context"
	"storybook-generator/domain"
)

type VideoParams struct {
	Title string
	Page  domain.StoryPage
}

type VideoCreatorPort interface {
	CreateVideo(ctx context.Context, params VideoParams) (<-chan domain.VideoProgress, <-chan error)
	DownloadVideo(ctx context.Context, uri string) ([]byte, string, error)
	ConfirmAuthorization()
}
