package outbound

import (
	"context"
	"io"
)

type PutObjectRequest struct {
	Key         string
	ContentType string
	Body        io.ReadSeeker
}

type StoryExportPort interface {
	Put(ctx context.Context, req PutObjectRequest) (string, error)
}
