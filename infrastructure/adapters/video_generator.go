package adapters

import (
	"context"
	"fmt"
	"google.golang.org/genai"
	"net/url"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/config"
	"storybook-generator/domain"
)

type videoGenerator struct {
	videos GeminiVideos
	apiKey string
	model  string
	logger outbound.LoggerPort
}

func NewVideoGenerator(videos GeminiVideos, geminiConfig *config.GeminiConfig, logger outbound.LoggerPort) outbound.VideoGeneratorPort {
	return &videoGenerator{
		videos: videos,
		apiKey: geminiConfig.ApiKey,
		model:  geminiConfig.VideoModel,
		logger: logger,
	}
}

func (v *videoGenerator) Start(ctx context.Context, req outbound.GenerateVideoRequest) (*outbound.VideoOperation, error) {
	var image *genai.Image
	if req.SeedImage != nil {
		image = &genai.Image{ImageBytes: req.SeedImage.Data, MIMEType: req.SeedImage.MimeType}
	}

	op, err := v.videos.GenerateVideos(ctx, v.model, req.Prompt, image, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		AspectRatio:    "16:9",
	})
	if err != nil {
		v.logger.Error(err, "Failed to start the video operation")
		return nil, err
	}
	return toVideoOperation(op), nil
}

func (v *videoGenerator) Poll(ctx context.Context, op *outbound.VideoOperation) (*outbound.VideoOperation, error) {
	handle, ok := op.Handle.(*genai.GenerateVideosOperation)
	if !ok || handle == nil {
		return nil, fmt.Errorf("%w: unknown video operation %q", domain.ErrInvalidRequest, op.Name)
	}

	updated, err := v.videos.GetVideosOperation(ctx, handle)
	if err != nil {
		v.logger.ErrorWithFields(err, "Failed to poll the video operation", map[string]interface{}{"operation": op.Name})
		return nil, err
	}
	return toVideoOperation(updated), nil
}

func (v *videoGenerator) DownloadURL(uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: invalid video uri %q", domain.ErrInvalidRequest, uri)
	}
	query := parsed.Query()
	query.Set("key", v.apiKey)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func toVideoOperation(op *genai.GenerateVideosOperation) *outbound.VideoOperation {
	result := &outbound.VideoOperation{
		Name:   op.Name,
		Done:   op.Done,
		Handle: op,
	}
	if len(op.Error) > 0 {
		if message, ok := op.Error["message"].(string); ok && message != "" {
			result.Error = message
		} else {
			result.Error = fmt.Sprintf("%v", op.Error)
		}
	}
	if op.Response != nil {
		for _, generated := range op.Response.GeneratedVideos {
			if generated != nil && generated.Video != nil && generated.Video.URI != "" {
				result.URI = generated.Video.URI
				break
			}
		}
	}
	return result
}
