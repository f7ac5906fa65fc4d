package adapters

import (
	"context"
	"fmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/config"
	"storybook-generator/domain"
)

var tracer = otel.Tracer("gemini-client")

type GeminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, conf *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiVideos interface {
	GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, conf *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}

type GeminiClient interface {
	GeminiModels
	GeminiVideos
	ApiKey() string
}

type geminiClient struct {
	client  *genai.Client
	limiter *rate.Limiter
	apiKey  string
	logger  outbound.LoggerPort
}

// NewGeminiClient shares one limiter across every model call so the sequential pipeline stays under provider quotas.
func NewGeminiClient(ctx context.Context, geminiConfig *config.GeminiConfig, logger outbound.LoggerPort) (GeminiClient, error) {
	if geminiConfig == nil || geminiConfig.ApiKey == "" {
		return nil, fmt.Errorf("%w: gemini api key", domain.ErrMissingConfiguration)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.ApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Error(err, "Failed to create the Gemini client")
		return nil, err
	}

	limit := rate.Inf
	if geminiConfig.RateInterval > 0 {
		limit = rate.Every(geminiConfig.RateInterval)
	}

	return &geminiClient{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		apiKey:  geminiConfig.ApiKey,
		logger:  logger,
	}, nil
}

func (g *geminiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content,
	conf *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	ctx, span := tracer.Start(ctx, "gemini_generate_content")
	defer span.End()
	span.SetAttributes(attribute.String("gemini.model", model))

	if err := g.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}

	res, err := g.client.Models.GenerateContent(ctx, model, contents, conf)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.ErrorWithFields(err, "Gemini content generation failed", map[string]interface{}{"model": model})
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderOperation, err)
	}
	span.SetAttributes(attribute.Int("gemini.candidates", len(res.Candidates)))
	return res, nil
}

func (g *geminiClient) GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image,
	conf *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	ctx, span := tracer.Start(ctx, "gemini_generate_videos")
	defer span.End()
	span.SetAttributes(
		attribute.String("gemini.model", model),
		attribute.Bool("gemini.seed_image", image != nil),
	)

	if err := g.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}

	op, err := g.client.Models.GenerateVideos(ctx, model, prompt, image, conf)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.ErrorWithFields(err, "Gemini video generation failed to start", map[string]interface{}{"model": model})
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderOperation, err)
	}
	span.SetAttributes(attribute.String("gemini.operation", op.Name))
	return op, nil
}

func (g *geminiClient) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	ctx, span := tracer.Start(ctx, "gemini_get_videos_operation")
	defer span.End()
	span.SetAttributes(attribute.String("gemini.operation", op.Name))

	updated, err := g.client.Operations.GetVideosOperation(ctx, op, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.ErrorWithFields(err, "Failed to poll the Gemini video operation", map[string]interface{}{"operation": op.Name})
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderOperation, err)
	}
	span.SetAttributes(attribute.Bool("gemini.done", updated.Done))
	return updated, nil
}

func (g *geminiClient) ApiKey() string {
	return g.apiKey
}

func userContent(prompt string, image *domain.UploadedImage) (*genai.Content, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if image != nil {
		data, err := image.Bytes()
		if err != nil {
			return nil, fmt.Errorf("%w: character image is not base64: %v", domain.ErrInvalidRequest, err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, image.MimeType))
	}
	return genai.NewContentFromParts(parts, genai.RoleUser), nil
}

func firstInlineData(res *genai.GenerateContentResponse) *genai.Blob {
	if res == nil {
		return nil
	}
	for _, candidate := range res.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData
			}
		}
	}
	return nil
}
