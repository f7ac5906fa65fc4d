package adapters

import (
	"context"
	"fmt"
	"google.golang.org/genai"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/config"
	"storybook-generator/domain"
)

type imageGenerator struct {
	models GeminiModels
	model  string
	logger outbound.LoggerPort
}

func NewImageGenerator(models GeminiModels, geminiConfig *config.GeminiConfig, logger outbound.LoggerPort) outbound.ImageGeneratorPort {
	return &imageGenerator{
		models: models,
		model:  geminiConfig.ImageModel,
		logger: logger,
	}
}

func (i *imageGenerator) Generate(ctx context.Context, req outbound.GenerateImageRequest) (*domain.GeneratedImage, error) {
	prompt := fmt.Sprintf("%s, in a warm children's picture book illustration style", req.Prompt)
	if req.CharacterImage != nil {
		prompt += ". The main character must look exactly like the character in the attached image"
	}

	content, err := userContent(prompt, req.CharacterImage)
	if err != nil {
		return nil, err
	}

	res, err := i.models.GenerateContent(ctx, i.model, []*genai.Content{content}, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		i.logger.Error(err, "Failed to generate the image")
		return nil, err
	}

	blob := firstInlineData(res)
	if blob == nil {
		err := fmt.Errorf("%w: image response has no inline data", domain.ErrMissingMedia)
		i.logger.Error(err, "Failed to read the image")
		return nil, err
	}

	mimeType := blob.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return &domain.GeneratedImage{Data: blob.Data, MimeType: mimeType}, nil
}
