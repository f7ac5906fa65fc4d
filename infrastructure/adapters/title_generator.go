package adapters

import (
	"context"
	"fmt"
	"google.golang.org/genai"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/config"
)

type titleGenerator struct {
	models GeminiModels
	model  string
	logger outbound.LoggerPort
}

func NewTitleGenerator(models GeminiModels, geminiConfig *config.GeminiConfig, logger outbound.LoggerPort) outbound.TitleGeneratorPort {
	return &titleGenerator{
		models: models,
		model:  geminiConfig.TextModel,
		logger: logger,
	}
}

func (t *titleGenerator) Generate(ctx context.Context, req outbound.GenerateTitleRequest) (string, error) {
	prompt := fmt.Sprintf("Create a short, catchy title for a children's storybook with this plot: %s\n"+
		"Answer with the title only, without quotes or punctuation around it.", req.Plot)
	if req.CharacterImage != nil {
		prompt += "\nThe attached image shows the main character."
	}

	content, err := userContent(prompt, req.CharacterImage)
	if err != nil {
		return "", err
	}

	res, err := t.models.GenerateContent(ctx, t.model, []*genai.Content{content}, nil)
	if err != nil {
		t.logger.Error(err, "Failed to generate the story title")
		return "", err
	}

	return res.Text(), nil
}
