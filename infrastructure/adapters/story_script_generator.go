package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"google.golang.org/genai"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/config"
	"storybook-generator/domain"
	"strings"
)

var pageScriptSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"storyText": {
				Type:        genai.TypeString,
				Description: "The text of this page, two to four sentences.",
			},
			"imagePrompt": {
				Type:        genai.TypeString,
				Description: "A detailed illustration prompt for this page.",
			},
		},
		Required: []string{"storyText", "imagePrompt"},
	},
}

type storyScriptGenerator struct {
	models GeminiModels
	model  string
	logger outbound.LoggerPort
}

func NewStoryScriptGenerator(models GeminiModels, geminiConfig *config.GeminiConfig, logger outbound.LoggerPort) outbound.StoryScriptGeneratorPort {
	return &storyScriptGenerator{
		models: models,
		model:  geminiConfig.TextModel,
		logger: logger,
	}
}

func (s *storyScriptGenerator) Generate(ctx context.Context, req outbound.GenerateStoryScriptRequest) ([]domain.PageScript, error) {
	content, err := userContent(s.createPrompt(req), req.CharacterImage)
	if err != nil {
		return nil, err
	}

	res, err := s.models.GenerateContent(ctx, s.model, []*genai.Content{content}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   pageScriptSchema,
	})
	if err != nil {
		s.logger.Error(err, "Failed to generate the story structure")
		return nil, err
	}

	scripts, err := parsePageScripts(res.Text())
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to parse the story structure", map[string]interface{}{
			"requested_pages": req.NumPages,
		})
		return nil, err
	}
	return scripts, nil
}

func (s *storyScriptGenerator) createPrompt(req outbound.GenerateStoryScriptRequest) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Write a children's storybook titled %q with exactly %d pages.\n", req.Title, req.NumPages)
	if req.Plot != "" {
		fmt.Fprintf(&builder, "Plot: %s\n", req.Plot)
	}
	builder.WriteString("For every page return the page text and a prompt for its illustration.\n" +
		"The illustration prompts:\n" +
		"- Should describe the scene, the characters and their expressions\n" +
		"- Should keep every character looking the same on every page\n" +
		"- Should use a warm, colorful picture book style\n")
	if req.CharacterImage != nil {
		builder.WriteString("The attached image shows the main character; describe them consistently with it.\n")
	}
	return builder.String()
}

func parsePageScripts(payload string) ([]domain.PageScript, error) {
	payload = strings.TrimSpace(payload)
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, "[") {
		return nil, fmt.Errorf("%w: story structure is not a JSON array", domain.ErrMalformedResponse)
	}

	var scripts []domain.PageScript
	if err := json.Unmarshal([]byte(payload), &scripts); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return scripts, nil
}
