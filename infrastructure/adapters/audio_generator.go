package adapters

import (
	"context"
	"encoding/base64"
	"fmt"
	"google.golang.org/genai"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/config"
	"storybook-generator/domain"
)

type audioGenerator struct {
	models GeminiModels
	model  string
	logger outbound.LoggerPort
}

func NewAudioGenerator(models GeminiModels, geminiConfig *config.GeminiConfig, logger outbound.LoggerPort) outbound.AudioGeneratorPort {
	return &audioGenerator{
		models: models,
		model:  geminiConfig.TTSModel,
		logger: logger,
	}
}

func (a *audioGenerator) Generate(ctx context.Context, req outbound.GenerateAudioRequest) (string, error) {
	voice := req.Voice
	if voice == "" {
		voice = domain.DefaultVoice
	}

	content := genai.NewContentFromText("Read this page of a children's story aloud, warmly: "+req.Text, genai.RoleUser)
	res, err := a.models.GenerateContent(ctx, a.model, []*genai.Content{content}, &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: string(voice)},
			},
		},
	})
	if err != nil {
		a.logger.ErrorWithFields(err, "Failed to generate the narration", map[string]interface{}{"voice": voice})
		return "", err
	}

	blob := firstInlineData(res)
	if blob == nil {
		err := fmt.Errorf("%w: speech response has no audio", domain.ErrMissingMedia)
		a.logger.Error(err, "Failed to read the narration")
		return "", err
	}

	return base64.StdEncoding.EncodeToString(blob.Data), nil
}
