package services

import (
	"context"
	"fmt"
	"storybook-generator/application/ports/inbound"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
)

type pageRegenerator struct {
	logger         outbound.LoggerPort
	imageGenerator outbound.ImageGeneratorPort
	audioGenerator outbound.AudioGeneratorPort
	state          inbound.StorybookStatePort
	viewer         inbound.StorybookViewerPort
}

func NewPageRegenerator(logger outbound.LoggerPort, imageGenerator outbound.ImageGeneratorPort,
	audioGenerator outbound.AudioGeneratorPort, state inbound.StorybookStatePort,
	viewer inbound.StorybookViewerPort) inbound.PageRegeneratorPort {
	return &pageRegenerator{
		logger:         logger,
		imageGenerator: imageGenerator,
		audioGenerator: audioGenerator,
		state:          state,
		viewer:         viewer,
	}
}

func (p *pageRegenerator) RegenerateImage(ctx context.Context, pageNumber int) (domain.StoryPage, error) {
	page, err := p.editablePage(pageNumber)
	if err != nil {
		return domain.StoryPage{}, err
	}

	image, err := p.imageGenerator.Generate(ctx, outbound.GenerateImageRequest{
		Prompt:         page.ImagePrompt,
		CharacterImage: p.state.CharacterImage(),
	})
	if err != nil {
		p.logger.ErrorWithFields(err, "Failed to regenerate image", map[string]interface{}{"page": pageNumber})
		return domain.StoryPage{}, fmt.Errorf("failed to regenerate image for page %d: %w", pageNumber, err)
	}

	return p.replace(pageNumber, func(page *domain.StoryPage) { page.ImageURL = image.DataURI() }, false)
}

func (p *pageRegenerator) RegenerateAudio(ctx context.Context, pageNumber int, voice domain.Voice) (domain.StoryPage, error) {
	page, err := p.editablePage(pageNumber)
	if err != nil {
		return domain.StoryPage{}, err
	}
	if voice == "" {
		voice = domain.DefaultVoice
	}

	audio, err := p.audioGenerator.Generate(ctx, outbound.GenerateAudioRequest{Text: page.Text, Voice: voice})
	if err != nil {
		p.logger.ErrorWithFields(err, "Failed to regenerate narration", map[string]interface{}{
			"page":  pageNumber,
			"voice": voice,
		})
		return domain.StoryPage{}, fmt.Errorf("failed to regenerate narration for page %d: %w", pageNumber, err)
	}

	return p.replace(pageNumber, func(page *domain.StoryPage) { page.AudioData = audio }, true)
}

func (p *pageRegenerator) NarrateCover(ctx context.Context, voice domain.Voice) error {
	if p.state.Status().IsLoading {
		return domain.ErrGenerationInProgress
	}
	book := p.state.Storybook()
	if book.Title == "" {
		return domain.ErrNoStory
	}
	if voice == "" {
		voice = domain.DefaultVoice
	}

	audio, err := p.audioGenerator.Generate(ctx, outbound.GenerateAudioRequest{Text: book.Title, Voice: voice})
	if err != nil {
		p.logger.Error(err, "Failed to narrate cover")
		return fmt.Errorf("failed to narrate cover: %w", err)
	}
	p.state.SetCoverAudio(audio)
	return nil
}

func (p *pageRegenerator) editablePage(pageNumber int) (domain.StoryPage, error) {
	if p.state.Status().IsLoading {
		return domain.StoryPage{}, domain.ErrGenerationInProgress
	}
	if p.state.PageCount() == 0 {
		return domain.StoryPage{}, domain.ErrNoStory
	}
	return p.state.Page(pageNumber)
}

func (p *pageRegenerator) replace(pageNumber int, mutate func(page *domain.StoryPage), audioChanged bool) (domain.StoryPage, error) {
	page, err := p.state.UpdatePage(pageNumber, mutate)
	if err != nil {
		return domain.StoryPage{}, err
	}
	if audioChanged {
		p.viewer.PageReplaced(page)
	}
	p.logger.DebugWithFields("Page replaced", map[string]interface{}{"page": page.PageNumber})
	return page, nil
}
