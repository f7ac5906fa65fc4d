package services

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"storybook-generator/application/ports/inbound"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
	"strings"
)

type storyPipelineOrchestrator struct {
	logger          outbound.LoggerPort
	titleGenerator  outbound.TitleGeneratorPort
	scriptGenerator outbound.StoryScriptGeneratorPort
	imageGenerator  outbound.ImageGeneratorPort
	audioGenerator  outbound.AudioGeneratorPort
	state           inbound.StorybookStatePort
	viewer          inbound.StorybookViewerPort
	workerPool      outbound.TaskDispatcher
	locale          string
}

type PipelineDependencies struct {
	Logger          outbound.LoggerPort
	TitleGenerator  outbound.TitleGeneratorPort
	ScriptGenerator outbound.StoryScriptGeneratorPort
	ImageGenerator  outbound.ImageGeneratorPort
	AudioGenerator  outbound.AudioGeneratorPort
	State           inbound.StorybookStatePort
	Viewer          inbound.StorybookViewerPort
	WorkerPool      outbound.TaskDispatcher
	Locale          string
}

func NewStoryPipelineOrchestrator(deps PipelineDependencies) inbound.StoryPipelineOrchestrator {
	return &storyPipelineOrchestrator{
		logger:          deps.Logger,
		titleGenerator:  deps.TitleGenerator,
		scriptGenerator: deps.ScriptGenerator,
		imageGenerator:  deps.ImageGenerator,
		audioGenerator:  deps.AudioGenerator,
		state:           deps.State,
		viewer:          deps.Viewer,
		workerPool:      deps.WorkerPool,
		locale:          deps.Locale,
	}
}

func (s *storyPipelineOrchestrator) StartPipeline(ctx context.Context, request inbound.StartPipelineParams) (<-chan domain.PipelineEvent, <-chan error) {
	out := make(chan domain.PipelineEvent)
	errCh := make(chan error, 1)

	request, err := normalizeRequest(request)
	if err != nil {
		errCh <- err
		close(out)
		close(errCh)
		return out, errCh
	}

	storyID := uuid.NewString()
	if err := s.state.Begin(storyID, request.CharacterImage, ""); err != nil {
		errCh <- err
		close(out)
		close(errCh)
		return out, errCh
	}
	s.viewer.Reset()

	logger := s.logger.With(map[string]interface{}{"story_id": storyID})
	logger.InfoWithFields("Starting story pipeline", map[string]interface{}{
		"mode":  request.Mode,
		"pages": request.NumPages,
		"voice": request.Voice,
	})

	err = s.workerPool.Submit(func() {
		defer close(out)
		defer close(errCh)

		if err := s.run(ctx, logger, storyID, request, out); err != nil {
			logger.Error(err, "Story pipeline aborted")
			message := domain.UserMessage(err, s.locale)
			s.state.Fail(message)
			s.publish(ctx, out, domain.PipelineEvent{
				Type:    domain.ErrorEventType,
				StoryID: storyID,
				Status:  &domain.GenerationStatus{IsLoading: false, Message: message},
				Message: message,
			})
			errCh <- err
			return
		}

		s.state.Finish()
		book := s.state.Storybook()
		logger.InfoWithFields("Story pipeline finished", map[string]interface{}{"pages": len(book.Pages)})
		s.publish(ctx, out, domain.PipelineEvent{
			Type:    domain.CompleteEventType,
			StoryID: storyID,
			Status:  &domain.GenerationStatus{},
			Title:   book.Title,
			Pages:   book.Pages,
		})
	})
	if err != nil {
		logger.Error(err, "Failed to submit story pipeline")
		s.state.Fail(domain.UserMessage(err, s.locale))
		errCh <- err
		close(out)
		close(errCh)
	}

	return out, errCh
}

func (s *storyPipelineOrchestrator) run(ctx context.Context, logger outbound.LoggerPort, storyID string,
	request inbound.StartPipelineParams, out chan<- domain.PipelineEvent) error {
	title := strings.TrimSpace(request.Prompt)
	plot := ""
	if request.Mode == domain.PlotMode {
		plot = title
		if err := s.status(ctx, out, storyID, domain.TitleStage, 0, 0); err != nil {
			return err
		}
		generated, err := s.titleGenerator.Generate(ctx, outbound.GenerateTitleRequest{
			Plot:           plot,
			CharacterImage: request.CharacterImage,
		})
		if err != nil {
			return fmt.Errorf("failed to generate title: %w", err)
		}
		title = cleanTitle(generated)
		if title == "" {
			return fmt.Errorf("%w: empty title", domain.ErrMalformedResponse)
		}
	}
	s.state.SetTitle(title)
	logger.DebugWithFields("Story title ready", map[string]interface{}{"title": title})

	if err := s.status(ctx, out, storyID, domain.StructureStage, 0, 0); err != nil {
		return err
	}
	scripts, err := s.scriptGenerator.Generate(ctx, outbound.GenerateStoryScriptRequest{
		Title:          title,
		Plot:           plot,
		NumPages:       request.NumPages,
		CharacterImage: request.CharacterImage,
	})
	if err != nil {
		return fmt.Errorf("failed to generate story structure: %w", err)
	}
	if len(scripts) != request.NumPages {
		return fmt.Errorf("%w: requested %d, got %d", domain.ErrPageCountMismatch, request.NumPages, len(scripts))
	}

	for i, script := range scripts {
		pageNumber := i + 1
		if strings.TrimSpace(script.StoryText) == "" {
			return fmt.Errorf("%w: page %d has no text", domain.ErrMalformedResponse, pageNumber)
		}

		if err := s.status(ctx, out, storyID, domain.ImageStage, pageNumber, request.NumPages); err != nil {
			return err
		}
		image, err := s.imageGenerator.Generate(ctx, outbound.GenerateImageRequest{
			Prompt:         script.ImagePrompt,
			CharacterImage: request.CharacterImage,
		})
		if err != nil {
			return fmt.Errorf("failed to generate image for page %d: %w", pageNumber, err)
		}

		if err := s.status(ctx, out, storyID, domain.NarrationStage, pageNumber, request.NumPages); err != nil {
			return err
		}
		audio, err := s.audioGenerator.Generate(ctx, outbound.GenerateAudioRequest{
			Text:  script.StoryText,
			Voice: request.Voice,
		})
		if err != nil {
			return fmt.Errorf("failed to generate narration for page %d: %w", pageNumber, err)
		}

		page := domain.StoryPage{
			PageNumber:  pageNumber,
			Text:        script.StoryText,
			ImagePrompt: script.ImagePrompt,
			ImageURL:    image.DataURI(),
			AudioData:   audio,
		}
		pages := s.state.AppendPage(page)
		logger.DebugWithFields("Page ready", map[string]interface{}{"page": pageNumber})
		if err := s.publish(ctx, out, domain.PipelineEvent{
			Type:       domain.PageEventType,
			StoryID:    storyID,
			PageNumber: pageNumber,
			Title:      title,
			Page:       &page,
			Pages:      pages,
		}); err != nil {
			return err
		}
	}

	return nil
}

func (s *storyPipelineOrchestrator) status(ctx context.Context, out chan<- domain.PipelineEvent, storyID string,
	stage domain.PipelineStage, pageNumber, total int) error {
	message := domain.StageMessage(stage, s.locale, pageNumber, total)
	s.state.SetStatusMessage(message)
	return s.publish(ctx, out, domain.PipelineEvent{
		Type:       domain.StatusEventType,
		StoryID:    storyID,
		Stage:      stage,
		PageNumber: pageNumber,
		Status:     &domain.GenerationStatus{IsLoading: true, Message: message},
	})
}

func (s *storyPipelineOrchestrator) publish(ctx context.Context, out chan<- domain.PipelineEvent, event domain.PipelineEvent) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- event:
		return nil
	}
}

func normalizeRequest(request inbound.StartPipelineParams) (inbound.StartPipelineParams, error) {
	if strings.TrimSpace(request.Prompt) == "" {
		return request, fmt.Errorf("%w: prompt is required", domain.ErrInvalidRequest)
	}
	if request.NumPages < domain.MinPages || request.NumPages > domain.MaxPages {
		return request, fmt.Errorf("%w: page count must be between %d and %d", domain.ErrInvalidRequest, domain.MinPages, domain.MaxPages)
	}
	switch request.Mode {
	case "":
		request.Mode = domain.PlotMode
	case domain.PlotMode, domain.TitleMode:
	default:
		return request, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidRequest, request.Mode)
	}
	if request.Voice == "" {
		request.Voice = domain.DefaultVoice
	}
	return request, nil
}

func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, "\"'“”‘’*")
	return strings.TrimSpace(title)
}
