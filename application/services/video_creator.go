package services

import (
	"context"
	"errors"
	"fmt"
	"storybook-generator/application/ports/inbound"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
	"strings"
	"sync"
	"time"
)

const DefaultVideoPollInterval = 10 * time.Second

type videoCreator struct {
	logger         outbound.LoggerPort
	videoGenerator outbound.VideoGeneratorPort
	downloader     outbound.VideoDownloaderPort
	authorizer     outbound.AuthorizationPort
	workerPool     outbound.TaskDispatcher
	pollInterval   time.Duration
	locale         string

	mu     sync.Mutex
	issued map[string]struct{}
}

func NewVideoCreator(logger outbound.LoggerPort, videoGenerator outbound.VideoGeneratorPort,
	downloader outbound.VideoDownloaderPort, authorizer outbound.AuthorizationPort, workerPool outbound.TaskDispatcher,
	pollInterval time.Duration, locale string) inbound.VideoCreatorPort {
	if pollInterval <= 0 {
		pollInterval = DefaultVideoPollInterval
	}
	return &videoCreator{
		logger:         logger,
		videoGenerator: videoGenerator,
		downloader:     downloader,
		authorizer:     authorizer,
		workerPool:     workerPool,
		pollInterval:   pollInterval,
		locale:         locale,
		issued:         make(map[string]struct{}),
	}
}

func (v *videoCreator) CreateVideo(ctx context.Context, params inbound.VideoParams) (<-chan domain.VideoProgress, <-chan error) {
	out := make(chan domain.VideoProgress)
	errCh := make(chan error, 1)

	fail := func(err error) (<-chan domain.VideoProgress, <-chan error) {
		errCh <- err
		close(out)
		close(errCh)
		return out, errCh
	}

	if strings.TrimSpace(params.Page.Text) == "" {
		return fail(domain.ErrNoStory)
	}
	if !v.authorizer.HasAuthorization() {
		v.logger.Warn("Video generation requested without authorization")
		v.authorizer.RequestAuthorization()
		return fail(domain.ErrVideoAuthorizationRequired)
	}

	err := v.workerPool.Submit(func() {
		defer close(out)
		defer close(errCh)

		if err := v.run(ctx, params, out); err != nil {
			if domain.IsEntityNotFound(err) {
				v.authorizer.RequestAuthorization()
				if !errors.Is(err, domain.ErrVideoEntityNotFound) {
					err = fmt.Errorf("%w: %v", domain.ErrVideoEntityNotFound, err)
				}
			}
			v.logger.Error(err, "Video generation failed")
			errCh <- err
		}
	})
	if err != nil {
		v.logger.Error(err, "Failed to submit video generation")
		return fail(err)
	}

	return out, errCh
}

func (v *videoCreator) run(ctx context.Context, params inbound.VideoParams, out chan<- domain.VideoProgress) error {
	var seed *domain.GeneratedImage
	if params.Page.ImageURL != "" {
		image, err := domain.ParseDataURI(params.Page.ImageURL)
		if err != nil {
			return fmt.Errorf("failed to read seed image: %w", err)
		}
		seed = image
	}

	op, err := v.videoGenerator.Start(ctx, outbound.GenerateVideoRequest{
		Prompt:    videoPrompt(params.Title, params.Page.Text),
		SeedImage: seed,
	})
	if err != nil {
		return fmt.Errorf("failed to start video generation: %w", err)
	}
	v.logger.InfoWithFields("Video generation started", map[string]interface{}{"operation": op.Name})
	if err := v.publish(ctx, out, domain.VideoProgress{
		Stage:   domain.VideoStarted,
		Message: domain.VideoMessage(domain.VideoStarted, v.locale, 0),
	}); err != nil {
		return err
	}

	attempt := 0
	for !op.Done {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(v.pollInterval):
		}
		attempt++
		op, err = v.videoGenerator.Poll(ctx, op)
		if err != nil {
			return fmt.Errorf("failed to poll video operation: %w", err)
		}
		v.logger.DebugWithFields("Polled video operation", map[string]interface{}{
			"operation": op.Name,
			"attempt":   attempt,
			"done":      op.Done,
		})
		if op.Done {
			break
		}
		if err := v.publish(ctx, out, domain.VideoProgress{
			Stage:   domain.VideoPolling,
			Message: domain.VideoMessage(domain.VideoPolling, v.locale, attempt),
			Attempt: attempt,
		}); err != nil {
			return err
		}
	}

	if op.Error != "" {
		return fmt.Errorf("%w: %s", domain.ErrProviderOperation, op.Error)
	}
	if op.URI == "" {
		return fmt.Errorf("%w: video operation finished without a video", domain.ErrMissingMedia)
	}

	v.mu.Lock()
	v.issued[op.URI] = struct{}{}
	v.mu.Unlock()

	return v.publish(ctx, out, domain.VideoProgress{
		Stage:   domain.VideoReady,
		Message: domain.VideoMessage(domain.VideoReady, v.locale, attempt),
		Attempt: attempt,
		URI:     op.URI,
	})
}

func (v *videoCreator) DownloadVideo(ctx context.Context, uri string) ([]byte, string, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, "", fmt.Errorf("%w: video uri is required", domain.ErrInvalidRequest)
	}
	// Only links produced by a finished job get the credential.
	v.mu.Lock()
	_, known := v.issued[uri]
	v.mu.Unlock()
	if !known {
		return nil, "", fmt.Errorf("%w: unknown video uri", domain.ErrInvalidRequest)
	}
	url, err := v.videoGenerator.DownloadURL(uri)
	if err != nil {
		return nil, "", err
	}
	data, contentType, err := v.downloader.Download(ctx, url)
	if err != nil {
		v.logger.Error(err, "Failed to download video")
		return nil, "", fmt.Errorf("failed to download video: %w", err)
	}
	return data, contentType, nil
}

func (v *videoCreator) ConfirmAuthorization() {
	v.authorizer.Grant()
	v.logger.Info("Video authorization granted")
}

func (v *videoCreator) publish(ctx context.Context, out chan<- domain.VideoProgress, progress domain.VideoProgress) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- progress:
		return nil
	}
}

func videoPrompt(title, text string) string {
	return fmt.Sprintf("An animated scene from the children's storybook %q. %s Gentle camera movement, soft lighting, "+
		"keep the characters and art style of the reference illustration.", title, strings.TrimSpace(text))
}
