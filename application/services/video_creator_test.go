package services

import (
	"context"
	"errors"
	"storybook-generator/application/ports/inbound"
	"storybook-generator/domain"
	"strings"
	"testing"
	"time"
)

func drainVideo(progress <-chan domain.VideoProgress, errs <-chan error) ([]domain.VideoProgress, error) {
	var collected []domain.VideoProgress
	var firstErr error
	timeout := time.After(5 * time.Second)
	for progress != nil || errs != nil {
		select {
		case p, ok := <-progress:
			if !ok {
				progress = nil
				continue
			}
			collected = append(collected, p)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
		case <-timeout:
			return collected, errDrainTimeout
		}
	}
	return collected, firstErr
}

var firstPage = domain.StoryPage{
	PageNumber: 1,
	Text:       "A fox finds a lantern.",
	ImageURL:   domain.GeneratedImage{Data: []byte("seed"), MimeType: "image/png"}.DataURI(),
}

func TestVideoCreator_PollsUntilDone(t *testing.T) {
	generator := &fakeVideoGenerator{pendingN: 2, uri: "https://video.example/v1/files/abc?alt=media"}
	authorizer := &fakeAuthorizer{authorized: true}
	sut := NewVideoCreator(nopLogger{}, generator, &fakeDownloader{}, authorizer, newWorkerPool(t), time.Millisecond, "en")

	progress, err := drainVideo(sut.CreateVideo(context.Background(), inbound.VideoParams{Title: "The Lantern", Page: firstPage}))
	if err != nil {
		t.Fatal("Received an error:", err)
	}

	stages := make([]string, 0, len(progress))
	for _, p := range progress {
		stages = append(stages, string(p.Stage))
	}
	if got := strings.Join(stages, ","); got != "started,polling,polling,ready" {
		t.Errorf("unexpected stages %s", got)
	}
	last := progress[len(progress)-1]
	if last.URI != generator.uri || last.Attempt != 3 {
		t.Errorf("unexpected completion %+v", last)
	}
	if string(generator.request.SeedImage.Data) != "seed" || !strings.Contains(generator.request.Prompt, "The Lantern") {
		t.Errorf("unexpected video request %+v", generator.request)
	}
	if authorizer.requestCount() != 0 {
		t.Error("a successful run must not ask for authorization")
	}
}

func TestVideoCreator_RequiresAuthorization(t *testing.T) {
	authorizer := &fakeAuthorizer{}
	sut := NewVideoCreator(nopLogger{}, &fakeVideoGenerator{}, &fakeDownloader{}, authorizer, newWorkerPool(t), time.Millisecond, "en")

	_, err := drainVideo(sut.CreateVideo(context.Background(), inbound.VideoParams{Title: "The Lantern", Page: firstPage}))
	if !errors.Is(err, domain.ErrVideoAuthorizationRequired) {
		t.Fatalf("expected ErrVideoAuthorizationRequired, got %v", err)
	}
	if authorizer.requestCount() != 1 {
		t.Error("the host dialog should be requested")
	}

	sut.ConfirmAuthorization()
	if !authorizer.HasAuthorization() {
		t.Error("confirming should grant authorization")
	}
}

func TestVideoCreator_EntityNotFoundRequestsReauthorization(t *testing.T) {
	generator := &fakeVideoGenerator{finalErr: "Requested entity was not found."}
	authorizer := &fakeAuthorizer{authorized: true}
	sut := NewVideoCreator(nopLogger{}, generator, &fakeDownloader{}, authorizer, newWorkerPool(t), time.Millisecond, "en")

	_, err := drainVideo(sut.CreateVideo(context.Background(), inbound.VideoParams{Title: "The Lantern", Page: firstPage}))
	if !errors.Is(err, domain.ErrVideoEntityNotFound) {
		t.Fatalf("expected ErrVideoEntityNotFound, got %v", err)
	}
	if authorizer.requestCount() != 1 {
		t.Error("entity-not-found must trigger reauthorization")
	}
	if domain.UserMessage(err, "en") == domain.UserMessage(errors.New("boom"), "en") {
		t.Error("entity-not-found needs the access message, not the generic one")
	}
}

func TestVideoCreator_OtherFailuresAreGeneric(t *testing.T) {
	generator := &fakeVideoGenerator{finalErr: "quota exceeded"}
	authorizer := &fakeAuthorizer{authorized: true}
	sut := NewVideoCreator(nopLogger{}, generator, &fakeDownloader{}, authorizer, newWorkerPool(t), time.Millisecond, "en")

	_, err := drainVideo(sut.CreateVideo(context.Background(), inbound.VideoParams{Title: "The Lantern", Page: firstPage}))
	if !errors.Is(err, domain.ErrProviderOperation) {
		t.Fatalf("expected ErrProviderOperation, got %v", err)
	}
	if authorizer.requestCount() != 0 {
		t.Error("generic failures must not ask for authorization")
	}
	if domain.UserMessage(err, "en") != domain.UserMessage(errors.New("boom"), "en") {
		t.Error("expected the generic message")
	}
}

func TestVideoCreator_CancelStopsPolling(t *testing.T) {
	generator := &fakeVideoGenerator{pendingN: 1 << 30}
	sut := NewVideoCreator(nopLogger{}, generator, &fakeDownloader{}, &fakeAuthorizer{authorized: true}, newWorkerPool(t),
		time.Millisecond, "en")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := drainVideo(sut.CreateVideo(ctx, inbound.VideoParams{Title: "The Lantern", Page: firstPage}))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the request context to end polling, got %v", err)
	}
}

func TestVideoCreator_DownloadAppendsKey(t *testing.T) {
	generator := &fakeVideoGenerator{uri: "https://video.example/files/abc?alt=media"}
	downloader := &fakeDownloader{}
	sut := NewVideoCreator(nopLogger{}, generator, downloader, &fakeAuthorizer{authorized: true}, newWorkerPool(t),
		time.Millisecond, "en")

	if _, _, err := sut.DownloadVideo(context.Background(), generator.uri); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("links that were never issued must be rejected, got %v", err)
	}
	if _, err := drainVideo(sut.CreateVideo(context.Background(), inbound.VideoParams{Title: "The Lantern", Page: firstPage})); err != nil {
		t.Fatal("Received an error:", err)
	}

	data, contentType, err := sut.DownloadVideo(context.Background(), generator.uri)
	if err != nil {
		t.Fatal("Failed to download:", err)
	}
	if string(data) != "mp4" || contentType != "video/mp4" {
		t.Errorf("unexpected download %q %s", data, contentType)
	}
	if !strings.HasSuffix(downloader.url, "&key=test-key") {
		t.Errorf("expected the key on the download url, got %s", downloader.url)
	}
	if _, _, err := sut.DownloadVideo(context.Background(), " "); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}
