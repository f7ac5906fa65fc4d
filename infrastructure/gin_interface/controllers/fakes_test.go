package controllers

import (
	"context"
	"encoding/base64"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"net/http/httptest"
	"storybook-generator/application/ports/inbound"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/application/services"
	"storybook-generator/domain"
	"storybook-generator/middleware"
	"strings"
	"sync"
	"testing"
	"time"
)

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) InfoWithFields(string, map[string]interface{}) {}
func (nopLogger) Error(error, string) {}
func (nopLogger) ErrorWithFields(error, string, map[string]interface{}) {}
func (nopLogger) Debug(string) {}
func (nopLogger) DebugWithFields(string, map[string]interface{}) {}
func (nopLogger) Warn(string) {}
func (nopLogger) WarnWithFields(string, map[string]interface{}) {}
func (l nopLogger) With(map[string]interface{}) outbound.LoggerPort { return l }

type fakeOrchestrator struct {
	mu     sync.Mutex
	events []domain.PipelineEvent
	err    error
	params inbound.StartPipelineParams
}

func (f *fakeOrchestrator) StartPipeline(_ context.Context, params inbound.StartPipelineParams) (<-chan domain.PipelineEvent, <-chan error) {
	f.mu.Lock()
	f.params = params
	f.mu.Unlock()

	out := make(chan domain.PipelineEvent)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		for _, e := range f.events {
			out <- e
		}
		if f.err != nil {
			errCh <- f.err
		}
	}()
	return out, errCh
}

func (f *fakeOrchestrator) lastParams() inbound.StartPipelineParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params
}

type fakeRegenerator struct {
	voice domain.Voice
	err   error
	state inbound.StorybookStatePort
}

func (f *fakeRegenerator) RegenerateImage(_ context.Context, pageNumber int) (domain.StoryPage, error) {
	if f.err != nil {
		return domain.StoryPage{}, f.err
	}
	return f.state.UpdatePage(pageNumber, func(page *domain.StoryPage) {
		page.ImageURL = domain.GeneratedImage{Data: []byte("new"), MimeType: "image/png"}.DataURI()
	})
}

func (f *fakeRegenerator) RegenerateAudio(_ context.Context, pageNumber int, voice domain.Voice) (domain.StoryPage, error) {
	f.voice = voice
	if f.err != nil {
		return domain.StoryPage{}, f.err
	}
	return f.state.Page(pageNumber)
}

func (f *fakeRegenerator) NarrateCover(_ context.Context, voice domain.Voice) error {
	f.voice = voice
	return f.err
}

type fakeViewer struct {
	snapshot  domain.ViewerSnapshot
	toggleErr error
	moves     []string
}

func (f *fakeViewer) Next() domain.ViewerSnapshot {
	f.moves = append(f.moves, "next")
	return f.snapshot
}

func (f *fakeViewer) Previous() domain.ViewerSnapshot {
	f.moves = append(f.moves, "previous")
	return f.snapshot
}

func (f *fakeViewer) ShowCover() domain.ViewerSnapshot {
	f.moves = append(f.moves, "cover")
	return domain.ViewerSnapshot{View: domain.View{Kind: domain.CoverView}, TotalViews: f.snapshot.TotalViews}
}

func (f *fakeViewer) TogglePlayback() (domain.ViewerSnapshot, error) {
	if f.toggleErr != nil {
		return f.snapshot, f.toggleErr
	}
	f.snapshot.Playing = !f.snapshot.Playing
	return f.snapshot, nil
}

func (f *fakeViewer) PageReplaced(domain.StoryPage) {}
func (f *fakeViewer) Reset() {}
func (f *fakeViewer) Snapshot() domain.ViewerSnapshot { return f.snapshot }
func (f *fakeViewer) Close() error { return nil }

type fakeVideoCreator struct {
	progress   []domain.VideoProgress
	err        error
	params     inbound.VideoParams
	downloaded string
	confirmed  bool
}

func (f *fakeVideoCreator) CreateVideo(_ context.Context, params inbound.VideoParams) (<-chan domain.VideoProgress, <-chan error) {
	f.params = params
	out := make(chan domain.VideoProgress)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		for _, p := range f.progress {
			out <- p
		}
		if f.err != nil {
			errCh <- f.err
		}
	}()
	return out, errCh
}

func (f *fakeVideoCreator) DownloadVideo(_ context.Context, uri string) ([]byte, string, error) {
	if uri == "" {
		return nil, "", fmt.Errorf("%w: video uri is required", domain.ErrInvalidRequest)
	}
	f.downloaded = uri
	return []byte("mp4"), "video/mp4", nil
}

func (f *fakeVideoCreator) ConfirmAuthorization() { f.confirmed = true }

type fakeEncoder struct{}

func (fakeEncoder) EncodeWAV(buffer *domain.AudioBuffer) ([]byte, error) {
	return []byte(fmt.Sprintf("RIFF%d", len(buffer.Samples))), nil
}

func newWorkerPool(t *testing.T) *ants.Pool {
	t.Helper()
	pool, err := ants.NewPool(10)
	if err != nil {
		t.Fatal("Failed to create worker pool:", err)
	}
	t.Cleanup(pool.Release)
	return pool
}

// finishedStory seeds a state with a two-page book.
func finishedStory(t *testing.T) inbound.StorybookStatePort {
	t.Helper()
	state := services.NewStorybookState()
	if err := state.Begin("story-1", nil, ""); err != nil {
		t.Fatal("Failed to begin story:", err)
	}
	state.SetTitle("The Lantern")
	pcm := base64.StdEncoding.EncodeToString([]byte{1, 0, 2, 0})
	for i := 1; i <= 2; i++ {
		state.AppendPage(domain.StoryPage{
			PageNumber:  i,
			Text:        fmt.Sprintf("Page %d text.", i),
			ImagePrompt: fmt.Sprintf("prompt %d", i),
			ImageURL:    domain.GeneratedImage{Data: []byte(fmt.Sprintf("img%d", i)), MimeType: "image/png"}.DataURI(),
			AudioData:   pcm,
		})
	}
	state.Finish()
	return state
}

type testServer struct {
	router       *gin.Engine
	state        inbound.StorybookStatePort
	orchestrator *fakeOrchestrator
	regenerator  *fakeRegenerator
	viewer       *fakeViewer
	videoCreator *fakeVideoCreator
}

func newTestServer(t *testing.T, state inbound.StorybookStatePort) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		router:       gin.New(),
		state:        state,
		orchestrator: &fakeOrchestrator{},
		regenerator:  &fakeRegenerator{state: state},
		viewer:       &fakeViewer{snapshot: domain.ViewerSnapshot{TotalViews: domain.TotalViews(state.PageCount())}},
		videoCreator: &fakeVideoCreator{},
	}
	logger := nopLogger{}
	exporter := services.NewStorybookExporter(logger, state, fakeEncoder{}, nil)
	stream := middleware.SSEMiddleware(newWorkerPool(t), logger, time.Minute)

	NewStoryController(logger, ts.orchestrator, state, ts.regenerator, exporter, "en").RegisterRoutes(ts.router, stream)
	NewViewerController(logger, ts.viewer, state, "en").RegisterRoutes(ts.router)
	NewVideoController(logger, ts.videoCreator, state, ts.viewer, "en").RegisterRoutes(ts.router, stream)
	return ts
}

func (ts *testServer) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}
