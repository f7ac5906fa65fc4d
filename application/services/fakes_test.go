package services

import (
	"context"
	"errors"
	"fmt"
	"github.com/panjf2000/ants/v2"
	"io"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
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

func newWorkerPool(t *testing.T) *ants.Pool {
	t.Helper()
	return newSizedWorkerPool(t, 10)
}

func newSizedWorkerPool(t *testing.T, size int) *ants.Pool {
	t.Helper()
	workerPool, err := ants.NewPool(size)
	if err != nil {
		t.Fatal("Failed to create worker pool:", err)
	}
	t.Cleanup(workerPool.Release)
	return workerPool
}

func pcmFor(marker int16) string {
	return domain.EncodePCM(&domain.AudioBuffer{
		Samples:    []int16{marker, marker, marker},
		SampleRate: domain.NarrationSampleRate,
		Channels:   domain.NarrationChannels,
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type fakeTitleGenerator struct {
	title string
	err   error
	calls int
}

func (f *fakeTitleGenerator) Generate(_ context.Context, _ outbound.GenerateTitleRequest) (string, error) {
	f.calls++
	return f.title, f.err
}

type fakeScriptGenerator struct {
	// count overrides the number of returned pages when non-zero.
	count   int
	err     error
	request outbound.GenerateStoryScriptRequest
}

func (f *fakeScriptGenerator) Generate(_ context.Context, req outbound.GenerateStoryScriptRequest) ([]domain.PageScript, error) {
	f.request = req
	if f.err != nil {
		return nil, f.err
	}
	n := req.NumPages
	if f.count != 0 {
		n = f.count
	}
	scripts := make([]domain.PageScript, n)
	for i := range scripts {
		scripts[i] = domain.PageScript{
			StoryText:   fmt.Sprintf("Page %d text.", i+1),
			ImagePrompt: fmt.Sprintf("Illustration %d", i+1),
		}
	}
	return scripts, nil
}

type fakeImageGenerator struct {
	mu       sync.Mutex
	failOn   int
	calls    int
	requests []outbound.GenerateImageRequest
}

func (f *fakeImageGenerator) Generate(_ context.Context, req outbound.GenerateImageRequest) (*domain.GeneratedImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requests = append(f.requests, req)
	if f.failOn != 0 && f.calls == f.failOn {
		return nil, fmt.Errorf("%w: no inline data", domain.ErrMissingMedia)
	}
	return &domain.GeneratedImage{Data: []byte(fmt.Sprintf("image-%d", f.calls)), MimeType: "image/png"}, nil
}

type fakeAudioGenerator struct {
	mu     sync.Mutex
	err    error
	calls  int
	voices []domain.Voice
}

func (f *fakeAudioGenerator) Generate(_ context.Context, req outbound.GenerateAudioRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.voices = append(f.voices, req.Voice)
	if f.err != nil {
		return "", f.err
	}
	return pcmFor(int16(100 + f.calls)), nil
}

type fakeViewer struct {
	mu       sync.Mutex
	resets   int
	replaced []domain.StoryPage
}

func (f *fakeViewer) Next() domain.ViewerSnapshot { return domain.ViewerSnapshot{} }
func (f *fakeViewer) Previous() domain.ViewerSnapshot { return domain.ViewerSnapshot{} }
func (f *fakeViewer) ShowCover() domain.ViewerSnapshot { return domain.ViewerSnapshot{} }
func (f *fakeViewer) TogglePlayback() (domain.ViewerSnapshot, error) {
	return domain.ViewerSnapshot{}, nil
}
func (f *fakeViewer) Snapshot() domain.ViewerSnapshot { return domain.ViewerSnapshot{} }
func (f *fakeViewer) Close() error { return nil }

func (f *fakeViewer) PageReplaced(page domain.StoryPage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaced = append(f.replaced, page)
}

func (f *fakeViewer) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

type fakeHandle struct {
	player  *fakePlayer
	buffer  *domain.AudioBuffer
	onEnded func()
	stopped bool
}

func (h *fakeHandle) Stop() error {
	h.player.mu.Lock()
	defer h.player.mu.Unlock()
	if !h.stopped {
		h.stopped = true
		h.player.active--
	}
	return nil
}

// finish simulates the device reaching the end of the buffer.
func (h *fakeHandle) finish() {
	h.player.mu.Lock()
	if h.stopped {
		h.player.mu.Unlock()
		return
	}
	h.stopped = true
	h.player.active--
	h.player.mu.Unlock()
	h.onEnded()
}

type fakePlayer struct {
	mu        sync.Mutex
	gates     map[string]chan struct{}
	handles   []*fakeHandle
	decodes   int
	active    int
	maxActive int
	closed    bool
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{gates: make(map[string]chan struct{})}
}

// block makes Decode of data wait until the returned function is called.
func (f *fakePlayer) block(data string) func() {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[data] = gate
	f.mu.Unlock()
	return func() { close(gate) }
}

func (f *fakePlayer) Decode(ctx context.Context, data string) (*domain.AudioBuffer, error) {
	f.mu.Lock()
	gate := f.gates[data]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.decodes++
	f.mu.Unlock()
	return domain.DecodePCM(data)
}

func (f *fakePlayer) Play(buffer *domain.AudioBuffer, onEnded func()) (outbound.PlaybackHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, errors.New("player closed")
	}
	handle := &fakeHandle{player: f, buffer: buffer, onEnded: onEnded}
	f.handles = append(f.handles, handle)
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	return handle, nil
}

func (f *fakePlayer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakePlayer) lastHandle() *fakeHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.handles) == 0 {
		return nil
	}
	return f.handles[len(f.handles)-1]
}

func (f *fakePlayer) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakePlayer) stats() (decodes, maxActive int, closed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decodes, f.maxActive, f.closed
}

type fakeAuthorizer struct {
	mu         sync.Mutex
	authorized bool
	requests   int
}

func (f *fakeAuthorizer) HasAuthorization() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authorized
}

func (f *fakeAuthorizer) RequestAuthorization() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	f.authorized = false
}

func (f *fakeAuthorizer) Grant() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authorized = true
}

func (f *fakeAuthorizer) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

type fakeVideoGenerator struct {
	mu       sync.Mutex
	startErr error
	pendingN int
	finalErr string
	uri      string
	polls    int
	request  outbound.GenerateVideoRequest
}

func (f *fakeVideoGenerator) Start(_ context.Context, req outbound.GenerateVideoRequest) (*outbound.VideoOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.request = req
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &outbound.VideoOperation{Name: "operations/video-1"}, nil
}

func (f *fakeVideoGenerator) Poll(_ context.Context, op *outbound.VideoOperation) (*outbound.VideoOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.polls <= f.pendingN {
		return &outbound.VideoOperation{Name: op.Name}, nil
	}
	return &outbound.VideoOperation{Name: op.Name, Done: true, Error: f.finalErr, URI: f.uri}, nil
}

func (f *fakeVideoGenerator) DownloadURL(uri string) (string, error) {
	return uri + "&key=test-key", nil
}

type fakeDownloader struct {
	url string
}

func (f *fakeDownloader) Download(_ context.Context, url string) ([]byte, string, error) {
	f.url = url
	return []byte("mp4"), "video/mp4", nil
}

type fakeEncoder struct{}

func (fakeEncoder) EncodeWAV(buffer *domain.AudioBuffer) ([]byte, error) {
	return []byte(fmt.Sprintf("RIFF%d", len(buffer.Samples))), nil
}

type fakeExportStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeExportStore() *fakeExportStore {
	return &fakeExportStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (f *fakeExportStore) Put(_ context.Context, req outbound.PutObjectRequest) (string, error) {
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[req.Key] = data
	f.types[req.Key] = req.ContentType
	return "s3://bucket/" + req.Key, nil
}
