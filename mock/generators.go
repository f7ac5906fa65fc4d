package mock_generator

import (
	"bytes"
	"context"
	"fmt"
	"github.com/google/uuid"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"math"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
	"strings"
	"sync"
	"time"
)

const (
	mockImageSize = 96
	mockPolls     = 2
)

// Generators serves a canned story through the same ports the Gemini adapters implement.
type Generators struct {
	story  *MockStory
	logger outbound.LoggerPort

	mu    sync.Mutex
	polls map[string]int
}

func NewGenerators(story *MockStory, logger outbound.LoggerPort) *Generators {
	return &Generators{
		story:  story,
		logger: logger,
		polls:  make(map[string]int),
	}
}

func sleep(ctx context.Context, delayMillis int) error {
	if delayMillis <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(time.Duration(delayMillis) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Generators) pageDelay(match func(MockPage) bool) int {
	for _, p := range g.story.Pages {
		if match(p) {
			return p.Delay
		}
	}
	return g.story.Delay
}

type titleGenerator struct{ *Generators }

func (g *Generators) TitleGenerator() outbound.TitleGeneratorPort { return titleGenerator{g} }

func (t titleGenerator) Generate(ctx context.Context, _ outbound.GenerateTitleRequest) (string, error) {
	if err := sleep(ctx, t.story.Delay); err != nil {
		return "", err
	}
	return t.story.Title, nil
}

type scriptGenerator struct{ *Generators }

func (g *Generators) ScriptGenerator() outbound.StoryScriptGeneratorPort { return scriptGenerator{g} }

// Generate cycles through the canned pages when more are requested than the story has.
func (s scriptGenerator) Generate(ctx context.Context, req outbound.GenerateStoryScriptRequest) ([]domain.PageScript, error) {
	if err := sleep(ctx, s.story.Delay); err != nil {
		return nil, err
	}
	scripts := make([]domain.PageScript, 0, req.NumPages)
	for i := 0; i < req.NumPages; i++ {
		page := s.story.Pages[i%len(s.story.Pages)]
		scripts = append(scripts, domain.PageScript{StoryText: page.StoryText, ImagePrompt: page.ImagePrompt})
	}
	s.logger.DebugWithFields("Serving mock script", map[string]interface{}{"pages": len(scripts)})
	return scripts, nil
}

type imageGenerator struct{ *Generators }

func (g *Generators) ImageGenerator() outbound.ImageGeneratorPort { return imageGenerator{g} }

// Generate paints a flat swatch whose color is derived from the prompt.
func (i imageGenerator) Generate(ctx context.Context, req outbound.GenerateImageRequest) (*domain.GeneratedImage, error) {
	if err := sleep(ctx, i.pageDelay(func(p MockPage) bool { return p.ImagePrompt == req.Prompt })); err != nil {
		return nil, err
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(req.Prompt))
	sum := h.Sum32()
	fill := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, mockImageSize, mockImageSize))
	for y := 0; y < mockImageSize; y++ {
		for x := 0; x < mockImageSize; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return &domain.GeneratedImage{Data: buf.Bytes(), MimeType: "image/png"}, nil
}

type audioGenerator struct{ *Generators }

func (g *Generators) AudioGenerator() outbound.AudioGeneratorPort { return audioGenerator{g} }

// Generate renders a quiet tone lasting a fraction of a second per word; the pitch depends on the voice.
func (a audioGenerator) Generate(ctx context.Context, req outbound.GenerateAudioRequest) (string, error) {
	if err := sleep(ctx, a.pageDelay(func(p MockPage) bool { return p.StoryText == req.Text })); err != nil {
		return "", err
	}
	words := len(strings.Fields(req.Text))
	if words == 0 {
		words = 1
	}
	duration := time.Duration(words) * 250 * time.Millisecond
	if duration > 5*time.Second {
		duration = 5 * time.Second
	}

	pitch := 220.0
	for i, v := range domain.Voices {
		if v == req.Voice {
			pitch = 220.0 + 55.0*float64(i)
		}
	}
	samples := make([]int16, int(duration.Seconds()*domain.NarrationSampleRate))
	for i := range samples {
		t := float64(i) / domain.NarrationSampleRate
		samples[i] = int16(3000 * math.Sin(2*math.Pi*pitch*t))
	}
	return domain.EncodePCM(&domain.AudioBuffer{
		Samples:    samples,
		SampleRate: domain.NarrationSampleRate,
		Channels:   domain.NarrationChannels,
	}), nil
}

type videoGenerator struct{ *Generators }

func (g *Generators) VideoGenerator() outbound.VideoGeneratorPort { return videoGenerator{g} }

func (v videoGenerator) Start(ctx context.Context, _ outbound.GenerateVideoRequest) (*outbound.VideoOperation, error) {
	if err := sleep(ctx, v.story.Delay); err != nil {
		return nil, err
	}
	return &outbound.VideoOperation{Name: "operations/mock-" + uuid.NewString()}, nil
}

// Poll finishes a job on its second check.
func (v videoGenerator) Poll(ctx context.Context, op *outbound.VideoOperation) (*outbound.VideoOperation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.polls[op.Name]++
	n := v.polls[op.Name]
	v.mu.Unlock()

	next := *op
	if n >= mockPolls {
		next.Done = true
		next.URI = fmt.Sprintf("https://mock.invalid/%s.mp4", strings.TrimPrefix(op.Name, "operations/"))
	}
	return &next, nil
}

func (v videoGenerator) DownloadURL(uri string) (string, error) {
	return uri + "?key=mock", nil
}

type videoDownloader struct{ *Generators }

func (g *Generators) VideoDownloader() outbound.VideoDownloaderPort { return videoDownloader{g} }

// Download returns an empty MP4 header without touching the network.
func (d videoDownloader) Download(ctx context.Context, url string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if !strings.HasPrefix(url, "https://mock.invalid/") {
		return nil, "", fmt.Errorf("%w: not a mock video %s", domain.ErrProviderOperation, url)
	}
	return []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2'}, "video/mp4", nil
}
