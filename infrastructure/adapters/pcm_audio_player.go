package adapters

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"github.com/patrickmn/go-cache"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
	"sync"
	"sync/atomic"
	"time"
)

var ErrPlayerClosed = errors.New("audio player is closed")

// pcmAudioPlayer decodes narration and runs a playback clock for each buffer. The server has no sound device;
// the client renders the audio while this clock drives the playing flag.
type pcmAudioPlayer struct {
	decoded *cache.Cache
	logger  outbound.LoggerPort

	mu      sync.Mutex
	handles map[*playbackHandle]struct{}
	closed  bool
}

func NewPCMAudioPlayer(logger outbound.LoggerPort) outbound.AudioPlaybackPort {
	return &pcmAudioPlayer{
		decoded: cache.New(30*time.Minute, 10*time.Minute),
		logger:  logger,
		handles: make(map[*playbackHandle]struct{}),
	}
}

func (p *pcmAudioPlayer) Decode(ctx context.Context, audioData string) (*domain.AudioBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(audioData))
	key := hex.EncodeToString(sum[:])
	if cached, ok := p.decoded.Get(key); ok {
		return cached.(*domain.AudioBuffer), nil
	}

	buffer, err := domain.DecodePCM(audioData)
	if err != nil {
		p.logger.Error(err, "Failed to decode narration")
		return nil, err
	}
	p.decoded.SetDefault(key, buffer)
	return buffer, nil
}

func (p *pcmAudioPlayer) Play(buffer *domain.AudioBuffer, onEnded func()) (outbound.PlaybackHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPlayerClosed
	}

	handle := &playbackHandle{player: p}
	p.handles[handle] = struct{}{}
	handle.timer = time.AfterFunc(buffer.Duration(), func() {
		if handle.release() && onEnded != nil {
			onEnded()
		}
	})
	p.logger.DebugWithFields("Playback started", map[string]interface{}{"duration": buffer.Duration().String()})
	return handle, nil
}

func (p *pcmAudioPlayer) Close() error {
	p.mu.Lock()
	handles := make([]*playbackHandle, 0, len(p.handles))
	for handle := range p.handles {
		handles = append(handles, handle)
	}
	p.closed = true
	p.mu.Unlock()

	for _, handle := range handles {
		_ = handle.Stop()
	}
	p.decoded.Flush()
	return nil
}

func (p *pcmAudioPlayer) active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}

type playbackHandle struct {
	player *pcmAudioPlayer
	timer  *time.Timer
	done   atomic.Bool
}

// release reports whether this call ended the playback.
func (h *playbackHandle) release() bool {
	if h.done.Swap(true) {
		return false
	}
	h.player.mu.Lock()
	delete(h.player.handles, h)
	h.player.mu.Unlock()
	return true
}

func (h *playbackHandle) Stop() error {
	if h.release() {
		h.timer.Stop()
	}
	return nil
}
