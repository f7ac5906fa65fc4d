package outbound

import (
	"context"
	"storybook-generator/domain"
)

type PlaybackHandle interface {
	// Stop halts playback and releases the device. Calling it twice is safe.
	Stop() error
}

type AudioPlaybackPort interface {
	Decode(ctx context.Context, audioData string) (*domain.AudioBuffer, error)
	// Play starts the buffer; onEnded fires once when playback finishes on its own.
	Play(buffer *domain.AudioBuffer, onEnded func()) (PlaybackHandle, error)
	Close() error
}

type AudioEncoderPort interface {
	EncodeWAV(buffer *domain.AudioBuffer) ([]byte, error)
}
