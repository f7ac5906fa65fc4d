package domain

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"
)

const (
	NarrationSampleRate = 24000
	NarrationChannels   = 1
	NarrationBitDepth   = 16
)

type AudioBuffer struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

func (b *AudioBuffer) Duration() time.Duration {
	if b == nil || b.SampleRate == 0 || b.Channels == 0 {
		return 0
	}
	frames := len(b.Samples) / b.Channels
	return time.Duration(frames) * time.Second / time.Duration(b.SampleRate)
}

type AudioSource string

const (
	NoAudioSource    AudioSource = ""
	PageAudioSource  AudioSource = "page"
	CoverAudioSource AudioSource = "cover"
)

// DecodePCM turns base64 little-endian 16-bit narration into a mono buffer at the narration rate.
func DecodePCM(audioData string) (*AudioBuffer, error) {
	raw, err := base64.StdEncoding.DecodeString(audioData)
	if err != nil {
		return nil, fmt.Errorf("%w: narration is not base64: %v", ErrMissingMedia, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: narration is empty", ErrMissingMedia)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: narration has an odd byte count (%d)", ErrMissingMedia, len(raw))
	}
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return &AudioBuffer{Samples: samples, SampleRate: NarrationSampleRate, Channels: NarrationChannels}, nil
}

// EncodePCM is the inverse of DecodePCM.
func EncodePCM(buffer *AudioBuffer) string {
	raw := make([]byte, 2*len(buffer.Samples))
	for i, sample := range buffer.Samples {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(sample))
	}
	return base64.StdEncoding.EncodeToString(raw)
}
