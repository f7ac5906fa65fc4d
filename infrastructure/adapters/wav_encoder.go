package adapters

import (
	"fmt"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"os"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
)

type wavEncoder struct {
	logger outbound.LoggerPort
}

func NewWAVEncoder(logger outbound.LoggerPort) outbound.AudioEncoderPort {
	return &wavEncoder{
		logger: logger,
	}
}

// EncodeWAV writes through a temp file because the encoder seeks back to patch the RIFF header.
func (w *wavEncoder) EncodeWAV(buffer *domain.AudioBuffer) ([]byte, error) {
	file, err := os.CreateTemp("", "narration-*.wav")
	if err != nil {
		w.logger.Error(err, "Failed to create the wav file")
		return nil, err
	}
	defer func() {
		if err := os.Remove(file.Name()); err != nil {
			w.logger.Error(err, "Failed to remove the wav file")
		}
	}()
	defer file.Close()

	data := make([]int, len(buffer.Samples))
	for i, sample := range buffer.Samples {
		data[i] = int(sample)
	}

	encoder := wav.NewEncoder(file, buffer.SampleRate, domain.NarrationBitDepth, buffer.Channels, 1)
	err = encoder.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: buffer.Channels, SampleRate: buffer.SampleRate},
		Data:           data,
		SourceBitDepth: domain.NarrationBitDepth,
	})
	if err != nil {
		w.logger.Error(err, "Failed to write the wav samples")
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		w.logger.Error(err, "Failed to finalize the wav file")
		return nil, err
	}

	payload, err := os.ReadFile(file.Name())
	if err != nil {
		w.logger.Error(err, "Failed to read the wav file")
		return nil, err
	}
	if len(payload) < 44 {
		return nil, fmt.Errorf("wav encoder produced %d bytes", len(payload))
	}
	return payload, nil
}
