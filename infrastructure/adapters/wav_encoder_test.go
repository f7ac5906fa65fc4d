package adapters

import (
	"bytes"
	"encoding/binary"
	"github.com/go-audio/wav"
	"storybook-generator/domain"
	"testing"
)

func TestWAVEncoder_EncodeWAV(t *testing.T) {
	encoder := NewWAVEncoder(NewZerologWrapper("disabled"))
	buffer := &domain.AudioBuffer{
		Samples:    []int16{0, 1000, -1000, 32767},
		SampleRate: domain.NarrationSampleRate,
		Channels:   domain.NarrationChannels,
	}

	payload, err := encoder.EncodeWAV(buffer)
	if err != nil {
		t.Fatalf("error encoding wav: %v", err)
	}
	if !bytes.HasPrefix(payload, []byte("RIFF")) || string(payload[8:12]) != "WAVE" {
		t.Fatalf("not a wav file: %q", payload[:12])
	}

	decoder := wav.NewDecoder(bytes.NewReader(payload))
	if !decoder.IsValidFile() {
		t.Fatal("decoder rejected the file")
	}
	if decoder.SampleRate != domain.NarrationSampleRate || decoder.NumChans != 1 || decoder.BitDepth != 16 {
		t.Errorf("unexpected format %d Hz, %d channels, %d bits", decoder.SampleRate, decoder.NumChans, decoder.BitDepth)
	}

	samples := payload[len(payload)-8:]
	if got := int16(binary.LittleEndian.Uint16(samples[2:])); got != 1000 {
		t.Errorf("expected the second sample to be 1000, got %d", got)
	}
}
