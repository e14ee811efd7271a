// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC files frame by frame with mewkiz/flac
package decode

import (
	"fmt"
	"io"

	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// NewFLAC creates a new FLAC decoder
func NewFLAC() Decoder {
	return &FLACDecoder{}
}

// Decode converts a FLAC stream to interleaved float samples
func (d *FLACDecoder) Decode(r io.Reader) (audio.Waveform, error) {
	stream, err := flac.New(r)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to create flac decoder: %w", err)
	}
	defer func() { _ = stream.Close() }()

	channels := int(stream.Info.NChannels)
	bits := int(stream.Info.BitsPerSample)
	samples := make([]float64, 0, int(stream.Info.NSamples)*channels)

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return audio.Waveform{}, fmt.Errorf("flac decode error: %w", err)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, audio.SampleFromBits(frame.Subframes[ch].Samples[i], bits))
			}
		}
	}

	return audio.NewWaveform(samples, int(stream.Info.SampleRate), channels), nil
}
