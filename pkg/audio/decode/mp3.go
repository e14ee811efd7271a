// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 files to stereo float samples with go-mp3
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/harperreed/automashup-go/pkg/audio"
)

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3() Decoder {
	return &MP3Decoder{}
}

// Decode converts an MP3 stream to float samples. go-mp3 always emits
// 16-bit little-endian stereo.
func (d *MP3Decoder) Decode(r io.Reader) (audio.Waveform, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("mp3 decode error: %w", err)
	}

	numSamples := len(pcm) / 2
	numSamples -= numSamples % 2
	if numSamples == 0 {
		return audio.Waveform{}, fmt.Errorf("%w: mp3 stream has no audio", audio.ErrInvalidAudio)
	}
	samples := make([]float64, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	return audio.NewWaveform(samples, decoder.SampleRate(), 2), nil
}
