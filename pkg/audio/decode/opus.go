// ABOUTME: Ogg Opus audio decoder
// ABOUTME: Decodes .opus/.ogg files to 48kHz float samples with hraban/opus
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/harperreed/automashup-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// OpusSampleRate is the rate libopusfile always decodes to
const OpusSampleRate = 48000

// Max frame size per channel (120 ms at 48kHz)
const opusMaxFrame = 5760

// OpusDecoder decodes Ogg Opus audio
type OpusDecoder struct{}

// NewOpus creates a new Opus decoder
func NewOpus() Decoder {
	return &OpusDecoder{}
}

// Decode converts an Ogg Opus stream to interleaved float samples
func (d *OpusDecoder) Decode(r io.Reader) (audio.Waveform, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to read opus stream: %w", err)
	}
	channels, err := opusChannels(data)
	if err != nil {
		return audio.Waveform{}, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to create opus decoder: %w", err)
	}
	defer func() { _ = stream.Close() }()

	pcm := make([]int16, opusMaxFrame*channels)
	var samples []float64
	for {
		// n is samples per channel
		n, err := stream.Read(pcm)
		if err == io.EOF {
			break
		}
		if err != nil {
			return audio.Waveform{}, fmt.Errorf("opus decode failed: %w", err)
		}
		for _, s := range pcm[:n*channels] {
			samples = append(samples, audio.SampleFromInt16(s))
		}
	}

	return audio.NewWaveform(samples, OpusSampleRate, channels), nil
}

// opusChannels reads the channel count from the OpusHead identification header
func opusChannels(data []byte) (int, error) {
	idx := bytes.Index(data, []byte("OpusHead"))
	if idx < 0 || idx+9 >= len(data) {
		return 0, fmt.Errorf("%w: no OpusHead header", audio.ErrInvalidAudio)
	}
	channels := int(data[idx+9])
	if channels < 1 || channels > 2 {
		return 0, fmt.Errorf("%w: %d-channel opus streams are not supported", audio.ErrDependencyUnavailable, channels)
	}
	return channels, nil
}
