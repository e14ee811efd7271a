// ABOUTME: FLAC encoder
// ABOUTME: Writes verbatim-coded FLAC frames with mewkiz/flac
package encode

import (
	"fmt"
	"io"

	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const flacBlockSize = 4096

// FLACEncoder encodes FLAC files
type FLACEncoder struct {
	bitDepth int
}

// NewFLAC creates a new FLAC encoder
func NewFLAC(format audio.Format) (Encoder, error) {
	if format.Codec != "flac" {
		return nil, fmt.Errorf("invalid codec for FLAC encoder: %s", format.Codec)
	}

	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}

	return &FLACEncoder{
		bitDepth: format.BitDepth,
	}, nil
}

// Encode writes w as a FLAC stream
func (e *FLACEncoder) Encode(dst io.Writer, w audio.Waveform) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.Channels > 8 {
		return fmt.Errorf("%w: FLAC supports at most 8 channels, got %d", audio.ErrInvalidParameter, w.Channels)
	}

	frames := w.Frames()
	info := &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(w.SampleRate),
		NChannels:     uint8(w.Channels),
		BitsPerSample: uint8(e.bitDepth),
		NSamples:      uint64(frames),
	}

	enc, err := flac.NewEncoder(dst, info)
	if err != nil {
		return fmt.Errorf("failed to create flac encoder: %w", err)
	}

	for num, start := 0, 0; start < frames; num, start = num+1, start+flacBlockSize {
		n := flacBlockSize
		if start+n > frames {
			n = frames - start
		}

		subframes := make([]*frame.Subframe, w.Channels)
		for ch := range subframes {
			samples := make([]int32, n)
			for i := 0; i < n; i++ {
				samples[i] = audio.SampleToBits(w.Samples[(start+i)*w.Channels+ch], e.bitDepth)
			}
			subframes[ch] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   samples,
				NSamples:  n,
			}
		}

		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(n),
				SampleRate:        uint32(w.SampleRate),
				Channels:          frame.Channels(w.Channels - 1),
				BitsPerSample:     uint8(e.bitDepth),
				Num:               uint64(num),
			},
			Subframes: subframes,
		}
		if err := enc.WriteFrame(f); err != nil {
			_ = enc.Close()
			return fmt.Errorf("failed to write flac frame %d: %w", num, err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish flac stream: %w", err)
	}
	return nil
}
