// ABOUTME: Audio output interface definition and playback loop
// ABOUTME: Streams a waveform to any output in cancellable chunks
package output

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/automashup-go/pkg/audio"
)

// DefaultChunk is the playback chunk length
const DefaultChunk = 100 * time.Millisecond

// Output represents an audio output device
type Output interface {
	// Open initializes the output device
	Open(sampleRate, channels int) error

	// Write outputs interleaved samples in [-1, 1] (blocks until written)
	Write(samples []float64) error

	// Close releases output resources
	Close() error
}

// Play writes w to out chunk by chunk until it ends or ctx is cancelled.
// onProgress, if set, receives the position after each chunk.
func Play(ctx context.Context, out Output, w audio.Waveform, chunk time.Duration, onProgress func(time.Duration)) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if chunk <= 0 {
		chunk = DefaultChunk
	}
	if err := out.Open(w.SampleRate, w.Channels); err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}

	frames := int(chunk.Seconds() * float64(w.SampleRate))
	if frames < 1 {
		frames = 1
	}
	step := frames * w.Channels

	for start := 0; start < len(w.Samples); start += step {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+step, len(w.Samples))
		if err := out.Write(w.Samples[start:end]); err != nil {
			return fmt.Errorf("failed to write audio: %w", err)
		}
		if onProgress != nil {
			pos := float64(end/w.Channels) / float64(w.SampleRate)
			onProgress(time.Duration(pos * float64(time.Second)))
		}
	}
	return nil
}
