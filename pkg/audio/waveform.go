// ABOUTME: Waveform and BeatGrid types
// ABOUTME: Interleaved float64 audio plus the beat timestamps derived from it
package audio

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Waveform holds interleaved float64 samples in the nominal range [-1, 1]
type Waveform struct {
	ID         string
	Samples    []float64
	SampleRate int
	Channels   int
}

// NewWaveform creates a waveform from interleaved samples
func NewWaveform(samples []float64, sampleRate, channels int) Waveform {
	return Waveform{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// Frames returns the number of sample frames (samples per channel)
func (w Waveform) Frames() int {
	if w.Channels <= 0 {
		return 0
	}
	return len(w.Samples) / w.Channels
}

// Duration returns the playback length of the waveform
func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(w.Frames()) / float64(w.SampleRate) * float64(time.Second))
}

// Validate checks shape and sample values
func (w Waveform) Validate() error {
	if len(w.Samples) == 0 {
		return fmt.Errorf("%w: waveform is empty", ErrInvalidAudio)
	}
	if w.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidAudio, w.SampleRate)
	}
	if w.Channels <= 0 {
		return fmt.Errorf("%w: channel count %d", ErrInvalidAudio, w.Channels)
	}
	if len(w.Samples)%w.Channels != 0 {
		return fmt.Errorf("%w: %d samples is not a multiple of %d channels", ErrInvalidAudio, len(w.Samples), w.Channels)
	}
	for i, s := range w.Samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: non-finite sample at index %d", ErrInvalidAudio, i)
		}
	}
	return nil
}

// Mono averages all channels into a single channel
func (w Waveform) Mono() []float64 {
	if w.Channels == 1 {
		out := make([]float64, len(w.Samples))
		copy(out, w.Samples)
		return out
	}
	frames := w.Frames()
	out := make([]float64, frames)
	inv := 1.0 / float64(w.Channels)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < w.Channels; ch++ {
			sum += w.Samples[i*w.Channels+ch]
		}
		out[i] = sum * inv
	}
	return out
}

// Clone returns a deep copy
func (w Waveform) Clone() Waveform {
	out := w
	out.Samples = make([]float64, len(w.Samples))
	copy(out.Samples, w.Samples)
	return out
}

// WithSamples returns a waveform with the same rate, channels and ID but new samples
func (w Waveform) WithSamples(samples []float64) Waveform {
	out := w
	out.Samples = samples
	return out
}

// BeatGrid is a strictly increasing sequence of beat timestamps in seconds
type BeatGrid []float64

// Validate requires at least two finite, strictly increasing beats
func (g BeatGrid) Validate() error {
	if len(g) < 2 {
		return fmt.Errorf("%w: beat grid has %d beats, need at least 2", ErrInsufficientAudio, len(g))
	}
	for i, t := range g {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: non-finite beat at index %d", ErrInvalidParameter, i)
		}
		if i > 0 && t <= g[i-1] {
			return fmt.Errorf("%w: beat grid not strictly increasing at index %d", ErrInvalidParameter, i)
		}
	}
	return nil
}

// Intervals returns the number of inter-beat intervals
func (g BeatGrid) Intervals() int {
	if len(g) < 2 {
		return 0
	}
	return len(g) - 1
}

// MedianInterval returns the median inter-beat interval in seconds
func (g BeatGrid) MedianInterval() float64 {
	n := g.Intervals()
	if n == 0 {
		return 0
	}
	d := make([]float64, n)
	for i := range d {
		d[i] = g[i+1] - g[i]
	}
	sort.Float64s(d)
	if n%2 == 1 {
		return d[n/2]
	}
	return (d[n/2-1] + d[n/2]) / 2
}

// At returns the time of beat i, extrapolating with the median interval outside the grid
func (g BeatGrid) At(i int) float64 {
	if len(g) == 0 {
		return 0
	}
	if i >= 0 && i < len(g) {
		return g[i]
	}
	ibi := g.MedianInterval()
	if i < 0 {
		return g[0] + float64(i)*ibi
	}
	return g[len(g)-1] + float64(i-len(g)+1)*ibi
}

// Tempo returns the tempo implied by the median interval, or 0 for a degenerate grid
func (g BeatGrid) Tempo() float64 {
	ibi := g.MedianInterval()
	if ibi <= 0 {
		return 0
	}
	return 60.0 / ibi
}
