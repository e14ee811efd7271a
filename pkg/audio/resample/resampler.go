// ABOUTME: Linear-interpolation resampler for float64 audio
// ABOUTME: Converts whole waveforms between sample rates or to an exact frame count
package resample

import (
	"fmt"

	"github.com/harperreed/automashup-go/pkg/audio"
)

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Resample converts interleaved input at inputRate into interleaved output at outputRate.
// It returns the number of output samples written.
func (r *Resampler) Resample(input []float64, output []float64) int {
	if len(input) == 0 {
		return 0
	}

	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels

	outIdx := 0
	for outIdx < outputFrames {
		inputIdx := int(r.position)
		if inputIdx >= inputFrames-1 {
			break
		}

		frac := r.position - float64(inputIdx)
		for ch := 0; ch < r.channels; ch++ {
			s1 := input[inputIdx*r.channels+ch]
			s2 := input[(inputIdx+1)*r.channels+ch]
			output[outIdx*r.channels+ch] = s1*(1.0-frac) + s2*frac
		}

		outIdx++
		r.position += r.ratio
	}

	// Keep the fractional part for the next chunk
	r.position -= float64(int(r.position))

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames) / r.ratio)
	return outputFrames * r.channels
}

// ToLength stretches interleaved samples to exactly frames output frames.
// The first and last input frames map onto the first and last output frames.
func ToLength(samples []float64, channels, frames int) []float64 {
	out := make([]float64, frames*channels)
	inFrames := len(samples) / channels
	if inFrames == 0 || frames == 0 {
		return out
	}
	if inFrames == 1 || frames == 1 {
		for i := 0; i < frames; i++ {
			copy(out[i*channels:(i+1)*channels], samples[:channels])
		}
		return out
	}

	step := float64(inFrames-1) / float64(frames-1)
	for i := 0; i < frames; i++ {
		pos := float64(i) * step
		idx := int(pos)
		if idx >= inFrames-1 {
			idx = inFrames - 2
		}
		frac := pos - float64(idx)
		for ch := 0; ch < channels; ch++ {
			s1 := samples[idx*channels+ch]
			s2 := samples[(idx+1)*channels+ch]
			out[i*channels+ch] = s1*(1.0-frac) + s2*frac
		}
	}
	return out
}

// Waveform converts w to the target sample rate. Same-rate input is returned unchanged.
func Waveform(w audio.Waveform, rate int) (audio.Waveform, error) {
	if rate <= 0 {
		return audio.Waveform{}, fmt.Errorf("%w: target sample rate %d", audio.ErrInvalidParameter, rate)
	}
	if err := w.Validate(); err != nil {
		return audio.Waveform{}, err
	}
	if w.SampleRate == rate {
		return w, nil
	}

	frames := int(float64(w.Frames())*float64(rate)/float64(w.SampleRate) + 0.5)
	if frames < 1 {
		frames = 1
	}
	out := w.WithSamples(ToLength(w.Samples, w.Channels, frames))
	out.SampleRate = rate
	return out, nil
}
