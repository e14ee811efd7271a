// ABOUTME: Circular rotation of a waveform by whole beats
// ABOUTME: Used to line up phrase boundaries before mixing
package rotate

import (
	"github.com/harperreed/automashup-go/pkg/audio"
)

// Rotate circularly shifts w so the sample at beat n becomes sample 0. The
// beat index wraps modulo len(grid). A negative n undoes the rotation by -n,
// so Rotate(Rotate(w, g, n), g, -n) reproduces w exactly. The output has the
// same length as w.
func Rotate(w audio.Waveform, grid audio.BeatGrid, n int) (audio.Waveform, error) {
	if err := w.Validate(); err != nil {
		return audio.Waveform{}, err
	}
	if err := grid.Validate(); err != nil {
		return audio.Waveform{}, err
	}

	k := n
	if k < 0 {
		k = -k
	}
	k %= len(grid)
	if k == 0 {
		return w, nil
	}

	shift := Offset(w, grid[k])
	if n < 0 {
		shift = -shift
	}
	return Frames(w, shift), nil
}

// Offset converts a time in seconds to a whole frame index
func Offset(w audio.Waveform, seconds float64) int {
	return int(seconds*float64(w.SampleRate) + 0.5)
}

// Frames rotates w left by shift frames; negative shifts rotate right
func Frames(w audio.Waveform, shift int) audio.Waveform {
	frames := w.Frames()
	shift %= frames
	if shift < 0 {
		shift += frames
	}
	if shift == 0 {
		return w.Clone()
	}

	split := shift * w.Channels
	out := make([]float64, 0, len(w.Samples))
	out = append(out, w.Samples[split:]...)
	out = append(out, w.Samples[:split]...)
	return w.WithSamples(out)
}
