// ABOUTME: Loudness matching and soft limiting
// ABOUTME: Brings a waveform to a target RMS level and keeps sums inside full scale
package mixer

import (
	"fmt"
	"math"

	"github.com/harperreed/automashup-go/pkg/audio"
)

// MatchLoudness returns a copy of w scaled so its RMS level is targetDBFS.
// Silence is returned unchanged.
func MatchLoudness(w audio.Waveform, targetDBFS float64) (audio.Waveform, error) {
	if math.IsNaN(targetDBFS) || math.IsInf(targetDBFS, 0) {
		return audio.Waveform{}, fmt.Errorf("%w: target level %v dBFS is not finite", audio.ErrInvalidParameter, targetDBFS)
	}
	if err := w.Validate(); err != nil {
		return audio.Waveform{}, err
	}
	out := w.Clone()
	audio.ApplyGain(out.Samples, audio.GainToTarget(audio.Loudness(w), targetDBFS))
	return out, nil
}

// SoftLimit leaves samples below knee untouched and bends the rest with tanh
// so the output never exceeds full scale
func SoftLimit(samples []float64, knee float64) {
	span := 1 - knee
	for i, s := range samples {
		a := math.Abs(s)
		if a <= knee {
			continue
		}
		samples[i] = math.Copysign(knee+span*math.Tanh((a-knee)/span), s)
	}
}
