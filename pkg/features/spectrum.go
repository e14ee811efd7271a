// ABOUTME: Log-spaced band magnitude spectrum
// ABOUTME: Reduces each STFT frame to a fixed number of bands for spectral-balance scoring
package features

import (
	"math"

	"github.com/harperreed/automashup-go/pkg/dsp"
)

const (
	// DefaultSpectrumBands is the spectrum feature dimension
	DefaultSpectrumBands = 32

	spectrumLowHz = 40.0
)

// Spectrum computes one vector of mean band magnitudes per spectrogram frame,
// with bands spaced logarithmically from 40 Hz to Nyquist
func Spectrum(spec dsp.Spectrogram, bands int) [][]float64 {
	nyquist := float64(spec.SampleRate) / 2
	ratio := math.Pow(nyquist/spectrumLowHz, 1/float64(bands))

	pool := make([]band, bands)
	lo := spectrumLowHz
	for i := range pool {
		hi := lo * ratio
		pool[i] = newBand(lo, hi, spec)
		lo = hi
	}

	out := make([][]float64, len(spec.Frames))
	for t, mags := range spec.Frames {
		row := make([]float64, bands)
		for i, b := range pool {
			row[i] = b.value(mags)
		}
		out[t] = row
	}
	return out
}
