// ABOUTME: Level measurement and gain helpers
// ABOUTME: RMS, dBFS conversion and gain-to-target used for loudness matching
package audio

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// RMS returns the root-mean-square level of the samples
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return floats.Norm(samples, 2) / math.Sqrt(float64(len(samples)))
}

// DBFS converts a linear RMS level to decibels relative to full scale.
// Silence maps to negative infinity.
func DBFS(rms float64) float64 {
	if rms <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms)
}

// Loudness returns the RMS level of a waveform in dBFS
func Loudness(w Waveform) float64 {
	return DBFS(RMS(w.Samples))
}

// GainToTarget returns the linear gain that moves a level of currentDBFS to targetDBFS.
// A silent input gets unity gain.
func GainToTarget(currentDBFS, targetDBFS float64) float64 {
	if math.IsInf(currentDBFS, -1) || math.IsNaN(currentDBFS) {
		return 1
	}
	return math.Pow(10, (targetDBFS-currentDBFS)/20)
}

// ApplyGain scales samples in place
func ApplyGain(samples []float64, gain float64) {
	floats.Scale(gain, samples)
}
