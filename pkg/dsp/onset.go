// ABOUTME: Onset-strength envelope from log-magnitude spectral flux
// ABOUTME: Feeds both tempo estimation and the dynamic-programming beat tracker
package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// logCompression scales magnitudes before the log so quiet partials still register
const logCompression = 1000.0

// OnsetEnvelope returns one onset-strength value per spectrogram frame.
// Each value is the half-wave rectified increase in log magnitude summed
// over bins; frame 0 is always zero.
func OnsetEnvelope(spec Spectrogram) []float64 {
	env := make([]float64, len(spec.Frames))
	if len(spec.Frames) == 0 {
		return env
	}

	prev := logFrame(spec.Frames[0])
	for t := 1; t < len(spec.Frames); t++ {
		cur := logFrame(spec.Frames[t])
		var flux float64
		for k := range cur {
			if d := cur[k] - prev[k]; d > 0 {
				flux += d
			}
		}
		env[t] = flux / float64(len(cur))
		prev = cur
	}
	return env
}

func logFrame(mags []float64) []float64 {
	out := make([]float64, len(mags))
	for k, m := range mags {
		out[k] = math.Log1p(logCompression * m)
	}
	return out
}

// Energy returns the sum of the envelope, zero for silent input
func Energy(env []float64) float64 {
	return floats.Sum(env)
}

// Standardize scales env to unit standard deviation in place. Constant input is left alone.
func Standardize(env []float64) {
	if len(env) < 2 {
		return
	}
	sd := stat.StdDev(env, nil)
	if sd <= 0 || math.IsNaN(sd) {
		return
	}
	floats.Scale(1/sd, env)
}
