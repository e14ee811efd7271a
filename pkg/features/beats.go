// ABOUTME: Dynamic-programming beat tracker over an onset envelope
// ABOUTME: Trades onset strength against deviation from a target beat period
package features

import (
	"math"

	"github.com/harperreed/automashup-go/pkg/dsp"
)

// DefaultTightness weights the log-interval transition penalty
const DefaultTightness = 100.0

// tieEpsilon is the relative cumulative-score difference treated as a tie
const tieEpsilon = 1e-9

// TrackBeats returns beat positions as envelope frame indices. period is the
// target inter-beat interval in frames.
func TrackBeats(env []float64, period, tightness float64) []int {
	n := len(env)
	if n == 0 || period <= 0 {
		return nil
	}

	local := localScore(env, period)

	cum := make([]float64, n)
	back := make([]int, n)
	minGap := int(math.Round(period / 2))
	if minGap < 1 {
		minGap = 1
	}
	maxGap := int(math.Round(2 * period))

	for t := 0; t < n; t++ {
		back[t] = -1
		best := math.Inf(-1)
		for prev := t - maxGap; prev <= t-minGap; prev++ {
			if prev < 0 {
				continue
			}
			d := math.Log(float64(t-prev) / period)
			score := cum[prev] - tightness*d*d
			if score > best {
				best = score
				back[t] = prev
			}
		}
		if back[t] >= 0 {
			cum[t] = local[t] + best
		} else {
			cum[t] = local[t]
		}
	}

	// Candidate end beats lie within the final period
	start := n - int(math.Ceil(period))
	if start < 0 {
		start = 0
	}
	top := math.Inf(-1)
	for t := start; t < n; t++ {
		if cum[t] > top {
			top = cum[t]
		}
	}

	tol := tieEpsilon * math.Max(1, math.Abs(top))
	var beats []int
	bestDev := math.Inf(1)
	for t := start; t < n; t++ {
		if top-cum[t] > tol {
			continue
		}
		path := backtrack(back, t)
		dev := math.Abs(medianInterval(path) - period)
		if beats == nil || dev < bestDev {
			beats = path
			bestDev = dev
		}
	}
	return beats
}

// localScore standardises the envelope and smooths it with a Gaussian of width period/32
func localScore(env []float64, period float64) []float64 {
	x := make([]float64, len(env))
	copy(x, env)
	dsp.Standardize(x)

	half := int(math.Round(period))
	if half < 1 {
		half = 1
	}
	kernel := make([]float64, 2*half+1)
	for i := range kernel {
		u := float64(i-half) * 32 / period
		kernel[i] = math.Exp(-0.5 * u * u)
	}

	out := make([]float64, len(x))
	for t := range x {
		var sum float64
		for i, k := range kernel {
			j := t + i - half
			if j >= 0 && j < len(x) {
				sum += k * x[j]
			}
		}
		out[t] = sum
	}
	return out
}

func backtrack(back []int, end int) []int {
	var rev []int
	for t := end; t >= 0; t = back[t] {
		rev = append(rev, t)
	}
	path := make([]int, len(rev))
	for i, t := range rev {
		path[len(rev)-1-i] = t
	}
	return path
}

func medianInterval(path []int) float64 {
	if len(path) < 2 {
		return math.Inf(1)
	}
	d := make([]float64, len(path)-1)
	for i := range d {
		d[i] = float64(path[i+1] - path[i])
	}
	return dsp.Median(d)
}
