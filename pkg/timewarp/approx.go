// ABOUTME: Pure-Go approximation backend using WSOLA overlap-add
// ABOUTME: Stretch keeps pitch; shift is stretch followed by resampling to the original length
package timewarp

import (
	"fmt"
	"math"

	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/audio/resample"
	"github.com/mjibson/go-dsp/window"
)

const (
	// DefaultFrameSeconds is the WSOLA analysis frame length
	DefaultFrameSeconds = 0.046

	// correlation is evaluated on every corrStride-th sample of the overlap
	corrStride = 8
	// candidate offsets are tried every searchStep samples
	searchStep = 2
)

// Approx is a waveform-similarity overlap-add stretcher. It needs no external
// tools and is good enough for previews and tests.
type Approx struct {
	FrameSeconds float64
}

// NewApprox creates the approximation backend
func NewApprox() *Approx {
	return &Approx{FrameSeconds: DefaultFrameSeconds}
}

// Name identifies the backend
func (a *Approx) Name() string {
	return "approx"
}

// Stretch scales duration by tempoFrom/tempoTo
func (a *Approx) Stretch(w audio.Waveform, tempoFrom, tempoTo float64) (audio.Waveform, error) {
	if tempoFrom <= 0 || tempoTo <= 0 {
		return audio.Waveform{}, fmt.Errorf("%w: tempos %v -> %v", audio.ErrInvalidParameter, tempoFrom, tempoTo)
	}
	return w.WithSamples(a.wsola(w, tempoFrom/tempoTo)), nil
}

// Shift stretches by factor and then resamples back to the original length,
// which multiplies every frequency by factor
func (a *Approx) Shift(w audio.Waveform, factor float64) (audio.Waveform, error) {
	if factor <= 0 {
		return audio.Waveform{}, fmt.Errorf("%w: frequency factor %v", audio.ErrInvalidParameter, factor)
	}
	stretched := a.wsola(w, factor)
	return w.WithSamples(resample.ToLength(stretched, w.Channels, w.Frames())), nil
}

func (a *Approx) frameSize(rate int) int {
	target := a.FrameSeconds * float64(rate)
	n := 64
	for float64(n)*1.5 < target {
		n *= 2
	}
	return n
}

// wsola returns interleaved samples about alpha times as long as w
func (a *Approx) wsola(w audio.Waveform, alpha float64) []float64 {
	ch := w.Channels
	inFrames := w.Frames()
	outFrames := int(math.Round(float64(inFrames) * alpha))
	if outFrames < 1 {
		outFrames = 1
	}

	n := a.frameSize(w.SampleRate)
	if inFrames < n {
		// Too short to window; fall back to plain resampling
		return resample.ToLength(w.Samples, ch, outFrames)
	}

	hs := n / 2
	ha := float64(hs) / alpha
	tolerance := hs / 2
	maxStart := inFrames - n

	mono := w.Mono()
	win := window.Hann(n)
	out := make([]float64, (outFrames+n)*ch)
	wsum := make([]float64, outFrames+n)

	prev := 0
	for k := 0; k*hs < outFrames; k++ {
		pos := 0
		if k > 0 {
			pos = clampInt(int(math.Round(float64(k)*ha)), 0, maxStart)
			natural := prev + hs
			if natural+hs <= inFrames {
				pos = bestOffset(mono, natural, pos, tolerance, hs, maxStart)
			}
		}

		outStart := k * hs
		for i := 0; i < n; i++ {
			src := pos + i
			dst := outStart + i
			if src >= inFrames || dst >= len(wsum) {
				break
			}
			for c := 0; c < ch; c++ {
				out[dst*ch+c] += win[i] * w.Samples[src*ch+c]
			}
			wsum[dst] += win[i]
		}
		prev = pos
	}

	for i := 0; i < outFrames; i++ {
		if wsum[i] > 1e-8 {
			for c := 0; c < ch; c++ {
				out[i*ch+c] /= wsum[i]
			}
		}
	}
	return out[:outFrames*ch]
}

// bestOffset searches around nominal for the segment most similar to the natural continuation
func bestOffset(x []float64, natural, nominal, tolerance, overlap, maxStart int) int {
	best := nominal
	bestScore := math.Inf(-1)
	lo := clampInt(nominal-tolerance, 0, maxStart)
	hi := clampInt(nominal+tolerance, 0, maxStart)
	for cand := lo; cand <= hi; cand += searchStep {
		var score float64
		for i := 0; i < overlap; i += corrStride {
			score += x[cand+i] * x[natural+i]
		}
		if score > bestScore {
			bestScore = score
			best = cand
		}
	}
	return best
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
