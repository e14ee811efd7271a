// ABOUTME: Tempo estimation by autocorrelation of the onset envelope
// ABOUTME: Supports an optional hint that corrects half/double tempo octave errors
package tempo

import (
	"fmt"
	"math"

	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/dsp"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// MinBPM and MaxBPM bound the autocorrelation search
	MinBPM = 40.0
	MaxBPM = 240.0

	// MaxHintBPM is the largest tempo accepted from a caller
	MaxHintBPM = 300.0

	// DefaultOctaveTolerance is the relative distance to half/double the hint that triggers rescaling
	DefaultOctaveTolerance = 0.08
)

// Result is an estimated tempo and the normalised autocorrelation at its lag
type Result struct {
	BPM        float64
	Confidence float64
}

// Estimator estimates tempo from audio
type Estimator struct {
	MinBPM          float64
	MaxBPM          float64
	OctaveTolerance float64
}

// New creates an estimator with the default search range
func New() *Estimator {
	return &Estimator{
		MinBPM:          MinBPM,
		MaxBPM:          MaxBPM,
		OctaveTolerance: DefaultOctaveTolerance,
	}
}

// ValidateBPM rejects non-finite, non-positive and implausibly fast tempos
func ValidateBPM(bpm float64) error {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return fmt.Errorf("%w: tempo %v is not finite", audio.ErrInvalidParameter, bpm)
	}
	if bpm <= 0 {
		return fmt.Errorf("%w: tempo %v must be positive", audio.ErrInvalidParameter, bpm)
	}
	if bpm > MaxHintBPM {
		return fmt.Errorf("%w: tempo %v exceeds %v BPM", audio.ErrInvalidParameter, bpm, MaxHintBPM)
	}
	return nil
}

// Estimate returns the tempo of w
func (e *Estimator) Estimate(w audio.Waveform) (Result, error) {
	env, err := envelope(w)
	if err != nil {
		return Result{}, err
	}
	return e.FromEnvelope(env, frameRate())
}

// EstimateWithHint returns the tempo of w, rescaled to the hint's octave when
// the raw estimate lands near half or double the hint
func (e *Estimator) EstimateWithHint(w audio.Waveform, hint float64) (Result, error) {
	if err := ValidateBPM(hint); err != nil {
		return Result{}, err
	}
	res, err := e.Estimate(w)
	if err != nil {
		return Result{}, err
	}
	res.BPM = e.CorrectOctave(res.BPM, hint)
	return res, nil
}

// CorrectOctave rescales estimate into the hint's octave when it is within
// tolerance of half or double the hint
func (e *Estimator) CorrectOctave(estimate, hint float64) float64 {
	tol := e.OctaveTolerance
	switch {
	case math.Abs(estimate*2-hint) <= tol*hint:
		return estimate * 2
	case math.Abs(estimate/2-hint) <= tol*hint:
		return estimate / 2
	}
	return estimate
}

// FromEnvelope estimates tempo from an onset envelope sampled at frameRate frames per second
func (e *Estimator) FromEnvelope(env []float64, frameRate float64) (Result, error) {
	if len(env) == 0 || dsp.Energy(env) <= 0 {
		return Result{}, fmt.Errorf("%w: no onset energy", audio.ErrInsufficientAudio)
	}

	lagMin := int(math.Ceil(60 * frameRate / e.MaxBPM))
	if lagMin < 1 {
		lagMin = 1
	}
	lagMax := int(math.Floor(60 * frameRate / e.MinBPM))
	if lagMax > len(env)/2 {
		lagMax = len(env) / 2
	}
	if lagMax <= lagMin {
		return Result{}, fmt.Errorf("%w: %d envelope frames cannot cover a beat period", audio.ErrInsufficientAudio, len(env))
	}

	x := smooth(env)
	floats.AddConst(-stat.Mean(x, nil), x)

	ac0 := floats.Dot(x, x)
	if ac0 <= 0 {
		return Result{}, fmt.Errorf("%w: onset envelope is flat", audio.ErrInsufficientAudio)
	}

	ac := make([]float64, lagMax+2)
	for lag := lagMin - 1; lag <= lagMax+1 && lag < len(x); lag++ {
		if lag < 1 {
			continue
		}
		ac[lag] = floats.Dot(x[:len(x)-lag], x[lag:]) / ac0
	}

	// Plain argmax over the tempo range; exact ties keep the shorter lag.
	// Octave errors are left to CorrectOctave.
	best := lagMin
	for lag := lagMin + 1; lag <= lagMax; lag++ {
		if ac[lag] > ac[best] {
			best = lag
		}
	}

	period := refineLag(ac, best, lagMin, lagMax)
	return Result{
		BPM:        60 * frameRate / period,
		Confidence: math.Max(0, math.Min(1, ac[best])),
	}, nil
}

// smooth applies a [1 2 1]/4 kernel so peaks split across adjacent frames still correlate
func smooth(env []float64) []float64 {
	out := make([]float64, len(env))
	for i := range env {
		sum := 2 * env[i]
		w := 2.0
		if i > 0 {
			sum += env[i-1]
			w++
		}
		if i < len(env)-1 {
			sum += env[i+1]
			w++
		}
		out[i] = sum / w
	}
	return out
}

// refineLag fits a parabola through the peak and its neighbours
func refineLag(ac []float64, lag, lagMin, lagMax int) float64 {
	if lag <= lagMin || lag >= lagMax {
		return float64(lag)
	}
	a, b, c := ac[lag-1], ac[lag], ac[lag+1]
	den := a - 2*b + c
	if den >= 0 {
		return float64(lag)
	}
	shift := 0.5 * (a - c) / den
	if shift > 0.5 || shift < -0.5 {
		return float64(lag)
	}
	return float64(lag) + shift
}

func envelope(w audio.Waveform) ([]float64, error) {
	if len(w.Samples) == 0 {
		return nil, fmt.Errorf("%w: waveform is empty", audio.ErrInsufficientAudio)
	}
	x, err := dsp.AnalysisSignal(w)
	if err != nil {
		return nil, err
	}
	return dsp.OnsetEnvelope(dsp.AnalysisSpectrogram(x)), nil
}

func frameRate() float64 {
	return float64(dsp.AnalysisRate) / float64(dsp.HopSize)
}
