// ABOUTME: Feature extraction: beat grid plus beat-synchronous chroma and spectrum
// ABOUTME: Seeds the beat tracker from a tempo hint or the tempo estimator
package features

import (
	"fmt"

	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/dsp"
	"github.com/harperreed/automashup-go/pkg/tempo"
)

// Features is everything the scorer and mixer need from one track
type Features struct {
	ID       string
	Tempo    float64
	Beats    audio.BeatGrid
	Chroma   [][]float64 // len(Beats)-1 rows of PitchClasses values
	Spectrum [][]float64 // len(Beats)-1 rows of band magnitudes
}

// Rows returns the number of beat-synchronous rows
func (f Features) Rows() int {
	return len(f.Chroma)
}

// Extractor turns waveforms into Features
type Extractor struct {
	Tempo         *tempo.Estimator
	Tightness     float64
	SpectrumBands int
}

// New creates an extractor with default settings
func New() *Extractor {
	return &Extractor{
		Tempo:         tempo.New(),
		Tightness:     DefaultTightness,
		SpectrumBands: DefaultSpectrumBands,
	}
}

// Extract detects beats and computes beat-synchronous features. The beat
// period comes from the tempo estimator.
func (e *Extractor) Extract(w audio.Waveform) (Features, error) {
	return e.extract(w, 0)
}

// ExtractWithHint is Extract with the beat period taken from bpm
func (e *Extractor) ExtractWithHint(w audio.Waveform, bpm float64) (Features, error) {
	if err := tempo.ValidateBPM(bpm); err != nil {
		return Features{}, err
	}
	return e.extract(w, bpm)
}

func (e *Extractor) extract(w audio.Waveform, hint float64) (Features, error) {
	if err := w.Validate(); err != nil {
		return Features{}, err
	}
	x, err := dsp.AnalysisSignal(w)
	if err != nil {
		return Features{}, err
	}

	spec := dsp.AnalysisSpectrogram(x)
	env := dsp.OnsetEnvelope(spec)
	if dsp.Energy(env) <= 0 {
		return Features{}, fmt.Errorf("%w: no onsets detected", audio.ErrInsufficientAudio)
	}

	bpm := hint
	if bpm == 0 {
		res, err := e.Tempo.FromEnvelope(env, spec.FrameRate())
		if err != nil {
			return Features{}, err
		}
		bpm = res.BPM
	}

	period := 60 * spec.FrameRate() / bpm
	frames := TrackBeats(env, period, e.Tightness)
	if len(frames) < 2 {
		return Features{}, fmt.Errorf("%w: detected %d beats, need at least 2", audio.ErrInsufficientAudio, len(frames))
	}

	beats := make(audio.BeatGrid, len(frames))
	for i, t := range frames {
		beats[i] = spec.FrameTime(t)
	}

	times := make([]float64, len(spec.Frames))
	for t := range times {
		times[t] = spec.FrameTime(t)
	}

	return Features{
		ID:       w.ID,
		Tempo:    bpm,
		Beats:    beats,
		Chroma:   BeatSync(Chroma(spec), times, beats),
		Spectrum: BeatSync(Spectrum(spec, e.SpectrumBands), times, beats),
	}, nil
}
