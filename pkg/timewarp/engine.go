// ABOUTME: Time-stretch and pitch-shift engine over a pluggable backend
// ABOUTME: Validates inputs, computes ratios and checks backend output shape
package timewarp

import (
	"fmt"
	"math"

	"github.com/harperreed/automashup-go/pkg/audio"
)

// Backend performs the actual resynthesis
type Backend interface {
	// Name identifies the backend in logs
	Name() string

	// Stretch changes duration by tempoFrom/tempoTo while keeping pitch
	Stretch(w audio.Waveform, tempoFrom, tempoTo float64) (audio.Waveform, error)

	// Shift multiplies every frequency by factor while keeping duration
	Shift(w audio.Waveform, factor float64) (audio.Waveform, error)
}

// Engine validates requests and delegates them to a Backend
type Engine struct {
	backend Backend
}

// New creates an engine. A nil backend is a missing dependency.
func New(backend Backend) (*Engine, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: no time-stretch backend", audio.ErrDependencyUnavailable)
	}
	return &Engine{backend: backend}, nil
}

// Backend returns the backend name
func (e *Engine) Backend() string {
	return e.backend.Name()
}

// Stretch re-times w from tempoFrom to tempoTo BPM. Equal tempos return w unchanged.
func (e *Engine) Stretch(w audio.Waveform, tempoFrom, tempoTo float64) (audio.Waveform, error) {
	if !positive(tempoFrom) || !positive(tempoTo) {
		return audio.Waveform{}, fmt.Errorf("%w: tempos must be positive and finite, got %v -> %v", audio.ErrInvalidParameter, tempoFrom, tempoTo)
	}
	if err := w.Validate(); err != nil {
		return audio.Waveform{}, err
	}
	if tempoFrom == tempoTo {
		return w, nil
	}

	out, err := e.backend.Stretch(w, tempoFrom, tempoTo)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to stretch with %s: %w", e.backend.Name(), err)
	}
	return e.check(w, out)
}

// ShiftPitch transposes w by semitones. Zero returns w unchanged.
func (e *Engine) ShiftPitch(w audio.Waveform, semitones float64) (audio.Waveform, error) {
	if math.IsNaN(semitones) || math.IsInf(semitones, 0) {
		return audio.Waveform{}, fmt.Errorf("%w: semitone shift %v is not finite", audio.ErrInvalidParameter, semitones)
	}
	if err := w.Validate(); err != nil {
		return audio.Waveform{}, err
	}
	if semitones == 0 {
		return w, nil
	}

	out, err := e.backend.Shift(w, FrequencyRatio(semitones))
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to shift pitch with %s: %w", e.backend.Name(), err)
	}
	return e.check(w, out)
}

func (e *Engine) check(in, out audio.Waveform) (audio.Waveform, error) {
	if out.Channels != in.Channels {
		return audio.Waveform{}, fmt.Errorf("%w: %s returned %d channels, expected %d", audio.ErrDependencyUnavailable, e.backend.Name(), out.Channels, in.Channels)
	}
	if err := out.Validate(); err != nil {
		return audio.Waveform{}, fmt.Errorf("%s returned unusable audio: %w", e.backend.Name(), err)
	}
	out.ID = in.ID
	return out, nil
}

// FrequencyRatio converts semitones to a frequency multiplier
func FrequencyRatio(semitones float64) float64 {
	return math.Pow(2, semitones/12)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
