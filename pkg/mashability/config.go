// ABOUTME: Search and weighting configuration for the mashability scorer
// ABOUTME: Defaults cover eight beats of offset and half an octave of transposition
package mashability

import (
	"fmt"
	"math"

	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/features"
)

const (
	DefaultSearchWindowBeats = 8
	DefaultMaxSemitoneShift  = 6
	DefaultMinOverlapBeats   = 1
)

// Weights combines the candidate terms. Chroma and Spectrum are normalised by
// their sum; TempoPenalty is subtracted per octave of tempo difference.
type Weights struct {
	Chroma       float64
	Spectrum     float64
	TempoPenalty float64
}

// Config controls the candidate search
type Config struct {
	SearchWindowBeats int
	MaxSemitoneShift  int
	MinOverlapBeats   int
	Weights           Weights
	Workers           int // 0 uses one worker per CPU
}

// DefaultConfig returns the standard search settings
func DefaultConfig() Config {
	return Config{
		SearchWindowBeats: DefaultSearchWindowBeats,
		MaxSemitoneShift:  DefaultMaxSemitoneShift,
		MinOverlapBeats:   DefaultMinOverlapBeats,
		Weights: Weights{
			Chroma:   1,
			Spectrum: 0.5,
		},
	}
}

// Validate checks ranges and weights
func (c Config) Validate() error {
	if c.SearchWindowBeats < 0 {
		return fmt.Errorf("%w: search window %d beats is negative", audio.ErrInvalidParameter, c.SearchWindowBeats)
	}
	if c.MaxSemitoneShift < 0 || c.MaxSemitoneShift >= features.PitchClasses {
		return fmt.Errorf("%w: semitone range %d outside [0, %d]", audio.ErrInvalidParameter, c.MaxSemitoneShift, features.PitchClasses-1)
	}
	if c.MinOverlapBeats < 1 {
		return fmt.Errorf("%w: minimum overlap must be at least 1 beat, got %d", audio.ErrInvalidParameter, c.MinOverlapBeats)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", audio.ErrInvalidParameter, c.Workers)
	}
	w := c.Weights
	for name, v := range map[string]float64{"chroma": w.Chroma, "spectrum": w.Spectrum, "tempo penalty": w.TempoPenalty} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s weight %v must be finite and non-negative", audio.ErrInvalidParameter, name, v)
		}
	}
	if w.Chroma+w.Spectrum == 0 {
		return fmt.Errorf("%w: chroma and spectrum weights are both zero", audio.ErrInvalidParameter)
	}
	return nil
}
