// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Waveform, BeatGrid, error kinds and level helpers
// Package audio provides the types every analysis and rendering stage shares.
//
// This package defines:
//   - Waveform: interleaved float64 samples with a sample rate and channel count
//   - BeatGrid: strictly increasing beat timestamps in seconds
//   - ErrInvalidAudio, ErrInsufficientAudio, ErrInvalidParameter, ErrDependencyUnavailable
//
// It also provides level helpers (RMS, dBFS, gain to a target level) and
// conversions between float samples and integer PCM.
//
// Example:
//
//	w := audio.NewWaveform(samples, 44100, 2)
//	if err := w.Validate(); err != nil {
//	    return err
//	}
//	gain := audio.GainToTarget(audio.Loudness(w), -20)
//	audio.ApplyGain(w.Samples, gain)
package audio
