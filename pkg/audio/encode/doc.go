// ABOUTME: Audio encoder package for persisting rendered waveforms
// ABOUTME: Provides Encoder interface and implementations for WAV and FLAC
// Package encode writes waveforms to audio files.
//
// Supports: WAV (16-bit, 24-bit PCM and 32-bit float), FLAC (16-bit and 24-bit)
//
// Example:
//
//	if err := encode.File("mashup.flac", w, 16); err != nil {
//	    return err
//	}
package encode
