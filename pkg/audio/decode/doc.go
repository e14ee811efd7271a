// ABOUTME: Audio decoder package for multiple codec support
// ABOUTME: Provides Decoder interface and implementations for WAV, FLAC, MP3, Opus
// Package decode loads audio files into float64 waveforms.
//
// Supports: WAV (PCM and float), FLAC, MP3, Ogg Opus
//
// All decoders implement the Decoder interface and produce interleaved
// samples in the range [-1, 1] at the file's native sample rate.
//
// Example:
//
//	w, err := decode.File("song.flac")
//	if err != nil {
//	    return err
//	}
package decode
