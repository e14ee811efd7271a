// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides Output interface, the Oto implementation and a playback loop
// Package output plays rendered waveforms.
//
// Example:
//
//	out := output.NewOto()
//	defer out.Close()
//	err := output.Play(ctx, out, w, output.DefaultChunk, nil)
//	err = out.Drain(ctx)
package output
