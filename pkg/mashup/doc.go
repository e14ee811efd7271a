// ABOUTME: Package documentation for mashup
// ABOUTME: Describes the request flow from waveforms to a rendered mix

// Package mashup is the entry point for mashability and generation requests.
//
// A Pipeline is built from a feature extractor and a time-stretch backend:
//
//	p, err := mashup.New(features.New(), timewarp.NewApprox(), mashup.DefaultConfig())
//	score, err := p.Mashability(ctx, a, b, 120, 128)
//	m, err := p.Generate(ctx, a, b, 120, 128)
//
// Each request extracts features for both tracks, searches the offset and
// transposition space, then stretches, transposes and mixes the second track
// onto the first.
package mashup
