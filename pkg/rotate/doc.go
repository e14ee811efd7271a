// ABOUTME: Package documentation for rotate
// ABOUTME: Beat-based circular rotation

// Package rotate aligns phrase boundaries by rotating a waveform so a chosen
// beat becomes the first sample. The tail wraps to the head and the length
// never changes.
package rotate
