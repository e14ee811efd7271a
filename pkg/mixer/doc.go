// ABOUTME: Package documentation for mixer
// ABOUTME: Summarises the rendering steps

// Package mixer renders the final mashup waveform. B is re-timed to A's tempo,
// transposed, delayed onto A's beat grid and both tracks are brought to the same
// RMS level before they are summed and soft-limited.
package mixer
