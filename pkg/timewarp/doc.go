// ABOUTME: Package documentation for timewarp
// ABOUTME: Describes the engine and its two backends

// Package timewarp changes the tempo or pitch of a waveform independently.
//
// The Engine validates requests and delegates the resynthesis to a Backend.
// Rubberband shells out to the rubberband CLI and is the production choice.
// Approx is a pure-Go WSOLA stretcher used when the CLI is missing and in tests.
//
// Equal tempos and a zero semitone shift return the input unchanged without
// touching the backend.
package timewarp
