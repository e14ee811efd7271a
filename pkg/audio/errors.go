// ABOUTME: Error kinds shared by every analysis and rendering package
// ABOUTME: Callers match them with errors.Is after wrapping with fmt.Errorf("%w")
package audio

import "errors"

var (
	// ErrInvalidAudio is returned for empty, malformed or non-finite waveforms
	ErrInvalidAudio = errors.New("invalid audio")

	// ErrInsufficientAudio is returned when audio is too short or too quiet for a computation
	ErrInsufficientAudio = errors.New("insufficient audio")

	// ErrInvalidParameter is returned for out-of-range tempos, shifts, offsets and configuration
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDependencyUnavailable is returned when a stretch backend, decoder or other collaborator is missing
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
