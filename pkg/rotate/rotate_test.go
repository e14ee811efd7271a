// ABOUTME: Tests for beat rotation
// ABOUTME: Checks identity, invertibility, wrapping and error cases
package rotate

import (
	"errors"
	"testing"

	"github.com/harperreed/automashup-go/pkg/audio"
)

func ramp(frames, channels, rate int) audio.Waveform {
	samples := make([]float64, frames*channels)
	for i := range samples {
		samples[i] = float64(i)
	}
	return audio.NewWaveform(samples, rate, channels)
}

func equal(a, b audio.Waveform) bool {
	if len(a.Samples) != len(b.Samples) || a.Channels != b.Channels || a.SampleRate != b.SampleRate {
		return false
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			return false
		}
	}
	return true
}

var testGrid = audio.BeatGrid{0.1, 0.35, 0.6, 0.85}

func TestRotateZeroIsIdentity(t *testing.T) {
	w := ramp(1000, 2, 1000)
	out, err := Rotate(w, testGrid, 0)
	if err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	if !equal(out, w) {
		t.Error("expected rotation by 0 to return the input")
	}
}

func TestRotateMovesBeatToStart(t *testing.T) {
	w := ramp(1000, 1, 1000)
	out, err := Rotate(w, testGrid, 1)
	if err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	if out.Samples[0] != 350 {
		t.Errorf("expected sample 350 at start, got %v", out.Samples[0])
	}
	if out.Samples[650] != 0 {
		t.Errorf("expected the head wrapped to 650, got %v", out.Samples[650])
	}
	if out.Frames() != w.Frames() {
		t.Errorf("expected %d frames, got %d", w.Frames(), out.Frames())
	}
}

func TestRotateInvertible(t *testing.T) {
	w := ramp(997, 2, 1000)
	for _, n := range []int{1, 2, 3, 4, 5, 9, -1, -6} {
		fwd, err := Rotate(w, testGrid, n)
		if err != nil {
			t.Fatalf("rotate %d failed: %v", n, err)
		}
		back, err := Rotate(fwd, testGrid, -n)
		if err != nil {
			t.Fatalf("rotate %d failed: %v", -n, err)
		}
		if !equal(back, w) {
			t.Errorf("n=%d: expected the round trip to reproduce the input", n)
		}
	}
}

func TestRotateWraps(t *testing.T) {
	w := ramp(1000, 1, 1000)
	a, _ := Rotate(w, testGrid, 2)
	b, _ := Rotate(w, testGrid, 2+len(testGrid))
	if !equal(a, b) {
		t.Error("expected beat index to wrap modulo the grid length")
	}
}

func TestRotateKeepsFramesTogether(t *testing.T) {
	w := ramp(1000, 2, 1000)
	out, _ := Rotate(w, testGrid, 1)
	// frame 350 of a stereo ramp holds samples 700 and 701
	if out.Samples[0] != 700 || out.Samples[1] != 701 {
		t.Errorf("expected [700 701], got %v", out.Samples[:2])
	}
}

func TestRotateErrors(t *testing.T) {
	tests := []struct {
		name     string
		w        audio.Waveform
		grid     audio.BeatGrid
		expected error
	}{
		{"empty waveform", audio.NewWaveform(nil, 1000, 1), testGrid, audio.ErrInvalidAudio},
		{"single beat", ramp(100, 1, 1000), audio.BeatGrid{0.01}, audio.ErrInsufficientAudio},
		{"no beats", ramp(100, 1, 1000), nil, audio.ErrInsufficientAudio},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Rotate(tt.w, tt.grid, 1); !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}
