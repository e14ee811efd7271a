// ABOUTME: Tests for the time-stretch engine and backends
// ABOUTME: Covers identity shortcuts, validation, output shape and pitch behaviour
package timewarp

import (
	"errors"
	"math"
	"testing"

	"github.com/harperreed/automashup-go/internal/testtone"
	"github.com/harperreed/automashup-go/pkg/audio"
)

// countingBackend records calls and returns a fixed shape
type countingBackend struct {
	calls    int
	channels int
}

func (b *countingBackend) Name() string { return "counting" }

func (b *countingBackend) Stretch(w audio.Waveform, from, to float64) (audio.Waveform, error) {
	b.calls++
	return b.reshape(w), nil
}

func (b *countingBackend) Shift(w audio.Waveform, factor float64) (audio.Waveform, error) {
	b.calls++
	return b.reshape(w), nil
}

func (b *countingBackend) reshape(w audio.Waveform) audio.Waveform {
	ch := b.channels
	if ch == 0 {
		ch = w.Channels
	}
	return audio.NewWaveform(make([]float64, w.Frames()*ch), w.SampleRate, ch)
}

func TestNewNilBackend(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, audio.ErrDependencyUnavailable) {
		t.Errorf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestIdentityShortcuts(t *testing.T) {
	backend := &countingBackend{}
	engine, err := New(backend)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	w := testtone.Sine(440, 0.5, 0.5, 22050)

	out, err := engine.Stretch(w, 120, 120)
	if err != nil {
		t.Fatalf("stretch failed: %v", err)
	}
	if len(out.Samples) != len(w.Samples) || out.Samples[100] != w.Samples[100] {
		t.Error("expected equal tempos to return the input")
	}

	out, err = engine.ShiftPitch(w, 0)
	if err != nil {
		t.Fatalf("shift failed: %v", err)
	}
	if len(out.Samples) != len(w.Samples) || out.Samples[100] != w.Samples[100] {
		t.Error("expected zero shift to return the input")
	}

	if backend.calls != 0 {
		t.Errorf("expected backend to be skipped, got %d calls", backend.calls)
	}
}

func TestInvalidParameters(t *testing.T) {
	engine, _ := New(&countingBackend{})
	w := testtone.Sine(440, 0.5, 0.5, 22050)

	tests := []struct {
		name string
		run  func() error
	}{
		{"zero source tempo", func() error { _, err := engine.Stretch(w, 0, 120); return err }},
		{"negative target tempo", func() error { _, err := engine.Stretch(w, 120, -1); return err }},
		{"infinite tempo", func() error { _, err := engine.Stretch(w, math.Inf(1), 120); return err }},
		{"nan semitones", func() error { _, err := engine.ShiftPitch(w, math.NaN()); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, audio.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestInvalidWaveform(t *testing.T) {
	engine, _ := New(&countingBackend{})
	_, err := engine.Stretch(audio.NewWaveform(nil, 22050, 1), 120, 100)
	if !errors.Is(err, audio.ErrInvalidAudio) {
		t.Errorf("expected ErrInvalidAudio, got %v", err)
	}
}

func TestChannelMismatch(t *testing.T) {
	engine, _ := New(&countingBackend{channels: 2})
	w := testtone.Sine(440, 0.5, 0.5, 22050)

	_, err := engine.Stretch(w, 120, 100)
	if !errors.Is(err, audio.ErrDependencyUnavailable) {
		t.Errorf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestFrequencyRatio(t *testing.T) {
	tests := []struct {
		semitones float64
		expected  float64
	}{
		{0, 1},
		{12, 2},
		{-12, 0.5},
		{7, 1.4983070768766815},
	}
	for _, tt := range tests {
		if got := FrequencyRatio(tt.semitones); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("%v semitones: expected %v, got %v", tt.semitones, tt.expected, got)
		}
	}
}

// zeroCrossingRate estimates the frequency of a clean sine
func zeroCrossingRate(samples []float64, rate int) float64 {
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] < 0) != (samples[i] < 0) {
			crossings++
		}
	}
	return float64(crossings) / 2 / (float64(len(samples)) / float64(rate))
}

func TestApproxStretchKeepsPitch(t *testing.T) {
	engine, _ := New(NewApprox())
	w := testtone.Sine(440, 0.5, 1, 22050)

	tests := []struct {
		name     string
		from, to float64
	}{
		{"slow down", 120, 60},
		{"speed up", 100, 125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := engine.Stretch(w, tt.from, tt.to)
			if err != nil {
				t.Fatalf("stretch failed: %v", err)
			}
			expectedFrames := int(math.Round(float64(w.Frames()) * tt.from / tt.to))
			if out.Frames() != expectedFrames {
				t.Errorf("expected %d frames, got %d", expectedFrames, out.Frames())
			}
			// Skip the faded first frame
			freq := zeroCrossingRate(out.Samples[2048:], out.SampleRate)
			if math.Abs(freq-440)/440 > 0.05 {
				t.Errorf("expected about 440 Hz, got %.1f", freq)
			}
		})
	}
}

func TestApproxShiftKeepsLength(t *testing.T) {
	engine, _ := New(NewApprox())
	w := testtone.Sine(440, 0.5, 1, 22050)

	out, err := engine.ShiftPitch(w, 12)
	if err != nil {
		t.Fatalf("shift failed: %v", err)
	}
	if out.Frames() != w.Frames() {
		t.Errorf("expected %d frames, got %d", w.Frames(), out.Frames())
	}
	freq := zeroCrossingRate(out.Samples[2048:], out.SampleRate)
	if math.Abs(freq-880)/880 > 0.05 {
		t.Errorf("expected about 880 Hz, got %.1f", freq)
	}
}

func TestApproxShortInput(t *testing.T) {
	engine, _ := New(NewApprox())
	w := testtone.Sine(440, 0.5, 0.01, 22050)

	out, err := engine.Stretch(w, 120, 60)
	if err != nil {
		t.Fatalf("stretch failed: %v", err)
	}
	if out.Frames() != 2*w.Frames() {
		t.Errorf("expected %d frames, got %d", 2*w.Frames(), out.Frames())
	}
}

func TestRubberbandMissingBinary(t *testing.T) {
	_, err := NewRubberband("/nonexistent/automashup/rubberband")
	if !errors.Is(err, audio.ErrDependencyUnavailable) {
		t.Errorf("expected ErrDependencyUnavailable, got %v", err)
	}
}
