// ABOUTME: Tests for the mashup pipeline
// ABOUTME: Uses a resampling stub backend so no external tools are needed
package mashup

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/harperreed/automashup-go/internal/testtone"
	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/audio/resample"
	"github.com/harperreed/automashup-go/pkg/features"
)

// stubBackend stretches by plain resampling and leaves pitch alone
type stubBackend struct{}

func (stubBackend) Name() string { return "stub" }

func (stubBackend) Stretch(w audio.Waveform, from, to float64) (audio.Waveform, error) {
	frames := int(math.Round(float64(w.Frames()) * from / to))
	return w.WithSamples(resample.ToLength(w.Samples, w.Channels, frames)), nil
}

func (stubBackend) Shift(w audio.Waveform, factor float64) (audio.Waveform, error) {
	return w.Clone(), nil
}

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(features.New(), stubBackend{}, DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}
	return p
}

func track(bpm, seconds float64, chord []float64, id string) audio.Waveform {
	opts := testtone.DefaultOptions()
	opts.BPM = bpm
	opts.Seconds = seconds
	opts.Chord = chord
	w := testtone.Track(opts)
	w.ID = id
	return w
}

func TestNewMissingDependencies(t *testing.T) {
	if _, err := New(nil, stubBackend{}, DefaultConfig()); !errors.Is(err, audio.ErrDependencyUnavailable) {
		t.Errorf("expected ErrDependencyUnavailable for nil extractor, got %v", err)
	}
	if _, err := New(features.New(), nil, DefaultConfig()); !errors.Is(err, audio.ErrDependencyUnavailable) {
		t.Errorf("expected ErrDependencyUnavailable for nil backend, got %v", err)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scoring.MaxSemitoneShift = -1
	if _, err := New(features.New(), stubBackend{}, cfg); !errors.Is(err, audio.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestMashabilityIdenticalTracks(t *testing.T) {
	p := newPipeline(t)
	a := track(120, 10, testtone.AMinor, "a")

	score, err := p.Mashability(context.Background(), a, a, 120, 120)
	if err != nil {
		t.Fatalf("mashability failed: %v", err)
	}
	if math.Abs(score-1) > 1e-9 {
		t.Errorf("expected score 1, got %v", score)
	}
}

func TestMashabilityInvalidBPM(t *testing.T) {
	p := newPipeline(t)
	a := track(120, 4, testtone.AMinor, "a")

	tests := []struct {
		name       string
		bpmA, bpmB float64
	}{
		{"negative", -10, 120},
		{"zero", 0, 120},
		{"extremely high", 1000, 1000},
		{"nan", 120, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Mashability(context.Background(), a, a, tt.bpmA, tt.bpmB)
			if !errors.Is(err, audio.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestMashabilityBadAudio(t *testing.T) {
	p := newPipeline(t)
	normal := track(120, 2, testtone.AMinor, "a")

	tests := []struct {
		name     string
		a, b     audio.Waveform
		expected error
	}{
		{"very short", testtone.Noise(100, 1, 44100), testtone.Noise(100, 2, 44100), audio.ErrInsufficientAudio},
		{"empty", audio.NewWaveform(nil, 44100, 1), normal, audio.ErrInvalidAudio},
		{"zero value", audio.Waveform{}, normal, audio.ErrInvalidAudio},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Mashability(context.Background(), tt.a, tt.b, 120, 130)
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestMashabilityAgainstNoise(t *testing.T) {
	p := newPipeline(t)
	a := track(120, 10, testtone.AMinor, "a")
	noise := testtone.Noise(44100, 7, 44100)

	for _, bpm := range []float64{90, 120, 150} {
		score, err := p.Mashability(context.Background(), a, noise, 120, bpm)
		if err != nil {
			t.Fatalf("bpm %v: mashability failed: %v", bpm, err)
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			t.Errorf("bpm %v: expected finite score, got %v", bpm, score)
		}
	}
}

func TestGenerate(t *testing.T) {
	p := newPipeline(t)
	a := track(120, 8, testtone.AMinor, "a")
	b := track(100, 8, testtone.CMajor, "b")

	m, err := p.Generate(context.Background(), a, b, 120, 100)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := m.Waveform.Validate(); err != nil {
		t.Fatalf("expected valid output, got %v", err)
	}
	if m.Waveform.SampleRate != a.SampleRate || m.Waveform.Channels != a.Channels {
		t.Errorf("expected %d Hz x %d, got %d Hz x %d", a.SampleRate, a.Channels, m.Waveform.SampleRate, m.Waveform.Channels)
	}
	if m.Result.IDA != "a" || m.Result.IDB != "b" {
		t.Errorf("expected ids a/b, got %s/%s", m.Result.IDA, m.Result.IDB)
	}
	if math.Abs(m.LoudnessA-m.LoudnessB) > 0.5 {
		t.Errorf("expected matched loudness, got %.2f and %.2f", m.LoudnessA, m.LoudnessB)
	}
}

func TestGenerateWithRotation(t *testing.T) {
	a := track(120, 6, testtone.AMinor, "a")

	plain, err := newPipeline(t).Generate(context.Background(), a, a, 120, 120)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	cfg := DefaultConfig()
	cfg.RotateBeats = 2
	p, err := New(features.New(), stubBackend{}, cfg)
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}
	rotated, err := p.Generate(context.Background(), a, a, 120, 120)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if rotated.Waveform.Frames() != plain.Waveform.Frames() {
		t.Errorf("expected %d frames, got %d", plain.Waveform.Frames(), rotated.Waveform.Frames())
	}
	if rotated.Waveform.ID == "" {
		t.Error("expected rotated mashup to keep its ID")
	}
}

func TestRank(t *testing.T) {
	p := newPipeline(t)
	base, err := p.Analyze(track(120, 8, testtone.AMinor, "base"), 120)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	same, err := p.Analyze(track(120, 8, testtone.AMinor, "same"), 120)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	other, err := p.Analyze(track(120, 8, testtone.CMajor, "other"), 120)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	empty := features.Features{ID: "empty"}

	ranked, err := p.Rank(context.Background(), base, []features.Features{other, empty, same})
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked candidates, got %d", len(ranked))
	}
	if ranked[0].ID != "same" {
		t.Errorf("expected same first, got %s", ranked[0].ID)
	}
	if ranked[0].Result.Best.Score < ranked[1].Result.Best.Score {
		t.Errorf("expected descending scores, got %v then %v", ranked[0].Result.Best.Score, ranked[1].Result.Best.Score)
	}
}

func TestAdjustTempo(t *testing.T) {
	p := newPipeline(t)
	w := track(120, 10, testtone.AMinor, "a")

	out, err := p.AdjustTempo(w, 100)
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	ratio := float64(out.Frames()) / float64(w.Frames())
	if math.Abs(ratio-1.2) > 0.05 {
		t.Errorf("expected about 1.2x length, got %.3f", ratio)
	}

	if _, err := p.AdjustTempo(audio.NewWaveform(nil, 22050, 1), 120); !errors.Is(err, audio.ErrInvalidAudio) {
		t.Errorf("expected ErrInvalidAudio for empty input, got %v", err)
	}
	if _, err := p.AdjustTempo(w, 0); !errors.Is(err, audio.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for zero tempo, got %v", err)
	}
}

func TestMatchLoudness(t *testing.T) {
	p := newPipeline(t)
	w := testtone.Sine(440, 0.9, 1, 22050)

	for _, target := range []float64{-10, -20, -30} {
		out, err := p.MatchLoudness(w, target)
		if err != nil {
			t.Fatalf("match failed: %v", err)
		}
		if got := audio.Loudness(out); math.Abs(got-target) > 1e-6 {
			t.Errorf("expected %v dBFS, got %v", target, got)
		}
	}
}
