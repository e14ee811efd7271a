// ABOUTME: Tests for beat tracking and beat-synchronous features
// ABOUTME: Synthetic envelopes, sine chroma and click-track extraction
package features

import (
	"errors"
	"math"
	"testing"

	"github.com/harperreed/automashup-go/internal/testtone"
	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/dsp"
)

func TestTrackBeatsFollowsImpulses(t *testing.T) {
	env := make([]float64, 200)
	for i := 5; i < len(env); i += 20 {
		env[i] = 1
	}

	beats := TrackBeats(env, 20, DefaultTightness)

	if len(beats) < 9 {
		t.Fatalf("expected at least 9 beats, got %d", len(beats))
	}
	for _, b := range beats {
		if (b-5)%20 != 0 {
			t.Errorf("expected beats on impulses, got frame %d", b)
		}
	}
}

func TestTrackBeatsPrefersTargetPeriodOnTies(t *testing.T) {
	env := make([]float64, 120)
	for i := range env {
		env[i] = 1
	}

	beats := TrackBeats(env, 10, DefaultTightness)

	if got := medianInterval(beats); got != 10 {
		t.Errorf("expected median interval 10, got %f", got)
	}
	for i := 1; i < len(beats); i++ {
		if beats[i] <= beats[i-1] {
			t.Fatalf("beats not increasing at %d", i)
		}
	}
}

func TestTrackBeatsDegenerate(t *testing.T) {
	if beats := TrackBeats(nil, 10, DefaultTightness); beats != nil {
		t.Errorf("expected nil, got %v", beats)
	}
	if beats := TrackBeats([]float64{1, 2}, 0, DefaultTightness); beats != nil {
		t.Errorf("expected nil, got %v", beats)
	}
}

func TestChromaOfSine(t *testing.T) {
	w := testtone.Sine(440, 0.5, 1, dsp.AnalysisRate)
	spec := dsp.AnalysisSpectrogram(w.Samples)

	chroma := Chroma(spec)
	if len(chroma) != len(spec.Frames) {
		t.Fatalf("expected %d rows, got %d", len(spec.Frames), len(chroma))
	}

	row := chroma[len(chroma)/2]
	if len(row) != PitchClasses {
		t.Fatalf("expected %d columns, got %d", PitchClasses, len(row))
	}
	peak := 0
	for k := range row {
		if row[k] > row[peak] {
			peak = k
		}
	}
	// A is pitch class 9 when C is 0
	if peak != 9 {
		t.Errorf("expected pitch class 9, got %d", peak)
	}
	if math.Abs(row[peak]-1) > 1e-12 {
		t.Errorf("expected max-normalised peak 1, got %f", row[peak])
	}
}

func TestSpectrumShape(t *testing.T) {
	w := testtone.Sine(1000, 0.5, 1, dsp.AnalysisRate)
	spec := dsp.AnalysisSpectrogram(w.Samples)

	rows := Spectrum(spec, 16)
	if len(rows) != len(spec.Frames) {
		t.Fatalf("expected %d rows, got %d", len(spec.Frames), len(rows))
	}
	for _, r := range rows {
		if len(r) != 16 {
			t.Fatalf("expected 16 bands, got %d", len(r))
		}
	}
}

func TestBeatSync(t *testing.T) {
	frames := [][]float64{{1}, {1}, {50}, {2}, {2}, {2}}
	times := []float64{0.1, 0.2, 0.3, 0.6, 0.7, 0.8}

	tests := []struct {
		name     string
		beats    []float64
		expected []float64
	}{
		{"median suppresses outlier", []float64{0, 0.5, 1.0}, []float64{1, 2}},
		{"empty interval uses nearest frame", []float64{0.4, 0.45, 0.9}, []float64{50, 2}},
		{"single interval", []float64{0, 1.0}, []float64{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := BeatSync(frames, times, tt.beats)
			if len(rows) != len(tt.beats)-1 {
				t.Fatalf("expected %d rows, got %d", len(tt.beats)-1, len(rows))
			}
			for i, r := range rows {
				if r[0] != tt.expected[i] {
					t.Errorf("row %d: expected %f, got %f", i, tt.expected[i], r[0])
				}
			}
		})
	}
}

func TestExtractClickTrack(t *testing.T) {
	w := testtone.Track(testtone.DefaultOptions())

	f, err := New().Extract(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Beats) < 2 {
		t.Fatalf("expected beats, got %d", len(f.Beats))
	}
	if f.Rows() != len(f.Beats)-1 {
		t.Errorf("expected %d chroma rows, got %d", len(f.Beats)-1, f.Rows())
	}
	if len(f.Spectrum) != len(f.Beats)-1 {
		t.Errorf("expected %d spectrum rows, got %d", len(f.Beats)-1, len(f.Spectrum))
	}
	if err := f.Beats.Validate(); err != nil {
		t.Errorf("expected valid beat grid, got %v", err)
	}
	if ibi := f.Beats.MedianInterval(); math.Abs(ibi-0.5) > 0.03 {
		t.Errorf("expected ~0.5s between beats, got %f", ibi)
	}
	for _, row := range f.Chroma {
		if len(row) != PitchClasses {
			t.Fatalf("expected %d chroma columns, got %d", PitchClasses, len(row))
		}
	}
}

func TestExtractFastClickTrack(t *testing.T) {
	opts := testtone.DefaultOptions()
	opts.BPM = 200

	f, err := New().Extract(testtone.Track(opts))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(f.Tempo-200) > 4 {
		t.Errorf("expected ~200 BPM, got %.2f", f.Tempo)
	}
	if ibi := f.Beats.MedianInterval(); math.Abs(ibi-0.3) > 0.03 {
		t.Errorf("expected ~0.3s between beats, got %f", ibi)
	}
}

func TestExtractWithHintRowInvariant(t *testing.T) {
	tests := []struct {
		name string
		w    audio.Waveform
		bpm  float64
	}{
		{"click track", testtone.Track(testtone.DefaultOptions()), 120},
		{"noise one second", testtone.Noise(44100, 42, 44100), 120},
		{"noise slow hint", testtone.Noise(44100*3, 7, 44100), 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New().ExtractWithHint(tt.w, tt.bpm)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Rows() != len(f.Beats)-1 {
				t.Errorf("expected %d rows, got %d", len(f.Beats)-1, f.Rows())
			}
			if f.Tempo != tt.bpm {
				t.Errorf("expected tempo %f, got %f", tt.bpm, f.Tempo)
			}
		})
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		w       audio.Waveform
		hint    float64
		wantErr error
	}{
		{"empty", audio.NewWaveform(nil, 22050, 1), 0, audio.ErrInvalidAudio},
		{"nan", audio.NewWaveform([]float64{0, math.NaN(), 0}, 22050, 1), 0, audio.ErrInvalidAudio},
		{"too short", testtone.Noise(100, 1, 22050), 0, audio.ErrInsufficientAudio},
		{"silent", audio.NewWaveform(make([]float64, 22050*3), 22050, 1), 0, audio.ErrInsufficientAudio},
		{"negative hint", testtone.Noise(22050, 1, 22050), -10, audio.ErrInvalidParameter},
		{"extreme hint", testtone.Noise(22050, 1, 22050), 1000, audio.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.hint != 0 {
				_, err = New().ExtractWithHint(tt.w, tt.hint)
			} else {
				_, err = New().Extract(tt.w)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
