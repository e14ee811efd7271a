// ABOUTME: Renders two tracks into one aligned, loudness-matched mashup
// ABOUTME: Stretches and transposes B, delays it onto A's beat grid, crossfades and limits
package mixer

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/audio/resample"
	"github.com/harperreed/automashup-go/pkg/tempo"
	"github.com/harperreed/automashup-go/pkg/timewarp"
)

const (
	DefaultTargetDBFS = -20.0
	DefaultCrossfade  = 0.05
	DefaultKnee       = 0.9
)

// Options controls rendering
type Options struct {
	TargetDBFS float64
	Crossfade  float64 // seconds
	Curve      Curve
	Knee       float64 // soft limiter threshold in (0,1)
}

// DefaultOptions returns -20 dBFS, 50 ms equal-power fades and a 0.9 knee
func DefaultOptions() Options {
	return Options{
		TargetDBFS: DefaultTargetDBFS,
		Crossfade:  DefaultCrossfade,
		Curve:      EqualPower,
		Knee:       DefaultKnee,
	}
}

// Validate checks the option ranges
func (o Options) Validate() error {
	if math.IsNaN(o.TargetDBFS) || math.IsInf(o.TargetDBFS, 0) || o.TargetDBFS > 0 {
		return fmt.Errorf("%w: target level %v dBFS must be finite and at most 0", audio.ErrInvalidParameter, o.TargetDBFS)
	}
	if math.IsNaN(o.Crossfade) || math.IsInf(o.Crossfade, 0) || o.Crossfade < 0 {
		return fmt.Errorf("%w: crossfade %v s must be finite and non-negative", audio.ErrInvalidParameter, o.Crossfade)
	}
	if !o.Curve.valid() {
		return fmt.Errorf("%w: unknown crossfade curve %d", audio.ErrInvalidParameter, int(o.Curve))
	}
	if !(o.Knee > 0 && o.Knee < 1) {
		return fmt.Errorf("%w: limiter knee %v outside (0, 1)", audio.ErrInvalidParameter, o.Knee)
	}
	return nil
}

// Track is one side of a mashup. A zero Tempo is derived from Beats.
type Track struct {
	Waveform audio.Waveform
	Beats    audio.BeatGrid
	Tempo    float64
}

// Mix is a rendered mashup
type Mix struct {
	Waveform  audio.Waveform
	LoudnessA float64 // dBFS of A after gain, before summing
	LoudnessB float64 // dBFS of B after gain, before summing
	DelayB    int     // frames B starts after A; negative when A is delayed
}

// Mixer renders mashups with a time-warp engine
type Mixer struct {
	engine *timewarp.Engine
	opts   Options
}

// New creates a mixer. A nil engine is a missing dependency.
func New(engine *timewarp.Engine, opts Options) (*Mixer, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: mixer needs a time-warp engine", audio.ErrDependencyUnavailable)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Mixer{engine: engine, opts: opts}, nil
}

// Mix renders b on top of a. B's beat j lands on A's beat j+offset after B
// is stretched to A's tempo and transposed by semitones. The output uses A's
// sample rate and channel count.
func (m *Mixer) Mix(a, b Track, offset int, semitones float64) (Mix, error) {
	if math.IsNaN(semitones) || math.IsInf(semitones, 0) {
		return Mix{}, fmt.Errorf("%w: semitone shift %v is not finite", audio.ErrInvalidParameter, semitones)
	}
	if err := a.Waveform.Validate(); err != nil {
		return Mix{}, fmt.Errorf("track A: %w", err)
	}
	if err := b.Waveform.Validate(); err != nil {
		return Mix{}, fmt.Errorf("track B: %w", err)
	}
	if err := a.Beats.Validate(); err != nil {
		return Mix{}, fmt.Errorf("track A beats: %w", err)
	}
	tempoA, err := trackTempo(a)
	if err != nil {
		return Mix{}, fmt.Errorf("track A: %w", err)
	}
	tempoB, err := trackTempo(b)
	if err != nil {
		return Mix{}, fmt.Errorf("track B: %w", err)
	}

	bw, err := m.engine.Stretch(b.Waveform, tempoB, tempoA)
	if err != nil {
		return Mix{}, err
	}
	if bw, err = m.engine.ShiftPitch(bw, semitones); err != nil {
		return Mix{}, err
	}
	if bw, err = resample.Waveform(bw, a.Waveform.SampleRate); err != nil {
		return Mix{}, err
	}
	bw = matchChannels(bw, a.Waveform.Channels)

	aw, err := MatchLoudness(a.Waveform, m.opts.TargetDBFS)
	if err != nil {
		return Mix{}, err
	}
	if bw, err = MatchLoudness(bw, m.opts.TargetDBFS); err != nil {
		return Mix{}, err
	}

	// B's first beat, re-timed by the stretch, lands on A's beat offset
	var firstB float64
	if len(b.Beats) > 0 {
		firstB = b.Beats[0] * tempoB / tempoA
	}
	rate := float64(a.Waveform.SampleRate)
	delay := int(math.Round((a.Beats.At(offset) - firstB) * rate))
	if limit := aw.Frames() + bw.Frames(); delay > limit || -delay > limit {
		return Mix{}, fmt.Errorf("%w: offset %d beats moves B entirely past A", audio.ErrInvalidParameter, offset)
	}

	startA, startB := 0, delay
	if delay < 0 {
		startA, startB = -delay, 0
	}
	total := max(startA+aw.Frames(), startB+bw.Frames())
	fade := int(m.opts.Crossfade * rate)

	ch := a.Waveform.Channels
	out := make([]float64, total*ch)
	m.place(out, aw, startA, total, fade)
	m.place(out, bw, startB, total, fade)
	SoftLimit(out, m.opts.Knee)

	mixed := audio.NewWaveform(out, a.Waveform.SampleRate, ch)
	mixed.ID = uuid.NewString()
	return Mix{
		Waveform:  mixed,
		LoudnessA: audio.Loudness(aw),
		LoudnessB: audio.Loudness(bw),
		DelayB:    delay,
	}, nil
}

// place adds w into out at frame start. A track that begins after the mix
// starts fades in; one that ends before the mix ends fades out.
func (m *Mixer) place(out []float64, w audio.Waveform, start, total, fade int) {
	ch := w.Channels
	frames := w.Frames()
	n := min(fade, frames/2)
	fadeIn := start > 0 && n > 0
	fadeOut := start+frames < total && n > 0

	for i := 0; i < frames; i++ {
		g := 1.0
		if fadeIn && i < n {
			g *= m.opts.Curve.Gain(float64(i) / float64(n))
		}
		if fadeOut && i >= frames-n {
			g *= m.opts.Curve.Gain(float64(frames-1-i) / float64(n))
		}
		base := (start + i) * ch
		for c := 0; c < ch; c++ {
			out[base+c] += g * w.Samples[i*ch+c]
		}
	}
}

func trackTempo(t Track) (float64, error) {
	bpm := t.Tempo
	if bpm == 0 {
		bpm = t.Beats.Tempo()
	}
	if err := tempo.ValidateBPM(bpm); err != nil {
		return 0, err
	}
	return bpm, nil
}

// matchChannels folds w to mono and copies it to every output channel when
// the layouts differ
func matchChannels(w audio.Waveform, channels int) audio.Waveform {
	if w.Channels == channels {
		return w
	}
	mono := w.Mono()
	samples := make([]float64, len(mono)*channels)
	for i, s := range mono {
		for c := 0; c < channels; c++ {
			samples[i*channels+c] = s
		}
	}
	out := audio.NewWaveform(samples, w.SampleRate, channels)
	out.ID = w.ID
	return out
}
