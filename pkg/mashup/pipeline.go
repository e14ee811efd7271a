// ABOUTME: End-to-end mashup pipeline: analyse, score, rank and render
// ABOUTME: Collaborators are injected at construction; missing ones fail early
package mashup

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/features"
	"github.com/harperreed/automashup-go/pkg/mashability"
	"github.com/harperreed/automashup-go/pkg/mixer"
	"github.com/harperreed/automashup-go/pkg/rotate"
	"github.com/harperreed/automashup-go/pkg/tempo"
	"github.com/harperreed/automashup-go/pkg/timewarp"
)

// Extractor produces beat-synchronous features from audio
type Extractor interface {
	Extract(w audio.Waveform) (features.Features, error)
	ExtractWithHint(w audio.Waveform, bpm float64) (features.Features, error)
}

// Pipeline runs mashability and generation requests. It holds no per-request
// state and is safe for concurrent use.
type Pipeline struct {
	extractor Extractor
	engine    *timewarp.Engine
	scorer    *mashability.Scorer
	mixer     *mixer.Mixer
	cfg       Config
}

// Mashup is a rendered pair of tracks and the alignment that produced it
type Mashup struct {
	Waveform  audio.Waveform
	Result    mashability.Result
	LoudnessA float64
	LoudnessB float64
}

// Ranked is one candidate's best alignment against a base track
type Ranked struct {
	ID     string
	Tempo  float64
	Result mashability.Result
}

// New wires a pipeline. A nil extractor or backend is ErrDependencyUnavailable.
func New(extractor Extractor, backend timewarp.Backend, cfg Config) (*Pipeline, error) {
	if extractor == nil {
		return nil, fmt.Errorf("%w: no feature extractor", audio.ErrDependencyUnavailable)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine, err := timewarp.New(backend)
	if err != nil {
		return nil, err
	}
	scorer, err := mashability.New(cfg.Scoring)
	if err != nil {
		return nil, err
	}
	mx, err := mixer.New(engine, cfg.Mixing)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		extractor: extractor,
		engine:    engine,
		scorer:    scorer,
		mixer:     mx,
		cfg:       cfg,
	}, nil
}

// Backend names the time-stretch backend in use
func (p *Pipeline) Backend() string {
	return p.engine.Backend()
}

// Analyze extracts features. A zero bpm lets the tempo estimator choose.
func (p *Pipeline) Analyze(w audio.Waveform, bpm float64) (features.Features, error) {
	if bpm == 0 {
		return p.extractor.Extract(w)
	}
	return p.extractor.ExtractWithHint(w, bpm)
}

// Score finds the best alignment of b against a
func (p *Pipeline) Score(ctx context.Context, a, b features.Features) (mashability.Result, error) {
	return p.scorer.Score(ctx, a, b)
}

// Mashability returns the best alignment score of two waveforms at the given tempos
func (p *Pipeline) Mashability(ctx context.Context, a, b audio.Waveform, bpmA, bpmB float64) (float64, error) {
	res, _, _, err := p.analyzePair(ctx, a, b, bpmA, bpmB)
	if err != nil {
		return 0, err
	}
	return res.Best.Score, nil
}

// Rank scores every candidate against base, best first. Candidates that are
// too short to align are left out; any other failure aborts the ranking.
func (p *Pipeline) Rank(ctx context.Context, base features.Features, candidates []features.Features) ([]Ranked, error) {
	ranked := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := p.scorer.Score(ctx, base, c)
		if errors.Is(err, audio.ErrInsufficientAudio) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to score %s: %w", c.ID, err)
		}
		ranked = append(ranked, Ranked{ID: c.ID, Tempo: c.Tempo, Result: res})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		x, y := ranked[i].Result.Best, ranked[j].Result.Best
		if mashability.Better(x, y) {
			return true
		}
		if mashability.Better(y, x) {
			return false
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked, nil
}

// Generate analyses both waveforms, finds the best alignment and renders it
func (p *Pipeline) Generate(ctx context.Context, a, b audio.Waveform, bpmA, bpmB float64) (Mashup, error) {
	res, fa, fb, err := p.analyzePair(ctx, a, b, bpmA, bpmB)
	if err != nil {
		return Mashup{}, err
	}
	return p.Render(a, fa, b, fb, res)
}

// Render mixes b onto a at an already chosen alignment
func (p *Pipeline) Render(a audio.Waveform, fa features.Features, b audio.Waveform, fb features.Features, res mashability.Result) (Mashup, error) {
	mix, err := p.mixer.Mix(
		mixer.Track{Waveform: a, Beats: fa.Beats, Tempo: fa.Tempo},
		mixer.Track{Waveform: b, Beats: fb.Beats, Tempo: fb.Tempo},
		res.Best.Offset,
		float64(res.Best.Semitones),
	)
	if err != nil {
		return Mashup{}, err
	}

	out := mix.Waveform
	if p.cfg.RotateBeats != 0 {
		// A starts late when B was pulled ahead of it
		lead := float64(max(0, -mix.DelayB)) / float64(out.SampleRate)
		grid := make(audio.BeatGrid, len(fa.Beats))
		for i, t := range fa.Beats {
			grid[i] = t + lead
		}
		id := out.ID
		if out, err = rotate.Rotate(out, grid, p.cfg.RotateBeats); err != nil {
			return Mashup{}, err
		}
		out.ID = id
	}

	return Mashup{
		Waveform:  out,
		Result:    res,
		LoudnessA: mix.LoudnessA,
		LoudnessB: mix.LoudnessB,
	}, nil
}

// AdjustTempo estimates the tempo of w and stretches it to finalTempo
func (p *Pipeline) AdjustTempo(w audio.Waveform, finalTempo float64) (audio.Waveform, error) {
	if err := tempo.ValidateBPM(finalTempo); err != nil {
		return audio.Waveform{}, err
	}
	f, err := p.extractor.Extract(w)
	if err != nil {
		return audio.Waveform{}, err
	}
	return p.engine.Stretch(w, f.Tempo, finalTempo)
}

// MatchLoudness scales w to targetDBFS
func (p *Pipeline) MatchLoudness(w audio.Waveform, targetDBFS float64) (audio.Waveform, error) {
	return mixer.MatchLoudness(w, targetDBFS)
}

func (p *Pipeline) analyzePair(ctx context.Context, a, b audio.Waveform, bpmA, bpmB float64) (mashability.Result, features.Features, features.Features, error) {
	var none mashability.Result
	if err := tempo.ValidateBPM(bpmA); err != nil {
		return none, features.Features{}, features.Features{}, fmt.Errorf("first track: %w", err)
	}
	if err := tempo.ValidateBPM(bpmB); err != nil {
		return none, features.Features{}, features.Features{}, fmt.Errorf("second track: %w", err)
	}

	fa, err := p.extractor.ExtractWithHint(a, bpmA)
	if err != nil {
		return none, features.Features{}, features.Features{}, fmt.Errorf("first track: %w", err)
	}
	fb, err := p.extractor.ExtractWithHint(b, bpmB)
	if err != nil {
		return none, features.Features{}, features.Features{}, fmt.Errorf("second track: %w", err)
	}

	res, err := p.scorer.Score(ctx, fa, fb)
	if err != nil {
		return none, features.Features{}, features.Features{}, err
	}
	return res, fa, fb, nil
}
