// ABOUTME: Mashability scoring over beat offsets and pitch transpositions
// ABOUTME: Candidates are scored in parallel and reduced by a total order
package mashability

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/dsp"
	"github.com/harperreed/automashup-go/pkg/features"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// scoreQuantum is the resolution at which two scores count as tied
const scoreQuantum = 1e-9

// Candidate is one (offset, transposition) alignment. Offset o pairs B's beat
// row j with A's beat row j+o; Semitones transposes B upward.
type Candidate struct {
	Offset    int
	Semitones int
	Score     float64
}

// Result is the winning candidate for a pair of tracks
type Result struct {
	Best Candidate
	IDA  string
	IDB  string
}

// Scorer searches alignments between two feature sets
type Scorer struct {
	cfg Config
}

// New creates a scorer after validating cfg
func New(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Config returns the scorer's settings
func (s *Scorer) Config() Config {
	return s.cfg
}

// Score finds the best alignment of b against a. Unusable candidates are
// skipped; when none is usable the result is ErrInsufficientAudio.
func (s *Scorer) Score(ctx context.Context, a, b features.Features) (Result, error) {
	if err := s.check(a, b); err != nil {
		return Result{}, err
	}

	window := s.cfg.SearchWindowBeats
	shifts := 2*s.cfg.MaxSemitoneShift + 1
	byOffset := make([][]Candidate, 2*window+1)

	workers := s.cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range byOffset {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := i - window
			row := make([]Candidate, shifts)
			for k := range row {
				t := k - s.cfg.MaxSemitoneShift
				row[k] = Candidate{Offset: o, Semitones: t, Score: s.evaluate(a, b, o, t)}
			}
			byOffset[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	best := Candidate{Score: math.Inf(-1)}
	found := false
	for _, row := range byOffset {
		for _, c := range row {
			if math.IsInf(c.Score, -1) {
				continue
			}
			if !found || Better(c, best) {
				best = c
				found = true
			}
		}
	}
	if !found {
		return Result{}, fmt.Errorf("%w: no usable alignment with %d beats of overlap (%d and %d rows)", audio.ErrInsufficientAudio, s.cfg.MinOverlapBeats, a.Rows(), b.Rows())
	}

	return Result{Best: best, IDA: a.ID, IDB: b.ID}, nil
}

func (s *Scorer) check(a, b features.Features) error {
	for _, f := range []features.Features{a, b} {
		if len(f.Spectrum) != len(f.Chroma) {
			return fmt.Errorf("%w: %q has %d chroma rows and %d spectrum rows", audio.ErrInvalidParameter, f.ID, len(f.Chroma), len(f.Spectrum))
		}
		for _, row := range f.Chroma {
			if len(row) != features.PitchClasses {
				return fmt.Errorf("%w: chroma row of width %d", audio.ErrInvalidParameter, len(row))
			}
		}
	}
	if a.Rows() > 0 && b.Rows() > 0 && len(a.Spectrum[0]) != len(b.Spectrum[0]) {
		return fmt.Errorf("%w: spectrum widths differ (%d and %d)", audio.ErrInvalidParameter, len(a.Spectrum[0]), len(b.Spectrum[0]))
	}
	if a.Rows() < s.cfg.MinOverlapBeats || b.Rows() < s.cfg.MinOverlapBeats {
		return fmt.Errorf("%w: need %d beat rows, got %d and %d", audio.ErrInsufficientAudio, s.cfg.MinOverlapBeats, a.Rows(), b.Rows())
	}
	return nil
}

// evaluate scores one candidate, returning -Inf when it cannot be used
func (s *Scorer) evaluate(a, b features.Features, o, t int) float64 {
	lo := max(0, -o)
	hi := min(b.Rows(), a.Rows()-o)
	n := hi - lo
	if n < s.cfg.MinOverlapBeats {
		return math.Inf(-1)
	}

	rotated := make([]float64, features.PitchClasses)
	var chroma float64
	for j := lo; j < hi; j++ {
		Transpose(rotated, b.Chroma[j], t)
		chroma += dsp.Cosine(a.Chroma[j+o], rotated)
	}
	chroma /= float64(n)

	w := s.cfg.Weights
	score := (w.Chroma*chroma + w.Spectrum*spectralBalance(a.Spectrum[lo+o:hi+o], b.Spectrum[lo:hi])) / (w.Chroma + w.Spectrum)
	// Scale by the share of the shorter track that overlaps, so a few matching
	// edge rows cannot outrank a full alignment
	score *= float64(n) / float64(min(a.Rows(), b.Rows()))
	if w.TempoPenalty > 0 && a.Tempo > 0 && b.Tempo > 0 {
		score -= w.TempoPenalty * math.Abs(math.Log2(a.Tempo/b.Tempo))
	}

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return math.Inf(-1)
	}
	return score
}

// spectralBalance compares the summed energy distributions of two row ranges.
// 1 means identical shape, 0 means disjoint.
func spectralBalance(a, b [][]float64) float64 {
	if len(a) == 0 || len(a[0]) == 0 {
		return 1
	}
	sa := make([]float64, len(a[0]))
	sb := make([]float64, len(b[0]))
	for i := range a {
		floats.Add(sa, a[i])
		floats.Add(sb, b[i])
	}
	dsp.NormalizeSum(sa)
	dsp.NormalizeSum(sb)
	return 1 - 0.5*floats.Distance(sa, sb, 1)
}

// Transpose writes chroma raised by t semitones into dst: dst[k] = src[(k-t) mod 12]
func Transpose(dst, src []float64, t int) {
	n := len(src)
	for k := range dst {
		dst[k] = src[((k-t)%n+n)%n]
	}
}

// Better reports whether x beats y: higher score at 1e-9 resolution, then
// smaller |offset|, smaller |semitones|, smaller offset, smaller semitones
func Better(x, y Candidate) bool {
	qx, qy := quantize(x.Score), quantize(y.Score)
	if qx != qy {
		return qx > qy
	}
	if ax, ay := abs(x.Offset), abs(y.Offset); ax != ay {
		return ax < ay
	}
	if ax, ay := abs(x.Semitones), abs(y.Semitones); ax != ay {
		return ax < ay
	}
	if x.Offset != y.Offset {
		return x.Offset < y.Offset
	}
	return x.Semitones < y.Semitones
}

func quantize(score float64) float64 {
	return math.Round(score / scoreQuantum)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
