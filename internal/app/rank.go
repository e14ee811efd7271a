// ABOUTME: The mashability command: rank library songs against a base song
// ABOUTME: Prints a table, runs the interactive view, or prints the pairwise matrix
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/harperreed/automashup-go/internal/library"
	"github.com/harperreed/automashup-go/internal/ui"
	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/features"
	"github.com/harperreed/automashup-go/pkg/mashup"
)

// ranking is a base song with every candidate scored against it
type ranking struct {
	song    string
	wave    audio.Waveform
	base    features.Features
	ranked  []mashup.Ranked
	entries map[string]library.Entry
}

// rows converts the best top entries for display
func (r ranking) rows(top int) []ui.Row {
	n := len(r.ranked)
	if top > 0 && top < n {
		n = top
	}
	rows := make([]ui.Row, n)
	for i := 0; i < n; i++ {
		c := r.ranked[i]
		rows[i] = ui.Row{
			Rank:      i + 1,
			Path:      c.ID,
			Score:     c.Result.Best.Score,
			Offset:    c.Result.Best.Offset,
			Semitones: c.Result.Best.Semitones,
			Tempo:     c.Tempo,
		}
	}
	return rows
}

// rank analyses song and the library and orders candidates best first
func (a *App) rank(ctx context.Context, song string, rep reporter) (ranking, error) {
	w, err := load(song)
	if err != nil {
		return ranking{}, err
	}
	base, err := a.analyze(w, a.cfg.Hint)
	if err != nil {
		return ranking{}, fmt.Errorf("failed to analyse %s: %w", song, err)
	}
	log.Printf("Base song %s: %.1f BPM, %d beats", song, base.Tempo, len(base.Beats))

	entries, err := a.catalogue(ctx, song, rep)
	if err != nil {
		return ranking{}, err
	}

	rep.begin(ui.PhaseScoring, len(entries))
	candidates := make([]features.Features, len(entries))
	byPath := make(map[string]library.Entry, len(entries))
	for i, e := range entries {
		candidates[i] = e.Features
		byPath[e.Path] = e
	}
	ranked, err := a.pipeline.Rank(ctx, base, candidates)
	rep.end()
	if err != nil {
		return ranking{}, err
	}
	if len(ranked) == 0 {
		return ranking{}, fmt.Errorf("%w for %s", ErrNoCandidates, song)
	}

	return ranking{song: song, wave: w, base: base, ranked: ranked, entries: byPath}, nil
}

// Mashability ranks the library against song. An empty song prints the
// pairwise matrix of the whole library instead.
func (a *App) Mashability(ctx context.Context, song string) error {
	if song == "" {
		return a.Matrix(ctx)
	}
	if !a.cfg.NoTUI {
		return a.interactive(ctx, song)
	}

	r, err := a.rank(ctx, song, newBarReporter(a.Stderr))
	if err != nil {
		return err
	}
	a.printRanking(r)
	return nil
}

func (a *App) printRanking(r ranking) {
	fmt.Fprintf(a.Stdout, "Mashability of %s (%.1f BPM)\n", r.song, r.base.Tempo)
	fmt.Fprintf(a.Stdout, "%4s  %7s  %6s  %9s  %6s  %s\n", "rank", "score", "offset", "semitones", "tempo", "path")
	for _, row := range r.rows(a.cfg.Top) {
		fmt.Fprintf(a.Stdout, "%4d  %7.4f  %6d  %9d  %6.1f  %s\n",
			row.Rank, row.Score, row.Offset, row.Semitones, row.Tempo, row.Path)
	}
}

// interactive shows the ranking in the TUI. Choosing a row renders that mashup.
func (a *App) interactive(ctx context.Context, song string) error {
	ctrl := ui.NewControl()
	prog, err := ui.Run(ctrl, filepath.Base(song))
	if err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}

	exited := make(chan error, 1)
	go func() {
		_, err := prog.Run()
		exited <- err
	}()
	prog.Send(ui.StatusMsg{Backend: a.Backend()})

	type outcome struct {
		r   ranking
		err error
	}
	ranked := make(chan outcome, 1)
	go func() {
		r, err := a.rank(ctx, song, &tuiReporter{prog: prog})
		if err != nil {
			prog.Send(ui.StatusMsg{Err: err})
		} else {
			done := ui.PhaseDone
			prog.Send(ui.ResultsMsg{Rows: r.rows(a.cfg.Top)})
			prog.Send(ui.StatusMsg{Phase: &done})
		}
		ranked <- outcome{r, err}
	}()

	select {
	case <-ctrl.Quit:
		<-exited
	case err := <-exited:
		if err != nil {
			return fmt.Errorf("TUI failed: %w", err)
		}
	case <-ctx.Done():
		prog.Quit()
		<-exited
		return ctx.Err()
	}

	// Enter quits the program right after sending the choice
	select {
	case choice := <-ctrl.Choose:
		out := <-ranked
		if out.err != nil {
			return out.err
		}
		return a.render(out.r, choice.Row.Rank-1)
	default:
	}

	// Report a ranking failure that was only shown on screen
	select {
	case out := <-ranked:
		if out.err != nil && !errors.Is(out.err, context.Canceled) {
			return out.err
		}
	default:
	}
	return nil
}

// Matrix scores every ordered pair of library songs
func (a *App) Matrix(ctx context.Context) error {
	entries, err := a.catalogue(ctx, "", newBarReporter(a.Stderr))
	if err != nil {
		return err
	}
	if len(entries) < 2 {
		return fmt.Errorf("%w: need at least two songs, found %d", ErrNoCandidates, len(entries))
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = shortName(e.Path, 16)
	}

	fmt.Fprintf(a.Stdout, "%-16s", "")
	for _, n := range names {
		fmt.Fprintf(a.Stdout, "  %16s", n)
	}
	fmt.Fprintln(a.Stdout)

	for i, ei := range entries {
		fmt.Fprintf(a.Stdout, "%-16s", names[i])
		for j, ej := range entries {
			cell := "-"
			if i != j {
				res, err := a.pipeline.Score(ctx, ei.Features, ej.Features)
				switch {
				case err == nil:
					cell = fmt.Sprintf("%.4f", res.Best.Score)
				case errors.Is(err, audio.ErrInsufficientAudio):
					cell = "n/a"
				default:
					return fmt.Errorf("failed to score %s against %s: %w", ej.Path, ei.Path, err)
				}
			}
			fmt.Fprintf(a.Stdout, "  %16s", cell)
		}
		fmt.Fprintln(a.Stdout)
	}
	return nil
}

// shortName is the file name without extension, cut to n runes
func shortName(path string, n int) string {
	base := filepath.Base(path)
	base = base[:len(base)-len(filepath.Ext(base))]
	r := []rune(base)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return base
}
