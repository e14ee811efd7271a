// ABOUTME: The generate command: render the best library mashup for a song
// ABOUTME: Decodes the chosen candidate, mixes it and writes the output file
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/harperreed/automashup-go/pkg/audio/encode"
)

// OutputBitDepth is the sample size of rendered files
const OutputBitDepth = 16

// Generate mixes song with its best ranked library candidate and returns the written path
func (a *App) Generate(ctx context.Context, song string) (string, error) {
	r, err := a.rank(ctx, song, newBarReporter(a.Stderr))
	if err != nil {
		return "", err
	}
	if err := a.render(r, 0); err != nil {
		return "", err
	}
	return a.cfg.OutputPath(song), nil
}

// render mixes the i-th ranked candidate onto the base song and writes it
func (a *App) render(r ranking, i int) error {
	if i < 0 || i >= len(r.ranked) {
		return fmt.Errorf("no candidate at rank %d", i+1)
	}
	choice := r.ranked[i]
	entry, ok := r.entries[choice.ID]
	if !ok {
		return fmt.Errorf("candidate %s is not in the catalogue", choice.ID)
	}

	b, err := load(entry.Path)
	if err != nil {
		return err
	}
	log.Printf("Mixing %s onto %s: offset %d beats, %+d semitones, score %.4f",
		entry.Path, r.song, choice.Result.Best.Offset, choice.Result.Best.Semitones, choice.Result.Best.Score)

	m, err := a.pipeline.Render(r.wave, r.base, b, entry.Features, choice.Result)
	if err != nil {
		return fmt.Errorf("failed to render mashup: %w", err)
	}

	out := a.cfg.OutputPath(r.song)
	if err := encode.File(out, m.Waveform, OutputBitDepth); err != nil {
		return err
	}
	log.Printf("Wrote %s (%s, id %s)", out, m.Waveform.Duration(), m.Waveform.ID)

	fmt.Fprintf(a.Stdout, "Mashup generated successfully for %s\n", r.song)
	fmt.Fprintf(a.Stdout, "Partner: %s\nOutput: %s\n", entry.Path, out)
	return nil
}
