// ABOUTME: The tempo and play commands
// ABOUTME: Single-file utilities that share the loader and pipeline
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/harperreed/automashup-go/pkg/audio/output"
	"github.com/harperreed/automashup-go/pkg/tempo"
)

// Tempo prints the estimated tempo of song, corrected toward the configured hint
func (a *App) Tempo(song string) error {
	w, err := load(song)
	if err != nil {
		return err
	}

	est := tempo.New()
	var res tempo.Result
	if a.cfg.Hint != 0 {
		res, err = est.EstimateWithHint(w, a.cfg.Hint)
	} else {
		res, err = est.Estimate(w)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Stdout, "Tempo: %.2f BPM (confidence %.2f)\n", res.BPM, res.Confidence)
	return nil
}

// Play decodes path and plays it on the default audio device
func (a *App) Play(ctx context.Context, path string) error {
	w, err := load(path)
	if err != nil {
		return err
	}

	out := output.NewOto()
	defer func() { _ = out.Close() }()

	log.Printf("Playing %s (%s, %dHz, %dch)", path, w.Duration(), w.SampleRate, w.Channels)
	if err := output.Play(ctx, out, w, output.DefaultChunk, nil); err != nil {
		return err
	}
	return out.Drain(ctx)
}
