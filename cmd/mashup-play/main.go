// ABOUTME: Entry point for the two-song mashup previewer
// ABOUTME: Aligns two files, renders the mashup and plays it without a library
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/audio/decode"
	"github.com/harperreed/automashup-go/pkg/audio/encode"
	"github.com/harperreed/automashup-go/pkg/audio/output"
	"github.com/harperreed/automashup-go/pkg/features"
	"github.com/harperreed/automashup-go/pkg/mashup"
	"github.com/harperreed/automashup-go/pkg/tempo"
	"github.com/harperreed/automashup-go/pkg/timewarp"
)

var (
	bpmA     = flag.Float64("bpm-a", 0, "Tempo of the first song (0 to estimate)")
	bpmB     = flag.Float64("bpm-b", 0, "Tempo of the second song (0 to estimate)")
	backend  = flag.String("backend", "approx", "Time-stretch backend: approx or rubberband")
	rotateBy = flag.Int("rotate", 0, "Start playback on this beat of the first song")
	volume   = flag.Int("volume", 80, "Playback volume (0-100)")
	save     = flag.String("save", "", "Also write the mashup to this .wav or .flac file")
	noPlay   = flag.Bool("no-play", false, "Render without playing")
	logFile  = flag.String("log-file", "mashup-play.log", "Log file path")
)

func main() {
	flag.Parse()

	// Set up logging (both file and console)
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()
	log.SetOutput(io.MultiWriter(os.Stderr, f))

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: mashup-play [flags] <song-a> <song-b>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := preview(ctx, flag.Arg(0), flag.Arg(1)); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func preview(ctx context.Context, pathA, pathB string) error {
	a, err := decode.File(pathA)
	if err != nil {
		return err
	}
	b, err := decode.File(pathB)
	if err != nil {
		return err
	}
	a.ID, b.ID = pathA, pathB

	est := tempo.New()
	tA, err := tempoOf(est, a, *bpmA)
	if err != nil {
		return err
	}
	tB, err := tempoOf(est, b, *bpmB)
	if err != nil {
		return err
	}
	log.Printf("Tempos: %.1f / %.1f BPM", tA, tB)

	var stretcher timewarp.Backend
	switch *backend {
	case "rubberband":
		if stretcher, err = timewarp.NewRubberband(""); err != nil {
			return err
		}
	default:
		stretcher = timewarp.NewApprox()
	}

	cfg := mashup.DefaultConfig()
	cfg.RotateBeats = *rotateBy
	p, err := mashup.New(features.New(), stretcher, cfg)
	if err != nil {
		return err
	}

	m, err := p.Generate(ctx, a, b, tA, tB)
	if err != nil {
		return err
	}
	best := m.Result.Best
	log.Printf("Best alignment: offset %d beats, %+d semitones, score %.4f", best.Offset, best.Semitones, best.Score)

	if *save != "" {
		if err := encode.File(*save, m.Waveform, 16); err != nil {
			return err
		}
		log.Printf("Saved %s", *save)
	}
	if *noPlay {
		return nil
	}

	out := output.NewOto()
	defer func() { _ = out.Close() }()
	out.SetVolume(*volume)

	err = output.Play(ctx, out, m.Waveform, output.DefaultChunk, func(pos time.Duration) {
		fmt.Fprintf(os.Stderr, "\r%s / %s", pos.Truncate(time.Second), m.Waveform.Duration().Truncate(time.Second))
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}
	return out.Drain(ctx)
}

// tempoOf returns bpm when set, otherwise the estimated tempo of w
func tempoOf(est *tempo.Estimator, w audio.Waveform, bpm float64) (float64, error) {
	if bpm != 0 {
		return bpm, tempo.ValidateBPM(bpm)
	}
	res, err := est.Estimate(w)
	if err != nil {
		return 0, fmt.Errorf("failed to estimate tempo of %s: %w", w.ID, err)
	}
	return res.BPM, nil
}
