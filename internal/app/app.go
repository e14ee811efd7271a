// ABOUTME: Command orchestration for the automashup CLI
// ABOUTME: Wires config, library, pipeline and UI together for each subcommand
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/harperreed/automashup-go/internal/config"
	"github.com/harperreed/automashup-go/internal/library"
	"github.com/harperreed/automashup-go/internal/ui"
	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/audio/decode"
	"github.com/harperreed/automashup-go/pkg/features"
	"github.com/harperreed/automashup-go/pkg/mashup"
)

// ErrNoCandidates means the library holds nothing that can be aligned with the song
var ErrNoCandidates = errors.New("no mashable candidates in library")

// FileNotFoundError reports a missing input file
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("File %s not found", e.Path)
}

// App runs CLI commands against one configuration
type App struct {
	cfg      config.Config
	pipeline *mashup.Pipeline

	// Stdout receives results, Stderr receives progress bars
	Stdout io.Writer
	Stderr io.Writer
}

// New builds the pipeline described by cfg
func New(cfg config.Config) (*App, error) {
	pc, err := cfg.Pipeline()
	if err != nil {
		return nil, err
	}
	backend, err := cfg.StretchBackend()
	if err != nil {
		return nil, err
	}
	p, err := mashup.New(features.New(), backend, pc)
	if err != nil {
		return nil, err
	}
	log.Printf("Using %s time-stretch backend", p.Backend())

	return &App{
		cfg:      cfg,
		pipeline: p,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}, nil
}

// Backend names the time-stretch backend
func (a *App) Backend() string {
	return a.pipeline.Backend()
}

// load decodes a song after checking that it exists
func load(path string) (audio.Waveform, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return audio.Waveform{}, &FileNotFoundError{Path: path}
		}
		return audio.Waveform{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	w, err := decode.File(path)
	if err != nil {
		return audio.Waveform{}, err
	}
	w.ID = path
	return w, nil
}

// analyze extracts features of w with an optional tempo hint
func (a *App) analyze(w audio.Waveform, hint float64) (features.Features, error) {
	f, err := a.pipeline.Analyze(w, hint)
	if err != nil {
		return features.Features{}, err
	}
	f.ID = w.ID
	return f, nil
}

// catalogue analyses every library song except exclude, reusing cached analysis
func (a *App) catalogue(ctx context.Context, exclude string, rep reporter) ([]library.Entry, error) {
	lib, err := library.Open(a.cfg.DatabasePath(), a.cfg.LibraryDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lib.Close() }()

	rep.begin(ui.PhaseScanning, 0)
	if n, err := lib.Prune(); err != nil {
		log.Printf("Failed to prune catalogue: %v", err)
	} else if n > 0 {
		log.Printf("Pruned %d missing songs from the catalogue", n)
	}

	paths, err := lib.Scan()
	if err != nil {
		return nil, err
	}
	paths = without(paths, exclude)
	log.Printf("Found %d songs in %s", len(paths), a.cfg.LibraryDir)

	rep.begin(ui.PhaseAnalyzing, len(paths))
	entries, err := lib.Analyze(ctx, paths, a.cfg.Workers, func(w audio.Waveform) (features.Features, error) {
		return a.pipeline.Analyze(w, 0)
	}, func(path string, cached bool, err error) {
		rep.step(path)
	})
	rep.end()
	if err != nil {
		return nil, err
	}
	if n, err := lib.Count(); err != nil {
		log.Printf("Failed to count catalogue: %v", err)
	} else {
		log.Printf("Catalogue holds %d analysed songs", n)
	}
	return entries, nil
}

// without drops every path that resolves to the same file as exclude
func without(paths []string, exclude string) []string {
	if exclude == "" {
		return paths
	}
	target, err := filepath.Abs(exclude)
	if err != nil {
		target = exclude
	}
	out := paths[:0:0]
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if abs != target {
			out = append(out, p)
		}
	}
	return out
}
