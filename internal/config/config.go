// ABOUTME: Command-line configuration with AUTOMASHUP_* environment fallbacks
// ABOUTME: Builds pipeline settings and selects the time-stretch backend
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/mashability"
	"github.com/harperreed/automashup-go/pkg/mashup"
	"github.com/harperreed/automashup-go/pkg/mixer"
	"github.com/harperreed/automashup-go/pkg/timewarp"
)

// DatabaseName is the catalogue file created inside the library directory
const DatabaseName = ".automashup.db"

// Config holds every setting of the CLI
type Config struct {
	// Library
	LibraryDir string
	Database   string // empty means LibraryDir/.automashup.db

	// Output
	Output string
	Format string // wav or flac

	// Scoring
	SearchWindow   int
	MaxShift       int
	MinOverlap     int
	ChromaWeight   float64
	SpectrumWeight float64
	TempoPenalty   float64

	// Mixing
	TargetDBFS float64
	Crossfade  float64 // seconds
	Curve      string
	Rotate     int

	// Time stretching
	Backend        string // auto, rubberband or approx
	RubberbandPath string

	// Runtime
	Workers int
	Top     int
	Hint    float64
	LogFile string
	NoTUI   bool
}

// Load returns defaults overridden by the environment
func Load() Config {
	return Config{
		LibraryDir: envStr("AUTOMASHUP_LIBRARY", "."),
		Database:   envStr("AUTOMASHUP_DB", ""),

		Output: envStr("AUTOMASHUP_OUTPUT", ""),
		Format: envStr("AUTOMASHUP_FORMAT", "wav"),

		SearchWindow:   envInt("AUTOMASHUP_SEARCH_WINDOW", mashability.DefaultSearchWindowBeats),
		MaxShift:       envInt("AUTOMASHUP_MAX_SHIFT", mashability.DefaultMaxSemitoneShift),
		MinOverlap:     envInt("AUTOMASHUP_MIN_OVERLAP", mashability.DefaultMinOverlapBeats),
		ChromaWeight:   envFloat("AUTOMASHUP_CHROMA_WEIGHT", 1),
		SpectrumWeight: envFloat("AUTOMASHUP_SPECTRUM_WEIGHT", 0.5),
		TempoPenalty:   envFloat("AUTOMASHUP_TEMPO_PENALTY", 0),

		TargetDBFS: envFloat("AUTOMASHUP_TARGET_DBFS", mixer.DefaultTargetDBFS),
		Crossfade:  envFloat("AUTOMASHUP_CROSSFADE", mixer.DefaultCrossfade),
		Curve:      envStr("AUTOMASHUP_CURVE", "equal-power"),
		Rotate:     envInt("AUTOMASHUP_ROTATE", 0),

		Backend:        envStr("AUTOMASHUP_BACKEND", "auto"),
		RubberbandPath: envStr("AUTOMASHUP_RUBBERBAND", ""),

		Workers: envInt("AUTOMASHUP_WORKERS", runtime.NumCPU()),
		Top:     envInt("AUTOMASHUP_TOP", 10),
		LogFile: envStr("AUTOMASHUP_LOG_FILE", "automashup.log"),
	}
}

// Parse loads the environment, then applies flags from args. It returns the
// remaining positional arguments.
func Parse(name string, args []string) (Config, []string, error) {
	cfg := Load()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

// RegisterFlags binds every setting to fs using the current values as defaults
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.LibraryDir, "library", c.LibraryDir, "Directory of candidate songs")
	fs.StringVar(&c.Database, "db", c.Database, "Analysis cache (default: <library>/"+DatabaseName+")")
	fs.StringVar(&c.Output, "out", c.Output, "Output file (default: <song>_mashup.<format>)")
	fs.StringVar(&c.Format, "format", c.Format, "Output format: wav or flac")

	fs.IntVar(&c.SearchWindow, "window", c.SearchWindow, "Beat offset search window")
	fs.IntVar(&c.MaxShift, "max-shift", c.MaxShift, "Largest transposition in semitones")
	fs.IntVar(&c.MinOverlap, "min-overlap", c.MinOverlap, "Minimum overlapping beats per candidate")
	fs.Float64Var(&c.ChromaWeight, "chroma-weight", c.ChromaWeight, "Weight of harmonic similarity")
	fs.Float64Var(&c.SpectrumWeight, "spectrum-weight", c.SpectrumWeight, "Weight of spectral balance")
	fs.Float64Var(&c.TempoPenalty, "tempo-penalty", c.TempoPenalty, "Score penalty per octave of tempo difference")

	fs.Float64Var(&c.TargetDBFS, "target-dbfs", c.TargetDBFS, "Loudness of each track before mixing")
	fs.Float64Var(&c.Crossfade, "crossfade", c.Crossfade, "Boundary fade length in seconds")
	fs.StringVar(&c.Curve, "curve", c.Curve, "Fade curve: equal-power, linear or smoothstep")
	fs.IntVar(&c.Rotate, "rotate", c.Rotate, "Rotate the mashup to start on this beat")

	fs.StringVar(&c.Backend, "backend", c.Backend, "Time-stretch backend: auto, rubberband or approx")
	fs.StringVar(&c.RubberbandPath, "rubberband", c.RubberbandPath, "Path to the rubberband binary")

	fs.IntVar(&c.Workers, "workers", c.Workers, "Parallel analysis and scoring workers")
	fs.IntVar(&c.Top, "top", c.Top, "Number of ranked candidates to show")
	fs.Float64Var(&c.Hint, "hint", c.Hint, "Tempo hint in BPM (0 to estimate)")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Log file path")
	fs.BoolVar(&c.NoTUI, "no-tui", c.NoTUI, "Disable TUI, print results and stream logs")
}

// DatabasePath resolves the catalogue location
func (c Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return filepath.Join(c.LibraryDir, DatabaseName)
}

// OutputPath returns the explicit output or <song>_mashup.<format> next to the song
func (c Config) OutputPath(song string) string {
	if c.Output != "" {
		return c.Output
	}
	base := strings.TrimSuffix(song, filepath.Ext(song))
	return base + "_mashup." + strings.ToLower(c.Format)
}

// Pipeline converts the settings into pipeline configuration
func (c Config) Pipeline() (mashup.Config, error) {
	curve, err := mixer.ParseCurve(c.Curve)
	if err != nil {
		return mashup.Config{}, err
	}
	switch strings.ToLower(c.Format) {
	case "wav", "flac":
	default:
		return mashup.Config{}, fmt.Errorf("%w: unsupported output format %q", audio.ErrInvalidParameter, c.Format)
	}

	pc := mashup.Config{
		Scoring: mashability.Config{
			SearchWindowBeats: c.SearchWindow,
			MaxSemitoneShift:  c.MaxShift,
			MinOverlapBeats:   c.MinOverlap,
			Weights: mashability.Weights{
				Chroma:       c.ChromaWeight,
				Spectrum:     c.SpectrumWeight,
				TempoPenalty: c.TempoPenalty,
			},
			Workers: c.Workers,
		},
		Mixing: mixer.Options{
			TargetDBFS: c.TargetDBFS,
			Crossfade:  c.Crossfade,
			Curve:      curve,
			Knee:       mixer.DefaultKnee,
		},
		RotateBeats: c.Rotate,
	}
	if err := pc.Validate(); err != nil {
		return mashup.Config{}, err
	}
	return pc, nil
}

// StretchBackend picks the time-stretch backend. Auto prefers rubberband
// and falls back to the built-in approximation.
func (c Config) StretchBackend() (timewarp.Backend, error) {
	switch strings.ToLower(c.Backend) {
	case "auto", "":
		if rb, err := timewarp.NewRubberband(c.RubberbandPath); err == nil {
			return rb, nil
		}
		return timewarp.NewApprox(), nil
	case "rubberband":
		return timewarp.NewRubberband(c.RubberbandPath)
	case "approx":
		return timewarp.NewApprox(), nil
	}
	return nil, fmt.Errorf("%w: unknown backend %q", audio.ErrInvalidParameter, c.Backend)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
