// ABOUTME: Tests for CLI configuration loading
// ABOUTME: Covers defaults, environment overrides, flags and derived settings
package config

import (
	"errors"
	"flag"
	"io"
	"path/filepath"
	"testing"

	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/mixer"
)

var envVars = []string{
	"AUTOMASHUP_LIBRARY", "AUTOMASHUP_DB", "AUTOMASHUP_OUTPUT", "AUTOMASHUP_FORMAT",
	"AUTOMASHUP_SEARCH_WINDOW", "AUTOMASHUP_MAX_SHIFT", "AUTOMASHUP_MIN_OVERLAP",
	"AUTOMASHUP_CHROMA_WEIGHT", "AUTOMASHUP_SPECTRUM_WEIGHT", "AUTOMASHUP_TEMPO_PENALTY",
	"AUTOMASHUP_TARGET_DBFS", "AUTOMASHUP_CROSSFADE", "AUTOMASHUP_CURVE", "AUTOMASHUP_ROTATE",
	"AUTOMASHUP_BACKEND", "AUTOMASHUP_RUBBERBAND", "AUTOMASHUP_WORKERS", "AUTOMASHUP_TOP",
	"AUTOMASHUP_LOG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.LibraryDir != "." {
		t.Errorf("expected library '.', got %q", cfg.LibraryDir)
	}
	if cfg.Format != "wav" {
		t.Errorf("expected format wav, got %q", cfg.Format)
	}
	if cfg.SearchWindow != 8 || cfg.MaxShift != 6 || cfg.MinOverlap != 1 {
		t.Errorf("expected search 8/6/1, got %d/%d/%d", cfg.SearchWindow, cfg.MaxShift, cfg.MinOverlap)
	}
	if cfg.TargetDBFS != -20 {
		t.Errorf("expected -20 dBFS, got %v", cfg.TargetDBFS)
	}
	if cfg.Backend != "auto" {
		t.Errorf("expected backend auto, got %q", cfg.Backend)
	}
	if cfg.Top != 10 {
		t.Errorf("expected top 10, got %d", cfg.Top)
	}
	if cfg.LogFile != "automashup.log" {
		t.Errorf("expected automashup.log, got %q", cfg.LogFile)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTOMASHUP_LIBRARY", "/music")
	t.Setenv("AUTOMASHUP_SEARCH_WINDOW", "4")
	t.Setenv("AUTOMASHUP_TARGET_DBFS", "-14.5")
	t.Setenv("AUTOMASHUP_CURVE", "linear")

	cfg := Load()
	if cfg.LibraryDir != "/music" {
		t.Errorf("expected /music, got %q", cfg.LibraryDir)
	}
	if cfg.SearchWindow != 4 {
		t.Errorf("expected window 4, got %d", cfg.SearchWindow)
	}
	if cfg.TargetDBFS != -14.5 {
		t.Errorf("expected -14.5, got %v", cfg.TargetDBFS)
	}
	if cfg.Curve != "linear" {
		t.Errorf("expected linear, got %q", cfg.Curve)
	}
}

func TestLoadInvalidEnvFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTOMASHUP_MAX_SHIFT", "lots")
	t.Setenv("AUTOMASHUP_CROSSFADE", "soon")

	cfg := Load()
	if cfg.MaxShift != 6 {
		t.Errorf("expected fallback 6, got %d", cfg.MaxShift)
	}
	if cfg.Crossfade != mixer.DefaultCrossfade {
		t.Errorf("expected fallback %v, got %v", mixer.DefaultCrossfade, cfg.Crossfade)
	}
}

func TestParseFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTOMASHUP_TOP", "3")

	cfg, rest, err := Parse("mashability", []string{"-top", "5", "-format", "flac", "-no-tui", "song.mp3"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cfg.Top != 5 {
		t.Errorf("expected top 5, got %d", cfg.Top)
	}
	if cfg.Format != "flac" || !cfg.NoTUI {
		t.Errorf("expected flac with no TUI, got %q/%v", cfg.Format, cfg.NoTUI)
	}
	if len(rest) != 1 || rest[0] != "song.mp3" {
		t.Errorf("expected [song.mp3], got %v", rest)
	}
}

func TestParseUnknownFlag(t *testing.T) {
	clearEnv(t)
	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg := Load()
	cfg.RegisterFlags(fs)
	if err := fs.Parse([]string{"-bogus"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Config{LibraryDir: "/music", Format: "FLAC"}
	if got := cfg.DatabasePath(); got != filepath.Join("/music", DatabaseName) {
		t.Errorf("expected default database path, got %q", got)
	}
	if got := cfg.OutputPath("/songs/track.mp3"); got != "/songs/track_mashup.flac" {
		t.Errorf("expected /songs/track_mashup.flac, got %q", got)
	}

	cfg.Database = "/tmp/cache.db"
	cfg.Output = "out.wav"
	if cfg.DatabasePath() != "/tmp/cache.db" || cfg.OutputPath("x.mp3") != "out.wav" {
		t.Error("expected explicit paths to win")
	}
}

func TestPipeline(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	pc, err := cfg.Pipeline()
	if err != nil {
		t.Fatalf("pipeline config failed: %v", err)
	}
	if pc.Scoring.SearchWindowBeats != 8 || pc.Mixing.Curve != mixer.EqualPower {
		t.Errorf("expected defaults to carry over, got %+v", pc)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad curve", func(c *Config) { c.Curve = "cubic" }},
		{"bad format", func(c *Config) { c.Format = "ogg" }},
		{"bad shift", func(c *Config) { c.MaxShift = 20 }},
		{"bad target", func(c *Config) { c.TargetDBFS = 6 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Load()
			tt.mutate(&c)
			if _, err := c.Pipeline(); !errors.Is(err, audio.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestStretchBackend(t *testing.T) {
	tests := []struct {
		backend  string
		expected string
	}{
		{"approx", "approx"},
	}
	for _, tt := range tests {
		b, err := Config{Backend: tt.backend}.StretchBackend()
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tt.backend, err)
		}
		if b.Name() != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, b.Name())
		}
	}

	b, err := Config{Backend: "auto", RubberbandPath: "/nonexistent/rubberband"}.StretchBackend()
	if err != nil || b.Name() != "approx" {
		t.Errorf("expected auto to fall back to approx, got %v (%v)", b, err)
	}

	_, err = Config{Backend: "rubberband", RubberbandPath: "/nonexistent/rubberband"}.StretchBackend()
	if !errors.Is(err, audio.ErrDependencyUnavailable) {
		t.Errorf("expected ErrDependencyUnavailable, got %v", err)
	}

	_, err = Config{Backend: "sox"}.StretchBackend()
	if !errors.Is(err, audio.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}
