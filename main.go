// ABOUTME: Entry point for the automashup command
// ABOUTME: Dispatches subcommands, sets up logging and maps errors to exit codes
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/automashup-go/internal/app"
	"github.com/harperreed/automashup-go/internal/config"
	"github.com/harperreed/automashup-go/internal/version"
	"github.com/harperreed/automashup-go/pkg/audio"
)

const usage = `Usage: automashup <command> [flags] [song]

Commands:
  mashability [song]  Rank library songs by how well they mash up with song
                      (without a song, print the pairwise library matrix)
  generate <song>     Render a mashup of song and its best library partner
  tempo <song>        Estimate the tempo of song (-hint to correct octave errors)
  play <file>         Play an audio file

Run "automashup <command> -h" for the flags of a command.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	switch args[0] {
	case "--version", "-version", "version":
		fmt.Fprintln(stdout, version.String())
		return 0
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		fmt.Fprintf(stdout, "\n%s %s by %s\n", version.Product, version.Version, version.Manufacturer)
		return 0
	case "mashability", "generate", "tempo", "play":
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n%s", args[0], usage)
		return 1
	}

	cmd := args[0]
	cfg, rest, err := config.Parse(cmd, args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	// Only the interactive ranking view owns the terminal
	useTUI := cmd == "mashability" && len(rest) > 0 && !cfg.NoTUI
	if !useTUI {
		cfg.NoTUI = true
	}

	// Set up logging
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to open log file: %v\n", err)
		return 1
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stderr and file
		log.SetOutput(io.MultiWriter(stderr, f))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, cmd, cfg, rest, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, audio.ErrDependencyUnavailable) {
			fmt.Fprintln(stderr, "Please ensure all audio processing dependencies are installed.")
		}
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, cmd string, cfg config.Config, rest []string, stdout, stderr io.Writer) error {
	song := ""
	if len(rest) > 0 {
		song = rest[0]
	}
	if len(rest) > 1 {
		return fmt.Errorf("%w: unexpected arguments %v (flags go before the song)", audio.ErrInvalidParameter, rest[1:])
	}
	if song == "" && cmd != "mashability" {
		return fmt.Errorf("%w: %s needs a song", audio.ErrInvalidParameter, cmd)
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	a.Stdout, a.Stderr = stdout, stderr
	log.Printf("Starting %s %s", version.String(), cmd)

	switch cmd {
	case "mashability":
		return a.Mashability(ctx, song)
	case "generate":
		_, err := a.Generate(ctx, song)
		return err
	case "tempo":
		return a.Tempo(song)
	case "play":
		return a.Play(ctx, song)
	}
	return nil
}
