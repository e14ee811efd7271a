// ABOUTME: Backend that shells out to the rubberband command-line tool
// ABOUTME: Round-trips audio through temporary float WAV files
package timewarp

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/audio/decode"
	"github.com/harperreed/automashup-go/pkg/audio/encode"
)

// RubberbandBinary is the executable looked up on PATH when no path is given
const RubberbandBinary = "rubberband"

// Rubberband runs the rubberband CLI
type Rubberband struct {
	path string
}

// NewRubberband locates the rubberband executable. An empty path searches PATH.
func NewRubberband(path string) (*Rubberband, error) {
	if path == "" {
		path = RubberbandBinary
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: rubberband not found: %v", audio.ErrDependencyUnavailable, err)
	}
	return &Rubberband{path: resolved}, nil
}

// Name identifies the backend
func (r *Rubberband) Name() string {
	return "rubberband"
}

// Stretch runs rubberband --tempo from:to
func (r *Rubberband) Stretch(w audio.Waveform, tempoFrom, tempoTo float64) (audio.Waveform, error) {
	return r.run(w, "--tempo", formatFloat(tempoFrom)+":"+formatFloat(tempoTo))
}

// Shift runs rubberband --frequency factor
func (r *Rubberband) Shift(w audio.Waveform, factor float64) (audio.Waveform, error) {
	return r.run(w, "--frequency", formatFloat(factor))
}

func (r *Rubberband) run(w audio.Waveform, args ...string) (audio.Waveform, error) {
	dir, err := os.MkdirTemp("", "automashup-rubberband-")
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")
	if err := encode.File(in, w, 32); err != nil {
		return audio.Waveform{}, err
	}

	args = append(args, "--quiet", in, out)
	cmd := exec.Command(r.path, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return audio.Waveform{}, fmt.Errorf("%w: rubberband failed: %v: %s", audio.ErrDependencyUnavailable, err, strings.TrimSpace(string(output)))
	}

	result, err := decode.File(out)
	if err != nil {
		return audio.Waveform{}, err
	}
	result.ID = w.ID
	return result, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
