// ABOUTME: Decoder interface and file-level helpers
// ABOUTME: Chooses a decoder from the file extension and loads whole files
package decode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harperreed/automashup-go/pkg/audio"
)

// Decoder decodes a complete audio stream into a waveform
type Decoder interface {
	// Decode reads r to the end and returns interleaved float samples
	Decode(r io.Reader) (audio.Waveform, error)
}

var byExtension = map[string]func() Decoder{
	".wav":  NewWAV,
	".wave": NewWAV,
	".mp3":  NewMP3,
	".flac": NewFLAC,
	".opus": NewOpus,
	".ogg":  NewOpus,
}

// Extensions lists the file extensions File can read
func Extensions() []string {
	exts := make([]string, 0, len(byExtension))
	for ext := range byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supported reports whether path has a decodable extension
func Supported(path string) bool {
	_, ok := byExtension[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ForPath returns the decoder for path's extension
func ForPath(path string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	newDecoder, ok := byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for %q files", audio.ErrDependencyUnavailable, ext)
	}
	return newDecoder(), nil
}

// File decodes the file at path. The waveform ID is the path.
func File(path string) (audio.Waveform, error) {
	dec, err := ForPath(path)
	if err != nil {
		return audio.Waveform{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w, err := dec.Decode(f)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	w.ID = path
	return w, nil
}
