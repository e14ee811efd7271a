// ABOUTME: Encoder interface and file-level helpers
// ABOUTME: Picks WAV or FLAC from the output path extension
package encode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/automashup-go/pkg/audio"
)

// Encoder writes a waveform in a container format
type Encoder interface {
	// Encode writes w to dst
	Encode(dst io.Writer, w audio.Waveform) error
}

// New returns the encoder for format.Codec
func New(format audio.Format) (Encoder, error) {
	switch format.Codec {
	case "wav":
		return NewWAV(format)
	case "flac":
		return NewFLAC(format)
	default:
		return nil, fmt.Errorf("%w: no encoder for codec %q", audio.ErrDependencyUnavailable, format.Codec)
	}
}

// CodecForPath maps a file extension to a codec name
func CodecForPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// File encodes w to path, choosing the codec from the extension
func File(path string, w audio.Waveform, bitDepth int) error {
	enc, err := New(audio.Format{
		Codec:      CodecForPath(path),
		SampleRate: w.SampleRate,
		Channels:   w.Channels,
		BitDepth:   bitDepth,
	})
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := enc.Encode(f, w); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
