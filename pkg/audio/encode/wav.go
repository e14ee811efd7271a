// ABOUTME: RIFF/WAVE encoder
// ABOUTME: Writes 16-bit or 24-bit PCM, or 32-bit IEEE float
package encode

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/harperreed/automashup-go/pkg/audio"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

// WAVEncoder encodes WAV files
type WAVEncoder struct {
	bitDepth int
}

// NewWAV creates a new WAV encoder
func NewWAV(format audio.Format) (Encoder, error) {
	if format.Codec != "wav" {
		return nil, fmt.Errorf("invalid codec for WAV encoder: %s", format.Codec)
	}

	if format.BitDepth != 16 && format.BitDepth != 24 && format.BitDepth != 32 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24, 32)", format.BitDepth)
	}

	return &WAVEncoder{
		bitDepth: format.BitDepth,
	}, nil
}

// Encode writes a canonical 44-byte header followed by interleaved samples
func (e *WAVEncoder) Encode(dst io.Writer, w audio.Waveform) error {
	if err := w.Validate(); err != nil {
		return err
	}

	bytesPerSample := e.bitDepth / 8
	dataSize := len(w.Samples) * bytesPerSample
	tag := uint16(wavFormatPCM)
	if e.bitDepth == 32 {
		tag = wavFormatFloat
	}

	bw := bufio.NewWriter(dst)
	header := make([]byte, 44)
	copy(header[0:], "RIFF")
	binary.LittleEndian.PutUint32(header[4:], uint32(36+dataSize))
	copy(header[8:], "WAVE")
	copy(header[12:], "fmt ")
	binary.LittleEndian.PutUint32(header[16:], 16)
	binary.LittleEndian.PutUint16(header[20:], tag)
	binary.LittleEndian.PutUint16(header[22:], uint16(w.Channels))
	binary.LittleEndian.PutUint32(header[24:], uint32(w.SampleRate))
	binary.LittleEndian.PutUint32(header[28:], uint32(w.SampleRate*w.Channels*bytesPerSample))
	binary.LittleEndian.PutUint16(header[32:], uint16(w.Channels*bytesPerSample))
	binary.LittleEndian.PutUint16(header[34:], uint16(e.bitDepth))
	copy(header[36:], "data")
	binary.LittleEndian.PutUint32(header[40:], uint32(dataSize))
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("failed to write wav header: %w", err)
	}

	buf := make([]byte, bytesPerSample)
	for _, s := range w.Samples {
		switch e.bitDepth {
		case 16:
			binary.LittleEndian.PutUint16(buf, uint16(audio.SampleToInt16(s)))
		case 24:
			b := audio.SampleTo24Bit(audio.SampleToBits(s, 24))
			copy(buf, b[:])
		case 32:
			binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(s)))
		}
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("failed to write wav data: %w", err)
		}
	}
	return bw.Flush()
}
