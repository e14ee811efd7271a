// ABOUTME: RIFF/WAVE decoder
// ABOUTME: Reads 8/16/24/32-bit PCM and 32/64-bit float, including WAVE_FORMAT_EXTENSIBLE
package decode

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/harperreed/automashup-go/pkg/audio"
)

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE

	// Largest fmt chunk we buffer; WAVE_FORMAT_EXTENSIBLE needs 40 bytes
	maxWAVFormatChunk = 64
)

// WAVDecoder decodes WAV files
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV() Decoder {
	return &WAVDecoder{}
}

type wavFormat struct {
	tag        uint16
	channels   int
	sampleRate int
	bits       int
}

// Decode walks the RIFF chunks and converts the data chunk to float samples
func (d *WAVDecoder) Decode(r io.Reader) (audio.Waveform, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return audio.Waveform{}, fmt.Errorf("%w: short RIFF header", audio.ErrInvalidAudio)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return audio.Waveform{}, fmt.Errorf("%w: not a RIFF/WAVE stream", audio.ErrInvalidAudio)
	}

	var format *wavFormat
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return audio.Waveform{}, fmt.Errorf("%w: missing data chunk", audio.ErrInvalidAudio)
		}
		id := string(hdr[0:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:8]))

		switch id {
		case "fmt ":
			body := make([]byte, min(size, maxWAVFormatChunk))
			if _, err := io.ReadFull(r, body); err != nil {
				return audio.Waveform{}, fmt.Errorf("%w: truncated fmt chunk", audio.ErrInvalidAudio)
			}
			if rest := size - int64(len(body)); rest > 0 {
				if _, err := io.CopyN(io.Discard, r, rest); err != nil {
					return audio.Waveform{}, fmt.Errorf("%w: truncated fmt chunk", audio.ErrInvalidAudio)
				}
			}
			f, err := parseWAVFormat(body)
			if err != nil {
				return audio.Waveform{}, err
			}
			format = f
		case "data":
			if format == nil {
				return audio.Waveform{}, fmt.Errorf("%w: data chunk before fmt chunk", audio.ErrInvalidAudio)
			}
			// Streams written without a final size report 0 or 0xFFFFFFFF
			var data []byte
			var err error
			if size == 0 || size == 0xFFFFFFFF {
				data, err = io.ReadAll(r)
			} else {
				// The header size is untrusted; a short read keeps what is present
				data, err = io.ReadAll(io.LimitReader(r, size))
			}
			if err != nil {
				return audio.Waveform{}, fmt.Errorf("failed to read wav data: %w", err)
			}
			return convertWAV(data, format)
		default:
			if _, err := io.CopyN(io.Discard, r, size+size%2); err != nil {
				return audio.Waveform{}, fmt.Errorf("%w: truncated %q chunk", audio.ErrInvalidAudio, id)
			}
			continue
		}
		if size%2 == 1 {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil {
				return audio.Waveform{}, fmt.Errorf("%w: truncated chunk padding", audio.ErrInvalidAudio)
			}
		}
	}
}

func parseWAVFormat(body []byte) (*wavFormat, error) {
	if len(body) < 16 {
		return nil, fmt.Errorf("%w: fmt chunk is %d bytes", audio.ErrInvalidAudio, len(body))
	}
	f := &wavFormat{
		tag:        binary.LittleEndian.Uint16(body[0:2]),
		channels:   int(binary.LittleEndian.Uint16(body[2:4])),
		sampleRate: int(binary.LittleEndian.Uint32(body[4:8])),
		bits:       int(binary.LittleEndian.Uint16(body[14:16])),
	}
	if f.tag == wavFormatExtensible {
		if len(body) < 26 {
			return nil, fmt.Errorf("%w: short extensible fmt chunk", audio.ErrInvalidAudio)
		}
		// The sub-format GUID starts with the plain format tag
		f.tag = binary.LittleEndian.Uint16(body[24:26])
	}
	if f.channels <= 0 || f.sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", audio.ErrInvalidAudio, f.channels, f.sampleRate)
	}
	switch {
	case f.tag == wavFormatPCM && (f.bits == 8 || f.bits == 16 || f.bits == 24 || f.bits == 32):
	case f.tag == wavFormatFloat && (f.bits == 32 || f.bits == 64):
	default:
		return nil, fmt.Errorf("%w: wav format %d with %d bits", audio.ErrDependencyUnavailable, f.tag, f.bits)
	}
	return f, nil
}

func convertWAV(data []byte, f *wavFormat) (audio.Waveform, error) {
	width := f.bits / 8
	n := len(data) / width
	n -= n % f.channels
	samples := make([]float64, n)

	for i := 0; i < n; i++ {
		b := data[i*width : (i+1)*width]
		switch {
		case f.tag == wavFormatFloat && f.bits == 32:
			samples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		case f.tag == wavFormatFloat:
			samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(b))
		case f.bits == 8:
			// 8-bit WAV is unsigned
			samples[i] = (float64(b[0]) - 128) / 128
		case f.bits == 16:
			samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(b)))
		case f.bits == 24:
			samples[i] = audio.SampleFromBits(audio.SampleFrom24Bit([3]byte{b[0], b[1], b[2]}), 24)
		case f.bits == 32:
			samples[i] = audio.SampleFromBits(int32(binary.LittleEndian.Uint32(b)), 32)
		}
	}

	return audio.NewWaveform(samples, f.sampleRate, f.channels), nil
}
