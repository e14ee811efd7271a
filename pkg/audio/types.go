// ABOUTME: Sample conversion helpers between float and integer PCM
// ABOUTME: Used by decoders, encoders and playback to move in and out of float64 samples
package audio

import "math"

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes how a waveform is stored on disk
type Format struct {
	Codec      string // "wav" or "flac"
	SampleRate int
	Channels   int
	BitDepth   int // 16, 24, or 32 (32-bit WAV is IEEE float)
}

// SampleFromInt16 converts a 16-bit PCM sample to a float in [-1, 1)
func SampleFromInt16(sample int16) float64 {
	return float64(sample) / 32768.0
}

// SampleToInt16 converts a float sample to 16-bit PCM, clipping out-of-range values
func SampleToInt16(sample float64) int16 {
	return int16(SampleToBits(sample, 16))
}

// SampleFromBits converts a signed integer sample of the given bit depth to a float
func SampleFromBits(sample int32, bitDepth int) float64 {
	return float64(sample) / float64(int64(1)<<(bitDepth-1))
}

// SampleToBits converts a float sample to a signed integer of the given bit depth
func SampleToBits(sample float64, bitDepth int) int32 {
	if math.IsNaN(sample) {
		return 0
	}
	scale := float64(int64(1) << (bitDepth - 1))
	v := math.Round(sample * scale)
	// Clip to the representable range
	if v > scale-1 {
		v = scale - 1
	}
	if v < -scale {
		v = -scale
	}
	return int32(v)
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}
