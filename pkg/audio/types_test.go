// ABOUTME: Tests for audio sample conversions
// ABOUTME: Covers float to integer PCM round trips and clipping
package audio

import (
	"math"
	"testing"
)

func TestSampleFromInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected float64
	}{
		{"zero", 0, 0},
		{"half", 16384, 0.5},
		{"negative half", -16384, -0.5},
		{"min", -32768, -1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFromInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestSampleToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected int16
	}{
		{"zero", 0, 0},
		{"half", 0.5, 16384},
		{"full scale clips", 1.0, 32767},
		{"over range clips", 3.0, 32767},
		{"under range clips", -3.0, -32768},
		{"nan is silent", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleToInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestSampleBits24(t *testing.T) {
	if got := SampleToBits(1.0, 24); got != Max24Bit {
		t.Errorf("expected %d, got %d", Max24Bit, got)
	}
	if got := SampleToBits(-1.0, 24); got != Min24Bit {
		t.Errorf("expected %d, got %d", Min24Bit, got)
	}
	if got := SampleFromBits(Min24Bit, 24); got != -1.0 {
		t.Errorf("expected -1.0, got %f", got)
	}
}

func TestSampleFrom24Bit(t *testing.T) {
	tests := []struct {
		name     string
		input    [3]byte
		expected int32
	}{
		{"zero", [3]byte{0, 0, 0}, 0},
		{"positive", [3]byte{0x56, 0x34, 0x12}, 0x123456},
		{"negative", [3]byte{0x00, 0xFF, 0xFF}, -256},
		{"max positive", [3]byte{0xFF, 0xFF, 0x7F}, Max24Bit},
		{"max negative", [3]byte{0x00, 0x00, 0x80}, Min24Bit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFrom24Bit(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
			if back := SampleTo24Bit(result); back != tt.input {
				t.Errorf("expected %v, got %v", tt.input, back)
			}
		})
	}
}

func TestRoundTrip16Bit(t *testing.T) {
	samples := []int16{0, 100, -100, 1000, -1000, 32767, -32768}

	for _, original := range samples {
		f := SampleFromInt16(original)
		result := SampleToInt16(f)
		if result != original {
			t.Errorf("round-trip failed: %d -> %f -> %d", original, f, result)
		}
	}
}
