// ABOUTME: Synthetic audio generator for tests and examples
// ABOUTME: Builds click tracks over sine chords at a known tempo, plus seeded noise
package testtone

import (
	"math"
	"math/rand"

	"github.com/harperreed/automashup-go/pkg/audio"
)

// A minor triad (A3, C4, E4)
var AMinor = []float64{220.0, 261.63, 329.63}

// C major triad (C4, E4, G4)
var CMajor = []float64{261.63, 329.63, 392.00}

// Options describes a synthetic track
type Options struct {
	BPM        float64
	Seconds    float64
	SampleRate int
	Channels   int
	Chord      []float64 // sustained partials in Hz
	Offset     float64   // time of the first click in seconds
	ClickLevel float64
	ToneLevel  float64
}

// DefaultOptions returns a 10 second 120 BPM mono track over an A minor chord
func DefaultOptions() Options {
	return Options{
		BPM:        120,
		Seconds:    10,
		SampleRate: 22050,
		Channels:   1,
		Chord:      AMinor,
		ClickLevel: 0.6,
		ToneLevel:  0.2,
	}
}

// Track renders a click on every beat over a sustained chord
func Track(opts Options) audio.Waveform {
	frames := int(opts.Seconds * float64(opts.SampleRate))
	mono := make([]float64, frames)
	rate := float64(opts.SampleRate)

	// Sustained chord
	if len(opts.Chord) > 0 && opts.ToneLevel > 0 {
		amp := opts.ToneLevel / float64(len(opts.Chord))
		for i := range mono {
			t := float64(i) / rate
			for _, f := range opts.Chord {
				mono[i] += amp * math.Sin(2*math.Pi*f*t)
			}
		}
	}

	// 30 ms decaying 1 kHz burst on each beat
	if opts.BPM > 0 && opts.ClickLevel > 0 {
		period := 60.0 / opts.BPM
		clickLen := int(0.03 * rate)
		for beat := opts.Offset; beat < opts.Seconds; beat += period {
			start := int(beat * rate)
			for i := 0; i < clickLen && start+i < frames; i++ {
				env := math.Exp(-float64(i) / (0.005 * rate))
				mono[start+i] += opts.ClickLevel * env * math.Sin(2*math.Pi*1000*float64(i)/rate)
			}
		}
	}

	channels := opts.Channels
	if channels < 1 {
		channels = 1
	}
	samples := make([]float64, frames*channels)
	for i, s := range mono {
		for ch := 0; ch < channels; ch++ {
			samples[i*channels+ch] = s
		}
	}
	return audio.NewWaveform(samples, opts.SampleRate, channels)
}

// Sine renders a mono sine at the given peak amplitude
func Sine(freq, amplitude, seconds float64, sampleRate int) audio.Waveform {
	frames := int(seconds * float64(sampleRate))
	samples := make([]float64, frames)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return audio.NewWaveform(samples, sampleRate, 1)
}

// Noise renders n uniform samples in [0, 1) from a fixed seed
func Noise(n int, seed int64, sampleRate int) audio.Waveform {
	r := rand.New(rand.NewSource(seed))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = r.Float64()
	}
	return audio.NewWaveform(samples, sampleRate, 1)
}
