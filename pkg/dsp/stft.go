// ABOUTME: Short-time Fourier transform and analysis-signal preparation
// ABOUTME: Hann-windowed magnitude frames computed with gonum's real FFT
package dsp

import (
	"fmt"
	"math/cmplx"

	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/audio/resample"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// AnalysisRate is the mono sample rate all analysis runs at
	AnalysisRate = 22050
	// FrameSize is the STFT frame length in samples at AnalysisRate
	FrameSize = 2048
	// HopSize is the STFT hop in samples at AnalysisRate
	HopSize = 512
)

// Spectrogram holds magnitude frames of a real signal
type Spectrogram struct {
	Frames     [][]float64 // Frames[t][k] is the magnitude of bin k in frame t
	SampleRate int
	FrameSize  int
	HopSize    int
}

// BinFrequency returns the centre frequency of bin k in Hz
func (s Spectrogram) BinFrequency(k int) float64 {
	return float64(k) * float64(s.SampleRate) / float64(s.FrameSize)
}

// FrameRate returns frames per second
func (s Spectrogram) FrameRate() float64 {
	return float64(s.SampleRate) / float64(s.HopSize)
}

// FrameTime returns the centre time of frame t in seconds
func (s Spectrogram) FrameTime(t int) float64 {
	return (float64(t*s.HopSize) + float64(s.FrameSize)/2) / float64(s.SampleRate)
}

// Bins returns the number of magnitude bins per frame
func (s Spectrogram) Bins() int {
	return s.FrameSize/2 + 1
}

// STFT computes Hann-windowed magnitude frames. Signals shorter than one
// frame produce an empty spectrogram.
func STFT(samples []float64, sampleRate, frameSize, hop int) Spectrogram {
	spec := Spectrogram{
		SampleRate: sampleRate,
		FrameSize:  frameSize,
		HopSize:    hop,
	}
	if len(samples) < frameSize {
		return spec
	}

	fft := fourier.NewFFT(frameSize)
	win := window.Hann(frameSize)
	buf := make([]float64, frameSize)
	var coeffs []complex128

	n := 1 + (len(samples)-frameSize)/hop
	spec.Frames = make([][]float64, n)
	for t := 0; t < n; t++ {
		start := t * hop
		for i := 0; i < frameSize; i++ {
			buf[i] = samples[start+i] * win[i]
		}
		coeffs = fft.Coefficients(coeffs, buf)
		mags := make([]float64, len(coeffs))
		for k, c := range coeffs {
			mags[k] = cmplx.Abs(c)
		}
		spec.Frames[t] = mags
	}
	return spec
}

// AnalysisSignal validates w, folds it to mono and resamples it to AnalysisRate
func AnalysisSignal(w audio.Waveform) ([]float64, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	mono := audio.NewWaveform(w.Mono(), w.SampleRate, 1)
	out, err := resample.Waveform(mono, AnalysisRate)
	if err != nil {
		return nil, fmt.Errorf("failed to resample for analysis: %w", err)
	}
	if len(out.Samples) < FrameSize {
		return nil, fmt.Errorf("%w: %d samples is shorter than one analysis frame", audio.ErrInsufficientAudio, len(out.Samples))
	}
	return out.Samples, nil
}

// AnalysisSpectrogram is STFT with the shared analysis frame and hop
func AnalysisSpectrogram(samples []float64) Spectrogram {
	return STFT(samples, AnalysisRate, FrameSize, HopSize)
}
