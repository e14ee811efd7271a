// ABOUTME: Constant pitch-resolution chroma
// ABOUTME: Pools one band per semitone and folds them into 12 pitch classes
package features

import "github.com/harperreed/automashup-go/pkg/dsp"

const (
	// PitchClasses is the chroma dimension; index 0 is C
	PitchClasses = 12

	chromaLowMIDI  = 36 // C2
	chromaHighMIDI = 96 // C7, exclusive
)

// Chroma computes one max-normalised 12-bin chroma vector per spectrogram frame
func Chroma(spec dsp.Spectrogram) [][]float64 {
	bands := make([]band, 0, chromaHighMIDI-chromaLowMIDI)
	for m := chromaLowMIDI; m < chromaHighMIDI; m++ {
		bands = append(bands, newBand(midiToHz(float64(m)-0.5), midiToHz(float64(m)+0.5), spec))
	}

	out := make([][]float64, len(spec.Frames))
	for t, mags := range spec.Frames {
		row := make([]float64, PitchClasses)
		for i, b := range bands {
			row[(chromaLowMIDI+i)%PitchClasses] += b.value(mags)
		}
		dsp.NormalizeMax(row)
		out[t] = row
	}
	return out
}
