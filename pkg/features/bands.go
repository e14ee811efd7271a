// ABOUTME: Frequency-band pooling of magnitude spectra
// ABOUTME: Backs both the semitone chroma and the log-spaced spectrum features
package features

import (
	"math"

	"github.com/harperreed/automashup-go/pkg/dsp"
)

// band pools the magnitude bins between lo and hi Hz. Bands narrower than a
// bin fall back to linear interpolation at the centre frequency.
type band struct {
	bins   []int
	interp int     // lower bin for interpolation when bins is empty
	frac   float64 // interpolation weight of interp+1
}

func newBand(lo, hi float64, spec dsp.Spectrogram) band {
	var b band
	for k := 0; k < spec.Bins(); k++ {
		f := spec.BinFrequency(k)
		if f >= lo && f < hi {
			b.bins = append(b.bins, k)
		}
	}
	if len(b.bins) == 0 {
		centre := math.Sqrt(lo * hi)
		pos := centre / spec.BinFrequency(1)
		b.interp = int(pos)
		if b.interp >= spec.Bins()-1 {
			b.interp = spec.Bins() - 2
		}
		b.frac = pos - float64(b.interp)
	}
	return b
}

func (b band) value(mags []float64) float64 {
	if len(b.bins) == 0 {
		return mags[b.interp]*(1-b.frac) + mags[b.interp+1]*b.frac
	}
	var sum float64
	for _, k := range b.bins {
		sum += mags[k]
	}
	return sum / float64(len(b.bins))
}

func midiToHz(m float64) float64 {
	return 440 * math.Pow(2, (m-69)/12)
}
