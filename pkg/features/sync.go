// ABOUTME: Beat-synchronous aggregation of frame features
// ABOUTME: Median over the frames of each inter-beat interval
package features

import (
	"math"

	"github.com/harperreed/automashup-go/pkg/dsp"
)

// BeatSync reduces per-frame feature rows to one row per inter-beat interval.
// Interval i covers [beats[i], beats[i+1]); an interval that contains no
// frame centre takes the frame nearest its midpoint. The result always has
// len(beats)-1 rows.
func BeatSync(frames [][]float64, frameTimes []float64, beats []float64) [][]float64 {
	if len(beats) < 2 || len(frames) == 0 {
		return nil
	}
	dims := len(frames[0])

	out := make([][]float64, len(beats)-1)
	col := make([]float64, 0, len(frames))
	for i := 0; i < len(beats)-1; i++ {
		lo, hi := beats[i], beats[i+1]

		var members []int
		for t, ft := range frameTimes {
			if ft >= lo && ft < hi {
				members = append(members, t)
			}
		}
		if len(members) == 0 {
			members = []int{nearestFrame(frameTimes, (lo+hi)/2)}
		}

		row := make([]float64, dims)
		for d := 0; d < dims; d++ {
			col = col[:0]
			for _, t := range members {
				col = append(col, frames[t][d])
			}
			row[d] = dsp.Median(col)
		}
		out[i] = row
	}
	return out
}

func nearestFrame(frameTimes []float64, at float64) int {
	best := 0
	bestDist := math.Inf(1)
	for t, ft := range frameTimes {
		if d := math.Abs(ft - at); d < bestDist {
			best = t
			bestDist = d
		}
	}
	return best
}
