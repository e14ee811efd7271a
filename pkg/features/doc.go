// ABOUTME: Beat-synchronous feature extraction package
// ABOUTME: Beat tracking, chroma, band spectrum and median aggregation
// Package features turns a waveform into a beat grid and beat-synchronous
// chroma and spectrum matrices, one row per inter-beat interval.
//
// Example:
//
//	f, err := features.New().ExtractWithHint(w, 120)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d beats, %d rows\n", len(f.Beats), f.Rows())
package features
