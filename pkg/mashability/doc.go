// ABOUTME: Package documentation for mashability
// ABOUTME: Explains the candidate space and how candidates are compared

// Package mashability measures how well two tracks fit together.
//
// The scorer walks every beat offset in [-SearchWindowBeats, +SearchWindowBeats]
// and every transposition in [-MaxSemitoneShift, +MaxSemitoneShift]. Each
// candidate is the weighted mean of two terms over the overlapping beat rows:
// the average cosine similarity of A's chroma and B's transposed chroma, and a
// spectral balance term comparing the summed band energy of both tracks.
//
// Identical tracks score 1 at offset 0 and no transposition. Candidates
// without enough overlap, or whose score is not finite, are never selected.
package mashability
