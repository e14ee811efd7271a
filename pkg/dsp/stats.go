// ABOUTME: Small vector statistics shared by feature and scoring code
// ABOUTME: Median, cosine similarity and max normalisation
package dsp

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Median returns the median of x without modifying it. Empty input returns 0.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	s := make([]float64, n)
	copy(s, x)
	sort.Float64s(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// Cosine returns the cosine similarity of a and b. Two zero vectors are
// identical (1); a zero vector against a non-zero one scores 0.
func Cosine(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	switch {
	case na == 0 && nb == 0:
		return 1
	case na == 0 || nb == 0:
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// NormalizeMax scales x in place so its largest value is 1. All-zero input is left alone.
func NormalizeMax(x []float64) {
	if len(x) == 0 {
		return
	}
	m := floats.Max(x)
	if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return
	}
	floats.Scale(1/m, x)
}

// NormalizeSum scales x in place so it sums to 1. All-zero input is left alone.
func NormalizeSum(x []float64) {
	s := floats.Sum(x)
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return
	}
	floats.Scale(1/s, x)
}
