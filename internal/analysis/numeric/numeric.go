// Package numeric holds the grid, padding, finiteness and rounding helpers shared by the
// ranker and the predictive simulator.
package numeric

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// RangePadding is the fraction of the sample range added on each side of a plotting grid
// so densities visibly approach zero at both ends.
const RangePadding = 0.15

// Linspace returns n evenly spaced points covering [lo, hi]
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// PaddedRange returns [min - frac*range, max + frac*range] of the values
func PaddedRange(values []float64, frac float64) (lo, hi float64, err error) {
	min, err := stats.Min(values)
	if err != nil {
		return 0, 0, err
	}
	max, err := stats.Max(values)
	if err != nil {
		return 0, 0, err
	}
	pad := frac * (max - min)
	return min - pad, max + pad, nil
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AllFinite reports whether every value of every slice is finite
func AllFinite(slices ...[]float64) bool {
	for _, s := range slices {
		for _, v := range s {
			if !IsFinite(v) {
				return false
			}
		}
	}
	return true
}

// MapFinite reports whether every value in m is finite
func MapFinite(m map[string]float64) bool {
	for _, v := range m {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

// RoundSignificant rounds v to the given number of significant digits
func RoundSignificant(v float64, digits int) float64 {
	if v == 0 || !IsFinite(v) {
		return v
	}
	magnitude := math.Ceil(math.Log10(math.Abs(v)))
	pow := math.Pow(10, float64(digits)-magnitude)
	rounded := math.Round(v*pow) / pow
	if !IsFinite(rounded) {
		return v
	}
	return rounded
}

// RoundMapSignificant returns a copy of m with every value rounded
func RoundMapSignificant(m map[string]float64, digits int) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = RoundSignificant(v, digits)
	}
	return out
}

// RoundSliceSignificant returns a copy of s with every value rounded
func RoundSliceSignificant(s []float64, digits int) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = RoundSignificant(v, digits)
	}
	return out
}

// Trapezoid integrates p over the sorted grid x
func Trapezoid(x, p []float64) float64 {
	if len(x) < 2 || len(x) != len(p) {
		return 0
	}
	return integrate.Trapezoidal(x, p)
}
