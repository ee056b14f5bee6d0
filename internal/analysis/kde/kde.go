// Package kde estimates densities with a Gaussian kernel and Scott's bandwidth rule.
package kde

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"priorelicit/internal/analysis/numeric"
	"priorelicit/internal/errors"
)

var invSqrt2Pi = 1 / math.Sqrt(2*math.Pi)

// Gaussian is a fitted kernel density estimate
type Gaussian struct {
	data      []float64
	Bandwidth float64
}

// Fit builds the estimate. Fewer than 2 values or zero variance is a degenerate sample.
func Fit(values []float64) (*Gaussian, error) {
	if len(values) < 2 {
		return nil, errors.DegenerateSample("density estimate needs at least 2 values, got %d", len(values))
	}
	if !numeric.AllFinite(values) {
		return nil, errors.DegenerateSample("density estimate over non-finite values")
	}
	sd := stat.StdDev(values, nil)
	if !(sd > 0) || !numeric.IsFinite(sd) {
		return nil, errors.DegenerateSample("density estimate over %d constant values", len(values))
	}
	bw := sd * math.Pow(float64(len(values)), -0.2)
	return &Gaussian{data: append([]float64(nil), values...), Bandwidth: bw}, nil
}

// At evaluates the density at x
func (g *Gaussian) At(x float64) float64 {
	var sum float64
	for _, v := range g.data {
		z := (x - v) / g.Bandwidth
		sum += math.Exp(-0.5 * z * z)
	}
	return sum * invSqrt2Pi / (float64(len(g.data)) * g.Bandwidth)
}

// Evaluate returns the density at every grid point
func (g *Gaussian) Evaluate(grid []float64) []float64 {
	out := make([]float64, len(grid))
	for i, x := range grid {
		out[i] = g.At(x)
	}
	return out
}
