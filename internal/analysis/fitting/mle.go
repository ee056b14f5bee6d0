package fitting

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"priorelicit/internal/analysis/numeric"
)

// infeasible is returned for parameter vectors outside a family's domain. It is finite so
// the simplex keeps contracting instead of stalling on +Inf.
const infeasible = 1e300

type decoder func(theta []float64) (shapes []float64, loc, scale float64)

// negLogLikelihood is the mean negative log likelihood of x at the decoded parameters
func negLogLikelihood(f *Family, x []float64, decode decoder) func([]float64) float64 {
	return func(theta []float64) float64 {
		shapes, loc, scale := decode(theta)
		d, err := f.Build(shapes, loc, scale, nil)
		if err != nil {
			return infeasible
		}
		var sum float64
		for _, v := range x {
			lp := d.LogProb(v)
			if !numeric.IsFinite(lp) {
				return infeasible
			}
			sum += lp
		}
		return -sum / float64(len(x))
	}
}

// maximizeLikelihood runs Nelder-Mead from init over the unconstrained vector theta.
// A run that stops on an iteration limit still yields its best point.
func maximizeLikelihood(f *Family, x, init []float64, decode decoder) ([]float64, error) {
	if !numeric.AllFinite(init) {
		return nil, fmt.Errorf("non-finite starting point %v", init)
	}
	problem := optimize.Problem{Func: negLogLikelihood(f, x, decode)}
	settings := &optimize.Settings{
		MajorIterations: 2000,
		FuncEvaluations: 8000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Relative:   1e-10,
			Iterations: 50,
		},
	}
	result, err := optimize.Minimize(problem, init, settings, &optimize.NelderMead{})
	if result == nil {
		if err == nil {
			err = fmt.Errorf("optimizer returned no result")
		}
		return nil, err
	}
	if !numeric.AllFinite(result.X) || result.F >= infeasible || math.IsNaN(result.F) {
		return nil, fmt.Errorf("likelihood did not converge to a feasible point")
	}
	return result.X, nil
}
