package resample

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"priorelicit/domain/core"
	"priorelicit/internal/analysis/numeric"
)

// design holds the usable rows as an intercept-augmented design matrix and response
type design struct {
	x *mat.Dense
	y *mat.VecDense
}

// newDesign lays out rows [1, x_1..x_k] with the response alongside. rows must be complete.
func newDesign(predictors [][]float64, response []float64) design {
	n := len(response)
	k := len(predictors)
	x := mat.NewDense(n, k+1, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		for j := 0; j < k; j++ {
			x.Set(i, j+1, predictors[j][i])
		}
	}
	return design{x: x, y: mat.NewVecDense(n, append([]float64(nil), response...))}
}

// subset builds the design of the given row indices, duplicates included
func (d design) subset(idx []int) design {
	_, cols := d.x.Dims()
	x := mat.NewDense(len(idx), cols, nil)
	y := mat.NewVecDense(len(idx), nil)
	for i, row := range idx {
		x.SetRow(i, d.x.RawRowView(row))
		y.SetVec(i, d.y.AtVec(row))
	}
	return design{x: x, y: y}
}

// solve returns the least-squares coefficients [intercept, b_1..b_k]. Rank deficient or
// ill-conditioned systems report ErrSingularDesign.
func (d design) solve() ([]float64, error) {
	rows, cols := d.x.Dims()
	if rows < cols {
		return nil, fmt.Errorf("%w: %d rows for %d coefficients", core.ErrSingularDesign, rows, cols)
	}
	var beta mat.VecDense
	if err := beta.SolveVec(d.x, d.y); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSingularDesign, err)
	}
	coef := mat.Col(nil, 0, &beta)
	if !numeric.AllFinite(coef) {
		return nil, fmt.Errorf("%w: non-finite coefficients", core.ErrSingularDesign)
	}
	return coef, nil
}
