package simulate

import (
	"fmt"
	"math/rand/v2"

	"priorelicit/domain/core"
	"priorelicit/domain/elicit"
	"priorelicit/internal/errors"
)

// predictorSampler fills x with one predictor vector in model order
type predictorSampler interface {
	draw(rng *rand.Rand, x []float64)
}

func newPredictorSampler(st elicit.Strategy, model *elicit.Model, data elicit.Dataset) (predictorSampler, error) {
	names := model.PredictorNames()
	switch st {
	case elicit.StrategyDistributional:
		marginals := make([][]float64, len(names))
		for j, name := range names {
			marginals[j] = data.Column(name)
			if len(marginals[j]) == 0 {
				return nil, errors.DegenerateSample("predictor %q has no observed values", name)
			}
		}
		return marginalSampler(marginals), nil
	case elicit.StrategyRelational:
		rows := data.Complete(names)
		if len(rows) == 0 {
			return nil, errors.DegenerateSample("no entity has every predictor populated")
		}
		joint := make([][]float64, len(rows))
		for i, e := range rows {
			joint[i] = make([]float64, len(names))
			for j, name := range names {
				joint[i][j], _ = e.Value(name)
			}
		}
		return jointSampler(joint), nil
	case elicit.StrategyUniform:
		bounds := make([][2]float64, len(names))
		for j, v := range model.Predictors {
			bounds[j] = [2]float64{v.Min, v.Max}
		}
		return uniformSampler(bounds), nil
	}
	return nil, errors.InvalidConfiguration(fmt.Errorf("%w: %q", core.ErrUnsupportedStrategy, st))
}

// marginalSampler draws each predictor independently from its observed values
type marginalSampler [][]float64

func (m marginalSampler) draw(rng *rand.Rand, x []float64) {
	for j, values := range m {
		x[j] = values[rng.IntN(len(values))]
	}
}

// jointSampler draws whole observed rows, keeping predictor correlation
type jointSampler [][]float64

func (s jointSampler) draw(rng *rand.Rand, x []float64) {
	copy(x, s[rng.IntN(len(s))])
}

// uniformSampler draws each predictor uniformly within its declared bounds
type uniformSampler [][2]float64

func (u uniformSampler) draw(rng *rand.Rand, x []float64) {
	for j, b := range u {
		x[j] = b[0] + (b[1]-b[0])*rng.Float64()
	}
}
