package simulate

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priorelicit/domain/core"
	"priorelicit/domain/elicit"
	"priorelicit/internal/analysis/numeric"
)

func doseModel(t *testing.T) *elicit.Model {
	t.Helper()
	m, err := elicit.NewModel([]elicit.Variable{
		{Name: "dose", Role: elicit.RolePredictor, Min: 0, Max: 10},
		{Name: "effect", Role: elicit.RoleResponse, Min: 0, Max: 20},
	}, nil)
	require.NoError(t, err)
	return m
}

func normPrior(loc, scale float64) elicit.FittedDistribution {
	return elicit.FittedDistribution{Name: "norm", Params: map[string]float64{"loc": loc, "scale": scale}}
}

func doseData() elicit.Dataset {
	return elicit.Dataset{
		{"dose": 1.0, "effect": 1.2},
		{"dose": 2.0, "effect": 2.1},
		{"dose": 4.0, "effect": 3.9},
		{"dose": 7.0, "effect": 7.4},
		{"dose": 9.0, "effect": nil},
	}
}

func TestRun_UniformScenario(t *testing.T) {
	sim := New(Options{Checks: 10, Samples: 100, GridPoints: 100}, nil)
	priors := map[string]elicit.FittedDistribution{
		"dose":               normPrior(1, 0.1),
		elicit.InterceptName: normPrior(0, 0.1),
	}

	results, err := sim.Run(context.Background(), rand.New(rand.NewPCG(1, 2)), doseModel(t), nil, priors,
		[]elicit.Strategy{elicit.StrategyUniform})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, elicit.StrategyUniform, res.Strategy)
	require.Len(t, res.Checks, 10)
	assert.Empty(t, res.Excluded)

	lo, hi := responseRange(res)
	pad := numeric.RangePadding * (hi - lo)
	assert.InDelta(t, lo-pad, res.MinResponseVal, 1e-9)
	assert.InDelta(t, hi+pad, res.MaxResponseVal, 1e-9)
	assert.Less(t, res.MinResponseVal, lo)
	assert.Greater(t, res.MaxResponseVal, hi)

	for _, c := range res.Checks {
		require.Len(t, c.Dataset, 100)
		require.NotNil(t, c.Density)
		require.Len(t, c.Density.P, 100)
		for _, p := range c.Density.P {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, res.MaxDensityVal)
		}
		for _, row := range c.Dataset {
			assert.GreaterOrEqual(t, row["dose"], 0.0)
			assert.LessOrEqual(t, row["dose"], 10.0)
		}
	}
	require.Len(t, res.Average.P, 100)
	assert.True(t, numeric.AllFinite(res.Average.X, res.Average.P))
}

func TestRun_DistributionalDrawsObservedValues(t *testing.T) {
	sim := New(Options{Checks: 3, Samples: 50}, nil)
	priors := map[string]elicit.FittedDistribution{
		"dose":               normPrior(1, 0.2),
		elicit.InterceptName: normPrior(0.5, 0.2),
	}
	data := doseData()
	observed := map[float64]bool{}
	for _, v := range data.Column("dose") {
		observed[v] = true
	}

	results, err := sim.Run(context.Background(), rand.New(rand.NewPCG(3, 4)), doseModel(t), data, priors,
		[]elicit.Strategy{elicit.StrategyDistributional, elicit.StrategyRelational})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, c := range results[0].Checks {
		for _, row := range c.Dataset {
			assert.True(t, observed[row["dose"]], "dose %v not observed", row["dose"])
		}
	}
	// relational draws only complete rows, and dose=9 has no effect
	for _, c := range results[1].Checks {
		for _, row := range c.Dataset {
			assert.True(t, observed[row["dose"]])
		}
	}
}

func TestRun_SharedParameterDrawsAcrossStrategies(t *testing.T) {
	sim := New(Options{Checks: 4, Samples: 20}, nil)
	priors := map[string]elicit.FittedDistribution{
		"dose":               normPrior(1, 0.5),
		elicit.InterceptName: normPrior(0, 1),
	}

	results, err := sim.Run(context.Background(), rand.New(rand.NewPCG(9, 9)), doseModel(t), doseData(), priors, nil)
	require.NoError(t, err)
	require.Len(t, results, len(elicit.Strategies))
	for i := range results[0].Checks {
		assert.Equal(t, results[0].Checks[i].Parameters, results[2].Checks[i].Parameters)
	}
}

func TestRun_Deterministic(t *testing.T) {
	sim := New(Options{Checks: 3, Samples: 30}, nil)
	priors := map[string]elicit.FittedDistribution{
		"dose":               {Name: "gamma", Params: map[string]float64{"a": 2, "loc": 0, "scale": 0.5}},
		elicit.InterceptName: normPrior(0, 1),
	}
	run := func() []elicit.PredictiveCheck {
		out, err := sim.Run(context.Background(), rand.New(rand.NewPCG(5, 5)), doseModel(t), doseData(), priors,
			[]elicit.Strategy{elicit.StrategyUniform})
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, run(), run())
}

func TestRun_Errors(t *testing.T) {
	model := doseModel(t)
	good := map[string]elicit.FittedDistribution{
		"dose":               normPrior(1, 0.1),
		elicit.InterceptName: normPrior(0, 0.1),
	}
	tests := []struct {
		name       string
		data       elicit.Dataset
		priors     map[string]elicit.FittedDistribution
		strategies []elicit.Strategy
		want       error
	}{
		{
			name:       "missing prior",
			priors:     map[string]elicit.FittedDistribution{"dose": normPrior(1, 0.1)},
			strategies: []elicit.Strategy{elicit.StrategyUniform},
			want:       core.ErrMissingPrior,
		},
		{
			name: "unknown family",
			priors: map[string]elicit.FittedDistribution{
				"dose":               {Name: "cauchy", Params: map[string]float64{"loc": 0, "scale": 1}},
				elicit.InterceptName: normPrior(0, 0.1),
			},
			strategies: []elicit.Strategy{elicit.StrategyUniform},
			want:       core.ErrUnsupportedFamily,
		},
		{
			name:       "unknown strategy",
			priors:     good,
			strategies: []elicit.Strategy{"bayesian"},
			want:       core.ErrUnsupportedStrategy,
		},
		{
			name:       "empty marginal",
			priors:     good,
			data:       elicit.Dataset{{"effect": 1.0}},
			strategies: []elicit.Strategy{elicit.StrategyDistributional},
			want:       core.ErrDegenerateSample,
		},
		{
			name:       "no complete rows",
			priors:     good,
			strategies: []elicit.Strategy{elicit.StrategyRelational},
			want:       core.ErrDegenerateSample,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(DefaultOptions(), nil).Run(context.Background(), rand.New(rand.NewPCG(1, 1)), model, tt.data, tt.priors, tt.strategies)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRun_ConstantResponsesAreDegenerate(t *testing.T) {
	model := doseModel(t)
	priors := map[string]elicit.FittedDistribution{
		"dose":               normPrior(1, 0.1),
		elicit.InterceptName: normPrior(0, 0.1),
	}
	data := elicit.Dataset{{"dose": 0.0}, {"dose": 0.0}}

	_, err := New(Options{Checks: 2, Samples: 10}, nil).Run(context.Background(), rand.New(rand.NewPCG(1, 1)), model, data, priors,
		[]elicit.Strategy{elicit.StrategyDistributional})
	// responses differ across checks through the intercept draw, but every check is constant
	assert.ErrorIs(t, err, core.ErrDegenerateSample)
}

func responseRange(res elicit.PredictiveCheck) (float64, float64) {
	lo, hi := res.Checks[0].Responses[0], res.Checks[0].Responses[0]
	for _, c := range res.Checks {
		for _, y := range c.Responses {
			lo = min(lo, y)
			hi = max(hi, y)
		}
	}
	return lo, hi
}
