// Package simulate runs prior predictive checks: parameter vectors are drawn from the
// fitted priors, predictors are drawn per strategy and responses are pushed through the
// linear model, then summarised with kernel density estimates.
package simulate

import (
	"context"
	"fmt"
	"maps"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"priorelicit/domain/core"
	"priorelicit/domain/elicit"
	"priorelicit/internal"
	"priorelicit/internal/analysis/fitting"
	"priorelicit/internal/analysis/kde"
	"priorelicit/internal/analysis/numeric"
	"priorelicit/internal/errors"
)

// Options sizes a predictive check
type Options struct {
	Checks     int
	Samples    int
	GridPoints int
	Workers    int
}

// DefaultOptions returns 10 checks of 100 samples on a 100-point grid
func DefaultOptions() Options {
	return Options{Checks: 10, Samples: 100, GridPoints: 100, Workers: runtime.GOMAXPROCS(0)}
}

// Simulator runs predictive checks
type Simulator struct {
	opts   Options
	logger *internal.Logger
}

// New creates a simulator; non-positive options fall back to the defaults
func New(opts Options, logger *internal.Logger) *Simulator {
	d := DefaultOptions()
	if opts.Checks < 1 {
		opts.Checks = d.Checks
	}
	if opts.Samples < 2 {
		opts.Samples = d.Samples
	}
	if opts.GridPoints < 2 {
		opts.GridPoints = d.GridPoints
	}
	if opts.Workers < 1 {
		opts.Workers = d.Workers
	}
	return &Simulator{opts: opts, logger: logger.With("simulate")}
}

// Run performs one predictive check per strategy, in the order given. All strategies
// share the same parameter draws so their curves are comparable.
func (s *Simulator) Run(ctx context.Context, rng *rand.Rand, model *elicit.Model, data elicit.Dataset,
	priors map[string]elicit.FittedDistribution, strategies []elicit.Strategy) ([]elicit.PredictiveCheck, error) {
	if len(strategies) == 0 {
		strategies = elicit.Strategies
	}
	for _, st := range strategies {
		if !st.Valid() {
			return nil, errors.InvalidConfiguration(fmt.Errorf("%w: %q", core.ErrUnsupportedStrategy, st))
		}
	}
	draws, err := s.drawParameters(rng, model, priors)
	if err != nil {
		return nil, err
	}

	out := make([]elicit.PredictiveCheck, 0, len(strategies))
	for _, st := range strategies {
		sampler, err := newPredictorSampler(st, model, data)
		if err != nil {
			return nil, err
		}
		check, err := s.check(ctx, rng, model, draws, sampler)
		if err != nil {
			return nil, errors.Wrapf(err, "%s predictive check", st)
		}
		check.Strategy = st
		out = append(out, *check)
	}
	return out, nil
}

// drawParameters draws Checks values from each parameter's prior
func (s *Simulator) drawParameters(rng *rand.Rand, model *elicit.Model, priors map[string]elicit.FittedDistribution) ([]map[string]float64, error) {
	draws := make([]map[string]float64, s.opts.Checks)
	for i := range draws {
		draws[i] = make(map[string]float64, len(model.Parameters))
	}
	for _, p := range model.Parameters {
		prior, ok := priors[p.Name]
		if !ok {
			return nil, errors.InvalidConfiguration(fmt.Errorf("%w for parameter %q", core.ErrMissingPrior, p.Name))
		}
		fam, err := fitting.Lookup(prior.Name)
		if err != nil {
			return nil, errors.InvalidConfiguration(err)
		}
		dist, err := fam.New(prior.Params, rng)
		if err != nil {
			return nil, errors.InvalidConfiguration(fmt.Errorf("prior for %q: %w", p.Name, err))
		}
		for i := range draws {
			v := dist.Rand()
			if !numeric.IsFinite(v) {
				return nil, errors.DegenerateSample("prior %s for %q drew a non-finite value", prior.Name, p.Name)
			}
			draws[i][p.Name] = v
		}
	}
	return draws, nil
}

// check simulates every check for one strategy and estimates the densities
func (s *Simulator) check(ctx context.Context, rng *rand.Rand, model *elicit.Model, draws []map[string]float64,
	sampler predictorSampler) (*elicit.PredictiveCheck, error) {
	predictors := model.PredictorNames()
	intercept := model.Intercept().Name
	coefs := make([]string, len(predictors))
	for j, name := range predictors {
		p, _ := model.ParameterFor(name)
		coefs[j] = p.Name
	}

	checks := make([]elicit.SimulationCheck, len(draws))
	lo, hi := math.Inf(1), math.Inf(-1)
	x := make([]float64, len(predictors))
	for i, params := range draws {
		rows := make([]map[string]float64, s.opts.Samples)
		responses := make([]float64, s.opts.Samples)
		for k := range rows {
			sampler.draw(rng, x)
			y := params[intercept]
			row := make(map[string]float64, len(predictors)+1)
			for j, name := range predictors {
				y += params[coefs[j]] * x[j]
				row[name] = x[j]
			}
			row[model.Response.Name] = y
			rows[k] = row
			responses[k] = y
			lo = math.Min(lo, y)
			hi = math.Max(hi, y)
		}
		checks[i] = elicit.SimulationCheck{Index: i, Parameters: maps.Clone(params), Dataset: rows, Responses: responses}
	}
	if !numeric.IsFinite(lo) || !numeric.IsFinite(hi) {
		return nil, errors.DegenerateSample("simulated responses are not finite")
	}
	if lo == hi {
		return nil, errors.DegenerateSample("every simulated response equals %g", lo)
	}

	pad := numeric.RangePadding * (hi - lo)
	grid := numeric.Linspace(lo-pad, hi+pad, s.opts.GridPoints)
	excluded, err := s.estimateDensities(ctx, checks, grid)
	if err != nil {
		return nil, err
	}
	if len(excluded) == len(checks) {
		return nil, errors.DegenerateSample("density estimation failed for all %d checks", len(checks))
	}

	result := &elicit.PredictiveCheck{
		MinResponseVal: lo - pad,
		MaxResponseVal: hi + pad,
		Checks:         checks,
		Excluded:       excluded,
		Average:        elicit.Curve{X: append([]float64(nil), grid...), P: make([]float64, len(grid))},
	}
	used := float64(len(checks) - len(excluded))
	for _, c := range checks {
		if c.Density == nil {
			continue
		}
		for j, v := range c.Density.P {
			result.Average.P[j] += v / used
			result.MaxDensityVal = math.Max(result.MaxDensityVal, v)
		}
	}
	return result, nil
}

// estimateDensities fits a KDE per check in parallel. Checks whose sample is degenerate
// are left without a density and reported by index.
func (s *Simulator) estimateDensities(ctx context.Context, checks []elicit.SimulationCheck, grid []float64) ([]int, error) {
	sem := semaphore.NewWeighted(int64(s.opts.Workers))
	failed := make([]bool, len(checks))
	var wg sync.WaitGroup
	for i := range checks {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(c *elicit.SimulationCheck) {
			defer wg.Done()
			defer sem.Release(1)
			g, err := kde.Fit(c.Responses)
			if err != nil {
				s.logger.Debug("check %d excluded: %v", c.Index, err)
				failed[c.Index] = true
				return
			}
			p := g.Evaluate(grid)
			if !numeric.AllFinite(p) {
				s.logger.Debug("check %d excluded: non-finite density", c.Index)
				failed[c.Index] = true
				return
			}
			c.Density = &elicit.Curve{X: append([]float64(nil), grid...), P: p}
		}(&checks[i])
	}
	wg.Wait()

	var excluded []int
	for i, f := range failed {
		if f {
			excluded = append(excluded, i)
		}
	}
	return excluded, nil
}
