// Package resample estimates the sampling distribution of linear-model coefficients by
// bootstrap: entities are drawn with replacement and an OLS fit is recorded per draw.
package resample

import (
	"context"
	stderrors "errors"
	"math/rand/v2"

	"priorelicit/domain/core"
	"priorelicit/domain/elicit"
	"priorelicit/internal"
	"priorelicit/internal/errors"
)

// Options controls the bootstrap
type Options struct {
	Iterations int
	// SampleSize of 0 draws as many entities as there are usable ones
	SampleSize int
	// MaxRetries bounds redraws of a singular subsample within one iteration
	MaxRetries int
}

// DefaultOptions returns 100 iterations at full dataset size with 20 retries
func DefaultOptions() Options {
	return Options{Iterations: 100, SampleSize: 0, MaxRetries: 20}
}

// Resampler runs bootstrap OLS fits
type Resampler struct {
	opts   Options
	logger *internal.Logger
}

// New creates a resampler; zero-valued options fall back to the defaults
func New(opts Options, logger *internal.Logger) *Resampler {
	d := DefaultOptions()
	if opts.Iterations < 1 {
		opts.Iterations = d.Iterations
	}
	if opts.SampleSize < 0 {
		opts.SampleSize = d.SampleSize
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = d.MaxRetries
	}
	return &Resampler{opts: opts, logger: logger.With("resample")}
}

// Sample draws Iterations bootstrap subsamples, fits OLS on each and returns one draw per
// iteration for every model parameter, intercept included. A fixed rng seed yields
// identical output.
func (r *Resampler) Sample(ctx context.Context, rng *rand.Rand, data elicit.Dataset, model *elicit.Model) (elicit.SampleSet, error) {
	required := model.RequiredFields()
	for _, name := range required {
		if !data.Mentions(name) {
			return nil, errors.InsufficientData("variable %q is absent from every entity", name)
		}
	}
	usable := data.Complete(required)
	if len(usable) < 2 {
		return nil, errors.InsufficientData("need at least 2 entities with %v populated, got %d", required, len(usable))
	}

	full := newDesign(columns(usable, model.PredictorNames()), usable.Column(model.Response.Name))
	if _, err := full.solve(); err != nil {
		return nil, errors.InsufficientData("the %d usable entities cannot identify %d coefficients: %v",
			len(usable), len(model.Predictors)+1, err)
	}

	size := r.opts.SampleSize
	if size == 0 {
		size = len(usable)
	}
	r.logger.Debug("bootstrap: %d iterations of %d draws from %d entities", r.opts.Iterations, size, len(usable))

	out := make(elicit.SampleSet, len(model.Parameters))
	for _, p := range model.Parameters {
		out[p.Name] = make([]float64, 0, r.opts.Iterations)
	}
	idx := make([]int, size)
	for it := 0; it < r.opts.Iterations; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		coef, err := r.fitOnce(rng, full, len(usable), idx)
		if err != nil {
			return nil, errors.InsufficientData("bootstrap iteration %d: %v", it, err)
		}
		out[model.Intercept().Name] = append(out[model.Intercept().Name], coef[0])
		for j, v := range model.Predictors {
			p, _ := model.ParameterFor(v.Name)
			out[p.Name] = append(out[p.Name], coef[j+1])
		}
	}
	return out, nil
}

// fitOnce redraws until the subsample is solvable or the retry budget is spent
func (r *Resampler) fitOnce(rng *rand.Rand, full design, n int, idx []int) ([]float64, error) {
	var lastErr error
	for attempt := 0; attempt < r.opts.MaxRetries; attempt++ {
		for i := range idx {
			idx[i] = rng.IntN(n)
		}
		coef, err := full.subset(idx).solve()
		if err == nil {
			return coef, nil
		}
		if !stderrors.Is(err, core.ErrSingularDesign) {
			return nil, err
		}
		lastErr = err
	}
	r.logger.Warn("giving up after %d singular draws", r.opts.MaxRetries)
	return nil, lastErr
}

func columns(rows elicit.Dataset, names []string) [][]float64 {
	out := make([][]float64, len(names))
	for j, name := range names {
		out[j] = rows.Column(name)
	}
	return out
}
