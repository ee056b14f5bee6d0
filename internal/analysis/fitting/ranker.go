package fitting

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"priorelicit/domain/elicit"
	"priorelicit/internal"
	"priorelicit/internal/analysis/numeric"
	"priorelicit/internal/errors"
)

// Options tunes the ranker
type Options struct {
	GridPoints        int
	Bins              int
	SignificantDigits int
	Workers           int
	// MaxSamples bounds the sample a request may supply or expand a histogram into
	MaxSamples int
}

// DefaultMaxSamples is the largest sample ranked unless configured otherwise
const DefaultMaxSamples = 1_000_000

// DefaultOptions returns a 1000-point grid, 100 histogram bins and 4 significant digits
func DefaultOptions() Options {
	return Options{
		GridPoints:        1000,
		Bins:              DefaultBins,
		SignificantDigits: 4,
		Workers:           runtime.GOMAXPROCS(0),
		MaxSamples:        DefaultMaxSamples,
	}
}

// Ranker fits every candidate family to a sample and ranks the valid fits
type Ranker struct {
	opts     Options
	families []*Family
	logger   *internal.Logger
}

// NewRanker creates a ranker over the full candidate set
func NewRanker(opts Options, logger *internal.Logger) *Ranker {
	d := DefaultOptions()
	if opts.GridPoints < 2 {
		opts.GridPoints = d.GridPoints
	}
	if opts.Bins < 1 {
		opts.Bins = d.Bins
	}
	if opts.SignificantDigits < 1 {
		opts.SignificantDigits = d.SignificantDigits
	}
	if opts.Workers < 1 {
		opts.Workers = d.Workers
	}
	if opts.MaxSamples < 1 {
		opts.MaxSamples = d.MaxSamples
	}
	return &Ranker{opts: opts, families: Families(), logger: logger.With("fitting")}
}

type candidate struct {
	dist    *Distribution
	metrics map[string]float64
}

// Rank fits the samples and returns up to limit valid fits (0 means all), best first,
// with density curves over the padded sample range.
func (r *Ranker) Rank(ctx context.Context, samples []float64, limit int) (*elicit.RankedFits, error) {
	if len(samples) > r.opts.MaxSamples {
		return nil, errors.InvalidInput(fmt.Sprintf("got %d samples, at most %d are accepted", len(samples), r.opts.MaxSamples))
	}
	if err := checkSamples(samples); err != nil {
		return nil, err
	}
	lo, hi, err := numeric.PaddedRange(samples, numeric.RangePadding)
	if err != nil {
		return nil, errors.InsufficientData("samples: %v", err)
	}
	return r.rank(ctx, samples, newHistogram(samples, r.opts.Bins), lo, hi, limit)
}

// FitHistogram fits pre-binned data. The density grid spans exactly the bin edges.
func (r *Ranker) FitHistogram(ctx context.Context, edges, counts []float64, limit int) (*elicit.RankedFits, error) {
	if len(edges) != len(counts)+1 || len(counts) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("expected len(bin_edges) = len(counts)+1, got %d and %d", len(edges), len(counts)))
	}
	if !numeric.AllFinite(edges, counts) {
		return nil, errors.InvalidInput("bin edges and counts must be finite")
	}
	total := 0.0
	for i, c := range counts {
		if edges[i+1] <= edges[i] {
			return nil, errors.InvalidInput("bin edges must be strictly ascending")
		}
		if c < 0 || c != math.Trunc(c) {
			return nil, errors.InvalidInput(fmt.Sprintf("count %v of bin %d is not a non-negative integer", c, i))
		}
		total += c
	}
	if total > float64(r.opts.MaxSamples) {
		return nil, errors.InvalidInput(fmt.Sprintf("counts add up to %g, at most %d are accepted", total, r.opts.MaxSamples))
	}

	samples := make([]float64, 0, int(total))
	for i, c := range counts {
		centre := (edges[i] + edges[i+1]) / 2
		for range int(c) {
			samples = append(samples, centre)
		}
	}
	if err := checkSamples(samples); err != nil {
		return nil, err
	}
	return r.rank(ctx, samples, fromCounts(edges, counts), edges[0], edges[len(edges)-1], limit)
}

func checkSamples(samples []float64) error {
	if len(samples) < 2 {
		return errors.InsufficientData("need at least 2 samples, got %d", len(samples))
	}
	if !numeric.AllFinite(samples) {
		return errors.InvalidInput("samples must be finite")
	}
	lo, err := stats.Min(samples)
	if err != nil {
		return errors.InsufficientData("samples: %v", err)
	}
	hi, err := stats.Max(samples)
	if err != nil {
		return errors.InsufficientData("samples: %v", err)
	}
	if lo == hi {
		return errors.NoValidFit("all %d samples equal %g", len(samples), lo)
	}
	return nil
}

func (r *Ranker) rank(ctx context.Context, x []float64, h histogram, lo, hi float64, limit int) (*elicit.RankedFits, error) {
	fits, err := r.fitAll(ctx, x, h)
	if err != nil {
		return nil, err
	}

	grid := numeric.Linspace(lo, hi, r.opts.GridPoints)
	digits := r.opts.SignificantDigits
	out := &elicit.RankedFits{XMin: lo, XMax: hi}
	for _, c := range fits {
		if limit > 0 && len(out.Distributions) >= limit {
			break
		}
		fam := c.dist.Family()
		params := numeric.RoundMapSignificant(c.dist.Params(), digits)
		rounded, err := fam.New(params, nil)
		if err != nil {
			r.logger.Debug("%s: rounded parameters rejected: %v", fam.Name, err)
			continue
		}
		p := rounded.Density(grid)
		if !numeric.MapFinite(params) || !numeric.AllFinite(grid, p) {
			r.logger.Debug("%s: non-finite density on grid, skipped", fam.Name)
			continue
		}
		out.Distributions = append(out.Distributions, elicit.FittedDistribution{
			Name:    fam.Name,
			Params:  params,
			X:       append([]float64(nil), grid...),
			P:       p,
			Metrics: numeric.RoundMapSignificant(c.metrics, digits),
		})
	}
	if len(out.Distributions) == 0 {
		return nil, errors.NoValidFit("none of the %d candidate families produced a finite fit", len(r.families))
	}
	return out, nil
}

// fitAll fits every family concurrently and returns the scored candidates sorted by
// sum of squared error. Ties keep the candidate order.
func (r *Ranker) fitAll(ctx context.Context, x []float64, h histogram) ([]candidate, error) {
	results := make([]*candidate, len(r.families))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, fam := range r.families {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			defer func() {
				if p := recover(); p != nil {
					r.logger.Debug("%s: fit panicked: %v", fam.Name, p)
				}
			}()
			d, err := fam.Fit(x)
			if err != nil {
				r.logger.Debug("dropping candidate: %v", err)
				return nil
			}
			metrics, ok := score(d, h, x)
			if !ok {
				r.logger.Debug("%s: non-finite goodness of fit, dropped", fam.Name)
				return nil
			}
			results[i] = &candidate{dist: d, metrics: metrics}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fits := make([]candidate, 0, len(results))
	for _, c := range results {
		if c != nil {
			fits = append(fits, *c)
		}
	}
	sort.SliceStable(fits, func(i, j int) bool {
		return fits[i].metrics[MetricSumSquareError] < fits[j].metrics[MetricSumSquareError]
	})
	return fits, nil
}
