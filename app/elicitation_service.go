package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"priorelicit/domain/elicit"
	"priorelicit/internal"
	"priorelicit/internal/analysis/fitting"
	"priorelicit/internal/analysis/numeric"
	"priorelicit/internal/analysis/resample"
	"priorelicit/internal/analysis/simulate"
	"priorelicit/internal/config"
	"priorelicit/internal/errors"
	"priorelicit/ports"
)

// CurveSignificantDigits is the precision of densities and simulated values leaving the service
const CurveSignificantDigits = 6

// ElicitationService runs the estimation pipeline: bootstrap, ranking and predictive checks
type ElicitationService struct {
	cfg       config.PipelineConfig
	resampler *resample.Resampler
	ranker    *fitting.Ranker
	rngPort   ports.RNGPort
	logger    *internal.Logger
}

// NewElicitationService wires the pipeline components from the configuration
func NewElicitationService(cfg config.PipelineConfig, rngPort ports.RNGPort, logger *internal.Logger) *ElicitationService {
	return &ElicitationService{
		cfg: cfg,
		resampler: resample.New(resample.Options{
			Iterations: cfg.BootstrapIterations,
			SampleSize: cfg.BootstrapSampleSize,
		}, logger),
		ranker: fitting.NewRanker(fitting.Options{
			GridPoints:        cfg.FitGridPoints,
			SignificantDigits: cfg.SignificantDigits,
			Workers:           cfg.FitWorkers,
			MaxSamples:        cfg.MaxSamples,
		}, logger),
		rngPort: rngPort,
		logger:  logger.With("elicitation"),
	}
}

// PriorRequest asks for priors on every model parameter
type PriorRequest struct {
	Entities   elicit.Dataset     `json:"entities"`
	Variables  []elicit.Variable  `json:"variables"`
	Parameters []elicit.Parameter `json:"parameters,omitempty"`
	TopN       int                `json:"top_n,omitempty"`
	Seed       *int64             `json:"seed,omitempty"`
}

// PriorResult maps each parameter to its ranked fits and raw bootstrap draws
type PriorResult struct {
	Parameters          []elicit.Parameter            `json:"parameters"`
	FittedDistributions map[string]*elicit.RankedFits `json:"fitted_distributions"`
	ParameterSamples    elicit.SampleSet              `json:"parameter_samples"`
	RuntimeMs           int64                         `json:"runtime_ms"`
}

// FitPriors bootstraps the regression coefficients and ranks distributions per parameter
func (s *ElicitationService) FitPriors(ctx context.Context, req PriorRequest) (*PriorResult, error) {
	start := time.Now()
	model, err := elicit.NewModel(req.Variables, req.Parameters)
	if err != nil {
		return nil, errors.InvalidConfiguration(err)
	}
	rng, err := s.stream(ctx, "bootstrap", req.Seed)
	if err != nil {
		return nil, err
	}

	samples, err := s.resampler.Sample(ctx, rng, req.Entities, model)
	if err != nil {
		return nil, errors.Wrap(err, "bootstrap failed")
	}

	limit := s.topN(req.TopN)
	fits := make([]*elicit.RankedFits, len(model.Parameters))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range model.Parameters {
		g.Go(func() error {
			ranked, err := s.ranker.Rank(gctx, samples[p.Name], limit)
			if err != nil {
				return errors.Wrapf(err, "parameter %q", p.Name)
			}
			fits[i] = roundFits(ranked)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &PriorResult{
		Parameters:          model.Parameters,
		FittedDistributions: make(map[string]*elicit.RankedFits, len(fits)),
		ParameterSamples:    make(elicit.SampleSet, len(samples)),
	}
	for i, p := range model.Parameters {
		result.FittedDistributions[p.Name] = fits[i]
		result.ParameterSamples[p.Name] = numeric.RoundSliceSignificant(samples[p.Name], s.cfg.SignificantDigits)
	}
	result.RuntimeMs = time.Since(start).Milliseconds()
	s.logger.Info("fitted priors for %d parameters from %d entities in %dms",
		len(model.Parameters), len(req.Entities), result.RuntimeMs)
	return result, nil
}

// FitSamples ranks distributions for a raw sample; topN 0 uses the configured default
func (s *ElicitationService) FitSamples(ctx context.Context, samples []float64, topN int) (*elicit.RankedFits, error) {
	ranked, err := s.ranker.Rank(ctx, samples, s.topN(topN))
	if err != nil {
		return nil, err
	}
	return roundFits(ranked), nil
}

// FitHistogram ranks distributions for binned data drawn by the participant
func (s *ElicitationService) FitHistogram(ctx context.Context, edges, counts []float64, topN int) (*elicit.RankedFits, error) {
	ranked, err := s.ranker.FitHistogram(ctx, edges, counts, s.topN(topN))
	if err != nil {
		return nil, err
	}
	return roundFits(ranked), nil
}

// PredictiveCheckRequest asks for prior predictive simulations
type PredictiveCheckRequest struct {
	Entities   elicit.Dataset                       `json:"entities"`
	Variables  []elicit.Variable                    `json:"variables"`
	Parameters []elicit.Parameter                   `json:"parameters,omitempty"`
	Priors     map[string]elicit.FittedDistribution `json:"priors"`
	Strategies []elicit.Strategy                    `json:"strategies,omitempty"`
	NumChecks  int                                  `json:"num_checks,omitempty"`
	NumSamples int                                  `json:"num_samples,omitempty"`
	Seed       *int64                               `json:"seed,omitempty"`
}

// RunPredictiveCheck simulates responses under the priors for each requested strategy
func (s *ElicitationService) RunPredictiveCheck(ctx context.Context, req PredictiveCheckRequest) ([]elicit.PredictiveCheck, error) {
	model, err := elicit.NewModel(req.Variables, req.Parameters)
	if err != nil {
		return nil, errors.InvalidConfiguration(err)
	}
	if req.NumChecks < 0 || req.NumSamples < 0 {
		return nil, errors.InvalidInput("num_checks and num_samples must not be negative")
	}

	opts := simulate.Options{
		Checks:     s.cfg.NumChecks,
		Samples:    s.cfg.NumSamples,
		GridPoints: s.cfg.KDEGridPoints,
		Workers:    s.cfg.FitWorkers,
	}
	if req.NumChecks > 0 {
		opts.Checks = req.NumChecks
	}
	if req.NumSamples > 0 {
		opts.Samples = req.NumSamples
	}
	if limit := s.maxSamples(); opts.Checks > limit || opts.Samples > limit || opts.Checks*opts.Samples > limit {
		return nil, errors.InvalidInput(fmt.Sprintf("num_checks × num_samples may not exceed %d, got %d × %d",
			limit, opts.Checks, opts.Samples))
	}
	rng, err := s.stream(ctx, "predictive", req.Seed)
	if err != nil {
		return nil, err
	}
	checks, err := simulate.New(opts, s.logger).Run(ctx, rng, model, req.Entities, req.Priors, req.Strategies)
	if err != nil {
		return nil, err
	}
	for i := range checks {
		roundCheck(&checks[i])
	}
	return checks, nil
}

func (s *ElicitationService) maxSamples() int {
	if s.cfg.MaxSamples > 0 {
		return s.cfg.MaxSamples
	}
	return fitting.DefaultMaxSamples
}

func (s *ElicitationService) topN(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.cfg.FitTopN
}

func (s *ElicitationService) stream(ctx context.Context, name string, seed *int64) (*rand.Rand, error) {
	if seed != nil {
		return s.rngPort.SeededStream(ctx, name, *seed)
	}
	rng, err := s.rngPort.Stream(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("random stream %s: %w", name, err)
	}
	return rng, nil
}
