package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	"priorelicit/adapters/api"
	"priorelicit/adapters/excel"
	"priorelicit/adapters/rng"
	"priorelicit/app"
	"priorelicit/domain/elicit"
	"priorelicit/internal"
	"priorelicit/internal/config"
	"priorelicit/ports"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "priorelicit-cli",
		Short:        "Fit regression priors and run prior predictive checks from the command line",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newFitPriorsCmd(),
		newFitSamplesCmd(),
		newCheckCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// datasetFlags are shared by every command that reads a data file
type datasetFlags struct {
	file       string
	sheet      string
	url        string
	dataPath   string
	response   string
	predictors []string
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "Dataset file (.xlsx, .csv or .json)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Worksheet name (default: first sheet)")
	cmd.Flags().StringVar(&f.url, "url", "", "JSON endpoint serving the entities, instead of --file")
	cmd.Flags().StringVar(&f.dataPath, "data-path", "", "Path to the entity array in JSON input, e.g. data.items")
	cmd.Flags().StringVar(&f.response, "response", "", "Response variable column")
	cmd.Flags().StringSliceVar(&f.predictors, "predictors", nil, "Predictor columns, comma separated (default: every other column)")
	cmd.MarkFlagsOneRequired("file", "url")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	_ = cmd.MarkFlagRequired("response")
}

// load reads the dataset and describes each variable with its observed range
func (f *datasetFlags) load(ctx context.Context, logger *internal.Logger) (elicit.Dataset, []elicit.Variable, error) {
	data, headers, err := f.source(logger).LoadDataset(ctx)
	if err != nil {
		return nil, nil, err
	}

	predictors := f.predictors
	if len(predictors) == 0 {
		for _, h := range headers {
			if h != f.response {
				predictors = append(predictors, h)
			}
		}
	}

	vars := make([]elicit.Variable, 0, len(predictors)+1)
	for _, name := range append(predictors, f.response) {
		role := elicit.RolePredictor
		if name == f.response {
			role = elicit.RoleResponse
		}
		column := data.Column(name)
		if len(column) == 0 {
			return nil, nil, fmt.Errorf("column %q has no numeric values", name)
		}
		lo, err := stats.Min(column)
		if err != nil {
			return nil, nil, fmt.Errorf("column %q: %w", name, err)
		}
		hi, err := stats.Max(column)
		if err != nil {
			return nil, nil, fmt.Errorf("column %q: %w", name, err)
		}
		vars = append(vars, elicit.Variable{Name: name, Role: role, Min: lo, Max: hi})
	}
	return data, vars, nil
}

// source picks the dataset adapter for the flags given
func (f *datasetFlags) source(logger *internal.Logger) ports.DatasetSource {
	switch {
	case f.url != "":
		src := api.DefaultSource(f.url)
		src.DataPath = f.dataPath
		return api.NewReader(src, logger)
	case strings.EqualFold(filepath.Ext(f.file), ".json"):
		return api.NewFileSource(f.file, f.dataPath)
	}
	reader := excel.NewDataReader(f.file, logger)
	if f.sheet != "" {
		reader = reader.WithSheet(f.sheet)
	}
	return reader
}

func newService() (*app.ElicitationService, *internal.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	return app.NewElicitationService(cfg.Pipeline, rng.NewSeededRNG(cfg.Pipeline.Seed), logger), logger, nil
}

func newFitPriorsCmd() *cobra.Command {
	var ds datasetFlags
	var seed int64
	var topN int

	cmd := &cobra.Command{
		Use:   "fit-priors",
		Short: "Bootstrap the regression coefficients and rank distributions per parameter",
		Long: `Bootstrap an ordinary least squares fit of the response on the predictors and
rank candidate distributions for every coefficient and the intercept.

Example: priorelicit-cli fit-priors --file study.xlsx --response score --predictors hours,age --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, err := newService()
			if err != nil {
				return err
			}
			data, vars, err := ds.load(cmd.Context(), logger)
			if err != nil {
				return err
			}
			req := app.PriorRequest{Entities: data, Variables: vars, TopN: topN}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}
			res, err := svc.FitPriors(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}

	ds.register(cmd)
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for a reproducible bootstrap")
	cmd.Flags().IntVar(&topN, "top-n", 0, "Distributions to keep per parameter (default from FIT_TOP_N)")
	return cmd
}

func newFitSamplesCmd() *cobra.Command {
	var topN int

	cmd := &cobra.Command{
		Use:   "fit-samples [values...]",
		Short: "Rank candidate distributions for a list of numbers",
		Long: `Fit every supported family to the given values and print the ranked fits.

Example: priorelicit-cli fit-samples 1 2 2 3 3 3 4 4 5 --top-n 2`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples := make([]float64, len(args))
			for i, a := range args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("value %q is not a number: %w", a, err)
				}
				samples[i] = v
			}
			svc, _, err := newService()
			if err != nil {
				return err
			}
			fits, err := svc.FitSamples(cmd.Context(), samples, topN)
			if err != nil {
				return err
			}
			return printJSON(fits)
		},
	}

	cmd.Flags().IntVar(&topN, "top-n", 0, "Distributions to keep (default from FIT_TOP_N)")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var ds datasetFlags
	var priorsFile string
	var strategies []string
	var seed int64
	var checks, samples int

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run prior predictive checks for a set of priors",
		Long: `Simulate responses from the model under the given priors and summarise each check
with a kernel density estimate.

The priors file is either the output of fit-priors (the best fit per parameter is used)
or a JSON object mapping parameter name to {"name": family, "params": {...}}.

Example: priorelicit-cli check --file study.xlsx --response score --priors priors.json --strategy uniform`,
		RunE: func(cmd *cobra.Command, args []string) error {
			priors, err := readPriors(priorsFile)
			if err != nil {
				return err
			}
			svc, logger, err := newService()
			if err != nil {
				return err
			}
			data, vars, err := ds.load(cmd.Context(), logger)
			if err != nil {
				return err
			}
			req := app.PredictiveCheckRequest{
				Entities:   data,
				Variables:  vars,
				Priors:     priors,
				NumChecks:  checks,
				NumSamples: samples,
			}
			for _, s := range strategies {
				req.Strategies = append(req.Strategies, elicit.Strategy(strings.ToLower(s)))
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}
			out, err := svc.RunPredictiveCheck(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}

	ds.register(cmd)
	cmd.Flags().StringVar(&priorsFile, "priors", "", "JSON file with the priors")
	cmd.Flags().StringSliceVar(&strategies, "strategy", nil, "distributional|relational|uniform (default: all)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for reproducible draws")
	cmd.Flags().IntVar(&checks, "checks", 0, "Number of checks (default from NUM_CHECKS)")
	cmd.Flags().IntVar(&samples, "samples", 0, "Samples per check (default from NUM_SAMPLES)")
	_ = cmd.MarkFlagRequired("priors")
	return cmd
}

// readPriors accepts fit-priors output or a plain parameter -> distribution object
func readPriors(path string) (map[string]elicit.FittedDistribution, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read priors: %w", err)
	}

	var result app.PriorResult
	if err := json.Unmarshal(raw, &result); err == nil && len(result.FittedDistributions) > 0 {
		priors := make(map[string]elicit.FittedDistribution, len(result.FittedDistributions))
		for name, fits := range result.FittedDistributions {
			best, ok := fits.Best()
			if !ok {
				return nil, fmt.Errorf("parameter %q has no fitted distribution", name)
			}
			priors[name] = best
		}
		return priors, nil
	}

	var priors map[string]elicit.FittedDistribution
	if err := json.Unmarshal(raw, &priors); err != nil {
		return nil, fmt.Errorf("failed to parse priors: %w", err)
	}
	return priors, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
