// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"bvarsv/varsv"
)

// runOptions holds the flags of the run command.
type runOptions struct {
	data        string // CSV input, one column per series
	config      string // YAML prior file
	lags        int
	iter        int
	burn        int
	prior       string
	includeMean bool
	threads     int
	seed        uint64
	out         string // output directory
	forecast    int    // forecast horizon, 0 for none
	irf         int    // impulse response horizon, 0 for none
	irfVar      int    // response variable of the IRF analysis
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fit a VAR-SV model to a CSV file by Gibbs sampling",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Ctrl-C stops the sampler between iterations and keeps what was drawn.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			_, err := runModel(ctx, opts)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.data, "data", "", "CSV file with a header row of series names")
	cmd.Flags().StringVar(&opts.config, "config", "", "YAML prior hyperparameter file")
	cmd.Flags().IntVar(&opts.lags, "lags", 1, "Number of lags p")
	cmd.Flags().IntVar(&opts.iter, "iter", 1000, "Number of Gibbs iterations")
	cmd.Flags().IntVar(&opts.burn, "burn", 200, "Number of burn-in iterations to drop")
	cmd.Flags().StringVar(&opts.prior, "prior", "minnesota", "Coefficient prior (minnesota, ssvs, horseshoe)")
	cmd.Flags().BoolVar(&opts.includeMean, "include-mean", true, "Add a constant to every equation")
	cmd.Flags().IntVar(&opts.threads, "threads", 0, "Workers for the log-volatility draws, 0 for all CPUs")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 42, "Seed of the random number generator")
	cmd.Flags().StringVar(&opts.out, "out", "output", "Directory for the trace CSV files")
	cmd.Flags().IntVar(&opts.forecast, "forecast", 0, "Forecast horizon from the posterior mean, 0 to skip")
	cmd.Flags().IntVar(&opts.irf, "irf", 0, "Impulse response horizon at the last period, 0 to skip")
	cmd.Flags().IntVar(&opts.irfVar, "irf-var", 0, "Index of the response variable for --irf")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

// runModel loads the data and prior, runs the sampler and writes the
// traces, the posterior mean coefficients, and the optional forecasts and
// impulse responses.
func runModel(ctx context.Context, opts runOptions) (*varsv.Fit, error) {
	prior, err := varsv.ParsePriorType(opts.prior)
	if err != nil {
		return nil, err
	}
	ts, err := varsv.LoadCSVToTimeSeries(opts.data)
	if err != nil {
		return nil, err
	}
	r, c := ts.Y.Dims()
	logrus.Infof("Loaded %d observations of %d series: %v", r, c, ts.VarNames)

	pc, err := loadPriorConfig(opts.config)
	if err != nil {
		return nil, err
	}
	hyp, err := pc.Hyperparameters()
	if err != nil {
		return nil, err
	}

	step := opts.iter / 10
	if step == 0 {
		step = 1
	}
	est := &varsv.GibbsEstimator{
		Prior: hyp,
		Config: varsv.Config{
			NumIter: opts.iter,
			NumBurn: opts.burn,
			Prior:   prior,
			Threads: opts.threads,
			Seed:    opts.seed,
			Progress: func(done, total int) {
				if done%step == 0 {
					logrus.Infof("Iteration %d/%d", done, total)
				}
			},
		},
	}
	spec := varsv.ModelSpec{Lags: opts.lags, IncludeMean: opts.includeMean}
	fit, err := est.Estimate(ctx, ts, spec)
	if err != nil {
		return nil, err
	}

	paths, err := varsv.WriteRecords(opts.out, fit.Records)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Traces written to %s (%d files)", opts.out, len(paths))

	if fit.Records.Aborted {
		logrus.Warnf("Run aborted after %d iterations; traces include burn-in", fit.Records.Done)
		return fit, nil
	}

	_, m := fit.Dims()
	coef, err := fit.Records.CoefficientMean(m)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Posterior mean coefficients (rows: lags then constant, cols: equations)\n%v",
		mat.Formatted(coef, mat.Prefix(" ")))
	coefPath := filepath.Join(opts.out, "coef_mean.csv")
	if err := varsv.WriteMatrixCSV(coefPath, coef, headerFor(ts.VarNames, c)); err != nil {
		return nil, err
	}

	if opts.forecast > 0 {
		fc, err := fit.Forecast(ts.Y, opts.forecast)
		if err != nil {
			return nil, fmt.Errorf("forecast: %w", err)
		}
		fcPath := filepath.Join(opts.out, "forecast.csv")
		if err := varsv.OutputForecastsToCSV(fcPath, fc, ts.VarNames); err != nil {
			return nil, err
		}
		logrus.Infof("Forecasts written to %s", fcPath)
	}

	if opts.irf > 0 {
		analysis, err := fit.IRFAnalysis(opts.irfVar, opts.irf, fit.Records.T-1)
		if err != nil {
			return nil, fmt.Errorf("impulse responses: %w", err)
		}
		irfPath := filepath.Join(opts.out, "irf.csv")
		if err := varsv.OutputIRFAnalysisToCSV(irfPath, analysis, ts.VarNames); err != nil {
			return nil, err
		}
		logrus.Infof("Impulse responses of %s written to %s", ts.VarNames[opts.irfVar], irfPath)
	}
	return fit, nil
}

// headerFor returns names when it has one entry per column.
func headerFor(names []string, cols int) []string {
	if len(names) != cols {
		return nil
	}
	return names
}
