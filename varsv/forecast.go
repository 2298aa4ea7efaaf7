// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package varsv

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"bvarsv/linalg"
)

// GibbsEstimator fits a VAR-SV with the Gibbs sampler.
type GibbsEstimator struct {
	Prior  Hyperparameters
	Config Config
}

// Estimate builds the design of ts, runs the sampler and wraps the records.
// ModelSpec.IncludeMean overrides the one in Config.
func (e *GibbsEstimator) Estimate(ctx context.Context, ts *TimeSeries, spec ModelSpec) (*Fit, error) {
	x, y, err := BuildDesign(ts, spec)
	if err != nil {
		return nil, err
	}
	cfg := e.Config
	cfg.IncludeMean = spec.IncludeMean
	s, err := NewSampler(x, y, e.Prior, cfg)
	if err != nil {
		return nil, err
	}
	rec, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &Fit{Spec: spec, VarNames: ts.VarNames, X: x, Y: y, Records: rec}, nil
}

// Forecast produces multi-step ahead point forecasts from the posterior
// mean coefficients.
// yHist: T x K (rows: time, cols: variables). Only last p rows are used as lags.
// steps: number of steps ahead to forecast
// Returns: Steps x K matrix of forecasts
func (f *Fit) Forecast(yHist *mat.Dense, steps int) (*mat.Dense, error) {
	if f == nil || f.Records == nil {
		return nil, fmt.Errorf("VAR-SV model not estimated")
	}
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be > 0, got %d: %w", steps, linalg.ErrInvalidParameter)
	}
	K, m := f.Dims()
	p := f.Spec.Lags

	// dimensions of yHist, T rows, K cols
	T, cols := yHist.Dims()
	if cols != K {
		return nil, fmt.Errorf("history has %d variables, model has %d: %w", cols, K, linalg.ErrInvalidDimension)
	}
	if T < p {
		return nil, fmt.Errorf("need at least %d rows in yHist, got %d: %w", p, T, linalg.ErrInvalidDimension)
	}

	B, err := f.Records.CoefficientMean(m)
	if err != nil {
		return nil, err
	}

	totalRows := p + steps
	out := mat.NewDense(totalRows, K, nil)
	out.Slice(0, p, 0, K).(*mat.Dense).Copy(yHist.Slice(T-p, T, 0, K))

	for step := 0; step < steps; step++ {
		row := p + step
		for eq := 0; eq < K; eq++ {
			val := 0.0
			if f.Spec.IncludeMean {
				val += B.At(m-1, eq)
			}
			// lagged part: sum_j A_j * y_{t-j}, A_j(eq, v) = B((j-1)K+v, eq)
			for lag := 1; lag <= p; lag++ {
				prevRow := row - lag
				for v := 0; v < K; v++ {
					val += B.At((lag-1)*K+v, eq) * out.At(prevRow, v)
				}
			}
			out.Set(row, eq, val)
		}
	}
	// Returns only the forecasted rows
	return mat.DenseCopyOf(out.Slice(p, totalRows, 0, K)), nil
}

// LagMatrices splits the posterior mean coefficients into A_1, ..., A_p
// (each K x K, row = equation) and the constant vector, nil without one.
func (f *Fit) LagMatrices() ([]*mat.Dense, []float64, error) {
	K, m := f.Dims()
	B, err := f.Records.CoefficientMean(m)
	if err != nil {
		return nil, nil, err
	}
	A := make([]*mat.Dense, f.Spec.Lags)
	for j := range A {
		Aj := mat.NewDense(K, K, nil)
		rowOffset := j * K // start row of this lag block in B
		for eq := 0; eq < K; eq++ {
			for colVar := 0; colVar < K; colVar++ {
				Aj.Set(eq, colVar, B.At(rowOffset+colVar, eq))
			}
		}
		A[j] = Aj
	}
	var c []float64
	if f.Spec.IncludeMean {
		c = mat.Row(nil, m-1, B)
	}
	return A, c, nil
}

// Covariance returns the residual covariance at period t,
// Sigma_t = L^{-1} D_t L^{-T}, with L from the posterior mean contemporaneous
// coefficients and D_t from the last drawn log-volatility path.
func (f *Fit) Covariance(t int) (*mat.SymDense, error) {
	root, err := f.impact(t)
	if err != nil {
		return nil, err
	}
	K, _ := root.Dims()
	out := mat.NewSymDense(K, nil)
	out.SymOuterK(1, root)
	return out, nil
}

// impact returns the structural impact matrix L^{-1} D_t^{1/2} of period t,
// a square root of Sigma_t.
func (f *Fit) impact(t int) (*mat.Dense, error) {
	if f == nil || f.Records == nil {
		return nil, fmt.Errorf("VAR-SV model not estimated")
	}
	K, _ := f.Dims()
	lower, err := f.Records.LowerMean(K)
	if err != nil {
		return nil, err
	}
	rows, _ := f.Records.H.Dims()
	h, err := f.Records.LogVolatility(rows/f.Records.T - 1)
	if err != nil {
		return nil, err
	}
	if t < 0 || t >= f.Records.T {
		return nil, fmt.Errorf("period %d outside 0..%d: %w", t, f.Records.T-1, linalg.ErrInvalidParameter)
	}
	var inv mat.TriDense
	if err := linalg.IgnoreCondition(inv.InverseTri(lower)); err != nil {
		return nil, err
	}
	root := mat.NewDense(K, K, nil)
	for i := 0; i < K; i++ {
		for j := 0; j <= i; j++ {
			root.Set(i, j, inv.At(i, j)*math.Exp(h.At(t, j)/2))
		}
	}
	return root, nil
}
