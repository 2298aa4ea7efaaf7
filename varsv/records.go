// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package varsv

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"bvarsv/linalg"
)

// Trace names, as returned by Records.Map.
const (
	KeyAlpha  = "alpha_record"
	KeyH      = "h_record"
	KeyA      = "a_record"
	KeyH0     = "h0_record"
	KeySigh   = "sigh_record"
	KeyGamma  = "gamma_record"
	KeyLambda = "lambda_record"
	KeyTau    = "tau_record"
	KeyKappa  = "kappa_record"
)

// Records holds the traces of one sampler run, one row per iteration.
// Row 0 is the initialization. H stacks the T x k log-volatility path of
// every iteration, so iteration i occupies rows i*T, ..., i*T+T-1.
//
// After a completed run the burn-in rows, row 0 included, are removed from
// every trace except H. After an abort every trace keeps rows 0..Done.
type Records struct {
	Prior PriorType
	// Observations per log-volatility block of H.
	T int

	Alpha *mat.Dense // coefficients, vec(B) per row
	H     *mat.Dense // log-volatility paths
	A     *mat.Dense // contemporaneous coefficients
	H0    *mat.Dense // initial log-volatility
	Sigh  *mat.Dense // sigma_h^2

	// SSVS
	Gamma        *mat.Dense // coefficient inclusion dummies
	SlabWeight   *mat.Dense // group slab weights
	ContemGamma  *mat.Dense
	ContemWeight *mat.Dense

	// Horseshoe
	Lambda       *mat.Dense // local scales
	Tau          *mat.Dense // group global scales
	Kappa        *mat.Dense // shrinkage factors
	ContemLambda *mat.Dense
	ContemTau    *mat.Dense

	// Done is the number of completed iterations.
	Done    int
	Aborted bool
}

func newRecords(prior PriorType, d dims, groups, iters int) *Records {
	n := iters + 1
	rec := &Records{
		Prior: prior,
		T:     d.T,
		Alpha: mat.NewDense(n, d.numCoef, nil),
		H:     mat.NewDense(n*d.T, d.k, nil),
		A:     mat.NewDense(n, d.numLower, nil),
		H0:    mat.NewDense(n, d.k, nil),
		Sigh:  mat.NewDense(n, d.k, nil),
	}
	switch prior {
	case SSVS:
		rec.Gamma = mat.NewDense(n, d.numAlpha, nil)
		rec.SlabWeight = mat.NewDense(n, groups, nil)
		rec.ContemGamma = mat.NewDense(n, d.numLower, nil)
		rec.ContemWeight = mat.NewDense(n, 1, nil)
	case Horseshoe:
		rec.Lambda = mat.NewDense(n, d.numCoef, nil)
		rec.Tau = mat.NewDense(n, groups, nil)
		rec.Kappa = mat.NewDense(n, d.numCoef, nil)
		rec.ContemLambda = mat.NewDense(n, d.numLower, nil)
		rec.ContemTau = mat.NewDense(n, 1, nil)
	}
	return rec
}

// each calls fn on the address of every allocated per-iteration trace.
// H is left out since its rows are blocks of T.
func (r *Records) each(fn func(**mat.Dense)) {
	for _, m := range []**mat.Dense{
		&r.Alpha, &r.A, &r.H0, &r.Sigh,
		&r.Gamma, &r.SlabWeight, &r.ContemGamma, &r.ContemWeight,
		&r.Lambda, &r.Tau, &r.Kappa, &r.ContemLambda, &r.ContemTau,
	} {
		if *m != nil {
			fn(m)
		}
	}
}

// truncate keeps rows 0..done, the part of a run that was filled.
func (r *Records) truncate(done int) {
	r.each(func(m **mat.Dense) {
		_, c := (*m).Dims()
		*m = mat.DenseCopyOf((*m).Slice(0, done+1, 0, c))
	})
	_, k := r.H.Dims()
	r.H = mat.DenseCopyOf(r.H.Slice(0, (done+1)*r.T, 0, k))
}

// dropBurnIn removes row 0 and the first burn iterations from every trace
// except H.
func (r *Records) dropBurnIn(burn int) {
	r.each(func(m **mat.Dense) {
		rows, c := (*m).Dims()
		*m = mat.DenseCopyOf((*m).Slice(burn+1, rows, 0, c))
	})
}

// Map returns the traces under their fixed names. The keys depend on the
// prior type: every type has alpha, h, a, h0 and sigh; SSVS adds gamma and
// Horseshoe adds lambda, tau and kappa.
func (r *Records) Map() map[string]*mat.Dense {
	out := map[string]*mat.Dense{
		KeyAlpha: r.Alpha,
		KeyH:     r.H,
		KeyA:     r.A,
		KeyH0:    r.H0,
		KeySigh:  r.Sigh,
	}
	switch r.Prior {
	case SSVS:
		out[KeyGamma] = r.Gamma
	case Horseshoe:
		out[KeyLambda] = r.Lambda
		out[KeyTau] = r.Tau
		out[KeyKappa] = r.Kappa
	}
	return out
}

// Keys lists the names Map returns, in a fixed order.
func (r *Records) Keys() []string {
	keys := []string{KeyAlpha, KeyH, KeyA, KeyH0, KeySigh}
	switch r.Prior {
	case SSVS:
		keys = append(keys, KeyGamma)
	case Horseshoe:
		keys = append(keys, KeyLambda, KeyTau, KeyKappa)
	}
	return keys
}

// PosteriorMean returns the column means of a trace.
func PosteriorMean(trace mat.Matrix) []float64 {
	_, c := trace.Dims()
	out := make([]float64, c)
	for j := range out {
		out[j] = stat.Mean(mat.Col(nil, j, trace), nil)
	}
	return out
}

// CoefficientMean returns the posterior mean coefficient matrix B (m x k).
func (r *Records) CoefficientMean(m int) (*mat.Dense, error) {
	_, n := r.Alpha.Dims()
	if m <= 0 || n%m != 0 {
		return nil, fmt.Errorf("%d coefficients into %d rows: %w", n, m, linalg.ErrInvalidDimension)
	}
	return linalg.Unvectorize(mat.NewVecDense(n, PosteriorMean(r.Alpha)), m, n/m)
}

// LowerMean returns the unit lower triangular factor built from the
// posterior mean contemporaneous coefficients.
func (r *Records) LowerMean(k int) (*mat.TriDense, error) {
	return linalg.BuildLowerFromVector(k, PosteriorMean(r.A))
}

// LogVolatility returns the log-volatility path of iteration block i.
func (r *Records) LogVolatility(i int) (*mat.Dense, error) {
	rows, k := r.H.Dims()
	if i < 0 || (i+1)*r.T > rows {
		return nil, fmt.Errorf("log-volatility block %d of %d: %w", i, rows/r.T, linalg.ErrInvalidParameter)
	}
	return mat.DenseCopyOf(r.H.Slice(i*r.T, (i+1)*r.T, 0, k)), nil
}
