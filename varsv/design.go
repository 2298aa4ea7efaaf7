// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package varsv

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"bvarsv/linalg"
)

// BuildDesign turns a time series into the response and design matrices of
// a VAR(p).
// y: (T-p) x K, rows are y_p, ..., y_{T-1}
// x: (T-p) x (Kp[+1]), each row is [y_{t-1}, ..., y_{t-p}, 1]
// The constant, when included, is the last column so that its coefficients
// sit in the last row of the coefficient matrix.
func BuildDesign(ts *TimeSeries, spec ModelSpec) (x, y *mat.Dense, err error) {
	if ts == nil || ts.Y == nil {
		return nil, nil, fmt.Errorf("time series data not provided: %w", linalg.ErrInvalidDimension)
	}
	T, K := ts.Y.Dims()
	p := spec.Lags
	if p <= 0 {
		return nil, nil, fmt.Errorf("lags must be > 0, got %d: %w", p, linalg.ErrInvalidParameter)
	}
	if T <= p {
		return nil, nil, fmt.Errorf("need at least p+1 observations: p = %d, T = %d: %w", p, T, linalg.ErrInvalidDimension)
	}

	// Usable rows
	Treg := T - p
	m := spec.Regressors(K)

	y = mat.DenseCopyOf(ts.Y.Slice(p, T, 0, K))
	x = mat.NewDense(Treg, m, nil)
	for t := 0; t < Treg; t++ {
		col := 0
		// Lagged Y's: [ y_{t+p-1}, y_{t+p-2}, ..., y_{t} ]
		for j := 1; j <= p; j++ {
			srcRow := t + p - j
			for k := 0; k < K; k++ {
				x.Set(t, col, ts.Y.At(srcRow, k))
				col++
			}
		}
		if spec.IncludeMean {
			x.Set(t, col, 1)
		}
	}
	return x, y, nil
}

// OLS computes B = (X'X)^(-1) X'Y, falling back to the minimum-norm SVD
// solution when X'X is singular. B is m x K.
func OLS(x, y mat.Matrix) (*mat.Dense, error) {
	rx, m := x.Dims()
	ry, K := y.Dims()
	if rx != ry {
		return nil, fmt.Errorf("design has %d rows, response has %d: %w", rx, ry, linalg.ErrInvalidDimension)
	}

	var B mat.Dense

	// First try: normal equations
	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var xtxInv mat.Dense
	xtxError := xtxInv.Inverse(&xtx)
	if xtxError == nil {
		var xty mat.Dense
		xty.Mul(x.T(), y)
		B.Mul(&xtxInv, &xty)
		return &B, nil
	}

	// Fallback: X'X is singular or badly conditioned.
	// Use SVD-based least squares: minimize ||Y - X B||_F with minimum-norm B.
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDFullU|mat.SVDFullV); !ok {
		return nil, fmt.Errorf("OLS failed: X'X singular and SVD factorization failed: %v", xtxError)
	}
	rank := svd.Rank(1e-12)
	if rank == 0 {
		// X is numerically zero, the minimum-norm solution is B = 0.
		return mat.NewDense(m, K, nil), nil
	}
	svd.SolveTo(&B, y, rank)
	return &B, nil
}

// Residuals returns Y - X B.
func Residuals(x, y, b mat.Matrix) *mat.Dense {
	var resid mat.Dense
	resid.Mul(x, b)
	resid.Sub(y, &resid)
	return &resid
}
