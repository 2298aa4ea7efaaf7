// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package varsv

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"bvarsv/linalg"
	"bvarsv/randvar"
)

// regression is the scratch arena of the generalized least squares draw.
// Buffers are sized on first use and overwritten on every later call, so one
// regression must not be shared between goroutines.
type regression struct {
	prec  *mat.Dense    // X' S X + prior precision
	sym   *mat.SymDense // symmetric copy of prec
	rhs   *mat.VecDense // X' S y + prior precision * prior mean
	sx    mat.Dense     // S_t X_t
	xsx   mat.Dense     // X_t' S_t X_t
	xsy   mat.VecDense  // X_t' S_t y_t
	prior mat.VecDense  // prior precision * prior mean
}

func (r *regression) reset(n int) {
	if r.prec == nil || r.sym.SymmetricDim() != n {
		r.prec = mat.NewDense(n, n, nil)
		r.sym = mat.NewSymDense(n, nil)
		r.rhs = mat.NewVecDense(n, nil)
		r.sx.Reset()
		r.xsx.Reset()
		r.xsy.Reset()
		r.prior.Reset()
		return
	}
	r.prec.Zero()
	r.rhs.Zero()
}

// draw returns one draw of beta from its Gaussian full conditional in
//
//	y = X beta + e,  e ~ N(0, S^{-1}),  beta ~ N(priorMean, priorPrec^{-1})
//
// where S is block diagonal with blocks[t] acting on rows
// t*b, ..., t*b+b-1 of X and y. The posterior precision
// P = X'SX + priorPrec is factorized once; the mean solves P m = X'Sy +
// priorPrec*priorMean and the deviation solves U d = z for P = U'U.
func (r *regression) draw(g *randvar.Generator, x *mat.Dense, y []float64, blocks []mat.Symmetric, priorMean []float64, priorPrec mat.Symmetric) ([]float64, error) {
	rows, n := x.Dims()
	if len(blocks) == 0 || rows != len(y) || rows%len(blocks) != 0 {
		return nil, fmt.Errorf("design has %d rows, response %d, %d precision blocks: %w", rows, len(y), len(blocks), linalg.ErrInvalidDimension)
	}
	b := rows / len(blocks)
	if len(priorMean) != n || priorPrec.SymmetricDim() != n {
		return nil, fmt.Errorf("prior has size %d and %d, design has %d columns: %w", len(priorMean), priorPrec.SymmetricDim(), n, linalg.ErrInvalidDimension)
	}
	r.reset(n)

	yv := mat.NewVecDense(rows, y)
	for t, s := range blocks {
		if s.SymmetricDim() != b {
			return nil, fmt.Errorf("precision block %d is %dx%d, want %dx%d: %w", t, s.SymmetricDim(), s.SymmetricDim(), b, b, linalg.ErrInvalidDimension)
		}
		xt := x.Slice(t*b, (t+1)*b, 0, n)
		r.sx.Mul(s, xt)
		r.xsx.Mul(xt.T(), &r.sx)
		r.prec.Add(r.prec, &r.xsx)
		r.xsy.MulVec(r.sx.T(), yv.SliceVec(t*b, (t+1)*b))
		r.rhs.AddVec(r.rhs, &r.xsy)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r.sym.SetSym(i, j, r.prec.At(i, j)+priorPrec.At(i, j))
		}
	}
	r.prior.MulVec(priorPrec, mat.NewVecDense(n, priorMean))
	r.rhs.AddVec(r.rhs, &r.prior)

	return drawFromPrecision(g, r.sym, r.rhs)
}

// drawFromPrecision draws from N(P^{-1} rhs, P^{-1}).
func drawFromPrecision(g *randvar.Generator, prec mat.Symmetric, rhs mat.Vector) ([]float64, error) {
	n := prec.SymmetricDim()
	chol, err := linalg.Cholesky(prec)
	if err != nil {
		return nil, fmt.Errorf("posterior precision: %w", err)
	}
	var mean mat.VecDense
	if err := linalg.IgnoreCondition(chol.SolveVecTo(&mean, rhs)); err != nil {
		return nil, fmt.Errorf("posterior mean: %w", err)
	}
	var u mat.TriDense
	chol.UTo(&u)
	var dev mat.VecDense
	if err := linalg.IgnoreCondition(dev.SolveVec(&u, mat.NewVecDense(n, g.NormalVec(nil, n)))); err != nil {
		return nil, fmt.Errorf("posterior deviation: %w", err)
	}
	mean.AddVec(&mean, &dev)
	return mean.RawVector().Data, nil
}
