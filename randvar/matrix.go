// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package randvar

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"bvarsv/linalg"
)

// eigenTol is the tolerance below which a negative eigenvalue of a covariance
// matrix is treated as rounding noise.
const eigenTol = 1e-12

// SampleMVN draws n rows from N(mu, sigma) using the symmetric square root of
// sigma. Returns an n x dim matrix, one draw per row.
func SampleMVN(g *Generator, n int, mu []float64, sigma mat.Matrix) (*mat.Dense, error) {
	sym, err := checkMean(n, mu, sigma)
	if err != nil {
		return nil, err
	}
	dim := len(mu)

	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, fmt.Errorf("eigen decomposition of covariance failed: %w", linalg.ErrNonPositiveDefinite)
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	for i, v := range vals {
		if v < -eigenTol*(1+math.Abs(vals[len(vals)-1])) {
			return nil, fmt.Errorf("covariance eigenvalue %d is %g: %w", i, v, linalg.ErrNonPositiveDefinite)
		}
		vals[i] = math.Sqrt(math.Max(v, 0))
	}
	// root = Q diag(sqrt(lambda)) Q^T
	var scaled, root mat.Dense
	scaled.Mul(&vecs, mat.NewDiagDense(dim, vals))
	root.Mul(&scaled, vecs.T())

	z := mat.NewDense(n, dim, g.NormalVec(nil, n*dim))
	var out mat.Dense
	out.Mul(z, &root)
	addRowMean(&out, mu)
	return &out, nil
}

// SampleMVNCholesky draws n rows from N(mu, sigma) using the Cholesky factor
// of sigma.
func SampleMVNCholesky(g *Generator, n int, mu []float64, sigma mat.Matrix) (*mat.Dense, error) {
	sym, err := checkMean(n, mu, sigma)
	if err != nil {
		return nil, err
	}
	norm, ok := distmv.NewNormal(mu, sym, g.Source())
	if !ok {
		return nil, fmt.Errorf("covariance for multivariate normal: %w", linalg.ErrNonPositiveDefinite)
	}
	out := mat.NewDense(n, len(mu), nil)
	for i := 0; i < n; i++ {
		norm.Rand(out.RawRowView(i))
	}
	return out, nil
}

// SampleMatrixNormal draws one matrix from MN(mean, u, v) where u is the row
// scale and v the column scale: Y = M + chol(U) Z chol(V)^T.
func SampleMatrixNormal(g *Generator, mean, u, v mat.Matrix) (*mat.Dense, error) {
	rows, cols := mean.Dims()
	uSym, err := linalg.Symmetric(u)
	if err != nil {
		return nil, fmt.Errorf("row scale: %w", err)
	}
	vSym, err := linalg.Symmetric(v)
	if err != nil {
		return nil, fmt.Errorf("column scale: %w", err)
	}
	if uSym.SymmetricDim() != rows {
		return nil, fmt.Errorf("row scale is %dx%d, mean has %d rows: %w", uSym.SymmetricDim(), uSym.SymmetricDim(), rows, linalg.ErrInvalidDimension)
	}
	if vSym.SymmetricDim() != cols {
		return nil, fmt.Errorf("column scale is %dx%d, mean has %d columns: %w", vSym.SymmetricDim(), vSym.SymmetricDim(), cols, linalg.ErrInvalidDimension)
	}
	lu, err := linalg.CholeskyLower(uSym)
	if err != nil {
		return nil, fmt.Errorf("row scale: %w", err)
	}
	lv, err := linalg.CholeskyLower(vSym)
	if err != nil {
		return nil, fmt.Errorf("column scale: %w", err)
	}
	return matrixNormal(g, mean, lu, lv), nil
}

// matrixNormal assumes validated shapes and lower Cholesky factors.
func matrixNormal(g *Generator, mean mat.Matrix, lu, lv mat.Matrix) *mat.Dense {
	rows, cols := mean.Dims()
	z := mat.NewDense(rows, cols, g.NormalVec(nil, rows*cols))
	var left, out mat.Dense
	left.Mul(lu, z)
	out.Mul(&left, lv.T())
	out.Add(&out, mean)
	return &out
}

// InverseWishartFactor returns A = chol(psi) (Q^{-1})^T, where Q is the upper
// triangular Bartlett matrix with Q[i,i] = sqrt(ChiSquare(shape - (dim-1-i)))
// and standard normal entries above the diagonal. A A^T ~ IW(psi, shape).
func InverseWishartFactor(g *Generator, psi mat.Matrix, shape float64) (*mat.Dense, error) {
	sym, err := linalg.Symmetric(psi)
	if err != nil {
		return nil, fmt.Errorf("inverse-Wishart scale: %w", err)
	}
	dim := sym.SymmetricDim()
	if shape <= float64(dim-1) {
		return nil, fmt.Errorf("inverse-Wishart shape %g must exceed %d: %w", shape, dim-1, linalg.ErrInvalidParameter)
	}
	l, err := linalg.CholeskyLower(sym)
	if err != nil {
		return nil, fmt.Errorf("inverse-Wishart scale: %w", err)
	}
	return inverseWishartFactor(g, l, shape)
}

func inverseWishartFactor(g *Generator, l *mat.TriDense, shape float64) (*mat.Dense, error) {
	dim, _ := l.Triangle()
	bartlett := mat.NewTriDense(dim, mat.Upper, nil)
	// Row-reversed Bartlett factor: Q Q^T ~ W(I, shape) with Q upper, so
	// row i carries shape-(dim-1-i) degrees of freedom.
	for i := 0; i < dim; i++ {
		bartlett.SetTri(i, i, math.Sqrt(g.ChiSquare(shape-float64(dim-1-i))))
		for j := i + 1; j < dim; j++ {
			bartlett.SetTri(i, j, g.Normal())
		}
	}
	var inv mat.TriDense
	if err := linalg.IgnoreCondition(inv.InverseTri(bartlett)); err != nil {
		return nil, fmt.Errorf("invert Bartlett factor: %w", err)
	}
	var out mat.Dense
	out.Mul(l, inv.T())
	return &out, nil
}

// SampleInverseWishart draws one matrix from IW(psi, shape).
func SampleInverseWishart(g *Generator, psi mat.Matrix, shape float64) (*mat.SymDense, error) {
	a, err := InverseWishartFactor(g, psi, shape)
	if err != nil {
		return nil, err
	}
	var out mat.SymDense
	out.SymOuterK(1, a)
	return &out, nil
}

// SampleNormalInverseWishart draws n pairs (Y_i, Sigma_i) with
// Sigma_i ~ IW(psi, shape) and Y_i | Sigma_i ~ MN(mean, u, Sigma_i).
// The i-th entries of both returned slices belong together.
func SampleNormalInverseWishart(g *Generator, n int, mean, u, psi mat.Matrix, shape float64) ([]*mat.Dense, []*mat.SymDense, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("number of draws %d: %w", n, linalg.ErrInvalidParameter)
	}
	rows, cols := mean.Dims()
	psiSym, err := linalg.Symmetric(psi)
	if err != nil {
		return nil, nil, fmt.Errorf("inverse-Wishart scale: %w", err)
	}
	if psiSym.SymmetricDim() != cols {
		return nil, nil, fmt.Errorf("inverse-Wishart scale is %dx%d, mean has %d columns: %w",
			psiSym.SymmetricDim(), psiSym.SymmetricDim(), cols, linalg.ErrInvalidDimension)
	}
	if shape <= float64(cols-1) {
		return nil, nil, fmt.Errorf("inverse-Wishart shape %g must exceed %d: %w", shape, cols-1, linalg.ErrInvalidParameter)
	}
	uSym, err := linalg.Symmetric(u)
	if err != nil {
		return nil, nil, fmt.Errorf("row scale: %w", err)
	}
	if uSym.SymmetricDim() != rows {
		return nil, nil, fmt.Errorf("row scale is %dx%d, mean has %d rows: %w", uSym.SymmetricDim(), uSym.SymmetricDim(), rows, linalg.ErrInvalidDimension)
	}
	lPsi, err := linalg.CholeskyLower(psiSym)
	if err != nil {
		return nil, nil, fmt.Errorf("inverse-Wishart scale: %w", err)
	}
	lu, err := linalg.CholeskyLower(uSym)
	if err != nil {
		return nil, nil, fmt.Errorf("row scale: %w", err)
	}

	mn := make([]*mat.Dense, n)
	iw := make([]*mat.SymDense, n)
	for i := 0; i < n; i++ {
		a, err := inverseWishartFactor(g, lPsi, shape)
		if err != nil {
			return nil, nil, err
		}
		sigma := mat.NewSymDense(cols, nil)
		sigma.SymOuterK(1, a)
		iw[i] = sigma
		// a is lower triangular with positive diagonal, so it is the
		// Cholesky factor of sigma.
		mn[i] = matrixNormal(g, mean, lu, a)
	}
	return mn, iw, nil
}

func checkMean(n int, mu []float64, sigma mat.Matrix) (*mat.SymDense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("number of draws %d: %w", n, linalg.ErrInvalidParameter)
	}
	sym, err := linalg.Symmetric(sigma)
	if err != nil {
		return nil, fmt.Errorf("covariance: %w", err)
	}
	if sym.SymmetricDim() != len(mu) || len(mu) == 0 {
		return nil, fmt.Errorf("mean length %d, covariance %dx%d: %w", len(mu), sym.SymmetricDim(), sym.SymmetricDim(), linalg.ErrInvalidDimension)
	}
	return sym, nil
}

func addRowMean(m *mat.Dense, mu []float64) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		for j := range row {
			row[j] += mu[j]
		}
	}
}
