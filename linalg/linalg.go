// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

// Package linalg holds the matrix reshaping helpers used by the sampler:
// column-major vectorization, Kronecker products, unit lower triangular
// factors packed from a coefficient vector and period-major restacking.
// It also owns the error values shared by the rest of the module.
package linalg

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidDimension reports mismatched or non-square shapes, and scale
	// matrices that are not symmetric.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrInvalidParameter reports out-of-domain scalar parameters such as an
	// inverse-Wishart shape that is too small or a negative group id.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNonPositiveDefinite reports a failed Cholesky factorization.
	ErrNonPositiveDefinite = errors.New("matrix is not positive definite")
)

// symTol is the absolute tolerance used when checking symmetry.
const symTol = 1e-10

// Vectorize stacks the columns of m into one vector (column-major order).
func Vectorize(m mat.Matrix) *mat.VecDense {
	r, c := m.Dims()
	out := mat.NewVecDense(r*c, nil)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			out.SetVec(j*r+i, m.At(i, j))
		}
	}
	return out
}

// Unvectorize is the inverse of Vectorize: it refills a rows x cols matrix
// column by column from v.
func Unvectorize(v mat.Vector, rows, cols int) (*mat.Dense, error) {
	if rows <= 0 || cols <= 0 || v.Len() != rows*cols {
		return nil, fmt.Errorf("unvectorize length %d into %dx%d: %w", v.Len(), rows, cols, ErrInvalidDimension)
	}
	out := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			out.Set(i, j, v.AtVec(j*rows+i))
		}
	}
	return out, nil
}

// Kronecker returns a ⊗ b.
func Kronecker(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Kronecker(a, b)
	return &out
}

// Identity returns the n x n identity matrix.
func Identity(n int) *mat.DiagDense {
	d := make([]float64, n)
	for i := range d {
		d[i] = 1
	}
	return mat.NewDiagDense(n, d)
}

// NumLower is the number of strictly lower triangular elements of a k x k
// matrix, k(k-1)/2.
func NumLower(k int) int {
	return k * (k - 1) / 2
}

// LowerIndex returns the position of L[row, col] (col < row) inside the
// packed contemporaneous vector. Rows are packed in order, row j holding
// j elements starting at j(j-1)/2.
func LowerIndex(row, col int) int {
	return row*(row-1)/2 + col
}

// BuildLowerFromVector returns the k x k unit lower triangular matrix whose
// strictly lower elements are read row by row from v (see LowerIndex).
func BuildLowerFromVector(k int, v []float64) (*mat.TriDense, error) {
	if k <= 0 || len(v) != NumLower(k) {
		return nil, fmt.Errorf("lower factor of size %d from %d elements: %w", k, len(v), ErrInvalidDimension)
	}
	out := mat.NewTriDense(k, mat.Lower, nil)
	for i := 0; i < k; i++ {
		out.SetTri(i, i, 1)
		for j := 0; j < i; j++ {
			out.SetTri(i, j, v[LowerIndex(i, j)])
		}
	}
	return out, nil
}

// PeriodMajor reorders the rows of a block-major stacked matrix, in which row
// j*periods+t belongs to block j, so that row t*blocks+j holds the same data.
// Applied to kron(I_k, x) it groups the k equations of each period together.
func PeriodMajor(m mat.Matrix, periods, blocks int) (*mat.Dense, error) {
	r, c := m.Dims()
	if r != periods*blocks {
		return nil, fmt.Errorf("restack %d rows as %d periods x %d blocks: %w", r, periods, blocks, ErrInvalidDimension)
	}
	out := mat.NewDense(r, c, nil)
	for j := 0; j < blocks; j++ {
		for t := 0; t < periods; t++ {
			for col := 0; col < c; col++ {
				out.Set(t*blocks+j, col, m.At(j*periods+t, col))
			}
		}
	}
	return out, nil
}

// Symmetric copies a square, symmetric matrix into a SymDense.
func Symmetric(a mat.Matrix) (*mat.SymDense, error) {
	if s, ok := a.(*mat.SymDense); ok {
		return s, nil
	}
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("%dx%d scale matrix is not square: %w", r, c, ErrInvalidDimension)
	}
	out := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			if math.Abs(a.At(i, j)-a.At(j, i)) > symTol*(1+math.Abs(a.At(i, j))) {
				return nil, fmt.Errorf("scale matrix is not symmetric at (%d,%d): %w", i, j, ErrInvalidDimension)
			}
			out.SetSym(i, j, a.At(i, j))
		}
	}
	return out, nil
}

// Cholesky factorizes a, returning ErrNonPositiveDefinite on failure.
func Cholesky(a mat.Symmetric) (*mat.Cholesky, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, ErrNonPositiveDefinite
	}
	return &chol, nil
}

// CholeskyLower returns the lower triangular factor L of a = L L^T.
func CholeskyLower(a mat.Symmetric) (*mat.TriDense, error) {
	chol, err := Cholesky(a)
	if err != nil {
		return nil, err
	}
	var l mat.TriDense
	chol.LTo(&l)
	return &l, nil
}

// IgnoreCondition drops gonum's ill-conditioning warning and keeps every
// other error.
func IgnoreCondition(err error) error {
	var cond mat.Condition
	if errors.As(err, &cond) {
		return nil
	}
	return err
}
