// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestVectorizeColumnMajor(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	v := Vectorize(m)
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, v.RawVector().Data)
}

func TestUnvectorizeRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
	}{
		{"square", 3, 3},
		{"tall", 5, 2},
		{"wide", 2, 7},
		{"single", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]float64, tt.rows*tt.cols)
			for i := range data {
				data[i] = float64(i)*1.5 - 3
			}
			m := mat.NewDense(tt.rows, tt.cols, data)
			back, err := Unvectorize(Vectorize(m), tt.rows, tt.cols)
			require.NoError(t, err)
			assert.True(t, mat.Equal(m, back))
		})
	}
}

func TestUnvectorizeBadLength(t *testing.T) {
	_, err := Unvectorize(mat.NewVecDense(5, nil), 2, 3)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestKroneckerIdentityReproducesBlockProducts(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 0.5,
		-1, 2,
		3, 1,
		0, -2,
	})
	coef := mat.NewDense(2, 3, []float64{
		0.1, 0.2, -0.3,
		1, -1, 0.5,
	})
	k := 3
	stacked := Kronecker(Identity(k), x)
	r, c := stacked.Dims()
	require.Equal(t, 12, r)
	require.Equal(t, 6, c)

	var got mat.VecDense
	got.MulVec(stacked, Vectorize(coef))

	var want mat.Dense
	want.Mul(x, coef)
	for j := 0; j < k; j++ {
		for row := 0; row < 4; row++ {
			assert.InDelta(t, want.At(row, j), got.AtVec(j*4+row), 1e-12)
		}
	}
}

func TestBuildLowerFromVectorPacking(t *testing.T) {
	v := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	l, err := BuildLowerFromVector(4, v)
	require.NoError(t, err)

	want := mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0.1, 1, 0, 0,
		0.2, 0.3, 1, 0,
		0.4, 0.5, 0.6, 1,
	})
	assert.True(t, mat.Equal(want, l))

	for row := 1; row < 4; row++ {
		for col := 0; col < row; col++ {
			assert.Equal(t, v[LowerIndex(row, col)], l.At(row, col))
		}
	}

	_, err = BuildLowerFromVector(3, v)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestPeriodMajor(t *testing.T) {
	// Two blocks of three periods, one column holding 10*block + period.
	m := mat.NewDense(6, 1, []float64{0, 1, 2, 10, 11, 12})
	out, err := PeriodMajor(m, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 1, 11, 2, 12}, mat.Col(nil, 0, out))

	_, err = PeriodMajor(m, 4, 2)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestSymmetricChecks(t *testing.T) {
	_, err := Symmetric(mat.NewDense(2, 3, nil))
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = Symmetric(mat.NewDense(2, 2, []float64{1, 0.5, 0.4, 1}))
	assert.ErrorIs(t, err, ErrInvalidDimension)

	s, err := Symmetric(mat.NewDense(2, 2, []float64{2, 0.5, 0.5, 1}))
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.At(1, 0))
}

func TestCholeskyRejectsIndefinite(t *testing.T) {
	_, err := Cholesky(mat.NewSymDense(2, []float64{1, 2, 2, 1}))
	assert.ErrorIs(t, err, ErrNonPositiveDefinite)

	l, err := CholeskyLower(mat.NewSymDense(2, []float64{4, 2, 2, 2}))
	require.NoError(t, err)
	assert.InDelta(t, 2, l.At(0, 0), 1e-12)
	assert.InDelta(t, 1, l.At(1, 0), 1e-12)
	assert.InDelta(t, 1, l.At(1, 1), 1e-12)
}

func TestIgnoreCondition(t *testing.T) {
	assert.NoError(t, IgnoreCondition(mat.Condition(1e20)))
	assert.ErrorIs(t, IgnoreCondition(ErrInvalidDimension), ErrInvalidDimension)
	assert.NoError(t, IgnoreCondition(nil))
}
