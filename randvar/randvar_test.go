// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package randvar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"bvarsv/linalg"
)

var (
	testMean = []float64{1, -1}
	testCov  = mat.NewSymDense(2, []float64{2, 0.5, 0.5, 1})
)

func checkMoments(t *testing.T, draws *mat.Dense) {
	t.Helper()
	n, dim := draws.Dims()
	require.Equal(t, 100000, n)
	require.Equal(t, 2, dim)
	for j := 0; j < dim; j++ {
		assert.InDelta(t, testMean[j], stat.Mean(mat.Col(nil, j, draws), nil), 0.02)
	}
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, draws, nil)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			assert.InDelta(t, testCov.At(i, j), cov.At(i, j), 0.04, "cov(%d,%d)", i, j)
		}
	}
}

func TestSampleMVNMoments(t *testing.T) {
	draws, err := SampleMVN(New(1), 100000, testMean, testCov)
	require.NoError(t, err)
	checkMoments(t, draws)
}

func TestSampleMVNCholeskyMoments(t *testing.T) {
	draws, err := SampleMVNCholesky(New(2), 100000, testMean, testCov)
	require.NoError(t, err)
	checkMoments(t, draws)
}

func TestSampleMVNValidation(t *testing.T) {
	tests := []struct {
		name  string
		mu    []float64
		sigma mat.Matrix
		want  error
	}{
		{"non-square", []float64{0, 0}, mat.NewDense(2, 3, nil), linalg.ErrInvalidDimension},
		{"asymmetric", []float64{0, 0}, mat.NewDense(2, 2, []float64{1, 0.2, 0.3, 1}), linalg.ErrInvalidDimension},
		{"mean length", []float64{0, 0, 0}, testCov, linalg.ErrInvalidDimension},
		{"indefinite", []float64{0, 0}, mat.NewSymDense(2, []float64{1, 3, 3, 1}), linalg.ErrNonPositiveDefinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SampleMVN(New(3), 10, tt.mu, tt.sigma)
			assert.ErrorIs(t, err, tt.want)
			_, err = SampleMVNCholesky(New(3), 10, tt.mu, tt.sigma)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGeneratorDeterminism(t *testing.T) {
	a, err := SampleMVNCholesky(New(42), 50, testMean, testCov)
	require.NoError(t, err)
	b, err := SampleMVNCholesky(New(42), 50, testMean, testCov)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a, b))

	g1, g2 := New(7), New(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, g1.ChiSquare(3), g2.ChiSquare(3))
		assert.Equal(t, g1.InvGamma(2, 1), g2.InvGamma(2, 1))
	}
}

func TestScalarDraws(t *testing.T) {
	g := New(11)
	const n = 20000
	chi := make([]float64, n)
	for i := range chi {
		chi[i] = g.ChiSquare(4)
	}
	assert.InDelta(t, 4, stat.Mean(chi, nil), 0.1)

	for i := 0; i < 1000; i++ {
		b := g.Beta(2, 3)
		assert.True(t, b > 0 && b < 1)
		d := g.Bernoulli(0.3)
		assert.True(t, d == 0 || d == 1)
		assert.Greater(t, g.InvGamma(1.5, 2), 0.0)
	}
}

func TestSampleMatrixNormal(t *testing.T) {
	mean := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	u := mat.NewSymDense(2, []float64{1, 0.3, 0.3, 1})
	v := mat.NewSymDense(3, []float64{1, 0, 0, 0, 2, 0.5, 0, 0.5, 1})

	g := New(5)
	const n = 20000
	sum := mat.NewDense(2, 3, nil)
	for i := 0; i < n; i++ {
		y, err := SampleMatrixNormal(g, mean, u, v)
		require.NoError(t, err)
		sum.Add(sum, y)
	}
	sum.Scale(1.0/n, sum)
	assert.True(t, mat.EqualApprox(mean, sum, 0.05))

	_, err := SampleMatrixNormal(g, mean, v, v)
	assert.ErrorIs(t, err, linalg.ErrInvalidDimension)
	_, err = SampleMatrixNormal(g, mean, u, u)
	assert.ErrorIs(t, err, linalg.ErrInvalidDimension)
}

func TestSampleInverseWishartIsPositiveDefinite(t *testing.T) {
	psi := mat.NewSymDense(3, []float64{
		2, 0.3, 0.1,
		0.3, 1, 0.2,
		0.1, 0.2, 1.5,
	})
	g := New(9)
	for i := 0; i < 500; i++ {
		sigma, err := SampleInverseWishart(g, psi, 3.5)
		require.NoError(t, err)
		_, err = linalg.Cholesky(sigma)
		require.NoError(t, err, "draw %d", i)
	}
}

func TestSampleInverseWishartMean(t *testing.T) {
	tests := []struct {
		name  string
		psi   *mat.SymDense
		shape float64
		n     int
	}{
		{"2x2", mat.NewSymDense(2, []float64{1, 0.4, 0.4, 2}), 10, 20000},
		{"3x3 identity", mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}), 10, 40000},
		{"3x3 correlated", mat.NewSymDense(3, []float64{2, 0.5, 0.2, 0.5, 1, 0.3, 0.2, 0.3, 1.5}), 12, 40000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dim := tc.psi.SymmetricDim()
			g := New(13)
			sum := mat.NewDense(dim, dim, nil)
			for i := 0; i < tc.n; i++ {
				sigma, err := SampleInverseWishart(g, tc.psi, tc.shape)
				require.NoError(t, err)
				sum.Add(sum, sigma)
			}
			// E[Sigma] = psi / (shape - dim - 1)
			for i := 0; i < dim; i++ {
				for j := 0; j < dim; j++ {
					want := tc.psi.At(i, j) / (tc.shape - float64(dim) - 1)
					assert.InDelta(t, want, sum.At(i, j)/float64(tc.n), 0.05*math.Max(math.Abs(want), 0.1), "(%d,%d)", i, j)
				}
			}
		})
	}
}

func TestInverseWishartFactorValidation(t *testing.T) {
	psi := mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	_, err := InverseWishartFactor(New(1), psi, 2)
	assert.ErrorIs(t, err, linalg.ErrInvalidParameter)
	_, err = InverseWishartFactor(New(1), mat.NewDense(3, 2, nil), 5)
	assert.ErrorIs(t, err, linalg.ErrInvalidDimension)

	a, err := InverseWishartFactor(New(1), psi, 2.5)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Greater(t, a.At(i, i), 0.0)
		for j := i + 1; j < 3; j++ {
			assert.InDelta(t, 0, a.At(i, j), 1e-12)
		}
	}
}

func TestSampleNormalInverseWishart(t *testing.T) {
	mean := mat.NewDense(3, 2, []float64{0, 1, 2, 3, 4, 5})
	u := linalg.Identity(3)
	psi := mat.NewSymDense(2, []float64{1, 0.2, 0.2, 1})

	mn, iw, err := SampleNormalInverseWishart(New(21), 25, mean, u, psi, 6)
	require.NoError(t, err)
	require.Len(t, mn, 25)
	require.Len(t, iw, 25)
	for i := range mn {
		r, c := mn[i].Dims()
		assert.Equal(t, 3, r)
		assert.Equal(t, 2, c)
		_, err := linalg.Cholesky(iw[i])
		assert.NoError(t, err)
	}

	_, _, err = SampleNormalInverseWishart(New(21), 5, mean, u, psi, 0.5)
	assert.ErrorIs(t, err, linalg.ErrInvalidParameter)
	_, _, err = SampleNormalInverseWishart(New(21), 5, mean, linalg.Identity(2), psi, 6)
	assert.ErrorIs(t, err, linalg.ErrInvalidDimension)
}
