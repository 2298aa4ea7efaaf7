// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package varsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"bvarsv/linalg"
)

func TestBuildDesignLayout(t *testing.T) {
	ts := &TimeSeries{Y: mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})}
	x, y, err := BuildDesign(ts, ModelSpec{Lags: 2, IncludeMean: true})
	require.NoError(t, err)

	assert.True(t, mat.Equal(y, mat.NewDense(2, 2, []float64{3, 30, 4, 40})))
	// [y_{t-1}, y_{t-2}, 1]
	assert.True(t, mat.Equal(x, mat.NewDense(2, 5, []float64{
		2, 20, 1, 10, 1,
		3, 30, 2, 20, 1,
	})))

	x, _, err = BuildDesign(ts, ModelSpec{Lags: 1})
	require.NoError(t, err)
	_, c := x.Dims()
	assert.Equal(t, 2, c)
}

func TestBuildDesignErrors(t *testing.T) {
	ts := &TimeSeries{Y: mat.NewDense(3, 2, nil)}
	_, _, err := BuildDesign(ts, ModelSpec{Lags: 0})
	assert.ErrorIs(t, err, linalg.ErrInvalidParameter)
	_, _, err = BuildDesign(ts, ModelSpec{Lags: 3})
	assert.ErrorIs(t, err, linalg.ErrInvalidDimension)
	_, _, err = BuildDesign(nil, ModelSpec{Lags: 1})
	assert.ErrorIs(t, err, linalg.ErrInvalidDimension)
}

func TestOLSRecoversNoiselessCoefficients(t *testing.T) {
	x := mat.NewDense(5, 2, []float64{
		1, 1,
		2, 1,
		3, 1,
		4, 1,
		6, 1,
	})
	want := mat.NewDense(2, 2, []float64{
		0.5, -2,
		1, 3,
	})
	var y mat.Dense
	y.Mul(x, want)

	b, err := OLS(x, &y)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, b, 1e-10))
	assert.InDelta(t, 0, mat.Norm(Residuals(x, &y, b), 2), 1e-9)
}

func TestOLSSingularFallsBackToSVD(t *testing.T) {
	// Duplicated column: X'X is singular.
	x := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
	})
	y := mat.NewDense(4, 1, []float64{2, 4, 6, 8})
	b, err := OLS(x, y)
	require.NoError(t, err)
	// Minimum-norm solution splits the slope evenly.
	assert.InDelta(t, 1, b.At(0, 0), 1e-8)
	assert.InDelta(t, 1, b.At(1, 0), 1e-8)

	b, err = OLS(mat.NewDense(3, 2, nil), mat.NewDense(3, 1, []float64{1, 2, 3}))
	require.NoError(t, err)
	assert.True(t, mat.Equal(b, mat.NewDense(2, 1, nil)))

	_, err = OLS(x, mat.NewDense(3, 1, nil))
	assert.ErrorIs(t, err, linalg.ErrInvalidDimension)
}
