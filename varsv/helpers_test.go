// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package varsv

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"bvarsv/randvar"
)

func init() {
	logrus.SetOutput(io.Discard)
}

// testLag is the VAR(1) matrix used for simulated data, row = equation.
var testLag = mat.NewDense(3, 3, []float64{
	0.5, 0.1, 0.0,
	0.0, 0.3, 0.2,
	0.1, 0.0, 0.4,
})

var testConst = []float64{0.2, -0.1, 0.3}

// simulateVAR draws T points of y_t = c + A y_{t-1} + e_t with small
// Gaussian noise.
func simulateVAR(seed uint64, T int) *TimeSeries {
	g := randvar.New(seed)
	k, _ := testLag.Dims()
	y := mat.NewDense(T, k, nil)
	prev := make([]float64, k)
	for t := 0; t < T; t++ {
		for eq := 0; eq < k; eq++ {
			v := testConst[eq] + 0.3*g.Normal()
			for j := 0; j < k; j++ {
				v += testLag.At(eq, j) * prev[j]
			}
			y.Set(t, eq, v)
		}
		copy(prev, y.RawRowView(t))
	}
	times := make([]float64, T)
	for i := range times {
		times[i] = float64(i)
	}
	return &TimeSeries{Y: y, Time: times, VarNames: []string{"a", "b", "c"}}
}

// testDesign builds the VAR(1) design with a constant of a simulated series.
func testDesign(t *testing.T) (x, y *mat.Dense) {
	t.Helper()
	x, y, err := BuildDesign(simulateVAR(7, 80), ModelSpec{Lags: 1, IncludeMean: true})
	require.NoError(t, err)
	return x, y
}

func testConfig(prior PriorType, iter, burn int) Config {
	return Config{
		NumIter:     iter,
		NumBurn:     burn,
		Prior:       prior,
		IncludeMean: true,
		Threads:     2,
		Seed:        2024,
	}
}
