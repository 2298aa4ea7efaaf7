// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package cmd

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bvarsv/linalg"
)

// drawShape counts the rows and columns of a headerless CSV file.
func drawShape(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	return len(records), len(records[0])
}

func TestRunDrawKinds(t *testing.T) {
	eye2 := [][]float64{{1, 0}, {0, 1}}
	for _, tc := range []struct {
		spec  DrawSpec
		files int
		cols  int
	}{
		{DrawSpec{Kind: "mvn", Draws: 5, Mean: [][]float64{{1, 2}}, Cov: eye2}, 1, 2},
		{DrawSpec{Kind: "mvn-cholesky", Draws: 5, Mean: [][]float64{{1, 2}}, Cov: eye2}, 1, 2},
		{DrawSpec{Kind: "matrix-normal", Draws: 5, Mean: [][]float64{{0, 0}, {0, 0}, {0, 0}},
			Rows: [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, Cols: eye2}, 1, 6},
		{DrawSpec{Kind: "iw", Draws: 5, Scale: eye2, Shape: 4}, 1, 4},
		{DrawSpec{Kind: "mniw", Draws: 5, Mean: [][]float64{{0, 0}}, Rows: [][]float64{{1}}, Scale: eye2, Shape: 4}, 2, 2},
	} {
		t.Run(tc.spec.Kind, func(t *testing.T) {
			dir := t.TempDir()
			paths, err := runDraw(tc.spec, 3, dir)
			require.NoError(t, err)
			require.Len(t, paths, tc.files)
			assert.Equal(t, filepath.Join(dir, "draws.csv"), paths[0])
			r, c := drawShape(t, paths[0])
			assert.Equal(t, 5, r)
			assert.Equal(t, tc.cols, c)
			if tc.files == 2 {
				r, c = drawShape(t, paths[1])
				assert.Equal(t, 5, r)
				assert.Equal(t, 4, c)
			}
		})
	}
}

func TestRunDrawErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := runDraw(DrawSpec{Kind: "wishart", Draws: 1}, 1, dir)
	assert.ErrorIs(t, err, linalg.ErrInvalidParameter)
	_, err = runDraw(DrawSpec{Kind: "mvn", Draws: 0}, 1, dir)
	assert.ErrorIs(t, err, linalg.ErrInvalidParameter)
	_, err = runDraw(DrawSpec{Kind: "mvn", Draws: 2, Mean: [][]float64{{0, 0}}}, 1, dir)
	assert.ErrorIs(t, err, linalg.ErrInvalidDimension)
	_, err = runDraw(DrawSpec{Kind: "iw", Draws: 2, Scale: [][]float64{{1, 0}, {0, 1}}, Shape: 0.5}, 1, dir)
	assert.ErrorIs(t, err, linalg.ErrInvalidParameter)
	_, err = runDraw(DrawSpec{Kind: "mvn", Draws: 2, Mean: [][]float64{{0, 0}},
		Cov: [][]float64{{1, 2}, {2, 1}}}, 1, dir)
	assert.ErrorIs(t, err, linalg.ErrNonPositiveDefinite)
}
