// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package cmd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bvarsv/linalg"
)

func init() {
	logrus.SetOutput(io.Discard)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPriorConfig(t *testing.T) {
	path := writeFile(t, "prior.yaml", `
groups:
  - [0, 1]
  - [0, 1]
  - [2, 2]
minnesota:
  coef_prec:
    - [2, 0, 0]
    - [0, 2, 0]
    - [0, 0, 1]
ssvs:
  coef_slab: [3, 3, 3, 3]
  sd_non: 0.5
  mean_non: [1, -1]
horseshoe:
  init_contem_global: 0.3
volatility:
  sig_shape: [4, 4]
  init_prec:
    - [0.2, 0]
    - [0, 0.2]
`)
	cfg, err := loadPriorConfig(path)
	require.NoError(t, err)
	h, err := cfg.Hyperparameters()
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 1}, {0, 1}, {2, 2}}, h.Groups)
	assert.Equal(t, 3, h.CoefPrec.SymmetricDim())
	assert.Equal(t, 2.0, h.CoefPrec.At(1, 1))
	assert.Nil(t, h.CoefMean)
	assert.Nil(t, h.PrecDiag)
	assert.Equal(t, []float64{3, 3, 3, 3}, h.CoefSlab)
	assert.Equal(t, 0.5, h.SdNon)
	assert.Equal(t, []float64{1, -1}, h.MeanNon)
	assert.Equal(t, 0.3, h.InitContemGlobal)
	assert.Equal(t, []float64{4, 4}, h.SigShape)
	assert.Equal(t, 0.2, h.InitPrec.At(1, 1))
}

func TestLoadPriorConfigEmptyPath(t *testing.T) {
	cfg, err := loadPriorConfig("")
	require.NoError(t, err)
	h, err := cfg.Hyperparameters()
	require.NoError(t, err)
	assert.Nil(t, h.Groups)
	assert.Nil(t, h.InitPrec)
}

func TestLoadPriorConfigRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "prior.yaml", "ssvs:\n  coef_slap: [1]\n")
	_, err := loadPriorConfig(path)
	assert.Error(t, err)

	_, err = loadPriorConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPriorConfigMatrixErrors(t *testing.T) {
	cfg := PriorConfig{Minnesota: MinnesotaConfig{CoefMean: [][]float64{{1, 2}, {3}}}}
	_, err := cfg.Hyperparameters()
	assert.ErrorIs(t, err, linalg.ErrInvalidDimension)

	cfg = PriorConfig{Minnesota: MinnesotaConfig{PrecDiag: [][]float64{{1, 2}, {3, 4}}}}
	_, err = cfg.Hyperparameters()
	assert.ErrorIs(t, err, linalg.ErrInvalidDimension)

	cfg = PriorConfig{Volatility: VolatilityConfig{InitPrec: [][]float64{{1, 0, 0}, {0, 1, 0}}}}
	_, err = cfg.Hyperparameters()
	assert.ErrorIs(t, err, linalg.ErrInvalidDimension)
}

func TestLoadDrawSpecDefaults(t *testing.T) {
	path := writeFile(t, "draw.yaml", "kind: iw\nscale:\n  - [1, 0]\n  - [0, 1]\nshape: 5\n")
	spec, err := loadDrawSpec(path)
	require.NoError(t, err)
	assert.Equal(t, "iw", spec.Kind)
	assert.Equal(t, 1, spec.Draws)
	assert.Equal(t, 5.0, spec.Shape)

	path = writeFile(t, "draw.yaml", "kind: iw\ndegrees: 5\n")
	_, err = loadDrawSpec(path)
	assert.Error(t, err)
}
