// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"bvarsv/linalg"
	"bvarsv/varsv"
)

// PriorConfig is the YAML prior file read by `run --config`. Every section
// is optional; missing values take the sampler defaults.
// Unknown keys are rejected so typos surface as errors.
type PriorConfig struct {
	// Group id of every coefficient, one row per design column and one
	// column per series.
	Groups     [][]int          `yaml:"groups"`
	Minnesota  MinnesotaConfig  `yaml:"minnesota"`
	SSVS       SSVSConfig       `yaml:"ssvs"`
	Horseshoe  HorseshoeConfig  `yaml:"horseshoe"`
	Volatility VolatilityConfig `yaml:"volatility"`
}

type MinnesotaConfig struct {
	CoefMean [][]float64 `yaml:"coef_mean"` // m x k
	CoefPrec [][]float64 `yaml:"coef_prec"` // m x m
	PrecDiag [][]float64 `yaml:"prec_diag"` // k x k
}

type SSVSConfig struct {
	CoefSpike        []float64 `yaml:"coef_spike"`
	CoefSlab         []float64 `yaml:"coef_slab"`
	CoefSlabWeight   []float64 `yaml:"coef_slab_weight"`
	CoefS1           float64   `yaml:"coef_s1"`
	CoefS2           float64   `yaml:"coef_s2"`
	ContemSpike      []float64 `yaml:"contem_spike"`
	ContemSlab       []float64 `yaml:"contem_slab"`
	ContemSlabWeight float64   `yaml:"contem_slab_weight"`
	ContemS1         float64   `yaml:"contem_s1"`
	ContemS2         float64   `yaml:"contem_s2"`
	MeanNon          []float64 `yaml:"mean_non"`
	SdNon            float64   `yaml:"sd_non"`
}

type HorseshoeConfig struct {
	InitLocal        []float64 `yaml:"init_local"`
	InitGlobal       []float64 `yaml:"init_global"`
	InitContemLocal  []float64 `yaml:"init_contem_local"`
	InitContemGlobal float64   `yaml:"init_contem_global"`
}

type VolatilityConfig struct {
	SigShape []float64   `yaml:"sig_shape"`
	SigScale []float64   `yaml:"sig_scale"`
	InitMean []float64   `yaml:"init_mean"`
	InitPrec [][]float64 `yaml:"init_prec"`
}

// DrawSpec is the YAML file read by `draw`.
type DrawSpec struct {
	// mvn, mvn-cholesky, matrix-normal, iw or mniw
	Kind  string      `yaml:"kind"`
	Draws int         `yaml:"draws"`
	Mean  [][]float64 `yaml:"mean"`  // one row for mvn
	Cov   [][]float64 `yaml:"cov"`   // mvn covariance
	Rows  [][]float64 `yaml:"rows"`  // matrix-normal row covariance U
	Cols  [][]float64 `yaml:"cols"`  // matrix-normal column covariance V
	Scale [][]float64 `yaml:"scale"` // inverse-Wishart scale
	Shape float64     `yaml:"shape"` // inverse-Wishart degrees of freedom
}

// decodeStrict parses a YAML file with strict field checking.
func decodeStrict(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadPriorConfig reads a prior file. An empty path gives the defaults.
func loadPriorConfig(path string) (PriorConfig, error) {
	var cfg PriorConfig
	if path == "" {
		return cfg, nil
	}
	err := decodeStrict(path, &cfg)
	return cfg, err
}

func loadDrawSpec(path string) (DrawSpec, error) {
	var spec DrawSpec
	if err := decodeStrict(path, &spec); err != nil {
		return spec, err
	}
	if spec.Draws == 0 {
		spec.Draws = 1
	}
	return spec, nil
}

// Hyperparameters converts the file into the sampler's prior bundle.
func (c PriorConfig) Hyperparameters() (varsv.Hyperparameters, error) {
	h := varsv.Hyperparameters{
		Groups: c.Groups,

		CoefSpike:        c.SSVS.CoefSpike,
		CoefSlab:         c.SSVS.CoefSlab,
		CoefSlabWeight:   c.SSVS.CoefSlabWeight,
		CoefS1:           c.SSVS.CoefS1,
		CoefS2:           c.SSVS.CoefS2,
		ContemSpike:      c.SSVS.ContemSpike,
		ContemSlab:       c.SSVS.ContemSlab,
		ContemSlabWeight: c.SSVS.ContemSlabWeight,
		ContemS1:         c.SSVS.ContemS1,
		ContemS2:         c.SSVS.ContemS2,
		MeanNon:          c.SSVS.MeanNon,
		SdNon:            c.SSVS.SdNon,

		InitLocal:        c.Horseshoe.InitLocal,
		InitGlobal:       c.Horseshoe.InitGlobal,
		InitContemLocal:  c.Horseshoe.InitContemLocal,
		InitContemGlobal: c.Horseshoe.InitContemGlobal,

		SigShape: c.Volatility.SigShape,
		SigScale: c.Volatility.SigScale,
		InitMean: c.Volatility.InitMean,
	}

	var err error
	if h.CoefMean, err = denseFromRows("minnesota.coef_mean", c.Minnesota.CoefMean); err != nil {
		return h, err
	}
	if h.CoefPrec, err = symFromRows("minnesota.coef_prec", c.Minnesota.CoefPrec); err != nil {
		return h, err
	}
	if h.PrecDiag, err = symFromRows("minnesota.prec_diag", c.Minnesota.PrecDiag); err != nil {
		return h, err
	}
	if h.InitPrec, err = symFromRows("volatility.init_prec", c.Volatility.InitPrec); err != nil {
		return h, err
	}
	return h, nil
}

// denseFromRows builds a matrix from YAML rows; no rows gives nil.
func denseFromRows(name string, rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols || cols == 0 {
			return nil, fmt.Errorf("%s row %d has %d entries, want %d: %w", name, i, len(row), cols, linalg.ErrInvalidDimension)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

func symFromRows(name string, rows [][]float64) (*mat.SymDense, error) {
	m, err := denseFromRows(name, rows)
	if m == nil || err != nil {
		return nil, err
	}
	s, err := linalg.Symmetric(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}
