// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

// Package varsv fits a vector autoregression with stochastic volatility by
// Gibbs sampling. Coefficients can be shrunk with a Minnesota, SSVS or
// Horseshoe prior.
package varsv

import (
	"context"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Simple struct for time series data
type TimeSeries struct {
	// Matrix for data, rows are time points
	Y *mat.Dense
	// Time index of each row
	Time []float64
	// List of variable Names
	VarNames []string
}

// PriorType selects the shrinkage prior on the VAR coefficients.
type PriorType int

// Prior types, numbered as in the sampler's public interface.
const (
	Minnesota PriorType = iota + 1
	SSVS
	Horseshoe
)

func (p PriorType) String() string {
	switch p {
	case Minnesota:
		return "minnesota"
	case SSVS:
		return "ssvs"
	case Horseshoe:
		return "horseshoe"
	}
	return fmt.Sprintf("PriorType(%d)", int(p))
}

// ParsePriorType accepts the prior name or its number.
func ParsePriorType(s string) (PriorType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minnesota", "1":
		return Minnesota, nil
	case "ssvs", "2":
		return SSVS, nil
	case "horseshoe", "hs", "3":
		return Horseshoe, nil
	}
	return 0, fmt.Errorf("unknown prior type %q", s)
}

// What kind of model to fit
type ModelSpec struct {
	// How many lags?
	Lags int
	// Add a constant to every equation
	IncludeMean bool
}

// Regressors is the number of design columns, kp plus one with a constant.
func (s ModelSpec) Regressors(k int) int {
	m := k * s.Lags
	if s.IncludeMean {
		m++
	}
	return m
}

// Estimator turns a time series into a fitted VAR-SV.
type Estimator interface {
	Estimate(ctx context.Context, ts *TimeSeries, spec ModelSpec) (*Fit, error)
}

// Fit holds the posterior draws of one sampler run together with what is
// needed to use them.
type Fit struct {
	Spec     ModelSpec
	VarNames []string
	// Design and response the sampler ran on
	X, Y    *mat.Dense
	Records *Records
}

// Dims returns the number of series and of design columns.
func (f *Fit) Dims() (k, m int) {
	_, k = f.Y.Dims()
	_, m = f.X.Dims()
	return k, m
}
