// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package varsv

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"bvarsv/linalg"
	"bvarsv/randvar"
)

// Seven-component normal mixture approximating log chi-square(1), from
// Kim, Shephard and Chib (1998).
var (
	kscProb = [7]float64{0.00730, 0.10556, 0.00002, 0.04395, 0.34001, 0.24566, 0.25750}
	kscMean = [7]float64{-10.12999, -3.97281, -8.56686, 2.77786, 0.61942, 1.79518, -1.08819}
	kscVar  = [7]float64{5.79596, 2.61369, 5.17950, 0.16735, 0.64009, 0.34023, 1.26261}
)

const (
	// kscOffset recenters the mixture at E[log chi-square(1)].
	kscOffset = 1.2704
	// logSquareOffset keeps log(e^2 + c) finite.
	logSquareOffset = 1e-4
)

// LogSquare maps orthogonalized residuals to log(e^2 + 1e-4).
func LogSquare(dst, e []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(e))
	}
	for i, v := range e {
		dst[i] = math.Log(v*v + logSquareOffset)
	}
	return dst
}

// drawLogVol draws one log-volatility path h_1..h_T of a single series given
// ystar_t = log(e_t^2 + c), the current path, the initial state h0 and the
// random-walk variance sig2.
//
// First every period gets a mixture component s_t given the current path.
// Given s, ystar_t - m_s + 1.2704 = h_t + N(0, v_s), and with h_t - h_{t-1}
// ~ N(0, sig2) the path is jointly Gaussian with tridiagonal precision
// P = H'H/sig2 + diag(1/v_s). The draw is h = P^{-1}(c + w) where
// w = H'z1/sqrt(sig2) + diag(1/sqrt(v_s)) z2 has covariance P, so only the
// band Cholesky of P is needed.
func drawLogVol(g *randvar.Generator, ystar, hPrev []float64, h0, sig2 float64) ([]float64, error) {
	T := len(ystar)
	if len(hPrev) != T || T == 0 {
		return nil, fmt.Errorf("log-volatility path has length %d, data %d: %w", len(hPrev), T, linalg.ErrInvalidDimension)
	}
	if !(sig2 > 0) {
		return nil, fmt.Errorf("sigma_h^2 = %g: %w", sig2, linalg.ErrInvalidParameter)
	}

	// Mixture indicators
	var logw [7]float64
	mu := make([]float64, T)
	invVar := make([]float64, T)
	for t := 0; t < T; t++ {
		for s := range logw {
			d := ystar[t] - hPrev[t] - kscMean[s] + kscOffset
			logw[s] = math.Log(kscProb[s]) - 0.5*math.Log(kscVar[s]) - 0.5*d*d/kscVar[s]
		}
		s := sampleLogWeights(g, logw[:])
		mu[t] = ystar[t] - kscMean[s] + kscOffset
		invVar[t] = 1 / kscVar[s]
	}

	invSig := 1 / sig2
	prec := mat.NewSymBandDense(T, 1, nil)
	for t := 0; t < T; t++ {
		diag := 2 * invSig
		if t == T-1 {
			diag = invSig
		}
		prec.SetSymBand(t, t, diag+invVar[t])
		if t+1 < T {
			prec.SetSymBand(t, t+1, -invSig)
		}
	}

	// rhs = e_1 h0/sig2 + diag(1/v_s) mu + w
	rhs := make([]float64, T)
	z1 := g.NormalVec(nil, T)
	z2 := g.NormalVec(nil, T)
	sd := math.Sqrt(invSig)
	for t := 0; t < T; t++ {
		// (H' z1)_t = z1_t - z1_{t+1}
		hz := z1[t]
		if t+1 < T {
			hz -= z1[t+1]
		}
		rhs[t] = invVar[t]*mu[t] + sd*hz + math.Sqrt(invVar[t])*z2[t]
	}
	rhs[0] += h0 * invSig

	var chol mat.BandCholesky
	if ok := chol.Factorize(prec); !ok {
		return nil, fmt.Errorf("log-volatility precision: %w", linalg.ErrNonPositiveDefinite)
	}
	var h mat.VecDense
	if err := linalg.IgnoreCondition(chol.SolveVecTo(&h, mat.NewVecDense(T, rhs))); err != nil {
		return nil, fmt.Errorf("log-volatility path: %w", err)
	}
	return h.RawVector().Data, nil
}

// sampleLogWeights picks an index with probability proportional to
// exp(logw[i]).
func sampleLogWeights(g *randvar.Generator, logw []float64) int {
	top := floats.Max(logw)
	var total float64
	for i, lw := range logw {
		logw[i] = math.Exp(lw - top)
		total += logw[i]
	}
	u := g.Uniform() * total
	for i, w := range logw {
		u -= w
		if u < 0 {
			return i
		}
	}
	return len(logw) - 1
}

// drawSigmaH draws sigma_h^2 ~ IG((shape+T)/2, (scale+sum (h_t-h_{t-1})^2)/2)
// with h_0 = h0.
func drawSigmaH(g *randvar.Generator, shape, scale, h0 float64, path []float64) float64 {
	prev := h0
	var ss float64
	for _, h := range path {
		ss += (h - prev) * (h - prev)
		prev = h
	}
	return g.InvGamma((shape+float64(len(path)))/2, (scale+ss)/2)
}

// drawInitialLogVol draws h0 ~ N(V(B0^{-1} b0 + h_1/sig2), V) with
// V^{-1} = B0^{-1} + diag(1/sig2).
func drawInitialLogVol(g *randvar.Generator, priorMean []float64, priorPrec mat.Symmetric, h1, sig2 []float64) ([]float64, error) {
	k := len(priorMean)
	prec := mat.NewSymDense(k, nil)
	prec.CopySym(priorPrec)
	rhs := mat.NewVecDense(k, nil)
	rhs.MulVec(priorPrec, mat.NewVecDense(k, priorMean))
	for i := 0; i < k; i++ {
		prec.SetSym(i, i, prec.At(i, i)+1/sig2[i])
		rhs.SetVec(i, rhs.AtVec(i)+h1[i]/sig2[i])
	}
	h0, err := drawFromPrecision(g, prec, rhs)
	if err != nil {
		return nil, fmt.Errorf("initial log-volatility: %w", err)
	}
	return h0, nil
}
