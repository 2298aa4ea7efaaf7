// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package varsv

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"bvarsv/linalg"
)

// IRF computes impulse responses to a one standard deviation structural
// shock in variable shockIndex at period t. The shock is column shockIndex
// of L^{-1} D_t^{1/2}, so responses change with the volatility of period t.
// horizon: number of periods to compute (h=0, ..., horizon-1)
// Returns: horizon x K matrix, row h is the response of all K vars at horizon h
func (f *Fit) IRF(horizon, shockIndex, t int) (*mat.Dense, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon must be > 0, got %d: %w", horizon, linalg.ErrInvalidParameter)
	}
	root, err := f.impact(t)
	if err != nil {
		return nil, err
	}
	K, _ := root.Dims()
	if shockIndex < 0 || shockIndex >= K {
		return nil, fmt.Errorf("shockIndex must be between 0 and %d: %w", K-1, linalg.ErrInvalidParameter)
	}
	A, _, err := f.LagMatrices()
	if err != nil {
		return nil, err
	}
	p := len(A)

	// Moving-average coefficients, Psi_0 = I_K and
	// Psi_h = sum_{j=1}^{min(h,p)} A_j Psi_{h-j}
	Psi := make([]*mat.Dense, horizon)
	Psi[0] = mat.DenseCopyOf(linalg.Identity(K))
	for h := 1; h < horizon; h++ {
		M := mat.NewDense(K, K, nil)
		maxLag := min(h, p)
		for j := 1; j <= maxLag; j++ {
			var tmp mat.Dense
			tmp.Mul(A[j-1], Psi[h-j])
			M.Add(M, &tmp)
		}
		Psi[h] = M
	}

	// IRF[h] = Psi_h * shock
	shock := mat.Col(nil, shockIndex, root)
	shockVec := mat.NewVecDense(K, shock)
	irf := mat.NewDense(horizon, K, nil)
	for h := 0; h < horizon; h++ {
		var resp mat.VecDense
		resp.MulVec(Psi[h], shockVec)
		irf.SetRow(h, resp.RawVector().Data)
	}
	return irf, nil
}

// IRFAnalysis runs IRF for a shock to every variable and collects the
// response of variable varIndex.
// Returns: map[shockIndex] = response of varIndex for h = 0, ..., horizon-1
func (f *Fit) IRFAnalysis(varIndex, horizon, t int) (map[int][]float64, error) {
	if f == nil || f.Records == nil {
		return nil, fmt.Errorf("VAR-SV model not estimated")
	}
	K, _ := f.Dims()
	if varIndex < 0 || varIndex >= K {
		return nil, fmt.Errorf("varIndex must be between 0 and %d: %w", K-1, linalg.ErrInvalidParameter)
	}

	results := make(map[int][]float64, K)
	for shockIdx := 0; shockIdx < K; shockIdx++ {
		irfMat, err := f.IRF(horizon, shockIdx, t)
		if err != nil {
			return nil, fmt.Errorf("IRF failed for shockIdx %d: %w", shockIdx, err)
		}
		results[shockIdx] = mat.Col(nil, varIndex, irfMat)
	}
	return results, nil
}
