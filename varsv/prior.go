// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package varsv

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"bvarsv/linalg"
	"bvarsv/randvar"
)

// Shrinkage is a prior on one coefficient vector whose hyperparameters may
// be redrawn after every coefficient draw. Each iteration runs Prior, the
// coefficient draw, Update and Record, in that order.
type Shrinkage interface {
	// Prior returns the prior mean and precision for the next draw.
	Prior() (mean []float64, prec mat.Symmetric)
	// Update redraws the hyperparameters given the latest coefficient draw.
	Update(g *randvar.Generator, draw []float64)
	// Record writes the hyperparameter traces of iteration row.
	Record(rec *Records, row int)
}

// target tells a strategy which traces it owns.
type target int

const (
	coefTarget target = iota
	contemTarget
)

// fixedPrior never changes. It serves as the Minnesota prior on the
// coefficients and as the N(0, I) prior on the contemporaneous factor.
type fixedPrior struct {
	mean []float64
	prec *mat.SymDense
}

func newMinnesota(h *Hyperparameters) *fixedPrior {
	// alpha = vec(B) is equation-major, so equation i occupies block i of
	// kron(PrecDiag, CoefPrec).
	var kron mat.Dense
	kron.Kronecker(h.PrecDiag, h.CoefPrec)
	n, _ := kron.Dims()
	prec := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			prec.SetSym(i, j, kron.At(i, j))
		}
	}
	return &fixedPrior{
		mean: linalg.Vectorize(h.CoefMean).RawVector().Data,
		prec: prec,
	}
}

func newStandardPrior(n int) *fixedPrior {
	return &fixedPrior{mean: make([]float64, n), prec: identitySym(n, 1)}
}

func (p *fixedPrior) Prior() ([]float64, mat.Symmetric) { return p.mean, p.prec }

func (p *fixedPrior) Update(*randvar.Generator, []float64) {}

func (p *fixedPrior) Record(*Records, int) {}

// ssvsPrior is the spike-and-slab prior. Each free coefficient carries an
// inclusion dummy; its prior SD is the slab SD when included and the spike
// SD otherwise. Dummies are drawn against a slab weight shared by the
// coefficients of one group.
type ssvsPrior struct {
	target target
	spike  []float64
	slab   []float64
	dummy  []float64
	weight []float64
	// group[i] is the weight position of free coefficient i.
	group  []int
	s1, s2 float64

	// free[i] is the position of free coefficient i in the full vector.
	// Entries of the full vector that are not free keep the fixed SD.
	free      []int
	mean      []float64
	fixedPrec []float64
	prec      *mat.DiagDense
}

// newCoefSSVS covers the lag coefficients (top lagRows rows of every
// equation); constants get prior mean MeanNon and SD SdNon.
func newCoefSSVS(h *Hyperparameters, d dims, gi *groupIndex) *ssvsPrior {
	s := &ssvsPrior{
		target:    coefTarget,
		spike:     h.CoefSpike,
		slab:      h.CoefSlab,
		dummy:     ones(d.numAlpha),
		weight:    append([]float64(nil), h.CoefSlabWeight...),
		group:     make([]int, 0, d.numAlpha),
		s1:        h.CoefS1,
		s2:        h.CoefS2,
		free:      make([]int, 0, d.numAlpha),
		mean:      make([]float64, d.numCoef),
		fixedPrec: make([]float64, d.numCoef),
		prec:      mat.NewDiagDense(d.numCoef, nil),
	}
	for j := 0; j < d.k; j++ {
		for r := 0; r < d.m; r++ {
			idx := j*d.m + r
			if r < d.lagRows {
				s.free = append(s.free, idx)
				s.group = append(s.group, gi.of[idx])
				continue
			}
			s.mean[idx] = h.MeanNon[j]
			s.fixedPrec[idx] = 1 / (h.SdNon * h.SdNon)
		}
	}
	return s
}

// newContemSSVS covers every contemporaneous coefficient with one weight.
func newContemSSVS(h *Hyperparameters, d dims) *ssvsPrior {
	s := &ssvsPrior{
		target:    contemTarget,
		spike:     h.ContemSpike,
		slab:      h.ContemSlab,
		dummy:     ones(d.numLower),
		weight:    []float64{h.ContemSlabWeight},
		group:     make([]int, d.numLower),
		s1:        h.ContemS1,
		s2:        h.ContemS2,
		free:      make([]int, d.numLower),
		mean:      make([]float64, d.numLower),
		fixedPrec: make([]float64, d.numLower),
		prec:      mat.NewDiagDense(d.numLower, nil),
	}
	for i := range s.free {
		s.free[i] = i
	}
	return s
}

func (s *ssvsPrior) Prior() ([]float64, mat.Symmetric) {
	for i, v := range s.fixedPrec {
		s.prec.SetDiag(i, v)
	}
	for i, idx := range s.free {
		sd := s.spike[i]
		if s.dummy[i] == 1 {
			sd = s.slab[i]
		}
		s.prec.SetDiag(idx, 1/(sd*sd))
	}
	return s.mean, s.prec
}

// Update draws every dummy from
//
//	P(gamma = 1) = p N(beta; 0, slab^2) / (p N(beta; 0, slab^2) + (1-p) N(beta; 0, spike^2))
//
// with p the current group weight, then every weight from
// Beta(s1 + #included, s2 + #excluded).
func (s *ssvsPrior) Update(g *randvar.Generator, draw []float64) {
	for i, idx := range s.free {
		p := s.weight[s.group[i]]
		beta := draw[idx]
		logSlab := math.Log(p) + distuv.Normal{Mu: 0, Sigma: s.slab[i]}.LogProb(beta)
		logSpike := math.Log1p(-p) + distuv.Normal{Mu: 0, Sigma: s.spike[i]}.LogProb(beta)
		s.dummy[i] = g.Bernoulli(1 / (1 + math.Exp(logSpike-logSlab)))
	}

	included := make([]float64, len(s.weight))
	total := make([]float64, len(s.weight))
	for i, d := range s.dummy {
		included[s.group[i]] += d
		total[s.group[i]]++
	}
	for gr := range s.weight {
		s.weight[gr] = g.Beta(s.s1+included[gr], s.s2+total[gr]-included[gr])
	}
}

func (s *ssvsPrior) Record(rec *Records, row int) {
	switch s.target {
	case coefTarget:
		rec.Gamma.SetRow(row, s.dummy)
		rec.SlabWeight.SetRow(row, s.weight)
	case contemTarget:
		rec.ContemGamma.SetRow(row, s.dummy)
		rec.ContemWeight.SetRow(row, s.weight)
	}
}

// Bounds on squared Horseshoe scales. Draws of lambda^2 and tau^2 are clamped
// to this range, so their inverse-gamma full conditionals are truncated at
// the bounds. The prior precision stays finite and the shrinkage factor
// strictly inside (0, 1).
const (
	minScale2 = 1e-6
	maxScale2 = 1e6
)

// horseshoePrior is the grouped Horseshoe prior
//
//	beta_i ~ N(0, tau_g(i)^2 lambda_i^2),  lambda_i, tau_g ~ C+(0, 1)
//
// with the half-Cauchy scales written as inverse-gamma mixtures over the
// auxiliary nu (local) and xi (global).
type horseshoePrior struct {
	target target
	group  []int
	local  []float64 // lambda
	global []float64 // tau
	nu     []float64
	xi     []float64
	mean   []float64
	prec   *mat.DiagDense
	kappa  []float64
}

func newHorseshoe(t target, group []int, local, global []float64) *horseshoePrior {
	n := len(local)
	h := &horseshoePrior{
		target: t,
		group:  group,
		local:  append([]float64(nil), local...),
		global: append([]float64(nil), global...),
		nu:     ones(n),
		xi:     ones(len(global)),
		mean:   make([]float64, n),
		prec:   mat.NewDiagDense(n, nil),
		kappa:  make([]float64, n),
	}
	h.build()
	return h
}

// newCoefHorseshoe shrinks every coefficient, constants included, with one
// global scale per group.
func newCoefHorseshoe(h *Hyperparameters, gi *groupIndex) *horseshoePrior {
	return newHorseshoe(coefTarget, gi.of, h.InitLocal, h.InitGlobal)
}

// newContemHorseshoe uses a single global scale.
func newContemHorseshoe(h *Hyperparameters, d dims) *horseshoePrior {
	return newHorseshoe(contemTarget, make([]int, d.numLower), h.InitContemLocal, []float64{h.InitContemGlobal})
}

// build refreshes the prior precision diag(1/(tau^2 lambda^2)) and the
// shrinkage factors kappa = 1/(1 + precision).
func (h *horseshoePrior) build() {
	for i, l := range h.local {
		t := h.global[h.group[i]]
		p := 1 / (t * t * l * l)
		h.prec.SetDiag(i, p)
		h.kappa[i] = 1 / (1 + p)
	}
}

func (h *horseshoePrior) Prior() ([]float64, mat.Symmetric) { return h.mean, h.prec }

// Update runs one sweep of the auxiliary-variable sampler:
//
//	nu_i       ~ IG(1, 1 + 1/lambda_i^2)
//	xi_g       ~ IG(1, 1 + 1/tau_g^2)
//	lambda_i^2 ~ IG(1, 1/nu_i + beta_i^2/(2 tau_g^2))
//	tau_g^2    ~ IG((n_g+1)/2, 1/xi_g + sum_g beta_i^2/(2 lambda_i^2))
func (h *horseshoePrior) Update(g *randvar.Generator, draw []float64) {
	for i, l := range h.local {
		h.nu[i] = g.InvGamma(1, 1+1/(l*l))
	}
	for gr, t := range h.global {
		h.xi[gr] = g.InvGamma(1, 1+1/(t*t))
	}
	for i := range h.local {
		t := h.global[h.group[i]]
		l2 := g.InvGamma(1, 1/h.nu[i]+draw[i]*draw[i]/(2*t*t))
		h.local[i] = math.Sqrt(clamp(l2, minScale2, maxScale2))
	}

	count := make([]float64, len(h.global))
	ss := make([]float64, len(h.global))
	for i, l := range h.local {
		count[h.group[i]]++
		ss[h.group[i]] += draw[i] * draw[i] / (2 * l * l)
	}
	for gr := range h.global {
		t2 := g.InvGamma((count[gr]+1)/2, 1/h.xi[gr]+ss[gr])
		h.global[gr] = math.Sqrt(clamp(t2, minScale2, maxScale2))
	}
	h.build()
}

func (h *horseshoePrior) Record(rec *Records, row int) {
	switch h.target {
	case coefTarget:
		rec.Lambda.SetRow(row, h.local)
		rec.Tau.SetRow(row, h.global)
		rec.Kappa.SetRow(row, h.kappa)
	case contemTarget:
		rec.ContemLambda.SetRow(row, h.local)
		rec.ContemTau.SetRow(row, h.global)
	}
}

// newShrinkage builds the coefficient and contemporaneous strategies of a
// prior type.
func newShrinkage(prior PriorType, h *Hyperparameters, d dims, gi *groupIndex) (coef, contem Shrinkage) {
	switch prior {
	case SSVS:
		return newCoefSSVS(h, d, gi), newContemSSVS(h, d)
	case Horseshoe:
		return newCoefHorseshoe(h, gi), newContemHorseshoe(h, d)
	default:
		return newMinnesota(h), newStandardPrior(d.numLower)
	}
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
