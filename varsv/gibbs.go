// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package varsv

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"bvarsv/linalg"
	"bvarsv/randvar"
)

// Sampler runs the VAR-SV Gibbs sampler on one design/response pair.
// Every iteration draws, in order:
//  1. the coefficients alpha given the residual precision,
//  2. the log-volatility path of every series,
//  3. the contemporaneous coefficients a,
//  4. sigma_h^2 and then h0.
type Sampler struct {
	cfg    Config
	hyp    Hyperparameters
	d      dims
	groups *groupIndex
	x, y   *mat.Dense
	// Coefficient design, row t*k+j holds x_t in the columns of
	// equation j.
	design   *mat.Dense
	response []float64

	coefPrior, contemPrior Shrinkage
}

// NewSampler validates the inputs and fills in missing hyperparameters.
// All shape and parameter errors surface here, before any sampling.
func NewSampler(x, y *mat.Dense, hyp Hyperparameters, cfg Config) (*Sampler, error) {
	if x == nil || y == nil {
		return nil, fmt.Errorf("design and response must be provided: %w", linalg.ErrInvalidDimension)
	}
	if cfg.NumIter <= 0 || cfg.NumBurn < 0 || cfg.NumBurn >= cfg.NumIter {
		return nil, fmt.Errorf("need 0 <= burn-in < iterations, got %d and %d: %w", cfg.NumBurn, cfg.NumIter, linalg.ErrInvalidParameter)
	}
	d, err := newDims(x, y, cfg.IncludeMean)
	if err != nil {
		return nil, err
	}
	gi, err := newGroupIndex(hyp.Groups, d)
	if err != nil {
		return nil, err
	}
	hyp = hyp.withDefaults(d, gi.len())
	if err := hyp.validate(cfg.Prior, d, gi.len()); err != nil {
		return nil, err
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = DefaultLogEvery
	}

	design, err := linalg.PeriodMajor(linalg.Kronecker(linalg.Identity(d.k), x), d.T, d.k)
	if err != nil {
		return nil, err
	}
	s := &Sampler{
		cfg:      cfg,
		hyp:      hyp,
		d:        d,
		groups:   gi,
		x:        x,
		y:        y,
		design:   design,
		response: rowMajor(y),
	}
	return s, nil
}

// state is the current value of every sampled quantity.
type state struct {
	alpha []float64
	coef  *mat.Dense // m x k view of alpha
	a     []float64
	lower *mat.TriDense
	h     *mat.Dense // T x k
	h0    []float64
	sigh  []float64
	resid *mat.Dense // T x k
}

// Run draws cfg.NumIter iterations. A cancelled context or a true Abort
// hook stops the run between iterations; the records filled so far are then
// returned untrimmed with Aborted set and a nil error.
// Every call starts from the same initial state and seed. Run must not be
// called concurrently on one Sampler.
func (s *Sampler) Run(ctx context.Context) (*Records, error) {
	d := s.d
	s.coefPrior, s.contemPrior = newShrinkage(s.cfg.Prior, &s.hyp, d, s.groups)
	gen := randvar.New(s.cfg.Seed)
	rec := newRecords(s.cfg.Prior, d, s.groups.len(), s.cfg.NumIter)

	st, err := s.initialize(rec)
	if err != nil {
		return nil, err
	}

	logrus.Infof("VAR-SV: %d series, %d regressors, %d observations, %s prior, %d iterations (%d burn-in)",
		d.k, d.m, d.T, s.cfg.Prior, s.cfg.NumIter, s.cfg.NumBurn)
	start := time.Now()

	var coefReg, contemReg regression
	coefBlocks := make([]mat.Symmetric, d.T)
	contemBlocks := make([]mat.Symmetric, d.T)
	contemDesign := mat.NewDense(d.T*d.k, d.numLower, nil)
	seeds := make([]uint64, d.k)

	for i := 1; i <= s.cfg.NumIter; i++ {
		if s.aborted(ctx) {
			logrus.Warnf("VAR-SV: aborted after %d of %d iterations", i-1, s.cfg.NumIter)
			rec.truncate(i - 1)
			rec.Done = i - 1
			rec.Aborted = true
			return rec, nil
		}

		// 1. alpha given Sigma_t^{-1} = L' D_t^{-1} L
		for t := 0; t < d.T; t++ {
			coefBlocks[t] = residualPrecision(st.lower, st.h.RawRowView(t))
		}
		mean, prec := s.coefPrior.Prior()
		st.alpha, err = coefReg.draw(gen, s.design, s.response, coefBlocks, mean, prec)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: coefficients: %w", i, err)
		}
		s.coefPrior.Update(gen, st.alpha)
		s.coefPrior.Record(rec, i)
		rec.Alpha.SetRow(i, st.alpha)
		st.coef = mat.NewDense(d.m, d.k, nil)
		for j := 0; j < d.k; j++ {
			st.coef.SetCol(j, st.alpha[j*d.m:(j+1)*d.m])
		}

		// 2. h given the orthogonalized residuals U = E L'
		st.resid = Residuals(s.x, s.y, st.coef)
		var ortho mat.Dense
		ortho.Mul(st.resid, st.lower.T())
		for j := range seeds {
			seeds[j] = gen.Seed()
		}
		if err := s.drawPaths(st, &ortho, seeds); err != nil {
			return nil, fmt.Errorf("iteration %d: %w", i, err)
		}
		rec.H.Slice(i*d.T, (i+1)*d.T, 0, d.k).(*mat.Dense).Copy(st.h)

		// 3. a given e_tj = -sum_{i<j} a_ji e_ti + eta_tj, eta_t ~ N(0, D_t)
		fillContemDesign(contemDesign, st.resid)
		for t := 0; t < d.T; t++ {
			contemBlocks[t] = innovationPrecision(st.h.RawRowView(t))
		}
		mean, prec = s.contemPrior.Prior()
		st.a, err = contemReg.draw(gen, contemDesign, rowMajor(st.resid), contemBlocks, mean, prec)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: contemporaneous coefficients: %w", i, err)
		}
		s.contemPrior.Update(gen, st.a)
		s.contemPrior.Record(rec, i)
		rec.A.SetRow(i, st.a)
		if st.lower, err = linalg.BuildLowerFromVector(d.k, st.a); err != nil {
			return nil, err
		}

		// 4. sigma_h^2 with the previous h0, then h0
		h1 := st.h.RawRowView(0)
		for j := 0; j < d.k; j++ {
			st.sigh[j] = drawSigmaH(gen, s.hyp.SigShape[j], s.hyp.SigScale[j], st.h0[j], mat.Col(nil, j, st.h))
		}
		st.h0, err = drawInitialLogVol(gen, s.hyp.InitMean, s.hyp.InitPrec, h1, st.sigh)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", i, err)
		}
		rec.Sigh.SetRow(i, st.sigh)
		rec.H0.SetRow(i, st.h0)

		if i%s.cfg.LogEvery == 0 {
			logrus.Debugf("VAR-SV: iteration %d/%d, mean sigma_h^2 %.4g", i, s.cfg.NumIter, stat.Mean(st.sigh, nil))
		}
		if s.cfg.Progress != nil {
			s.cfg.Progress(i, s.cfg.NumIter)
		}
	}

	rec.Done = s.cfg.NumIter
	rec.dropBurnIn(s.cfg.NumBurn)
	logrus.Infof("VAR-SV: finished %d iterations in %s", s.cfg.NumIter, time.Since(start).Round(time.Millisecond))
	return rec, nil
}

func (s *Sampler) aborted(ctx context.Context) bool {
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	return s.cfg.Abort != nil && s.cfg.Abort()
}

// initialize fills row 0 of every trace: OLS coefficients, a = 0,
// h0 = log(mean squared OLS residual) repeated along the path and
// sigma_h^2 = 0.1.
func (s *Sampler) initialize(rec *Records) (*state, error) {
	d := s.d
	coef, err := OLS(s.x, s.y)
	if err != nil {
		return nil, fmt.Errorf("initial coefficients: %w", err)
	}
	st := &state{
		alpha: linalg.Vectorize(coef).RawVector().Data,
		coef:  coef,
		a:     make([]float64, d.numLower),
		h:     mat.NewDense(d.T, d.k, nil),
		h0:    make([]float64, d.k),
		sigh:  make([]float64, d.k),
		resid: Residuals(s.x, s.y, coef),
	}
	if st.lower, err = linalg.BuildLowerFromVector(d.k, st.a); err != nil {
		return nil, err
	}
	for j := 0; j < d.k; j++ {
		var ss float64
		for t := 0; t < d.T; t++ {
			e := st.resid.At(t, j)
			ss += e * e
		}
		st.h0[j] = math.Log(ss / float64(d.T))
		st.sigh[j] = 0.1
		for t := 0; t < d.T; t++ {
			st.h.Set(t, j, st.h0[j])
		}
	}

	rec.Alpha.SetRow(0, st.alpha)
	rec.A.SetRow(0, st.a)
	rec.H0.SetRow(0, st.h0)
	rec.Sigh.SetRow(0, st.sigh)
	rec.H.Slice(0, d.T, 0, d.k).(*mat.Dense).Copy(st.h)
	s.coefPrior.Record(rec, 0)
	s.contemPrior.Record(rec, 0)
	return st, nil
}

// drawPaths redraws the log-volatility path of every series in parallel.
// Series j uses its own generator seeded with seeds[j], so the result does
// not depend on the number of workers.
func (s *Sampler) drawPaths(st *state, ortho *mat.Dense, seeds []uint64) error {
	k := s.d.k
	numWorkers := s.cfg.workers(k)

	paths := make([][]float64, k)
	errs := make([]error, k)
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	// Worker function
	worker := func() {
		defer wg.Done()
		for j := range jobs {
			g := randvar.New(seeds[j])
			ystar := LogSquare(nil, mat.Col(nil, j, ortho))
			paths[j], errs[j] = drawLogVol(g, ystar, mat.Col(nil, j, st.h), st.h0[j], st.sigh[j])
		}
	}

	// Start workers
	for w := 0; w < numWorkers; w++ {
		go worker()
	}

	// Feed jobs
	for j := 0; j < k; j++ {
		jobs <- j
	}
	close(jobs)
	wg.Wait()

	for j := 0; j < k; j++ {
		if errs[j] != nil {
			return fmt.Errorf("log-volatility of series %d: %w", j, errs[j])
		}
		st.h.SetCol(j, paths[j])
	}
	return nil
}

// residualPrecision returns L' D_t^{-1} L with D_t = diag(exp(h_t)).
func residualPrecision(lower *mat.TriDense, ht []float64) *mat.SymDense {
	k := len(ht)
	// scaled = D_t^{-1/2} L, so L' D_t^{-1} L = scaled' scaled
	scaled := mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		w := math.Exp(-ht[i] / 2)
		for j := 0; j <= i; j++ {
			scaled.Set(i, j, w*lower.At(i, j))
		}
	}
	out := mat.NewSymDense(k, nil)
	out.SymOuterK(1, scaled.T())
	return out
}

// innovationPrecision returns D_t^{-1} = diag(exp(-h_t)).
func innovationPrecision(ht []float64) *mat.DiagDense {
	diag := make([]float64, len(ht))
	for i, h := range ht {
		diag[i] = math.Exp(-h)
	}
	return mat.NewDiagDense(len(ht), diag)
}

// fillContemDesign writes the regression of every residual on the residuals
// of the earlier series. Row t*k+j holds -e_{t,0..j-1} in the columns of the
// row j coefficients of L, see linalg.LowerIndex.
func fillContemDesign(dst, resid *mat.Dense) {
	T, k := resid.Dims()
	for t := 0; t < T; t++ {
		for j := 0; j < k; j++ {
			row := dst.RawRowView(t*k + j)
			for i := 0; i < j; i++ {
				row[linalg.LowerIndex(j, i)] = -resid.At(t, i)
			}
		}
	}
}

// rowMajor stacks the rows of m into one slice.
func rowMajor(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for t := 0; t < r; t++ {
		out = append(out, m.RawRowView(t)...)
	}
	return out
}
