// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package varsv

import (
	"fmt"
	"runtime"
	"sort"

	"gonum.org/v1/gonum/mat"

	"bvarsv/linalg"
)

// Default hyperparameters.
const (
	DefaultSigShape      = 3.0  // nu_h
	DefaultSigScale      = 0.01 // S_h
	DefaultInitMean      = 1.0  // b0
	DefaultInitPrec      = 0.1  // diagonal of B0^{-1}
	DefaultSpike         = 0.1
	DefaultSlab          = 5.0
	DefaultSlabWeight    = 0.5
	DefaultBetaShape     = 1.0
	DefaultSdNon         = 0.1
	DefaultHorseshoeInit = 1.0
	DefaultLogEvery      = 100
)

// Config controls one sampler run.
type Config struct {
	NumIter int
	NumBurn int
	Prior   PriorType
	// IncludeMean marks the last design column as a constant.
	IncludeMean bool
	// Worker goroutines for the per-series volatility draws, 0 means NumCPU.
	Threads int
	Seed    uint64
	// Debug log cadence in iterations.
	LogEvery int

	// Abort is polled once before every iteration. Returning true stops the
	// run and returns the records collected so far.
	Abort func() bool
	// Progress is called after every completed iteration.
	Progress func(done, total int)
}

func (c *Config) workers(k int) int {
	n := c.Threads
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > k {
		n = k
	}
	return n
}

// Hyperparameters is the prior bundle. Only the fields of the selected prior
// type are read; empty slices and nil matrices take their defaults.
type Hyperparameters struct {
	// Minnesota: alpha ~ N(vec(CoefMean), kron(PrecDiag, CoefPrec)^{-1})
	CoefMean *mat.Dense    // m x k
	CoefPrec *mat.SymDense // m x m
	PrecDiag *mat.SymDense // k x k

	// SSVS, one spike and slab SD per lag coefficient in vec order of the
	// top kp rows, one slab weight per coefficient group.
	CoefSpike      []float64
	CoefSlab       []float64
	CoefSlabWeight []float64
	CoefS1, CoefS2 float64
	// Contemporaneous coefficients share one slab weight.
	ContemSpike        []float64
	ContemSlab         []float64
	ContemSlabWeight   float64
	ContemS1, ContemS2 float64
	MeanNon            []float64 // prior mean of the constants
	SdNon              float64   // prior SD of the constants

	// Horseshoe initial local (per coefficient) and global (per group)
	// scales, and the single global scale of the contemporaneous factor.
	InitLocal        []float64
	InitGlobal       []float64
	InitContemLocal  []float64
	InitContemGlobal float64

	// Group assignment, m x k matching the coefficient matrix. Nil puts
	// every coefficient into group 0.
	Groups [][]int

	// Log-volatility priors: sigma_h^2 ~ IG(SigShape/2, SigScale/2) per
	// series and h0 ~ N(InitMean, InitPrec^{-1}).
	SigShape []float64
	SigScale []float64
	InitMean []float64
	InitPrec *mat.SymDense
}

// dims are the sizes shared by every component of one run.
type dims struct {
	T        int // observations
	k        int // series
	m        int // design columns
	numCoef  int // k*m
	numAlpha int // k*(m - constant)
	numLower int // k(k-1)/2
	lagRows  int // rows of the coefficient matrix that hold lags
}

func newDims(x, y mat.Matrix, includeMean bool) (dims, error) {
	T, m := x.Dims()
	ry, k := y.Dims()
	if T != ry || T == 0 {
		return dims{}, fmt.Errorf("design has %d rows, response has %d: %w", T, ry, linalg.ErrInvalidDimension)
	}
	if k < 2 {
		return dims{}, fmt.Errorf("need at least 2 series, got %d: %w", k, linalg.ErrInvalidDimension)
	}
	lagRows := m
	if includeMean {
		lagRows--
	}
	if lagRows <= 0 || lagRows%k != 0 {
		return dims{}, fmt.Errorf("%d design columns do not hold whole lag blocks of %d series: %w", m, k, linalg.ErrInvalidDimension)
	}
	return dims{
		T:        T,
		k:        k,
		m:        m,
		numCoef:  k * m,
		numAlpha: k * lagRows,
		numLower: linalg.NumLower(k),
		lagRows:  lagRows,
	}, nil
}

// groupIndex maps every distinct group id to its position in ascending id
// order.
type groupIndex struct {
	ids []int
	pos map[int]int
	// of[j*m+r] is the group position of coefficient (r, j).
	of []int
}

func newGroupIndex(groups [][]int, d dims) (*groupIndex, error) {
	if groups == nil {
		groups = make([][]int, d.m)
		for r := range groups {
			groups[r] = make([]int, d.k)
		}
	}
	if len(groups) != d.m {
		return nil, fmt.Errorf("group matrix has %d rows, want %d: %w", len(groups), d.m, linalg.ErrInvalidDimension)
	}
	seen := map[int]bool{}
	for r, row := range groups {
		if len(row) != d.k {
			return nil, fmt.Errorf("group matrix row %d has %d columns, want %d: %w", r, len(row), d.k, linalg.ErrInvalidDimension)
		}
		for _, id := range row {
			if id < 0 {
				return nil, fmt.Errorf("negative group id %d: %w", id, linalg.ErrInvalidParameter)
			}
			seen[id] = true
		}
	}
	gi := &groupIndex{pos: make(map[int]int, len(seen)), of: make([]int, d.numCoef)}
	for id := range seen {
		gi.ids = append(gi.ids, id)
	}
	sort.Ints(gi.ids)
	for i, id := range gi.ids {
		gi.pos[id] = i
	}
	for j := 0; j < d.k; j++ {
		for r := 0; r < d.m; r++ {
			gi.of[j*d.m+r] = gi.pos[groups[r][j]]
		}
	}
	return gi, nil
}

func (gi *groupIndex) len() int { return len(gi.ids) }

// withDefaults returns a copy of h with every missing field filled in.
func (h Hyperparameters) withDefaults(d dims, groups int) Hyperparameters {
	fill := func(v []float64, n int, val float64) []float64 {
		if len(v) != 0 {
			return v
		}
		out := make([]float64, n)
		for i := range out {
			out[i] = val
		}
		return out
	}
	orDefault := func(v, val float64) float64 {
		if v == 0 {
			return val
		}
		return v
	}

	if h.CoefMean == nil {
		h.CoefMean = mat.NewDense(d.m, d.k, nil)
	}
	if h.CoefPrec == nil {
		h.CoefPrec = identitySym(d.m, 1)
	}
	if h.PrecDiag == nil {
		h.PrecDiag = identitySym(d.k, 1)
	}

	h.CoefSpike = fill(h.CoefSpike, d.numAlpha, DefaultSpike)
	h.CoefSlab = fill(h.CoefSlab, d.numAlpha, DefaultSlab)
	h.CoefSlabWeight = fill(h.CoefSlabWeight, groups, DefaultSlabWeight)
	h.CoefS1 = orDefault(h.CoefS1, DefaultBetaShape)
	h.CoefS2 = orDefault(h.CoefS2, DefaultBetaShape)
	h.ContemSpike = fill(h.ContemSpike, d.numLower, DefaultSpike)
	h.ContemSlab = fill(h.ContemSlab, d.numLower, DefaultSlab)
	h.ContemSlabWeight = orDefault(h.ContemSlabWeight, DefaultSlabWeight)
	h.ContemS1 = orDefault(h.ContemS1, DefaultBetaShape)
	h.ContemS2 = orDefault(h.ContemS2, DefaultBetaShape)
	h.MeanNon = fill(h.MeanNon, d.k, 0)
	h.SdNon = orDefault(h.SdNon, DefaultSdNon)

	h.InitLocal = fill(h.InitLocal, d.numCoef, DefaultHorseshoeInit)
	h.InitGlobal = fill(h.InitGlobal, groups, DefaultHorseshoeInit)
	h.InitContemLocal = fill(h.InitContemLocal, d.numLower, DefaultHorseshoeInit)
	h.InitContemGlobal = orDefault(h.InitContemGlobal, DefaultHorseshoeInit)

	h.SigShape = fill(h.SigShape, d.k, DefaultSigShape)
	h.SigScale = fill(h.SigScale, d.k, DefaultSigScale)
	h.InitMean = fill(h.InitMean, d.k, DefaultInitMean)
	if h.InitPrec == nil {
		h.InitPrec = identitySym(d.k, DefaultInitPrec)
	}
	return h
}

// validate checks the fields the prior type reads. h must already carry
// its defaults.
func (h *Hyperparameters) validate(prior PriorType, d dims, groups int) error {
	checkLen := func(name string, v []float64, n int) error {
		if len(v) != n {
			return fmt.Errorf("%s has length %d, want %d: %w", name, len(v), n, linalg.ErrInvalidDimension)
		}
		return nil
	}
	checkPositive := func(name string, v ...float64) error {
		for i, x := range v {
			if !(x > 0) {
				return fmt.Errorf("%s[%d] = %g must be positive: %w", name, i, x, linalg.ErrInvalidParameter)
			}
		}
		return nil
	}
	checkProb := func(name string, v ...float64) error {
		for i, x := range v {
			if !(x > 0 && x < 1) {
				return fmt.Errorf("%s[%d] = %g must lie in (0, 1): %w", name, i, x, linalg.ErrInvalidParameter)
			}
		}
		return nil
	}
	checkSquare := func(name string, a mat.Symmetric, n int) error {
		if a.SymmetricDim() != n {
			return fmt.Errorf("%s is %dx%d, want %dx%d: %w", name, a.SymmetricDim(), a.SymmetricDim(), n, n, linalg.ErrInvalidDimension)
		}
		return nil
	}

	var errs []error
	switch prior {
	case Minnesota:
		if r, c := h.CoefMean.Dims(); r != d.m || c != d.k {
			errs = append(errs, fmt.Errorf("coefficient mean is %dx%d, want %dx%d: %w", r, c, d.m, d.k, linalg.ErrInvalidDimension))
		}
		errs = append(errs,
			checkSquare("coefficient precision", h.CoefPrec, d.m),
			checkSquare("precision diagonal", h.PrecDiag, d.k),
		)
	case SSVS:
		errs = append(errs,
			checkLen("coefficient spike", h.CoefSpike, d.numAlpha),
			checkLen("coefficient slab", h.CoefSlab, d.numAlpha),
			checkLen("coefficient slab weight", h.CoefSlabWeight, groups),
			checkLen("contemporaneous spike", h.ContemSpike, d.numLower),
			checkLen("contemporaneous slab", h.ContemSlab, d.numLower),
			checkLen("constant prior mean", h.MeanNon, d.k),
			checkPositive("coefficient spike", h.CoefSpike...),
			checkPositive("coefficient slab", h.CoefSlab...),
			checkPositive("contemporaneous spike", h.ContemSpike...),
			checkPositive("contemporaneous slab", h.ContemSlab...),
			checkPositive("beta shapes", h.CoefS1, h.CoefS2, h.ContemS1, h.ContemS2),
			checkPositive("constant prior SD", h.SdNon),
			checkProb("coefficient slab weight", h.CoefSlabWeight...),
			checkProb("contemporaneous slab weight", h.ContemSlabWeight),
		)
	case Horseshoe:
		errs = append(errs,
			checkLen("initial local scale", h.InitLocal, d.numCoef),
			checkLen("initial global scale", h.InitGlobal, groups),
			checkLen("initial contemporaneous local scale", h.InitContemLocal, d.numLower),
			checkPositive("initial local scale", h.InitLocal...),
			checkPositive("initial global scale", h.InitGlobal...),
			checkPositive("initial contemporaneous local scale", h.InitContemLocal...),
			checkPositive("initial contemporaneous global scale", h.InitContemGlobal),
		)
	default:
		return fmt.Errorf("prior type %d: %w", int(prior), linalg.ErrInvalidParameter)
	}
	errs = append(errs,
		checkLen("sigma_h shape", h.SigShape, d.k),
		checkLen("sigma_h scale", h.SigScale, d.k),
		checkLen("h0 prior mean", h.InitMean, d.k),
		checkPositive("sigma_h shape", h.SigShape...),
		checkPositive("sigma_h scale", h.SigScale...),
		checkSquare("h0 prior precision", h.InitPrec, d.k),
	)
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func identitySym(n int, v float64) *mat.SymDense {
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		out.SetSym(i, i, v)
	}
	return out
}
