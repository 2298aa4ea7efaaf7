// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"bvarsv/linalg"
	"bvarsv/randvar"
	"bvarsv/varsv"
)

type drawOptions struct {
	spec string
	seed uint64
	out  string
}

func newDrawCmd() *cobra.Command {
	opts := drawOptions{}
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw from a multivariate normal, matrix normal, inverse-Wishart or normal-inverse-Wishart",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := loadDrawSpec(opts.spec)
			if err != nil {
				return err
			}
			paths, err := runDraw(spec, opts.seed, opts.out)
			if err != nil {
				return err
			}
			for _, p := range paths {
				logrus.Infof("Draws written to %s", p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.spec, "spec", "", "YAML file describing the distribution")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 42, "Seed of the random number generator")
	cmd.Flags().StringVar(&opts.out, "out", "output", "Directory for the draw CSV files")
	_ = cmd.MarkFlagRequired("spec")
	return cmd
}

// runDraw samples spec and writes one CSV per output. Matrix draws are
// written one per row as vec(draw).
func runDraw(spec DrawSpec, seed uint64, dir string) ([]string, error) {
	if spec.Draws <= 0 {
		return nil, fmt.Errorf("number of draws %d: %w", spec.Draws, linalg.ErrInvalidParameter)
	}
	g := randvar.New(seed)
	mean, err := denseFromRows("mean", spec.Mean)
	if err != nil {
		return nil, err
	}

	outputs := map[string]*mat.Dense{}
	switch spec.Kind {
	case "mvn", "mvn-cholesky":
		if mean == nil || len(spec.Mean) != 1 {
			return nil, fmt.Errorf("mvn needs a single mean row: %w", linalg.ErrInvalidDimension)
		}
		cov, err := denseFromRows("cov", spec.Cov)
		if err != nil || cov == nil {
			return nil, orMissing(err, "cov")
		}
		sample := randvar.SampleMVN
		if spec.Kind == "mvn-cholesky" {
			sample = randvar.SampleMVNCholesky
		}
		if outputs["draws"], err = sample(g, spec.Draws, spec.Mean[0], cov); err != nil {
			return nil, err
		}

	case "matrix-normal":
		u, err := denseFromRows("rows", spec.Rows)
		if err != nil || u == nil {
			return nil, orMissing(err, "rows")
		}
		v, err := denseFromRows("cols", spec.Cols)
		if err != nil || v == nil {
			return nil, orMissing(err, "cols")
		}
		if mean == nil {
			return nil, orMissing(nil, "mean")
		}
		draws := make([]mat.Matrix, spec.Draws)
		for i := range draws {
			if draws[i], err = randvar.SampleMatrixNormal(g, mean, u, v); err != nil {
				return nil, err
			}
		}
		outputs["draws"] = stackVec(draws)

	case "iw":
		psi, err := denseFromRows("scale", spec.Scale)
		if err != nil || psi == nil {
			return nil, orMissing(err, "scale")
		}
		draws := make([]mat.Matrix, spec.Draws)
		for i := range draws {
			if draws[i], err = randvar.SampleInverseWishart(g, psi, spec.Shape); err != nil {
				return nil, err
			}
		}
		outputs["draws"] = stackVec(draws)

	case "mniw":
		u, err := denseFromRows("rows", spec.Rows)
		if err != nil || u == nil {
			return nil, orMissing(err, "rows")
		}
		psi, err := denseFromRows("scale", spec.Scale)
		if err != nil || psi == nil {
			return nil, orMissing(err, "scale")
		}
		if mean == nil {
			return nil, orMissing(nil, "mean")
		}
		mn, iw, err := randvar.SampleNormalInverseWishart(g, spec.Draws, mean, u, psi, spec.Shape)
		if err != nil {
			return nil, err
		}
		coefs := make([]mat.Matrix, len(mn))
		sigmas := make([]mat.Matrix, len(iw))
		for i := range mn {
			coefs[i], sigmas[i] = mn[i], iw[i]
		}
		outputs["draws"] = stackVec(coefs)
		outputs["sigma"] = stackVec(sigmas)

	default:
		return nil, fmt.Errorf("unknown distribution %q: %w", spec.Kind, linalg.ErrInvalidParameter)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, name := range []string{"draws", "sigma"} {
		m, ok := outputs[name]
		if !ok {
			continue
		}
		path := filepath.Join(dir, name+".csv")
		if err := varsv.WriteMatrixCSV(path, m, nil); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// stackVec puts vec(m) of every matrix on its own row.
func stackVec(ms []mat.Matrix) *mat.Dense {
	r, c := ms[0].Dims()
	out := mat.NewDense(len(ms), r*c, nil)
	for i, m := range ms {
		out.SetRow(i, linalg.Vectorize(m).RawVector().Data)
	}
	return out
}

func orMissing(err error, field string) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("missing %s: %w", field, linalg.ErrInvalidDimension)
}
