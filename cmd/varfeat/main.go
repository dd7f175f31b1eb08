// Package main provides the varfeat model fitting CLI.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/varfeat-ml/varfeat/data"
	"github.com/varfeat-ml/varfeat/factor"
	"github.com/varfeat-ml/varfeat/model"
	"github.com/varfeat-ml/varfeat/optim"
)

// factorSpecs collects repeatable -factor flags.
type factorSpecs []string

func (f *factorSpecs) String() string { return strings.Join(*f, " ") }

func (f *factorSpecs) Set(v string) error {
	*f = append(*f, v)
	return nil
}

// parseFactor builds a factor from a "kind:arg,arg" spec.
func parseFactor(spec string) (factor.Factor, error) {
	kind, rest, _ := strings.Cut(spec, ":")

	var args []float64
	if rest != "" {
		for _, s := range strings.Split(rest, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("factor %q: %w", spec, err)
			}
			args = append(args, v)
		}
	}

	want := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("factor %q: want %d arguments, got %d", spec, n, len(args))
		}
		return nil
	}

	switch kind {
	case "cosine":
		if err := want(2); err != nil {
			return nil, err
		}
		return factor.NewCosine(args[0], args[1])
	case "decay":
		if err := want(2); err != nil {
			return nil, err
		}
		return factor.NewDecay(args[0], args[1])
	case "impulse":
		if err := want(2); err != nil {
			return nil, err
		}
		return factor.NewImpulse(args[0], args[1])
	case "fixed-impulse":
		if err := want(2); err != nil {
			return nil, err
		}
		return factor.NewFixedImpulse(args[0], args[1])
	case "polynomial":
		if err := want(1); err != nil {
			return nil, err
		}
		return factor.NewPolynomial(int(args[0]))
	default:
		return nil, fmt.Errorf("factor %q: unknown kind", spec)
	}
}

// fittable extends the optimizer surface with model construction.
type fittable interface {
	optim.Model
	SetData(*data.Dataset) error
	AddFactor(factor.Factor) error
}

func buildModel(kind string, alpha0, beta0, tau, nu float64) (fittable, error) {
	switch kind {
	case "vfr":
		return model.NewVFR(alpha0, beta0, nu)
	case "tauvfr":
		return model.NewTauVFR(tau, nu)
	case "vfc":
		return model.NewVFC(nu)
	default:
		return nil, fmt.Errorf("unknown model kind %q", kind)
	}
}

func run() error {
	var factors factorSpecs

	dataPath := flag.String("data", "", "path to the training dataset")
	modelKind := flag.String("model", "vfr", "model kind: vfr, tauvfr or vfc")
	alpha0 := flag.Float64("alpha0", 100, "noise precision shape prior (vfr)")
	beta0 := flag.Float64("beta0", 100, "noise precision rate prior (vfr)")
	tau := flag.Float64("tau", 1, "fixed noise precision (tauvfr)")
	nu := flag.Float64("nu", 1e-3, "weight ridge parameter")
	optKind := flag.String("optimizer", "fg", "optimizer: fg or mf")
	maxIters := flag.Int("max-iters", 1000, "optimizer iteration limit")
	l0 := flag.Float64("l0", 1, "initial Lipschitz estimate (fg)")
	flag.Var(&factors, "factor", "factor spec kind:arg,arg (repeatable)")
	flag.Parse()

	if *dataPath == "" {
		return fmt.Errorf("missing -data")
	}
	if len(factors) == 0 {
		return fmt.Errorf("missing -factor")
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	ds, err := data.ReadFile(*dataPath)
	if err != nil {
		return err
	}
	log.Info("dataset loaded",
		zap.String("path", *dataPath),
		zap.Int("n", ds.Len()),
		zap.Int("dims", ds.Dim()))

	mdl, err := buildModel(*modelKind, *alpha0, *beta0, *tau, *nu)
	if err != nil {
		return err
	}
	if err := mdl.SetData(ds); err != nil {
		return err
	}

	built := make([]factor.Factor, 0, len(factors))
	for _, spec := range factors {
		f, err := parseFactor(spec)
		if err != nil {
			return err
		}
		built = append(built, f)
		if err := mdl.AddFactor(f); err != nil {
			return err
		}
	}

	var opt optim.Optimizer
	switch *optKind {
	case "fg":
		opt, err = optim.NewFG(mdl, optim.FGConfig{
			MaxIters: *maxIters,
			L0:       *l0,
			Logger:   log,
		})
	case "mf":
		opt, err = optim.NewMF(mdl, optim.MFConfig{
			MaxIters: *maxIters,
			Logger:   log,
		})
	default:
		return fmt.Errorf("unknown optimizer %q", *optKind)
	}
	if err != nil {
		return err
	}

	opt.Execute()

	fmt.Printf("bound: %e\n", opt.Bound())
	for j, f := range built {
		fmt.Printf("factor %d (%s):", j, f.Kind())
		for p := 0; p < f.ParamCount(); p++ {
			fmt.Printf(" %e", f.Get(p))
		}
		fmt.Println()
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
