package optim

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/varfeat-ml/varfeat/internal/numeric"
)

// FG optimizes factor parameters with natural-gradient proximal steps.
//
// For each factor the bound gradient is accumulated over the dataset and
// preconditioned by the factor's Fisher information, giving a natural
// gradient target. Proposals interpolate between the current parameters
// xa and the target xb:
//
//	x = xa/(gamma+1) + gamma*xb/(gamma+1)
//
// starting from gamma tied to the smallest Fisher eigenvalue and shrunk
// by DL each backtracking step. The first proposal that is admissible
// and strictly improves the bound is accepted; otherwise the factor is
// rolled back to xa.
type FG struct {
	base

	maxSteps int
	l0       float64
	dl       float64
}

// FGConfig holds configuration for the FG optimizer. Zero values select
// the defaults.
type FGConfig struct {
	MaxIters int     // iteration limit (default: 1000)
	MaxSteps int     // backtracking steps per factor (default: 10)
	L0       float64 // initial Lipschitz estimate (default: 1.0)
	DL       float64 // backtracking shrink factor (default: 0.1)

	Logger *zap.Logger
}

// NewFG creates an FG optimizer for the model. The model is inferred
// once so the initial bound is well defined.
func NewFG(mdl Model, config FGConfig) (*FG, error) {
	if config.MaxSteps == 0 {
		config.MaxSteps = 10
	}
	if config.L0 == 0 {
		config.L0 = 1.0
	}
	if config.DL == 0 {
		config.DL = 0.1
	}

	b, err := newBase(mdl, config.MaxIters, config.Logger)
	if err != nil {
		return nil, err
	}
	return &FG{
		base:     b,
		maxSteps: config.MaxSteps,
		l0:       config.L0,
		dl:       config.DL,
	}, nil
}

// Iterate performs one natural-gradient pass over all factors.
func (o *FG) Iterate() bool {
	if err := o.mdl.Infer(); err != nil {
		o.log.Warn("inference failed", zap.Error(err))
		return false
	}
	bound := o.mdl.Bound()
	boundInit := bound

	n := o.mdl.Data().Len()

	for j := 0; j < o.mdl.NumFactors(); j++ {
		boundPrev := bound

		f := o.mdl.Factor(j)
		pn := f.ParamCount()
		if pn == 0 || f.Fixed() {
			continue
		}

		xa := mat.NewVecDense(pn, nil)
		xb := mat.NewVecDense(pn, nil)
		f.CopyParams(xa)
		o.mdl.Prior(j).CopyParams(xb)

		grad := mat.NewVecDense(pn, nil)
		failed := false
		for i := 0; i < n; i++ {
			if err := o.mdl.Gradient(i, j, grad); err != nil {
				o.log.Warn("gradient failed",
					zap.Int("factor", j), zap.Error(err))
				failed = true
				break
			}
		}
		if failed {
			continue
		}

		var fisher mat.Cholesky
		if !fisher.Factorize(f.Fisher()) {
			o.log.Debug("fisher factorization failed, skipping factor",
				zap.Int("factor", j))
			continue
		}
		nat := mat.NewVecDense(pn, nil)
		if err := fisher.SolveVecTo(nat, grad); err != nil {
			continue
		}
		xb.AddVec(xb, nat)

		gamma := numeric.MinEigenvalue(f.Fisher()) / o.l0

		x := mat.NewVecDense(pn, nil)
		accepted := false
		for step := 0; step < o.maxSteps && !accepted; step++ {
			fa := 1 / (gamma + 1)
			fb := gamma / (gamma + 1)
			x.ScaleVec(fa, xa)
			x.AddScaledVec(x, fb, xb)

			if err := o.mdl.SetParams(j, x); err == nil {
				if err := o.mdl.Update(j); err == nil {
					bound = o.mdl.Bound()
					if bound > boundPrev {
						accepted = true
					}
				}
			}

			gamma *= o.dl
		}

		if !accepted {
			o.mdl.SetParams(j, xa)
			o.mdl.Update(j)
			bound = boundPrev
		}
	}

	o.bound = bound
	return bound != boundInit
}

// Execute runs natural-gradient iterations until the bound stops
// improving.
func (o *FG) Execute() bool {
	return o.execute("fg", o.Iterate)
}
