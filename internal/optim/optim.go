// Package optim implements bound optimizers for variational feature
// models.
//
// This package provides:
//   - Optimizer interface: common surface for all optimizers
//   - FG: natural-gradient proximal steps with backtracking
//   - MF: assumed-density mean-field coordinate updates
//
// Both optimizers drive a Model through repeated Iterate calls and stop
// when an iteration fails to improve the evidence lower bound.
package optim

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/varfeat-ml/varfeat/internal/data"
	"github.com/varfeat-ml/varfeat/internal/factor"
)

// Model is the inference surface an optimizer drives.
type Model interface {
	NumFactors() int
	Factor(j int) factor.Factor
	Prior(j int) factor.Factor
	Data() *data.Dataset

	Infer() error
	Update(j int) error
	Bound() float64
	Gradient(i, j int, grad *mat.VecDense) error
	SetParams(j int, par *mat.VecDense) error
	MeanField(j int) error
}

// Optimizer is the base interface for all bound optimizers.
type Optimizer interface {
	// Iterate performs one optimization pass over the model factors
	// and reports whether the bound changed.
	Iterate() bool

	// Execute runs Iterate until the bound stops improving or the
	// iteration limit is reached, and reports whether the last
	// iteration still improved the bound.
	Execute() bool

	// Bound returns the bound after the most recent iteration.
	Bound() float64
}

// base carries the state shared by all optimizers.
type base struct {
	mdl      Model
	maxIters int
	bound    float64
	log      *zap.Logger
}

func newBase(mdl Model, maxIters int, log *zap.Logger) (base, error) {
	if maxIters == 0 {
		maxIters = 1000
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := mdl.Infer(); err != nil {
		return base{}, err
	}
	return base{
		mdl:      mdl,
		maxIters: maxIters,
		bound:    mdl.Bound(),
		log:      log,
	}, nil
}

// Bound returns the bound after the most recent iteration.
func (b *base) Bound() float64 { return b.bound }

// execute runs the shared outer loop: iterate until no improvement or
// the iteration limit, logging the bound trajectory.
func (b *base) execute(name string, iterate func() bool) bool {
	initial := b.bound
	boundPrev := b.bound

	for iter := 0; iter < b.maxIters; iter++ {
		boundPrev = b.bound
		if !iterate() {
			break
		}
		if b.bound < boundPrev {
			break
		}
		b.log.Debug("iteration complete",
			zap.String("optimizer", name),
			zap.Int("iter", iter),
			zap.Float64("bound", b.bound))
	}

	improved := b.bound > boundPrev
	b.log.Info("optimization finished",
		zap.String("optimizer", name),
		zap.Float64("initial", initial),
		zap.Float64("final", b.bound),
		zap.Bool("improved", improved))
	return improved
}
