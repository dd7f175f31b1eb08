package optim

import (
	"errors"

	"go.uber.org/zap"

	"github.com/varfeat-ml/varfeat/internal/model"
)

// MF optimizes factor parameters with assumed-density mean-field
// coordinate updates. Each iteration streams the dataset through every
// eligible factor's mean-field update and refreshes the weight
// posterior rows of the factors that changed.
//
// To keep the weight precision well conditioned, updates are limited to
// the leading factors whose combined basis count stays strictly below
// the number of observations.
type MF struct {
	base
}

// MFConfig holds configuration for the MF optimizer. Zero values select
// the defaults.
type MFConfig struct {
	MaxIters int // iteration limit (default: 1000)

	Logger *zap.Logger
}

// NewMF creates an MF optimizer for the model. The model is inferred
// once so the initial bound is well defined.
func NewMF(mdl Model, config MFConfig) (*MF, error) {
	b, err := newBase(mdl, config.MaxIters, config.Logger)
	if err != nil {
		return nil, err
	}
	return &MF{base: b}, nil
}

// updatable returns the number of leading factors whose combined basis
// count stays strictly below the observation count.
func (o *MF) updatable() int {
	limit := o.mdl.Data().Len()
	m, k := 0, 0
	for j := 0; j < o.mdl.NumFactors(); j++ {
		kj := o.mdl.Factor(j).Outputs()
		if k+kj >= limit {
			break
		}
		k += kj
		m++
	}
	return m
}

// Iterate performs one mean-field pass over the eligible factors.
func (o *MF) Iterate() bool {
	if err := o.mdl.Infer(); err != nil {
		o.log.Warn("inference failed", zap.Error(err))
		return false
	}
	bound := o.mdl.Bound()
	boundInit := bound

	m := o.updatable()
	for j := 0; j < m; j++ {
		err := o.mdl.MeanField(j)
		switch {
		case err == nil:
			o.mdl.Update(j)
		case errors.Is(err, model.ErrNoMeanField):
			o.log.Debug("factor has no mean-field update, skipping",
				zap.Int("factor", j))
		default:
			o.log.Warn("mean-field update failed",
				zap.Int("factor", j), zap.Error(err))
		}

		bound = o.mdl.Bound()
	}

	o.bound = bound
	return bound != boundInit
}

// Execute runs mean-field iterations until the bound stops improving.
func (o *MF) Execute() bool {
	return o.execute("mf", o.Iterate)
}
