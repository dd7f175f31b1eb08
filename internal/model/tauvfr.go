package model

import (
	"fmt"

	"github.com/varfeat-ml/varfeat/internal/data"
)

// TauVFR is a variational feature regression model whose noise
// precision tau is held fixed instead of being inferred.
type TauVFR struct {
	core

	tau float64
}

// NewTauVFR creates a regression model with fixed noise precision tau
// and weight ridge nu.
func NewTauVFR(tau, nu float64) (*TauVFR, error) {
	if tau <= 0 {
		return nil, fmt.Errorf("model: noise precision must be positive, got %g", tau)
	}

	m := &TauVFR{tau: tau}
	if err := m.core.init(nu, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Tau returns the fixed noise precision.
func (m *TauVFR) Tau() float64 { return m.tau }

func (m *TauVFR) projection(d *data.Datum) float64 { return d.Y }

func (m *TauVFR) precisionWeight(i int) float64 { return 1 }

func (m *TauVFR) gradientScale() float64 { return m.tau }

func (m *TauVFR) meanfieldScale() (float64, bool) { return m.tau, true }

func (m *TauVFR) postSolve() error { return nil }

func (m *TauVFR) bound() float64 {
	return -m.logDetHalf() + 0.5*m.tau*m.weightInner()
}

func (m *TauVFR) predict(mu, trace float64) (float64, float64) {
	return mu, 1/m.tau - mu*mu + trace
}

func (m *TauVFR) dataChanged(n int) {}
