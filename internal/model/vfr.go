package model

import (
	"fmt"
	"math"

	"github.com/varfeat-ml/varfeat/internal/data"
)

// VFR is a variational feature regression model with a Gamma prior on
// the noise precision. Inference jointly refines the weight posterior
// and the noise posterior Gamma(alpha, beta).
type VFR struct {
	core

	alpha0, beta0 float64
	alpha, beta   float64
	tau           float64
}

// NewVFR creates a regression model with noise precision prior
// Gamma(alpha0, beta0) and weight ridge nu.
func NewVFR(alpha0, beta0, nu float64) (*VFR, error) {
	if alpha0 <= 0 {
		return nil, fmt.Errorf("model: noise shape must be positive, got %g", alpha0)
	}
	if beta0 <= 0 {
		return nil, fmt.Errorf("model: noise rate must be positive, got %g", beta0)
	}

	m := &VFR{
		alpha0: alpha0,
		beta0:  beta0,
		alpha:  alpha0,
		beta:   beta0,
		tau:    alpha0 / beta0,
	}
	if err := m.core.init(nu, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Alpha returns the posterior noise precision shape.
func (m *VFR) Alpha() float64 { return m.alpha }

// Beta returns the posterior noise precision rate.
func (m *VFR) Beta() float64 { return m.beta }

// Tau returns the expected noise precision alpha/beta.
func (m *VFR) Tau() float64 { return m.tau }

func (m *VFR) projection(d *data.Datum) float64 { return d.Y }

func (m *VFR) precisionWeight(i int) float64 { return 1 }

func (m *VFR) gradientScale() float64 { return m.tau }

func (m *VFR) meanfieldScale() (float64, bool) { return m.tau, true }

func (m *VFR) postSolve() error {
	n := float64(m.dat.Len())
	wSw := m.weightInner()
	yy := m.dat.Inner()

	m.alpha = m.alpha0 + 0.5*n
	m.beta = m.beta0 + 0.5*(yy-wSw)
	if math.IsNaN(m.beta) || math.IsInf(m.beta, 0) {
		return fmt.Errorf("model: noise rate diverged")
	}
	m.tau = m.alpha / m.beta
	return nil
}

func (m *VFR) bound() float64 {
	return -m.logDetHalf() - m.alpha*math.Log(m.beta)
}

func (m *VFR) predict(mu, trace float64) (float64, float64) {
	tauinv := m.beta / (m.alpha - 1)
	return mu, tauinv - mu*mu + trace
}

func (m *VFR) dataChanged(n int) {}
