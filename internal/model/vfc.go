package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/varfeat-ml/varfeat/internal/data"
)

// VFC is a variational feature classifier for binary labels y in {0, 1}.
// The logistic likelihood is handled with per-datum local bounds
// parameterized by xi, refreshed after every posterior update.
type VFC struct {
	core

	xi *mat.VecDense
}

// NewVFC creates a binary classification model with weight ridge nu.
func NewVFC(nu float64) (*VFC, error) {
	m := &VFC{}
	if err := m.core.init(nu, m); err != nil {
		return nil, err
	}
	return m, nil
}

// logistic is the standard sigmoid.
func logistic(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// lambda is the Jaakkola-Jordan local bound coefficient tanh(xi/2)/(4 xi),
// extended by continuity at xi = 0.
func lambda(xi float64) float64 {
	if xi == 0 {
		return 0.125
	}
	return math.Tanh(0.5*xi) / (4 * xi)
}

// Xi returns the local bound parameter of datum i.
func (m *VFC) Xi(i int) float64 { return m.xi.AtVec(i) }

func (m *VFC) projection(d *data.Datum) float64 { return 2*d.Y - 1 }

func (m *VFC) precisionWeight(i int) float64 {
	return 2 * lambda(m.xi.AtVec(i))
}

func (m *VFC) gradientScale() float64 { return 1 }

func (m *VFC) meanfieldScale() (float64, bool) { return 0, false }

func (m *VFC) postSolve() error {
	if m.dat.Len() == 0 {
		return nil
	}
	if m.xi == nil || m.xi.Len() != m.dat.Len() {
		return fmt.Errorf("model: local bound parameters unallocated")
	}

	// The solved system is scaled by twice the projection.
	m.wbar.ScaleVec(0.5, m.wbar)

	for i := 0; i < m.dat.Len(); i++ {
		d := m.dat.At(i)
		v := 0.0
		for a := 0; a < m.k; a++ {
			for b := 0; b < m.k; b++ {
				v += (m.Sigma.At(a, b) + m.wbar.AtVec(a)*m.wbar.AtVec(b)) *
					m.basisVar(d.X, d.P, a, b)
			}
		}
		m.xi.SetVec(i, math.Sqrt(v))
	}
	return nil
}

func (m *VFC) bound() float64 {
	bound := -m.logDetHalf() + 0.5*m.weightInner()
	if m.xi == nil {
		return bound
	}
	for i := 0; i < m.xi.Len(); i++ {
		xi := m.xi.AtVec(i)
		bound += math.Log(logistic(xi)) - 0.5*xi + lambda(xi)*xi*xi
	}
	return bound
}

func (m *VFC) predict(mu, trace float64) (float64, float64) {
	rho := logistic(mu)
	return rho, rho * (1 - rho)
}

func (m *VFC) dataChanged(n int) {
	if n == 0 {
		m.xi = nil
		return
	}
	m.xi = mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		m.xi.SetVec(i, 1)
	}
}
