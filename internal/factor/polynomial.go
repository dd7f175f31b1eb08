package factor

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Polynomial is a fixed basis of monomials 1, x, x^2, ... up to a given
// order. It carries no variational parameters, so its contribution to
// the lower bound is constant.
type Polynomial struct {
	base
}

// NewPolynomial creates a polynomial factor of the given order, which
// must be non-negative. The factor spans order+1 weights.
func NewPolynomial(order int) (*Polynomial, error) {
	if order < 0 {
		return nil, errParamDomain("polynomial", "order", float64(order))
	}
	f := &Polynomial{base: newBase(1, 0, order+1)}
	f.fixed = true
	return f, nil
}

func (f *Polynomial) Kind() string { return "polynomial" }

// Order returns the highest power of the basis.
func (f *Polynomial) Order() int { return f.k - 1 }

func (f *Polynomial) Mean(x []float64, p, i int) float64 {
	return math.Pow(x[f.d], float64(i))
}

func (f *Polynomial) Var(x []float64, p, i, j int) float64 {
	xd := x[f.d]
	return math.Pow(xd, float64(i)) * math.Pow(xd, float64(j))
}

func (f *Polynomial) Cov(x1, x2 []float64, p1, p2 int) float64 {
	xd1, xd2 := x1[f.d], x2[f.d]
	cov := 0.0
	xi := 1.0
	for i := 0; i < f.k; i++ {
		xj := 1.0
		for j := 0; j < f.k; j++ {
			cov += xi * xj
			xj *= xd2
		}
		xi *= xd1
	}
	return cov
}

func (f *Polynomial) DiffMean(x []float64, p, i int, df *mat.VecDense) {}

func (f *Polynomial) DiffVar(x []float64, p, i, j int, df *mat.VecDense) {}

func (f *Polynomial) Div(other Factor) (float64, error) {
	if _, ok := other.(*Polynomial); !ok {
		return 0, errKindMismatch(f.Kind(), other)
	}
	return 0, nil
}

func (f *Polynomial) Eval(x []float64, p, i int) float64 {
	return f.Mean(x, p, i)
}

func (f *Polynomial) Set(i int, value float64) error {
	return errParamIndex(f.Kind(), i)
}

func (f *Polynomial) Clone() Factor {
	return &Polynomial{base: f.base.clone()}
}
