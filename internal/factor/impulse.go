package factor

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Parameter indices for Impulse.
const (
	ImpulseMu = iota
	ImpulseTau
)

// Impulse is a localized Gaussian bump with a Gaussian posterior over its
// location, parameterized by location mean mu and location precision tau.
type Impulse struct {
	base
}

// NewImpulse creates an impulse factor with location mean mu and location
// precision tau.
func NewImpulse(mu, tau float64) (*Impulse, error) {
	f := &Impulse{base: newBase(1, 2, 1)}
	if err := f.Set(ImpulseMu, mu); err != nil {
		return nil, err
	}
	if err := f.Set(ImpulseTau, tau); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Impulse) Kind() string { return "impulse" }

func (f *Impulse) Mean(x []float64, p, i int) float64 {
	u := x[f.d] - f.par.AtVec(ImpulseMu)
	return math.Exp(-0.5 * f.par.AtVec(ImpulseTau) * u * u)
}

func (f *Impulse) Var(x []float64, p, i, j int) float64 {
	return f.Mean(x, p, i)
}

// Cov returns zero: the impulse factor has no analytic covariance under
// its location posterior.
func (f *Impulse) Cov(x1, x2 []float64, p1, p2 int) float64 {
	return 0
}

func (f *Impulse) DiffMean(x []float64, p, i int, df *mat.VecDense) {
	mu, tau := f.par.AtVec(ImpulseMu), f.par.AtVec(ImpulseTau)
	u := x[f.d] - mu
	gx := math.Exp(-0.5 * tau * u * u)

	df.SetVec(ImpulseMu, gx*tau*u)
	df.SetVec(ImpulseTau, -0.5*u*u*gx)
}

func (f *Impulse) DiffVar(x []float64, p, i, j int, df *mat.VecDense) {
	f.DiffMean(x, p, i, df)
}

func (f *Impulse) Div(other Factor) (float64, error) {
	o, ok := other.(*Impulse)
	if !ok {
		return 0, errKindMismatch(f.Kind(), other)
	}
	mu, tau := f.par.AtVec(ImpulseMu), f.par.AtVec(ImpulseTau)
	mu2, tau2 := o.par.AtVec(ImpulseMu), o.par.AtVec(ImpulseTau)

	return 0.5*tau2*(mu*mu+1/tau-2*mu*mu2+mu2*mu2) -
		0.5*math.Log(tau2/tau) - 0.5, nil
}

func (f *Impulse) Eval(x []float64, p, i int) float64 {
	return f.Mean(x, p, i)
}

func (f *Impulse) Set(i int, value float64) error {
	switch i {
	case ImpulseMu:
		// Location mean is unconstrained.
		f.par.SetVec(ImpulseMu, value)
	case ImpulseTau:
		if value <= 0 {
			return errParamDomain(f.Kind(), "tau", value)
		}
		f.par.SetVec(ImpulseTau, value)
		f.inf.SetSym(ImpulseMu, ImpulseMu, value)
		f.inf.SetSym(ImpulseTau, ImpulseTau, 0.75/(value*value))
	default:
		return errParamIndex(f.Kind(), i)
	}
	return nil
}

func (f *Impulse) Clone() Factor {
	return &Impulse{base: f.base.clone()}
}
