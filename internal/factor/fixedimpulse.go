package factor

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Parameter index for FixedImpulse.
const FixedImpulseTau = 0

// FixedImpulse is an impulse factor whose location is held fixed at a
// known value, leaving only the precision tau as a variational parameter.
type FixedImpulse struct {
	base
	mu float64
}

// NewFixedImpulse creates an impulse factor pinned at location mu with
// precision tau.
func NewFixedImpulse(mu, tau float64) (*FixedImpulse, error) {
	f := &FixedImpulse{base: newBase(1, 1, 1), mu: mu}
	if err := f.Set(FixedImpulseTau, tau); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FixedImpulse) Kind() string { return "fixed-impulse" }

// Location returns the fixed impulse location.
func (f *FixedImpulse) Location() float64 { return f.mu }

// SetLocation moves the fixed impulse location.
func (f *FixedImpulse) SetLocation(mu float64) { f.mu = mu }

func (f *FixedImpulse) Mean(x []float64, p, i int) float64 {
	u := x[f.d] - f.mu
	return math.Exp(-0.5 * f.par.AtVec(FixedImpulseTau) * u * u)
}

func (f *FixedImpulse) Var(x []float64, p, i, j int) float64 {
	return f.Mean(x, p, i)
}

// Cov returns zero: no analytic covariance is defined for the fixed
// impulse factor.
func (f *FixedImpulse) Cov(x1, x2 []float64, p1, p2 int) float64 {
	return 0
}

func (f *FixedImpulse) DiffMean(x []float64, p, i int, df *mat.VecDense) {
	u := x[f.d] - f.mu
	gx := f.Mean(x, p, i)
	df.SetVec(FixedImpulseTau, -0.5*u*u*gx)
}

func (f *FixedImpulse) DiffVar(x []float64, p, i, j int, df *mat.VecDense) {
	f.DiffMean(x, p, i, df)
}

func (f *FixedImpulse) Div(other Factor) (float64, error) {
	o, ok := other.(*FixedImpulse)
	if !ok {
		return 0, errKindMismatch(f.Kind(), other)
	}
	tau := f.par.AtVec(FixedImpulseTau)
	tau2 := o.par.AtVec(FixedImpulseTau)

	return 0.5*tau2*(f.mu*f.mu+1/tau-2*f.mu*o.mu+o.mu*o.mu) -
		0.5*math.Log(tau2/tau) - 0.5, nil
}

func (f *FixedImpulse) Eval(x []float64, p, i int) float64 {
	return f.Mean(x, p, i)
}

func (f *FixedImpulse) Set(i int, value float64) error {
	switch i {
	case FixedImpulseTau:
		if value <= 0 {
			return errParamDomain(f.Kind(), "tau", value)
		}
		f.par.SetVec(FixedImpulseTau, value)
		f.inf.SetSym(FixedImpulseTau, FixedImpulseTau, 0.75/(value*value))
	default:
		return errParamIndex(f.Kind(), i)
	}
	return nil
}

func (f *FixedImpulse) Clone() Factor {
	return &FixedImpulse{base: f.base.clone(), mu: f.mu}
}
