package factor

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Parameter indices for Cosine.
const (
	CosineMu = iota
	CosineTau
)

// Cosine is a cosine basis with a Gaussian posterior over its frequency.
// It exposes two outputs, the in-phase and quadrature components, so that
// the model's weights absorb amplitude and phase.
type Cosine struct {
	base
}

// NewCosine creates a cosine factor with frequency mean mu and frequency
// precision tau.
func NewCosine(mu, tau float64) (*Cosine, error) {
	f := &Cosine{base: newBase(1, 2, 2)}
	if err := f.Set(CosineMu, mu); err != nil {
		return nil, err
	}
	if err := f.Set(CosineTau, tau); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Cosine) Kind() string { return "cosine" }

func (f *Cosine) Mean(x []float64, p, i int) float64 {
	xd := x[f.d]
	mu, tau := f.par.AtVec(CosineMu), f.par.AtVec(CosineTau)
	return math.Exp(-0.5*xd*xd/tau) * math.Cos(mu*xd+0.5*math.Pi*float64(i))
}

func (f *Cosine) Var(x []float64, p, i, j int) float64 {
	xd := x[f.d]
	mu, tau := f.par.AtVec(CosineMu), f.par.AtVec(CosineTau)

	// Sum and difference of the phase offsets.
	zp := 0.5 * math.Pi * float64(i+j)
	zm := 0.5 * math.Pi * float64(i-j)

	ep := math.Exp(-2*xd*xd/tau) * math.Cos(2*mu*xd+zp)
	em := math.Cos(zm)
	return 0.5 * (ep + em)
}

func (f *Cosine) Cov(x1, x2 []float64, p1, p2 int) float64 {
	mu, tau := f.par.AtVec(CosineMu), f.par.AtVec(CosineTau)

	xm := x1[f.d] - x2[f.d]
	var zm float64
	switch {
	case p1 == p2:
		zm = 0
	case p1 != 0:
		zm = -0.5 * math.Pi
	default:
		zm = 0.5 * math.Pi
	}
	return math.Exp(-0.5*xm*xm/tau) * math.Cos(mu*xm+zm)
}

func (f *Cosine) DiffMean(x []float64, p, i int, df *mat.VecDense) {
	xd := x[f.d]
	mu, tau := f.par.AtVec(CosineMu), f.par.AtVec(CosineTau)

	theta := mu*xd + 0.5*math.Pi*float64(i)
	e := math.Exp(-0.5 * xd * xd / tau)

	df.SetVec(CosineMu, -xd*e*math.Sin(theta))
	df.SetVec(CosineTau, 0.5*(xd*xd/(tau*tau))*e*math.Cos(theta))
}

func (f *Cosine) DiffVar(x []float64, p, i, j int, df *mat.VecDense) {
	xp := 2 * x[f.d]
	mu, tau := f.par.AtVec(CosineMu), f.par.AtVec(CosineTau)

	theta := mu*xp + 0.5*math.Pi*float64(i+j)
	e := math.Exp(-0.5 * xp * xp / tau)

	df.SetVec(CosineMu, -0.5*xp*e*math.Sin(theta))
	df.SetVec(CosineTau, 0.25*(xp*xp/(tau*tau))*e*math.Cos(theta))
}

func (f *Cosine) Div(other Factor) (float64, error) {
	o, ok := other.(*Cosine)
	if !ok {
		return 0, errKindMismatch(f.Kind(), other)
	}
	mu, tau := f.par.AtVec(CosineMu), f.par.AtVec(CosineTau)
	mu2, tau2 := o.par.AtVec(CosineMu), o.par.AtVec(CosineTau)

	return 0.5*tau2*(mu*mu+1/tau-2*mu*mu2+mu2*mu2) -
		0.5*math.Log(tau2/tau) - 0.5, nil
}

func (f *Cosine) Eval(x []float64, p, i int) float64 {
	return math.Cos(f.par.AtVec(CosineMu)*x[f.d] + 0.5*math.Pi*float64(i))
}

func (f *Cosine) Set(i int, value float64) error {
	switch i {
	case CosineMu:
		// Frequency mean is unconstrained.
		f.par.SetVec(CosineMu, value)
	case CosineTau:
		if value <= 0 {
			return errParamDomain(f.Kind(), "tau", value)
		}
		f.par.SetVec(CosineTau, value)
		f.inf.SetSym(CosineMu, CosineMu, value)
		f.inf.SetSym(CosineTau, CosineTau, 0.75/(value*value))
	default:
		return errParamIndex(f.Kind(), i)
	}
	return nil
}

func (f *Cosine) Clone() Factor {
	return &Cosine{base: f.base.clone()}
}
