package factor

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/varfeat-ml/varfeat/internal/numeric"
)

// Parameter indices for Decay.
const (
	DecayAlpha = iota
	DecayBeta
)

// Decay is an exponential-decay basis with a Gamma posterior over the
// decay rate, parameterized by shape alpha and rate beta.
type Decay struct {
	base
}

// NewDecay creates a decay factor with shape alpha and rate beta.
func NewDecay(alpha, beta float64) (*Decay, error) {
	f := &Decay{base: newBase(1, 2, 1)}
	if err := f.Set(DecayAlpha, alpha); err != nil {
		return nil, err
	}
	if err := f.Set(DecayBeta, beta); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Decay) Kind() string { return "decay" }

func (f *Decay) Mean(x []float64, p, i int) float64 {
	xd := x[f.d]
	alpha, beta := f.par.AtVec(DecayAlpha), f.par.AtVec(DecayBeta)
	return math.Pow(beta/(beta+xd), alpha)
}

func (f *Decay) Var(x []float64, p, i, j int) float64 {
	xp := 2 * x[f.d]
	alpha, beta := f.par.AtVec(DecayAlpha), f.par.AtVec(DecayBeta)
	return math.Pow(beta/(beta+xp), alpha)
}

func (f *Decay) Cov(x1, x2 []float64, p1, p2 int) float64 {
	xp := x1[f.d] + x2[f.d]
	alpha, beta := f.par.AtVec(DecayAlpha), f.par.AtVec(DecayBeta)
	return math.Pow(beta/(beta+xp), alpha)
}

func (f *Decay) DiffMean(x []float64, p, i int, df *mat.VecDense) {
	f.diff(x[f.d], df)
}

func (f *Decay) DiffVar(x []float64, p, i, j int, df *mat.VecDense) {
	f.diff(2*x[f.d], df)
}

// diff fills the moment gradient at effective input xd. The mean and
// second-moment gradients share one form, the latter at twice the input.
func (f *Decay) diff(xd float64, df *mat.VecDense) {
	alpha, beta := f.par.AtVec(DecayAlpha), f.par.AtVec(DecayBeta)

	xr := beta / (beta + xd)
	yr := alpha * xd / (beta * beta)

	df.SetVec(DecayAlpha, math.Pow(xr, alpha)*math.Log(xr))
	df.SetVec(DecayBeta, yr*math.Pow(xr, alpha+1))
}

func (f *Decay) Div(other Factor) (float64, error) {
	o, ok := other.(*Decay)
	if !ok {
		return 0, errKindMismatch(f.Kind(), other)
	}
	alpha, beta := f.par.AtVec(DecayAlpha), f.par.AtVec(DecayBeta)
	alpha2, beta2 := o.par.AtVec(DecayAlpha), o.par.AtVec(DecayBeta)

	lg, _ := math.Lgamma(alpha)
	lg2, _ := math.Lgamma(alpha2)

	return alpha*math.Log(beta) - lg -
		alpha2*math.Log(beta2) + lg2 +
		(alpha-alpha2)*(numeric.Digamma(alpha)-math.Log(beta)) +
		(beta2-beta)*(alpha/beta), nil
}

func (f *Decay) Eval(x []float64, p, i int) float64 {
	alpha, beta := f.par.AtVec(DecayAlpha), f.par.AtVec(DecayBeta)
	rho := (alpha - 1) / beta
	return math.Exp(-rho * x[f.d])
}

func (f *Decay) Set(i int, value float64) error {
	switch i {
	case DecayAlpha:
		if value <= 0 {
			return errParamDomain(f.Kind(), "alpha", value)
		}
		f.par.SetVec(DecayAlpha, value)
		f.inf.SetSym(DecayAlpha, DecayAlpha, numeric.Trigamma(value))
		if beta := f.par.AtVec(DecayBeta); beta > 0 {
			f.inf.SetSym(DecayBeta, DecayBeta, value/(beta*beta))
		}
	case DecayBeta:
		if value <= 0 {
			return errParamDomain(f.Kind(), "beta", value)
		}
		alpha := f.par.AtVec(DecayAlpha)
		f.par.SetVec(DecayBeta, value)
		f.inf.SetSym(DecayAlpha, DecayBeta, -1/value)
		f.inf.SetSym(DecayBeta, DecayBeta, alpha/(value*value))
	default:
		return errParamIndex(f.Kind(), i)
	}
	return nil
}

func (f *Decay) Clone() Factor {
	return &Decay{base: f.base.clone()}
}
