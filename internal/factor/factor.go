package factor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Factor is a parametric basis-function family with a variational
// posterior over its parameters. A factor consumes Dims input coordinates
// starting at InputIndex, exposes Outputs basis elements per observation,
// and carries ParamCount variational parameters with an associated Fisher
// information matrix.
//
// Mean and Var return the first and second moments of the basis elements
// under the factor's parameter posterior; DiffMean and DiffVar fill the
// gradients of those moments with respect to the parameters. Div returns
// the Kullback-Leibler divergence from the factor to another factor of
// the same kind, and Eval evaluates a basis element at the posterior mode.
type Factor interface {
	Kind() string
	Dims() int
	ParamCount() int
	Outputs() int
	InputIndex() int
	SetInputIndex(d int)
	Fixed() bool

	Get(i int) float64
	Set(i int, value float64) error
	CopyParams(dst *mat.VecDense)
	Fisher() *mat.SymDense

	Mean(x []float64, p, i int) float64
	Var(x []float64, p, i, j int) float64
	Cov(x1, x2 []float64, p1, p2 int) float64
	DiffMean(x []float64, p, i int, df *mat.VecDense)
	DiffVar(x []float64, p, i, j int, df *mat.VecDense)
	Div(other Factor) (float64, error)
	Eval(x []float64, p, i int) float64

	Clone() Factor
}

// MeanFielder is implemented by factors that support assumed-density
// mean-field parameter updates. An update runs in three phases: Init
// once, Accum once per observation with that observation's likelihood
// coefficients, and Finish once to commit new parameters. Each phase
// reports whether the factor could process it.
type MeanFielder interface {
	MeanFieldInit() bool
	MeanFieldAccum(prior Factor, x []float64, p int, b *mat.VecDense, bb *mat.SymDense) bool
	MeanFieldFinish(prior Factor) bool
}

// base carries the state shared by every factor kind.
type base struct {
	d     int
	dims  int
	k     int
	fixed bool
	par   *mat.VecDense
	inf   *mat.SymDense
}

func newBase(dims, pcount, k int) base {
	b := base{dims: dims, k: k}
	if pcount > 0 {
		b.par = mat.NewVecDense(pcount, nil)
		b.inf = mat.NewSymDense(pcount, nil)
	}
	return b
}

func (b *base) Dims() int          { return b.dims }
func (b *base) Outputs() int       { return b.k }
func (b *base) InputIndex() int    { return b.d }
func (b *base) SetInputIndex(d int) { b.d = d }
func (b *base) Fixed() bool        { return b.fixed }

func (b *base) ParamCount() int {
	if b.par == nil {
		return 0
	}
	return b.par.Len()
}

func (b *base) Get(i int) float64 { return b.par.AtVec(i) }

func (b *base) CopyParams(dst *mat.VecDense) {
	if b.par != nil {
		dst.CopyVec(b.par)
	}
}

// Fisher returns the factor's Fisher information matrix. Callers must
// treat the returned matrix as read-only; Set keeps it current.
func (b *base) Fisher() *mat.SymDense { return b.inf }

func (b *base) clone() base {
	c := *b
	if b.par != nil {
		c.par = mat.VecDenseCopyOf(b.par)
		c.inf = mat.NewSymDense(b.inf.SymmetricDim(), nil)
		c.inf.CopySym(b.inf)
	}
	return c
}

// errParamIndex builds the error for out-of-range parameter assignments.
func errParamIndex(kind string, i int) error {
	return fmt.Errorf("factor: %s has no parameter %d", kind, i)
}

// errParamDomain builds the error for out-of-domain parameter values.
func errParamDomain(kind, name string, value float64) error {
	return fmt.Errorf("factor: %s parameter %s must be positive, got %g", kind, name, value)
}

// errKindMismatch builds the error for divergences across factor kinds.
func errKindMismatch(kind string, other Factor) error {
	return fmt.Errorf("factor: cannot compare %s against %s", kind, other.Kind())
}

// meanFieldInit dispatches the init phase when the factor supports it.
// Fixed factors have nothing to update and succeed trivially.
func meanFieldInit(f Factor) bool {
	if f.Fixed() {
		return true
	}
	mf, ok := f.(MeanFielder)
	return ok && mf.MeanFieldInit()
}

// meanFieldAccum dispatches the accumulate phase when the factor
// supports it.
func meanFieldAccum(f, prior Factor, x []float64, p int, b *mat.VecDense, bb *mat.SymDense) bool {
	if f.Fixed() {
		return true
	}
	mf, ok := f.(MeanFielder)
	return ok && mf.MeanFieldAccum(prior, x, p, b, bb)
}

// meanFieldFinish dispatches the finalize phase when the factor
// supports it.
func meanFieldFinish(f, prior Factor) bool {
	if f.Fixed() {
		return true
	}
	mf, ok := f.(MeanFielder)
	return ok && mf.MeanFieldFinish(prior)
}
