// Package model implements variational feature models: Bayesian linear
// basis expansions whose bases are built from factors with their own
// variational parameter posteriors.
package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/varfeat-ml/varfeat/internal/data"
	"github.com/varfeat-ml/varfeat/internal/factor"
	"github.com/varfeat-ml/varfeat/internal/parallel"
)

// ErrNoMeanField reports that a model or factor has no mean-field
// update path.
var ErrNoMeanField = errors.New("model: mean-field updates unsupported")

// variant supplies the pieces that differ between model kinds. The
// shared core calls into it during inference, bound evaluation,
// gradients and prediction.
type variant interface {
	// projection returns the coefficient that scales datum d in the
	// basis projection h.
	projection(d *data.Datum) float64

	// precisionWeight returns the per-datum weight applied to the
	// basis second moments when accumulating the weight precision.
	precisionWeight(i int) float64

	// gradientScale returns the expected noise precision used in the
	// factor bound gradients.
	gradientScale() float64

	// meanfieldScale returns the noise precision for mean-field
	// coefficients, or false when the variant has no mean-field path.
	meanfieldScale() (float64, bool)

	// postSolve runs after the weight posterior has been refreshed.
	postSolve() error

	// bound returns the variant part of the evidence lower bound.
	bound() float64

	// predict maps the linear predictor moments onto the variant's
	// output scale.
	predict(mu, trace float64) (mean, variance float64)

	// dataChanged is called when a new dataset is attached.
	dataChanged(n int)
}

// weightRef maps a flattened weight index back to its factor.
type weightRef struct {
	j, k int
}

// core carries the state shared by every model variant: the factors and
// their frozen priors, the dataset, and the Gaussian weight posterior.
type core struct {
	hooks variant

	factors []factor.Factor
	priors  []factor.Factor
	dat     *data.Dataset

	nu   float64
	dims int

	k    int
	widx []weightRef

	wbar  *mat.VecDense
	Sigma *mat.SymDense
	Sinv  *mat.SymDense
	chol  mat.Cholesky
	h     *mat.VecDense
}

func (c *core) init(nu float64, hooks variant) error {
	if nu <= 0 {
		return fmt.Errorf("model: ridge parameter must be positive, got %g", nu)
	}
	c.nu = nu
	c.hooks = hooks
	return nil
}

// Nu returns the weight ridge parameter.
func (c *core) Nu() float64 { return c.nu }

// Dims returns the number of input dimensions spanned by the factors.
func (c *core) Dims() int { return c.dims }

// Weights returns the total number of posterior weights.
func (c *core) Weights() int { return c.k }

// NumFactors returns the number of factors in the model.
func (c *core) NumFactors() int { return len(c.factors) }

// Factor returns the j-th posterior factor.
func (c *core) Factor(j int) factor.Factor { return c.factors[j] }

// Prior returns the frozen prior of the j-th factor.
func (c *core) Prior(j int) factor.Factor { return c.priors[j] }

// Data returns the dataset attached to the model.
func (c *core) Data() *data.Dataset { return c.dat }

// PosteriorMean returns the posterior weight mean vector. Callers must
// treat it as read-only.
func (c *core) PosteriorMean() *mat.VecDense { return c.wbar }

// PosteriorCov returns the posterior weight covariance. Callers must
// treat it as read-only.
func (c *core) PosteriorCov() *mat.SymDense { return c.Sigma }

// SetData attaches a dataset to the model. The dataset must span at
// least as many input dimensions as the model's factors consume.
func (c *core) SetData(dat *data.Dataset) error {
	if dat == nil {
		return fmt.Errorf("model: nil dataset")
	}
	if c.dims > 0 && dat.Len() > 0 && dat.Dim() < c.dims {
		return fmt.Errorf("model: dataset spans %d dimensions, factors need %d",
			dat.Dim(), c.dims)
	}
	c.dat = dat
	c.hooks.dataChanged(dat.Len())
	return nil
}

// AddFactor appends a factor to the model and freezes a clone of it as
// the factor's prior. The weight posterior is regrown and zeroed.
func (c *core) AddFactor(f factor.Factor) error {
	if f == nil {
		return fmt.Errorf("model: nil factor")
	}
	c.factors = append(c.factors, f)
	c.priors = append(c.priors, f.Clone())

	if d := f.InputIndex() + f.Dims(); d > c.dims {
		c.dims = d
	}

	j := len(c.factors) - 1
	for k := 0; k < f.Outputs(); k++ {
		c.widx = append(c.widx, weightRef{j: j, k: k})
	}
	c.k += f.Outputs()

	c.wbar = mat.NewVecDense(c.k, nil)
	c.Sigma = mat.NewSymDense(c.k, nil)
	c.Sinv = mat.NewSymDense(c.k, nil)
	c.h = mat.NewVecDense(c.k, nil)
	return nil
}

// WeightIndex returns the flattened weight index of factor j's k-th
// basis element.
func (c *core) WeightIndex(j, k int) int {
	idx := 0
	for j2 := 0; j2 < j; j2++ {
		idx += c.factors[j2].Outputs()
	}
	return idx + k
}

// basisVar returns the second moment of the product of flattened basis
// elements a and b. Across factors the moment splits into a product of
// means.
func (c *core) basisVar(x []float64, p, a, b int) float64 {
	wa, wb := c.widx[a], c.widx[b]
	if wa.j != wb.j {
		return c.factors[wa.j].Mean(x, p, wa.k) *
			c.factors[wb.j].Mean(x, p, wb.k)
	}
	return c.factors[wa.j].Var(x, p, wa.k, wb.k)
}

// Infer rebuilds the weight posterior from scratch: the precision
// matrix and projection vector are re-accumulated over the full
// dataset, factorized, and solved.
func (c *core) Infer() error {
	if c.dat == nil {
		return fmt.Errorf("model: no dataset attached")
	}
	if c.k == 0 {
		return fmt.Errorf("model: no factors added")
	}

	c.h.Zero()
	c.Sinv.Zero()

	for i := 0; i < c.dat.Len(); i++ {
		d := c.dat.At(i)
		ci := c.hooks.projection(d)
		wi := c.hooks.precisionWeight(i)

		for a := 0; a < c.k; a++ {
			wa := c.widx[a]
			c.h.SetVec(a, c.h.AtVec(a)+ci*c.factors[wa.j].Mean(d.X, d.P, wa.k))
			for b := a; b < c.k; b++ {
				c.Sinv.SetSym(a, b,
					c.Sinv.At(a, b)+wi*c.basisVar(d.X, d.P, a, b))
			}
		}
	}

	for a := 0; a < c.k; a++ {
		c.Sinv.SetSym(a, a, c.Sinv.At(a, a)+c.nu)
	}

	if !c.chol.Factorize(c.Sinv) {
		return fmt.Errorf("model: weight precision is not positive definite")
	}
	if err := c.chol.SolveVecTo(c.wbar, c.h); err != nil {
		return err
	}
	if err := c.chol.InverseTo(c.Sigma); err != nil {
		return err
	}
	return c.hooks.postSolve()
}

// Update refreshes the weight posterior after factor j's parameters
// changed, using rank-one updates and downdates of the precision
// Cholesky factors instead of a full rebuild. Any failure falls back
// to Infer.
func (c *core) Update(j int) error {
	if err := c.update(j); err != nil {
		return c.Infer()
	}
	return nil
}

func (c *core) update(j int) error {
	if c.dat == nil {
		return fmt.Errorf("model: no dataset attached")
	}
	if j < 0 || j >= len(c.factors) {
		return fmt.Errorf("model: factor index %d out of range", j)
	}

	k0 := c.WeightIndex(j, 0)
	kj := c.factors[j].Outputs()
	n := c.dat.Len()

	// Snapshot the precision rows that are about to change.
	u := mat.NewDense(kj, c.k, nil)
	for k := 0; k < kj; k++ {
		for b := 0; b < c.k; b++ {
			u.Set(k, b, c.Sinv.At(k0+k, b))
		}
	}

	// Recompute the projection entries and precision rows of factor j.
	for k := 0; k < kj; k++ {
		hk := 0.0
		for i := 0; i < n; i++ {
			d := c.dat.At(i)
			hk += c.hooks.projection(d) * c.factors[j].Mean(d.X, d.P, k)
		}
		c.h.SetVec(k0+k, hk)

		for b := 0; b < c.k; b++ {
			gkk := 0.0
			for i := 0; i < n; i++ {
				d := c.dat.At(i)
				gkk += c.hooks.precisionWeight(i) * c.basisVar(d.X, d.P, k0+k, b)
			}
			c.Sinv.SetSym(k0+k, b, gkk)
		}
	}
	for k := 0; k < kj; k++ {
		c.Sinv.SetSym(k0+k, k0+k, c.Sinv.At(k0+k, k0+k)+c.nu)
	}

	if err := c.adjust(j, u); err != nil {
		return err
	}

	if err := c.chol.SolveVecTo(c.wbar, c.h); err != nil {
		return err
	}
	return c.hooks.postSolve()
}

// adjust folds the difference between the old precision rows u and the
// freshly computed rows into the Cholesky factors and the covariance,
// as a sequence of symmetric rank-one updates and downdates.
func (c *core) adjust(j int, u *mat.Dense) error {
	k0 := c.WeightIndex(j, 0)
	kj := c.factors[j].Outputs()

	v := mat.NewDense(kj, c.k, nil)
	vss := 0.0
	for k := 0; k < kj; k++ {
		for b := 0; b < c.k; b++ {
			d := c.Sinv.At(k0+k, b) - u.At(k, b)
			v.Set(k, b, d)
			vss += d * d
		}
	}
	if vss == 0 {
		return fmt.Errorf("model: precision rows unchanged")
	}

	// Each row difference is asymmetric: halve the diagonal entry and
	// zero the entries already covered by previous rows, then split
	// into a symmetric update/downdate pair.
	for k := 0; k < kj; k++ {
		v.Set(k, k0+k, 0.5*v.At(k, k0+k))
		for kk := 0; kk < k; kk++ {
			v.Set(k, k0+kk, 0)
		}

		row := v.RawRowView(k)
		vnrm := 0.0
		for _, vi := range row {
			vnrm += vi * vi
		}
		vnrm = math.Sqrt(vnrm)
		alpha := math.Sqrt(vnrm / 2)
		beta := 1 / vnrm

		for i := 0; i < c.k; i++ {
			ui := 0.0
			if i == k0+k {
				ui = 1.0
			}
			vi := v.At(k, i)
			u.Set(k, i, alpha*(ui+beta*vi))
			v.Set(k, i, alpha*(ui-beta*vi))
		}
	}

	z := mat.NewVecDense(c.k, nil)

	for k := 0; k < kj; k++ {
		uk := u.RowView(k)
		if !c.chol.SymRankOne(&c.chol, 1, uk) {
			return fmt.Errorf("model: rank-one update lost positive definiteness")
		}

		// Sherman-Morrison refresh of the covariance.
		z.MulVec(c.Sigma, uk)
		zudot := 1 / (1 + mat.Dot(z, uk))
		c.Sigma.SymRankOne(c.Sigma, -zudot, z)
	}

	for k := 0; k < kj; k++ {
		vk := v.RowView(k)
		if !c.chol.SymRankOne(&c.chol, -1, vk) {
			return fmt.Errorf("model: rank-one downdate lost positive definiteness")
		}

		z.MulVec(c.Sigma, vk)
		zvdot := 1 / (1 - mat.Dot(z, vk))
		c.Sigma.SymRankOne(c.Sigma, zvdot, z)
	}

	return nil
}

// logDetHalf returns half the log determinant of the weight precision,
// equal to the log product of the Cholesky diagonal.
func (c *core) logDetHalf() float64 {
	return 0.5 * c.chol.LogDet()
}

// weightInner returns the quadratic form wbar' Sinv wbar.
func (c *core) weightInner() float64 {
	return mat.Inner(c.wbar, c.Sinv, c.wbar)
}

// Bound returns the evidence lower bound: the variant term minus the
// divergences of the factors from their priors.
func (c *core) Bound() float64 {
	div := 0.0
	for j, f := range c.factors {
		// Priors are clones of their factors, so Div cannot mismatch.
		d, _ := f.Div(c.priors[j])
		div += d
	}
	return c.hooks.bound() - div
}

// Gradient accumulates datum i's contribution to the bound gradient of
// factor j into grad. Factors without parameters contribute nothing.
func (c *core) Gradient(i, j int, grad *mat.VecDense) error {
	if c.dat == nil || i < 0 || i >= c.dat.Len() {
		return fmt.Errorf("model: datum index %d out of range", i)
	}
	if j < 0 || j >= len(c.factors) {
		return fmt.Errorf("model: factor index %d out of range", j)
	}

	fj := c.factors[j]
	p := fj.ParamCount()
	if p == 0 {
		return nil
	}
	if grad.Len() != p {
		return fmt.Errorf("model: gradient length %d, factor has %d parameters",
			grad.Len(), p)
	}

	d := c.dat.At(i)
	k0 := c.WeightIndex(j, 0)
	kj := fj.Outputs()
	scale := c.hooks.gradientScale()

	g := mat.NewVecDense(p, nil)

	for k := 0; k < kj; k++ {
		wk := c.wbar.AtVec(k0 + k)

		for kk := 0; kk < kj; kk++ {
			wwT := c.Sigma.At(k0+k, k0+kk) + scale*wk*c.wbar.AtVec(k0+kk)
			fj.DiffVar(d.X, d.P, k, kk, g)
			grad.AddScaledVec(grad, -0.5*wwT, g)
		}

		fj.DiffMean(d.X, d.P, k, g)
		grad.AddScaledVec(grad, scale*wk*d.Y, g)

		// Off-diagonal second moments reuse the mean gradient in g.
		for j2, i2 := 0, 0; j2 < len(c.factors); j2++ {
			k2n := c.factors[j2].Outputs()
			if j2 == j {
				i2 += k2n
				continue
			}
			for k2 := 0; k2 < k2n; k2++ {
				wwT := c.Sigma.At(k0+k, i2+k2) + scale*wk*c.wbar.AtVec(i2+k2)
				e2 := c.factors[j2].Mean(d.X, d.P, k2)
				grad.AddScaledVec(grad, -wwT*e2, g)
			}
			i2 += k2n
		}
	}

	return nil
}

// SetParams assigns a full parameter vector to factor j. Assignment is
// atomic: if any element is rejected, the elements already written are
// restored and the error returned.
func (c *core) SetParams(j int, par *mat.VecDense) error {
	if j < 0 || j >= len(c.factors) {
		return fmt.Errorf("model: factor index %d out of range", j)
	}
	f := c.factors[j]
	if par.Len() != f.ParamCount() {
		return fmt.Errorf("model: parameter length %d, factor has %d",
			par.Len(), f.ParamCount())
	}
	if par.Len() == 0 {
		return nil
	}

	old := mat.NewVecDense(f.ParamCount(), nil)
	f.CopyParams(old)

	for p := 0; p < par.Len(); p++ {
		if err := f.Set(p, par.AtVec(p)); err != nil {
			for q := p - 1; q >= 0; q-- {
				f.Set(q, old.AtVec(q))
			}
			return err
		}
	}
	return nil
}

// Reset restores every factor to its prior parameters and re-infers
// the weight posterior.
func (c *core) Reset() error {
	for j, fp := range c.priors {
		if fp.ParamCount() == 0 {
			continue
		}
		par := mat.NewVecDense(fp.ParamCount(), nil)
		fp.CopyParams(par)
		if err := c.SetParams(j, par); err != nil {
			return err
		}
	}
	return c.Infer()
}

// Eval returns the model function value at the posterior mode.
func (c *core) Eval(x []float64, p int) float64 {
	mode := 0.0
	for a := 0; a < c.k; a++ {
		wa := c.widx[a]
		mode += c.wbar.AtVec(a) * c.factors[wa.j].Eval(x, p, wa.k)
	}
	return mode
}

// Predict returns the posterior predictive mean and variance at x.
func (c *core) Predict(x []float64, p int) (mean, variance float64) {
	mu := 0.0
	for a := 0; a < c.k; a++ {
		wa := c.widx[a]
		mu += c.wbar.AtVec(a) * c.factors[wa.j].Mean(x, p, wa.k)
	}

	trace := 0.0
	for a := 0; a < c.k; a++ {
		for b := 0; b < c.k; b++ {
			trace += (c.Sigma.At(a, b) + c.wbar.AtVec(a)*c.wbar.AtVec(b)) *
				c.basisVar(x, p, a, b)
		}
	}

	return c.hooks.predict(mu, trace)
}

// PredictAll fills the outputs of the mean and variance datasets with
// posterior predictions at their input locations. Both datasets must
// have the model's dimensionality and equal lengths. Predictions only
// read the posterior, so the locations are evaluated in parallel.
func (c *core) PredictAll(mean, variance *data.Dataset) error {
	if mean == nil || variance == nil {
		return fmt.Errorf("model: nil prediction dataset")
	}
	if mean.Dim() < c.dims || variance.Dim() < c.dims {
		return fmt.Errorf("model: prediction datasets span too few dimensions")
	}
	if mean.Len() != variance.Len() {
		return fmt.Errorf("model: prediction dataset lengths differ: %d and %d",
			mean.Len(), variance.Len())
	}

	parallel.For(mean.Len(), func(i int) {
		dm, dv := mean.At(i), variance.At(i)
		mu, eta := c.Predict(dm.X, dm.P)
		dm.Y = mu
		dv.Y = eta
	}, parallel.DefaultConfig())
	return nil
}

// Covariance returns the prior covariance of the model function at two
// input locations.
func (c *core) Covariance(x1, x2 []float64, p1, p2 int) float64 {
	cov := 0.0
	for _, f := range c.factors {
		cov += f.Cov(x1, x2, p1, p2)
	}
	same := 0.0
	if p1 == p2 && equalInputs(x1, x2) {
		same = 1.0
	}
	return (cov/c.nu + same) / c.hooks.gradientScale()
}

func equalInputs(x1, x2 []float64) bool {
	if len(x1) != len(x2) {
		return false
	}
	for i := range x1 {
		if x1[i] != x2[i] {
			return false
		}
	}
	return true
}

// MeanField runs a full three-phase mean-field update of factor j,
// streaming per-datum likelihood coefficients into the factor. The
// caller refreshes the weight posterior afterwards.
func (c *core) MeanField(j int) error {
	if c.dat == nil {
		return fmt.Errorf("model: no dataset attached")
	}
	if j < 0 || j >= len(c.factors) {
		return fmt.Errorf("model: factor index %d out of range", j)
	}

	f := c.factors[j]
	if f.ParamCount() == 0 {
		return nil
	}

	tau, ok := c.hooks.meanfieldScale()
	if !ok {
		return ErrNoMeanField
	}
	mf, ok := f.(factor.MeanFielder)
	if !ok {
		return ErrNoMeanField
	}

	kj := f.Outputs()
	b := mat.NewVecDense(kj, nil)
	bb := mat.NewSymDense(kj, nil)

	if !mf.MeanFieldInit() {
		return ErrNoMeanField
	}
	for i := 0; i < c.dat.Len(); i++ {
		d := c.dat.At(i)
		c.meanfieldCoeffs(i, j, tau, b, bb)
		if !mf.MeanFieldAccum(c.priors[j], d.X, d.P, b, bb) {
			return ErrNoMeanField
		}
	}
	if !mf.MeanFieldFinish(c.priors[j]) {
		return fmt.Errorf("model: mean-field update of factor %d failed", j)
	}
	return nil
}

// meanfieldCoeffs builds the likelihood coefficients of datum i for a
// mean-field update of factor j: b carries the residual projection and
// bb the second-order weight moments.
func (c *core) meanfieldCoeffs(i, j int, tau float64, b *mat.VecDense, bb *mat.SymDense) {
	d := c.dat.At(i)
	k0 := c.WeightIndex(j, 0)
	kj := c.factors[j].Outputs()

	for k := 0; k < kj; k++ {
		b.SetVec(k, tau*d.Y*c.wbar.AtVec(k0+k))
	}

	for j2, i2 := 0, 0; j2 < len(c.factors); j2++ {
		k2n := c.factors[j2].Outputs()
		if j2 == j {
			i2 += k2n
			continue
		}
		for k2 := 0; k2 < k2n; k2++ {
			phi2 := c.factors[j2].Mean(d.X, d.P, k2)
			for k := 0; k < kj; k++ {
				w2 := c.Sigma.At(k0+k, i2+k2) +
					c.wbar.AtVec(k0+k)*c.wbar.AtVec(i2+k2)
				b.SetVec(k, b.AtVec(k)-tau*w2*phi2)
			}
		}
		i2 += k2n
	}

	for k := 0; k < kj; k++ {
		for k2 := k; k2 < kj; k2++ {
			bb.SetSym(k, k2, -0.5*tau*(c.Sigma.At(k0+k, k0+k2)+
				c.wbar.AtVec(k0+k)*c.wbar.AtVec(k0+k2)))
		}
	}
}
