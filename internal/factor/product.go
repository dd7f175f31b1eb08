package factor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Term binds a sub-factor to the input dimension it consumes within a
// product factor.
type Term struct {
	Dim    int
	Factor Factor
}

// Product combines several factors over (possibly) different input
// dimensions into a single factor whose basis is the outer product of
// the sub-factor bases. Basis index i decomposes over the sub-factors
// in mixed radix: the first term varies fastest.
//
// The product's parameter vector is the concatenation of the sub-factor
// parameter vectors, and its Fisher information is block diagonal.
type Product struct {
	base
	subs    []Factor
	strides []int
	offsets []int
}

// NewProduct creates a product factor from the given terms. Each term's
// factor is rebased onto the term's input dimension.
func NewProduct(terms ...Term) (*Product, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("factor: product requires at least one term")
	}

	dims, pcount, k := 0, 0, 1
	subs := make([]Factor, len(terms))
	strides := make([]int, len(terms))
	offsets := make([]int, len(terms))
	fixed := true

	for n, t := range terms {
		if t.Dim < 0 {
			return nil, fmt.Errorf("factor: product term %d has negative dimension", n)
		}
		sub := t.Factor
		sub.SetInputIndex(t.Dim)
		if d := t.Dim + sub.Dims(); d > dims {
			dims = d
		}

		subs[n] = sub
		strides[n] = k
		offsets[n] = pcount

		k *= sub.Outputs()
		pcount += sub.ParamCount()
		fixed = fixed && sub.Fixed()
	}

	f := &Product{
		base:    newBase(dims, pcount, k),
		subs:    subs,
		strides: strides,
		offsets: offsets,
	}
	f.fixed = fixed
	f.sync()
	return f, nil
}

func (f *Product) Kind() string { return "product" }

// Terms returns the number of sub-factors in the product.
func (f *Product) Terms() int { return len(f.subs) }

// Term returns the n-th sub-factor.
func (f *Product) Term(n int) Factor { return f.subs[n] }

// subIndex maps a product basis index onto sub-factor n's basis.
func (f *Product) subIndex(i, n int) int {
	return (i / f.strides[n]) % f.subs[n].Outputs()
}

func (f *Product) SetInputIndex(d int) {
	delta := d - f.d
	for _, sub := range f.subs {
		sub.SetInputIndex(sub.InputIndex() + delta)
	}
	f.d = d
}

func (f *Product) Mean(x []float64, p, i int) float64 {
	mean := 1.0
	for n, sub := range f.subs {
		mean *= sub.Mean(x, p, f.subIndex(i, n))
	}
	return mean
}

func (f *Product) Var(x []float64, p, i, j int) float64 {
	v := 1.0
	for n, sub := range f.subs {
		v *= sub.Var(x, p, f.subIndex(i, n), f.subIndex(j, n))
	}
	return v
}

func (f *Product) Cov(x1, x2 []float64, p1, p2 int) float64 {
	cov := 1.0
	for _, sub := range f.subs {
		cov *= sub.Cov(x1, x2, p1, p2)
	}
	return cov
}

func (f *Product) Eval(x []float64, p, i int) float64 {
	mode := 1.0
	for n, sub := range f.subs {
		mode *= sub.Eval(x, p, f.subIndex(i, n))
	}
	return mode
}

func (f *Product) DiffMean(x []float64, p, i int, df *mat.VecDense) {
	for n, sub := range f.subs {
		pn := sub.ParamCount()
		if pn == 0 {
			continue
		}
		block := df.SliceVec(f.offsets[n], f.offsets[n]+pn).(*mat.VecDense)
		sub.DiffMean(x, p, f.subIndex(i, n), block)
	}

	// Each sub-gradient block picks up the means of the other terms.
	for n1, sub1 := range f.subs {
		mean1 := sub1.Mean(x, p, f.subIndex(i, n1))
		for n2, sub2 := range f.subs {
			pn := sub2.ParamCount()
			if n2 == n1 || pn == 0 {
				continue
			}
			block := df.SliceVec(f.offsets[n2], f.offsets[n2]+pn).(*mat.VecDense)
			block.ScaleVec(mean1, block)
		}
	}
}

func (f *Product) DiffVar(x []float64, p, i, j int, df *mat.VecDense) {
	for n, sub := range f.subs {
		pn := sub.ParamCount()
		if pn == 0 {
			continue
		}
		block := df.SliceVec(f.offsets[n], f.offsets[n]+pn).(*mat.VecDense)
		sub.DiffVar(x, p, f.subIndex(i, n), f.subIndex(j, n), block)
	}

	for n1, sub1 := range f.subs {
		var1 := sub1.Var(x, p, f.subIndex(i, n1), f.subIndex(j, n1))
		for n2, sub2 := range f.subs {
			pn := sub2.ParamCount()
			if n2 == n1 || pn == 0 {
				continue
			}
			block := df.SliceVec(f.offsets[n2], f.offsets[n2]+pn).(*mat.VecDense)
			block.ScaleVec(var1, block)
		}
	}
}

func (f *Product) Div(other Factor) (float64, error) {
	o, ok := other.(*Product)
	if !ok {
		return 0, errKindMismatch(f.Kind(), other)
	}
	if len(o.subs) != len(f.subs) {
		return 0, fmt.Errorf("factor: product term counts differ: %d and %d",
			len(f.subs), len(o.subs))
	}

	div := 0.0
	for n, sub := range f.subs {
		d, err := sub.Div(o.subs[n])
		if err != nil {
			return 0, err
		}
		div += d
	}
	return div, nil
}

func (f *Product) Set(i int, value float64) error {
	for n, sub := range f.subs {
		pn := sub.ParamCount()
		if i < f.offsets[n]+pn {
			if err := sub.Set(i-f.offsets[n], value); err != nil {
				return err
			}
			f.syncBlock(n)
			return nil
		}
	}
	return errParamIndex(f.Kind(), i)
}

// sync refreshes the combined parameter vector and information matrix
// from the sub-factors.
func (f *Product) sync() {
	for n := range f.subs {
		f.syncBlock(n)
	}
}

func (f *Product) syncBlock(n int) {
	sub := f.subs[n]
	pn := sub.ParamCount()
	if pn == 0 {
		return
	}
	off := f.offsets[n]
	inf := sub.Fisher()
	for a := 0; a < pn; a++ {
		f.par.SetVec(off+a, sub.Get(a))
		for b := a; b < pn; b++ {
			f.inf.SetSym(off+a, off+b, inf.At(a, b))
		}
	}
}

// MeanFieldInit starts a mean-field update on every sub-factor.
func (f *Product) MeanFieldInit() bool {
	ok := true
	for _, sub := range f.subs {
		ok = meanFieldInit(sub) && ok
	}
	return ok
}

// MeanFieldAccum forwards an observation's likelihood coefficients to
// each sub-factor, folding the moments of the other terms into the
// coefficients first.
func (f *Product) MeanFieldAccum(prior Factor, x []float64, p int, b *mat.VecDense, bb *mat.SymDense) bool {
	pr, isProduct := prior.(*Product)
	if !isProduct || len(pr.subs) != len(f.subs) {
		return false
	}

	ok := true
	for n, sub := range f.subs {
		bn := mat.VecDenseCopyOf(b)
		bbn := mat.NewSymDense(bb.SymmetricDim(), nil)
		bbn.CopySym(bb)

		for n2, sub2 := range f.subs {
			if n2 == n {
				continue
			}
			for k := 0; k < f.k; k++ {
				phi := sub2.Mean(x, p, f.subIndex(k, n2))
				bn.SetVec(k, bn.AtVec(k)*phi)
				for k2 := k; k2 < f.k; k2++ {
					phi2 := sub2.Var(x, p, f.subIndex(k, n2), f.subIndex(k2, n2))
					bbn.SetSym(k, k2, bbn.At(k, k2)*phi2)
				}
			}
		}

		ok = meanFieldAccum(sub, pr.subs[n], x, p, bn, bbn) && ok
	}
	return ok
}

// MeanFieldFinish commits the sub-factor updates and refreshes the
// combined parameter vector and information matrix.
func (f *Product) MeanFieldFinish(prior Factor) bool {
	pr, isProduct := prior.(*Product)
	if !isProduct || len(pr.subs) != len(f.subs) {
		return false
	}

	ok := true
	for n, sub := range f.subs {
		ok = meanFieldFinish(sub, pr.subs[n]) && ok
	}
	if ok {
		f.sync()
	}
	return ok
}

func (f *Product) Clone() Factor {
	c := &Product{
		base:    f.base.clone(),
		subs:    make([]Factor, len(f.subs)),
		strides: append([]int(nil), f.strides...),
		offsets: append([]int(nil), f.offsets...),
	}
	for n, sub := range f.subs {
		c.subs[n] = sub.Clone()
	}
	return c
}
