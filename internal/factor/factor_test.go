package factor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// checkDiffMean compares the analytic mean gradient against a central
// finite difference over each parameter.
func checkDiffMean(t *testing.T, f Factor, x []float64, p, i int) {
	t.Helper()
	pn := f.ParamCount()
	ana := mat.NewVecDense(pn, nil)
	f.DiffMean(x, p, i, ana)

	for a := 0; a < pn; a++ {
		v0 := f.Get(a)
		h := 1e-6 * math.Max(1, math.Abs(v0))

		require.NoError(t, f.Set(a, v0+h))
		up := f.Mean(x, p, i)
		require.NoError(t, f.Set(a, v0-h))
		dn := f.Mean(x, p, i)
		require.NoError(t, f.Set(a, v0))

		num := (up - dn) / (2 * h)
		assert.InDelta(t, num, ana.AtVec(a), 1e-6+1e-6*math.Abs(num),
			"%s mean gradient, parameter %d", f.Kind(), a)
	}
}

// checkDiffVar does the same for the second-moment gradient.
func checkDiffVar(t *testing.T, f Factor, x []float64, p, i, j int) {
	t.Helper()
	pn := f.ParamCount()
	ana := mat.NewVecDense(pn, nil)
	f.DiffVar(x, p, i, j, ana)

	for a := 0; a < pn; a++ {
		v0 := f.Get(a)
		h := 1e-6 * math.Max(1, math.Abs(v0))

		require.NoError(t, f.Set(a, v0+h))
		up := f.Var(x, p, i, j)
		require.NoError(t, f.Set(a, v0-h))
		dn := f.Var(x, p, i, j)
		require.NoError(t, f.Set(a, v0))

		num := (up - dn) / (2 * h)
		assert.InDelta(t, num, ana.AtVec(a), 1e-6+1e-6*math.Abs(num),
			"%s variance gradient, parameters %d", f.Kind(), a)
	}
}

func TestCosine_Gradients(t *testing.T) {
	f, err := NewCosine(1.3, 2.0)
	require.NoError(t, err)

	for _, x := range []float64{-1.7, 0.4, 2.1} {
		for i := 0; i < f.Outputs(); i++ {
			checkDiffMean(t, f, []float64{x}, 0, i)
			for j := 0; j < f.Outputs(); j++ {
				checkDiffVar(t, f, []float64{x}, 0, i, j)
			}
		}
	}
}

func TestImpulse_Gradients(t *testing.T) {
	f, err := NewImpulse(0.5, 3.0)
	require.NoError(t, err)

	for _, x := range []float64{-0.3, 0.5, 1.9} {
		checkDiffMean(t, f, []float64{x}, 0, 0)
		checkDiffVar(t, f, []float64{x}, 0, 0, 0)
	}
}

func TestFixedImpulse_Gradients(t *testing.T) {
	f, err := NewFixedImpulse(1.0, 2.5)
	require.NoError(t, err)

	for _, x := range []float64{0.2, 1.0, 2.4} {
		checkDiffMean(t, f, []float64{x}, 0, 0)
		checkDiffVar(t, f, []float64{x}, 0, 0, 0)
	}
}

func TestDecay_Gradients(t *testing.T) {
	f, err := NewDecay(4.0, 2.0)
	require.NoError(t, err)

	for _, x := range []float64{0.3, 1.5, 4.0} {
		checkDiffMean(t, f, []float64{x}, 0, 0)
		checkDiffVar(t, f, []float64{x}, 0, 0, 0)
	}
}

func TestDecay_Moments(t *testing.T) {
	f, err := NewDecay(3.0, 1.0)
	require.NoError(t, err)

	x := []float64{0.5}
	assert.InDelta(t, math.Pow(1.0/1.5, 3), f.Mean(x, 0, 0), 1e-12)
	assert.InDelta(t, math.Pow(1.0/2.0, 3), f.Var(x, 0, 0, 0), 1e-12)
	assert.InDelta(t, math.Pow(1.0/2.0, 3), f.Cov(x, x, 0, 0), 1e-12)
	assert.InDelta(t, math.Exp(-2*0.5), f.Eval(x, 0, 0), 1e-12)
}

// TestDivergence_SelfZero checks KL(q||q) = 0 for every parametric kind.
func TestDivergence_SelfZero(t *testing.T) {
	cos, _ := NewCosine(1.2, 0.8)
	dec, _ := NewDecay(5, 2)
	imp, _ := NewImpulse(-0.4, 1.5)
	fim, _ := NewFixedImpulse(0.7, 2.2)

	for _, f := range []Factor{cos, dec, imp, fim} {
		d, err := f.Div(f.Clone())
		require.NoError(t, err, f.Kind())
		assert.InDelta(t, 0, d, 1e-12, f.Kind())
	}
}

// TestDivergence_NonNegative checks KL >= 0 against perturbed posteriors.
func TestDivergence_NonNegative(t *testing.T) {
	cos, _ := NewCosine(1.2, 0.8)
	cos2, _ := NewCosine(0.9, 1.6)
	dec, _ := NewDecay(5, 2)
	dec2, _ := NewDecay(3, 4)
	imp, _ := NewImpulse(-0.4, 1.5)
	imp2, _ := NewImpulse(0.1, 0.5)

	for _, pair := range [][2]Factor{{cos, cos2}, {dec, dec2}, {imp, imp2}} {
		d, err := pair[0].Div(pair[1])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, d, -1e-12, pair[0].Kind())
	}
}

func TestDivergence_KindMismatch(t *testing.T) {
	cos, _ := NewCosine(1, 1)
	dec, _ := NewDecay(1, 1)
	_, err := cos.Div(dec)
	assert.Error(t, err)
}

func TestSet_DomainErrors(t *testing.T) {
	cos, _ := NewCosine(1, 1)
	assert.Error(t, cos.Set(CosineTau, 0))
	assert.Error(t, cos.Set(CosineTau, -1))
	assert.Error(t, cos.Set(5, 1))
	assert.Equal(t, 1.0, cos.Get(CosineTau))

	dec, _ := NewDecay(2, 3)
	assert.Error(t, dec.Set(DecayAlpha, -0.5))
	assert.Error(t, dec.Set(DecayBeta, 0))
	assert.Equal(t, 2.0, dec.Get(DecayAlpha))
	assert.Equal(t, 3.0, dec.Get(DecayBeta))

	_, err := NewDecay(-1, 1)
	assert.Error(t, err)
	_, err = NewCosine(0, -2)
	assert.Error(t, err)
}

func TestPolynomial(t *testing.T) {
	f, err := NewPolynomial(2)
	require.NoError(t, err)

	assert.True(t, f.Fixed())
	assert.Equal(t, 3, f.Outputs())
	assert.Equal(t, 0, f.ParamCount())
	assert.Equal(t, 2, f.Order())

	x := []float64{1.5}
	assert.Equal(t, 1.0, f.Mean(x, 0, 0))
	assert.Equal(t, 1.5, f.Mean(x, 0, 1))
	assert.Equal(t, 2.25, f.Mean(x, 0, 2))
	assert.InDelta(t, 1.5*2.25, f.Var(x, 0, 1, 2), 1e-12)

	assert.Error(t, f.Set(0, 1))

	_, err = NewPolynomial(-1)
	assert.Error(t, err)
}

func TestClone_Independence(t *testing.T) {
	f, err := NewCosine(2.0, 1.0)
	require.NoError(t, err)

	c := f.Clone()
	require.NoError(t, c.Set(CosineMu, -5))
	require.NoError(t, c.Set(CosineTau, 9))

	assert.Equal(t, 2.0, f.Get(CosineMu))
	assert.Equal(t, 1.0, f.Get(CosineTau))
	assert.Equal(t, 1.0, f.Fisher().At(CosineMu, CosineMu))
}

// TestProduct_Moments checks that product moments factorize over the
// sub-factors with the first term's basis varying fastest.
func TestProduct_Moments(t *testing.T) {
	c1, _ := NewCosine(1.0, 2.0)
	c2, _ := NewCosine(3.0, 1.0)
	f, err := NewProduct(Term{Dim: 0, Factor: c1}, Term{Dim: 1, Factor: c2})
	require.NoError(t, err)

	assert.Equal(t, 4, f.Outputs())
	assert.Equal(t, 4, f.ParamCount())
	assert.Equal(t, 2, f.Dims())

	x := []float64{0.7, -1.2}
	for i := 0; i < 4; i++ {
		i1, i2 := i%2, i/2
		assert.InDelta(t, c1.Mean(x, 0, i1)*c2.Mean(x, 0, i2), f.Mean(x, 0, i), 1e-12)
		assert.InDelta(t, c1.Eval(x, 0, i1)*c2.Eval(x, 0, i2), f.Eval(x, 0, i), 1e-12)
		for j := 0; j < 4; j++ {
			j1, j2 := j%2, j/2
			assert.InDelta(t, c1.Var(x, 0, i1, j1)*c2.Var(x, 0, i2, j2), f.Var(x, 0, i, j), 1e-12)
		}
	}

	x2 := []float64{0.1, 0.9}
	assert.InDelta(t, c1.Cov(x, x2, 0, 0)*c2.Cov(x, x2, 0, 0), f.Cov(x, x2, 0, 0), 1e-12)
}

// TestProduct_ParamSync checks that Set routes into the right sub-factor
// and keeps the concatenated parameters and Fisher blocks current.
func TestProduct_ParamSync(t *testing.T) {
	c, _ := NewCosine(1.0, 2.0)
	d, _ := NewDecay(4.0, 3.0)
	f, err := NewProduct(Term{Dim: 0, Factor: c}, Term{Dim: 0, Factor: d})
	require.NoError(t, err)

	// Concatenation order follows the terms.
	assert.Equal(t, 1.0, f.Get(0))
	assert.Equal(t, 2.0, f.Get(1))
	assert.Equal(t, 4.0, f.Get(2))
	assert.Equal(t, 3.0, f.Get(3))

	// Parameter 3 is the decay rate.
	require.NoError(t, f.Set(3, 6.0))
	assert.Equal(t, 6.0, d.Get(DecayBeta))
	assert.Equal(t, 6.0, f.Get(3))
	assert.InDelta(t, 4.0/36.0, f.Fisher().At(3, 3), 1e-12)

	// Fisher information stays block diagonal.
	assert.Zero(t, f.Fisher().At(0, 2))
	assert.Zero(t, f.Fisher().At(1, 3))

	assert.Error(t, f.Set(4, 1.0))
	assert.Error(t, f.Set(3, -1.0))
}

func TestProduct_Gradients(t *testing.T) {
	c, _ := NewCosine(0.8, 1.5)
	i, _ := NewImpulse(0.3, 2.0)
	f, err := NewProduct(Term{Dim: 0, Factor: c}, Term{Dim: 1, Factor: i})
	require.NoError(t, err)

	x := []float64{0.6, -0.4}
	for k := 0; k < f.Outputs(); k++ {
		checkDiffMean(t, f, x, 0, k)
		for k2 := 0; k2 < f.Outputs(); k2++ {
			checkDiffVar(t, f, x, 0, k, k2)
		}
	}
}

func TestProduct_InputIndexShift(t *testing.T) {
	c1, _ := NewCosine(1, 1)
	c2, _ := NewCosine(2, 1)
	f, err := NewProduct(Term{Dim: 0, Factor: c1}, Term{Dim: 1, Factor: c2})
	require.NoError(t, err)

	f.SetInputIndex(2)
	assert.Equal(t, 2, c1.InputIndex())
	assert.Equal(t, 3, c2.InputIndex())

	x := []float64{99, 99, 0.5, 1.5}
	assert.InDelta(t, c1.Mean(x, 0, 0)*c2.Mean(x, 0, 0), f.Mean(x, 0, 0), 1e-12)
}

func TestProduct_FixedFlag(t *testing.T) {
	p1, _ := NewPolynomial(1)
	p2, _ := NewPolynomial(2)
	f, err := NewProduct(Term{Dim: 0, Factor: p1}, Term{Dim: 1, Factor: p2})
	require.NoError(t, err)
	assert.True(t, f.Fixed())
	assert.Equal(t, 6, f.Outputs())

	c, _ := NewCosine(1, 1)
	p3, _ := NewPolynomial(1)
	g, err := NewProduct(Term{Dim: 0, Factor: c}, Term{Dim: 1, Factor: p3})
	require.NoError(t, err)
	assert.False(t, g.Fixed())
}

func TestProduct_Clone(t *testing.T) {
	c, _ := NewCosine(1.0, 2.0)
	d, _ := NewDecay(4.0, 3.0)
	f, err := NewProduct(Term{Dim: 0, Factor: c}, Term{Dim: 1, Factor: d})
	require.NoError(t, err)

	g := f.Clone().(*Product)
	require.NoError(t, g.Set(0, -7.0))

	assert.Equal(t, 1.0, f.Get(0))
	assert.Equal(t, -7.0, g.Get(0))
	assert.Equal(t, 1.0, c.Get(CosineMu))
}
