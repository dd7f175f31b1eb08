package optim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varfeat-ml/varfeat/internal/data"
	"github.com/varfeat-ml/varfeat/internal/factor"
	"github.com/varfeat-ml/varfeat/internal/model"
)

// decayDataset samples y = exp(-x) on a regular grid.
func decayDataset(t *testing.T) *data.Dataset {
	t.Helper()
	ds, err := data.New(1)
	require.NoError(t, err)
	for i := 1; i <= 20; i++ {
		x := 0.1 * float64(i)
		require.NoError(t, ds.Augment(data.Datum{X: []float64{x}, Y: math.Exp(-x)}))
	}
	return ds
}

// TestFG_DecayRecovery fits a single decay factor to exponential data
// and checks that the posterior decay rate converges onto the true one.
// The noise precision is tight so that the fit outweighs the pull of
// the decay(10, 1) prior.
func TestFG_DecayRecovery(t *testing.T) {
	m, err := model.NewTauVFR(350, 1e-6)
	require.NoError(t, err)

	dec, err := factor.NewDecay(10, 1)
	require.NoError(t, err)
	require.NoError(t, m.AddFactor(dec))
	require.NoError(t, m.SetData(decayDataset(t)))

	o, err := NewFG(m, FGConfig{MaxIters: 500, L0: 1e-4})
	require.NoError(t, err)
	o.Execute()

	rate := dec.Get(factor.DecayAlpha) / dec.Get(factor.DecayBeta)
	assert.InDelta(t, 1.0, rate, 0.05)
	assert.False(t, math.IsNaN(o.Bound()))
	assert.False(t, math.IsInf(o.Bound(), 0))
}

// TestFG_CosineRecovery fits two cosine factors to a two-tone signal
// and checks the recovered frequencies.
func TestFG_CosineRecovery(t *testing.T) {
	ds, err := data.New(1)
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		x := 2 * math.Pi * float64(i) / 199.0
		y := math.Cos(3*x) + math.Cos(7*x)
		require.NoError(t, ds.Augment(data.Datum{X: []float64{x}, Y: y}))
	}

	m, err := model.NewTauVFR(10, 1e-6)
	require.NoError(t, err)

	// The frequency precision sets the basis envelope width. It starts
	// at 10 so the envelope survives across [0, 2pi], and sharpens as
	// the frequencies lock on.
	c1, err := factor.NewCosine(2.8, 10)
	require.NoError(t, err)
	c2, err := factor.NewCosine(6.8, 10)
	require.NoError(t, err)
	require.NoError(t, m.AddFactor(c1))
	require.NoError(t, m.AddFactor(c2))
	require.NoError(t, m.SetData(ds))

	o, err := NewFG(m, FGConfig{MaxIters: 500, L0: 0.01})
	require.NoError(t, err)
	o.Execute()

	assert.InDelta(t, 3.0, c1.Get(factor.CosineMu), 0.05)
	assert.InDelta(t, 7.0, c2.Get(factor.CosineMu), 0.05)
}

// TestFG_Monotone checks that accepted natural-gradient passes never
// decrease the bound.
func TestFG_Monotone(t *testing.T) {
	m, err := model.NewTauVFR(1, 1e-6)
	require.NoError(t, err)

	dec, _ := factor.NewDecay(10, 1)
	require.NoError(t, m.AddFactor(dec))
	require.NoError(t, m.SetData(decayDataset(t)))

	o, err := NewFG(m, FGConfig{L0: 0.001})
	require.NoError(t, err)

	bound := o.Bound()
	for i := 0; i < 50; i++ {
		if !o.Iterate() {
			break
		}
		assert.GreaterOrEqual(t, o.Bound(), bound-1e-9, "iteration %d", i)
		bound = o.Bound()
	}
}

// frozenCosine rejects every parameter change, standing in for a factor
// whose admissible region the optimizer cannot reach.
type frozenCosine struct {
	*factor.Cosine
}

func (f *frozenCosine) Set(i int, value float64) error {
	if value != f.Cosine.Get(i) {
		return errors.New("parameter frozen")
	}
	return f.Cosine.Set(i, value)
}

// TestFG_Rollback drives a single huge proposal into rejection and
// checks that the factor parameters and the bound are left untouched.
func TestFG_Rollback(t *testing.T) {
	m, err := model.NewTauVFR(1, 1e-3)
	require.NoError(t, err)

	c, err := factor.NewCosine(2.8, 1)
	require.NoError(t, err)
	f := &frozenCosine{Cosine: c}
	require.NoError(t, m.AddFactor(f))

	ds, err := data.New(1)
	require.NoError(t, err)
	for i := 0; i < 40; i++ {
		x := 2 * math.Pi * float64(i) / 39.0
		require.NoError(t, ds.Augment(data.Datum{X: []float64{x}, Y: math.Cos(3 * x)}))
	}
	require.NoError(t, m.SetData(ds))

	// A single step with a vanishing Lipschitz estimate proposes the
	// full natural-gradient target, which the factor rejects.
	o, err := NewFG(m, FGConfig{MaxSteps: 1, L0: 1e-20})
	require.NoError(t, err)

	mu, tau := f.Get(factor.CosineMu), f.Get(factor.CosineTau)
	bound := o.Bound()

	assert.False(t, o.Iterate())
	assert.Equal(t, mu, f.Get(factor.CosineMu))
	assert.Equal(t, tau, f.Get(factor.CosineTau))
	assert.Equal(t, bound, o.Bound())
}

// TestMF_UpdatableLimit checks that mean-field passes only touch the
// leading factors whose combined basis count stays strictly below the
// observation count.
func TestMF_UpdatableLimit(t *testing.T) {
	m, err := model.NewTauVFR(1, 1e-3)
	require.NoError(t, err)

	// Ten two-output factors against fifteen observations: only the
	// first floor(15/2) = 7 are eligible.
	for j := 0; j < 10; j++ {
		c, err := factor.NewCosine(0.5+0.3*float64(j), 1)
		require.NoError(t, err)
		require.NoError(t, m.AddFactor(c))
	}

	ds, err := data.New(1)
	require.NoError(t, err)
	for i := 0; i < 15; i++ {
		x := float64(i) / 14.0
		require.NoError(t, ds.Augment(data.Datum{X: []float64{x}, Y: math.Cos(2 * x)}))
	}
	require.NoError(t, m.SetData(ds))

	o, err := NewMF(m, MFConfig{MaxIters: 5})
	require.NoError(t, err)
	assert.Equal(t, 7, o.updatable())

	// Cosine factors carry no mean-field update, so a pass leaves the
	// bound exactly where it started.
	assert.False(t, o.Iterate())
	assert.False(t, o.Execute())
}

func TestNewFG_RequiresData(t *testing.T) {
	m, err := model.NewTauVFR(1, 1e-3)
	require.NoError(t, err)
	c, _ := factor.NewCosine(1, 1)
	require.NoError(t, m.AddFactor(c))

	_, err = NewFG(m, FGConfig{})
	assert.Error(t, err)
	_, err = NewMF(m, MFConfig{})
	assert.Error(t, err)
}
