package data

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// TestCompare_Ordering checks the (p, x) ordering relation.
func TestCompare_Ordering(t *testing.T) {
	a := &Datum{P: 0, X: []float64{1, 2}}
	b := &Datum{P: 1, X: []float64{0, 0}}
	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(b, a))

	c := &Datum{P: 0, X: []float64{1, 3}}
	assert.Equal(t, -1, Compare(a, c))
	assert.Equal(t, 0, Compare(a, a))
}

// TestAugment_KeepsOrder inserts interleaved observations and verifies
// the dataset stays fully sorted throughout.
func TestAugment_KeepsOrder(t *testing.T) {
	ds, err := New(1)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		d := Datum{
			P: rng.Intn(3),
			X: []float64{rng.Float64()*20 - 10},
			Y: rng.NormFloat64(),
		}
		require.NoError(t, ds.Augment(d))
	}

	assert.Equal(t, 1000, ds.Len())
	assert.True(t, ds.sorted())
	assert.Equal(t, 3, ds.Outputs())

	// One more insertion lands in order as well.
	require.NoError(t, ds.Augment(Datum{P: 1, X: []float64{0.123}}))
	assert.True(t, ds.sorted())
}

func TestAugment_Validation(t *testing.T) {
	ds, err := New(2)
	require.NoError(t, err)

	assert.Error(t, ds.Augment(Datum{P: 0, X: []float64{1}}))
	assert.Error(t, ds.Augment(Datum{P: -1, X: []float64{1, 2}}))
	assert.Equal(t, 0, ds.Len())
}

func TestAugment_CopiesInputs(t *testing.T) {
	ds, err := New(1)
	require.NoError(t, err)

	x := []float64{1.5}
	require.NoError(t, ds.Augment(Datum{X: x, Y: 2}))
	x[0] = -100

	assert.Equal(t, 1.5, ds.At(0).X[0])
}

func TestInner(t *testing.T) {
	ds, err := New(1)
	require.NoError(t, err)

	for _, y := range []float64{1, 2, 3} {
		require.NoError(t, ds.Augment(Datum{X: []float64{y}, Y: y}))
	}
	assert.InDelta(t, 14.0, ds.Inner(), 1e-12)
}

// TestGrid_Augment checks grid sizing and the innermost-first ordering
// of grid traversal.
func TestGrid_Augment(t *testing.T) {
	grid := mat.NewDense(2, 3, []float64{
		0, 1, 2, // x0 in {0, 1, 2}
		0, 10, 10, // x1 in {0, 10}
	})

	n, err := GridElements(grid)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	ds, err := New(2)
	require.NoError(t, err)
	require.NoError(t, ds.AugmentFromGrid(0, grid))
	require.Equal(t, 6, ds.Len())

	// Generation advances dimension 0 fastest, but the dataset re-sorts
	// into lexicographic order over X.
	want := [][2]float64{{0, 0}, {0, 10}, {1, 0}, {1, 10}, {2, 0}, {2, 10}}

	for i, w := range want {
		assert.Equal(t, w[0], ds.At(i).X[0], "row %d", i)
		assert.Equal(t, w[1], ds.At(i).X[1], "row %d", i)
		assert.Zero(t, ds.At(i).Y)
	}
}

func TestGrid_Validation(t *testing.T) {
	assert.Error(t, ValidateGrid(mat.NewDense(1, 2, []float64{0, 1})))
	assert.Error(t, ValidateGrid(mat.NewDense(1, 3, []float64{0, -1, 2})))
	assert.Error(t, ValidateGrid(mat.NewDense(1, 3, []float64{2, 1, 0})))
	assert.NoError(t, ValidateGrid(mat.NewDense(1, 3, []float64{0, 1, 2})))
}

// TestFileIO_RoundTrip writes a dataset and reads it back.
func TestFileIO_RoundTrip(t *testing.T) {
	ds, err := New(2)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 25; i++ {
		require.NoError(t, ds.Augment(Datum{
			X: []float64{rng.Float64(), rng.NormFloat64()},
			Y: rng.NormFloat64(),
		}))
	}

	path := filepath.Join(t.TempDir(), "round.dat")
	require.NoError(t, ds.WriteFile(path))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, ds.Len(), got.Len())
	require.Equal(t, 2, got.Dim())

	for i := 0; i < ds.Len(); i++ {
		a, b := ds.At(i), got.At(i)
		assert.Equal(t, 0, b.P)
		for d := range a.X {
			assert.InDelta(t, a.X[d], b.X[d], math.Abs(a.X[d])*1e-6+1e-12)
		}
		assert.InDelta(t, a.Y, b.Y, math.Abs(a.Y)*1e-6+1e-12)
	}
}

func TestReadFile_Malformed(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	_, err := ReadFile(write("short.dat", "1 2 3\n1 2\n"))
	assert.Error(t, err)

	_, err = ReadFile(write("alpha.dat", "1 x\n"))
	assert.Error(t, err)

	_, err = ReadFile(write("empty.dat", ""))
	assert.Error(t, err)
}
