package data

import (
	"fmt"
	"sort"
)

// Datum is a single observation: an input location X, an output index P
// selecting which of the model's outputs the observation belongs to, and
// the observed value Y.
type Datum struct {
	P int
	X []float64
	Y float64
}

// Compare orders two observations by output index first, then
// lexicographically by input location. It returns -1, 0, or +1.
func Compare(a, b *Datum) int {
	if a.P < b.P {
		return -1
	}
	if a.P > b.P {
		return 1
	}
	for d := range a.X {
		if a.X[d] < b.X[d] {
			return -1
		}
		if a.X[d] > b.X[d] {
			return 1
		}
	}
	return 0
}

// Dataset holds observations sorted by (P, X). The sorted order is an
// invariant maintained by every mutating operation.
type Dataset struct {
	dim  int
	pmax int
	data []Datum
}

// New creates an empty dataset holding inputs of the given dimensionality.
func New(dim int) (*Dataset, error) {
	if dim < 1 {
		return nil, fmt.Errorf("data: dimension must be positive, got %d", dim)
	}
	return &Dataset{dim: dim, pmax: -1}, nil
}

// Len returns the number of observations.
func (ds *Dataset) Len() int { return len(ds.data) }

// Dim returns the input dimensionality.
func (ds *Dataset) Dim() int { return ds.dim }

// Outputs returns the number of distinct output indices spanned by the
// observations, assuming indices are assigned densely from zero.
func (ds *Dataset) Outputs() int { return ds.pmax + 1 }

// At returns a pointer to the i'th observation in sorted order.
func (ds *Dataset) At(i int) *Datum { return &ds.data[i] }

// Augment inserts a copy of the observation, keeping the dataset sorted.
func (ds *Dataset) Augment(d Datum) error {
	if len(d.X) != ds.dim {
		return fmt.Errorf("data: observation has %d inputs, dataset holds %d",
			len(d.X), ds.dim)
	}
	if d.P < 0 {
		return fmt.Errorf("data: negative output index %d", d.P)
	}

	x := make([]float64, ds.dim)
	copy(x, d.X)
	ds.data = append(ds.data, Datum{P: d.P, X: x, Y: d.Y})
	ds.sortSingle(len(ds.data) - 1)

	if d.P > ds.pmax {
		ds.pmax = d.P
	}
	return nil
}

// sortSingle migrates the element at index i into sorted position,
// assuming every other element is already in order.
func (ds *Dataset) sortSingle(i int) {
	j := i
	for j > 0 && Compare(&ds.data[j], &ds.data[j-1]) < 0 {
		ds.data[j], ds.data[j-1] = ds.data[j-1], ds.data[j]
		j--
	}
	for j < len(ds.data)-1 && Compare(&ds.data[j], &ds.data[j+1]) > 0 {
		ds.data[j], ds.data[j+1] = ds.data[j+1], ds.data[j]
		j++
	}
}

// Sort re-establishes the sorted order over the whole dataset. Mutating
// operations keep the dataset sorted on their own; Sort only needs to run
// after bulk loads that bypass Augment.
func (ds *Dataset) Sort() {
	sort.Slice(ds.data, func(i, j int) bool {
		return Compare(&ds.data[i], &ds.data[j]) < 0
	})
}

// sorted reports whether the dataset is in sorted order.
func (ds *Dataset) sorted() bool {
	for i := 1; i < len(ds.data); i++ {
		if Compare(&ds.data[i-1], &ds.data[i]) > 0 {
			return false
		}
	}
	return true
}

// Inner returns the inner product of the observed values with themselves.
func (ds *Dataset) Inner() float64 {
	yy := 0.0
	for i := range ds.data {
		yy += ds.data[i].Y * ds.data[i].Y
	}
	return yy
}
