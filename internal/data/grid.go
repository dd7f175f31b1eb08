package data

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ValidateGrid checks a gridding matrix. Each of the D rows describes one
// input dimension as {start, step, end}, with a positive step and
// start <= end.
func ValidateGrid(grid *mat.Dense) error {
	if grid == nil {
		return fmt.Errorf("data: nil grid")
	}
	rows, cols := grid.Dims()
	if rows < 1 || cols != 3 {
		return fmt.Errorf("data: grid must be Dx3, got %dx%d", rows, cols)
	}
	for d := 0; d < rows; d++ {
		start, step, end := grid.At(d, 0), grid.At(d, 1), grid.At(d, 2)
		if step <= 0 {
			return fmt.Errorf("data: grid dimension %d has non-positive step %g", d, step)
		}
		if start > end {
			return fmt.Errorf("data: grid dimension %d has start %g beyond end %g", d, start, end)
		}
	}
	return nil
}

// GridElements returns the number of locations a gridding matrix spans.
func GridElements(grid *mat.Dense) (int, error) {
	if err := ValidateGrid(grid); err != nil {
		return 0, err
	}
	rows, _ := grid.Dims()
	n := 1
	for d := 0; d < rows; d++ {
		start, step, end := grid.At(d, 0), grid.At(d, 1), grid.At(d, 2)
		n *= int(math.Floor((end-start)/step)) + 1
	}
	return n, nil
}

// AugmentFromGrid inserts a regular grid of zero-valued observations for
// output index p. Grid locations are visited with dimension zero varying
// fastest.
func (ds *Dataset) AugmentFromGrid(p int, grid *mat.Dense) error {
	if err := ValidateGrid(grid); err != nil {
		return err
	}
	rows, _ := grid.Dims()
	if rows != ds.dim {
		return fmt.Errorf("data: grid spans %d dimensions, dataset holds %d", rows, ds.dim)
	}

	// Per-dimension index counters and extents.
	idx := make([]int, rows)
	size := make([]int, rows)
	x := make([]float64, rows)
	for d := 0; d < rows; d++ {
		start, step, end := grid.At(d, 0), grid.At(d, 1), grid.At(d, 2)
		size[d] = int(math.Floor((end-start)/step)) + 1
		x[d] = start
	}

	for {
		if err := ds.Augment(Datum{P: p, X: x}); err != nil {
			return err
		}

		// Advance the innermost dimension, rolling over into the next.
		rolled := false
		for d := 0; d < rows; d++ {
			idx[d]++
			x[d] = grid.At(d, 0) + float64(idx[d])*grid.At(d, 1)
			if idx[d] < size[d] {
				break
			}
			idx[d] = 0
			x[d] = grid.At(d, 0)
			if d == rows-1 {
				rolled = true
			}
		}
		if rolled {
			return nil
		}
	}
}
