// Copyright 2025 VarFeat ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package data

import (
	"gonum.org/v1/gonum/mat"

	"github.com/varfeat-ml/varfeat/internal/data"
)

// Datum is a single observation: an output index, an input location and
// an observed value.
type Datum = data.Datum

// Dataset is an ordered collection of observations, kept sorted by
// output index and then input location.
type Dataset = data.Dataset

// Compare orders two observations by output index, then by input
// location, returning -1, 0 or +1.
func Compare(a, b *Datum) int {
	return data.Compare(a, b)
}

// New creates an empty dataset over dim input dimensions.
//
// Example:
//
//	ds, err := data.New(1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ds.Augment(data.Datum{X: []float64{0.5}, Y: 1.2})
func New(dim int) (*Dataset, error) {
	return data.New(dim)
}

// ReadFile loads a dataset from a whitespace-separated text file, one
// observation per line.
//
// Example:
//
//	ds, err := data.ReadFile("train.dat")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(ds.Len(), ds.Dim())
func ReadFile(path string) (*Dataset, error) {
	return data.ReadFile(path)
}

// ValidateGrid checks that grid is a D-by-3 matrix of
// {start, step, end} rows with positive steps.
func ValidateGrid(grid *mat.Dense) error {
	return data.ValidateGrid(grid)
}

// GridElements returns the number of points a gridding matrix spans.
func GridElements(grid *mat.Dense) (int, error) {
	return data.GridElements(grid)
}
