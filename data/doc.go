// Copyright 2025 VarFeat ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data provides sorted observation datasets for variational
// feature models.
//
// # Overview
//
// This package contains:
//   - Datum: a single observation (output index, inputs, value)
//   - Dataset: an always-sorted collection with text file I/O and
//     grid generation
//
// # Basic Usage
//
//	import "github.com/varfeat-ml/varfeat/data"
//
//	func main() {
//	    ds, _ := data.New(1)
//	    ds.Augment(data.Datum{X: []float64{0.1}, Y: 0.42})
//
//	    // Or load from disk: one "x1 ... xD y" line per observation.
//	    train, err := data.ReadFile("train.dat")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    _ = train
//	}
//
// # Grids
//
// AugmentFromGrid fills a dataset with zero-valued observations on a
// regular grid, one {start, step, end} row per input dimension:
//
//	grid := mat.NewDense(1, 3, []float64{0, 0.1, 10})
//	ds.AugmentFromGrid(0, grid)
package data
