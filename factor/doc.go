// Copyright 2025 VarFeat ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package factor provides the basis-function factors that variational
// feature models are built from.
//
// # Overview
//
// This package contains:
//   - Cosine: frequency features with a Gaussian frequency posterior
//   - Decay: exponential decays with a Gamma rate posterior
//   - Impulse / FixedImpulse: localized Gaussian bumps
//   - Polynomial: fixed monomial bases
//   - Product: outer products of factors across input dimensions
//
// Every factor exposes the moments of its basis under the parameter
// posterior, the gradients of those moments, and the divergence from
// another factor of the same kind. Those are the only hooks the model
// and optimizer layers need, so custom factors can be added by
// implementing the Factor interface.
//
// # Basic Usage
//
//	import "github.com/varfeat-ml/varfeat/factor"
//
//	func main() {
//	    f, err := factor.NewCosine(3.0, 1.0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    x := []float64{0.25}
//	    fmt.Println(f.Mean(x, 0, 0), f.Mean(x, 0, 1))
//	}
package factor
