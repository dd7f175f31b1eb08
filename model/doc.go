// Copyright 2025 VarFeat ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model provides variational feature models: Bayesian linear
// basis expansions over factors with their own parameter posteriors.
//
// # Overview
//
// This package contains:
//   - VFR: regression with a Gamma noise precision posterior
//   - TauVFR: regression with a fixed noise precision
//   - VFC: binary classification with local logistic bounds
//
// All models share the same surface: attach a dataset, add factors,
// and call Infer to build the Gaussian weight posterior. Bound returns
// the evidence lower bound, Predict the posterior predictive moments,
// and Update refreshes the posterior cheaply after a single factor
// changes.
//
// # Basic Usage
//
//	import (
//	    "github.com/varfeat-ml/varfeat/data"
//	    "github.com/varfeat-ml/varfeat/factor"
//	    "github.com/varfeat-ml/varfeat/model"
//	)
//
//	func main() {
//	    ds, _ := data.ReadFile("train.dat")
//
//	    m, _ := model.NewVFR(100, 100, 1e-3)
//	    m.SetData(ds)
//
//	    f, _ := factor.NewCosine(1.0, 1.0)
//	    m.AddFactor(f)
//
//	    if err := m.Infer(); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    mean, variance := m.Predict([]float64{0.5}, 0)
//	    fmt.Println(mean, variance)
//	}
package model
