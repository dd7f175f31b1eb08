// Copyright 2025 VarFeat ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides bound optimizers for variational feature
// models.
//
// # Overview
//
// This package contains:
//   - FG: natural-gradient proximal steps with backtracking
//   - MF: assumed-density mean-field coordinate updates
//   - Optimizer interface for custom optimizers
//
// # Basic Usage
//
//	import (
//	    "github.com/varfeat-ml/varfeat/model"
//	    "github.com/varfeat-ml/varfeat/optim"
//	)
//
//	func main() {
//	    m, _ := model.NewTauVFR(1.0, 1e-6)
//	    m.SetData(ds)
//	    m.AddFactor(f)
//
//	    opt, err := optim.NewFG(m, optim.FGConfig{L0: 0.001})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    opt.Execute()
//	    fmt.Println(opt.Bound())
//	}
//
// # Choosing an optimizer
//
// FG works on any factor with parameters and improves the bound
// monotonically, rolling a factor back when no backtracking proposal
// helps. MF converges faster when factors support mean-field updates,
// and silently skips the ones that do not.
package optim
