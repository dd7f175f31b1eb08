// Copyright 2025 VarFeat ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/varfeat-ml/varfeat/internal/optim"
)

// Optimizer interface defines the common interface for all bound
// optimizers.
type Optimizer = optim.Optimizer

// Model is the inference surface an optimizer drives. All models in
// the model package satisfy it.
type Model = optim.Model

// FG optimizes factor parameters with natural-gradient proximal steps
// and backtracking.
type FG = optim.FG

// FGConfig contains configuration for the FG optimizer.
type FGConfig = optim.FGConfig

// MF optimizes factor parameters with assumed-density mean-field
// coordinate updates.
type MF = optim.MF

// MFConfig contains configuration for the MF optimizer.
type MFConfig = optim.MFConfig

// NewFG creates a new natural-gradient optimizer.
//
// Example:
//
//	opt, err := optim.NewFG(m, optim.FGConfig{
//	    MaxIters: 500,
//	    L0:       0.001,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opt.Execute()
//	fmt.Println(opt.Bound())
func NewFG(mdl Model, config FGConfig) (*FG, error) {
	return optim.NewFG(mdl, config)
}

// NewMF creates a new mean-field optimizer.
//
// Example:
//
//	opt, err := optim.NewMF(m, optim.MFConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opt.Execute()
func NewMF(mdl Model, config MFConfig) (*MF, error) {
	return optim.NewMF(mdl, config)
}
