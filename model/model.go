// Copyright 2025 VarFeat ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model

import (
	"github.com/varfeat-ml/varfeat/internal/model"
)

// ErrNoMeanField reports that a model or factor has no mean-field
// update path.
var ErrNoMeanField = model.ErrNoMeanField

// VFR is a variational feature regression model with a Gamma prior on
// the noise precision.
type VFR = model.VFR

// TauVFR is a variational feature regression model with a fixed noise
// precision.
type TauVFR = model.TauVFR

// VFC is a variational feature classifier for binary labels.
type VFC = model.VFC

// NewVFR creates a regression model with noise precision prior
// Gamma(alpha0, beta0) and weight ridge nu.
//
// Example:
//
//	m, err := model.NewVFR(100, 100, 1e-3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m.SetData(ds)
//	f, _ := factor.NewCosine(1.0, 1.0)
//	m.AddFactor(f)
//	if err := m.Infer(); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(m.Bound())
func NewVFR(alpha0, beta0, nu float64) (*VFR, error) {
	return model.NewVFR(alpha0, beta0, nu)
}

// NewTauVFR creates a regression model with fixed noise precision tau
// and weight ridge nu.
//
// Example:
//
//	m, err := model.NewTauVFR(1.0, 1e-6)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = m
func NewTauVFR(tau, nu float64) (*TauVFR, error) {
	return model.NewTauVFR(tau, nu)
}

// NewVFC creates a binary classification model with weight ridge nu.
//
// Example:
//
//	m, err := model.NewVFC(1e-3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = m
func NewVFC(nu float64) (*VFC, error) {
	return model.NewVFC(nu)
}
