// Copyright 2025 VarFeat ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package factor

import (
	"github.com/varfeat-ml/varfeat/internal/factor"
)

// Factor is a parametric basis-function family with a variational
// posterior over its parameters.
type Factor = factor.Factor

// MeanFielder is implemented by factors that support assumed-density
// mean-field parameter updates.
type MeanFielder = factor.MeanFielder

// Term binds a sub-factor to the input dimension it consumes within a
// product factor.
type Term = factor.Term

// Cosine is a frequency factor with a Gaussian posterior over its
// frequency.
type Cosine = factor.Cosine

// Decay is an exponential decay factor with a Gamma posterior over its
// rate.
type Decay = factor.Decay

// Impulse is a localized Gaussian bump with a Gaussian posterior over
// its location.
type Impulse = factor.Impulse

// FixedImpulse is an impulse factor whose location is held fixed.
type FixedImpulse = factor.FixedImpulse

// Polynomial is a fixed basis of monomials up to a given order.
type Polynomial = factor.Polynomial

// Product combines factors over different input dimensions into one
// factor whose basis is the outer product of the sub-factor bases.
type Product = factor.Product

// Parameter indices of the factor kinds.
const (
	CosineMu  = factor.CosineMu
	CosineTau = factor.CosineTau

	DecayAlpha = factor.DecayAlpha
	DecayBeta  = factor.DecayBeta

	ImpulseMu  = factor.ImpulseMu
	ImpulseTau = factor.ImpulseTau

	FixedImpulseTau = factor.FixedImpulseTau
)

// NewCosine creates a cosine factor with frequency mean mu and
// frequency precision tau.
//
// Example:
//
//	f, err := factor.NewCosine(3.0, 1.0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(f.Outputs()) // 2
func NewCosine(mu, tau float64) (*Cosine, error) {
	return factor.NewCosine(mu, tau)
}

// NewDecay creates a decay factor with rate posterior Gamma(alpha, beta).
//
// Example:
//
//	f, err := factor.NewDecay(10.0, 10.0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = f
func NewDecay(alpha, beta float64) (*Decay, error) {
	return factor.NewDecay(alpha, beta)
}

// NewImpulse creates an impulse factor with location mean mu and
// location precision tau.
func NewImpulse(mu, tau float64) (*Impulse, error) {
	return factor.NewImpulse(mu, tau)
}

// NewFixedImpulse creates an impulse factor pinned at location mu with
// precision tau.
func NewFixedImpulse(mu, tau float64) (*FixedImpulse, error) {
	return factor.NewFixedImpulse(mu, tau)
}

// NewPolynomial creates a polynomial factor of the given order.
//
// Example:
//
//	f, err := factor.NewPolynomial(1) // basis {1, x}
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = f
func NewPolynomial(order int) (*Polynomial, error) {
	return factor.NewPolynomial(order)
}

// NewProduct creates a product factor from the given terms.
//
// Example:
//
//	d, _ := factor.NewDecay(10, 100)
//	c, _ := factor.NewCosine(0, 1)
//	f, err := factor.NewProduct(
//	    factor.Term{Dim: 0, Factor: d},
//	    factor.Term{Dim: 1, Factor: c},
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(f.Outputs()) // 2
func NewProduct(terms ...Term) (*Product, error) {
	return factor.NewProduct(terms...)
}
