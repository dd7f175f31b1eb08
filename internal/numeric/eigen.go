package numeric

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Power iteration limits for MinEigenvalue. The estimate only steers the
// optimizer's initial step length, so a handful of iterations is enough.
const (
	minEvTol   = 1e-6
	minEvSteps = 5
)

// EigenUpperBound returns an upper bound on the largest eigenvalue of a
// real symmetric matrix, computed from the Gershgorin circle theorem.
func EigenUpperBound(a mat.Symmetric) float64 {
	n := a.SymmetricDim()
	ub := math.Inf(-1)
	for i := 0; i < n; i++ {
		ri := 0.0
		for j := 0; j < n; j++ {
			ri += math.Abs(a.At(i, j))
		}
		// Replace the absolute diagonal element with the original element.
		aii := a.At(i, i)
		ri += aii - math.Abs(aii)
		if ri > ub {
			ub = ri
		}
	}
	return ub
}

// MinEigenvalue estimates the smallest eigenvalue of a real symmetric
// positive definite matrix. The spectrum is shifted down by a Gershgorin
// upper bound so that power iteration converges onto the smallest mode,
// and the shift is added back to the converged Rayleigh quotient.
func MinEigenvalue(a mat.Symmetric) float64 {
	n := a.SymmetricDim()
	if n == 1 {
		return a.At(0, 0)
	}

	evub := EigenUpperBound(a)

	// Shift the spectrum of a working copy.
	b := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			b.Set(i, j, a.At(i, j))
		}
		b.Set(i, i, a.At(i, i)-evub)
	}

	vec := mat.NewVecDense(n, nil)
	z := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		vec.SetVec(i, 1.0)
	}

	mu := 0.0
	for steps := 0; ; steps++ {
		muPrev := mu

		z.MulVec(b, vec)
		znrm := mat.Norm(z, 2)
		if znrm == 0 {
			// The shifted matrix annihilated the estimate, so every
			// eigenvalue sits at the bound.
			return evub
		}
		vec.ScaleVec(1/znrm, z)

		z.MulVec(b, vec)
		mu = mat.Dot(vec, z)

		if math.Abs(muPrev-mu) <= minEvTol || steps+1 >= minEvSteps {
			break
		}
	}

	return mu + evub
}
