package numeric

import "gonum.org/v1/gonum/mathext"

// Digamma returns the logarithmic derivative of the gamma function.
func Digamma(x float64) float64 {
	return mathext.Digamma(x)
}

// Trigamma returns the second logarithmic derivative of the gamma
// function, obtained as the Hurwitz zeta value zeta(2, x).
func Trigamma(x float64) float64 {
	return mathext.Zeta(2, x)
}
