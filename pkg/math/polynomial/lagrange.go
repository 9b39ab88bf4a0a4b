package polynomial

import (
	"github.com/taurusgroup/stealth-payments/pkg/math/curve"
)

// Lagrange returns the Lagrange coefficients at 0 for all points in the interpolation domain,
// in the same order as the domain.
//
// The elements of the domain must be distinct and non-zero.
func Lagrange(interpolationDomain []*curve.Scalar) []*curve.Scalar {
	return LagrangeAt(curve.NewScalar(), interpolationDomain)
}

// LagrangeAt returns the Lagrange coefficients lⱼ(x) for all xⱼ in the interpolation domain.
//
// The following formula is taken from
// https://en.wikipedia.org/wiki/Lagrange_polynomial
//
//	         (x - x₀) ⋅⋅⋅ (x - xⱼ₋₁)⋅(x - xⱼ₊₁) ⋅⋅⋅ (x - xₖ)
//	lⱼ(x) = -------------------------------------------------
//	        (xⱼ - x₀) ⋅⋅⋅ (xⱼ - xⱼ₋₁)⋅(xⱼ - xⱼ₊₁) ⋅⋅⋅ (xⱼ - xₖ)
func LagrangeAt(x *curve.Scalar, interpolationDomain []*curve.Scalar) []*curve.Scalar {
	coefficients := make([]*curve.Scalar, len(interpolationDomain))
	tmp := curve.NewScalar()
	for j, xJ := range interpolationDomain {
		numerator := curve.NewScalar().SetUInt32(1)
		denominator := curve.NewScalar().SetUInt32(1)
		for i, xI := range interpolationDomain {
			if i == j {
				continue
			}
			// numerator *= x - xᵢ
			numerator.Mul(tmp.Set(x).Sub(xI))
			// denominator *= xⱼ - xᵢ
			denominator.Mul(tmp.Set(xJ).Sub(xI))
		}
		coefficients[j] = denominator.Invert().Mul(numerator)
	}
	return coefficients
}

// Interpolate returns f(x) for the unique polynomial f of degree < len(xs) with f(xᵢ) = yᵢ.
func Interpolate(x *curve.Scalar, xs, ys []*curve.Scalar) *curve.Scalar {
	result := curve.NewScalar()
	for j, l := range LagrangeAt(x, xs) {
		result.Add(l.Mul(ys[j]))
	}
	return result
}
