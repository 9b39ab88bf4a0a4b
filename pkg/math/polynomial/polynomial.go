package polynomial

import (
	"io"

	"github.com/taurusgroup/stealth-payments/pkg/math/curve"
	"github.com/taurusgroup/stealth-payments/pkg/math/sample"
)

// Polynomial represents f(X) = a₀ + a₁⋅X + … + aₜ⋅Xᵗ over ℤₙ.
type Polynomial struct {
	coefficients []*curve.Scalar
}

// NewPolynomial generates a Polynomial f(X) = secret + a₁⋅X + … + aₜ⋅Xᵗ,
// with coefficients sampled uniformly in ℤₙ, and degree at most t.
func NewPolynomial(rand io.Reader, degree int, constant *curve.Scalar) (*Polynomial, error) {
	polynomial := &Polynomial{coefficients: make([]*curve.Scalar, degree+1)}

	// if the constant is nil, we interpret it as 0.
	if constant == nil {
		constant = curve.NewScalar()
	}
	polynomial.coefficients[0] = curve.NewScalar().Set(constant)

	for i := 1; i <= degree; i++ {
		c, err := sample.UniformScalar(rand)
		if err != nil {
			return nil, err
		}
		polynomial.coefficients[i] = c
	}
	return polynomial, nil
}

// Evaluate evaluates a polynomial in a given variable index
// We use Horner's method: https://en.wikipedia.org/wiki/Horner%27s_method
func (p *Polynomial) Evaluate(index *curve.Scalar) *curve.Scalar {
	if index.IsZero() {
		panic("attempt to leak secret")
	}

	result := curve.NewScalar()
	// reverse order
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// bₙ₋₁ = bₙ * x + aₙ₋₁
		result.Mul(index).Add(p.coefficients[i])
	}
	return result
}

// Constant returns a reference to the constant coefficient of the polynomial.
func (p *Polynomial) Constant() *curve.Scalar {
	return p.coefficients[0]
}

// Degree is the highest power of the Polynomial.
func (p *Polynomial) Degree() uint32 {
	return uint32(len(p.coefficients)) - 1
}

// Zero overwrites all coefficients, including the secret.
func (p *Polynomial) Zero() {
	for _, c := range p.coefficients {
		c.Zero()
	}
}
