package sample

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/stealth-payments/internal/params"
	"github.com/taurusgroup/stealth-payments/pkg/math/curve"
)

const maxIterations = 255

// ErrMaxIterations is returned when no acceptable value was found after maxIterations draws.
var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

// safeScalarBytes is the number of random bytes reduced mod n to obtain a scalar.
// The extra 128 bits make the bias of the reduction negligible.
const safeScalarBytes = params.BytesScalar + params.SecBytes/2

// Bytes returns n bytes read from rand.
func Bytes(rand io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, fmt.Errorf("sample.Bytes: %w", err)
	}
	return buf, nil
}

// Scalar returns a uniformly random non-zero element of ℤₙ.
func Scalar(rand io.Reader) (*curve.Scalar, error) {
	buf := make([]byte, safeScalarBytes)
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err != nil {
			return nil, fmt.Errorf("sample.Scalar: %w", err)
		}
		s := curve.NewScalar().SetNat(new(saferith.Nat).SetBytes(buf))
		if !s.IsZero() {
			return s, nil
		}
	}
	return nil, ErrMaxIterations
}

// ScalarPointPair returns a random non-zero scalar x along with X = x⋅G.
func ScalarPointPair(rand io.Reader) (*curve.Scalar, *curve.Point, error) {
	x, err := Scalar(rand)
	if err != nil {
		return nil, nil, err
	}
	return x, x.ActOnBase(), nil
}

// UniformScalar returns a uniformly random element of ℤₙ, possibly 0.
func UniformScalar(rand io.Reader) (*curve.Scalar, error) {
	buf := make([]byte, safeScalarBytes)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, fmt.Errorf("sample.UniformScalar: %w", err)
	}
	return curve.NewScalar().SetNat(new(saferith.Nat).SetBytes(buf)), nil
}
