// Package threshold implements (n, t) Shamir secret sharing of byte strings over ℤₙ of secp256k1.
//
// The secret is cut into 16 byte chunks. Each chunk becomes the constant term of
// an independent random polynomial of degree t-1, and the i-th share holds the
// evaluations of all polynomials at x = i. Any t shares recover the secret, and
// fewer reveal nothing about it.
package threshold

import (
	"fmt"
	"io"

	"github.com/taurusgroup/stealth-payments/internal/params"
	"github.com/taurusgroup/stealth-payments/pkg/math/curve"
	"github.com/taurusgroup/stealth-payments/pkg/math/polynomial"
	"github.com/taurusgroup/stealth-payments/pkg/math/sample"
)

const (
	// DefaultShares is the number of guardians a descriptor key is split between.
	DefaultShares = 3
	// DefaultThreshold is the number of guardians needed to recover a descriptor key.
	DefaultThreshold = 2
)

// ValidateParameters checks 2 ≤ t ≤ n ≤ 255.
func ValidateParameters(n, t int) error {
	if t < 2 || t > n || n > params.MaxShares {
		return fmt.Errorf("%w: n = %d, t = %d", ErrInvalidParameters, n, t)
	}
	return nil
}

// Split returns n shares of secret, any t of which recover it.
func Split(rand io.Reader, secret []byte, n, t int) ([]Share, error) {
	if err := ValidateParameters(n, t); err != nil {
		return nil, err
	}
	if len(secret) == 0 || len(secret) > params.MaxSecretBytes {
		return nil, fmt.Errorf("%w: secret of %d bytes", ErrInvalidParameters, len(secret))
	}

	setID, err := sample.Bytes(rand, params.BytesSetID)
	if err != nil {
		return nil, fmt.Errorf("threshold.Split: %w", err)
	}

	chunks := chunkCount(len(secret))
	shares := make([]Share, n)
	for i := range shares {
		copy(shares[i].SetID[:], setID)
		shares[i].Threshold = uint8(t)
		shares[i].Index = uint8(i + 1)
		shares[i].Length = uint16(len(secret))
		shares[i].Values = make([]*curve.Scalar, chunks)
	}

	indices := make([]*curve.Scalar, n)
	for i := range indices {
		indices[i] = curve.NewScalar().SetUInt32(uint32(i + 1))
	}

	var chunk [params.BytesChunk]byte
	constant := curve.NewScalar()
	for c := 0; c < chunks; c++ {
		chunk = [params.BytesChunk]byte{}
		copy(chunk[:], secret[c*params.BytesChunk:])
		constant.SetBytesReduced(chunk[:])

		f, err := polynomial.NewPolynomial(rand, t-1, constant)
		if err != nil {
			constant.Zero()
			return nil, fmt.Errorf("threshold.Split: %w", err)
		}
		for i := range shares {
			shares[i].Values[c] = f.Evaluate(indices[i])
		}
		f.Zero()
	}
	constant.Zero()
	chunk = [params.BytesChunk]byte{}

	for i := range shares {
		if shares[i].Checksum, err = shares[i].computeChecksum(); err != nil {
			return nil, fmt.Errorf("threshold.Split: %w", err)
		}
	}
	return shares, nil
}
