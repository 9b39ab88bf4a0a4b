package threshold

import (
	"fmt"
	"sort"

	"github.com/taurusgroup/stealth-payments/internal/params"
	"github.com/taurusgroup/stealth-payments/pkg/math/curve"
	"github.com/taurusgroup/stealth-payments/pkg/math/polynomial"
)

// Combine recovers the secret from at least Threshold distinct shares of the same split.
//
// Identical duplicates are ignored. Shares beyond the threshold must lie on the
// polynomials defined by the others, so a single corrupted share is detected
// whenever a surplus share is present.
func Combine(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no shares given", ErrInsufficientShares)
	}

	reference := &shares[0]
	distinct := make(map[uint8]*Share, len(shares))
	for i := range shares {
		share := &shares[i]
		if err := share.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrShareReconstructionFailed, err)
		}
		if share.SetID != reference.SetID || share.Threshold != reference.Threshold || share.Length != reference.Length {
			return nil, fmt.Errorf("%w: shares come from different splits", ErrShareReconstructionFailed)
		}
		if other, ok := distinct[share.Index]; ok {
			if !sameValues(share, other) {
				return nil, fmt.Errorf("%w: conflicting shares for index %d", ErrShareReconstructionFailed, share.Index)
			}
			continue
		}
		distinct[share.Index] = share
	}

	t := int(reference.Threshold)
	if len(distinct) < t {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrInsufficientShares, len(distinct), t)
	}

	indices := make([]int, 0, len(distinct))
	for index := range distinct {
		indices = append(indices, int(index))
	}
	sort.Ints(indices)

	xs := make([]*curve.Scalar, t)
	for j := 0; j < t; j++ {
		xs[j] = curve.NewScalar().SetUInt32(uint32(indices[j]))
	}
	// Lagrange coefficients at 0, and at each surplus index.
	atZero := polynomial.Lagrange(xs)
	surplus := make([][]*curve.Scalar, len(indices)-t)
	for k := range surplus {
		x := curve.NewScalar().SetUInt32(uint32(indices[t+k]))
		surplus[k] = polynomial.LagrangeAt(x, xs)
	}

	length := int(reference.Length)
	secret := make([]byte, 0, chunkCount(length)*params.BytesChunk)
	tmp := curve.NewScalar()
	for c := range reference.Values {
		chunk := curve.NewScalar()
		for j := 0; j < t; j++ {
			chunk.Add(tmp.Set(atZero[j]).Mul(distinct[uint8(indices[j])].Values[c]))
		}
		for k, coefficients := range surplus {
			expected := curve.NewScalar()
			for j := 0; j < t; j++ {
				expected.Add(tmp.Set(coefficients[j]).Mul(distinct[uint8(indices[j])].Values[c]))
			}
			if !expected.Equal(distinct[uint8(indices[t+k])].Values[c]) {
				return nil, fmt.Errorf("%w: share %d is inconsistent", ErrShareReconstructionFailed, indices[t+k])
			}
		}

		b := chunk.Bytes()
		chunk.Zero()
		for _, x := range b[:params.BytesScalar-params.BytesChunk] {
			if x != 0 {
				return nil, fmt.Errorf("%w: chunk %d out of range", ErrShareReconstructionFailed, c)
			}
		}
		secret = append(secret, b[params.BytesScalar-params.BytesChunk:]...)
	}
	tmp.Zero()

	// the last chunk was padded with zeros
	for _, x := range secret[length:] {
		if x != 0 {
			return nil, fmt.Errorf("%w: non-zero padding", ErrShareReconstructionFailed)
		}
	}
	return secret[:length], nil
}
