package curve

import (
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/taurusgroup/stealth-payments/internal/params"
)

// Scalar is an element of ℤₙ, with n the order of secp256k1.
//
// Arithmetic methods modify the receiver and return it, so that calls can be chained.
type Scalar struct {
	s secp256k1.ModNScalar
}

// NewScalar returns a new zero Scalar.
func NewScalar() *Scalar {
	return new(Scalar)
}

// Set sets s = t, and returns s.
func (s *Scalar) Set(t *Scalar) *Scalar {
	s.s.Set(&t.s)
	return s
}

// SetUInt32 sets s = i, and returns s.
func (s *Scalar) SetUInt32(i uint32) *Scalar {
	s.s.SetInt(i)
	return s
}

// SetNat sets s = x mod n, and returns s.
func (s *Scalar) SetNat(x *saferith.Nat) *Scalar {
	reduced := new(saferith.Nat).Mod(x, Order())
	var buf [params.BytesScalar]byte
	reduced.FillBytes(buf[:])
	s.s.SetBytes(&buf)
	return s
}

// SetBytesReduced interprets b as a big-endian integer and sets s to its value mod n.
// It reports whether b was greater than or equal to n.
func (s *Scalar) SetBytesReduced(b []byte) (overflow bool) {
	return s.s.SetByteSlice(b)
}

// Add sets s = s + t, and returns s.
func (s *Scalar) Add(t *Scalar) *Scalar {
	s.s.Add(&t.s)
	return s
}

// Sub sets s = s - t, and returns s.
func (s *Scalar) Sub(t *Scalar) *Scalar {
	var neg secp256k1.ModNScalar
	neg.NegateVal(&t.s)
	s.s.Add(&neg)
	return s
}

// Mul sets s = s ⋅ t, and returns s.
func (s *Scalar) Mul(t *Scalar) *Scalar {
	s.s.Mul(&t.s)
	return s
}

// Negate sets s = -s, and returns s.
func (s *Scalar) Negate() *Scalar {
	s.s.Negate()
	return s
}

// Invert sets s = s⁻¹, and returns s. The inverse of 0 is 0.
func (s *Scalar) Invert() *Scalar {
	s.s.InverseNonConst()
	return s
}

// Equal returns true if s and t represent the same element.
func (s *Scalar) Equal(t *Scalar) bool {
	return s.s.Equals(&t.s)
}

// IsZero returns true if s = 0.
func (s *Scalar) IsZero() bool {
	return s.s.IsZero()
}

// ActOnBase returns s⋅G.
func (s *Scalar) ActOnBase() *Point {
	out := new(Point)
	secp256k1.ScalarBaseMultNonConst(&s.s, &out.p)
	return out
}

// Act returns s⋅p.
func (s *Scalar) Act(p *Point) *Point {
	out := new(Point)
	secp256k1.ScalarMultNonConst(&s.s, &p.p, &out.p)
	return out
}

// Bytes returns the 32 byte big-endian encoding of s.
func (s *Scalar) Bytes() [params.BytesScalar]byte {
	return s.s.Bytes()
}

// Zero overwrites the value of s.
func (s *Scalar) Zero() {
	s.s.Zero()
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Scalar) MarshalBinary() ([]byte, error) {
	data := s.s.Bytes()
	return data[:], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
// The encoding must be exactly 32 bytes, and represent an integer < n.
func (s *Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesScalar {
		return fmt.Errorf("curve.Scalar.UnmarshalBinary: invalid length %d", len(data))
	}
	var scalar secp256k1.ModNScalar
	if scalar.SetByteSlice(data) {
		return errors.New("curve.Scalar.UnmarshalBinary: scalar was >= n")
	}
	s.s.Set(&scalar)
	return nil
}

// String implements fmt.Stringer.
func (s *Scalar) String() string {
	if s == nil {
		return "nil"
	}
	return s.s.String()
}
