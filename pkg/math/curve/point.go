package curve

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/taurusgroup/stealth-payments/internal/params"
)

// Point is an element of the secp256k1 group. The zero value is the identity.
//
// Group operations return a fresh Point and never modify their inputs.
type Point struct {
	p secp256k1.JacobianPoint
}

// NewIdentityPoint returns the point at infinity.
func NewIdentityPoint() *Point {
	return new(Point)
}

// NewBasePoint returns the generator G.
func NewBasePoint() *Point {
	return NewScalar().SetUInt32(1).ActOnBase()
}

// Set sets v = u, and returns v.
func (v *Point) Set(u *Point) *Point {
	v.p.Set(&u.p)
	return v
}

// Add returns v + u.
func (v *Point) Add(u *Point) *Point {
	out := new(Point)
	secp256k1.AddNonConst(&v.p, &u.p, &out.p)
	return out
}

// Negate returns -v.
func (v *Point) Negate() *Point {
	out := new(Point)
	if v.IsIdentity() {
		return out
	}
	out.p.Set(&v.p)
	out.p.ToAffine()
	out.p.Y.Negate(1)
	out.p.Y.Normalize()
	return out
}

// Sub returns v - u.
func (v *Point) Sub(u *Point) *Point {
	return v.Add(u.Negate())
}

// IsIdentity returns true if the point is ∞.
func (v *Point) IsIdentity() bool {
	return (v.p.X.IsZero() && v.p.Y.IsZero()) || v.p.Z.IsZero()
}

// Equal returns true if v and u represent the same group element.
func (v *Point) Equal(u *Point) bool {
	if v.IsIdentity() || u.IsIdentity() {
		return v.IsIdentity() && u.IsIdentity()
	}
	a, b := v.affine(), u.affine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

// affine returns a copy of v in affine coordinates.
func (v *Point) affine() secp256k1.JacobianPoint {
	var p secp256k1.JacobianPoint
	p.Set(&v.p)
	p.ToAffine()
	return p
}

// PublicKey returns v as a secp256k1.PublicKey, or nil for the identity.
func (v *Point) PublicKey() *secp256k1.PublicKey {
	if v.IsIdentity() {
		return nil
	}
	p := v.affine()
	return secp256k1.NewPublicKey(&p.X, &p.Y)
}

// MarshalBinary implements encoding.BinaryMarshaler, using the 33 byte compressed SEC1 form.
func (v *Point) MarshalBinary() ([]byte, error) {
	pk := v.PublicKey()
	if pk == nil {
		return nil, errors.New("curve.Point.MarshalBinary: tries to marshal identity")
	}
	return pk.SerializeCompressed(), nil
}

// MarshalUncompressed returns the 65 byte uncompressed SEC1 form 0x04 ∥ X ∥ Y.
func (v *Point) MarshalUncompressed() ([]byte, error) {
	pk := v.PublicKey()
	if pk == nil {
		return nil, errors.New("curve.Point.MarshalUncompressed: tries to marshal identity")
	}
	return pk.SerializeUncompressed(), nil
}

// XY returns the 64 byte concatenation of the affine coordinates X ∥ Y.
func (v *Point) XY() ([]byte, error) {
	data, err := v.MarshalUncompressed()
	if err != nil {
		return nil, err
	}
	return data[1:], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
// Both the compressed (33 bytes) and uncompressed (65 bytes) SEC1 forms are accepted,
// and the point is checked to be on the curve.
func (v *Point) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesPoint && len(data) != params.BytesUncompressed {
		return fmt.Errorf("curve.Point.UnmarshalBinary: invalid length %d", len(data))
	}
	pk, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return fmt.Errorf("curve.Point.UnmarshalBinary: %w", err)
	}
	pk.AsJacobian(&v.p)
	return nil
}

// Hex returns the compressed encoding of v in hex, with a 0x prefix.
func (v *Point) Hex() string {
	data, err := v.MarshalBinary()
	if err != nil {
		return ""
	}
	return "0x" + hex.EncodeToString(data)
}

// ParsePointHex decodes a point given in hex, with or without 0x prefix,
// in compressed or uncompressed form.
func ParsePointHex(s string) (*Point, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("curve.ParsePointHex: %w", err)
	}
	v := new(Point)
	if err = v.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return v, nil
}

// String implements fmt.Stringer.
func (v *Point) String() string {
	if v == nil {
		return "nil"
	}
	if v.IsIdentity() {
		return "Point{Identity}"
	}
	return "Point{" + v.Hex() + "}"
}
