package stealth

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/taurusgroup/stealth-payments/internal/hash"
	"github.com/taurusgroup/stealth-payments/pkg/math/curve"
	"github.com/taurusgroup/stealth-payments/pkg/math/sample"
)

// Domain separation tags for the spend and view keys.
const (
	tagSpend = "spend"
	tagView  = "view"
)

// MainKeyPair is the long-term identity of a recipient.
type MainKeyPair struct {
	Private *curve.Scalar
	Public  *curve.Point
}

// KeyPair is a spend or view key. Private is nil when only the public half is known.
type KeyPair struct {
	Private *curve.Scalar
	Public  *curve.Point
}

// GenerateMainKeyPair samples a fresh recipient identity.
func GenerateMainKeyPair(rand io.Reader) (*MainKeyPair, error) {
	x, X, err := sample.ScalarPointPair(rand)
	if err != nil {
		return nil, fmt.Errorf("stealth.GenerateMainKeyPair: %w", err)
	}
	return &MainKeyPair{Private: x, Public: X}, nil
}

// NewMainKeyPair returns the key pair of the private scalar x.
func NewMainKeyPair(x *curve.Scalar) (*MainKeyPair, error) {
	if x == nil || x.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	return &MainKeyPair{Private: curve.NewScalar().Set(x), Public: x.ActOnBase()}, nil
}

// ParseMainPrivateKeyHex decodes a 32 byte private scalar given in hex.
func ParseMainPrivateKeyHex(s string) (*MainKeyPair, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: not hex", ErrInvalidPrivateKey)
	}
	x := curve.NewScalar()
	if err = x.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return NewMainKeyPair(x)
}

// ParsePublicKeyHex decodes a point in hex, mapping every failure to ErrInvalidPublicKey.
func ParsePublicKeyHex(s string) (*curve.Point, error) {
	p, err := curve.ParsePointHex(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return p, nil
}

// derivationScalar returns H(tag ∥ mainPub) mod n, with mainPub in compressed form.
func derivationScalar(tag string, mainPub *curve.Point) (*curve.Scalar, error) {
	if mainPub == nil {
		return nil, ErrInvalidPublicKey
	}
	encoded, err := mainPub.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	d := curve.FromHash(hash.Keccak256([]byte(tag), encoded))
	if d.IsZero() {
		return nil, fmt.Errorf("stealth: %s scalar: %w", tag, ErrDegenerateScalar)
	}
	return d, nil
}

// derivePublic returns mainPub + H(tag ∥ mainPub)⋅G.
func derivePublic(tag string, mainPub *curve.Point) (*curve.Point, error) {
	d, err := derivationScalar(tag, mainPub)
	if err != nil {
		return nil, err
	}
	p := mainPub.Add(d.ActOnBase())
	if p.IsIdentity() {
		return nil, fmt.Errorf("stealth: %s key: %w", tag, ErrDegenerateScalar)
	}
	return p, nil
}

// DeriveSpendView returns the spend and view public keys of a main public key.
//
// The main key enters the hash in its 33 byte compressed form, so the results
// differ from derivations hashing the 65 byte uncompressed encoding.
func DeriveSpendView(mainPub *curve.Point) (spend, view *curve.Point, err error) {
	if spend, err = derivePublic(tagSpend, mainPub); err != nil {
		return nil, nil, err
	}
	if view, err = derivePublic(tagView, mainPub); err != nil {
		return nil, nil, err
	}
	return spend, view, nil
}

// derivePrivate returns mainPriv + H(tag ∥ mainPub) mod n.
func (m *MainKeyPair) derivePrivate(tag string) (*KeyPair, error) {
	d, err := derivationScalar(tag, m.Public)
	if err != nil {
		return nil, err
	}
	x := d.Add(m.Private)
	if x.IsZero() {
		return nil, fmt.Errorf("stealth: %s key: %w", tag, ErrDegenerateScalar)
	}
	return &KeyPair{Private: x, Public: x.ActOnBase()}, nil
}

// SpendKey returns the spend key pair, whose private half is needed to move funds.
func (m *MainKeyPair) SpendKey() (*KeyPair, error) {
	return m.derivePrivate(tagSpend)
}

// ViewKey returns the view key pair, whose private half is enough to detect payments.
func (m *MainKeyPair) ViewKey() (*KeyPair, error) {
	return m.derivePrivate(tagView)
}
