package stealth

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/taurusgroup/stealth-payments/internal/hash"
	"github.com/taurusgroup/stealth-payments/pkg/address"
	"github.com/taurusgroup/stealth-payments/pkg/math/curve"
	"github.com/taurusgroup/stealth-payments/pkg/math/sample"
)

// maxAttempts bounds the number of ephemeral keys tried by Generate.
// A single degenerate draw has probability about 2⁻²⁵⁶.
const maxAttempts = 8

// Address is a one-time receiving address, along with the data a recipient needs to find it.
type Address struct {
	// Address is the chain address funds are sent to.
	Address address.Address
	// StealthPublicKey is spendPub + s⋅G.
	StealthPublicKey *curve.Point
	// EphemeralPublicKey must be published next to the payment.
	EphemeralPublicKey *curve.Point
	// ViewTag is the first byte of the hashed shared secret, letting a recipient
	// discard most unrelated announcements with a single multiplication.
	ViewTag byte
}

// sharedSecret hashes an ECDH point to the scalar s and its view tag.
func sharedSecret(shared *curve.Point) (*curve.Scalar, byte, error) {
	encoded, err := shared.MarshalUncompressed()
	if err != nil {
		return nil, 0, fmt.Errorf("stealth: shared point: %w", ErrDegenerateScalar)
	}
	digest := hash.Keccak256(encoded)
	s := curve.FromHash(digest)
	if s.IsZero() {
		return nil, 0, fmt.Errorf("stealth: shared scalar: %w", ErrDegenerateScalar)
	}
	return s, digest[0], nil
}

// Derive computes the stealth address of mainPub for the ephemeral private key e.
//
// The result is a deterministic function of its inputs.
func Derive(mainPub *curve.Point, e *curve.Scalar) (*Address, error) {
	spend, view, err := DeriveSpendView(mainPub)
	if err != nil {
		return nil, err
	}
	return deriveFrom(spend, view, e)
}

func deriveFrom(spend, view *curve.Point, e *curve.Scalar) (*Address, error) {
	if e == nil || e.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	s, viewTag, err := sharedSecret(e.Act(view))
	if err != nil {
		return nil, err
	}
	stealthPub := spend.Add(s.ActOnBase())
	if stealthPub.IsIdentity() {
		return nil, fmt.Errorf("stealth: stealth key: %w", ErrDegenerateScalar)
	}
	addr, err := address.FromPublicKey(stealthPub)
	if err != nil {
		return nil, err
	}
	return &Address{
		Address:            addr,
		StealthPublicKey:   stealthPub,
		EphemeralPublicKey: e.ActOnBase(),
		ViewTag:            viewTag,
	}, nil
}

// Generate samples a fresh ephemeral key and derives the stealth address of mainPub with it.
//
// The ephemeral private key is returned to the caller only, who must not persist it.
// Degenerate derivations are retried with a new ephemeral key.
func Generate(rand io.Reader, mainPub *curve.Point) (*Address, *curve.Scalar, error) {
	spend, view, err := DeriveSpendView(mainPub)
	if err != nil {
		return nil, nil, err
	}
	for i := 0; i < maxAttempts; i++ {
		e, err := sample.Scalar(rand)
		if err != nil {
			return nil, nil, fmt.Errorf("stealth.Generate: %w", err)
		}
		a, err := deriveFrom(spend, view, e)
		if errors.Is(err, ErrDegenerateScalar) {
			e.Zero()
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return a, e, nil
	}
	return nil, nil, fmt.Errorf("stealth.Generate: %d attempts: %w", maxAttempts, ErrDegenerateScalar)
}

// GenerateHex is Generate for a main public key given in hex or as a meta-address.
// The ephemeral private key is discarded.
func GenerateHex(rand io.Reader, mainPubKey string) (*Address, error) {
	var (
		mainPub *curve.Point
		err     error
	)
	if strings.HasPrefix(strings.TrimSpace(mainPubKey), MetaAddressPrefix) {
		mainPub, err = ParseMetaAddress(mainPubKey)
	} else {
		mainPub, err = ParsePublicKeyHex(mainPubKey)
	}
	if err != nil {
		return nil, err
	}
	a, e, err := Generate(rand, mainPub)
	if err != nil {
		return nil, err
	}
	e.Zero()
	return a, nil
}

// Recover returns the private key of the stealth address announced with ephemeralPub.
//
// It computes spendScalar + s mod n, where s is derived from viewScalar⋅ephemeralPub.
func Recover(main *MainKeyPair, ephemeralPub *curve.Point) (*curve.Scalar, error) {
	if ephemeralPub == nil || ephemeralPub.IsIdentity() {
		return nil, ErrInvalidPublicKey
	}
	spend, err := main.SpendKey()
	if err != nil {
		return nil, err
	}
	defer spend.Private.Zero()
	view, err := main.ViewKey()
	if err != nil {
		return nil, err
	}
	defer view.Private.Zero()
	s, _, err := sharedSecret(view.Private.Act(ephemeralPub))
	if err != nil {
		return nil, err
	}
	x := s.Add(spend.Private)
	if x.IsZero() {
		return nil, fmt.Errorf("stealth.Recover: %w", ErrDegenerateScalar)
	}
	return x, nil
}
