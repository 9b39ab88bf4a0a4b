// Package address implements 20 byte chain addresses, as derived from secp256k1
// public keys by Ethereum compatible chains.
package address

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/taurusgroup/stealth-payments/internal/hash"
	"github.com/taurusgroup/stealth-payments/internal/params"
	"github.com/taurusgroup/stealth-payments/pkg/math/curve"
)

// ErrInvalidAddress is returned for strings that are not well-formed chain addresses.
var ErrInvalidAddress = errors.New("invalid address")

// Address is the last 20 bytes of the keccak-256 hash of an uncompressed public key.
type Address [params.BytesAddress]byte

// FromPublicKey returns the address controlled by the private key of p.
func FromPublicKey(p *curve.Point) (Address, error) {
	var a Address
	xy, err := p.XY()
	if err != nil {
		return a, fmt.Errorf("address.FromPublicKey: %w", err)
	}
	digest := hash.Keccak256(xy)
	copy(a[:], digest[len(digest)-params.BytesAddress:])
	return a, nil
}

// Parse decodes a hex address, with or without 0x prefix.
//
// All lower case and all upper case inputs are accepted as is.
// Mixed case inputs must carry a valid EIP-55 checksum.
func Parse(s string) (Address, error) {
	var a Address
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(raw) != 2*params.BytesAddress {
		return a, fmt.Errorf("%w: %d hex digits", ErrInvalidAddress, len(raw))
	}
	if _, err := hex.Decode(a[:], []byte(raw)); err != nil {
		return a, fmt.Errorf("%w: not hex", ErrInvalidAddress)
	}
	if raw != strings.ToLower(raw) && raw != strings.ToUpper(raw) {
		if a.Hex()[2:] != raw {
			return a, fmt.Errorf("%w: bad checksum", ErrInvalidAddress)
		}
	}
	return a, nil
}

// IsValid is the address validity predicate.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Hex returns the EIP-55 checksummed form of a, with 0x prefix.
func (a Address) Hex() string {
	lower := hex.EncodeToString(a[:])
	digest := hash.Keccak256([]byte(lower))
	out := []byte(lower)
	for i, c := range out {
		if c < 'a' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out)
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Hex()
}

// IsZero returns true for the all zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
