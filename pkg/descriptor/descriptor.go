// Package descriptor implements confidential transaction descriptors.
//
// A descriptor hides {sender, receiver, amount} under a fresh 256 bit key, using
// XChaCha20-Poly1305. Its opaque id is hex(nonce) ∥ hex(ciphertext), and its
// commitment is keccak256 of the opaque id, suitable for storage on chain.
// The key is meant to be split with package threshold and then discarded.
package descriptor

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/taurusgroup/stealth-payments/internal/hash"
	"github.com/taurusgroup/stealth-payments/internal/params"
	"github.com/taurusgroup/stealth-payments/pkg/math/sample"
	"golang.org/x/crypto/chacha20poly1305"
)

// associatedData binds ciphertexts to this format.
var associatedData = []byte("stealth-payments/descriptor/v1")

// nonceHexLength is the length of the prefix of an opaque id holding the nonce.
const nonceHexLength = 2 * params.BytesNonce

// Commitment is the 32 byte on chain binding of a descriptor.
type Commitment [32]byte

// Commit returns keccak256 of the UTF-8 bytes of opaqueID.
func Commit(opaqueID string) Commitment {
	return hash.Keccak256Array([]byte(opaqueID))
}

// Hex returns c in hex, with 0x prefix.
func (c Commitment) Hex() string {
	return "0x" + hex.EncodeToString(c[:])
}

// String implements fmt.Stringer.
func (c Commitment) String() string {
	return c.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (c Commitment) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// Descriptor is the output of Create.
type Descriptor struct {
	// OpaqueID is hex(nonce) ∥ hex(ciphertext ∥ tag), in lower case.
	OpaqueID string
	// Commitment is keccak256(OpaqueID).
	Commitment Commitment
	// Key is the 32 byte symmetric key. It exists only until the caller has split it.
	Key []byte
}

// Zero overwrites the symmetric key of d.
func (d *Descriptor) Zero() {
	for i := range d.Key {
		d.Key[i] = 0
	}
	d.Key = nil
}

// Create encrypts {sender, receiver, amount} under a fresh key and nonce read from rand.
//
// sender and receiver must be valid chain addresses, and amount a positive decimal
// with at most 18 fractional digits.
func Create(rand io.Reader, sender, receiver, amount string) (*Descriptor, error) {
	payload := &Payload{Sender: sender, Receiver: receiver, Amount: amount}
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("descriptor.Create: %w", err)
	}
	plaintext, err := payload.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("descriptor.Create: encode payload: %w", err)
	}

	key, err := sample.Bytes(rand, params.BytesSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("descriptor.Create: key: %w", err)
	}
	nonce, err := sample.Bytes(rand, params.BytesNonce)
	if err != nil {
		return nil, fmt.Errorf("descriptor.Create: nonce: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("descriptor.Create: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, associatedData)

	opaqueID := hex.EncodeToString(nonce) + hex.EncodeToString(ciphertext)
	return &Descriptor{
		OpaqueID:   opaqueID,
		Commitment: Commit(opaqueID),
		Key:        key,
	}, nil
}

// Open decrypts the payload of opaqueID.
//
// It never returns a partially decrypted payload: any failure after the opaque id
// was parsed is reported as ErrDecryptionFailed.
func Open(opaqueID string, key []byte) (*Payload, error) {
	if len(opaqueID) < nonceHexLength+2*params.BytesTag {
		return nil, fmt.Errorf("%w: opaque id has length %d", ErrCorruptDescriptor, len(opaqueID))
	}
	nonce, err := hex.DecodeString(opaqueID[:nonceHexLength])
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", ErrCorruptDescriptor, err)
	}
	ciphertext, err := hex.DecodeString(opaqueID[nonceHexLength:])
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext: %v", ErrCorruptDescriptor, err)
	}

	if len(key) != params.BytesSymmetricKey {
		return nil, fmt.Errorf("%w: key has length %d", ErrDecryptionFailed, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, associatedData)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	var payload Payload
	if err = payload.UnmarshalBinary(plaintext); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if err = payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return &payload, nil
}

// OpenHex is Open with the key given in hex.
func OpenHex(opaqueID, keyHex string) (*Payload, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: key: %v", ErrDecryptionFailed, err)
	}
	return Open(opaqueID, key)
}
