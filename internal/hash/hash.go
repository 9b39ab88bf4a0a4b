package hash

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// DigestLengthBytes is the length of the slice returned by Hash.Sum.
const DigestLengthBytes = 32

// Keccak256 returns the legacy (pre-standard) Keccak-256 digest of the concatenation of data,
// as used by Ethereum for addresses and commitments.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		// the underlying hash function never returns an error
		_, _ = h.Write(d)
	}
	return h.Sum(nil)
}

// Keccak256Array is Keccak256 with a fixed size output.
func Keccak256Array(data ...[]byte) (out [32]byte) {
	copy(out[:], Keccak256(data...))
	return
}

// Hash is used for checksums and identifiers internal to this module.
//
// Internally, this is a blake3 hasher in key derivation mode, so that two hashes
// created with different domains never collide.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash whose state is separated by domain.
func New(domain string) *Hash {
	return &Hash{h: blake3.NewDeriveKey(domain)}
}

// WriteAny writes each value to the hash state, prefixed by its length.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - uint8, uint16, uint64
//   - encoding.BinaryMarshaler
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var b []byte
		switch t := d.(type) {
		case []byte:
			b = t
		case string:
			b = []byte(t)
		case uint8:
			b = []byte{t}
		case uint16:
			b = binary.BigEndian.AppendUint16(nil, t)
		case uint64:
			b = binary.BigEndian.AppendUint64(nil, t)
		case interface{ MarshalBinary() ([]byte, error) }:
			var err error
			if b, err = t.MarshalBinary(); err != nil {
				return fmt.Errorf("hash.Hash: write BinaryMarshaler: %w", err)
			}
		default:
			return fmt.Errorf("hash.Hash: unsupported type %T", d)
		}
		var length [8]byte
		binary.BigEndian.PutUint64(length[:], uint64(len(b)))
		_, _ = hash.h.Write(length[:])
		_, _ = hash.h.Write(b)
	}
	return nil
}

// Digest returns a reader for the current output of the function.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}
