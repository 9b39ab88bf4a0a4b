package threshold

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/stealth-payments/internal/hash"
	"github.com/taurusgroup/stealth-payments/internal/params"
	"github.com/taurusgroup/stealth-payments/pkg/math/curve"
)

const checksumDomain = "stealth-payments threshold share checksum"

// Share is the evaluation at x = Index of every chunk polynomial of one split.
type Share struct {
	// SetID is random per call to Split, and identifies shares that belong together.
	SetID [params.BytesSetID]byte
	// Threshold is the number of shares needed to recover the secret.
	Threshold uint8
	// Index is the non-zero x coordinate of this share.
	Index uint8
	// Length is the size in bytes of the shared secret.
	Length uint16
	// Values holds one evaluation per 16 byte chunk of the secret.
	Values []*curve.Scalar
	// Checksum binds all the fields above.
	Checksum [params.BytesChecksum]byte
}

// chunkCount returns the number of chunks for a secret of the given length.
func chunkCount(length int) int {
	return (length + params.BytesChunk - 1) / params.BytesChunk
}

func (s *Share) computeChecksum() ([params.BytesChecksum]byte, error) {
	var out [params.BytesChecksum]byte
	h := hash.New(checksumDomain)
	if err := h.WriteAny(s.SetID[:], s.Threshold, s.Index, s.Length); err != nil {
		return out, err
	}
	for _, v := range s.Values {
		if err := h.WriteAny(v); err != nil {
			return out, err
		}
	}
	copy(out[:], h.Sum())
	return out, nil
}

// Validate checks the internal consistency of the share, including its checksum.
func (s *Share) Validate() error {
	switch {
	case s.Index == 0:
		return fmt.Errorf("share has index 0")
	case s.Threshold < 2:
		return fmt.Errorf("share has threshold %d", s.Threshold)
	case s.Length == 0 || int(s.Length) > params.MaxSecretBytes:
		return fmt.Errorf("share has secret length %d", s.Length)
	case len(s.Values) != chunkCount(int(s.Length)):
		return fmt.Errorf("share has %d values for a secret of %d bytes", len(s.Values), s.Length)
	}
	for _, v := range s.Values {
		if v == nil {
			return fmt.Errorf("share has a nil value")
		}
	}
	expected, err := s.computeChecksum()
	if err != nil {
		return err
	}
	if expected != s.Checksum {
		return fmt.Errorf("share %d has an invalid checksum", s.Index)
	}
	return nil
}

// Zero overwrites the values held by the share.
func (s *Share) Zero() {
	for _, v := range s.Values {
		if v != nil {
			v.Zero()
		}
	}
}

// shareWire is the CBOR form of a Share.
type shareWire struct {
	_         struct{} `cbor:",toarray"`
	SetID     []byte
	Threshold uint8
	Index     uint8
	Length    uint16
	Values    [][]byte
	Checksum  []byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Share) MarshalBinary() ([]byte, error) {
	w := shareWire{
		SetID:     s.SetID[:],
		Threshold: s.Threshold,
		Index:     s.Index,
		Length:    s.Length,
		Values:    make([][]byte, len(s.Values)),
		Checksum:  s.Checksum[:],
	}
	for i, v := range s.Values {
		b, err := v.MarshalBinary()
		if err != nil {
			return nil, err
		}
		w.Values[i] = b
	}
	return cbor.Marshal(w)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
// The decoded share must pass Validate.
func (s *Share) UnmarshalBinary(data []byte) error {
	var w shareWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("threshold.Share: %w", err)
	}
	if len(w.SetID) != params.BytesSetID || len(w.Checksum) != params.BytesChecksum {
		return fmt.Errorf("threshold.Share: invalid set id or checksum length")
	}
	if len(w.Values) > chunkCount(params.MaxSecretBytes) {
		return fmt.Errorf("threshold.Share: too many values")
	}
	share := Share{
		Threshold: w.Threshold,
		Index:     w.Index,
		Length:    w.Length,
		Values:    make([]*curve.Scalar, len(w.Values)),
	}
	copy(share.SetID[:], w.SetID)
	copy(share.Checksum[:], w.Checksum)
	for i, b := range w.Values {
		share.Values[i] = curve.NewScalar()
		if err := share.Values[i].UnmarshalBinary(b); err != nil {
			return fmt.Errorf("threshold.Share: value %d: %w", i, err)
		}
	}
	if err := share.Validate(); err != nil {
		return fmt.Errorf("threshold.Share: %w", err)
	}
	*s = share
	return nil
}

// Hex returns the wire form of the share, hex encoded.
func (s *Share) Hex() (string, error) {
	data, err := s.MarshalBinary()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(data), nil
}

// ParseShareHex decodes a share produced by Share.Hex. A 0x prefix is accepted.
//
// Any failure is reported as ErrShareReconstructionFailed.
func ParseShareHex(s string) (*Share, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShareReconstructionFailed, err)
	}
	share := new(Share)
	if err = share.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShareReconstructionFailed, err)
	}
	return share, nil
}

// sameValues reports whether a and b hold identical evaluations.
func sameValues(a, b *Share) bool {
	if len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Values {
		if a.Values[i].Bytes() != b.Values[i].Bytes() {
			return false
		}
	}
	return true
}
