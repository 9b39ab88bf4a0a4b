package descriptor

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/stealth-payments/internal/hash"
	"github.com/taurusgroup/stealth-payments/internal/test"
	"github.com/taurusgroup/stealth-payments/pkg/address"
	"github.com/taurusgroup/stealth-payments/pkg/amount"
	"github.com/taurusgroup/stealth-payments/pkg/threshold"
)

const (
	sender   = test.Sender
	receiver = test.Receiver
)

func TestCreateOpen(t *testing.T) {
	d, err := Create(rand.Reader, sender, receiver, "100.0")
	require.NoError(t, err)
	require.Len(t, d.Key, 32)

	assert.Equal(t, strings.ToLower(d.OpaqueID), d.OpaqueID)
	assert.Equal(t, Commit(d.OpaqueID), d.Commitment)
	assert.Equal(t, hash.Keccak256Array([]byte(d.OpaqueID)), [32]byte(d.Commitment))

	payload, err := Open(d.OpaqueID, d.Key)
	require.NoError(t, err)
	assert.Equal(t, &Payload{Sender: sender, Receiver: receiver, Amount: "100.0"}, payload)
}

func TestCreate_Fresh(t *testing.T) {
	a, err := Create(rand.Reader, sender, receiver, "1")
	require.NoError(t, err)
	b, err := Create(rand.Reader, sender, receiver, "1")
	require.NoError(t, err)
	assert.NotEqual(t, a.OpaqueID, b.OpaqueID)
	assert.NotEqual(t, a.Commitment, b.Commitment)
	assert.False(t, bytes.Equal(a.Key, b.Key))
}

func TestCreate_InvalidInput(t *testing.T) {
	_, err := Create(rand.Reader, "0xSENDER", receiver, "100")
	assert.ErrorIs(t, err, address.ErrInvalidAddress)
	_, err = Create(rand.Reader, sender, "", "100")
	assert.ErrorIs(t, err, address.ErrInvalidAddress)

	for _, a := range []string{"0", "0.0", "-1", "abc", "1.0000000000000000001", ""} {
		_, err = Create(rand.Reader, sender, receiver, a)
		assert.ErrorIs(t, err, amount.ErrInvalidAmount, "amount %q", a)
	}
}

func TestOpen_WrongKey(t *testing.T) {
	d, err := Create(rand.Reader, sender, receiver, "2.5")
	require.NoError(t, err)

	wrong := make([]byte, 32)
	copy(wrong, d.Key)
	wrong[0] ^= 1
	_, err = Open(d.OpaqueID, wrong)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = Open(d.OpaqueID, d.Key[:16])
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestOpen_Corrupt(t *testing.T) {
	d, err := Create(rand.Reader, sender, receiver, "2.5")
	require.NoError(t, err)

	for _, id := range []string{"", "abcd", strings.Repeat("z", 100), d.OpaqueID[:len(d.OpaqueID)-1]} {
		_, err = Open(id, d.Key)
		assert.ErrorIs(t, err, ErrCorruptDescriptor, "id %q", id)
	}

	// a flipped ciphertext byte is caught by authentication
	raw, err := hex.DecodeString(d.OpaqueID)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x80
	_, err = Open(hex.EncodeToString(raw), d.Key)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestPayload_Canonical(t *testing.T) {
	p := &Payload{Sender: sender, Receiver: receiver, Amount: "7"}
	a, err := p.MarshalBinary()
	require.NoError(t, err)
	b, err := p.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var decoded Payload
	require.NoError(t, decoded.UnmarshalBinary(a))
	assert.Equal(t, *p, decoded)

	assert.Error(t, decoded.UnmarshalBinary(append(a, 0)))
}

func TestPayload_NestedCBOR(t *testing.T) {
	type envelope struct {
		Version uint8    `cbor:"1,keyasint"`
		Payload *Payload `cbor:"2,keyasint"`
	}
	p := &Payload{Sender: sender, Receiver: receiver, Amount: "0.5"}
	inner, err := p.MarshalBinary()
	require.NoError(t, err)

	data, err := cbor.Marshal(envelope{Version: 1, Payload: p})
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, inner))

	var decoded envelope
	require.NoError(t, cbor.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.Payload)
	assert.Equal(t, *p, *decoded.Payload)
}

func TestCommitmentHex(t *testing.T) {
	c := Commit("")
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", c.Hex())
}

// With one of three shares lost, the two others still open the descriptor.
func TestLifecycle_GuardianRecovery(t *testing.T) {
	d, err := Create(rand.Reader, sender, receiver, "100")
	require.NoError(t, err)

	shares, err := threshold.Split(rand.Reader, d.Key, threshold.DefaultShares, threshold.DefaultThreshold)
	require.NoError(t, err)
	opaqueID := d.OpaqueID
	d.Zero()
	assert.Nil(t, d.Key)

	hexShares := make([]string, 0, 2)
	for _, s := range shares[1:] {
		h, err := s.Hex()
		require.NoError(t, err)
		hexShares = append(hexShares, h)
	}

	held := make([]threshold.Share, 0, 2)
	for _, h := range hexShares {
		s, err := threshold.ParseShareHex(h)
		require.NoError(t, err)
		held = append(held, *s)
	}
	key, err := threshold.Combine(held)
	require.NoError(t, err)

	payload, err := OpenHex(opaqueID, hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, sender, payload.Sender)
	assert.Equal(t, receiver, payload.Receiver)

	a, err := amount.Parse(payload.Amount)
	require.NoError(t, err)
	assert.Equal(t, "100.0", a.String())

	_, err = threshold.Combine(held[:1])
	assert.ErrorIs(t, err, threshold.ErrInsufficientShares)
}

func TestLifecycle_Guardians(t *testing.T) {
	d, err := Create(rand.Reader, sender, receiver, "42.42")
	require.NoError(t, err)
	shares, err := threshold.Split(rand.Reader, d.Key, 3, 2)
	require.NoError(t, err)
	opaqueID := d.OpaqueID
	d.Zero()

	guardians := test.NewGuardians(shares)
	guardians.Lose(1)

	key, err := guardians.Release(3, 2)
	require.NoError(t, err)
	payload, err := Open(opaqueID, key)
	require.NoError(t, err)
	assert.Equal(t, "42.42", payload.Amount)

	_, err = guardians.Release(1, 2)
	assert.Error(t, err)

	guardians.Corrupt(3, test.RuleFunc(func(s *threshold.Share) {
		s.Checksum[0] ^= 1
	}))
	_, err = guardians.Release(2, 3)
	assert.ErrorIs(t, err, threshold.ErrShareReconstructionFailed)
}
