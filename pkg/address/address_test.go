package address

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/stealth-payments/pkg/math/curve"
)

// Test vectors from EIP-55.
var checksummed = []string{
	"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
	"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
}

func TestHex_Checksum(t *testing.T) {
	for _, s := range checksummed {
		a, err := Parse(strings.ToLower(s))
		require.NoError(t, err)
		assert.Equal(t, s, a.Hex())
	}
}

func TestParse(t *testing.T) {
	for _, s := range checksummed {
		assert.True(t, IsValid(s), s)
		assert.True(t, IsValid(strings.ToLower(s)), s)
		assert.True(t, IsValid("0x"+strings.ToUpper(s[2:])), s)
		assert.True(t, IsValid(s[2:]), s)
	}

	invalid := []string{
		"",
		"0x",
		"0xSENDER",
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAe",   // too short
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAedd", // too long
		"0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",  // bad checksum
		"0xzzAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",  // not hex
	}
	for _, s := range invalid {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrInvalidAddress, s)
	}
}

func TestParse_ErrorOmitsInput(t *testing.T) {
	for _, s := range []string{
		"0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAe",
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeZ",
	} {
		_, err := Parse(s)
		require.ErrorIs(t, err, ErrInvalidAddress)
		assert.NotContains(t, strings.ToLower(err.Error()), "5aaeb6053f")
	}
}

func TestFromPublicKey(t *testing.T) {
	// the address of private key 1
	a, err := FromPublicKey(curve.NewBasePoint())
	require.NoError(t, err)
	assert.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", a.Hex())
	assert.False(t, a.IsZero())

	_, err = FromPublicKey(curve.NewIdentityPoint())
	assert.Error(t, err)
}

func TestAddress_JSON(t *testing.T) {
	a, err := Parse(checksummed[0])
	require.NoError(t, err)
	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"`+checksummed[0]+`"`, string(data))

	var b Address
	require.NoError(t, json.Unmarshal(data, &b))
	assert.Equal(t, a, b)
	assert.Error(t, json.Unmarshal([]byte(`"0x1234"`), &b))
	assert.True(t, Address{}.IsZero())
}
