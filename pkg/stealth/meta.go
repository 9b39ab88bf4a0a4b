package stealth

import (
	"fmt"
	"strings"

	"github.com/taurusgroup/stealth-payments/pkg/math/curve"
)

// MetaAddressPrefix starts the textual form of a recipient's main public key.
const MetaAddressPrefix = "st:eth:0x"

// FormatMetaAddress encodes a main public key for publication, as st:eth:0x followed by
// the compressed point in hex.
func FormatMetaAddress(mainPub *curve.Point) (string, error) {
	data, err := mainPub.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return MetaAddressPrefix + fmt.Sprintf("%x", data), nil
}

// ParseMetaAddress decodes the output of FormatMetaAddress.
func ParseMetaAddress(s string) (*curve.Point, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, MetaAddressPrefix) {
		return nil, fmt.Errorf("%w: missing %s prefix", ErrInvalidPublicKey, MetaAddressPrefix)
	}
	return ParsePublicKeyHex(strings.TrimPrefix(s, MetaAddressPrefix))
}
