package paymeta

import (
	"errors"

	"github.com/taurusgroup/stealth-payments/pkg/address"
	"github.com/taurusgroup/stealth-payments/pkg/amount"
	"github.com/taurusgroup/stealth-payments/pkg/descriptor"
	"github.com/taurusgroup/stealth-payments/pkg/fragment"
	"github.com/taurusgroup/stealth-payments/pkg/stealth"
	"github.com/taurusgroup/stealth-payments/pkg/threshold"
)

// KindUnknown is returned by Kind for errors outside the taxonomy.
const KindUnknown = "Unknown"

var kinds = []struct {
	err  error
	name string
}{
	{stealth.ErrInvalidPublicKey, "InvalidPublicKey"},
	{stealth.ErrInvalidPrivateKey, "InvalidPrivateKey"},
	{stealth.ErrDegenerateScalar, "DegenerateScalar"},
	{address.ErrInvalidAddress, "InvalidAddress"},
	{amount.ErrInvalidAmount, "InvalidAmount"},
	{fragment.ErrInvalidLevel, "InvalidLevel"},
	{fragment.ErrInvalidPools, "InvalidPools"},
	{descriptor.ErrCorruptDescriptor, "CorruptDescriptor"},
	{descriptor.ErrDecryptionFailed, "DecryptionFailed"},
	{threshold.ErrInvalidParameters, "InvalidParameters"},
	{threshold.ErrInsufficientShares, "InsufficientShares"},
	{threshold.ErrShareReconstructionFailed, "ShareReconstructionFailed"},
}

// Kind returns the name of the kind of err, the empty string for a nil error,
// or KindUnknown.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return KindUnknown
}
