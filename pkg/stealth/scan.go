package stealth

import (
	"fmt"

	"github.com/taurusgroup/stealth-payments/pkg/address"
	"github.com/taurusgroup/stealth-payments/pkg/math/curve"
)

// Announcement is what a sender publishes next to a payment to a stealth address.
type Announcement struct {
	Address            address.Address
	EphemeralPublicKey *curve.Point
	ViewTag            byte
}

// Announcement returns the public data of a.
func (a *Address) Announcement() Announcement {
	return Announcement{
		Address:            a.Address,
		EphemeralPublicKey: a.EphemeralPublicKey,
		ViewTag:            a.ViewTag,
	}
}

// Scanner detects payments for one recipient. It needs the view private key and
// the spend public key only, so it can run without the ability to spend.
type Scanner struct {
	view  *KeyPair
	spend *curve.Point
}

// NewScanner returns a Scanner for the given main key pair.
func NewScanner(main *MainKeyPair) (*Scanner, error) {
	view, err := main.ViewKey()
	if err != nil {
		return nil, err
	}
	spend, err := main.SpendKey()
	if err != nil {
		view.Private.Zero()
		return nil, err
	}
	spend.Private.Zero()
	return &Scanner{view: view, spend: spend.Public}, nil
}

// Check reports whether ann designates a payment to the scanner's recipient.
//
// A mismatching view tag rejects the announcement before the stealth key is recomputed.
func (sc *Scanner) Check(ann Announcement) (bool, error) {
	if ann.EphemeralPublicKey == nil || ann.EphemeralPublicKey.IsIdentity() {
		return false, ErrInvalidPublicKey
	}
	s, viewTag, err := sharedSecret(sc.view.Private.Act(ann.EphemeralPublicKey))
	if err != nil {
		return false, err
	}
	if viewTag != ann.ViewTag {
		return false, nil
	}
	addr, err := address.FromPublicKey(sc.spend.Add(s.ActOnBase()))
	if err != nil {
		return false, fmt.Errorf("stealth.Scanner.Check: %w", err)
	}
	return addr == ann.Address, nil
}
