package fragment

import (
	"github.com/taurusgroup/stealth-payments/pkg/address"
	"github.com/taurusgroup/stealth-payments/pkg/amount"
	"github.com/taurusgroup/stealth-payments/pkg/descriptor"
	"github.com/taurusgroup/stealth-payments/pkg/threshold"
)

// Fragment is one slice of a deposit, along with the descriptor recording it.
//
// The descriptor key has already been split into Shares and erased.
type Fragment struct {
	Index      int
	Amount     amount.Amount
	Descriptor *descriptor.Descriptor
	Shares     []threshold.Share
}

// Plan is the result of building a deposit or a withdrawal.
type Plan struct {
	Recipient address.Address
	// Level is the number of fragments of a deposit, and 0 for a withdrawal.
	Level     int
	Total     amount.Amount
	Fragments []Fragment
}

// IsDeposit reports whether p was built by Builder.Deposit.
func (p *Plan) IsDeposit() bool {
	return p.Level > 0
}

// Submission holds the values handed to the chain submission collaborator.
//
// Amounts are in wei, in decimal. Commitments are 0x prefixed hex, one per fragment.
type Submission struct {
	Recipient   string   `json:"recipient"`
	Level       int      `json:"level,omitempty"`
	Total       string   `json:"total"`
	Amounts     []string `json:"amounts"`
	Commitments []string `json:"commitments"`
}

// Submission returns the chain facing view of p. It contains no key material.
func (p *Plan) Submission() Submission {
	s := Submission{
		Recipient:   p.Recipient.Hex(),
		Level:       p.Level,
		Total:       p.Total.Wei().Dec(),
		Amounts:     make([]string, len(p.Fragments)),
		Commitments: make([]string, len(p.Fragments)),
	}
	for i, f := range p.Fragments {
		s.Amounts[i] = f.Amount.Wei().Dec()
		s.Commitments[i] = f.Descriptor.Commitment.Hex()
	}
	return s
}
