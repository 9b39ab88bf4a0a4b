// Package fragment splits deposits into equal fragments and attaches confidential
// descriptors to them, producing what a chain submission needs.
package fragment

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/stealth-payments/pkg/amount"
)

const (
	MinLevel = 1
	MaxLevel = 4
)

// ErrInvalidLevel is returned for a privacy level outside [MinLevel, MaxLevel].
var ErrInvalidLevel = errors.New("invalid level")

// SplitForLevel divides total into level fragments of total / level wei.
//
// The remainder of the division is added to the first fragment, so that the
// fragments always sum to total exactly. Every fragment must be non-zero.
func SplitForLevel(total amount.Amount, level int) ([]amount.Amount, error) {
	if level < MinLevel || level > MaxLevel {
		return nil, fmt.Errorf("%w: %d is not in [%d, %d]", ErrInvalidLevel, level, MinLevel, MaxLevel)
	}
	quotient, remainder := total.DivMod(uint64(level))
	if quotient.IsZero() {
		return nil, fmt.Errorf("%w: total cannot be split into %d non-zero fragments", amount.ErrInvalidAmount, level)
	}

	amounts := make([]amount.Amount, level)
	for i := range amounts {
		amounts[i] = quotient
	}
	first, err := quotient.Add(remainder)
	if err != nil {
		return nil, err
	}
	amounts[0] = first
	return amounts, nil
}
