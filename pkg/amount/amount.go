// Package amount implements token amounts as fixed-point decimals with 18 fractional digits,
// stored as an integer number of base units (wei).
package amount

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/taurusgroup/stealth-payments/internal/params"
)

// ErrInvalidAmount is returned for malformed or out of range amounts.
var ErrInvalidAmount = errors.New("invalid amount")

// Decimals is the number of fractional digits of an amount.
const Decimals = params.Decimals

var unit = uint256.NewInt(1_000_000_000_000_000_000)

// Amount is a non-negative number of base units, at most 2²⁵⁶-1.
type Amount struct {
	wei uint256.Int
}

// FromWei returns the amount of w base units.
func FromWei(w *uint256.Int) Amount {
	var a Amount
	a.wei.Set(w)
	return a
}

// FromUint64 returns the amount of w base units.
func FromUint64(w uint64) Amount {
	var a Amount
	a.wei.SetUint64(w)
	return a
}

// Parse decodes a decimal string such as "100", "100.0" or "0.000000000000000001".
//
// Signs and exponents are rejected, as are more than 18 fractional digits.
func Parse(s string) (Amount, error) {
	var a Amount
	integer, fraction, hasPoint := strings.Cut(strings.TrimSpace(s), ".")
	if integer == "" || !isDigits(integer) {
		return a, fmt.Errorf("%w: integer part is not a decimal number", ErrInvalidAmount)
	}
	if hasPoint && (fraction == "" || !isDigits(fraction)) {
		return a, fmt.Errorf("%w: fractional part is not a decimal number", ErrInvalidAmount)
	}
	if len(fraction) > Decimals {
		return a, fmt.Errorf("%w: more than %d decimals", ErrInvalidAmount, Decimals)
	}
	wei, err := uint256.FromDecimal(integer + fraction + strings.Repeat("0", Decimals-len(fraction)))
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	a.wei.Set(wei)
	return a, nil
}

// ParsePositive is Parse, additionally rejecting 0.
func ParsePositive(s string) (Amount, error) {
	a, err := Parse(s)
	if err != nil {
		return a, err
	}
	if a.IsZero() {
		return a, fmt.Errorf("%w: not positive", ErrInvalidAmount)
	}
	return a, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Wei returns a copy of the number of base units in a.
func (a Amount) Wei() *uint256.Int {
	return a.wei.Clone()
}

// IsZero returns true if a = 0.
func (a Amount) IsZero() bool {
	return a.wei.IsZero()
}

// Cmp returns -1, 0, or 1 depending on whether a < b, a = b, or a > b.
func (a Amount) Cmp(b Amount) int {
	return a.wei.Cmp(&b.wei)
}

// Add returns a + b, failing if the sum does not fit in 256 bits.
func (a Amount) Add(b Amount) (Amount, error) {
	var out Amount
	if _, overflow := out.wei.AddOverflow(&a.wei, &b.wei); overflow {
		return Amount{}, fmt.Errorf("%w: sum overflows 256 bits", ErrInvalidAmount)
	}
	return out, nil
}

// DivMod returns the quotient and remainder of a divided into n parts, n > 0.
func (a Amount) DivMod(n uint64) (quotient, remainder Amount) {
	divisor := uint256.NewInt(n)
	quotient.wei.DivMod(&a.wei, divisor, &remainder.wei)
	return quotient, remainder
}

// String formats a with all significant fractional digits and at least one,
// so that 100 tokens is "100.0".
func (a Amount) String() string {
	var integer, fraction uint256.Int
	integer.DivMod(&a.wei, unit, &fraction)
	digits := fraction.Dec()
	digits = strings.Repeat("0", Decimals-len(digits)) + digits
	digits = strings.TrimRight(digits, "0")
	if digits == "" {
		digits = "0"
	}
	return integer.Dec() + "." + digits
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
