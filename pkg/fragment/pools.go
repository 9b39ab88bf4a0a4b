package fragment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/holiman/uint256"
	"github.com/taurusgroup/stealth-payments/pkg/amount"
	"github.com/taurusgroup/stealth-payments/pkg/math/sample"
)

// MaxPools is the largest number of pools SplitRandom divides an amount into.
const MaxPools = 4

// ErrInvalidPools is returned for a pool count outside [1, MaxPools].
var ErrInvalidPools = errors.New("invalid pool count")

// SplitRandom divides total into pools non-zero parts of random sizes.
//
// Every part first receives 1 wei. The rest is cut at pools-1 uniform points of
// a 64 bit grid, so that the part sizes follow a flat Dirichlet distribution up
// to rounding. The last part absorbs the rounding, and the parts always sum to
// total exactly.
func SplitRandom(rand io.Reader, total amount.Amount, pools int) ([]amount.Amount, error) {
	if pools < 1 || pools > MaxPools {
		return nil, fmt.Errorf("%w: %d is not in [1, %d]", ErrInvalidPools, pools, MaxPools)
	}
	wei := total.Wei()
	if wei.LtUint64(uint64(pools)) {
		return nil, fmt.Errorf("%w: total cannot be split into %d non-zero parts", amount.ErrInvalidAmount, pools)
	}
	rest := new(uint256.Int).SubUint64(wei, uint64(pools))

	buf, err := sample.Bytes(rand, 8*(pools-1))
	if err != nil {
		return nil, fmt.Errorf("fragment.SplitRandom: %w", err)
	}
	cuts := make([]uint64, pools-1)
	for i := range cuts {
		cuts[i] = binary.BigEndian.Uint64(buf[8*i:])
	}
	slices.Sort(cuts)

	grid := new(uint256.Int).Lsh(uint256.NewInt(1), 64)
	parts := make([]amount.Amount, pools)
	remaining := wei.Clone()
	var previous uint64
	for i, cut := range cuts {
		// cut - previous < 2⁶⁴, so the quotient is at most rest
		part, _ := new(uint256.Int).MulDivOverflow(rest, uint256.NewInt(cut-previous), grid)
		part.AddUint64(part, 1)
		remaining.Sub(remaining, part)
		parts[i] = amount.FromWei(part)
		previous = cut
	}
	parts[pools-1] = amount.FromWei(remaining)
	return parts, nil
}
