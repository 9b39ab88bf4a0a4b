package fragment

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/taurusgroup/stealth-payments/pkg/address"
	"github.com/taurusgroup/stealth-payments/pkg/amount"
	"github.com/taurusgroup/stealth-payments/pkg/descriptor"
	"github.com/taurusgroup/stealth-payments/pkg/pool"
	"github.com/taurusgroup/stealth-payments/pkg/threshold"
)

// Policy decides how descriptors are attached to the fragments of a deposit.
type Policy string

const (
	// PerFragment creates an independent descriptor, for the fragment amount, per fragment.
	PerFragment Policy = "per-fragment"
	// Shared creates a single descriptor for the total, referenced by every fragment.
	Shared Policy = "shared"
)

// ParsePolicy returns the Policy named s. The empty string selects PerFragment.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PerFragment:
		return PerFragment, nil
	case Shared:
		return Shared, nil
	default:
		return "", fmt.Errorf("fragment: unknown policy %q", s)
	}
}

// Config parametrizes a Builder.
type Config struct {
	Policy Policy
	// Shares and Threshold are the (n, t) used to split each descriptor key.
	Shares, Threshold int
}

// DefaultConfig is one descriptor per fragment, with keys split 2-of-3.
func DefaultConfig() Config {
	return Config{
		Policy:    PerFragment,
		Shares:    threshold.DefaultShares,
		Threshold: threshold.DefaultThreshold,
	}
}

// Builder creates deposit and withdrawal plans.
//
// A Builder is safe for concurrent use.
type Builder struct {
	config Config
	pool   *pool.Pool
	rand   io.Reader
}

// NewBuilder returns a Builder generating fragments on pl, which may be nil.
//
// If rand is nil, crypto/rand is used.
func NewBuilder(config Config, pl *pool.Pool, rand io.Reader) (*Builder, error) {
	policy, err := ParsePolicy(string(config.Policy))
	if err != nil {
		return nil, err
	}
	config.Policy = policy
	if err = threshold.ValidateParameters(config.Shares, config.Threshold); err != nil {
		return nil, fmt.Errorf("fragment.NewBuilder: %w", err)
	}
	if rand == nil {
		rand = defaultRand
	}
	return &Builder{
		config: config,
		pool:   pl,
		rand:   pool.NewLockedReader(rand),
	}, nil
}

var defaultRand io.Reader = rand.Reader

// Config returns the configuration of b.
func (b *Builder) Config() Config {
	return b.config
}

// Deposit splits total into level fragments for receiver and creates their descriptors.
func (b *Builder) Deposit(sender, receiver, total string, level int) (*Plan, error) {
	recipient, sum, err := parseRequest(sender, receiver, total)
	if err != nil {
		return nil, err
	}
	amounts, err := SplitForLevel(sum, level)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Recipient: recipient,
		Level:     level,
		Total:     sum,
		Fragments: make([]Fragment, level),
	}

	if b.config.Policy == Shared {
		d, shares, err := b.protect(sender, receiver, sum)
		if err != nil {
			return nil, err
		}
		for i := range plan.Fragments {
			plan.Fragments[i] = Fragment{Index: i, Amount: amounts[i], Descriptor: d, Shares: shares}
		}
		return plan, nil
	}

	type result struct {
		fragment Fragment
		err      error
	}
	results := pool.Parallelize(b.pool, level, func(i int) result {
		d, shares, err := b.protect(sender, receiver, amounts[i])
		if err != nil {
			return result{err: fmt.Errorf("fragment %d: %w", i, err)}
		}
		return result{fragment: Fragment{Index: i, Amount: amounts[i], Descriptor: d, Shares: shares}}
	})
	for i, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		plan.Fragments[i] = r.fragment
	}
	return plan, nil
}

// Withdrawal creates the single descriptor recording a withdrawal of total to receiver.
func (b *Builder) Withdrawal(sender, receiver, total string) (*Plan, error) {
	recipient, sum, err := parseRequest(sender, receiver, total)
	if err != nil {
		return nil, err
	}
	d, shares, err := b.protect(sender, receiver, sum)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Recipient: recipient,
		Total:     sum,
		Fragments: []Fragment{{Index: 0, Amount: sum, Descriptor: d, Shares: shares}},
	}, nil
}

// protect creates a descriptor for a and splits its key, which is then erased.
func (b *Builder) protect(sender, receiver string, a amount.Amount) (*descriptor.Descriptor, []threshold.Share, error) {
	d, err := descriptor.Create(b.rand, sender, receiver, a.String())
	if err != nil {
		return nil, nil, err
	}
	defer d.Zero()
	shares, err := threshold.Split(b.rand, d.Key, b.config.Shares, b.config.Threshold)
	if err != nil {
		return nil, nil, err
	}
	return d, shares, nil
}

func parseRequest(sender, receiver, total string) (address.Address, amount.Amount, error) {
	if _, err := address.Parse(sender); err != nil {
		return address.Address{}, amount.Amount{}, fmt.Errorf("sender: %w", err)
	}
	recipient, err := address.Parse(receiver)
	if err != nil {
		return address.Address{}, amount.Amount{}, fmt.Errorf("receiver: %w", err)
	}
	sum, err := amount.ParsePositive(total)
	if err != nil {
		return address.Address{}, amount.Amount{}, err
	}
	return recipient, sum, nil
}
