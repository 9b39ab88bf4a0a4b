package fragment

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/stealth-payments/internal/test"
	"github.com/taurusgroup/stealth-payments/pkg/address"
	"github.com/taurusgroup/stealth-payments/pkg/amount"
	"github.com/taurusgroup/stealth-payments/pkg/descriptor"
	"github.com/taurusgroup/stealth-payments/pkg/pool"
	"github.com/taurusgroup/stealth-payments/pkg/threshold"
	"golang.org/x/sync/errgroup"
)

const (
	sender   = test.Sender
	receiver = test.Receiver
)

func mustParse(t *testing.T, s string) amount.Amount {
	a, err := amount.Parse(s)
	require.NoError(t, err)
	return a
}

func sum(t *testing.T, amounts []amount.Amount) amount.Amount {
	total := amount.FromUint64(0)
	for _, a := range amounts {
		var err error
		total, err = total.Add(a)
		require.NoError(t, err)
	}
	return total
}

func TestSplitForLevel(t *testing.T) {
	total := mustParse(t, "100")
	amounts, err := SplitForLevel(total, 4)
	require.NoError(t, err)
	require.Len(t, amounts, 4)
	for _, a := range amounts {
		assert.Equal(t, "25.0", a.String())
	}
	assert.Equal(t, 0, sum(t, amounts).Cmp(total))
}

func TestSplitForLevel_Remainder(t *testing.T) {
	for _, s := range []string{"100", "1", "0.000000000000000010", "7.123456789012345678"} {
		total := mustParse(t, s)
		for level := MinLevel; level <= MaxLevel; level++ {
			amounts, err := SplitForLevel(total, level)
			require.NoError(t, err)
			assert.Equal(t, 0, sum(t, amounts).Cmp(total), "%s / %d", s, level)
			for _, a := range amounts[1:] {
				assert.Equal(t, 0, a.Cmp(amounts[1]))
				assert.True(t, amounts[0].Cmp(a) >= 0)
			}
		}
	}

	amounts, err := SplitForLevel(mustParse(t, "100"), 3)
	require.NoError(t, err)
	assert.Equal(t, "33.333333333333333334", amounts[0].String())
	assert.Equal(t, "33.333333333333333333", amounts[1].String())
}

func TestSplitForLevel_InvalidLevel(t *testing.T) {
	total := mustParse(t, "100")
	for _, level := range []int{-1, 0, 5} {
		_, err := SplitForLevel(total, level)
		assert.ErrorIs(t, err, ErrInvalidLevel, "level %d", level)
	}
}

func TestSplitForLevel_TooSmall(t *testing.T) {
	_, err := SplitForLevel(amount.FromUint64(3), 4)
	assert.ErrorIs(t, err, amount.ErrInvalidAmount)
	_, err = SplitForLevel(amount.FromUint64(0), 1)
	assert.ErrorIs(t, err, amount.ErrInvalidAmount)

	_, err = SplitForLevel(mustParse(t, "0.000000000000000003"), 4)
	require.ErrorIs(t, err, amount.ErrInvalidAmount)
	assert.NotContains(t, err.Error(), "0.000000000000000003")
}

func openFragment(t *testing.T, f Fragment) *descriptor.Payload {
	key, err := threshold.Combine(f.Shares[:2])
	require.NoError(t, err)
	payload, err := descriptor.Open(f.Descriptor.OpaqueID, key)
	require.NoError(t, err)
	return payload
}

func TestDeposit_PerFragment(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	b, err := NewBuilder(DefaultConfig(), pl, nil)
	require.NoError(t, err)

	plan, err := b.Deposit(sender, receiver, "100.0", 4)
	require.NoError(t, err)
	assert.True(t, plan.IsDeposit())
	require.Len(t, plan.Fragments, 4)

	commitments := make(map[descriptor.Commitment]bool)
	for i, f := range plan.Fragments {
		assert.Equal(t, i, f.Index)
		assert.Nil(t, f.Descriptor.Key)
		assert.Len(t, f.Shares, threshold.DefaultShares)
		commitments[f.Descriptor.Commitment] = true

		payload := openFragment(t, f)
		assert.Equal(t, sender, payload.Sender)
		assert.Equal(t, receiver, payload.Receiver)
		assert.Equal(t, "25.0", payload.Amount)
	}
	assert.Len(t, commitments, 4)

	s := plan.Submission()
	assert.Equal(t, receiver, s.Recipient)
	assert.Equal(t, 4, s.Level)
	assert.Equal(t, "100000000000000000000", s.Total)
	assert.Equal(t, []string{"25000000000000000000", "25000000000000000000", "25000000000000000000", "25000000000000000000"}, s.Amounts)
	assert.Len(t, s.Commitments, 4)
}

func TestDeposit_Shared(t *testing.T) {
	config := DefaultConfig()
	config.Policy = Shared
	b, err := NewBuilder(config, nil, rand.Reader)
	require.NoError(t, err)

	plan, err := b.Deposit(sender, receiver, "100", 3)
	require.NoError(t, err)
	require.Len(t, plan.Fragments, 3)
	for _, f := range plan.Fragments {
		assert.Equal(t, plan.Fragments[0].Descriptor.Commitment, f.Descriptor.Commitment)
	}
	assert.Equal(t, "100.0", openFragment(t, plan.Fragments[2]).Amount)
}

func TestDeposit_Invalid(t *testing.T) {
	b, err := NewBuilder(DefaultConfig(), nil, nil)
	require.NoError(t, err)

	_, err = b.Deposit(sender, receiver, "100", 5)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	_, err = b.Deposit(sender, receiver, "0", 1)
	assert.ErrorIs(t, err, amount.ErrInvalidAmount)
	_, err = b.Deposit("0xSENDER", receiver, "1", 1)
	assert.ErrorIs(t, err, address.ErrInvalidAddress)
	_, err = b.Deposit(sender, "0xRECEIVER", "1", 1)
	assert.ErrorIs(t, err, address.ErrInvalidAddress)
}

func TestWithdrawal(t *testing.T) {
	b, err := NewBuilder(DefaultConfig(), nil, nil)
	require.NoError(t, err)

	plan, err := b.Withdrawal(sender, receiver, "12.5")
	require.NoError(t, err)
	assert.False(t, plan.IsDeposit())
	require.Len(t, plan.Fragments, 1)
	assert.Equal(t, "12.5", openFragment(t, plan.Fragments[0]).Amount)

	s := plan.Submission()
	assert.Zero(t, s.Level)
	assert.Equal(t, []string{"12500000000000000000"}, s.Amounts)

	_, err = b.Withdrawal(sender, receiver, "0")
	assert.ErrorIs(t, err, amount.ErrInvalidAmount)
}

func TestNewBuilder_Invalid(t *testing.T) {
	_, err := NewBuilder(Config{Policy: "round-robin", Shares: 3, Threshold: 2}, nil, nil)
	assert.Error(t, err)
	_, err = NewBuilder(Config{Shares: 3, Threshold: 4}, nil, nil)
	assert.ErrorIs(t, err, threshold.ErrInvalidParameters)

	b, err := NewBuilder(Config{Shares: 5, Threshold: 3}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, PerFragment, b.Config().Policy)
}

func TestBuilder_Concurrent(t *testing.T) {
	pl := pool.NewPool(4)
	defer pl.TearDown()
	b, err := NewBuilder(DefaultConfig(), pl, nil)
	require.NoError(t, err)

	plans := make([]*Plan, 8)
	var eg errgroup.Group
	for i := range plans {
		i := i
		eg.Go(func() error {
			var err error
			plans[i], err = b.Deposit(sender, receiver, "10", i%MaxLevel+1)
			return err
		})
	}
	require.NoError(t, eg.Wait())

	seen := make(map[descriptor.Commitment]bool)
	for i, plan := range plans {
		assert.Len(t, plan.Fragments, i%MaxLevel+1)
		for _, f := range plan.Fragments {
			assert.False(t, seen[f.Descriptor.Commitment])
			seen[f.Descriptor.Commitment] = true
		}
	}
}

func TestSplitRandom(t *testing.T) {
	for _, s := range []string{"100", "1", "0.000000000000000004", "7.123456789012345678"} {
		total := mustParse(t, s)
		for pools := 1; pools <= MaxPools; pools++ {
			parts, err := SplitRandom(rand.Reader, total, pools)
			require.NoError(t, err)
			require.Len(t, parts, pools)
			assert.Equal(t, 0, sum(t, parts).Cmp(total), "%s / %d", s, pools)
			for _, p := range parts {
				assert.False(t, p.IsZero(), "%s / %d", s, pools)
			}
		}
	}
}

func TestSplitRandom_Reproducible(t *testing.T) {
	total := mustParse(t, "100")
	a, err := SplitRandom(test.Reader("pools"), total, MaxPools)
	require.NoError(t, err)
	b, err := SplitRandom(test.Reader("pools"), total, MaxPools)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := SplitRandom(test.Reader("other pools"), total, MaxPools)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSplitRandom_Invalid(t *testing.T) {
	total := mustParse(t, "100")
	for _, pools := range []int{-1, 0, MaxPools + 1} {
		_, err := SplitRandom(rand.Reader, total, pools)
		assert.ErrorIs(t, err, ErrInvalidPools, "pools %d", pools)
	}

	_, err := SplitRandom(rand.Reader, amount.FromUint64(3), 4)
	assert.ErrorIs(t, err, amount.ErrInvalidAmount)
	_, err = SplitRandom(rand.Reader, amount.FromUint64(0), 1)
	assert.ErrorIs(t, err, amount.ErrInvalidAmount)

	_, err = SplitRandom(bytes.NewReader(nil), total, 2)
	assert.Error(t, err)
}
