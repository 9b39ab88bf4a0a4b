package paymeta

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/stealth-payments/internal/privacylog"
	"github.com/taurusgroup/stealth-payments/internal/test"
	"github.com/taurusgroup/stealth-payments/pkg/address"
	"github.com/taurusgroup/stealth-payments/pkg/amount"
	"github.com/taurusgroup/stealth-payments/pkg/descriptor"
	"github.com/taurusgroup/stealth-payments/pkg/fragment"
	"github.com/taurusgroup/stealth-payments/pkg/math/curve"
	"github.com/taurusgroup/stealth-payments/pkg/pool"
	"github.com/taurusgroup/stealth-payments/pkg/stealth"
	"github.com/taurusgroup/stealth-payments/pkg/threshold"
)

const (
	sender   = test.Sender
	receiver = test.Receiver
)

func newService(t *testing.T) (*Service, *prometheus.Registry, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(privacylog.WrapHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	reg := prometheus.NewRegistry()
	s, err := New(Options{Logger: logger, Registerer: reg})
	require.NoError(t, err)
	return s, reg, &buf
}

func TestService_DescriptorScenario(t *testing.T) {
	s, reg, logs := newService(t)

	d, err := s.CreateDescriptor(sender, receiver, "100.0")
	require.NoError(t, err)
	commitment, err := hex.DecodeString(d.Commitment[2:])
	require.NoError(t, err)
	assert.Len(t, commitment, 32)

	shares, err := s.Split(d.SymmetricKey, 3, 2)
	require.NoError(t, err)
	require.Len(t, shares, 3)

	key, err := s.Combine([]string{shares[0], shares[2]})
	require.NoError(t, err)
	assert.Equal(t, d.SymmetricKey, key)

	payload, err := s.OpenDescriptor(d.OpaqueID, key)
	require.NoError(t, err)
	assert.Equal(t, &descriptor.Payload{Sender: sender, Receiver: receiver, Amount: "100.0"}, payload)

	_, err = s.Combine(shares[1:2])
	assert.ErrorIs(t, err, threshold.ErrInsufficientShares)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.operations.WithLabelValues("create_descriptor")))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.operations.WithLabelValues("combine")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.failures.WithLabelValues("combine", "InsufficientShares")))

	count, err := testutil.GatherAndCount(reg, "paymeta_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	assert.NotContains(t, logs.String(), d.SymmetricKey)
	assert.NotContains(t, logs.String(), receiver)
}

func TestService_StealthRoundTrip(t *testing.T) {
	s, _, _ := newService(t)
	main, err := stealth.GenerateMainKeyPair(rand.Reader)
	require.NoError(t, err)

	a, err := s.GenerateStealthAddress(main.Public.Hex())
	require.NoError(t, err)
	assert.True(t, address.IsValid(a.StealthAddress))

	mainPriv := main.Private.Bytes()
	privHex, err := s.RecoverStealthPrivateKey(hex.EncodeToString(mainPriv[:]), a.EphemeralPublicKey)
	require.NoError(t, err)

	priv, err := hex.DecodeString(privHex[2:])
	require.NoError(t, err)
	x := curve.NewScalar()
	require.NoError(t, x.UnmarshalBinary(priv))
	assert.Equal(t, a.StealthPublicKey, x.ActOnBase().Hex())

	_, err = s.GenerateStealthAddress("not-a-pubkey")
	assert.ErrorIs(t, err, stealth.ErrInvalidPublicKey)
	assert.Equal(t, "InvalidPublicKey", Kind(err))
}

func TestService_SplitForLevel(t *testing.T) {
	s, _, _ := newService(t)
	amounts, err := s.SplitForLevel("100", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"25.0", "25.0", "25.0", "25.0"}, amounts)

	_, err = s.SplitForLevel("100", 0)
	assert.ErrorIs(t, err, fragment.ErrInvalidLevel)
	_, err = s.SplitForLevel("100", 5)
	assert.ErrorIs(t, err, fragment.ErrInvalidLevel)
	_, err = s.SplitForLevel("0", 2)
	assert.ErrorIs(t, err, amount.ErrInvalidAmount)
}

func TestService_SplitRandom(t *testing.T) {
	s, err := New(Options{Rand: test.Reader("split random")})
	require.NoError(t, err)
	parts, err := s.SplitRandom("100", 4)
	require.NoError(t, err)
	require.Len(t, parts, 4)

	total := amount.FromUint64(0)
	for _, p := range parts {
		a, err := amount.ParsePositive(p)
		require.NoError(t, err)
		total, err = total.Add(a)
		require.NoError(t, err)
	}
	assert.Equal(t, "100.0", total.String())

	_, err = s.SplitRandom("100", 5)
	assert.Equal(t, "InvalidPools", Kind(err))
	_, err = s.SplitRandom("0.000000000000000001", 2)
	assert.Equal(t, "InvalidAmount", Kind(err))
}

func TestService_DepositWithdrawal(t *testing.T) {
	pl := pool.NewPool(2)
	defer pl.TearDown()
	s, err := New(Options{Pool: pl})
	require.NoError(t, err)

	plan, err := s.Deposit(sender, receiver, "10", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Level)
	require.Len(t, plan.OpaqueIDs, 2)
	require.Len(t, plan.Shares, 2)

	for i, id := range plan.OpaqueIDs {
		assert.Equal(t, descriptor.Commit(id).Hex(), plan.Commitments[i])
		key, err := s.Combine(plan.Shares[i][1:])
		require.NoError(t, err)
		payload, err := s.OpenDescriptor(id, key)
		require.NoError(t, err)
		assert.Equal(t, "5.0", payload.Amount)
	}

	w, err := s.Withdrawal(sender, receiver, "3")
	require.NoError(t, err)
	assert.Zero(t, w.Level)
	assert.Len(t, w.Commitments, 1)

	_, err = s.Deposit(sender, receiver, "0", 2)
	assert.Equal(t, "InvalidAmount", Kind(err))
}

func TestNew_SanitizesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := New(Options{Logger: logger})
	require.NoError(t, err)

	_, err = s.CreateDescriptor(sender, receiver, "0")
	require.Error(t, err)
	_, err = s.Deposit(sender, receiver, "0.000000000000000003", 4)
	require.ErrorIs(t, err, amount.ErrInvalidAmount)
	_, err = s.Deposit(sender, receiver, "12.5x", 2)
	require.ErrorIs(t, err, amount.ErrInvalidAmount)
	_, err = s.Withdrawal(sender, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeX", "1")
	require.Error(t, err)

	out := strings.ToLower(buf.String())
	require.NotEmpty(t, out)
	assert.Contains(t, out, "invalidamount")
	for _, leaked := range []string{
		strings.ToLower(sender[2:]),
		strings.ToLower(receiver[2:]),
		"5aaeb6053f3e94c9b9a09f33669435e7ef1beaex",
		"000000000000000003",
		"12.5x",
	} {
		assert.NotContains(t, out, leaked)
	}
}

func TestService_OpenFailures(t *testing.T) {
	s, _, _ := newService(t)
	d, err := s.CreateDescriptor(sender, receiver, "1")
	require.NoError(t, err)

	other, err := s.CreateDescriptor(sender, receiver, "1")
	require.NoError(t, err)
	_, err = s.OpenDescriptor(d.OpaqueID, other.SymmetricKey)
	assert.Equal(t, "DecryptionFailed", Kind(err))

	_, err = s.OpenDescriptor("xyz", d.SymmetricKey)
	assert.Equal(t, "CorruptDescriptor", Kind(err))
}

func TestNew_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(Options{Registerer: reg})
	require.NoError(t, err)
	b, err := New(Options{Registerer: reg})
	require.NoError(t, err)

	_, err = a.SplitForLevel("1", 1)
	require.NoError(t, err)
	_, err = b.SplitForLevel("1", 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(a.metrics.operations.WithLabelValues("split_for_level")))
}

func TestNew_InvalidFragments(t *testing.T) {
	_, err := New(Options{Fragments: &fragment.Config{Shares: 1, Threshold: 1}})
	assert.ErrorIs(t, err, threshold.ErrInvalidParameters)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, KindUnknown, Kind(errors.New("boom")))
	assert.Equal(t, "ShareReconstructionFailed", Kind(fmt.Errorf("wrapped: %w", threshold.ErrShareReconstructionFailed)))
	assert.Equal(t, "InvalidAddress", Kind(address.ErrInvalidAddress))
	assert.Equal(t, "DegenerateScalar", Kind(stealth.ErrDegenerateScalar))
}
