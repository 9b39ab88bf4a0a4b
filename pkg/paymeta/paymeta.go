// Package paymeta exposes the confidential payment core over hex and decimal strings,
// the form in which front ends exchange it.
//
// Every call is counted, and failures are logged with their error kind. Key
// material is never logged.
package paymeta

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/taurusgroup/stealth-payments/internal/privacylog"
	"github.com/taurusgroup/stealth-payments/pkg/amount"
	"github.com/taurusgroup/stealth-payments/pkg/descriptor"
	"github.com/taurusgroup/stealth-payments/pkg/fragment"
	"github.com/taurusgroup/stealth-payments/pkg/pool"
	"github.com/taurusgroup/stealth-payments/pkg/stealth"
	"github.com/taurusgroup/stealth-payments/pkg/threshold"
)

// Options configures a Service. The zero value is usable.
type Options struct {
	// Logger defaults to slog.Default(). Its handler is wrapped by
	// privacylog unless it already is a privacylog.SanitizingHandler.
	Logger *slog.Logger
	// Registerer receives the counters of the Service, if not nil.
	Registerer prometheus.Registerer
	// Pool parallelizes fragment generation, if not nil.
	Pool *pool.Pool
	// Rand defaults to crypto/rand.
	Rand io.Reader
	// Fragments defaults to fragment.DefaultConfig().
	Fragments *fragment.Config
}

// Service implements the external operations of the payment core.
type Service struct {
	logger  *slog.Logger
	rand    io.Reader
	builder *fragment.Builder
	metrics *metrics
}

func New(opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if _, ok := logger.Handler().(*privacylog.SanitizingHandler); !ok {
		logger = slog.New(privacylog.WrapHandler(logger.Handler()))
	}
	r := opts.Rand
	if r == nil {
		r = rand.Reader
	}
	r = pool.NewLockedReader(r)

	config := fragment.DefaultConfig()
	if opts.Fragments != nil {
		config = *opts.Fragments
	}
	builder, err := fragment.NewBuilder(config, opts.Pool, r)
	if err != nil {
		return nil, fmt.Errorf("paymeta.New: %w", err)
	}
	m, err := newMetrics(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("paymeta.New: %w", err)
	}
	return &Service{
		logger:  logger.With("component", "paymeta"),
		rand:    r,
		builder: builder,
		metrics: m,
	}, nil
}

func (s *Service) done(op string, err error, attrs ...any) {
	s.metrics.observe(op, err)
	if err != nil {
		s.logger.Warn("operation failed", append([]any{"op", op, "kind", Kind(err), "error", err}, attrs...)...)
		return
	}
	s.logger.Debug("operation succeeded", append([]any{"op", op}, attrs...)...)
}

// StealthAddress is the result of GenerateStealthAddress.
type StealthAddress struct {
	StealthAddress     string `json:"stealthAddress"`
	StealthPublicKey   string `json:"stealthPublicKey"`
	EphemeralPublicKey string `json:"ephemeralPublicKey"`
	ViewTag            string `json:"viewTag"`
}

// GenerateStealthAddress returns a one-time address for the owner of mainPublicKey,
// given in hex or as a meta-address.
func (s *Service) GenerateStealthAddress(mainPublicKey string) (_ *StealthAddress, err error) {
	defer func() { s.done("generate_stealth_address", err) }()

	a, err := stealth.GenerateHex(s.rand, mainPublicKey)
	if err != nil {
		return nil, err
	}
	return &StealthAddress{
		StealthAddress:     a.Address.Hex(),
		StealthPublicKey:   a.StealthPublicKey.Hex(),
		EphemeralPublicKey: a.EphemeralPublicKey.Hex(),
		ViewTag:            fmt.Sprintf("0x%02x", a.ViewTag),
	}, nil
}

// RecoverStealthPrivateKey returns, in hex, the private key of the stealth address
// announced with ephemeralPublicKey.
func (s *Service) RecoverStealthPrivateKey(mainPrivateKey, ephemeralPublicKey string) (_ string, err error) {
	defer func() { s.done("recover_stealth_private_key", err) }()

	main, err := stealth.ParseMainPrivateKeyHex(mainPrivateKey)
	if err != nil {
		return "", err
	}
	defer main.Private.Zero()
	ephemeral, err := stealth.ParsePublicKeyHex(ephemeralPublicKey)
	if err != nil {
		return "", err
	}
	key, err := stealth.Recover(main, ephemeral)
	if err != nil {
		return "", err
	}
	defer key.Zero()
	b := key.Bytes()
	return "0x" + hex.EncodeToString(b[:]), nil
}

// Descriptor is the result of CreateDescriptor.
type Descriptor struct {
	OpaqueID     string `json:"opaqueId"`
	Commitment   string `json:"chainCommitment"`
	SymmetricKey string `json:"symmetricKey"`
}

// CreateDescriptor encrypts {sender, receiver, amount} under a fresh key.
//
// The key is returned so that it can be split; callers must not persist it.
func (s *Service) CreateDescriptor(sender, receiver, amount string) (_ *Descriptor, err error) {
	defer func() { s.done("create_descriptor", err, "sender", sender, "receiver", receiver) }()

	d, err := descriptor.Create(s.rand, sender, receiver, amount)
	if err != nil {
		return nil, err
	}
	defer d.Zero()
	return &Descriptor{
		OpaqueID:     d.OpaqueID,
		Commitment:   d.Commitment.Hex(),
		SymmetricKey: hex.EncodeToString(d.Key),
	}, nil
}

// OpenDescriptor decrypts opaqueID with a key given in hex.
func (s *Service) OpenDescriptor(opaqueID, symmetricKey string) (_ *descriptor.Payload, err error) {
	defer func() { s.done("open_descriptor", err) }()
	return descriptor.OpenHex(opaqueID, symmetricKey)
}

// Split shares a key given in hex into n shares, t of which recover it.
func (s *Service) Split(symmetricKey string, n, t int) (_ []string, err error) {
	defer func() { s.done("split", err, "n", n, "t", t) }()

	key, err := hex.DecodeString(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("%w: key is not hex", threshold.ErrInvalidParameters)
	}
	defer func() {
		for i := range key {
			key[i] = 0
		}
	}()
	shares, err := threshold.Split(s.rand, key, n, t)
	if err != nil {
		return nil, err
	}
	return encodeShares(shares)
}

// Combine recovers a key from shares produced by Split, and returns it in hex.
func (s *Service) Combine(shares []string) (_ string, err error) {
	defer func() { s.done("combine", err, "count", len(shares)) }()

	decoded := make([]threshold.Share, 0, len(shares))
	for _, h := range shares {
		share, err := threshold.ParseShareHex(h)
		if err != nil {
			return "", err
		}
		decoded = append(decoded, *share)
	}
	key, err := threshold.Combine(decoded)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// SplitForLevel divides a decimal amount into level fragments, returned as decimals.
func (s *Service) SplitForLevel(total string, level int) (_ []string, err error) {
	defer func() { s.done("split_for_level", err, "level", level) }()

	a, err := amount.ParsePositive(total)
	if err != nil {
		return nil, err
	}
	amounts, err := fragment.SplitForLevel(a, level)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(amounts))
	for i, f := range amounts {
		out[i] = f.String()
	}
	return out, nil
}

// SplitRandom divides a decimal amount into pools parts of random sizes, returned as decimals.
func (s *Service) SplitRandom(total string, pools int) (_ []string, err error) {
	defer func() { s.done("split_random", err, "pools", pools) }()

	a, err := amount.ParsePositive(total)
	if err != nil {
		return nil, err
	}
	parts, err := fragment.SplitRandom(s.rand, a, pools)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p.String()
	}
	return out, nil
}

// Plan is a deposit or withdrawal ready for submission, along with the
// material handed to guardians.
type Plan struct {
	fragment.Submission
	// OpaqueIDs holds one descriptor per fragment, in fragment order.
	OpaqueIDs []string `json:"opaqueIds"`
	// Shares holds, for each fragment, the hex shares of its descriptor key.
	Shares [][]string `json:"shares"`
}

// Deposit builds the fragments of a deposit of total to receiver.
func (s *Service) Deposit(sender, receiver, total string, level int) (_ *Plan, err error) {
	defer func() { s.done("deposit", err, "sender", sender, "receiver", receiver, "level", level) }()

	plan, err := s.builder.Deposit(sender, receiver, total, level)
	if err != nil {
		return nil, err
	}
	return newPlan(plan)
}

// Withdrawal builds the single descriptor of a withdrawal of total to receiver.
func (s *Service) Withdrawal(sender, receiver, total string) (_ *Plan, err error) {
	defer func() { s.done("withdrawal", err, "sender", sender, "receiver", receiver) }()

	plan, err := s.builder.Withdrawal(sender, receiver, total)
	if err != nil {
		return nil, err
	}
	return newPlan(plan)
}

func newPlan(plan *fragment.Plan) (*Plan, error) {
	out := &Plan{
		Submission: plan.Submission(),
		OpaqueIDs:  make([]string, len(plan.Fragments)),
		Shares:     make([][]string, len(plan.Fragments)),
	}
	for i, f := range plan.Fragments {
		out.OpaqueIDs[i] = f.Descriptor.OpaqueID
		shares, err := encodeShares(f.Shares)
		if err != nil {
			return nil, err
		}
		out.Shares[i] = shares
	}
	return out, nil
}

func encodeShares(shares []threshold.Share) ([]string, error) {
	out := make([]string, len(shares))
	for i := range shares {
		h, err := shares[i].Hex()
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}
