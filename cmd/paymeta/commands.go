package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"io"

	"github.com/taurusgroup/stealth-payments/pkg/paymeta"
	"github.com/taurusgroup/stealth-payments/pkg/stealth"
	"golang.org/x/sync/errgroup"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (e *env) keygen(args []string) error {
	fs := newFlagSet("keygen")
	if err := fs.Parse(args); err != nil {
		return err
	}
	main, err := stealth.GenerateMainKeyPair(rand.Reader)
	if err != nil {
		return err
	}
	defer main.Private.Zero()
	meta, err := stealth.FormatMetaAddress(main.Public)
	if err != nil {
		return err
	}
	priv := main.Private.Bytes()
	return e.print(map[string]string{
		"mainPrivateKey": "0x" + hex.EncodeToString(priv[:]),
		"mainPublicKey":  main.Public.Hex(),
		"metaAddress":    meta,
	})
}

func (e *env) stealth(args []string) error {
	fs := newFlagSet("stealth")
	pub := fs.String("pub", "", "main public key, in hex or as a meta-address")
	count := fs.Int("count", 1, "number of addresses to generate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count < 1 {
		return errors.New("stealth: count must be positive")
	}

	addresses := make([]*paymeta.StealthAddress, *count)
	var eg errgroup.Group
	for i := range addresses {
		i := i
		eg.Go(func() error {
			var err error
			addresses[i], err = e.service.GenerateStealthAddress(*pub)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if *count == 1 {
		return e.print(addresses[0])
	}
	return e.print(addresses)
}

func (e *env) recover(args []string) error {
	fs := newFlagSet("recover")
	priv := fs.String("priv", "", "main private key, in hex")
	ephemeral := fs.String("ephemeral", "", "announced ephemeral public key, in hex")
	if err := fs.Parse(args); err != nil {
		return err
	}
	key, err := e.service.RecoverStealthPrivateKey(*priv, *ephemeral)
	if err != nil {
		return err
	}
	return e.print(map[string]string{"stealthPrivateKey": key})
}

func (e *env) descriptor(args []string) error {
	fs := newFlagSet("descriptor")
	sender := fs.String("sender", "", "sender address")
	receiver := fs.String("receiver", "", "receiver address")
	amount := fs.String("amount", "", "decimal amount")
	printKey := fs.Bool("print-key", false, "also print the symmetric key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	d, err := e.service.CreateDescriptor(*sender, *receiver, *amount)
	if err != nil {
		return err
	}
	shares, err := e.service.Split(d.SymmetricKey, e.cfg.Guardians.Shares, e.cfg.Guardians.Threshold)
	if err != nil {
		return err
	}
	out := struct {
		OpaqueID     string   `json:"opaqueId"`
		Commitment   string   `json:"chainCommitment"`
		Shares       []string `json:"shares"`
		SymmetricKey string   `json:"symmetricKey,omitempty"`
	}{
		OpaqueID:   d.OpaqueID,
		Commitment: d.Commitment,
		Shares:     shares,
	}
	if *printKey {
		out.SymmetricKey = d.SymmetricKey
	}
	return e.print(out)
}

func (e *env) open(args []string) error {
	fs := newFlagSet("open")
	id := fs.String("id", "", "opaque id of the descriptor")
	key := fs.String("key", "", "symmetric key, in hex")
	shares := fs.String("shares", "", "comma separated guardian shares, used if -key is empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	k := *key
	if k == "" {
		var err error
		if k, err = e.service.Combine(splitList(*shares)); err != nil {
			return err
		}
	}
	payload, err := e.service.OpenDescriptor(*id, k)
	if err != nil {
		return err
	}
	return e.print(payload)
}

func (e *env) split(args []string) error {
	fs := newFlagSet("split")
	key := fs.String("key", "", "secret, in hex")
	n := fs.Int("n", e.cfg.Guardians.Shares, "number of shares")
	t := fs.Int("t", e.cfg.Guardians.Threshold, "shares needed to recover")
	if err := fs.Parse(args); err != nil {
		return err
	}
	shares, err := e.service.Split(*key, *n, *t)
	if err != nil {
		return err
	}
	return e.print(shares)
}

func (e *env) combine(args []string) error {
	fs := newFlagSet("combine")
	shares := fs.String("shares", "", "comma separated shares")
	if err := fs.Parse(args); err != nil {
		return err
	}
	key, err := e.service.Combine(splitList(*shares))
	if err != nil {
		return err
	}
	return e.print(map[string]string{"key": key})
}

func (e *env) level(args []string) error {
	fs := newFlagSet("level")
	amount := fs.String("amount", "", "decimal amount")
	level := fs.Int("level", 1, "privacy level, 1 to 4")
	if err := fs.Parse(args); err != nil {
		return err
	}
	amounts, err := e.service.SplitForLevel(*amount, *level)
	if err != nil {
		return err
	}
	return e.print(amounts)
}

func (e *env) pools(args []string) error {
	fs := newFlagSet("pools")
	amount := fs.String("amount", "", "decimal amount")
	pools := fs.Int("pools", 4, "number of parts, 1 to 4")
	if err := fs.Parse(args); err != nil {
		return err
	}
	parts, err := e.service.SplitRandom(*amount, *pools)
	if err != nil {
		return err
	}
	return e.print(parts)
}

func (e *env) deposit(args []string) error {
	fs := newFlagSet("deposit")
	sender := fs.String("sender", "", "sender address")
	receiver := fs.String("receiver", "", "stealth address of the receiver")
	amount := fs.String("amount", "", "decimal amount")
	level := fs.Int("level", 1, "privacy level, 1 to 4")
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, err := e.service.Deposit(*sender, *receiver, *amount, *level)
	if err != nil {
		return err
	}
	e.logger.Info("deposit planned", "fragments", len(plan.Amounts), "fragment_manager", e.cfg.Chain.FragmentManager)
	return e.print(plan)
}

func (e *env) withdraw(args []string) error {
	fs := newFlagSet("withdraw")
	sender := fs.String("sender", "", "sender address")
	receiver := fs.String("receiver", "", "stealth address of the receiver")
	amount := fs.String("amount", "", "decimal amount")
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, err := e.service.Withdrawal(*sender, *receiver, *amount)
	if err != nil {
		return err
	}
	e.logger.Info("withdrawal planned", "pool", e.cfg.Chain.Pool)
	return e.print(plan)
}
