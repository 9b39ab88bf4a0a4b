package test

import (
	"fmt"
	"sync"

	"github.com/taurusgroup/stealth-payments/pkg/threshold"
	"golang.org/x/sync/errgroup"
)

// Rule modifies the share a guardian releases.
type Rule interface {
	ModifyShare(share *threshold.Share)
}

// RuleFunc adapts a function to a Rule.
type RuleFunc func(share *threshold.Share)

func (f RuleFunc) ModifyShare(share *threshold.Share) { f(share) }

// Guardians simulates the holders of the shares of one key, one share each.
type Guardians struct {
	mtx    sync.Mutex
	shares map[uint8]threshold.Share
	rules  map[uint8]Rule
}

// NewGuardians hands each share to its own guardian, identified by the share index.
func NewGuardians(shares []threshold.Share) *Guardians {
	g := &Guardians{
		shares: make(map[uint8]threshold.Share, len(shares)),
		rules:  make(map[uint8]Rule),
	}
	for _, s := range shares {
		g.shares[s.Index] = s
	}
	return g
}

// Lose removes the share of guardian index.
func (g *Guardians) Lose(index uint8) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	delete(g.shares, index)
}

// Corrupt makes guardian index apply rule to its share on release.
func (g *Guardians) Corrupt(index uint8, rule Rule) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	g.rules[index] = rule
}

func (g *Guardians) release(index uint8) (threshold.Share, error) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	s, ok := g.shares[index]
	if !ok {
		return threshold.Share{}, fmt.Errorf("guardian %d holds no share", index)
	}
	if rule, ok := g.rules[index]; ok {
		rule.ModifyShare(&s)
	}
	return s, nil
}

// Release asks the given guardians, concurrently, for their shares and then
// hands them to threshold.Combine in the order requested.
func (g *Guardians) Release(indices ...uint8) ([]byte, error) {
	shares := make([]threshold.Share, len(indices))
	var eg errgroup.Group
	for i, index := range indices {
		i, index := i, index
		eg.Go(func() error {
			s, err := g.release(index)
			if err != nil {
				return err
			}
			shares[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return threshold.Combine(shares)
}
