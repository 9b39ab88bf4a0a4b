// Package test contains fixtures and a guardian simulation shared by the tests of other packages.
package test

import (
	"io"

	"github.com/zeebo/blake3"
)

// Two valid checksummed addresses. Sender belongs to the private key 1.
const (
	Sender   = "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"
	Receiver = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
)

// Reader returns an endless deterministic stream of bytes derived from seed.
//
// It must only be used to make tests reproducible.
func Reader(seed string) io.Reader {
	h := blake3.NewDeriveKey("stealth-payments test reader")
	_, _ = h.Write([]byte(seed))
	return h.Digest()
}
