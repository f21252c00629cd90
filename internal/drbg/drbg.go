// Package drbg provides a deterministic random byte stream for reproducible
// tests. It must never be used to split real secrets.
package drbg

import (
	"io"

	"github.com/zeebo/blake3"
)

const context = "github.com/wbrc/keyshare drbg v1"

// New returns the blake3 extendable output for seed. Equal seeds produce
// equal streams.
func New(seed []byte) io.Reader {
	h := blake3.NewDeriveKey(context)
	_, _ = h.Write(seed)
	return h.Digest()
}

// String is New([]byte(seed)).
func String(seed string) io.Reader {
	return New([]byte(seed))
}
