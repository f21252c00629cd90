// Package message splits byte strings of any length. Every 16-bit word of the
// padded message is shared independently over GF(2^16), so shares are only
// two bytes longer than the padded message.
//
// Use the keyshare package for private keys: its shares are bound to the
// secp256k1 scalar field and can be checked against a public key.
package message

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/wbrc/gf65536"

	"github.com/wbrc/keyshare"
)

var (
	defaultField   = gf65536.Default
	defaultRandSrc = rand.Reader
)

const padMarker = 0x80

// Dealer splits and combines messages. A zero-value Dealer is ready to use
// with gf65536.Default and crypto/rand.Reader.
type Dealer struct {
	F    gf65536.Field // the GF(2^16) field to use
	Rand io.Reader     // cryptographically secure random source
}

// Default is a zero-value Dealer ready to use with default settings.
var Default = new(Dealer)

// Split a message using the default dealer.
func Split(threshold, n int, msg []byte) ([][]byte, error) {
	return Default.Split(threshold, n, msg)
}

// Combine shares using the default dealer.
func Combine(shares [][]byte) ([]byte, error) {
	return Default.Combine(shares)
}

func (d *Dealer) field() gf65536.Field {
	if d.F == 0 {
		return defaultField
	}
	return d.F
}

func (d *Dealer) random() io.Reader {
	if d.Rand == nil {
		return defaultRandSrc
	}
	return d.Rand
}

// Split splits msg into n shares such that any threshold number of shares
// can be combined to recover it. 1 <= threshold <= n <= keyshare.MaxShares.
// Share i (counting from 1) is evaluated at x = i, which is stored in its
// first two bytes.
func (d *Dealer) Split(threshold, n int, msg []byte) ([][]byte, error) {
	if n < 1 || n > keyshare.MaxShares {
		return nil, fmt.Errorf("%w: share count must be between 1 and %d, got %d", keyshare.ErrInvalidParameters, keyshare.MaxShares, n)
	}
	if threshold < 1 || threshold > n {
		return nil, fmt.Errorf("%w: threshold must be between 1 and %d, got %d", keyshare.ErrInvalidParameters, n, threshold)
	}

	f := d.field()
	words := pad(msg)

	shares := make([][]byte, n)
	for i := range shares {
		shares[i] = make([]byte, 2*(len(words)+1))
		binary.BigEndian.PutUint16(shares[i], uint16(i+1))
	}

	polynomial := make([]uint16, threshold)
	defer clear(polynomial)

	for w, word := range words {
		polynomial[0] = word
		if err := binary.Read(d.random(), binary.BigEndian, polynomial[1:]); err != nil {
			return nil, fmt.Errorf("failed to read randomness: %w", err)
		}

		for i := range shares {
			y := evalPoly(f, polynomial, uint16(i+1))
			binary.BigEndian.PutUint16(shares[i][2*(w+1):], y)
		}
	}
	clear(words)

	return shares, nil
}

// Combine recovers the message from shares. len(shares) must be at least the
// threshold used to split; fewer shares usually fail with a padding error but
// may also produce garbage.
func (d *Dealer) Combine(shares [][]byte) ([]byte, error) {
	if len(shares) == 0 {
		return nil, keyshare.ErrEmptyShareSet
	}

	size := len(shares[0])
	if size < 4 || size%2 != 0 {
		return nil, fmt.Errorf("%w: share length %d", keyshare.ErrMalformedShare, size)
	}

	xvals := make([]uint16, len(shares))
	seen := make(map[uint16]struct{}, len(shares))
	for i, share := range shares {
		if len(share) != size {
			return nil, fmt.Errorf("%w: inconsistent share length", keyshare.ErrMalformedShare)
		}
		x := binary.BigEndian.Uint16(share)
		if x == 0 {
			return nil, fmt.Errorf("%w: share %d has x = 0", keyshare.ErrMalformedShare, i+1)
		}
		if _, ok := seen[x]; ok {
			return nil, fmt.Errorf("%w: x = %d", keyshare.ErrDuplicateXCoordinate, x)
		}
		seen[x] = struct{}{}
		xvals[i] = x
	}

	f := d.field()
	l := make([]uint16, len(shares))
	lagrange(f, l, xvals)

	yvals := make([]uint16, len(shares))
	words := make([]uint16, size/2-1)
	for w := range words {
		for i, share := range shares {
			yvals[i] = binary.BigEndian.Uint16(share[2*(w+1):])
		}
		words[w] = dot(f, l, yvals)
	}

	return unpad(words)
}

// pad appends the marker byte and, if needed, a zero byte so the message
// fills whole words.
func pad(msg []byte) []uint16 {
	padded := make([]byte, len(msg), len(msg)+2)
	copy(padded, msg)
	padded = append(padded, padMarker)
	if len(padded)%2 != 0 {
		padded = append(padded, 0)
	}
	defer clear(padded)

	words := make([]uint16, len(padded)/2)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(padded[2*i:])
	}
	return words
}

func unpad(words []uint16) ([]byte, error) {
	b := make([]byte, 2*len(words))
	for i, w := range words {
		binary.BigEndian.PutUint16(b[2*i:], w)
	}

	if b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	if b[len(b)-1] != padMarker {
		return nil, fmt.Errorf("%w: invalid padding, too few or corrupted shares", keyshare.ErrMalformedShare)
	}

	return b[:len(b)-1], nil
}
