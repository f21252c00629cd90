package keyshare

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// RandomSource produces field elements uniformly distributed over [0, p).
// Implementations used for real splits must be cryptographically secure.
// A RandomSource is not required to be safe for concurrent use.
type RandomSource interface {
	NextElement(f Field) (Element, error)
}

// maximum number of rejected candidates before giving up; for secp256k1 a
// single rejection already has probability below 2^-127
const maxRejections = 128

// ReaderSource turns a stream of random bytes into field elements by
// rejection sampling. A nil R reads from crypto/rand.Reader.
type ReaderSource struct {
	R io.Reader
}

// NextElement implements RandomSource.
func (s ReaderSource) NextElement(f Field) (Element, error) {
	r := s.R
	if r == nil {
		r = rand.Reader
	}

	buf := make([]byte, f.width)
	defer clear(buf)

	// mask the unused high bits of the first byte so that a candidate is
	// rejected with probability < 1/2
	mask := byte(0xff >> (f.width*8 - f.bits))

	for range maxRejections {
		if _, err := io.ReadFull(r, buf); err != nil {
			return Element{}, fmt.Errorf("failed to read randomness: %w", err)
		}
		buf[0] &= mask

		e, err := f.Element(buf)
		if err == nil {
			return e, nil
		}
	}

	return Element{}, errors.New("random source produced no element in range")
}
