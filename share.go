package keyshare

import (
	"errors"
	"fmt"
)

// Share is one point (x, y) on a secret-hiding polynomial. The x coordinate
// travels with every share; x is never zero.
type Share struct {
	X Element
	Y Element
}

// Bytes encodes s as x‖y, each a fixed-width big endian field element, so
// the encoding is always 2⋅Field.Size() bytes long.
func (s Share) Bytes() []byte {
	out := make([]byte, 0, 2*s.X.f.width)
	out = append(out, s.X.Bytes()...)
	return append(out, s.Y.Bytes()...)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s Share) MarshalBinary() ([]byte, error) {
	if !s.X.valid() || !s.Y.valid() || !s.X.f.Equal(s.Y.f) {
		return nil, fmt.Errorf("%w: uninitialized or mixed-field share", ErrMalformedShare)
	}
	return s.Bytes(), nil
}

// ShareSize is the length of an encoded share of f.
func (f Field) ShareSize() int { return 2 * f.width }

// DecodeShare parses the output of Share.Bytes. It fails with
// ErrMalformedShare if b has the wrong length, if either half is not a valid
// element, or if x is zero.
func (f Field) DecodeShare(b []byte) (Share, error) {
	if len(b) != f.ShareSize() {
		return Share{}, fmt.Errorf("%w: share must be %d bytes, got %d", ErrMalformedShare, f.ShareSize(), len(b))
	}

	x, err := f.Element(b[:f.width])
	if err != nil {
		return Share{}, errors.Join(ErrMalformedShare, fmt.Errorf("x: %w", err))
	}
	if x.IsZero() {
		return Share{}, fmt.Errorf("%w: x coordinate is zero", ErrMalformedShare)
	}

	y, err := f.Element(b[f.width:])
	if err != nil {
		return Share{}, errors.Join(ErrMalformedShare, fmt.Errorf("y: %w", err))
	}

	return Share{X: x, Y: y}, nil
}

// checkShares returns the common field of shares. A share at x = 0 would be
// the secret itself and is rejected.
func checkShares(shares []Share) (Field, error) {
	if len(shares) == 0 {
		return Field{}, ErrEmptyShareSet
	}

	f := shares[0].X.f
	for i, s := range shares {
		if !s.X.valid() || !s.Y.valid() {
			return Field{}, fmt.Errorf("%w: share %d is uninitialized", ErrMalformedShare, i)
		}
		if !s.X.f.Equal(f) || !s.Y.f.Equal(f) {
			return Field{}, fmt.Errorf("%w: share %d belongs to a different field", ErrInvalidParameters, i)
		}
		if s.X.IsZero() {
			return Field{}, fmt.Errorf("%w: share %d has x coordinate zero", ErrMalformedShare, i)
		}
	}

	return f, nil
}
