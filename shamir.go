// Package keyshare implements Shamir's secret sharing over a prime field,
// by default the scalar field of secp256k1, so that private keys can be split
// into shares and recovered from any threshold of them.
//
// The scheme is unauthenticated: combining fewer shares than the threshold
// used to split, or a corrupted share, silently yields a wrong secret. Callers
// that know something about the secret (for example its public key) should
// check the result.
package keyshare

import (
	"fmt"
)

// MaxShares is the largest number of shares Split produces.
const MaxShares = 255

// Dealer is a Shamir secret sharing dealer. A zero-value Dealer is ready to
// use with default settings. The default field is Secp256k1 and the default
// random source is a ReaderSource over crypto/rand.Reader.
type Dealer struct {
	F    Field        // prime field secrets and shares live in
	Rand RandomSource // cryptographically secure random source
}

// Default is a zero-value Dealer ready to use with default settings.
var Default = new(Dealer)

// Split a secret using the default dealer.
func Split(secret Element, threshold, n int) ([]Share, error) {
	return Default.Split(secret, threshold, n)
}

// Combine shares using the default dealer.
func Combine(shares []Share) (Element, error) {
	return Default.Combine(shares)
}

func (d *Dealer) field() Field {
	if !d.F.valid() {
		return Secp256k1
	}
	return d.F
}

func (d *Dealer) random() RandomSource {
	if d.Rand == nil {
		return ReaderSource{}
	}
	return d.Rand
}

// Split splits secret into n shares such that any threshold of them recover
// it. 1 <= threshold <= n <= MaxShares must hold. The shares are evaluated at
// x = 1, 2, …, n, in that order.
func (d *Dealer) Split(secret Element, threshold, n int) ([]Share, error) {
	if n < 1 || n > MaxShares {
		return nil, fmt.Errorf("%w: share count must be between 1 and %d, got %d", ErrInvalidParameters, MaxShares, n)
	}
	if threshold < 1 || threshold > n {
		return nil, fmt.Errorf("%w: threshold must be between 1 and %d, got %d", ErrInvalidParameters, n, threshold)
	}

	f := d.field()
	xs := make([]Element, n)
	for i := range xs {
		xs[i] = f.Uint64(uint64(i + 1))
	}

	return d.split(secret, threshold, xs)
}

// SplitAt is like Split but evaluates the polynomial at the caller supplied
// x coordinates, e.g. shareholder identifiers. The coordinates must be
// nonzero, pairwise distinct and at least threshold in number.
func (d *Dealer) SplitAt(secret Element, threshold int, xs []Element) ([]Share, error) {
	if threshold < 1 || threshold > len(xs) {
		return nil, fmt.Errorf("%w: threshold must be between 1 and %d, got %d", ErrInvalidParameters, len(xs), threshold)
	}

	f := d.field()
	for i, x := range xs {
		if !x.valid() || !x.f.Equal(f) {
			return nil, fmt.Errorf("%w: x coordinate %d is not an element of field %s", ErrInvalidParameters, i, f.name)
		}
		if x.IsZero() {
			return nil, fmt.Errorf("%w: x coordinate %d is zero", ErrInvalidParameters, i)
		}
	}
	if err := distinctXes(xs); err != nil {
		return nil, err
	}

	return d.split(secret, threshold, xs)
}

func (d *Dealer) split(secret Element, threshold int, xs []Element) ([]Share, error) {
	f := d.field()
	if !secret.valid() || !secret.f.Equal(f) {
		return nil, fmt.Errorf("%w: secret is not an element of field %s", ErrInvalidParameters, f.name)
	}

	polynomial, err := NewPolynomial(secret, threshold, d.random())
	if err != nil {
		return nil, err
	}
	defer polynomial.Wipe()

	shares := make([]Share, len(xs))
	for i, x := range xs {
		shares[i] = Share{X: x, Y: polynomial.Evaluate(x)}
	}

	return shares, nil
}

// Combine recovers the secret from shares by Lagrange interpolation at x = 0.
// len(shares) must be at least the threshold used to split the secret; this
// cannot be checked here and too few shares produce a wrong secret without
// an error.
func (d *Dealer) Combine(shares []Share) (Element, error) {
	f, err := checkShares(shares)
	if err != nil {
		return Element{}, err
	}
	if !f.Equal(d.field()) {
		return Element{}, fmt.Errorf("%w: shares belong to field %s, dealer uses %s", ErrInvalidParameters, f.name, d.field().name)
	}

	return Interpolate(shares, f.Zero())
}
