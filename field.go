package keyshare

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Field is the prime field GF(p). A Field is an immutable value; copies share
// the same modulus. The zero value is not a valid field.
type Field struct {
	name  string
	m     *saferith.Modulus
	p     []byte // big endian modulus, used for comparisons
	bits  int
	width int
}

// Secp256k1 is the scalar field of the secp256k1 curve, i.e. integers modulo
// the group order n. Elements of this field are valid private key scalars
// (except zero).
var Secp256k1 = mustField("secp256k1", secp256k1.Params().N.Bytes())

// NewField returns the field of integers modulo the big endian prime p.
func NewField(p []byte) (Field, error) {
	return newField(fmt.Sprintf("gf(0x%x)", bytes.TrimLeft(p, "\x00")), p)
}

func newField(name string, p []byte) (Field, error) {
	n := new(big.Int).SetBytes(p)
	if n.Cmp(big.NewInt(3)) < 0 || n.Bit(0) == 0 || !n.ProbablyPrime(32) {
		return Field{}, fmt.Errorf("%w: modulus is not an odd prime", ErrInvalidParameters)
	}

	return Field{
		name:  name,
		m:     saferith.ModulusFromBytes(n.Bytes()),
		p:     n.Bytes(),
		bits:  n.BitLen(),
		width: (n.BitLen() + 7) / 8,
	}, nil
}

func mustField(name string, p []byte) Field {
	f, err := newField(name, p)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns a short identifier of the field.
func (f Field) Name() string { return f.name }

// Size is the width in bytes of an encoded element.
func (f Field) Size() int { return f.width }

// Modulus returns the big endian prime.
func (f Field) Modulus() []byte { return bytes.Clone(f.p) }

// Equal reports whether f and g have the same modulus.
func (f Field) Equal(g Field) bool { return bytes.Equal(f.p, g.p) }

func (f Field) valid() bool { return f.m != nil }

// Zero returns the additive identity.
func (f Field) Zero() Element { return f.Uint64(0) }

// One returns the multiplicative identity.
func (f Field) One() Element { return f.Uint64(1) }

// Uint64 returns v mod p.
func (f Field) Uint64(v uint64) Element {
	return Element{f: f, v: new(saferith.Nat).Mod(new(saferith.Nat).SetUint64(v), f.m)}
}

// Element decodes a fixed-width big endian element. It fails with
// ErrOutOfRange if b has the wrong length or encodes a value >= p.
func (f Field) Element(b []byte) (Element, error) {
	if len(b) != f.width {
		return Element{}, fmt.Errorf("%w: element must be %d bytes, got %d", ErrOutOfRange, f.width, len(b))
	}

	x := new(saferith.Nat).SetBytes(b)
	if _, _, lt := x.CmpMod(f.m); lt != 1 {
		return Element{}, fmt.Errorf("%w: element is not less than the field modulus", ErrOutOfRange)
	}

	return Element{f: f, v: new(saferith.Nat).Mod(x, f.m)}, nil
}

// Random draws a uniformly distributed element from r.
func (f Field) Random(r RandomSource) (Element, error) {
	return r.NextElement(f)
}

// Element is a member of a prime field. Elements are immutable: arithmetic
// returns new values and never modifies its operands. Mixing elements of
// different fields is a programming error and panics.
type Element struct {
	f Field
	v *saferith.Nat
}

// Field returns the field e belongs to.
func (e Element) Field() Field { return e.f }

func (e Element) valid() bool { return e.v != nil && e.f.valid() }

func (e Element) check(o Element) {
	if !e.valid() || !o.valid() {
		panic("keyshare: use of uninitialized field element")
	}
	if !e.f.Equal(o.f) {
		panic("keyshare: mixing elements of different fields")
	}
}

func (e Element) with(v *saferith.Nat) Element { return Element{f: e.f, v: v} }

// Add returns e + o mod p.
func (e Element) Add(o Element) Element {
	e.check(o)
	return e.with(new(saferith.Nat).ModAdd(e.v, o.v, e.f.m))
}

// Sub returns e - o mod p.
func (e Element) Sub(o Element) Element {
	e.check(o)
	return e.with(new(saferith.Nat).ModSub(e.v, o.v, e.f.m))
}

// Mul returns e * o mod p.
func (e Element) Mul(o Element) Element {
	e.check(o)
	return e.with(new(saferith.Nat).ModMul(e.v, o.v, e.f.m))
}

// Neg returns -e mod p.
func (e Element) Neg() Element {
	e.check(e)
	return e.with(new(saferith.Nat).ModNeg(e.v, e.f.m))
}

// Inv returns the multiplicative inverse of e. Zero has no inverse and
// yields ErrDivisionByZero.
func (e Element) Inv() (Element, error) {
	e.check(e)
	if e.IsZero() {
		return Element{}, ErrDivisionByZero
	}
	return e.with(new(saferith.Nat).ModInverse(e.v, e.f.m)), nil
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool {
	e.check(e)
	return e.v.EqZero() == 1
}

// Equal reports whether e and o are the same element of the same field.
func (e Element) Equal(o Element) bool {
	if !e.valid() || !o.valid() || !e.f.Equal(o.f) {
		return false
	}
	return e.v.Eq(o.v) == 1
}

// Cmp compares the canonical integer representatives of e and o and returns
// -1, 0 or +1.
func (e Element) Cmp(o Element) int {
	e.check(o)
	gt, eq, _ := e.v.Cmp(o.v)
	switch {
	case gt == 1:
		return 1
	case eq == 1:
		return 0
	default:
		return -1
	}
}

// Bytes returns the fixed-width big endian encoding of e.
func (e Element) Bytes() []byte {
	e.check(e)
	raw := e.v.Bytes()
	out := make([]byte, e.f.width)
	if len(raw) > len(out) {
		raw = raw[len(raw)-len(out):]
	}
	copy(out[len(out)-len(raw):], raw)
	return out
}

// wipe zeroes the backing integer. Only used on values owned by the package.
func (e Element) wipe() {
	if e.v != nil {
		e.v.SetUint64(0)
	}
}

func (e Element) clone() Element {
	return e.with(new(saferith.Nat).SetNat(e.v))
}
