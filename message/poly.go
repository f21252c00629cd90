package message

import (
	"github.com/wbrc/gf65536"
)

// evalPoly evaluates coeff at x using Horner's method.
func evalPoly(f gf65536.Field, coeff []uint16, x uint16) uint16 {
	var r uint16
	for i := len(coeff) - 1; i >= 0; i-- {
		r = f.Add(f.Mul(r, x), coeff[i])
	}
	return r
}

// lagrange sets l[i] to the Lagrange basis polynomial of xvals[i] evaluated
// at 0. In characteristic 2 subtraction is addition, so
// lᵢ(0) = Πⱼ≠ᵢ xⱼ / (xᵢ + xⱼ). xvals must be distinct.
func lagrange(f gf65536.Field, l, xvals []uint16) {
	for i := range xvals {
		var num, den uint16 = 1, 1
		for j := range xvals {
			if i == j {
				continue
			}
			num = f.Mul(num, xvals[j])
			den = f.Mul(den, f.Add(xvals[i], xvals[j]))
		}
		l[i] = f.Mul(num, f.Inv(den))
	}
}

// dot returns Σ a[i]⋅b[i].
func dot(f gf65536.Field, a, b []uint16) uint16 {
	var r uint16
	for i := range a {
		r = f.Add(r, f.Mul(a[i], b[i]))
	}
	return r
}
