package keyshare

import "fmt"

// LagrangeCoefficients returns the Lagrange basis values lᵢ(0) for the
// interpolation domain xs, so that f(0) = Σ yᵢ⋅lᵢ(0).
func LagrangeCoefficients(xs []Element) ([]Element, error) {
	if len(xs) == 0 {
		return nil, ErrEmptyShareSet
	}
	return basisAt(xs, xs[0].f.Zero())
}

// Interpolate evaluates the unique polynomial of degree < len(shares) passing
// through shares at x. Evaluating at a fresh x issues an additional share
// of the same split without reconstructing the secret in the caller.
func Interpolate(shares []Share, x Element) (Element, error) {
	f, err := checkShares(shares)
	if err != nil {
		return Element{}, err
	}
	if !x.valid() || !x.f.Equal(f) {
		return Element{}, fmt.Errorf("%w: x is not an element of field %s", ErrInvalidParameters, f.name)
	}

	xs := make([]Element, len(shares))
	for i := range shares {
		xs[i] = shares[i].X
	}

	basis, err := basisAt(xs, x)
	if err != nil {
		return Element{}, err
	}

	result := f.Zero()
	for i := range shares {
		result = result.Add(shares[i].Y.Mul(basis[i]))
	}
	return result, nil
}

// basisAt computes lᵢ(x) = Πⱼ≠ᵢ (x - xⱼ) / (xᵢ - xⱼ).
func basisAt(xs []Element, x Element) ([]Element, error) {
	if err := distinctXes(xs); err != nil {
		return nil, err
	}

	basis := make([]Element, len(xs))
	for i, xi := range xs {
		num, den := x.f.One(), x.f.One()
		for j, xj := range xs {
			if i == j {
				continue
			}
			num = num.Mul(x.Sub(xj))
			den = den.Mul(xi.Sub(xj))
		}

		inv, err := den.Inv()
		if err != nil {
			return nil, err
		}
		basis[i] = num.Mul(inv)
	}

	return basis, nil
}

// distinctXes fails if xs contains the same coordinate twice or mixes fields.
func distinctXes(xs []Element) error {
	seen := make(map[string]struct{}, len(xs))
	for i, x := range xs {
		if !x.valid() {
			return fmt.Errorf("%w: x coordinate %d is uninitialized", ErrMalformedShare, i)
		}
		if !x.f.Equal(xs[0].f) {
			return fmt.Errorf("%w: x coordinate %d belongs to field %s", ErrInvalidParameters, i, x.f.name)
		}
		k := string(x.Bytes())
		if _, ok := seen[k]; ok {
			return fmt.Errorf("%w: x = %x", ErrDuplicateXCoordinate, x.Bytes())
		}
		seen[k] = struct{}{}
	}
	return nil
}
