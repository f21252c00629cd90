package keyshare

import "fmt"

// Polynomial is f(X) = a₀ + a₁⋅X + … + aₜ⋅Xᵗ over a prime field, where a₀ is
// the secret.
type Polynomial struct {
	coefficients []Element
}

// NewPolynomial returns a polynomial of degree threshold-1 whose constant
// term is secret and whose other coefficients are drawn from random.
func NewPolynomial(secret Element, threshold int, random RandomSource) (*Polynomial, error) {
	if threshold < 1 {
		return nil, ErrInvalidThreshold
	}
	if !secret.valid() {
		return nil, fmt.Errorf("%w: uninitialized secret", ErrInvalidParameters)
	}

	p := &Polynomial{coefficients: make([]Element, threshold)}
	p.coefficients[0] = secret.clone()

	for i := 1; i < threshold; i++ {
		c, err := random.NextElement(secret.f)
		if err != nil {
			p.Wipe()
			return nil, err
		}
		if !c.valid() || !c.f.Equal(secret.f) {
			p.Wipe()
			return nil, fmt.Errorf("%w: random source returned an element outside field %s", ErrInvalidParameters, secret.f.name)
		}
		// Wipe must not reach values the random source may still hold
		p.coefficients[i] = c.clone()
	}

	return p, nil
}

// Evaluate returns f(x) using Horner's method.
func (p *Polynomial) Evaluate(x Element) Element {
	result := x.f.Zero()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// bₙ₋₁ = bₙ⋅x + aₙ₋₁
		result = result.Mul(x).Add(p.coefficients[i])
	}
	return result
}

// Degree is the highest power of the polynomial.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Wipe overwrites all coefficients. The polynomial must not be used
// afterwards.
func (p *Polynomial) Wipe() {
	for i := range p.coefficients {
		p.coefficients[i].wipe()
	}
	p.coefficients = nil
}
