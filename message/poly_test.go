package message

import (
	"testing"

	"github.com/wbrc/gf65536"
)

var f = gf65536.Default

func Test_evalPoly(t *testing.T) {

	if evalPoly(f, []uint16{}, 0) != 0 {
		t.Error("evalPoly failed for empty polynomial")
	}

	if evalPoly(f, []uint16{69}, 1) != 69 {
		t.Error("evalPoly failed for constant polynomial")
	}

	// p(x) = 5890 + 301*x + 30222*x^2 + 12345*x^3
	poly := []uint16{5890, 301, 30222, 12345}
	p1 := f.Add(f.Add(5890, f.Mul(301, 1)), f.Add(f.Mul(30222, 1), f.Mul(12345, 1)))
	p2 := f.Add(f.Add(5890, f.Mul(301, 2)), f.Add(f.Mul(30222, f.Mul(2, 2)), f.Mul(12345, f.Mul(2, f.Mul(2, 2)))))
	p9 := f.Add(f.Add(5890, f.Mul(301, 9)), f.Add(f.Mul(30222, f.Mul(9, 9)), f.Mul(12345, f.Mul(9, f.Mul(9, 9)))))

	if evalPoly(f, poly, 0) != 5890 {
		t.Error("evalPoly failed for x = 0")
	}

	if evalPoly(f, poly, 1) != p1 {
		t.Error("evalPoly failed for x = 1")
	}

	if evalPoly(f, poly, 2) != p2 {
		t.Error("evalPoly failed for x = 2")
	}

	if evalPoly(f, poly, 9) != p9 {
		t.Error("evalPoly failed for x = 9")
	}
}

func Test_lagrange(t *testing.T) {
	poly := []uint16{5890, 301, 30222, 12345} // poly[0] is the secret
	xvals := []uint16{10, 55, 16, 1111}       // 4 samples needed for interpolation

	yvals := make([]uint16, len(xvals))
	for i, x := range xvals {
		yvals[i] = evalPoly(f, poly, x)
	}

	l := make([]uint16, len(xvals))
	lagrange(f, l, xvals)

	if got := dot(f, l, yvals); got != poly[0] {
		t.Errorf("interpolation at 0 = %d, want %d", got, poly[0])
	}

	// the basis polynomials sum to the constant 1
	var sum uint16
	for _, v := range l {
		sum = f.Add(sum, v)
	}
	if sum != 1 {
		t.Errorf("sum of basis values = %d, want 1", sum)
	}
}

func Test_dot(t *testing.T) {
	a := []uint16{1, 11, 3}
	b := []uint16{1, 1, 0}

	// addition is xor
	if got := dot(f, a, b); got != 1^11 {
		t.Errorf("dot() = %d, want %d", got, 1^11)
	}
}
