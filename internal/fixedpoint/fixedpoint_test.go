package fixedpoint

import (
	"errors"
	"testing"

	"poolVault/internal/exact"
)

func mustInt(t *testing.T, s string) exact.Int {
	t.Helper()
	v, err := exact.FromString(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func TestMulRounding(t *testing.T) {
	amount := mustInt(t, "100000000")
	tenth := mustInt(t, "100000000000000000")

	down, err := MulDown(amount, tenth)
	if err != nil {
		t.Fatalf("MulDown: %v", err)
	}
	up, err := MulUp(amount, tenth)
	if err != nil {
		t.Fatalf("MulUp: %v", err)
	}
	want := mustInt(t, "10000000")
	if !down.Eq(want) || !up.Eq(want) {
		t.Fatalf("exact product rounds unequally: down=%s up=%s", down, up)
	}

	wei := exact.New(1)
	down, err = MulDown(wei, wei)
	if err != nil {
		t.Fatalf("MulDown: %v", err)
	}
	if !down.IsZero() {
		t.Fatalf("1wei*1wei down = %s, want 0", down)
	}
	up, err = MulUp(wei, wei)
	if err != nil {
		t.Fatalf("MulUp: %v", err)
	}
	if !up.Eq(wei) {
		t.Fatalf("1wei*1wei up = %s, want 1", up)
	}

	neg := exact.New(-1)
	if _, err := MulDown(neg, wei); !errors.Is(err, ErrNegativeValue) {
		t.Fatalf("negative operand: %v", err)
	}
}

func TestDivRounding(t *testing.T) {
	denom := mustInt(t, "1000000000090000000")

	down, err := DivDown(One, denom)
	if err != nil {
		t.Fatalf("DivDown: %v", err)
	}
	if !down.Eq(mustInt(t, "999999999910000000")) {
		t.Fatalf("DivDown = %s", down)
	}
	up, err := DivUp(One, denom)
	if err != nil {
		t.Fatalf("DivUp: %v", err)
	}
	if !up.Eq(mustInt(t, "999999999910000001")) {
		t.Fatalf("DivUp = %s", up)
	}

	zero := exact.New(0)
	if _, err := DivDown(One, zero); !errors.Is(err, exact.ErrDivisionByZero) {
		t.Fatalf("DivDown by zero: %v", err)
	}
	if _, err := DivUp(One, zero); !errors.Is(err, exact.ErrDivisionByZero) {
		t.Fatalf("DivUp by zero: %v", err)
	}
	got, err := DivUp(zero, denom)
	if err != nil {
		t.Fatalf("DivUp(0, x): %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("DivUp(0, x) = %s", got)
	}
}

func TestComplement(t *testing.T) {
	got, err := Complement(mustInt(t, "100000000000000000"))
	if err != nil {
		t.Fatalf("Complement: %v", err)
	}
	if !got.Eq(mustInt(t, "900000000000000000")) {
		t.Fatalf("Complement(0.1) = %s", got)
	}
	got, err = Complement(mustInt(t, "2000000000000000000"))
	if err != nil {
		t.Fatalf("Complement: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("Complement above one = %s", got)
	}
}

func TestMulDivRounding(t *testing.T) {
	a, b, c := exact.New(10), exact.New(10), exact.New(3)
	up, err := MulDivUp(a, b, c)
	if err != nil {
		t.Fatalf("MulDivUp: %v", err)
	}
	if !up.Eq(exact.New(34)) {
		t.Fatalf("MulDivUp(10,10,3) = %s, want 34", up)
	}
	down, err := MulDivDown(a, b, c)
	if err != nil {
		t.Fatalf("MulDivDown: %v", err)
	}
	if !down.Eq(exact.New(33)) {
		t.Fatalf("MulDivDown(10,10,3) = %s, want 33", down)
	}
}

func TestPowSpecialCases(t *testing.T) {
	x := mustInt(t, "999999999910000001")
	up, err := PowUp(x, One)
	if err != nil {
		t.Fatalf("PowUp: %v", err)
	}
	if !up.Eq(x) {
		t.Fatalf("PowUp(x, 1) = %s, want %s", up, x)
	}
	down, err := PowDown(x, One)
	if err != nil {
		t.Fatalf("PowDown: %v", err)
	}
	if !down.Eq(x) {
		t.Fatalf("PowDown(x, 1) = %s, want %s", down, x)
	}

	three := mustInt(t, "3000000000000000000")
	twoExp := mustInt(t, "2000000000000000000")
	sq, err := PowDown(three, twoExp)
	if err != nil {
		t.Fatalf("PowDown: %v", err)
	}
	if !sq.Eq(mustInt(t, "9000000000000000000")) {
		t.Fatalf("3^2 = %s", sq)
	}
}

func TestPowBrackets(t *testing.T) {
	cases := []struct {
		x, y, want string
	}{
		{"4000000000000000000", "500000000000000000", "2000000000000000000"},
		{"2000000000000000000", "3000000000000000000", "8000000000000000000"},
		{"500000000000000000", "500000000000000000", "707106781186547524"},
		{"1500000000000000000", "2500000000000000000", "2755675960631075360"},
	}
	for _, tc := range cases {
		x, y, want := mustInt(t, tc.x), mustInt(t, tc.y), mustInt(t, tc.want)
		down, err := PowDown(x, y)
		if err != nil {
			t.Fatalf("PowDown(%s, %s): %v", tc.x, tc.y, err)
		}
		up, err := PowUp(x, y)
		if err != nil {
			t.Fatalf("PowUp(%s, %s): %v", tc.x, tc.y, err)
		}
		if down.Gt(want) || up.Lt(want) {
			t.Fatalf("pow(%s, %s): want %s outside [%s, %s]", tc.x, tc.y, want, down, up)
		}
		spread, err := up.Sub(down)
		if err != nil {
			t.Fatalf("Sub: %v", err)
		}
		bound, err := MulDivDown(want, exact.New(3), mustInt(t, "100000000000000"))
		if err != nil {
			t.Fatalf("bound: %v", err)
		}
		bound, err = bound.Add(exact.New(4))
		if err != nil {
			t.Fatalf("bound: %v", err)
		}
		if spread.Gt(bound) {
			t.Fatalf("pow(%s, %s): bracket too wide, spread %s", tc.x, tc.y, spread)
		}
	}
}

func TestPowDomain(t *testing.T) {
	half := mustInt(t, "500000000000000000")
	if _, err := PowUp(half, exact.New(-1)); !errors.Is(err, ErrPowExponent) {
		t.Fatalf("negative exponent: %v", err)
	}
	got, err := PowUp(exact.New(0), half)
	if err != nil {
		t.Fatalf("PowUp(0, y): %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("0^0.5 = %s", got)
	}
	got, err = PowUp(half, exact.New(0))
	if err != nil {
		t.Fatalf("PowUp(x, 0): %v", err)
	}
	diff, err := got.Sub(One)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	abs, err := diff.Abs()
	if err != nil {
		t.Fatalf("Abs: %v", err)
	}
	if abs.Gt(exact.New(20000)) {
		t.Fatalf("x^0 = %s, too far from one", got)
	}
}
