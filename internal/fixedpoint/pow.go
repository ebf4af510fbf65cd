package fixedpoint

import (
	"errors"
	"math/big"

	"poolVault/internal/exact"
)

// Power results carry a relative error bound of 1e-14 plus one wei. PowDown
// subtracts the bound and PowUp adds it, so the true value of x^y always
// lies between the two.
var (
	maxPowRelativeError = exact.New(10000)
	maxPowExponent      = exact.MustFromString("100000000000000000000000")
)

// ErrPowExponent is returned when a power exponent is negative or above the
// supported range.
var ErrPowExponent = errors.New("power exponent out of range")

// Internal natural log and exponential run in 36-decimal fixed point for
// headroom; only the final result is truncated back to 18 decimals.
var (
	one18x     = mustBig("1000000000000000000")
	one36x     = mustBig("1000000000000000000000000000000000000")
	two36x     = mustBig("2000000000000000000000000000000000000")
	half36x    = new(big.Int).Rsh(one36x, 1)
	ln2x36     = mustBig("693147180559945309417232121458176568")
	halfLn2x36 = new(big.Int).Rsh(ln2x36, 1)
	minExpArg  = mustBig("-41000000000000000000000000000000000000")
	maxExpArg  = mustBig("130000000000000000000000000000000000000")
)

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("fixedpoint: bad constant " + s)
	}
	return v
}

// PowDown returns an approximation of x^y guaranteed not to exceed the true
// value. Whole exponents 1, 2 and 4 are computed directly.
func PowDown(x, y exact.Int) (exact.Int, error) {
	switch {
	case y.Eq(One):
		if err := requireNonNegative(x); err != nil {
			return exact.Int{}, err
		}
		return x, nil
	case y.Eq(two):
		return MulDown(x, x)
	case y.Eq(four):
		sq, err := MulDown(x, x)
		if err != nil {
			return exact.Int{}, err
		}
		return MulDown(sq, sq)
	}
	raw, err := powRaw(x, y)
	if err != nil {
		return exact.Int{}, err
	}
	margin, err := powErrorMargin(raw)
	if err != nil {
		return exact.Int{}, err
	}
	if raw.Lt(margin) {
		return exact.New(0), nil
	}
	return raw.Sub(margin)
}

// PowUp returns an approximation of x^y guaranteed not to fall below the
// true value.
func PowUp(x, y exact.Int) (exact.Int, error) {
	switch {
	case y.Eq(One):
		if err := requireNonNegative(x); err != nil {
			return exact.Int{}, err
		}
		return x, nil
	case y.Eq(two):
		return MulUp(x, x)
	case y.Eq(four):
		sq, err := MulUp(x, x)
		if err != nil {
			return exact.Int{}, err
		}
		return MulUp(sq, sq)
	}
	raw, err := powRaw(x, y)
	if err != nil {
		return exact.Int{}, err
	}
	margin, err := powErrorMargin(raw)
	if err != nil {
		return exact.Int{}, err
	}
	return raw.Add(margin)
}

func powErrorMargin(raw exact.Int) (exact.Int, error) {
	m, err := MulUp(raw, maxPowRelativeError)
	if err != nil {
		return exact.Int{}, err
	}
	return m.Add(one)
}

// powRaw computes x^y as exp(y*ln(x)) without the error margin.
func powRaw(x, y exact.Int) (exact.Int, error) {
	if err := requireNonNegative(x); err != nil {
		return exact.Int{}, err
	}
	if y.Sign() < 0 || y.Gt(maxPowExponent) {
		return exact.Int{}, ErrPowExponent
	}
	if y.IsZero() {
		return One, nil
	}
	if x.IsZero() {
		return exact.New(0), nil
	}

	x36 := new(big.Int).Mul(x.Big(), one18x)
	lnX := ln36(x36)

	arg := new(big.Int).Mul(lnX, y.Big())
	arg.Quo(arg, one18x)
	if arg.Cmp(minExpArg) < 0 || arg.Cmp(maxExpArg) > 0 {
		return exact.Int{}, ErrPowExponent
	}

	res := exp36(arg)
	res.Quo(res, one18x)
	return exact.FromBig(res)
}

// ln36 computes the natural log of a positive 36-decimal fixed point value.
// The argument is range-reduced into [0.5, 2) by halving or doubling while
// counting powers of two, then the log of the reduced value is summed with
// an odd-term artanh series.
func ln36(v *big.Int) *big.Int {
	w := new(big.Int).Set(v)
	k := 0
	for w.Cmp(two36x) >= 0 {
		w.Rsh(w, 1)
		k++
	}
	for w.Cmp(half36x) < 0 {
		w.Lsh(w, 1)
		k--
	}

	// ln(w) = 2*artanh(z) with z = (w-1)/(w+1).
	num := new(big.Int).Sub(w, one36x)
	den := new(big.Int).Add(w, one36x)
	z := new(big.Int).Mul(num, one36x)
	z.Quo(z, den)
	zsq := new(big.Int).Mul(z, z)
	zsq.Quo(zsq, one36x)

	sum := new(big.Int).Set(z)
	term := new(big.Int).Set(z)
	for i := int64(3); i <= 87; i += 2 {
		term.Mul(term, zsq)
		term.Quo(term, one36x)
		frac := new(big.Int).Quo(term, big.NewInt(i))
		sum.Add(sum, frac)
	}
	sum.Lsh(sum, 1)

	shift := new(big.Int).Mul(ln2x36, big.NewInt(int64(k)))
	return sum.Add(sum, shift)
}

// exp36 computes e^v for a 36-decimal fixed point argument. The argument is
// reduced modulo ln(2) so the Taylor series runs on a small remainder, and
// the quotient becomes a binary shift of the result.
func exp36(v *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(v, ln2x36, new(big.Int))
	if r.Cmp(halfLn2x36) > 0 {
		q.Add(q, big.NewInt(1))
		r.Sub(r, ln2x36)
	} else if r.Cmp(new(big.Int).Neg(halfLn2x36)) < 0 {
		q.Sub(q, big.NewInt(1))
		r.Add(r, ln2x36)
	}

	sum := new(big.Int).Set(one36x)
	term := new(big.Int).Set(one36x)
	for i := int64(1); i <= 32; i++ {
		term.Mul(term, r)
		term.Quo(term, one36x)
		term.Quo(term, big.NewInt(i))
		sum.Add(sum, term)
	}

	shift := q.Int64()
	if shift >= 0 {
		return sum.Lsh(sum, uint(shift))
	}
	return sum.Rsh(sum, uint(-shift))
}
