// Package fixedpoint implements 18-decimal fixed point arithmetic on
// non-negative values with explicit rounding direction, matching the
// mirrored on-chain math wei for wei.
package fixedpoint

import (
	"errors"

	"poolVault/internal/exact"
)

// One is the fixed point representation of 1.0.
var One = exact.MustFromString("1000000000000000000")

var (
	two  = exact.MustFromString("2000000000000000000")
	four = exact.MustFromString("4000000000000000000")
	one  = exact.New(1)
)

// ErrNegativeValue is returned when an operand is negative. All fixed point
// operations are defined on non-negative values only.
var ErrNegativeValue = errors.New("negative fixed point value")

func requireNonNegative(vals ...exact.Int) error {
	for _, v := range vals {
		if v.Sign() < 0 {
			return ErrNegativeValue
		}
	}
	return nil
}

// MulDown returns a*b/1e18 rounded toward zero.
func MulDown(a, b exact.Int) (exact.Int, error) {
	if err := requireNonNegative(a, b); err != nil {
		return exact.Int{}, err
	}
	p, err := a.Mul(b)
	if err != nil {
		return exact.Int{}, err
	}
	return p.Quo(One)
}

// MulUp returns a*b/1e18 rounded away from zero.
func MulUp(a, b exact.Int) (exact.Int, error) {
	if err := requireNonNegative(a, b); err != nil {
		return exact.Int{}, err
	}
	p, err := a.Mul(b)
	if err != nil {
		return exact.Int{}, err
	}
	if p.IsZero() {
		return exact.New(0), nil
	}
	p, err = p.Sub(one)
	if err != nil {
		return exact.Int{}, err
	}
	q, err := p.Quo(One)
	if err != nil {
		return exact.Int{}, err
	}
	return q.Add(one)
}

// DivDown returns a*1e18/b rounded toward zero.
func DivDown(a, b exact.Int) (exact.Int, error) {
	if err := requireNonNegative(a, b); err != nil {
		return exact.Int{}, err
	}
	p, err := a.Mul(One)
	if err != nil {
		return exact.Int{}, err
	}
	return p.Quo(b)
}

// DivUp returns a*1e18/b rounded away from zero.
func DivUp(a, b exact.Int) (exact.Int, error) {
	if err := requireNonNegative(a, b); err != nil {
		return exact.Int{}, err
	}
	if b.IsZero() {
		return exact.Int{}, exact.ErrDivisionByZero
	}
	if a.IsZero() {
		return exact.New(0), nil
	}
	p, err := a.Mul(One)
	if err != nil {
		return exact.Int{}, err
	}
	p, err = p.Sub(one)
	if err != nil {
		return exact.Int{}, err
	}
	q, err := p.Quo(b)
	if err != nil {
		return exact.Int{}, err
	}
	return q.Add(one)
}

// MulDivDown returns a*b/c rounded toward zero, keeping the intermediate
// product at full precision.
func MulDivDown(a, b, c exact.Int) (exact.Int, error) {
	if err := requireNonNegative(a, b, c); err != nil {
		return exact.Int{}, err
	}
	p, err := a.Mul(b)
	if err != nil {
		return exact.Int{}, err
	}
	return p.Quo(c)
}

// MulDivUp returns a*b/c rounded away from zero, keeping the intermediate
// product at full precision.
func MulDivUp(a, b, c exact.Int) (exact.Int, error) {
	if err := requireNonNegative(a, b, c); err != nil {
		return exact.Int{}, err
	}
	if c.IsZero() {
		return exact.Int{}, exact.ErrDivisionByZero
	}
	p, err := a.Mul(b)
	if err != nil {
		return exact.Int{}, err
	}
	if p.IsZero() {
		return exact.New(0), nil
	}
	p, err = p.Sub(one)
	if err != nil {
		return exact.Int{}, err
	}
	q, err := p.Quo(c)
	if err != nil {
		return exact.Int{}, err
	}
	return q.Add(one)
}

// Complement returns 1e18 - x, floored at zero.
func Complement(x exact.Int) (exact.Int, error) {
	if err := requireNonNegative(x); err != nil {
		return exact.Int{}, err
	}
	if x.Gte(One) {
		return exact.New(0), nil
	}
	return One.Sub(x)
}
