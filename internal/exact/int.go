// Package exact provides a signed 256-bit integer value type whose division
// and modulo truncate toward zero, matching the semantics of the mirrored
// on-chain arithmetic. Results that leave the 256-bit range are errors, never
// wrapped, and there is no conversion to or from floating point.
package exact

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrDivisionByZero is returned when a divisor or modulus is zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOverflow is returned when a result does not fit in a signed 256-bit integer.
	ErrOverflow = errors.New("integer overflow")
	// ErrNegativeExponent is returned when Pow receives a negative exponent.
	ErrNegativeExponent = errors.New("negative exponent")
	// ErrInvalidInteger is returned when a string is not a base-10 integer.
	ErrInvalidInteger = errors.New("invalid integer literal")
)

var (
	maxInt256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	minInt256 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
)

// Int is an immutable signed 256-bit integer. The zero value is 0 and ready
// to use. Operations return a fresh Int and never mutate their operands.
type Int struct {
	v *big.Int
}

// New returns an Int holding the given value.
func New(v int64) Int {
	return Int{v: big.NewInt(v)}
}

// NewUint64 returns an Int holding the given unsigned value.
func NewUint64(v uint64) Int {
	return Int{v: new(big.Int).SetUint64(v)}
}

// FromBig returns an Int holding a copy of v, or an overflow error if v does
// not fit in 256 bits.
func FromBig(v *big.Int) (Int, error) {
	if v.Cmp(maxInt256) > 0 || v.Cmp(minInt256) < 0 {
		return Int{}, fmt.Errorf("%w: %s", ErrOverflow, v)
	}
	return Int{v: new(big.Int).Set(v)}, nil
}

// FromString parses a base-10 integer literal.
func FromString(s string) (Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int{}, fmt.Errorf("%w: %q", ErrInvalidInteger, s)
	}
	return FromBig(v)
}

// MustFromString parses a base-10 integer literal and panics on failure.
// Intended for constants and fixtures.
func MustFromString(s string) Int {
	v, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (a Int) big() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// Big returns a copy of the underlying value.
func (a Int) Big() *big.Int {
	return new(big.Int).Set(a.big())
}

func checked(v *big.Int) (Int, error) {
	if v.Cmp(maxInt256) > 0 || v.Cmp(minInt256) < 0 {
		return Int{}, fmt.Errorf("%w: %s", ErrOverflow, v)
	}
	return Int{v: v}, nil
}

// Add returns a + b.
func (a Int) Add(b Int) (Int, error) {
	return checked(new(big.Int).Add(a.big(), b.big()))
}

// Sub returns a - b.
func (a Int) Sub(b Int) (Int, error) {
	return checked(new(big.Int).Sub(a.big(), b.big()))
}

// Mul returns a * b.
func (a Int) Mul(b Int) (Int, error) {
	return checked(new(big.Int).Mul(a.big(), b.big()))
}

// Quo returns a / b truncated toward zero, so the quotient carries the sign
// of a*b even for negative operands. It never floors.
func (a Int) Quo(b Int) (Int, error) {
	if b.big().Sign() == 0 {
		return Int{}, ErrDivisionByZero
	}
	return checked(new(big.Int).Quo(a.big(), b.big()))
}

// Rem returns the remainder of truncated division. For b != 0 the identity
// a == b*Quo(a,b) + Rem(a,b) holds exactly and Rem carries the sign of a.
func (a Int) Rem(b Int) (Int, error) {
	if b.big().Sign() == 0 {
		return Int{}, ErrDivisionByZero
	}
	return checked(new(big.Int).Rem(a.big(), b.big()))
}

// Pow returns a**exp. A non-nil mod reduces the result modulo mod, mirroring
// modular exponentiation; mod must be non-zero. Exponents are non-negative.
func (a Int) Pow(exp Int, mod *Int) (Int, error) {
	if exp.big().Sign() < 0 {
		return Int{}, ErrNegativeExponent
	}
	if mod != nil {
		if mod.big().Sign() == 0 {
			return Int{}, ErrDivisionByZero
		}
		return checked(new(big.Int).Exp(a.big(), exp.big(), mod.big()))
	}
	// Unreduced exponentiation is bounded before evaluation: anything with
	// |a| >= 2 and exp > 256 cannot fit in 256 bits.
	abs := new(big.Int).Abs(a.big())
	if abs.Cmp(big.NewInt(1)) > 0 && exp.big().Cmp(big.NewInt(256)) > 0 {
		return Int{}, fmt.Errorf("%w: %s ** %s", ErrOverflow, a, exp)
	}
	return checked(new(big.Int).Exp(a.big(), exp.big(), nil))
}

// Neg returns -a.
func (a Int) Neg() (Int, error) {
	return checked(new(big.Int).Neg(a.big()))
}

// Abs returns |a|.
func (a Int) Abs() (Int, error) {
	return checked(new(big.Int).Abs(a.big()))
}

// Cmp returns -1, 0, or 1 by integer value.
func (a Int) Cmp(b Int) int {
	return a.big().Cmp(b.big())
}

// Sign returns -1, 0, or 1.
func (a Int) Sign() int {
	return a.big().Sign()
}

// IsZero reports whether a is zero.
func (a Int) IsZero() bool {
	return a.big().Sign() == 0
}

// Eq reports a == b.
func (a Int) Eq(b Int) bool { return a.Cmp(b) == 0 }

// Lt reports a < b.
func (a Int) Lt(b Int) bool { return a.Cmp(b) < 0 }

// Lte reports a <= b.
func (a Int) Lte(b Int) bool { return a.Cmp(b) <= 0 }

// Gt reports a > b.
func (a Int) Gt(b Int) bool { return a.Cmp(b) > 0 }

// Gte reports a >= b.
func (a Int) Gte(b Int) bool { return a.Cmp(b) >= 0 }

// String returns the base-10 representation.
func (a Int) String() string {
	return a.big().String()
}

// CloneSlice returns an independent copy of a slice of Ints.
func CloneSlice(in []Int) []Int {
	out := make([]Int, len(in))
	copy(out, in)
	return out
}
