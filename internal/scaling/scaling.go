// Package scaling converts token amounts between raw units (native decimals)
// and the common scaled-18 representation every pool-math step operates in.
// The rounding direction is always chosen by the caller: amounts charged to
// the user round up, amounts paid to the user round down.
package scaling

import (
	"errors"
	"fmt"

	"poolVault/internal/exact"
	"poolVault/internal/fixedpoint"
)

// ErrDecimalsOutOfRange is returned for token decimals above 18.
var ErrDecimalsOutOfRange = errors.New("token decimals out of range")

var ten = exact.New(10)

// ScalingFactor returns the plain multiplier 10^(18-decimals) that brings a
// raw amount of the given token to 18 decimals.
func ScalingFactor(decimals uint8) (exact.Int, error) {
	if decimals > 18 {
		return exact.Int{}, fmt.Errorf("%w: %d", ErrDecimalsOutOfRange, decimals)
	}
	return ten.Pow(exact.New(int64(18-decimals)), nil)
}

// ToScaled18ApplyRateRoundDown scales a raw amount up to 18 decimals and
// applies the token rate, rounding down.
func ToScaled18ApplyRateRoundDown(amount, scalingFactor, rate exact.Int) (exact.Int, error) {
	scaled, err := amount.Mul(scalingFactor)
	if err != nil {
		return exact.Int{}, err
	}
	return fixedpoint.MulDown(scaled, rate)
}

// ToScaled18ApplyRateRoundUp scales a raw amount up to 18 decimals and
// applies the token rate, rounding up.
func ToScaled18ApplyRateRoundUp(amount, scalingFactor, rate exact.Int) (exact.Int, error) {
	scaled, err := amount.Mul(scalingFactor)
	if err != nil {
		return exact.Int{}, err
	}
	return fixedpoint.MulUp(scaled, rate)
}

// ToRawUndoRateRoundDown converts a scaled-18 amount back to raw units,
// undoing the token rate, rounding down.
func ToRawUndoRateRoundDown(amount, scalingFactor, rate exact.Int) (exact.Int, error) {
	den, err := scalingFactor.Mul(rate)
	if err != nil {
		return exact.Int{}, err
	}
	return fixedpoint.DivDown(amount, den)
}

// ToRawUndoRateRoundUp converts a scaled-18 amount back to raw units,
// undoing the token rate, rounding up.
func ToRawUndoRateRoundUp(amount, scalingFactor, rate exact.Int) (exact.Int, error) {
	den, err := scalingFactor.Mul(rate)
	if err != nil {
		return exact.Int{}, err
	}
	return fixedpoint.DivUp(amount, den)
}
