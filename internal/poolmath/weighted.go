package poolmath

import (
	"errors"
	"fmt"

	"poolVault/internal/exact"
	"poolVault/internal/fixedpoint"
	"poolVault/internal/model"
)

// Swap limits and weight bounds for weighted pools. Swaps may move at most
// 30% of a balance in either direction; smaller weights make the power
// approximation too lossy, so each weight must be at least 1%.
var (
	weightedMaxInRatio  = exact.MustFromString("300000000000000000")
	weightedMaxOutRatio = exact.MustFromString("300000000000000000")
	weightedMinWeight   = exact.MustFromString("10000000000000000")

	weightedMinInvariantRatio = exact.MustFromString("700000000000000000")
	weightedMaxInvariantRatio = exact.MustFromString("3000000000000000000")
)

// ErrInvalidWeights is returned when pool weights are missing, below the
// minimum, or do not sum to one.
var ErrInvalidWeights = errors.New("invalid pool weights")

// Weighted implements constant weighted product math. The invariant is the
// product of each balance raised to its normalized weight.
type Weighted struct {
	weights []exact.Int
}

// NewWeighted validates the pool's weights and builds the strategy.
func NewWeighted(pool *model.PoolState) (Math, error) {
	n := pool.NumTokens()
	if n < 2 || len(pool.Weights) != n {
		return nil, fmt.Errorf("%w: got %d weights for %d tokens", ErrInvalidWeights, len(pool.Weights), n)
	}
	sum := exact.New(0)
	for i, w := range pool.Weights {
		if w.Lt(weightedMinWeight) {
			return nil, fmt.Errorf("%w: weight %d below minimum", ErrInvalidWeights, i)
		}
		var err error
		sum, err = sum.Add(w)
		if err != nil {
			return nil, err
		}
	}
	if !sum.Eq(fixedpoint.One) {
		return nil, fmt.Errorf("%w: weights sum to %s", ErrInvalidWeights, sum)
	}
	return &Weighted{weights: exact.CloneSlice(pool.Weights)}, nil
}

func (w *Weighted) OnSwap(kind model.SwapKind, balances []exact.Int, indexIn, indexOut int, amountScaled18 exact.Int) (exact.Int, error) {
	switch kind {
	case model.SwapKindExactIn:
		return w.outGivenExactIn(balances[indexIn], w.weights[indexIn], balances[indexOut], w.weights[indexOut], amountScaled18)
	case model.SwapKindExactOut:
		return w.inGivenExactOut(balances[indexIn], w.weights[indexIn], balances[indexOut], w.weights[indexOut], amountScaled18)
	}
	return exact.Int{}, fmt.Errorf("unsupported swap kind %d", kind)
}

// outGivenExactIn solves aO = bO * (1 - (bI / (bI + aI))^(wI / wO)),
// rounding every step against the trader.
func (w *Weighted) outGivenExactIn(balanceIn, weightIn, balanceOut, weightOut, amountIn exact.Int) (exact.Int, error) {
	limit, err := fixedpoint.MulDown(balanceIn, weightedMaxInRatio)
	if err != nil {
		return exact.Int{}, err
	}
	if amountIn.Gt(limit) {
		return exact.Int{}, ErrMaxInRatio
	}

	denominator, err := balanceIn.Add(amountIn)
	if err != nil {
		return exact.Int{}, err
	}
	base, err := fixedpoint.DivUp(balanceIn, denominator)
	if err != nil {
		return exact.Int{}, err
	}
	exponent, err := fixedpoint.DivDown(weightIn, weightOut)
	if err != nil {
		return exact.Int{}, err
	}
	power, err := fixedpoint.PowUp(base, exponent)
	if err != nil {
		return exact.Int{}, err
	}
	fraction, err := fixedpoint.Complement(power)
	if err != nil {
		return exact.Int{}, err
	}
	return fixedpoint.MulDown(balanceOut, fraction)
}

// inGivenExactOut solves aI = bI * ((bO / (bO - aO))^(wO / wI) - 1),
// rounding every step against the trader.
func (w *Weighted) inGivenExactOut(balanceIn, weightIn, balanceOut, weightOut, amountOut exact.Int) (exact.Int, error) {
	limit, err := fixedpoint.MulDown(balanceOut, weightedMaxOutRatio)
	if err != nil {
		return exact.Int{}, err
	}
	if amountOut.Gt(limit) {
		return exact.Int{}, ErrMaxOutRatio
	}

	remaining, err := balanceOut.Sub(amountOut)
	if err != nil {
		return exact.Int{}, err
	}
	base, err := fixedpoint.DivUp(balanceOut, remaining)
	if err != nil {
		return exact.Int{}, err
	}
	exponent, err := fixedpoint.DivUp(weightOut, weightIn)
	if err != nil {
		return exact.Int{}, err
	}
	power, err := fixedpoint.PowUp(base, exponent)
	if err != nil {
		return exact.Int{}, err
	}
	ratio, err := power.Sub(fixedpoint.One)
	if err != nil {
		return exact.Int{}, err
	}
	return fixedpoint.MulUp(balanceIn, ratio)
}

func (w *Weighted) ComputeInvariant(balances []exact.Int, rounding Rounding) (exact.Int, error) {
	invariant := fixedpoint.One
	for i, balance := range balances {
		var power, next exact.Int
		var err error
		if rounding == RoundUp {
			power, err = fixedpoint.PowUp(balance, w.weights[i])
		} else {
			power, err = fixedpoint.PowDown(balance, w.weights[i])
		}
		if err != nil {
			return exact.Int{}, err
		}
		if rounding == RoundUp {
			next, err = fixedpoint.MulUp(invariant, power)
		} else {
			next, err = fixedpoint.MulDown(invariant, power)
		}
		if err != nil {
			return exact.Int{}, err
		}
		invariant = next
	}
	if invariant.IsZero() {
		return exact.Int{}, ErrZeroInvariant
	}
	return invariant, nil
}

func (w *Weighted) ComputeBalance(balances []exact.Int, tokenIndex int, invariantRatio exact.Int) (exact.Int, error) {
	if invariantRatio.Lt(weightedMinInvariantRatio) || invariantRatio.Gt(weightedMaxInvariantRatio) {
		return exact.Int{}, fmt.Errorf("%w: %s", ErrInvariantRatioOutOfBounds, invariantRatio)
	}
	// New balance solves ratio^(1/w) applied to the current balance, since
	// the other balances are held fixed.
	exponent, err := fixedpoint.DivUp(fixedpoint.One, w.weights[tokenIndex])
	if err != nil {
		return exact.Int{}, err
	}
	power, err := fixedpoint.PowUp(invariantRatio, exponent)
	if err != nil {
		return exact.Int{}, err
	}
	return fixedpoint.MulUp(balances[tokenIndex], power)
}
