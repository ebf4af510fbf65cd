package poolmath

import (
	"poolVault/internal/exact"
	"poolVault/internal/fixedpoint"
)

// The liquidity routines below are strategy agnostic: they drive any Math
// through its invariant and balance computations and layer the swap fee on
// the non-proportional part of the amounts. All inputs and outputs are
// 18-decimal scaled.

// ComputeAddLiquidityUnbalanced returns the BPT minted for exact token
// amounts in, plus the per-token swap fee charged on the unbalanced part.
func ComputeAddLiquidityUnbalanced(
	balances, exactAmountsIn []exact.Int,
	totalSupply, swapFee exact.Int,
	math Math,
) (bptOut exact.Int, swapFeeAmounts []exact.Int, err error) {
	n := len(balances)
	newBalances := make([]exact.Int, n)
	for i := 0; i < n; i++ {
		newBalances[i], err = balances[i].Add(exactAmountsIn[i])
		if err != nil {
			return exact.Int{}, nil, err
		}
	}

	currentInvariant, err := math.ComputeInvariant(balances, RoundUp)
	if err != nil {
		return exact.Int{}, nil, err
	}
	newInvariant, err := math.ComputeInvariant(newBalances, RoundDown)
	if err != nil {
		return exact.Int{}, nil, err
	}
	invariantRatio, err := fixedpoint.DivDown(newInvariant, currentInvariant)
	if err != nil {
		return exact.Int{}, nil, err
	}

	// Charge the fee on the part of each amount that exceeds a proportional
	// join at the new invariant.
	swapFeeAmounts = make([]exact.Int, n)
	for i := 0; i < n; i++ {
		proportional, err := fixedpoint.MulUp(invariantRatio, balances[i])
		if err != nil {
			return exact.Int{}, nil, err
		}
		if newBalances[i].Gt(proportional) {
			taxable, err := newBalances[i].Sub(proportional)
			if err != nil {
				return exact.Int{}, nil, err
			}
			fee, err := fixedpoint.MulUp(taxable, swapFee)
			if err != nil {
				return exact.Int{}, nil, err
			}
			swapFeeAmounts[i] = fee
			newBalances[i], err = newBalances[i].Sub(fee)
			if err != nil {
				return exact.Int{}, nil, err
			}
		} else {
			swapFeeAmounts[i] = exact.New(0)
		}
	}

	invariantWithFees, err := math.ComputeInvariant(newBalances, RoundDown)
	if err != nil {
		return exact.Int{}, nil, err
	}
	if invariantWithFees.Lt(currentInvariant) {
		return exact.Int{}, nil, ErrInsufficientLiquidityMinted
	}
	growth, err := invariantWithFees.Sub(currentInvariant)
	if err != nil {
		return exact.Int{}, nil, err
	}
	bptOut, err = fixedpoint.MulDivDown(totalSupply, growth, currentInvariant)
	if err != nil {
		return exact.Int{}, nil, err
	}
	return bptOut, swapFeeAmounts, nil
}

// ComputeAddLiquiditySingleTokenExactOut returns the single-token amount in,
// fee included, required to mint an exact BPT amount.
func ComputeAddLiquiditySingleTokenExactOut(
	balances []exact.Int,
	tokenInIndex int,
	exactBptOut, totalSupply, swapFee exact.Int,
	math Math,
) (amountInWithFee exact.Int, swapFeeAmounts []exact.Int, err error) {
	newSupply, err := totalSupply.Add(exactBptOut)
	if err != nil {
		return exact.Int{}, nil, err
	}
	invariantRatio, err := fixedpoint.DivUp(newSupply, totalSupply)
	if err != nil {
		return exact.Int{}, nil, err
	}
	newBalance, err := math.ComputeBalance(balances, tokenInIndex, invariantRatio)
	if err != nil {
		return exact.Int{}, nil, err
	}
	amountIn, err := newBalance.Sub(balances[tokenInIndex])
	if err != nil {
		return exact.Int{}, nil, err
	}

	nonTaxable, err := fixedpoint.MulDivDown(newSupply, balances[tokenInIndex], totalSupply)
	if err != nil {
		return exact.Int{}, nil, err
	}
	taxable, err := newBalance.Sub(nonTaxable)
	if err != nil {
		return exact.Int{}, nil, err
	}
	if taxable.Sign() < 0 {
		taxable = exact.New(0)
	}
	feeComplement, err := fixedpoint.Complement(swapFee)
	if err != nil {
		return exact.Int{}, nil, err
	}
	fee, err := fixedpoint.MulDivUp(taxable, swapFee, feeComplement)
	if err != nil {
		return exact.Int{}, nil, err
	}

	swapFeeAmounts = make([]exact.Int, len(balances))
	for i := range swapFeeAmounts {
		swapFeeAmounts[i] = exact.New(0)
	}
	swapFeeAmounts[tokenInIndex] = fee

	amountInWithFee, err = amountIn.Add(fee)
	if err != nil {
		return exact.Int{}, nil, err
	}
	return amountInWithFee, swapFeeAmounts, nil
}

// ComputeProportionalAmountsOut returns the token amounts released by
// burning bptIn proportionally, rounded down in the pool's favor.
func ComputeProportionalAmountsOut(
	balances []exact.Int,
	bptIn, totalSupply exact.Int,
) ([]exact.Int, error) {
	amountsOut := make([]exact.Int, len(balances))
	for i, balance := range balances {
		out, err := fixedpoint.MulDivDown(balance, bptIn, totalSupply)
		if err != nil {
			return nil, err
		}
		amountsOut[i] = out
	}
	return amountsOut, nil
}

// ComputeRemoveLiquiditySingleTokenExactIn returns the single-token amount
// out, fee deducted, for burning an exact BPT amount.
func ComputeRemoveLiquiditySingleTokenExactIn(
	balances []exact.Int,
	tokenOutIndex int,
	exactBptIn, totalSupply, swapFee exact.Int,
	math Math,
) (amountOut exact.Int, swapFeeAmounts []exact.Int, err error) {
	newSupply, err := totalSupply.Sub(exactBptIn)
	if err != nil {
		return exact.Int{}, nil, err
	}
	invariantRatio, err := fixedpoint.DivUp(newSupply, totalSupply)
	if err != nil {
		return exact.Int{}, nil, err
	}
	newBalance, err := math.ComputeBalance(balances, tokenOutIndex, invariantRatio)
	if err != nil {
		return exact.Int{}, nil, err
	}
	amountOut, err = balances[tokenOutIndex].Sub(newBalance)
	if err != nil {
		return exact.Int{}, nil, err
	}

	nonTaxable, err := fixedpoint.MulDivUp(newSupply, balances[tokenOutIndex], totalSupply)
	if err != nil {
		return exact.Int{}, nil, err
	}
	taxable, err := nonTaxable.Sub(newBalance)
	if err != nil {
		return exact.Int{}, nil, err
	}
	if taxable.Sign() < 0 {
		taxable = exact.New(0)
	}
	fee, err := fixedpoint.MulUp(taxable, swapFee)
	if err != nil {
		return exact.Int{}, nil, err
	}

	swapFeeAmounts = make([]exact.Int, len(balances))
	for i := range swapFeeAmounts {
		swapFeeAmounts[i] = exact.New(0)
	}
	swapFeeAmounts[tokenOutIndex] = fee

	amountOut, err = amountOut.Sub(fee)
	if err != nil {
		return exact.Int{}, nil, err
	}
	return amountOut, swapFeeAmounts, nil
}

// ComputeRemoveLiquiditySingleTokenExactOut returns the BPT burned, fee
// included, to withdraw an exact single-token amount.
func ComputeRemoveLiquiditySingleTokenExactOut(
	balances []exact.Int,
	tokenOutIndex int,
	exactAmountOut, totalSupply, swapFee exact.Int,
	math Math,
) (bptIn exact.Int, swapFeeAmounts []exact.Int, err error) {
	currentInvariant, err := math.ComputeInvariant(balances, RoundUp)
	if err != nil {
		return exact.Int{}, nil, err
	}

	newBalances := exact.CloneSlice(balances)
	if newBalances[tokenOutIndex].Lt(exactAmountOut) {
		return exact.Int{}, nil, ErrInsufficientLiquidity
	}
	newBalances[tokenOutIndex], err = newBalances[tokenOutIndex].Sub(exactAmountOut)
	if err != nil {
		return exact.Int{}, nil, err
	}

	tempInvariant, err := math.ComputeInvariant(newBalances, RoundDown)
	if err != nil {
		return exact.Int{}, nil, err
	}
	invariantRatio, err := fixedpoint.DivDown(tempInvariant, currentInvariant)
	if err != nil {
		return exact.Int{}, nil, err
	}

	proportional, err := fixedpoint.MulUp(invariantRatio, balances[tokenOutIndex])
	if err != nil {
		return exact.Int{}, nil, err
	}
	taxable, err := proportional.Sub(newBalances[tokenOutIndex])
	if err != nil {
		return exact.Int{}, nil, err
	}
	if taxable.Sign() < 0 {
		taxable = exact.New(0)
	}
	feeComplement, err := fixedpoint.Complement(swapFee)
	if err != nil {
		return exact.Int{}, nil, err
	}
	fee, err := fixedpoint.MulDivUp(taxable, swapFee, feeComplement)
	if err != nil {
		return exact.Int{}, nil, err
	}

	if newBalances[tokenOutIndex].Lt(fee) {
		return exact.Int{}, nil, ErrInsufficientLiquidity
	}
	newBalances[tokenOutIndex], err = newBalances[tokenOutIndex].Sub(fee)
	if err != nil {
		return exact.Int{}, nil, err
	}

	swapFeeAmounts = make([]exact.Int, len(balances))
	for i := range swapFeeAmounts {
		swapFeeAmounts[i] = exact.New(0)
	}
	swapFeeAmounts[tokenOutIndex] = fee

	finalInvariant, err := math.ComputeInvariant(newBalances, RoundDown)
	if err != nil {
		return exact.Int{}, nil, err
	}
	shrink, err := currentInvariant.Sub(finalInvariant)
	if err != nil {
		return exact.Int{}, nil, err
	}
	bptIn, err = fixedpoint.MulDivUp(totalSupply, shrink, currentInvariant)
	if err != nil {
		return exact.Int{}, nil, err
	}
	return bptIn, swapFeeAmounts, nil
}
