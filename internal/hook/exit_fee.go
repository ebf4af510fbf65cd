package hook

import (
	"poolVault/internal/exact"
	"poolVault/internal/fixedpoint"
)

// ExitFee withholds a percentage of every token amount paid out by a
// remove-liquidity operation. It needs EnableHookAdjustedAmounts: without it
// the vault treats the adjusted amounts as advisory and pays out in full.
type ExitFee struct {
	NoOp

	// ExitFeePercentage is the 18-decimal share withheld from each amount out.
	ExitFeePercentage exact.Int
}

var _ Hook = (*ExitFee)(nil)

// Flags enables the after-remove-liquidity point with amount adjustment.
func (h *ExitFee) Flags() Flags {
	return Flags{
		ShouldCallAfterRemoveLiquidity: true,
		EnableHookAdjustedAmounts:      true,
	}
}

// OnAfterRemoveLiquidity returns amounts out reduced by the exit fee. The
// fee rounds down so the withheld amount never exceeds the percentage.
func (h *ExitFee) OnAfterRemoveLiquidity(params AfterRemoveLiquidityParams, _ any) AmountsResult {
	adjusted := make([]exact.Int, len(params.AmountsOutRaw))
	for i, amount := range params.AmountsOutRaw {
		fee, err := fixedpoint.MulDown(amount, h.ExitFeePercentage)
		if err != nil {
			return AmountsResult{}
		}
		kept, err := amount.Sub(fee)
		if err != nil {
			return AmountsResult{}
		}
		adjusted[i] = kept
	}
	return AmountsResult{Success: true, HookAdjustedAmountsRaw: adjusted}
}
