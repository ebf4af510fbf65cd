package hook

import (
	"poolVault/internal/exact"
	"poolVault/internal/fixedpoint"
)

// DirectionalFee charges a multiplied swap fee when the input token matches a
// configured index, discouraging one trade direction. The other direction
// keeps the static fee (returned unmodified with a successful envelope).
type DirectionalFee struct {
	NoOp

	// PenalizedIndexIn is the input token index the surcharge applies to.
	PenalizedIndexIn int
	// FeeMultiplier is an 18-decimal factor applied to the static fee.
	FeeMultiplier exact.Int
}

var _ Hook = (*DirectionalFee)(nil)

// Flags enables only dynamic fee computation.
func (h *DirectionalFee) Flags() Flags {
	return Flags{ShouldCallComputeDynamicSwapFee: true}
}

// OnComputeDynamicSwapFee returns the surcharged fee for the penalized
// direction and the unchanged static fee otherwise. The result is capped
// below 100%.
func (h *DirectionalFee) OnComputeDynamicSwapFee(params SwapParams, staticSwapFee exact.Int, _ any) DynamicFeeResult {
	if params.IndexIn != h.PenalizedIndexIn {
		return DynamicFeeResult{Success: true, DynamicSwapFee: staticSwapFee}
	}

	fee, err := fixedpoint.MulDown(staticSwapFee, h.FeeMultiplier)
	if err != nil {
		return DynamicFeeResult{}
	}
	maxFee, err := fixedpoint.One.Sub(exact.New(1))
	if err != nil {
		return DynamicFeeResult{}
	}
	if fee.Gt(maxFee) {
		fee = maxFee
	}
	return DynamicFeeResult{Success: true, DynamicSwapFee: fee}
}
