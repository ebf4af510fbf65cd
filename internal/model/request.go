package model

import "poolVault/internal/exact"

// SwapKind selects which side of the swap equation is fixed.
type SwapKind int

const (
	// SwapKindExactIn fixes the input amount; the output is computed.
	SwapKindExactIn SwapKind = iota
	// SwapKindExactOut fixes the output amount; the required input is computed.
	SwapKindExactOut
)

// String returns the kind's wire name.
func (k SwapKind) String() string {
	switch k {
	case SwapKindExactIn:
		return "EXACT_IN"
	case SwapKindExactOut:
		return "EXACT_OUT"
	default:
		return "UNKNOWN"
	}
}

// SwapInput is an immutable swap request. AmountRaw is in the token's native
// decimals: the input token's for exact-in, the output token's for exact-out.
type SwapInput struct {
	AmountRaw exact.Int
	Kind      SwapKind
	IndexIn   int
	IndexOut  int
}

// AddLiquidityKind selects the add-liquidity flavor.
type AddLiquidityKind int

const (
	// AddLiquidityUnbalanced fixes exact token amounts in; BPT out is computed.
	AddLiquidityUnbalanced AddLiquidityKind = iota
	// AddLiquiditySingleTokenExactOut fixes the BPT amount out; the single
	// token amount in is computed.
	AddLiquiditySingleTokenExactOut
)

// AddLiquidityInput describes an add-liquidity request in raw units.
// For the single-token kind, exactly one entry of MaxAmountsInRaw is
// non-zero and marks the input token.
type AddLiquidityInput struct {
	Kind            AddLiquidityKind
	MaxAmountsInRaw []exact.Int
	MinBptAmountOut exact.Int
}

// RemoveLiquidityKind selects the remove-liquidity flavor.
type RemoveLiquidityKind int

const (
	// RemoveLiquidityProportional burns exact BPT for proportional amounts out.
	RemoveLiquidityProportional RemoveLiquidityKind = iota
	// RemoveLiquiditySingleTokenExactIn burns exact BPT for a single token out.
	RemoveLiquiditySingleTokenExactIn
	// RemoveLiquiditySingleTokenExactOut fixes a single token amount out; the
	// BPT to burn is computed.
	RemoveLiquiditySingleTokenExactOut
)

// RemoveLiquidityInput describes a remove-liquidity request in raw units.
// For the single-token kinds, exactly one entry of MinAmountsOutRaw is
// non-zero (exact-out) or marks the output token (exact-in).
type RemoveLiquidityInput struct {
	Kind             RemoveLiquidityKind
	MaxBptAmountIn   exact.Int
	MinAmountsOutRaw []exact.Int
}
