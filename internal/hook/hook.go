// Package hook defines the extension points a pool may opt into around the
// vault's swap and liquidity pipelines. A hook never touches pool state: it
// receives copies of the balances it needs and communicates intent only
// through its result envelope. An envelope with Success=false means the vault
// proceeds exactly as if the hook had not fired.
package hook

import (
	"poolVault/internal/exact"
	"poolVault/internal/model"
)

// Flags declares which lifecycle points a hook wants to be called at.
// EnableHookAdjustedAmounts additionally controls whether an "after" hook's
// adjusted amount replaces the computed amount or is advisory only.
type Flags struct {
	EnableHookAdjustedAmounts       bool
	ShouldCallComputeDynamicSwapFee bool
	ShouldCallBeforeSwap            bool
	ShouldCallAfterSwap             bool
	ShouldCallBeforeAddLiquidity    bool
	ShouldCallAfterAddLiquidity     bool
	ShouldCallBeforeRemoveLiquidity bool
	ShouldCallAfterRemoveLiquidity  bool
}

// SwapParams is the hook view of a swap about to be computed. Balances are
// copies in scaled-18 space.
type SwapParams struct {
	Kind                 model.SwapKind
	IndexIn              int
	IndexOut             int
	AmountGivenScaled18  exact.Int
	BalancesLiveScaled18 []exact.Int
}

// AfterSwapParams extends SwapParams with the computed result.
type AfterSwapParams struct {
	Kind                     model.SwapKind
	IndexIn                  int
	IndexOut                 int
	AmountInScaled18         exact.Int
	AmountOutScaled18        exact.Int
	BalancesLiveScaled18     []exact.Int
	AmountCalculatedScaled18 exact.Int
	AmountCalculatedRaw      exact.Int
}

// AddLiquidityParams is the hook view of an add-liquidity request.
type AddLiquidityParams struct {
	Kind                 model.AddLiquidityKind
	MaxAmountsInScaled18 []exact.Int
	MinBptAmountOut      exact.Int
	BalancesLiveScaled18 []exact.Int
}

// AfterAddLiquidityParams extends AddLiquidityParams with the computed result.
type AfterAddLiquidityParams struct {
	Kind                 model.AddLiquidityKind
	AmountsInScaled18    []exact.Int
	AmountsInRaw         []exact.Int
	BptAmountOut         exact.Int
	BalancesLiveScaled18 []exact.Int
}

// RemoveLiquidityParams is the hook view of a remove-liquidity request.
type RemoveLiquidityParams struct {
	Kind                  model.RemoveLiquidityKind
	MaxBptAmountIn        exact.Int
	MinAmountsOutScaled18 []exact.Int
	BalancesLiveScaled18  []exact.Int
}

// AfterRemoveLiquidityParams extends RemoveLiquidityParams with the result.
type AfterRemoveLiquidityParams struct {
	Kind                 model.RemoveLiquidityKind
	BptAmountIn          exact.Int
	AmountsOutScaled18   []exact.Int
	AmountsOutRaw        []exact.Int
	BalancesLiveScaled18 []exact.Int
}

// DynamicFeeResult carries a per-call swap fee override.
type DynamicFeeResult struct {
	Success        bool
	DynamicSwapFee exact.Int
}

// BalancesResult carries hook-adjusted scaled balances for a "before" point.
type BalancesResult struct {
	Success                      bool
	HookAdjustedBalancesScaled18 []exact.Int
}

// AmountResult carries a hook-adjusted raw amount for an "after" swap.
type AmountResult struct {
	Success               bool
	HookAdjustedAmountRaw exact.Int
}

// AmountsResult carries hook-adjusted raw amounts for an "after" liquidity
// point.
type AmountsResult struct {
	Success                bool
	HookAdjustedAmountsRaw []exact.Int
}

// Hook is the seven-point capability contract. State is the opaque
// caller-supplied bag the vault forwards untouched; each implementation
// downcasts it itself and returns Success=false on a shape it does not
// recognize.
type Hook interface {
	Flags() Flags

	OnComputeDynamicSwapFee(params SwapParams, staticSwapFee exact.Int, state any) DynamicFeeResult
	OnBeforeSwap(params SwapParams, state any) BalancesResult
	OnAfterSwap(params AfterSwapParams, state any) AmountResult

	OnBeforeAddLiquidity(params AddLiquidityParams, state any) BalancesResult
	OnAfterAddLiquidity(params AfterAddLiquidityParams, state any) AmountsResult

	OnBeforeRemoveLiquidity(params RemoveLiquidityParams, state any) BalancesResult
	OnAfterRemoveLiquidity(params AfterRemoveLiquidityParams, state any) AmountsResult
}

// NoOp is the null hook: all flags false, every envelope declined. Concrete
// hooks embed it and override only the methods they need.
type NoOp struct{}

var _ Hook = NoOp{}

// Flags returns all-false capabilities.
func (NoOp) Flags() Flags { return Flags{} }

// OnComputeDynamicSwapFee declines.
func (NoOp) OnComputeDynamicSwapFee(SwapParams, exact.Int, any) DynamicFeeResult {
	return DynamicFeeResult{}
}

// OnBeforeSwap declines.
func (NoOp) OnBeforeSwap(SwapParams, any) BalancesResult { return BalancesResult{} }

// OnAfterSwap declines.
func (NoOp) OnAfterSwap(AfterSwapParams, any) AmountResult { return AmountResult{} }

// OnBeforeAddLiquidity declines.
func (NoOp) OnBeforeAddLiquidity(AddLiquidityParams, any) BalancesResult {
	return BalancesResult{}
}

// OnAfterAddLiquidity declines.
func (NoOp) OnAfterAddLiquidity(AfterAddLiquidityParams, any) AmountsResult {
	return AmountsResult{}
}

// OnBeforeRemoveLiquidity declines.
func (NoOp) OnBeforeRemoveLiquidity(RemoveLiquidityParams, any) BalancesResult {
	return BalancesResult{}
}

// OnAfterRemoveLiquidity declines.
func (NoOp) OnAfterRemoveLiquidity(AfterRemoveLiquidityParams, any) AmountsResult {
	return AmountsResult{}
}
