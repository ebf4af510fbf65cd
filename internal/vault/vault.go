// Package vault runs the swap and liquidity pipelines over pool state. Every
// operation validates, runs the pool's hook lifecycle, computes in scaled-18
// space, converts back to raw units, and commits balance changes atomically:
// the pool is mutated only after every step has succeeded.
package vault

import (
	"fmt"

	"go.uber.org/zap"

	"poolVault/internal/exact"
	"poolVault/internal/fixedpoint"
	"poolVault/internal/hook"
	"poolVault/internal/model"
	"poolVault/internal/poolmath"
	"poolVault/internal/scaling"
)

// Vault quotes and applies pool operations. It owns no pool state itself;
// callers pass the pool to operate on and the vault mutates it on success.
type Vault struct {
	math  *poolmath.Registry
	hooks *hook.Registry
	log   *zap.Logger
}

// New builds a Vault over the given registries. A nil logger disables logging.
func New(math *poolmath.Registry, hooks *hook.Registry, logger *zap.Logger) *Vault {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vault{math: math, hooks: hooks, log: logger}
}

func validatePool(pool *model.PoolState) error {
	n := pool.NumTokens()
	if n < 2 {
		return ErrPoolShape
	}
	if len(pool.ScalingFactors) != n || len(pool.TokenRates) != n || len(pool.BalancesLiveScaled18) != n {
		return ErrPoolShape
	}
	return nil
}

// Swap executes a single token swap against the pool. The returned amount is
// raw: the output amount for exact-in, the required input for exact-out.
// hookState is forwarded opaquely to the pool's hook.
func (v *Vault) Swap(pool *model.PoolState, input model.SwapInput, hookState any) (exact.Int, error) {
	const op = "swap"

	if err := validatePool(pool); err != nil {
		return exact.Int{}, wrap(op, PhaseValidate, err)
	}
	n := pool.NumTokens()
	if input.IndexIn < 0 || input.IndexIn >= n || input.IndexOut < 0 || input.IndexOut >= n {
		return exact.Int{}, wrap(op, PhaseValidate, ErrInvalidTokenIndex)
	}
	if input.IndexIn == input.IndexOut {
		return exact.Int{}, wrap(op, PhaseValidate, ErrSameToken)
	}
	if input.AmountRaw.Sign() < 0 {
		return exact.Int{}, wrap(op, PhaseValidate, ErrNegativeAmount)
	}
	if input.AmountRaw.IsZero() {
		return exact.Int{}, wrap(op, PhaseValidate, ErrZeroAmount)
	}

	h, err := v.hooks.Resolve(pool.HookType)
	if err != nil {
		return exact.Int{}, wrap(op, PhaseValidate, err)
	}
	m, err := v.math.New(pool)
	if err != nil {
		return exact.Int{}, wrap(op, PhaseValidate, err)
	}

	var amountGivenScaled exact.Int
	if input.Kind == model.SwapKindExactIn {
		amountGivenScaled, err = scaling.ToScaled18ApplyRateRoundDown(input.AmountRaw, pool.ScalingFactors[input.IndexIn], pool.TokenRates[input.IndexIn])
	} else {
		amountGivenScaled, err = scaling.ToScaled18ApplyRateRoundUp(input.AmountRaw, pool.ScalingFactors[input.IndexOut], pool.TokenRates[input.IndexOut])
	}
	if err != nil {
		return exact.Int{}, wrap(op, PhaseCompute, err)
	}

	flags := h.Flags()
	swapFee := pool.SwapFee
	computeBalances := exact.CloneSlice(pool.BalancesLiveScaled18)

	params := hook.SwapParams{
		Kind:                 input.Kind,
		IndexIn:              input.IndexIn,
		IndexOut:             input.IndexOut,
		AmountGivenScaled18:  amountGivenScaled,
		BalancesLiveScaled18: exact.CloneSlice(pool.BalancesLiveScaled18),
	}

	// The dynamic fee override lives for this call only; the pool's static
	// fee is never rewritten.
	if flags.ShouldCallComputeDynamicSwapFee {
		if res := h.OnComputeDynamicSwapFee(params, swapFee, hookState); res.Success {
			swapFee = res.DynamicSwapFee
		}
	}
	if swapFee.Sign() < 0 || swapFee.Gte(fixedpoint.One) {
		return exact.Int{}, wrap(op, PhasePreHook, ErrInvalidSwapFee)
	}
	if flags.ShouldCallBeforeSwap {
		if res := h.OnBeforeSwap(params, hookState); res.Success && len(res.HookAdjustedBalancesScaled18) == n {
			computeBalances = exact.CloneSlice(res.HookAdjustedBalancesScaled18)
		}
	}

	var totalFeeScaled, amountCalculatedScaled exact.Int
	if input.Kind == model.SwapKindExactIn {
		totalFeeScaled, err = fixedpoint.MulUp(amountGivenScaled, swapFee)
		if err != nil {
			return exact.Int{}, wrap(op, PhaseCompute, err)
		}
		net, err := amountGivenScaled.Sub(totalFeeScaled)
		if err != nil {
			return exact.Int{}, wrap(op, PhaseCompute, err)
		}
		amountCalculatedScaled, err = m.OnSwap(input.Kind, computeBalances, input.IndexIn, input.IndexOut, net)
		if err != nil {
			return exact.Int{}, wrap(op, PhaseCompute, err)
		}
	} else {
		calc, err := m.OnSwap(input.Kind, computeBalances, input.IndexIn, input.IndexOut, amountGivenScaled)
		if err != nil {
			return exact.Int{}, wrap(op, PhaseCompute, err)
		}
		feeComplement, err := fixedpoint.Complement(swapFee)
		if err != nil {
			return exact.Int{}, wrap(op, PhaseCompute, err)
		}
		totalFeeScaled, err = fixedpoint.MulDivUp(calc, swapFee, feeComplement)
		if err != nil {
			return exact.Int{}, wrap(op, PhaseCompute, err)
		}
		amountCalculatedScaled, err = calc.Add(totalFeeScaled)
		if err != nil {
			return exact.Int{}, wrap(op, PhaseCompute, err)
		}
	}

	var amountCalculatedRaw exact.Int
	if input.Kind == model.SwapKindExactIn {
		amountCalculatedRaw, err = scaling.ToRawUndoRateRoundDown(amountCalculatedScaled, pool.ScalingFactors[input.IndexOut], pool.TokenRates[input.IndexOut])
	} else {
		amountCalculatedRaw, err = scaling.ToRawUndoRateRoundUp(amountCalculatedScaled, pool.ScalingFactors[input.IndexIn], pool.TokenRates[input.IndexIn])
	}
	if err != nil {
		return exact.Int{}, wrap(op, PhaseCompute, err)
	}

	amountInScaled, amountOutScaled := amountGivenScaled, amountCalculatedScaled
	if input.Kind == model.SwapKindExactOut {
		amountInScaled, amountOutScaled = amountCalculatedScaled, amountGivenScaled
	}

	if flags.ShouldCallAfterSwap {
		after := hook.AfterSwapParams{
			Kind:                     input.Kind,
			IndexIn:                  input.IndexIn,
			IndexOut:                 input.IndexOut,
			AmountInScaled18:         amountInScaled,
			AmountOutScaled18:        amountOutScaled,
			BalancesLiveScaled18:     exact.CloneSlice(pool.BalancesLiveScaled18),
			AmountCalculatedScaled18: amountCalculatedScaled,
			AmountCalculatedRaw:      amountCalculatedRaw,
		}
		if res := h.OnAfterSwap(after, hookState); res.Success && flags.EnableHookAdjustedAmounts {
			amountCalculatedRaw = res.HookAdjustedAmountRaw
		}
	}

	// Commit against the pool's own balances. A before-swap balance override
	// shapes the quote, never the stored state. The aggregate share of the
	// swap fee leaves the pool; the rest stays in the input-side balance.
	aggregateFee, err := fixedpoint.MulDown(totalFeeScaled, pool.AggregateSwapFee)
	if err != nil {
		return exact.Int{}, wrap(op, PhaseCommit, err)
	}
	newIn, err := pool.BalancesLiveScaled18[input.IndexIn].Add(amountInScaled)
	if err != nil {
		return exact.Int{}, wrap(op, PhaseCommit, err)
	}
	newIn, err = newIn.Sub(aggregateFee)
	if err != nil {
		return exact.Int{}, wrap(op, PhaseCommit, err)
	}
	newOut, err := pool.BalancesLiveScaled18[input.IndexOut].Sub(amountOutScaled)
	if err != nil {
		return exact.Int{}, wrap(op, PhaseCommit, err)
	}
	if newOut.Sign() < 0 {
		return exact.Int{}, wrap(op, PhaseCommit, poolmath.ErrInsufficientLiquidity)
	}
	pool.BalancesLiveScaled18[input.IndexIn] = newIn
	pool.BalancesLiveScaled18[input.IndexOut] = newOut

	v.log.Debug("swap applied",
		zap.String("pool", pool.Address.Hex()),
		zap.Stringer("kind", input.Kind),
		zap.String("amount_raw", input.AmountRaw.String()),
		zap.String("calculated_raw", amountCalculatedRaw.String()),
	)
	return amountCalculatedRaw, nil
}

// AddLiquidity adds tokens to the pool and mints BPT. It returns the raw
// amounts actually charged per token and the BPT minted.
func (v *Vault) AddLiquidity(pool *model.PoolState, input model.AddLiquidityInput, hookState any) ([]exact.Int, exact.Int, error) {
	const op = "add-liquidity"

	if err := validatePool(pool); err != nil {
		return nil, exact.Int{}, wrap(op, PhaseValidate, err)
	}
	n := pool.NumTokens()
	if len(input.MaxAmountsInRaw) != n {
		return nil, exact.Int{}, wrap(op, PhaseValidate, ErrInputShape)
	}
	anyPositive := false
	for _, a := range input.MaxAmountsInRaw {
		if a.Sign() < 0 {
			return nil, exact.Int{}, wrap(op, PhaseValidate, ErrNegativeAmount)
		}
		if a.Sign() > 0 {
			anyPositive = true
		}
	}
	if input.MinBptAmountOut.Sign() < 0 {
		return nil, exact.Int{}, wrap(op, PhaseValidate, ErrNegativeAmount)
	}

	tokenIndex := -1
	switch input.Kind {
	case model.AddLiquidityUnbalanced:
		if !anyPositive {
			return nil, exact.Int{}, wrap(op, PhaseValidate, ErrZeroAmount)
		}
	case model.AddLiquiditySingleTokenExactOut:
		idx, err := singlePositiveIndex(input.MaxAmountsInRaw)
		if err != nil {
			return nil, exact.Int{}, wrap(op, PhaseValidate, err)
		}
		tokenIndex = idx
		if input.MinBptAmountOut.IsZero() {
			return nil, exact.Int{}, wrap(op, PhaseValidate, ErrZeroAmount)
		}
	default:
		return nil, exact.Int{}, wrap(op, PhaseValidate, fmt.Errorf("unsupported add liquidity kind %d", input.Kind))
	}

	h, err := v.hooks.Resolve(pool.HookType)
	if err != nil {
		return nil, exact.Int{}, wrap(op, PhaseValidate, err)
	}
	m, err := v.math.New(pool)
	if err != nil {
		return nil, exact.Int{}, wrap(op, PhaseValidate, err)
	}

	maxAmountsInScaled := make([]exact.Int, n)
	for i, a := range input.MaxAmountsInRaw {
		maxAmountsInScaled[i], err = scaling.ToScaled18ApplyRateRoundDown(a, pool.ScalingFactors[i], pool.TokenRates[i])
		if err != nil {
			return nil, exact.Int{}, wrap(op, PhaseCompute, err)
		}
	}

	flags := h.Flags()
	computeBalances := exact.CloneSlice(pool.BalancesLiveScaled18)
	if flags.ShouldCallBeforeAddLiquidity {
		params := hook.AddLiquidityParams{
			Kind:                 input.Kind,
			MaxAmountsInScaled18: exact.CloneSlice(maxAmountsInScaled),
			MinBptAmountOut:      input.MinBptAmountOut,
			BalancesLiveScaled18: exact.CloneSlice(pool.BalancesLiveScaled18),
		}
		if res := h.OnBeforeAddLiquidity(params, hookState); res.Success && len(res.HookAdjustedBalancesScaled18) == n {
			computeBalances = exact.CloneSlice(res.HookAdjustedBalancesScaled18)
		}
	}

	var (
		bptOut          exact.Int
		swapFeeAmounts  []exact.Int
		amountsInScaled []exact.Int
		amountsInRaw    []exact.Int
	)
	switch input.Kind {
	case model.AddLiquidityUnbalanced:
		bptOut, swapFeeAmounts, err = poolmath.ComputeAddLiquidityUnbalanced(computeBalances, maxAmountsInScaled, pool.TotalSupply, pool.SwapFee, m)
		if err != nil {
			return nil, exact.Int{}, wrap(op, PhaseCompute, err)
		}
		amountsInScaled = exact.CloneSlice(maxAmountsInScaled)
		amountsInRaw = exact.CloneSlice(input.MaxAmountsInRaw)
	case model.AddLiquiditySingleTokenExactOut:
		bptOut = input.MinBptAmountOut
		var amountInScaled exact.Int
		amountInScaled, swapFeeAmounts, err = poolmath.ComputeAddLiquiditySingleTokenExactOut(computeBalances, tokenIndex, bptOut, pool.TotalSupply, pool.SwapFee, m)
		if err != nil {
			return nil, exact.Int{}, wrap(op, PhaseCompute, err)
		}
		amountsInScaled = zeroSlice(n)
		amountsInScaled[tokenIndex] = amountInScaled
		amountsInRaw = zeroSlice(n)
		amountsInRaw[tokenIndex], err = scaling.ToRawUndoRateRoundUp(amountInScaled, pool.ScalingFactors[tokenIndex], pool.TokenRates[tokenIndex])
		if err != nil {
			return nil, exact.Int{}, wrap(op, PhaseCompute, err)
		}
	}

	if bptOut.Lt(input.MinBptAmountOut) {
		return nil, exact.Int{}, wrap(op, PhaseCompute, ErrBelowMinBpt)
	}
	for i := 0; i < n; i++ {
		if amountsInRaw[i].Gt(input.MaxAmountsInRaw[i]) {
			return nil, exact.Int{}, wrap(op, PhaseCompute, ErrAboveMaxAmountIn)
		}
	}

	if flags.ShouldCallAfterAddLiquidity {
		after := hook.AfterAddLiquidityParams{
			Kind:                 input.Kind,
			AmountsInScaled18:    exact.CloneSlice(amountsInScaled),
			AmountsInRaw:         exact.CloneSlice(amountsInRaw),
			BptAmountOut:         bptOut,
			BalancesLiveScaled18: exact.CloneSlice(pool.BalancesLiveScaled18),
		}
		if res := h.OnAfterAddLiquidity(after, hookState); res.Success && flags.EnableHookAdjustedAmounts && len(res.HookAdjustedAmountsRaw) == n {
			amountsInRaw = exact.CloneSlice(res.HookAdjustedAmountsRaw)
		}
	}

	newBalances := make([]exact.Int, n)
	for i := 0; i < n; i++ {
		aggregateFee, err := fixedpoint.MulDown(swapFeeAmounts[i], pool.AggregateSwapFee)
		if err != nil {
			return nil, exact.Int{}, wrap(op, PhaseCommit, err)
		}
		b, err := pool.BalancesLiveScaled18[i].Add(amountsInScaled[i])
		if err != nil {
			return nil, exact.Int{}, wrap(op, PhaseCommit, err)
		}
		newBalances[i], err = b.Sub(aggregateFee)
		if err != nil {
			return nil, exact.Int{}, wrap(op, PhaseCommit, err)
		}
	}
	newSupply, err := pool.TotalSupply.Add(bptOut)
	if err != nil {
		return nil, exact.Int{}, wrap(op, PhaseCommit, err)
	}
	copy(pool.BalancesLiveScaled18, newBalances)
	pool.TotalSupply = newSupply

	v.log.Debug("liquidity added",
		zap.String("pool", pool.Address.Hex()),
		zap.String("bpt_out", bptOut.String()),
	)
	return amountsInRaw, bptOut, nil
}

// RemoveLiquidity burns BPT and releases tokens. It returns the BPT actually
// burned and the raw amounts paid out per token.
func (v *Vault) RemoveLiquidity(pool *model.PoolState, input model.RemoveLiquidityInput, hookState any) (exact.Int, []exact.Int, error) {
	const op = "remove-liquidity"

	if err := validatePool(pool); err != nil {
		return exact.Int{}, nil, wrap(op, PhaseValidate, err)
	}
	n := pool.NumTokens()
	if len(input.MinAmountsOutRaw) != n {
		return exact.Int{}, nil, wrap(op, PhaseValidate, ErrInputShape)
	}
	for _, a := range input.MinAmountsOutRaw {
		if a.Sign() < 0 {
			return exact.Int{}, nil, wrap(op, PhaseValidate, ErrNegativeAmount)
		}
	}
	if input.MaxBptAmountIn.Sign() < 0 {
		return exact.Int{}, nil, wrap(op, PhaseValidate, ErrNegativeAmount)
	}
	if input.MaxBptAmountIn.IsZero() {
		return exact.Int{}, nil, wrap(op, PhaseValidate, ErrZeroAmount)
	}

	tokenIndex := -1
	switch input.Kind {
	case model.RemoveLiquidityProportional:
	case model.RemoveLiquiditySingleTokenExactIn, model.RemoveLiquiditySingleTokenExactOut:
		idx, err := singlePositiveIndex(input.MinAmountsOutRaw)
		if err != nil {
			return exact.Int{}, nil, wrap(op, PhaseValidate, err)
		}
		tokenIndex = idx
	default:
		return exact.Int{}, nil, wrap(op, PhaseValidate, fmt.Errorf("unsupported remove liquidity kind %d", input.Kind))
	}

	h, err := v.hooks.Resolve(pool.HookType)
	if err != nil {
		return exact.Int{}, nil, wrap(op, PhaseValidate, err)
	}
	m, err := v.math.New(pool)
	if err != nil {
		return exact.Int{}, nil, wrap(op, PhaseValidate, err)
	}

	minAmountsOutScaled := make([]exact.Int, n)
	for i, a := range input.MinAmountsOutRaw {
		minAmountsOutScaled[i], err = scaling.ToScaled18ApplyRateRoundUp(a, pool.ScalingFactors[i], pool.TokenRates[i])
		if err != nil {
			return exact.Int{}, nil, wrap(op, PhaseCompute, err)
		}
	}

	flags := h.Flags()
	computeBalances := exact.CloneSlice(pool.BalancesLiveScaled18)
	if flags.ShouldCallBeforeRemoveLiquidity {
		params := hook.RemoveLiquidityParams{
			Kind:                  input.Kind,
			MaxBptAmountIn:        input.MaxBptAmountIn,
			MinAmountsOutScaled18: exact.CloneSlice(minAmountsOutScaled),
			BalancesLiveScaled18:  exact.CloneSlice(pool.BalancesLiveScaled18),
		}
		if res := h.OnBeforeRemoveLiquidity(params, hookState); res.Success && len(res.HookAdjustedBalancesScaled18) == n {
			computeBalances = exact.CloneSlice(res.HookAdjustedBalancesScaled18)
		}
	}

	var (
		bptIn            exact.Int
		swapFeeAmounts   []exact.Int
		amountsOutScaled []exact.Int
		amountsOutRaw    []exact.Int
	)
	switch input.Kind {
	case model.RemoveLiquidityProportional:
		bptIn = input.MaxBptAmountIn
		amountsOutScaled, err = poolmath.ComputeProportionalAmountsOut(computeBalances, bptIn, pool.TotalSupply)
		if err != nil {
			return exact.Int{}, nil, wrap(op, PhaseCompute, err)
		}
		swapFeeAmounts = zeroSlice(n)
	case model.RemoveLiquiditySingleTokenExactIn:
		bptIn = input.MaxBptAmountIn
		var amountOutScaled exact.Int
		amountOutScaled, swapFeeAmounts, err = poolmath.ComputeRemoveLiquiditySingleTokenExactIn(computeBalances, tokenIndex, bptIn, pool.TotalSupply, pool.SwapFee, m)
		if err != nil {
			return exact.Int{}, nil, wrap(op, PhaseCompute, err)
		}
		amountsOutScaled = zeroSlice(n)
		amountsOutScaled[tokenIndex] = amountOutScaled
	case model.RemoveLiquiditySingleTokenExactOut:
		amountsOutScaled = zeroSlice(n)
		amountsOutScaled[tokenIndex] = minAmountsOutScaled[tokenIndex]
		bptIn, swapFeeAmounts, err = poolmath.ComputeRemoveLiquiditySingleTokenExactOut(computeBalances, tokenIndex, amountsOutScaled[tokenIndex], pool.TotalSupply, pool.SwapFee, m)
		if err != nil {
			return exact.Int{}, nil, wrap(op, PhaseCompute, err)
		}
	}

	amountsOutRaw = make([]exact.Int, n)
	for i := 0; i < n; i++ {
		amountsOutRaw[i], err = scaling.ToRawUndoRateRoundDown(amountsOutScaled[i], pool.ScalingFactors[i], pool.TokenRates[i])
		if err != nil {
			return exact.Int{}, nil, wrap(op, PhaseCompute, err)
		}
	}
	if input.Kind == model.RemoveLiquiditySingleTokenExactOut {
		// The user receives exactly the requested raw amount.
		amountsOutRaw[tokenIndex] = input.MinAmountsOutRaw[tokenIndex]
	}

	if bptIn.Gt(input.MaxBptAmountIn) {
		return exact.Int{}, nil, wrap(op, PhaseCompute, ErrAboveMaxBpt)
	}
	for i := 0; i < n; i++ {
		if amountsOutRaw[i].Lt(input.MinAmountsOutRaw[i]) {
			return exact.Int{}, nil, wrap(op, PhaseCompute, ErrBelowMinAmountOut)
		}
	}

	if flags.ShouldCallAfterRemoveLiquidity {
		after := hook.AfterRemoveLiquidityParams{
			Kind:                 input.Kind,
			BptAmountIn:          bptIn,
			AmountsOutScaled18:   exact.CloneSlice(amountsOutScaled),
			AmountsOutRaw:        exact.CloneSlice(amountsOutRaw),
			BalancesLiveScaled18: exact.CloneSlice(pool.BalancesLiveScaled18),
		}
		if res := h.OnAfterRemoveLiquidity(after, hookState); res.Success && flags.EnableHookAdjustedAmounts && len(res.HookAdjustedAmountsRaw) == n {
			amountsOutRaw = exact.CloneSlice(res.HookAdjustedAmountsRaw)
		}
	}

	newBalances := make([]exact.Int, n)
	for i := 0; i < n; i++ {
		aggregateFee, err := fixedpoint.MulDown(swapFeeAmounts[i], pool.AggregateSwapFee)
		if err != nil {
			return exact.Int{}, nil, wrap(op, PhaseCommit, err)
		}
		b, err := pool.BalancesLiveScaled18[i].Sub(amountsOutScaled[i])
		if err != nil {
			return exact.Int{}, nil, wrap(op, PhaseCommit, err)
		}
		newBalances[i], err = b.Sub(aggregateFee)
		if err != nil {
			return exact.Int{}, nil, wrap(op, PhaseCommit, err)
		}
		if newBalances[i].Sign() < 0 {
			return exact.Int{}, nil, wrap(op, PhaseCommit, poolmath.ErrInsufficientLiquidity)
		}
	}
	newSupply, err := pool.TotalSupply.Sub(bptIn)
	if err != nil {
		return exact.Int{}, nil, wrap(op, PhaseCommit, err)
	}
	if newSupply.Sign() < 0 {
		return exact.Int{}, nil, wrap(op, PhaseCommit, poolmath.ErrInsufficientLiquidity)
	}
	copy(pool.BalancesLiveScaled18, newBalances)
	pool.TotalSupply = newSupply

	v.log.Debug("liquidity removed",
		zap.String("pool", pool.Address.Hex()),
		zap.String("bpt_in", bptIn.String()),
	)
	return bptIn, amountsOutRaw, nil
}

func singlePositiveIndex(amounts []exact.Int) (int, error) {
	idx := -1
	for i, a := range amounts {
		if a.Sign() > 0 {
			if idx >= 0 {
				return -1, ErrInputShape
			}
			idx = i
		}
	}
	if idx < 0 {
		return -1, ErrZeroAmount
	}
	return idx, nil
}

func zeroSlice(n int) []exact.Int {
	out := make([]exact.Int, n)
	for i := range out {
		out[i] = exact.New(0)
	}
	return out
}
