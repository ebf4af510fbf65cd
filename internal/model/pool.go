// Package model defines the pool and request types shared across the engine.
package model

import (
	"github.com/ethereum/go-ethereum/common"

	"poolVault/internal/exact"
)

// PoolState is the full state of one liquidity pool. Token order is identity:
// every per-token slice is indexed the same way as Tokens, and requests refer
// to tokens by index. Balances and total supply are mutated only by the
// vault, and only when a whole operation commits.
type PoolState struct {
	// Address identifies the pool.
	Address common.Address
	// PoolType selects the pool-math strategy.
	PoolType string
	// HookType selects the hook bound to this pool; empty means none.
	HookType string

	Tokens []common.Address
	// ScalingFactors are plain multipliers (10^(18-decimals)) bringing raw
	// token amounts to 18 decimals.
	ScalingFactors []exact.Int
	// TokenRates are 18-decimal prices relative to the numeraire.
	TokenRates []exact.Int
	// BalancesLiveScaled18 are the current balances in scaled-18 space.
	BalancesLiveScaled18 []exact.Int

	// TotalSupply is the supply of the pool's liquidity-receipt token.
	TotalSupply exact.Int
	// SwapFee is the static swap fee, an 18-decimal percentage.
	SwapFee exact.Int
	// AggregateSwapFee is the protocol's share of collected swap fees, an
	// 18-decimal percentage.
	AggregateSwapFee exact.Int

	// Weights are the normalized weights of a weighted pool; unused by other
	// pool types.
	Weights []exact.Int
}

// NumTokens returns the token count.
func (p *PoolState) NumTokens() int {
	return len(p.Tokens)
}

// Clone returns a deep copy of the pool state.
func (p *PoolState) Clone() *PoolState {
	out := *p
	out.Tokens = append([]common.Address(nil), p.Tokens...)
	out.ScalingFactors = exact.CloneSlice(p.ScalingFactors)
	out.TokenRates = exact.CloneSlice(p.TokenRates)
	out.BalancesLiveScaled18 = exact.CloneSlice(p.BalancesLiveScaled18)
	out.Weights = exact.CloneSlice(p.Weights)
	return &out
}

// Equal reports whether two pool states hold identical values.
func (p *PoolState) Equal(o *PoolState) bool {
	if p.Address != o.Address || p.PoolType != o.PoolType || p.HookType != o.HookType {
		return false
	}
	if len(p.Tokens) != len(o.Tokens) {
		return false
	}
	for i := range p.Tokens {
		if p.Tokens[i] != o.Tokens[i] {
			return false
		}
	}
	if !intSlicesEqual(p.ScalingFactors, o.ScalingFactors) ||
		!intSlicesEqual(p.TokenRates, o.TokenRates) ||
		!intSlicesEqual(p.BalancesLiveScaled18, o.BalancesLiveScaled18) ||
		!intSlicesEqual(p.Weights, o.Weights) {
		return false
	}
	return p.TotalSupply.Eq(o.TotalSupply) &&
		p.SwapFee.Eq(o.SwapFee) &&
		p.AggregateSwapFee.Eq(o.AggregateSwapFee)
}

func intSlicesEqual(a, b []exact.Int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}
