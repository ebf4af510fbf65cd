// Package poolmath defines the pool math strategy interface and the
// registry that maps pool types to strategy constructors. A strategy works
// entirely in 18-decimal scaled amounts and never sees raw token units.
package poolmath

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"poolVault/internal/exact"
	"poolVault/internal/model"
)

// Rounding selects the direction an invariant computation favors.
type Rounding int

const (
	RoundDown Rounding = iota
	RoundUp
)

var (
	// ErrUnknownPoolType is returned when no factory is registered for a pool type.
	ErrUnknownPoolType = errors.New("unknown pool type")
	// ErrInsufficientLiquidity is returned when an operation would drain a balance.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	// ErrMaxInRatio is returned when a swap input exceeds the allowed balance fraction.
	ErrMaxInRatio = errors.New("amount in exceeds max ratio")
	// ErrMaxOutRatio is returned when a swap output exceeds the allowed balance fraction.
	ErrMaxOutRatio = errors.New("amount out exceeds max ratio")
	// ErrInvariantRatioOutOfBounds is returned when a liquidity change moves the
	// invariant outside the strategy's supported range.
	ErrInvariantRatioOutOfBounds = errors.New("invariant ratio out of bounds")
	// ErrZeroInvariant is returned when pool balances produce a zero invariant.
	ErrZeroInvariant = errors.New("zero invariant")
	// ErrInsufficientLiquidityMinted is returned when an add would not grow the invariant.
	ErrInsufficientLiquidityMinted = errors.New("insufficient liquidity minted")
)

// Math computes swap and invariant quantities for one pool. Implementations
// are stateless beyond the immutable parameters captured at construction.
type Math interface {
	// OnSwap returns the calculated amount for a single token swap: the
	// output amount for exact-in, the input amount for exact-out.
	OnSwap(kind model.SwapKind, balances []exact.Int, indexIn, indexOut int, amountScaled18 exact.Int) (exact.Int, error)

	// ComputeInvariant returns the pool invariant over the given balances,
	// rounded in the requested direction.
	ComputeInvariant(balances []exact.Int, rounding Rounding) (exact.Int, error)

	// ComputeBalance returns the new balance of one token after the
	// invariant is multiplied by invariantRatio, other balances fixed.
	ComputeBalance(balances []exact.Int, tokenIndex int, invariantRatio exact.Int) (exact.Int, error)
}

// Factory builds a Math for a pool, validating its immutable parameters.
type Factory func(pool *model.PoolState) (Math, error)

// Registry maps pool type names to factories. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register installs a factory under a pool type name, replacing any
// previous registration.
func (r *Registry) Register(poolType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[poolType] = f
}

// New builds the math strategy for the pool's type.
func (r *Registry) New(pool *model.PoolState) (Math, error) {
	r.mu.RLock()
	f, ok := r.factories[pool.PoolType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPoolType, pool.PoolType)
	}
	return f(pool)
}

// Types returns the registered pool type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for t := range r.factories {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
