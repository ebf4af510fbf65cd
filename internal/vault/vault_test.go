package vault

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"poolVault/internal/exact"
	"poolVault/internal/hook"
	"poolVault/internal/model"
	"poolVault/internal/poolmath"
)

func mustInt(t *testing.T, s string) exact.Int {
	t.Helper()
	v, err := exact.FromString(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

// balanceOverrideHook replaces the compute balances with the slice supplied
// as hook state.
type balanceOverrideHook struct {
	hook.NoOp
}

func (balanceOverrideHook) Flags() hook.Flags {
	return hook.Flags{ShouldCallBeforeSwap: true}
}

func (balanceOverrideHook) OnBeforeSwap(_ hook.SwapParams, state any) hook.BalancesResult {
	balances, ok := state.([]exact.Int)
	if !ok {
		return hook.BalancesResult{}
	}
	return hook.BalancesResult{Success: true, HookAdjustedBalancesScaled18: balances}
}

// afterSwapHook returns a fixed adjusted raw amount; adjustment is honored
// only when the adjust flag is set.
type afterSwapHook struct {
	hook.NoOp

	adjust   bool
	adjusted exact.Int
}

func (h afterSwapHook) Flags() hook.Flags {
	return hook.Flags{ShouldCallAfterSwap: true, EnableHookAdjustedAmounts: h.adjust}
}

func (h afterSwapHook) OnAfterSwap(hook.AfterSwapParams, any) hook.AmountResult {
	return hook.AmountResult{Success: true, HookAdjustedAmountRaw: h.adjusted}
}

func testPool(t *testing.T) *model.PoolState {
	t.Helper()
	one18 := mustInt(t, "1000000000000000000")
	two18 := mustInt(t, "2000000000000000000")
	half := mustInt(t, "500000000000000000")
	return &model.PoolState{
		Address:  common.HexToAddress("0x1000000000000000000000000000000000000001"),
		PoolType: "WEIGHTED",
		Tokens: []common.Address{
			common.HexToAddress("0x2000000000000000000000000000000000000001"),
			common.HexToAddress("0x2000000000000000000000000000000000000002"),
		},
		ScalingFactors:       []exact.Int{exact.New(1), exact.New(1)},
		TokenRates:           []exact.Int{one18, one18},
		BalancesLiveScaled18: []exact.Int{two18, two18},
		TotalSupply:          two18,
		SwapFee:              mustInt(t, "100000000000000000"),
		AggregateSwapFee:     half,
		Weights:              []exact.Int{half, half},
	}
}

func testVault(t *testing.T) (*Vault, *hook.Registry) {
	t.Helper()
	math := poolmath.NewRegistry()
	math.Register("WEIGHTED", poolmath.NewWeighted)
	hooks := hook.NewRegistry()
	return New(math, hooks, nil), hooks
}

func TestSwapExactInWithBalanceOverride(t *testing.T) {
	v, hooks := testVault(t)
	hooks.Register("BALANCE_OVERRIDE", balanceOverrideHook{})

	pool := testPool(t)
	pool.HookType = "BALANCE_OVERRIDE"
	overridden := []exact.Int{
		mustInt(t, "1000000000000000000"),
		mustInt(t, "1000000000000000000"),
	}

	got, err := v.Swap(pool, model.SwapInput{
		AmountRaw: mustInt(t, "100000000"),
		Kind:      model.SwapKindExactIn,
		IndexIn:   0,
		IndexOut:  1,
	}, overridden)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if !got.Eq(mustInt(t, "89999999")) {
		t.Fatalf("amount out = %s, want 89999999", got)
	}

	// The override shapes the quote only; the commit runs against the
	// pool's stored balances. Half the 10000000 fee leaves as the
	// aggregate share.
	wantIn := mustInt(t, "2000000000095000000")
	wantOut := mustInt(t, "1999999999910000001")
	if !pool.BalancesLiveScaled18[0].Eq(wantIn) {
		t.Fatalf("balance in = %s, want %s", pool.BalancesLiveScaled18[0], wantIn)
	}
	if !pool.BalancesLiveScaled18[1].Eq(wantOut) {
		t.Fatalf("balance out = %s, want %s", pool.BalancesLiveScaled18[1], wantOut)
	}
}

func TestSwapExactInNoHook(t *testing.T) {
	v, _ := testVault(t)
	pool := testPool(t)

	got, err := v.Swap(pool, model.SwapInput{
		AmountRaw: mustInt(t, "100000000"),
		Kind:      model.SwapKindExactIn,
		IndexIn:   0,
		IndexOut:  1,
	}, nil)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if !got.Eq(mustInt(t, "89999998")) {
		t.Fatalf("amount out = %s, want 89999998", got)
	}
}

// malformedBalancesHook claims success with a balance vector that does not
// match the pool's token count.
type malformedBalancesHook struct {
	hook.NoOp
}

func (malformedBalancesHook) Flags() hook.Flags {
	return hook.Flags{ShouldCallBeforeSwap: true}
}

func (malformedBalancesHook) OnBeforeSwap(hook.SwapParams, any) hook.BalancesResult {
	return hook.BalancesResult{
		Success: true,
		HookAdjustedBalancesScaled18: []exact.Int{
			exact.New(1), exact.New(1), exact.New(1),
		},
	}
}

// malformedAmountsHook claims success with an adjusted-amounts vector that
// does not match the pool's token count.
type malformedAmountsHook struct {
	hook.NoOp
}

func (malformedAmountsHook) Flags() hook.Flags {
	return hook.Flags{
		ShouldCallAfterRemoveLiquidity: true,
		EnableHookAdjustedAmounts:      true,
	}
}

func (malformedAmountsHook) OnAfterRemoveLiquidity(hook.AfterRemoveLiquidityParams, any) hook.AmountsResult {
	return hook.AmountsResult{
		Success: true,
		HookAdjustedAmountsRaw: []exact.Int{
			exact.New(1), exact.New(1), exact.New(1),
		},
	}
}

func TestMalformedBalanceOverrideIgnored(t *testing.T) {
	v, hooks := testVault(t)
	hooks.Register("MALFORMED_BALANCES", malformedBalancesHook{})

	input := model.SwapInput{
		AmountRaw: mustInt(t, "100000000"),
		Kind:      model.SwapKindExactIn,
		IndexIn:   0,
		IndexOut:  1,
	}

	want, err := v.Swap(testPool(t), input, nil)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}

	// A successful envelope with a wrong-length balance vector is treated
	// as a declined one: the swap computes over the pool's own balances.
	pool := testPool(t)
	pool.HookType = "MALFORMED_BALANCES"
	got, err := v.Swap(pool, input, nil)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if !got.Eq(want) {
		t.Fatalf("malformed override changed the result: %s, want %s", got, want)
	}
}

func TestMalformedAdjustedAmountsIgnored(t *testing.T) {
	v, hooks := testVault(t)
	hooks.Register("MALFORMED_AMOUNTS", malformedAmountsHook{})

	pool := testPool(t)
	pool.HookType = "MALFORMED_AMOUNTS"
	pool.BalancesLiveScaled18 = []exact.Int{
		mustInt(t, "2000000000000000000"),
		mustInt(t, "4000000000000000000"),
	}
	pool.TotalSupply = mustInt(t, "4000000000000000000")

	_, amountsOut, err := v.RemoveLiquidity(pool, model.RemoveLiquidityInput{
		Kind:             model.RemoveLiquidityProportional,
		MaxBptAmountIn:   mustInt(t, "1000000000000000000"),
		MinAmountsOutRaw: []exact.Int{exact.New(0), exact.New(0)},
	}, nil)
	if err != nil {
		t.Fatalf("RemoveLiquidity: %v", err)
	}
	if len(amountsOut) != 2 {
		t.Fatalf("amounts out length %d", len(amountsOut))
	}
	if !amountsOut[0].Eq(mustInt(t, "500000000000000000")) || !amountsOut[1].Eq(mustInt(t, "1000000000000000000")) {
		t.Fatalf("malformed adjustment changed amounts: [%s %s]", amountsOut[0], amountsOut[1])
	}
}

func TestNoOpHookMatchesNoHook(t *testing.T) {
	v, hooks := testVault(t)
	hooks.Register("NOOP", hook.NoOp{})

	input := model.SwapInput{
		AmountRaw: mustInt(t, "100000000"),
		Kind:      model.SwapKindExactIn,
		IndexIn:   0,
		IndexOut:  1,
	}

	plainPool := testPool(t)
	plain, err := v.Swap(plainPool, input, nil)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}

	noopPool := testPool(t)
	noopPool.HookType = "NOOP"
	noop, err := v.Swap(noopPool, input, nil)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}

	if !plain.Eq(noop) {
		t.Fatalf("no-op hook changed the result: %s vs %s", plain, noop)
	}
	for i := range plainPool.BalancesLiveScaled18 {
		if !plainPool.BalancesLiveScaled18[i].Eq(noopPool.BalancesLiveScaled18[i]) {
			t.Fatalf("no-op hook changed committed balance %d", i)
		}
	}
}

func TestSwapValidation(t *testing.T) {
	v, _ := testVault(t)
	amount := mustInt(t, "100000000")

	cases := []struct {
		name  string
		input model.SwapInput
		want  error
	}{
		{"same token", model.SwapInput{AmountRaw: amount, IndexIn: 1, IndexOut: 1}, ErrSameToken},
		{"index out of range", model.SwapInput{AmountRaw: amount, IndexIn: 0, IndexOut: 2}, ErrInvalidTokenIndex},
		{"negative index", model.SwapInput{AmountRaw: amount, IndexIn: -1, IndexOut: 1}, ErrInvalidTokenIndex},
		{"negative amount", model.SwapInput{AmountRaw: exact.New(-1), IndexIn: 0, IndexOut: 1}, ErrNegativeAmount},
		{"zero amount", model.SwapInput{AmountRaw: exact.New(0), IndexIn: 0, IndexOut: 1}, ErrZeroAmount},
	}
	for _, tc := range cases {
		pool := testPool(t)
		before := pool.Clone()
		_, err := v.Swap(pool, tc.input, nil)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
		var ve *Error
		if !errors.As(err, &ve) || ve.Phase != PhaseValidate {
			t.Fatalf("%s: not a validate phase error: %v", tc.name, err)
		}
		if !pool.Equal(before) {
			t.Fatalf("%s: pool mutated on rejected request", tc.name)
		}
	}
}

func TestSwapFailsFastOnUnknownTypes(t *testing.T) {
	v, _ := testVault(t)
	input := model.SwapInput{AmountRaw: mustInt(t, "100000000"), IndexIn: 0, IndexOut: 1}

	pool := testPool(t)
	pool.HookType = "NOPE"
	if _, err := v.Swap(pool, input, nil); !errors.Is(err, hook.ErrNotRegistered) {
		t.Fatalf("unknown hook: %v", err)
	}

	pool = testPool(t)
	pool.PoolType = "STABLE"
	if _, err := v.Swap(pool, input, nil); !errors.Is(err, poolmath.ErrUnknownPoolType) {
		t.Fatalf("unknown pool type: %v", err)
	}
}

func TestSwapAtomicOnComputeFailure(t *testing.T) {
	v, _ := testVault(t)
	pool := testPool(t)
	before := pool.Clone()

	// Exceeds the 30% input ratio limit of the weighted math.
	_, err := v.Swap(pool, model.SwapInput{
		AmountRaw: mustInt(t, "1000000000000000000"),
		Kind:      model.SwapKindExactIn,
		IndexIn:   0,
		IndexOut:  1,
	}, nil)
	if !errors.Is(err, poolmath.ErrMaxInRatio) {
		t.Fatalf("Swap: %v", err)
	}
	if !pool.Equal(before) {
		t.Fatal("pool mutated on failed swap")
	}
}

func TestDynamicFeeNotPersisted(t *testing.T) {
	v, hooks := testVault(t)
	hooks.Register("DIRECTIONAL_FEE", &hook.DirectionalFee{
		PenalizedIndexIn: 0,
		FeeMultiplier:    mustInt(t, "2000000000000000000"),
	})

	pool := testPool(t)
	pool.HookType = "DIRECTIONAL_FEE"
	staticFee := pool.SwapFee

	penalized, err := v.Swap(pool, model.SwapInput{
		AmountRaw: mustInt(t, "100000000"),
		Kind:      model.SwapKindExactIn,
		IndexIn:   0,
		IndexOut:  1,
	}, nil)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if !pool.SwapFee.Eq(staticFee) {
		t.Fatalf("static fee rewritten to %s", pool.SwapFee)
	}

	plain, err := v.Swap(testPool(t), model.SwapInput{
		AmountRaw: mustInt(t, "100000000"),
		Kind:      model.SwapKindExactIn,
		IndexIn:   0,
		IndexOut:  1,
	}, nil)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if !penalized.Lt(plain) {
		t.Fatalf("doubled fee did not reduce output: %s vs %s", penalized, plain)
	}
}

func TestAfterSwapAdjustmentGating(t *testing.T) {
	adjusted := mustInt(t, "12345")

	v, hooks := testVault(t)
	hooks.Register("ADVISORY", afterSwapHook{adjusted: adjusted})
	hooks.Register("ADJUSTING", afterSwapHook{adjust: true, adjusted: adjusted})

	input := model.SwapInput{
		AmountRaw: mustInt(t, "100000000"),
		Kind:      model.SwapKindExactIn,
		IndexIn:   0,
		IndexOut:  1,
	}

	pool := testPool(t)
	pool.HookType = "ADVISORY"
	got, err := v.Swap(pool, input, nil)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if got.Eq(adjusted) {
		t.Fatal("advisory adjustment was honored")
	}

	pool = testPool(t)
	pool.HookType = "ADJUSTING"
	got, err = v.Swap(pool, input, nil)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if !got.Eq(adjusted) {
		t.Fatalf("adjustment ignored: got %s", got)
	}
}

func TestAddLiquidityUnbalanced(t *testing.T) {
	v, _ := testVault(t)
	pool := testPool(t)
	pool.SwapFee = exact.New(0)
	one18 := mustInt(t, "1000000000000000000")
	supplyBefore := pool.TotalSupply

	amountsIn, bptOut, err := v.AddLiquidity(pool, model.AddLiquidityInput{
		Kind:            model.AddLiquidityUnbalanced,
		MaxAmountsInRaw: []exact.Int{one18, one18},
		MinBptAmountOut: exact.New(0),
	}, nil)
	if err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}
	if !amountsIn[0].Eq(one18) || !amountsIn[1].Eq(one18) {
		t.Fatalf("amounts in = [%s %s]", amountsIn[0], amountsIn[1])
	}
	if bptOut.Sign() <= 0 {
		t.Fatalf("bptOut = %s", bptOut)
	}
	wantBalance := mustInt(t, "3000000000000000000")
	if !pool.BalancesLiveScaled18[0].Eq(wantBalance) || !pool.BalancesLiveScaled18[1].Eq(wantBalance) {
		t.Fatalf("balances = [%s %s]", pool.BalancesLiveScaled18[0], pool.BalancesLiveScaled18[1])
	}
	wantSupply, err := supplyBefore.Add(bptOut)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !pool.TotalSupply.Eq(wantSupply) {
		t.Fatalf("total supply = %s, want %s", pool.TotalSupply, wantSupply)
	}
}

func TestAddLiquidityMinBptLimit(t *testing.T) {
	v, _ := testVault(t)
	pool := testPool(t)
	before := pool.Clone()
	one18 := mustInt(t, "1000000000000000000")

	_, _, err := v.AddLiquidity(pool, model.AddLiquidityInput{
		Kind:            model.AddLiquidityUnbalanced,
		MaxAmountsInRaw: []exact.Int{one18, one18},
		MinBptAmountOut: mustInt(t, "100000000000000000000"),
	}, nil)
	if !errors.Is(err, ErrBelowMinBpt) {
		t.Fatalf("AddLiquidity: %v", err)
	}
	if !pool.Equal(before) {
		t.Fatal("pool mutated on failed add")
	}
}

func TestRemoveLiquidityProportional(t *testing.T) {
	v, _ := testVault(t)
	pool := testPool(t)
	pool.BalancesLiveScaled18 = []exact.Int{
		mustInt(t, "2000000000000000000"),
		mustInt(t, "4000000000000000000"),
	}
	pool.TotalSupply = mustInt(t, "4000000000000000000")

	bptIn, amountsOut, err := v.RemoveLiquidity(pool, model.RemoveLiquidityInput{
		Kind:             model.RemoveLiquidityProportional,
		MaxBptAmountIn:   mustInt(t, "1000000000000000000"),
		MinAmountsOutRaw: []exact.Int{exact.New(0), exact.New(0)},
	}, nil)
	if err != nil {
		t.Fatalf("RemoveLiquidity: %v", err)
	}
	if !bptIn.Eq(mustInt(t, "1000000000000000000")) {
		t.Fatalf("bptIn = %s", bptIn)
	}
	if !amountsOut[0].Eq(mustInt(t, "500000000000000000")) || !amountsOut[1].Eq(mustInt(t, "1000000000000000000")) {
		t.Fatalf("amounts out = [%s %s]", amountsOut[0], amountsOut[1])
	}
	if !pool.BalancesLiveScaled18[0].Eq(mustInt(t, "1500000000000000000")) {
		t.Fatalf("balance[0] = %s", pool.BalancesLiveScaled18[0])
	}
	if !pool.TotalSupply.Eq(mustInt(t, "3000000000000000000")) {
		t.Fatalf("total supply = %s", pool.TotalSupply)
	}
}

func TestRemoveLiquidityExitFeeHook(t *testing.T) {
	v, hooks := testVault(t)
	hooks.Register("EXIT_FEE", &hook.ExitFee{
		ExitFeePercentage: mustInt(t, "10000000000000000"),
	})

	pool := testPool(t)
	pool.HookType = "EXIT_FEE"
	pool.BalancesLiveScaled18 = []exact.Int{
		mustInt(t, "2000000000000000000"),
		mustInt(t, "4000000000000000000"),
	}
	pool.TotalSupply = mustInt(t, "4000000000000000000")

	_, amountsOut, err := v.RemoveLiquidity(pool, model.RemoveLiquidityInput{
		Kind:             model.RemoveLiquidityProportional,
		MaxBptAmountIn:   mustInt(t, "1000000000000000000"),
		MinAmountsOutRaw: []exact.Int{exact.New(0), exact.New(0)},
	}, nil)
	if err != nil {
		t.Fatalf("RemoveLiquidity: %v", err)
	}
	// 1% of each proportional amount is withheld by the hook.
	if !amountsOut[0].Eq(mustInt(t, "495000000000000000")) || !amountsOut[1].Eq(mustInt(t, "990000000000000000")) {
		t.Fatalf("amounts out = [%s %s]", amountsOut[0], amountsOut[1])
	}
}

func TestRemoveLiquidityMaxBptLimit(t *testing.T) {
	v, _ := testVault(t)
	pool := testPool(t)
	pool.SwapFee = exact.New(0)
	before := pool.Clone()

	// Withdrawing a quarter of one balance costs more BPT than the cap.
	_, _, err := v.RemoveLiquidity(pool, model.RemoveLiquidityInput{
		Kind:             model.RemoveLiquiditySingleTokenExactOut,
		MaxBptAmountIn:   exact.New(1),
		MinAmountsOutRaw: []exact.Int{mustInt(t, "500000000000000000"), exact.New(0)},
	}, nil)
	if !errors.Is(err, ErrAboveMaxBpt) {
		t.Fatalf("RemoveLiquidity: %v", err)
	}
	if !pool.Equal(before) {
		t.Fatal("pool mutated on failed remove")
	}
}
