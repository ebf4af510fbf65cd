package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"poolVault/internal/config"
	"poolVault/internal/exact"
	"poolVault/internal/hook"
	"poolVault/internal/model"
	"poolVault/internal/poolmath"
	"poolVault/internal/storage"
	"poolVault/internal/storage/postgres"
	"poolVault/internal/vault"
)

func main() {
	root := &cobra.Command{
		Use:          "quoter",
		Short:        "Pool quote engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("pools", "./data/pools.jsonl", "pool fixtures JSONL path")
	root.PersistentFlags().String("out", "./data/quotes.jsonl", "output quotes JSONL path")
	root.PersistentFlags().String("pg-dsn", "", "Postgres DSN (optional)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("exit-fee", "10000000000000000", "exit fee hook percentage (18 decimals)")
	root.PersistentFlags().String("directional-fee-multiplier", "2000000000000000000", "directional fee hook multiplier (18 decimals)")
	root.PersistentFlags().Int("penalized-index-in", 0, "directional fee hook penalized input index")

	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Quote and apply a swap",
		RunE:  runSwap,
	}
	swapCmd.Flags().String("pool", "", "pool address")
	swapCmd.Flags().String("kind", "EXACT_IN", "swap kind (EXACT_IN, EXACT_OUT)")
	swapCmd.Flags().Int("index-in", 0, "input token index")
	swapCmd.Flags().Int("index-out", 1, "output token index")
	swapCmd.Flags().String("amount", "", "raw amount (input token for EXACT_IN, output token for EXACT_OUT)")
	root.AddCommand(swapCmd)

	addCmd := &cobra.Command{
		Use:   "add-liquidity",
		Short: "Quote and apply an add-liquidity",
		RunE:  runAddLiquidity,
	}
	addCmd.Flags().String("pool", "", "pool address")
	addCmd.Flags().String("kind", "UNBALANCED", "add kind (UNBALANCED, SINGLE_TOKEN_EXACT_OUT)")
	addCmd.Flags().StringSlice("amounts-in", nil, "raw max amounts in, one per token (comma-separated)")
	addCmd.Flags().String("min-bpt-out", "0", "minimum BPT out (exact BPT out for SINGLE_TOKEN_EXACT_OUT)")
	root.AddCommand(addCmd)

	removeCmd := &cobra.Command{
		Use:   "remove-liquidity",
		Short: "Quote and apply a remove-liquidity",
		RunE:  runRemoveLiquidity,
	}
	removeCmd.Flags().String("pool", "", "pool address")
	removeCmd.Flags().String("kind", "PROPORTIONAL", "remove kind (PROPORTIONAL, SINGLE_TOKEN_EXACT_IN, SINGLE_TOKEN_EXACT_OUT)")
	removeCmd.Flags().String("max-bpt-in", "", "maximum (or exact) BPT in")
	removeCmd.Flags().StringSlice("min-amounts-out", nil, "raw minimum amounts out, one per token (comma-separated)")
	root.AddCommand(removeCmd)

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "List loaded pools and optionally sync them to Postgres",
		RunE:  runPools,
	}
	root.AddCommand(poolsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg   config.Config
	log   *zap.Logger
	vault *vault.Vault
	pools []*model.PoolState
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	exitFee, err := exact.FromString(cfg.ExitFeePercentage)
	if err != nil {
		return nil, fmt.Errorf("exit-fee: %w", err)
	}
	feeMultiplier, err := exact.FromString(cfg.DirectionalFeeMultiplier)
	if err != nil {
		return nil, fmt.Errorf("directional-fee-multiplier: %w", err)
	}

	math := poolmath.NewRegistry()
	math.Register("WEIGHTED", poolmath.NewWeighted)

	hooks := hook.NewRegistry()
	hooks.Register("EXIT_FEE", &hook.ExitFee{ExitFeePercentage: exitFee})
	hooks.Register("DIRECTIONAL_FEE", &hook.DirectionalFee{
		PenalizedIndexIn: cfg.PenalizedIndexIn,
		FeeMultiplier:    feeMultiplier,
	})

	pools, err := storage.LoadPoolFixtures(cfg.Pools)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:   cfg,
		log:   logger,
		vault: vault.New(math, hooks, logger),
		pools: pools,
	}, nil
}

func (a *app) findPool(address string) (*model.PoolState, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid pool address %q", address)
	}
	addr := common.HexToAddress(address)
	for _, pool := range a.pools {
		if pool.Address == addr {
			return pool, nil
		}
	}
	return nil, fmt.Errorf("pool %s not found in %s", addr.Hex(), a.cfg.Pools)
}

func (a *app) persist(cmd *cobra.Command, record model.QuoteRecord) error {
	sink := storage.NewJsonlStorage(a.cfg.Out)
	if err := sink.PutQuoteBatch([]model.QuoteRecord{record}); err != nil {
		return err
	}
	if a.cfg.PgDSN == "" {
		return nil
	}
	store, err := postgres.NewStore(cmd.Context(), a.cfg.PgDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.InsertQuotes(cmd.Context(), []model.QuoteRecord{record})
}

func runSwap(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	poolAddr, _ := cmd.Flags().GetString("pool")
	kindName, _ := cmd.Flags().GetString("kind")
	indexIn, _ := cmd.Flags().GetInt("index-in")
	indexOut, _ := cmd.Flags().GetInt("index-out")
	amountStr, _ := cmd.Flags().GetString("amount")

	pool, err := a.findPool(poolAddr)
	if err != nil {
		return err
	}
	kind, err := parseSwapKind(kindName)
	if err != nil {
		return err
	}
	amount, err := exact.FromString(amountStr)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	result, err := a.vault.Swap(pool, model.SwapInput{
		AmountRaw: amount,
		Kind:      kind,
		IndexIn:   indexIn,
		IndexOut:  indexOut,
	}, nil)
	if err != nil {
		return err
	}

	a.log.Info("swap quoted",
		zap.String("pool", pool.Address.Hex()),
		zap.Stringer("kind", kind),
		zap.String("amount_raw", amount.String()),
		zap.String("result_raw", result.String()),
	)
	fmt.Println(result.String())

	return a.persist(cmd, model.QuoteRecord{
		PoolAddress: pool.Address.Hex(),
		Op:          "swap",
		Kind:        kind.String(),
		IndexIn:     indexIn,
		IndexOut:    indexOut,
		AmountRaw:   amount.String(),
		ResultRaw:   result.String(),
		QuotedAt:    time.Now().Unix(),
	})
}

func runAddLiquidity(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	poolAddr, _ := cmd.Flags().GetString("pool")
	kindName, _ := cmd.Flags().GetString("kind")
	amountStrs, _ := cmd.Flags().GetStringSlice("amounts-in")
	minBptStr, _ := cmd.Flags().GetString("min-bpt-out")

	pool, err := a.findPool(poolAddr)
	if err != nil {
		return err
	}
	kind, err := parseAddKind(kindName)
	if err != nil {
		return err
	}
	amounts, err := parseAmounts(amountStrs)
	if err != nil {
		return fmt.Errorf("amounts-in: %w", err)
	}
	minBpt, err := exact.FromString(minBptStr)
	if err != nil {
		return fmt.Errorf("min-bpt-out: %w", err)
	}

	amountsIn, bptOut, err := a.vault.AddLiquidity(pool, model.AddLiquidityInput{
		Kind:            kind,
		MaxAmountsInRaw: amounts,
		MinBptAmountOut: minBpt,
	}, nil)
	if err != nil {
		return err
	}

	a.log.Info("liquidity add quoted",
		zap.String("pool", pool.Address.Hex()),
		zap.String("amounts_in", joinAmounts(amountsIn)),
		zap.String("bpt_out", bptOut.String()),
	)
	fmt.Println(bptOut.String())

	return a.persist(cmd, model.QuoteRecord{
		PoolAddress: pool.Address.Hex(),
		Op:          "add-liquidity",
		Kind:        kindName,
		AmountRaw:   joinAmounts(amounts),
		ResultRaw:   bptOut.String(),
		QuotedAt:    time.Now().Unix(),
	})
}

func runRemoveLiquidity(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	poolAddr, _ := cmd.Flags().GetString("pool")
	kindName, _ := cmd.Flags().GetString("kind")
	maxBptStr, _ := cmd.Flags().GetString("max-bpt-in")
	minOutStrs, _ := cmd.Flags().GetStringSlice("min-amounts-out")

	pool, err := a.findPool(poolAddr)
	if err != nil {
		return err
	}
	kind, err := parseRemoveKind(kindName)
	if err != nil {
		return err
	}
	maxBpt, err := exact.FromString(maxBptStr)
	if err != nil {
		return fmt.Errorf("max-bpt-in: %w", err)
	}
	minOuts, err := parseAmounts(minOutStrs)
	if err != nil {
		return fmt.Errorf("min-amounts-out: %w", err)
	}

	bptIn, amountsOut, err := a.vault.RemoveLiquidity(pool, model.RemoveLiquidityInput{
		Kind:             kind,
		MaxBptAmountIn:   maxBpt,
		MinAmountsOutRaw: minOuts,
	}, nil)
	if err != nil {
		return err
	}

	a.log.Info("liquidity remove quoted",
		zap.String("pool", pool.Address.Hex()),
		zap.String("bpt_in", bptIn.String()),
		zap.String("amounts_out", joinAmounts(amountsOut)),
	)
	fmt.Println(joinAmounts(amountsOut))

	return a.persist(cmd, model.QuoteRecord{
		PoolAddress: pool.Address.Hex(),
		Op:          "remove-liquidity",
		Kind:        kindName,
		AmountRaw:   maxBpt.String(),
		ResultRaw:   joinAmounts(amountsOut),
		QuotedAt:    time.Now().Unix(),
	})
}

func runPools(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	records := make([]model.PoolRecord, 0, len(a.pools))
	for _, pool := range a.pools {
		fmt.Printf("%s\t%s\t%d tokens\n", pool.Address.Hex(), pool.PoolType, pool.NumTokens())
		records = append(records, *storage.RecordFromPool(pool))
	}

	if a.cfg.PgDSN == "" {
		return nil
	}
	store, err := postgres.NewStore(cmd.Context(), a.cfg.PgDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.UpsertPools(cmd.Context(), records); err != nil {
		return err
	}
	a.log.Info("pools synced", zap.Int("count", len(records)))
	return nil
}

func parseSwapKind(name string) (model.SwapKind, error) {
	switch strings.ToUpper(name) {
	case "EXACT_IN":
		return model.SwapKindExactIn, nil
	case "EXACT_OUT":
		return model.SwapKindExactOut, nil
	}
	return 0, fmt.Errorf("unknown swap kind %q", name)
}

func parseAddKind(name string) (model.AddLiquidityKind, error) {
	switch strings.ToUpper(name) {
	case "UNBALANCED":
		return model.AddLiquidityUnbalanced, nil
	case "SINGLE_TOKEN_EXACT_OUT":
		return model.AddLiquiditySingleTokenExactOut, nil
	}
	return 0, fmt.Errorf("unknown add liquidity kind %q", name)
}

func parseRemoveKind(name string) (model.RemoveLiquidityKind, error) {
	switch strings.ToUpper(name) {
	case "PROPORTIONAL":
		return model.RemoveLiquidityProportional, nil
	case "SINGLE_TOKEN_EXACT_IN":
		return model.RemoveLiquiditySingleTokenExactIn, nil
	case "SINGLE_TOKEN_EXACT_OUT":
		return model.RemoveLiquiditySingleTokenExactOut, nil
	}
	return 0, fmt.Errorf("unknown remove liquidity kind %q", name)
}

func parseAmounts(values []string) ([]exact.Int, error) {
	out := make([]exact.Int, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		amount, err := exact.FromString(v)
		if err != nil {
			return nil, err
		}
		out = append(out, amount)
	}
	return out, nil
}

func joinAmounts(amounts []exact.Int) string {
	parts := make([]string, len(amounts))
	for i, a := range amounts {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
