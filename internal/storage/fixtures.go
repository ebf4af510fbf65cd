package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"poolVault/internal/exact"
	"poolVault/internal/model"
	"poolVault/internal/scaling"
)

// LoadPoolFixtures reads pool records from a JSONL file and converts them to
// runtime pool state. Blank lines are skipped; any malformed record fails
// the whole load.
func LoadPoolFixtures(path string) ([]*model.PoolState, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer file.Close()

	var pools []*model.PoolState
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var record model.PoolRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("fixtures line %d: %w", line, err)
		}
		pool, err := PoolFromRecord(&record)
		if err != nil {
			return nil, fmt.Errorf("fixtures line %d: %w", line, err)
		}
		pools = append(pools, pool)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return pools, nil
}

// PoolFromRecord converts a storage record to runtime pool state, deriving
// scaling factors from the recorded token decimals.
func PoolFromRecord(record *model.PoolRecord) (*model.PoolState, error) {
	if !common.IsHexAddress(record.Address) {
		return nil, fmt.Errorf("invalid pool address %q", record.Address)
	}
	n := len(record.Tokens)
	if n == 0 {
		return nil, fmt.Errorf("pool %s has no tokens", record.Address)
	}
	if len(record.Decimals) != n || len(record.TokenRates) != n || len(record.BalancesScaled18) != n {
		return nil, fmt.Errorf("pool %s: per-token slices disagree on length", record.Address)
	}

	pool := &model.PoolState{
		Address:  common.HexToAddress(record.Address),
		PoolType: record.PoolType,
		HookType: record.HookType,
	}

	pool.Tokens = make([]common.Address, n)
	pool.ScalingFactors = make([]exact.Int, n)
	pool.TokenRates = make([]exact.Int, n)
	pool.BalancesLiveScaled18 = make([]exact.Int, n)
	for i := 0; i < n; i++ {
		if !common.IsHexAddress(record.Tokens[i]) {
			return nil, fmt.Errorf("invalid token address %q", record.Tokens[i])
		}
		pool.Tokens[i] = common.HexToAddress(record.Tokens[i])

		factor, err := scaling.ScalingFactor(record.Decimals[i])
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		pool.ScalingFactors[i] = factor

		if pool.TokenRates[i], err = exact.FromString(record.TokenRates[i]); err != nil {
			return nil, fmt.Errorf("token %d rate: %w", i, err)
		}
		if pool.BalancesLiveScaled18[i], err = exact.FromString(record.BalancesScaled18[i]); err != nil {
			return nil, fmt.Errorf("token %d balance: %w", i, err)
		}
	}

	var err error
	if pool.TotalSupply, err = exact.FromString(record.TotalSupply); err != nil {
		return nil, fmt.Errorf("total supply: %w", err)
	}
	if pool.SwapFee, err = exact.FromString(record.SwapFee); err != nil {
		return nil, fmt.Errorf("swap fee: %w", err)
	}
	if pool.AggregateSwapFee, err = exact.FromString(record.AggregateSwapFee); err != nil {
		return nil, fmt.Errorf("aggregate swap fee: %w", err)
	}

	if len(record.Weights) > 0 {
		if len(record.Weights) != n {
			return nil, fmt.Errorf("pool %s: %d weights for %d tokens", record.Address, len(record.Weights), n)
		}
		pool.Weights = make([]exact.Int, n)
		for i, w := range record.Weights {
			if pool.Weights[i], err = exact.FromString(w); err != nil {
				return nil, fmt.Errorf("weight %d: %w", i, err)
			}
		}
	}
	return pool, nil
}

// RecordFromPool converts runtime pool state back to its storage record.
func RecordFromPool(pool *model.PoolState) *model.PoolRecord {
	n := pool.NumTokens()
	record := &model.PoolRecord{
		Address:          pool.Address.Hex(),
		PoolType:         pool.PoolType,
		HookType:         pool.HookType,
		Tokens:           make([]string, n),
		Decimals:         make([]uint8, n),
		TokenRates:       make([]string, n),
		BalancesScaled18: make([]string, n),
		TotalSupply:      pool.TotalSupply.String(),
		SwapFee:          pool.SwapFee.String(),
		AggregateSwapFee: pool.AggregateSwapFee.String(),
	}
	for i := 0; i < n; i++ {
		record.Tokens[i] = pool.Tokens[i].Hex()
		record.Decimals[i] = decimalsFromFactor(pool.ScalingFactors[i])
		record.TokenRates[i] = pool.TokenRates[i].String()
		record.BalancesScaled18[i] = pool.BalancesLiveScaled18[i].String()
	}
	if len(pool.Weights) > 0 {
		record.Weights = make([]string, len(pool.Weights))
		for i, w := range pool.Weights {
			record.Weights[i] = w.String()
		}
	}
	return record
}

func decimalsFromFactor(factor exact.Int) uint8 {
	ten := exact.New(10)
	for d := uint8(0); d <= 18; d++ {
		if factor.Eq(exact.New(1)) {
			return 18 - d
		}
		var err error
		factor, err = factor.Quo(ten)
		if err != nil {
			break
		}
	}
	return 18
}
