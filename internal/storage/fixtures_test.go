package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"poolVault/internal/model"
)

const fixtureLine = `{"address":"0x1000000000000000000000000000000000000001","pool_type":"WEIGHTED","tokens":["0x2000000000000000000000000000000000000001","0x2000000000000000000000000000000000000002"],"decimals":[18,6],"token_rates":["1000000000000000000","1000000000000000000"],"balances_scaled18":["2000000000000000000","2000000000000000000"],"total_supply":"2000000000000000000","swap_fee":"100000000000000000","aggregate_swap_fee":"500000000000000000","weights":["500000000000000000","500000000000000000"]}`

func TestLoadPoolFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pools.jsonl")
	if err := os.WriteFile(path, []byte(fixtureLine+"\n\n"+fixtureLine+"\n"), 0o644); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}

	pools, err := LoadPoolFixtures(path)
	if err != nil {
		t.Fatalf("LoadPoolFixtures: %v", err)
	}
	if len(pools) != 2 {
		t.Fatalf("loaded %d pools, want 2", len(pools))
	}
	pool := pools[0]
	if pool.PoolType != "WEIGHTED" || pool.NumTokens() != 2 {
		t.Fatalf("pool = %+v", pool)
	}
	if pool.ScalingFactors[0].String() != "1" {
		t.Fatalf("scaling factor for 18 decimals = %s", pool.ScalingFactors[0])
	}
	if pool.ScalingFactors[1].String() != "1000000000000" {
		t.Fatalf("scaling factor for 6 decimals = %s", pool.ScalingFactors[1])
	}
}

func TestPoolFromRecordRejectsBadInput(t *testing.T) {
	var record model.PoolRecord
	if err := json.Unmarshal([]byte(fixtureLine), &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	bad := record
	bad.Address = "not-an-address"
	if _, err := PoolFromRecord(&bad); err == nil {
		t.Fatal("bad address accepted")
	}

	bad = record
	bad.SwapFee = "0.1"
	if _, err := PoolFromRecord(&bad); err == nil {
		t.Fatal("decimal fee string accepted")
	}

	bad = record
	bad.Decimals = []uint8{18}
	if _, err := PoolFromRecord(&bad); err == nil {
		t.Fatal("mismatched decimals accepted")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	var record model.PoolRecord
	if err := json.Unmarshal([]byte(fixtureLine), &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	pool, err := PoolFromRecord(&record)
	if err != nil {
		t.Fatalf("PoolFromRecord: %v", err)
	}
	back := RecordFromPool(pool)
	if back.Decimals[0] != 18 || back.Decimals[1] != 6 {
		t.Fatalf("decimals = %v", back.Decimals)
	}
	if back.SwapFee != record.SwapFee || back.TotalSupply != record.TotalSupply {
		t.Fatalf("record round trip mismatch: %+v", back)
	}
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "quotes.jsonl")
	sink := NewJsonlStorage(path)

	quote := model.QuoteRecord{
		PoolAddress: "0x1000000000000000000000000000000000000001",
		Op:          "swap",
		Kind:        "EXACT_IN",
		IndexOut:    1,
		AmountRaw:   "100000000",
		ResultRaw:   "89999999",
		QuotedAt:    1756512000,
	}
	if err := sink.PutQuoteBatch([]model.QuoteRecord{quote}); err != nil {
		t.Fatalf("PutQuoteBatch: %v", err)
	}
	if err := sink.PutQuoteBatch([]model.QuoteRecord{quote}); err != nil {
		t.Fatalf("PutQuoteBatch: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	var got model.QuoteRecord
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("unmarshal line: %v", err)
	}
	if got.ResultRaw != "89999999" {
		t.Fatalf("result = %q", got.ResultRaw)
	}
}
