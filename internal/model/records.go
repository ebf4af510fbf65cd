package model

// PoolRecord is the storage/fixture form of a pool: addresses as hex strings,
// amounts as base-10 strings.
type PoolRecord struct {
	Address          string   `json:"address"`
	PoolType         string   `json:"pool_type"`
	HookType         string   `json:"hook_type,omitempty"`
	Tokens           []string `json:"tokens"`
	Decimals         []uint8  `json:"decimals"`
	TokenRates       []string `json:"token_rates"`
	BalancesScaled18 []string `json:"balances_scaled18"`
	TotalSupply      string   `json:"total_supply"`
	SwapFee          string   `json:"swap_fee"`
	AggregateSwapFee string   `json:"aggregate_swap_fee"`
	Weights          []string `json:"weights,omitempty"`
}

// QuoteRecord is one computed quote for storage.
type QuoteRecord struct {
	PoolAddress string `json:"pool_address"`
	Op          string `json:"op"`
	Kind        string `json:"kind"`
	IndexIn     int    `json:"index_in"`
	IndexOut    int    `json:"index_out"`
	AmountRaw   string `json:"amount_raw"`
	ResultRaw   string `json:"result_raw"`
	QuotedAt    int64  `json:"quoted_at"`
}
