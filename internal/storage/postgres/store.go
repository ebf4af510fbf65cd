package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolVault/internal/model"
)

// Store provides Postgres persistence for pool snapshots and quotes.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertPools inserts or updates pool snapshots.
func (s *Store) UpsertPools(ctx context.Context, pools []model.PoolRecord) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range pools {
		batch.Queue(`
			INSERT INTO pools (
				pool_address, pool_type, hook_type, tokens, decimals, token_rates,
				balances_scaled18, total_supply, swap_fee, aggregate_swap_fee, weights,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
			ON CONFLICT (pool_address)
			DO UPDATE SET
				pool_type = EXCLUDED.pool_type,
				hook_type = EXCLUDED.hook_type,
				tokens = EXCLUDED.tokens,
				decimals = EXCLUDED.decimals,
				token_rates = EXCLUDED.token_rates,
				balances_scaled18 = EXCLUDED.balances_scaled18,
				total_supply = EXCLUDED.total_supply,
				swap_fee = EXCLUDED.swap_fee,
				aggregate_swap_fee = EXCLUDED.aggregate_swap_fee,
				weights = EXCLUDED.weights,
				updated_at = now()
		`,
			p.Address,
			p.PoolType,
			p.HookType,
			p.Tokens,
			p.Decimals,
			p.TokenRates,
			p.BalancesScaled18,
			p.TotalSupply,
			p.SwapFee,
			p.AggregateSwapFee,
			p.Weights,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// InsertQuotes appends computed quotes.
func (s *Store) InsertQuotes(ctx context.Context, quotes []model.QuoteRecord) error {
	if len(quotes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(`
			INSERT INTO quotes (
				pool_address, op, kind, index_in, index_out, amount_raw, result_raw, quoted_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, to_timestamp($8))
		`,
			q.PoolAddress,
			q.Op,
			q.Kind,
			q.IndexIn,
			q.IndexOut,
			q.AmountRaw,
			q.ResultRaw,
			q.QuotedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range quotes {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
