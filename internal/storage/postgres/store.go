package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityShaper/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Store provides Postgres persistence for approximated positions.
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

// EnsureSchema creates the positions table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// PutPositions inserts or updates position records in one batch.
func (s *Store) PutPositions(ctx context.Context, records []model.PositionRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO approximated_positions (
				run_id, position_idx, start_denom, end_denom, lower_tick, upper_tick,
				reserve1, reserve2, fee_bps, created_at, updated_at
			) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9, $10::timestamptz, now())
			ON CONFLICT (run_id, position_idx)
			DO UPDATE SET
				start_denom = EXCLUDED.start_denom,
				end_denom = EXCLUDED.end_denom,
				lower_tick = EXCLUDED.lower_tick,
				upper_tick = EXCLUDED.upper_tick,
				reserve1 = EXCLUDED.reserve1,
				reserve2 = EXCLUDED.reserve2,
				fee_bps = EXCLUDED.fee_bps,
				updated_at = now()
		`,
			r.RunID,
			r.Index,
			r.Start,
			r.End,
			r.LowerTick,
			r.UpperTick,
			r.Reserve1,
			r.Reserve2,
			int64(r.FeeBps),
			r.CreatedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert position: %w", err)
		}
	}
	return nil
}
