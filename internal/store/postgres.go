package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Modertool999/arb-detection/internal/backtest"
	"github.com/Modertool999/arb-detection/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	id             UUID PRIMARY KEY,
	created_at     TIMESTAMPTZ NOT NULL,
	ticker_us      TEXT NOT NULL,
	ticker_uk      TEXT NOT NULL,
	ticker_fx      TEXT NOT NULL,
	period         TEXT NOT NULL,
	bar_interval   TEXT NOT NULL,
	window_size    INTEGER NOT NULL,
	z_thresh       DOUBLE PRECISION NOT NULL,
	total_return   DOUBLE PRECISION NOT NULL,
	win_rate       DOUBLE PRECISION NOT NULL,
	sharpe_ratio   DOUBLE PRECISION,
	total_trades   INTEGER NOT NULL,
	active_trades  INTEGER NOT NULL,
	winning_trades INTEGER NOT NULL,
	losing_trades  INTEGER NOT NULL,
	gross_profit   DOUBLE PRECISION NOT NULL,
	gross_loss     DOUBLE PRECISION NOT NULL,
	max_drawdown   DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS backtest_trades (
	run_id       UUID NOT NULL REFERENCES backtest_runs(id) ON DELETE CASCADE,
	seq          INTEGER NOT NULL,
	entry_at     TIMESTAMPTZ NOT NULL,
	exit_at      TIMESTAMPTZ NOT NULL,
	position     SMALLINT NOT NULL,
	entry_spread DOUBLE PRECISION NOT NULL,
	exit_spread  DOUBLE PRECISION NOT NULL,
	pnl          DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS backtest_runs_created_at_idx ON backtest_runs (created_at DESC);
`

// PGStore writes backtest runs to Postgres.
type PGStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Connect creates a pool for cfg, verifies it and ensures the schema exists.
func Connect(ctx context.Context, cfg config.Database, log zerolog.Logger) (*PGStore, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := NewPGStore(pool, log)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPGStore wraps an existing pool.
func NewPGStore(pool *pgxpool.Pool, log zerolog.Logger) *PGStore {
	return &PGStore{pool: pool, log: log}
}

// EnsureSchema creates the run tables when missing.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveRun inserts the run and its trades in one batch inside a transaction.
func (s *PGStore) SaveRun(ctx context.Context, run Run) error {
	start := time.Now()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	st := run.Stats
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO backtest_runs (id, created_at, ticker_us, ticker_uk, ticker_fx, period, bar_interval,
			window_size, z_thresh, total_return, win_rate, sharpe_ratio, total_trades, active_trades,
			winning_trades, losing_trades, gross_profit, gross_loss, max_drawdown)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, run.ID, run.CreatedAt, run.Params.Domestic, run.Params.Foreign, run.Params.FX, run.Params.Period,
		run.Params.Interval, run.Params.Window, run.Params.Threshold, st.TotalReturn, st.WinRate,
		st.SharpeRatio, st.TotalTrades, st.ActiveTrades, st.WinningTrades, st.LosingTrades,
		st.GrossProfit, st.GrossLoss, st.MaxDrawdown)
	for i, tr := range run.Trades {
		batch.Queue(`
			INSERT INTO backtest_trades (run_id, seq, entry_at, exit_at, position, entry_spread, exit_spread, pnl)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, run.ID, i, tr.Time, tr.ExitTime, int16(tr.Position), tr.EntrySpread, tr.ExitSpread, tr.PnL)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert run %s: %w", run.ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.log.Debug().
		Str("run_id", run.ID.String()).
		Int("trades", len(run.Trades)).
		Dur("duration", time.Since(start)).
		Msg("backtest run saved")
	return nil
}

// RecentRuns returns run summaries, newest first. Trades are not loaded.
func (s *PGStore) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = config.DefaultRecentRuns
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, ticker_us, ticker_uk, ticker_fx, period, bar_interval, window_size, z_thresh,
			total_return, win_rate, sharpe_ratio, total_trades, active_trades, winning_trades, losing_trades,
			gross_profit, gross_loss, max_drawdown
		FROM backtest_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r  Run
			st backtest.Statistics
		)
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Params.Domestic, &r.Params.Foreign, &r.Params.FX,
			&r.Params.Period, &r.Params.Interval, &r.Params.Window, &r.Params.Threshold,
			&st.TotalReturn, &st.WinRate, &st.SharpeRatio, &st.TotalTrades, &st.ActiveTrades,
			&st.WinningTrades, &st.LosingTrades, &st.GrossProfit, &st.GrossLoss, &st.MaxDrawdown); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Stats = st
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the pool.
func (s *PGStore) Close() {
	s.pool.Close()
}
