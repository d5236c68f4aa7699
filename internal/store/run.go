package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Modertool999/arb-detection/internal/backtest"
)

// RunParams records what a backtest was asked to do.
type RunParams struct {
	Domestic  string  `json:"us"`
	Foreign   string  `json:"uk"`
	FX        string  `json:"fx"`
	Period    string  `json:"period"`
	Interval  string  `json:"interval"`
	Window    int     `json:"window"`
	Threshold float64 `json:"z_thresh"`
}

// Run is one completed backtest.
type Run struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Params    RunParams
	Stats     backtest.Statistics
	// Trades may be empty when a run is loaded back as a summary.
	Trades []backtest.Trade
}

// NewRun stamps a backtest result with a fresh id.
func NewRun(params RunParams, res *backtest.Result, now time.Time) Run {
	run := Run{ID: uuid.New(), CreatedAt: now.UTC(), Params: params}
	if res != nil {
		run.Stats = res.Stats
		run.Trades = res.Trades
	}
	return run
}

// RunStore persists backtest runs and lists the most recent ones.
type RunStore interface {
	SaveRun(ctx context.Context, run Run) error
	RecentRuns(ctx context.Context, limit int) ([]Run, error)
}
