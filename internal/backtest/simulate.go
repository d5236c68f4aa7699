// Package backtest replays scored spread records as one-bar mean-reversion trades.
package backtest

import (
	"fmt"
	"time"

	"github.com/Modertool999/arb-detection/internal/spread"
)

// Trade is the outcome of holding a position from one scored bar to the next.
type Trade struct {
	Time        time.Time
	ExitTime    time.Time
	Position    Position
	EntrySpread float64
	ExitSpread  float64
	PnL         float64
}

// EquityPoint is the cumulative pnl after the trade opened at Time.
type EquityPoint struct {
	Time          time.Time
	CumulativePnL float64
}

// Result bundles everything one simulation produces.
type Result struct {
	Trades []Trade
	Equity []EquityPoint
	Stats  Statistics
}

// Simulate trades every adjacent pair of records. Flat bars still produce a zero-pnl trade so
// the equity curve has exactly one point per pair.
func Simulate(records []spread.ScoredRecord) (*Result, error) {
	pairs := Pairs(records)
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: need at least 2 scored records, have %d", ErrEmptyBacktest, len(records))
	}

	trades := make([]Trade, len(pairs))
	equity := make([]EquityPoint, len(pairs))
	var cumulative float64
	for i, p := range pairs {
		pos := PositionFor(p.Entry)
		pnl := float64(pos) * (p.Entry.Spread - p.Exit.Spread)
		cumulative += pnl

		trades[i] = Trade{
			Time:        p.Entry.Time,
			ExitTime:    p.Exit.Time,
			Position:    pos,
			EntrySpread: p.Entry.Spread,
			ExitSpread:  p.Exit.Spread,
			PnL:         pnl,
		}
		equity[i] = EquityPoint{Time: p.Entry.Time, CumulativePnL: cumulative}
	}

	return &Result{
		Trades: trades,
		Equity: equity,
		Stats:  Calculate(trades),
	}, nil
}
