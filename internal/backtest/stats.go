package backtest

import (
	"fmt"
	"io"
	"math"

	"github.com/Modertool999/arb-detection/internal/stats"
)

// TradingDaysPerYear annualizes the per-trade Sharpe ratio.
const TradingDaysPerYear = 252

type Statistics struct {
	TotalReturn float64
	WinRate     float64
	// SharpeRatio is nil when the pnl series has no dispersion.
	SharpeRatio *float64

	TotalTrades   int
	ActiveTrades  int
	WinningTrades int
	LosingTrades  int

	GrossProfit float64
	GrossLoss   float64
	MaxDrawdown float64
}

// Calculate summarizes a trade sequence. Flat trades count towards TotalTrades and therefore
// dilute the win rate.
func Calculate(trades []Trade) Statistics {
	st := Statistics{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return st
	}

	pnls := make([]float64, len(trades))
	var peak, running float64
	for i, t := range trades {
		pnls[i] = t.PnL
		if t.Position != Flat {
			st.ActiveTrades++
		}
		if t.PnL > 0 {
			st.WinningTrades++
			st.GrossProfit += t.PnL
		} else if t.PnL < 0 {
			st.LosingTrades++
			st.GrossLoss += t.PnL
		}

		running += t.PnL
		if running > peak {
			peak = running
		}
		if dd := peak - running; dd > st.MaxDrawdown {
			st.MaxDrawdown = dd
		}
	}

	st.TotalReturn = running
	st.WinRate = float64(st.WinningTrades) / float64(st.TotalTrades)
	st.SharpeRatio = sharpe(pnls)
	return st
}

func sharpe(pnls []float64) *float64 {
	mean, ok := stats.Mean(pnls)
	if !ok {
		return nil
	}
	std, ok := stats.SampleStdDev(pnls)
	if !ok || std == 0 || math.IsNaN(std) {
		return nil
	}
	v := mean / std * math.Sqrt(TradingDaysPerYear)
	return &v
}

// Print writes a human readable summary.
func (s Statistics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Backtest Results ===")
	fmt.Fprintf(w, "Total Trades:     %d (%d active)\n", s.TotalTrades, s.ActiveTrades)
	fmt.Fprintf(w, "Winning Trades:   %d (%.2f%%)\n", s.WinningTrades, s.WinRate*100)
	fmt.Fprintf(w, "Losing Trades:    %d\n", s.LosingTrades)
	fmt.Fprintf(w, "Total Return:     %.4f\n", s.TotalReturn)
	fmt.Fprintf(w, "Gross Profit:     %.4f\n", s.GrossProfit)
	fmt.Fprintf(w, "Gross Loss:       %.4f\n", s.GrossLoss)
	fmt.Fprintf(w, "Max Drawdown:     %.4f\n", s.MaxDrawdown)
	if s.SharpeRatio != nil {
		fmt.Fprintf(w, "Sharpe Ratio:     %.4f\n", *s.SharpeRatio)
	} else {
		fmt.Fprintln(w, "Sharpe Ratio:     n/a")
	}
}
