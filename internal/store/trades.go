package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Modertool999/arb-detection/internal/backtest"
)

// TradesHeader lists the columns of a backtest trade export.
var TradesHeader = []string{"Datetime", "Exit_Datetime", "position", "spread", "next_spread", "pnl", "equity"}

// WriteTrades writes one row per trade alongside the equity after it.
func WriteTrades(w io.Writer, res *backtest.Result) error {
	if res == nil {
		return fmt.Errorf("write trades: nil result")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(TradesHeader); err != nil {
		return fmt.Errorf("write trades header: %w", err)
	}
	for i, tr := range res.Trades {
		rec := []string{
			formatTime(tr.Time),
			formatTime(tr.ExitTime),
			strconv.Itoa(int(tr.Position)),
			formatFloat(tr.EntrySpread),
			formatFloat(tr.ExitSpread),
			formatFloat(tr.PnL),
			formatFloat(res.Equity[i].CumulativePnL),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write trade: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTradesFile replaces path with a trade export.
func WriteTradesFile(path string, res *backtest.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTrades(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
