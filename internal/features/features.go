// Package features derives per-bar technical features from OHLCV history.
package features

import (
	"math"
	"time"

	"github.com/Modertool999/arb-detection/internal/series"
	"github.com/Modertool999/arb-detection/internal/stats"
)

const (
	shortWindow    = 5
	longWindow     = 10
	momentumPeriod = 3
)

// Row is one bar with every feature defined.
type Row struct {
	Time   time.Time
	Close  float64
	Volume float64
	// Return is the simple return against the previous close.
	Return     float64
	MA5        float64
	MA10       float64
	Volatility float64
	// Momentum is the close minus the close three bars earlier.
	Momentum float64
}

// Compute returns the rows for which all features are defined, in input order. Bars with a
// missing close are skipped before any window is applied.
func Compute(bars []series.Bar) []Row {
	short := stats.NewRolling(shortWindow)
	long := stats.NewRolling(longWindow)
	var history []float64

	var out []Row
	for _, b := range bars {
		if math.IsNaN(b.Close) {
			continue
		}
		short.Push(b.Close)
		long.Push(b.Close)
		history = append(history, b.Close)
		n := len(history)

		if !long.Full() || n <= momentumPeriod {
			continue
		}
		prev := history[n-2]
		if prev == 0 {
			continue
		}
		ma5, _ := short.Mean()
		ma10, _ := long.Mean()
		vol, ok := short.StdDev()
		if !ok {
			continue
		}
		out = append(out, Row{
			Time:       b.Time,
			Close:      b.Close,
			Volume:     b.Volume,
			Return:     (b.Close - prev) / prev,
			MA5:        ma5,
			MA10:       ma10,
			Volatility: vol,
			Momentum:   b.Close - history[n-1-momentumPeriod],
		})
	}
	return out
}
