// Package store persists scored spreads, backtest trades, raw bars and backtest run history.
package store

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	floatPlaces    = 6
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05-07:00"
)

// formatFloat renders v with fixed precision. Missing values are written as empty fields.
func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return decimal.NewFromFloat(v).Round(floatPlaces).String()
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// formatTime writes midnight-UTC timestamps as plain dates.
func formatTime(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(datetimeLayout)
}

var timeLayouts = []string{
	datetimeLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	dateLayout,
}

func parseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
