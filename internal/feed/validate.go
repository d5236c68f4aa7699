package feed

import (
	"fmt"
	"time"

	"github.com/Modertool999/arb-detection/internal/spread"
)

var validPeriods = map[string]struct{}{
	"1d": {}, "5d": {}, "1mo": {}, "3mo": {}, "6mo": {}, "1y": {},
	"2y": {}, "5y": {}, "10y": {}, "ytd": {}, "max": {},
}

var intervalDurations = map[string]time.Duration{
	"1m":  time.Minute,
	"2m":  2 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"60m": time.Hour,
	"90m": 90 * time.Minute,
	"1h":  time.Hour,
	"1d":  24 * time.Hour,
	"5d":  5 * 24 * time.Hour,
	"1wk": 7 * 24 * time.Hour,
	"1mo": 30 * 24 * time.Hour,
	"3mo": 91 * 24 * time.Hour,
}

// ValidatePeriod rejects look-back ranges the chart API does not accept.
func ValidatePeriod(period string) error {
	if _, ok := validPeriods[period]; !ok {
		return fmt.Errorf("%w: unsupported period %q", spread.ErrInvalidParameter, period)
	}
	return nil
}

// ValidateInterval rejects bar sizes the chart API does not accept.
func ValidateInterval(interval string) error {
	if _, ok := intervalDurations[interval]; !ok {
		return fmt.Errorf("%w: unsupported interval %q", spread.ErrInvalidParameter, interval)
	}
	return nil
}

// Daily reports whether bars of this interval are keyed by calendar date.
func Daily(interval string) bool {
	return intervalDurations[interval] >= 24*time.Hour
}

// periodSpan approximates the look-back of period ending at now.
func periodSpan(period string, now time.Time) time.Duration {
	const day = 24 * time.Hour
	switch period {
	case "1d":
		return day
	case "5d":
		return 5 * day
	case "1mo":
		return 30 * day
	case "3mo":
		return 91 * day
	case "6mo":
		return 182 * day
	case "1y":
		return 365 * day
	case "2y":
		return 730 * day
	case "5y":
		return 1826 * day
	case "ytd":
		return now.Sub(time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC))
	default:
		return 3652 * day
	}
}
