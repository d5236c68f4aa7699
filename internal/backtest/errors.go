package backtest

import "errors"

// ErrEmptyBacktest is returned when the scored series is too short to produce a single trade.
var ErrEmptyBacktest = errors.New("empty backtest")
