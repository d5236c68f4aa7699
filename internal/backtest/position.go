package backtest

import "github.com/Modertool999/arb-detection/internal/spread"

// Position is the direction held on the spread for one bar.
type Position int

const (
	Short Position = -1
	Flat  Position = 0
	Long  Position = 1
)

func (p Position) String() string {
	switch p {
	case Short:
		return "short"
	case Long:
		return "long"
	default:
		return "flat"
	}
}

// PositionFor applies the mean-reversion rule to a single scored bar: a flagged positive
// spread is sold, a flagged negative spread is bought, anything else stays flat.
func PositionFor(rec spread.ScoredRecord) Position {
	if rec.Signal != 1 {
		return Flat
	}
	switch {
	case rec.Spread > 0:
		return Short
	case rec.Spread < 0:
		return Long
	default:
		return Flat
	}
}

// Pair is one holding period: the bar a position is opened on and the bar it is closed on.
type Pair struct {
	Entry spread.ScoredRecord
	Exit  spread.ScoredRecord
}

// Pairs returns the adjacent (entry, exit) pairs of records. The last record has no successor
// and opens nothing.
func Pairs(records []spread.ScoredRecord) []Pair {
	if len(records) < 2 {
		return nil
	}
	out := make([]Pair, len(records)-1)
	for i := range out {
		out[i] = Pair{Entry: records[i], Exit: records[i+1]}
	}
	return out
}
