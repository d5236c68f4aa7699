// Package spread turns cross-listed prices into a converted spread, a rolling z-score and a
// binary anomaly signal.
package spread

import (
	"fmt"
	"math"

	"github.com/Modertool999/arb-detection/internal/stats"
)

// ScoredRecord is an aligned record enriched with its spread statistics.
type ScoredRecord struct {
	AlignedRecord
	CloseForeignConverted float64
	Spread                float64
	RollingMean           float64
	RollingStd            float64
	ZScore                float64
	Signal                int
}

// Signal flags a z-score whose magnitude reaches the threshold. The boundary is inclusive.
func Signal(z, threshold float64) int {
	if math.Abs(z) >= threshold {
		return 1
	}
	return 0
}

// Scorer scores aligned records one at a time over a trailing window.
type Scorer struct {
	params Params
	window *stats.Rolling
}

// NewScorer validates params and returns an empty scorer.
func NewScorer(params Params) (*Scorer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{params: params, window: stats.NewRolling(params.Window)}, nil
}

// Params returns the parameters the scorer was built with.
func (s *Scorer) Params() Params { return s.params }

// Next pushes rec into the window. It returns false until the window is full, and whenever the
// rolling standard deviation is zero or undefined.
func (s *Scorer) Next(rec AlignedRecord) (ScoredRecord, bool) {
	converted := s.params.Convert(rec.CloseForeign, rec.FXRate)
	spread := rec.CloseDomestic - converted
	s.window.Push(spread)

	if !s.window.Full() {
		return ScoredRecord{}, false
	}
	mean, _ := s.window.Mean()
	std, ok := s.window.StdDev()
	if !ok || std == 0 || math.IsNaN(std) {
		return ScoredRecord{}, false
	}

	z := (spread - mean) / std
	return ScoredRecord{
		AlignedRecord:         rec,
		CloseForeignConverted: converted,
		Spread:                spread,
		RollingMean:           mean,
		RollingStd:            std,
		ZScore:                z,
		Signal:                Signal(z, s.params.Threshold),
	}, true
}

// Score runs a fresh Scorer across records, which must be in strictly increasing time order.
func Score(records []AlignedRecord, params Params) ([]ScoredRecord, error) {
	scorer, err := NewScorer(params)
	if err != nil {
		return nil, err
	}
	if len(records) < params.Window {
		return nil, fmt.Errorf("%w: window %d needs at least %d aligned rows, have %d",
			ErrInsufficientData, params.Window, params.Window, len(records))
	}

	out := make([]ScoredRecord, 0, len(records)-params.Window+1)
	for i, rec := range records {
		if i > 0 && !rec.Time.After(records[i-1].Time) {
			return nil, fmt.Errorf("%w: records not strictly increasing at index %d", ErrInvalidParameter, i)
		}
		if scored, ok := scorer.Next(rec); ok {
			out = append(out, scored)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no row has a defined z-score", ErrInsufficientData)
	}
	return out, nil
}
