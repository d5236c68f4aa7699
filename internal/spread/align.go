package spread

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Modertool999/arb-detection/internal/series"
)

// AlignedRecord holds the three prices observed at one common timestamp.
type AlignedRecord struct {
	Time          time.Time
	CloseDomestic float64
	CloseForeign  float64
	FXRate        float64
}

// Align inner-joins the three series on timestamp, drops rows with a missing value and
// returns them in ascending time order.
func Align(domestic, foreign, fx series.Series) ([]AlignedRecord, error) {
	foreignIdx := foreign.Index()
	fxIdx := fx.Index()

	seen := make(map[int64]int, len(domestic.Points))
	records := make([]AlignedRecord, 0, len(domestic.Points))
	for _, p := range domestic.Points {
		key := p.Time.UnixNano()
		f, ok := foreignIdx[key]
		if !ok {
			continue
		}
		x, ok := fxIdx[key]
		if !ok {
			continue
		}
		rec := AlignedRecord{Time: p.Time, CloseDomestic: p.Value, CloseForeign: f, FXRate: x}
		if i, dup := seen[key]; dup {
			records[i] = rec
			continue
		}
		seen[key] = len(records)
		records = append(records, rec)
	}

	out := records[:0]
	for _, rec := range records {
		if missing(rec.CloseDomestic) || missing(rec.CloseForeign) || missing(rec.FXRate) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no timestamps common to %s, %s and %s",
			ErrInsufficientData, domestic.Symbol, foreign.Symbol, fx.Symbol)
	}
	return out, nil
}

func missing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
