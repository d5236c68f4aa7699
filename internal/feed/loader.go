package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Modertool999/arb-detection/internal/series"
	"github.com/Modertool999/arb-detection/internal/spread"
)

// Query names the three legs of a cross-listed pair and the bar range to pull.
type Query struct {
	Domestic string
	Foreign  string
	FX       string
	Period   string
	Interval string
	// Resample, when positive, keeps the last observation per bucket of this width.
	Resample time.Duration
}

// CrossListed holds the raw close series for each leg.
type CrossListed struct {
	Domestic series.Series
	Foreign  series.Series
	FX       series.Series
}

// Loader pulls the three legs of a pair from a Source in parallel.
type Loader struct {
	src Source
	log zerolog.Logger
}

func NewLoader(src Source, log zerolog.Logger) *Loader {
	return &Loader{src: src, log: log}
}

// LoadCrossListed fetches all legs concurrently. The first failure cancels the others.
func (l *Loader) LoadCrossListed(ctx context.Context, q Query) (CrossListed, error) {
	if err := ValidatePeriod(q.Period); err != nil {
		return CrossListed{}, err
	}
	if err := ValidateInterval(q.Interval); err != nil {
		return CrossListed{}, err
	}

	var out CrossListed
	g, gctx := errgroup.WithContext(ctx)
	legs := []struct {
		symbol string
		dst    *series.Series
	}{
		{q.Domestic, &out.Domestic},
		{q.Foreign, &out.Foreign},
		{q.FX, &out.FX},
	}
	for _, leg := range legs {
		g.Go(func() error {
			if leg.symbol == "" {
				return fmt.Errorf("%w: empty ticker", spread.ErrInvalidParameter)
			}
			bars, err := l.src.FetchBars(gctx, leg.symbol, q.Period, q.Interval)
			if err != nil {
				return fmt.Errorf("load %s: %w", leg.symbol, err)
			}
			s := series.FromBars(leg.symbol, bars)
			if q.Resample > 0 {
				s = series.Resample(s, q.Resample)
			}
			*leg.dst = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CrossListed{}, err
	}

	l.log.Debug().
		Int("domestic", out.Domestic.Len()).
		Int("foreign", out.Foreign.Len()).
		Int("fx", out.FX.Len()).
		Msg("cross-listed series loaded")
	return out, nil
}
