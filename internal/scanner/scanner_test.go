package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Modertool999/arb-detection/internal/backtest"
	"github.com/Modertool999/arb-detection/internal/config"
	"github.com/Modertool999/arb-detection/internal/feed"
	"github.com/Modertool999/arb-detection/internal/series"
	"github.com/Modertool999/arb-detection/internal/spread"
	"github.com/Modertool999/arb-detection/internal/store"
)

type staticLoader struct {
	legs feed.CrossListed
	err  error
}

func (l staticLoader) LoadCrossListed(context.Context, feed.Query) (feed.CrossListed, error) {
	return l.legs, l.err
}

var day0 = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

// spikeLegs builds n aligned rows whose spread is 5 everywhere except a spike to 50 at index spike.
// The foreign leg converts to exactly 10 (200p / 100 * 1.0 * 5).
func spikeLegs(n, spike int) feed.CrossListed {
	var us, uk, fx series.Series
	us.Symbol, uk.Symbol, fx.Symbol = "HSBC", "HSBA.L", "GBPUSD=X"
	for i := 0; i < n; i++ {
		t := day0.AddDate(0, 0, i)
		spr := 5.0
		if i == spike {
			spr = 50.0
		}
		us.Points = append(us.Points, series.Point{Time: t, Value: 10 + spr})
		uk.Points = append(uk.Points, series.Point{Time: t, Value: 200})
		fx.Points = append(fx.Points, series.Point{Time: t, Value: 1.0})
	}
	return feed.CrossListed{Domestic: us, Foreign: uk, FX: fx}
}

func request() Request {
	return Request{
		Query:  feed.Query{Domestic: "HSBC", Foreign: "HSBA.L", FX: "GBPUSD=X", Period: "6mo", Interval: "1d"},
		Params: spread.DefaultParams(),
	}
}

func TestScoredSpikeScenario(t *testing.T) {
	svc := New(staticLoader{legs: spikeLegs(25, 20)}, zerolog.Nop())

	scored, err := svc.Scored(context.Background(), request())
	if err != nil {
		t.Fatalf("Scored returned error: %v", err)
	}
	if len(scored) != 5 {
		t.Fatalf("expected 5 scored rows, got %d", len(scored))
	}
	flagged := 0
	for _, rec := range scored {
		if rec.Signal == 1 {
			flagged++
			if !rec.Time.Equal(day0.AddDate(0, 0, 20)) {
				t.Fatalf("signal on wrong row %s", rec.Time)
			}
		}
	}
	if flagged != 1 {
		t.Fatalf("expected exactly one signal, got %d", flagged)
	}
}

func TestLatestReturnsLastRow(t *testing.T) {
	svc := New(staticLoader{legs: spikeLegs(25, 20)}, zerolog.Nop())
	last, err := svc.Latest(context.Background(), request())
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}
	if !last.Time.Equal(day0.AddDate(0, 0, 24)) {
		t.Fatalf("expected last aligned day, got %s", last.Time)
	}
	if last.CloseForeignConverted != 10 || last.Spread != 5 {
		t.Fatalf("unexpected conversion: %+v", last)
	}
}

func TestScoredErrors(t *testing.T) {
	boom := errors.New("feed down")
	svc := New(staticLoader{err: boom}, zerolog.Nop())
	if _, err := svc.Latest(context.Background(), request()); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}

	svc = New(staticLoader{legs: spikeLegs(10, -1)}, zerolog.Nop())
	if _, err := svc.Latest(context.Background(), request()); !errors.Is(err, spread.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}

	req := request()
	req.Params.Window = 0
	if _, err := svc.Scored(context.Background(), req); !errors.Is(err, spread.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter, got %v", err)
	}
}

func TestBacktestRecordsRun(t *testing.T) {
	ledger := store.NewLedger(4)
	fixed := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := New(staticLoader{legs: spikeLegs(25, 20)}, zerolog.Nop(), WithRunStore(ledger), WithClock(func() time.Time { return fixed }))

	res, err := svc.Backtest(context.Background(), request())
	if err != nil {
		t.Fatalf("Backtest returned error: %v", err)
	}
	if len(res.Trades) != 4 {
		t.Fatalf("expected 4 trades, got %d", len(res.Trades))
	}
	// short the spike at 50, exit at 5
	if res.Trades[0].Position != backtest.Short || res.Trades[0].PnL != -45 {
		t.Fatalf("unexpected first trade: %+v", res.Trades[0])
	}
	if res.Stats.TotalReturn != -45 {
		t.Fatalf("unexpected total return %v", res.Stats.TotalReturn)
	}

	runs, err := svc.RecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentRuns returned error: %v", err)
	}
	if len(runs) != 1 || !runs[0].CreatedAt.Equal(fixed) || runs[0].Params.Domestic != "HSBC" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestBacktestEmpty(t *testing.T) {
	req := request()
	req.Params.Window = 25
	svc := New(staticLoader{legs: spikeLegs(25, 23)}, zerolog.Nop())

	// Only the final row has a full window, so no trade can be formed.
	if _, err := svc.Backtest(context.Background(), req); !errors.Is(err, backtest.ErrEmptyBacktest) {
		t.Fatalf("expected ErrEmptyBacktest, got %v", err)
	}
	if runs, _ := svc.RecentRuns(context.Background(), 1); runs != nil {
		t.Fatalf("expected no runs without a store")
	}
}

func TestRequestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Feed.ResampleMinutes = 60
	req := RequestFromConfig(cfg)
	if req.Pair() != "HSBC/HSBA.L" || req.Query.FX != "GBPUSD=X" {
		t.Fatalf("unexpected query: %+v", req.Query)
	}
	if req.Query.Resample != time.Hour {
		t.Fatalf("unexpected resample: %s", req.Query.Resample)
	}
	if req.Params != spread.DefaultParams() {
		t.Fatalf("unexpected params: %+v", req.Params)
	}
}
