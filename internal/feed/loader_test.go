package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Modertool999/arb-detection/internal/series"
	"github.com/Modertool999/arb-detection/internal/spread"
)

type fakeSource struct {
	mu    sync.Mutex
	calls []string
	bars  map[string][]series.Bar
	fail  map[string]error
}

func (f *fakeSource) FetchBars(ctx context.Context, symbol, period, interval string) ([]series.Bar, error) {
	f.mu.Lock()
	f.calls = append(f.calls, symbol)
	f.mu.Unlock()
	if err := f.fail[symbol]; err != nil {
		return nil, err
	}
	return f.bars[symbol], nil
}

func hourly(start time.Time, values ...float64) []series.Bar {
	out := make([]series.Bar, len(values))
	for i, v := range values {
		out[i] = series.Bar{Time: start.Add(time.Duration(i) * time.Hour), Close: v}
	}
	return out
}

func TestLoadCrossListed(t *testing.T) {
	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{bars: map[string][]series.Bar{
		"HSBC":     hourly(start, 1, 2, 3),
		"HSBA.L":   hourly(start, 10, 20),
		"GBPUSD=X": hourly(start, 1.2),
	}}
	l := NewLoader(src, zerolog.Nop())

	got, err := l.LoadCrossListed(context.Background(), Query{Domestic: "HSBC", Foreign: "HSBA.L", FX: "GBPUSD=X", Period: "6mo", Interval: "1h"})
	if err != nil {
		t.Fatalf("LoadCrossListed returned error: %v", err)
	}
	if got.Domestic.Symbol != "HSBC" || got.Domestic.Len() != 3 {
		t.Fatalf("unexpected domestic series: %+v", got.Domestic)
	}
	if got.Foreign.Len() != 2 || got.FX.Len() != 1 {
		t.Fatalf("unexpected leg lengths: %d %d", got.Foreign.Len(), got.FX.Len())
	}
	if len(src.calls) != 3 {
		t.Fatalf("expected 3 fetches, got %d", len(src.calls))
	}
}

func TestLoadCrossListedResamples(t *testing.T) {
	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{bars: map[string][]series.Bar{
		"A": hourly(start, 1, 2, 3, 4),
		"B": hourly(start, 5, 6, 7, 8),
		"C": hourly(start, 9, 10, 11, 12),
	}}
	l := NewLoader(src, zerolog.Nop())

	got, err := l.LoadCrossListed(context.Background(), Query{Domestic: "A", Foreign: "B", FX: "C", Period: "1mo", Interval: "60m", Resample: 2 * time.Hour})
	if err != nil {
		t.Fatalf("LoadCrossListed returned error: %v", err)
	}
	if got.Domestic.Len() != 2 {
		t.Fatalf("expected 2 buckets, got %d", got.Domestic.Len())
	}
	if got.Domestic.Points[0].Value != 2 || got.Domestic.Points[1].Value != 4 {
		t.Fatalf("expected last value per bucket, got %+v", got.Domestic.Points)
	}
}

func TestLoadCrossListedPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{fail: map[string]error{"HSBA.L": boom}}
	l := NewLoader(src, zerolog.Nop())

	_, err := l.LoadCrossListed(context.Background(), Query{Domestic: "HSBC", Foreign: "HSBA.L", FX: "GBPUSD=X", Period: "6mo", Interval: "1d"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}

	_, err = l.LoadCrossListed(context.Background(), Query{Domestic: "HSBC", Foreign: "HSBA.L", FX: "", Period: "6mo", Interval: "1d"})
	if !errors.Is(err, spread.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter for empty ticker, got %v", err)
	}

	_, err = l.LoadCrossListed(context.Background(), Query{Domestic: "HSBC", Foreign: "HSBA.L", FX: "GBPUSD=X", Period: "forever", Interval: "1d"})
	if !errors.Is(err, spread.ErrInvalidParameter) {
		t.Fatalf("expected invalid period, got %v", err)
	}
}
