package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Modertool999/arb-detection/internal/backtest"
	"github.com/Modertool999/arb-detection/internal/features"
	"github.com/Modertool999/arb-detection/internal/series"
	"github.com/Modertool999/arb-detection/internal/spread"
)

func sampleScored() []spread.ScoredRecord {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	out := make([]spread.ScoredRecord, 3)
	for i := range out {
		rec := spread.ScoredRecord{
			CloseForeignConverted: 31.25,
			Spread:                0.75 + float64(i),
			RollingMean:           0.5,
			RollingStd:            0.25,
			ZScore:                1.0 + float64(i),
			Signal:                i % 2,
		}
		rec.Time = base.AddDate(0, 0, i)
		rec.CloseDomestic = 32
		rec.CloseForeign = 500
		rec.FXRate = 1.25
		out[i] = rec
	}
	return out
}

func readAll(t *testing.T, data string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	return rows
}

func TestWriteSnapshot(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, sampleScored(), spread.DefaultParams()); err != nil {
		t.Fatalf("WriteSnapshot returned error: %v", err)
	}
	rows := readAll(t, buf.String())
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "Datetime,Close_US,Close_UK,FX,Close_UK_GBP,Close_UK_USD,spread,spread_mean,spread_std,z_score,arb_signal" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	want := []string{"2025-06-02", "32", "500", "1.25", "5", "31.25", "0.75", "0.5", "0.25", "1", "0"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Fatalf("column %s: expected %q got %q", SnapshotHeader[i], v, rows[1][i])
		}
	}
	if rows[2][10] != "1" {
		t.Fatalf("expected signal 1 on second row, got %s", rows[2][10])
	}
}

func TestCSVRecorderWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "signals.csv")
	recs := sampleScored()

	rec, err := NewCSVRecorder(path, spread.DefaultParams())
	if err != nil {
		t.Fatalf("NewCSVRecorder returned error: %v", err)
	}
	if err := rec.Record(recs[0]); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := rec.Record(recs[1]); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}

	rec, err = NewCSVRecorder(path, spread.DefaultParams())
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	if err := rec.Record(recs[1]); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	_ = rec.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	rows := readAll(t, string(data))
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "2025-06-02" || rows[2][0] != "2025-06-03" {
		t.Fatalf("unexpected dates: %s, %s", rows[1][0], rows[2][0])
	}
}

func TestBarsRoundTrip(t *testing.T) {
	bars := []series.Bar{
		{Time: time.Date(2025, 1, 2, 14, 30, 0, 0, time.UTC), Open: 100.5, High: 101, Low: 99.25, Close: 100.75, Volume: 12000},
		{Time: time.Date(2025, 1, 2, 15, 30, 0, 0, time.UTC), Open: 100.75, High: 102, Low: 100, Close: math.NaN(), Volume: 9000},
	}
	path := filepath.Join(t.TempDir(), "AAPL.csv")
	if err := WriteBarsFile(path, "AAPL", bars); err != nil {
		t.Fatalf("WriteBarsFile returned error: %v", err)
	}

	data, _ := os.ReadFile(path)
	lines := strings.Split(string(data), "\n")
	if lines[0] != "Price,Close,High,Low,Open,Volume" || lines[1] != "Ticker,AAPL,AAPL,AAPL,AAPL,AAPL" || lines[2] != "Datetime,,,,," {
		t.Fatalf("unexpected metadata rows: %q", lines[:3])
	}
	if lines[3] != "2025-01-02 14:30:00+00:00,100.75,101,99.25,100.5,12000" {
		t.Fatalf("unexpected first bar line: %q", lines[3])
	}

	got, err := ReadBarsFile(path)
	if err != nil {
		t.Fatalf("ReadBarsFile returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(got))
	}
	if !got[0].Time.Equal(bars[0].Time) || got[0].Close != 100.75 || got[0].Open != 100.5 {
		t.Fatalf("unexpected first bar: %+v", got[0])
	}
	if !math.IsNaN(got[1].Close) {
		t.Fatalf("expected NaN close for empty field, got %v", got[1].Close)
	}
}

func TestReadBarsDailyDates(t *testing.T) {
	data := "Price,Close,High,Low,Open,Volume\nTicker,HSBC,HSBC,HSBC,HSBC,HSBC\nDate,,,,,\n2025-03-03,41.5,42,41,41.2,100\n"
	bars, err := ReadBars(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadBars returned error: %v", err)
	}
	if len(bars) != 1 || !bars[0].Time.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected bars: %+v", bars)
	}

	if _, err := ReadBars(strings.NewReader("a\nb\nc\nnot-a-date,1,1,1,1,1\n")); err == nil {
		t.Fatalf("expected error for malformed timestamp")
	}
	if _, err := ReadBarsFile(filepath.Join(t.TempDir(), "missing.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestWriteTrades(t *testing.T) {
	res, err := backtest.Simulate(sampleScored())
	if err != nil {
		t.Fatalf("Simulate returned error: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteTrades(&buf, res); err != nil {
		t.Fatalf("WriteTrades returned error: %v", err)
	}
	rows := readAll(t, buf.String())
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 trades, got %d", len(rows))
	}
	// second record is flagged with a positive spread: short 1.75 -> 2.75
	if rows[2][2] != "-1" || rows[2][5] != "1" || rows[2][6] != "1" {
		t.Fatalf("unexpected trade row: %v", rows[2])
	}
	if err := WriteTrades(&buf, nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
}

func TestLedgerEvictsOldest(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(2)
	now := time.Now()
	for i := 0; i < 3; i++ {
		run := NewRun(RunParams{Window: i + 1}, nil, now.Add(time.Duration(i)*time.Second))
		if err := l.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun returned error: %v", err)
		}
	}
	runs, _ := l.RecentRuns(ctx, 10)
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Params.Window != 3 || runs[1].Params.Window != 2 {
		t.Fatalf("expected newest first, got %d then %d", runs[0].Params.Window, runs[1].Params.Window)
	}
	if runs[0].ID == runs[1].ID {
		t.Fatalf("run ids must be unique")
	}

	runs, _ = l.RecentRuns(ctx, 1)
	if len(runs) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(runs))
	}
}

func TestJournalSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	sharpe := 1.25

	j, err := NewJournal(path)
	if err != nil {
		t.Fatalf("NewJournal returned error: %v", err)
	}
	first := NewRun(RunParams{Domestic: "HSBC", Window: 20}, &backtest.Result{
		Stats: backtest.Statistics{TotalReturn: -4, SharpeRatio: &sharpe, TotalTrades: 3},
	}, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	if err := j.SaveRun(ctx, first); err != nil {
		t.Fatalf("SaveRun returned error: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := j.SaveRun(ctx, first); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("expected os.ErrClosed after close, got %v", err)
	}

	j, err = NewJournal(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer j.Close()
	if err := j.SaveRun(ctx, NewRun(RunParams{Domestic: "BP", Window: 10}, nil, time.Now())); err != nil {
		t.Fatalf("SaveRun returned error: %v", err)
	}

	runs, err := j.RecentRuns(ctx, 0)
	if err != nil {
		t.Fatalf("RecentRuns returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 journaled runs, got %d", len(runs))
	}
	if runs[0].Params.Domestic != "BP" || runs[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", runs[0].Params.Domestic, runs[1].Params.Domestic)
	}
	got := runs[1].Stats
	if got.TotalReturn != -4 || got.SharpeRatio == nil || *got.SharpeRatio != sharpe || got.TotalTrades != 3 {
		t.Fatalf("unexpected journaled stats %+v", got)
	}
	if runs[0].Stats.SharpeRatio != nil {
		t.Fatalf("expected nil sharpe to stay nil")
	}
}

func TestWriteFeatures(t *testing.T) {
	rows := []features.Row{{
		Time:       time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		Close:      10,
		Volume:     100,
		Return:     0.111111111,
		MA5:        8,
		MA10:       5.5,
		Volatility: 1.58113883,
		Momentum:   3,
	}}
	path := filepath.Join(t.TempDir(), "HSBC_features.csv")
	if err := WriteFeaturesFile(path, rows); err != nil {
		t.Fatalf("WriteFeaturesFile returned error: %v", err)
	}
	data, _ := os.ReadFile(path)
	got := readAll(t, string(data))
	if len(got) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(got))
	}
	want := "2025-04-10,10,100,0.111111,8,5.5,1.581139,3"
	if strings.Join(got[1], ",") != want {
		t.Fatalf("unexpected row %q, want %q", strings.Join(got[1], ","), want)
	}
}
