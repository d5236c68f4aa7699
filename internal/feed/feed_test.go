package feed

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Modertool999/arb-detection/internal/config"
	"github.com/Modertool999/arb-detection/internal/series"
	"github.com/Modertool999/arb-detection/internal/spread"
	"github.com/Modertool999/arb-detection/internal/store"
)

const chartBody = `{"chart":{"result":[{"meta":{"symbol":"HSBC","gmtoffset":-18000},
"timestamp":[1735828200,1735914600,1736001000],
"indicators":{"quote":[{"open":[40,41,null],"high":[41,42,null],"low":[39,40,null],"close":[40.5,41.5,null],"volume":[100,200,null]}],
"adjclose":[{"adjclose":[40.0,41.5,null]}]}}],"error":null}}`

func TestParseChartDailyAdjusted(t *testing.T) {
	bars, err := parseChart("HSBC", "1d", []byte(chartBody))
	if err != nil {
		t.Fatalf("parseChart returned error: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	want := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	if !bars[0].Time.Equal(want) {
		t.Fatalf("expected exchange-local date %s, got %s", want, bars[0].Time)
	}
	if bars[0].Close != 40.0 {
		t.Fatalf("expected adjusted close 40, got %v", bars[0].Close)
	}
	ratio := 40.0 / 40.5
	if math.Abs(bars[0].Open-40*ratio) > 1e-9 {
		t.Fatalf("expected open scaled by adjustment ratio, got %v", bars[0].Open)
	}
	if !math.IsNaN(bars[2].Close) {
		t.Fatalf("expected NaN for null close, got %v", bars[2].Close)
	}
}

func TestParseChartIntradayKeepsTimestamps(t *testing.T) {
	bars, err := parseChart("HSBC", "1h", []byte(chartBody))
	if err != nil {
		t.Fatalf("parseChart returned error: %v", err)
	}
	if got := bars[0].Time; !got.Equal(time.Unix(1735828200, 0).UTC()) {
		t.Fatalf("unexpected intraday timestamp %s", got)
	}
}

func TestParseChartError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	if _, err := parseChart("NOPE", "1d", []byte(body)); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, err := parseChart("NOPE", "1d", []byte("<html>")); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestYahooFetch(t *testing.T) {
	var gotPath, gotRange, gotUA atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		gotRange.Store(r.URL.Query().Get("range") + "/" + r.URL.Query().Get("interval"))
		gotUA.Store(r.UserAgent())
		if strings.Contains(r.URL.Path, "MISSING") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"description":"No data found"}}}`))
			return
		}
		_, _ = w.Write([]byte(chartBody))
	}))
	defer server.Close()

	f, err := NewFeed(ProviderYahoo, zerolog.Nop(), WithBaseURL(server.URL+"/"), WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("NewFeed returned error: %v", err)
	}
	bars, err := f.FetchBars(context.Background(), "HSBC", "6mo", "1d")
	if err != nil {
		t.Fatalf("FetchBars returned error: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if gotPath.Load() != "/v8/finance/chart/HSBC" {
		t.Fatalf("unexpected path %v", gotPath.Load())
	}
	if gotRange.Load() != "6mo/1d" {
		t.Fatalf("unexpected range/interval %v", gotRange.Load())
	}
	if gotUA.Load() == "" {
		t.Fatalf("expected a user agent header")
	}

	if _, err := f.FetchBars(context.Background(), "MISSING", "6mo", "1d"); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for 404, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.FetchBars(ctx, "HSBC", "6mo", "1d"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFetchBarsValidatesRange(t *testing.T) {
	f, err := NewFeed(ProviderStub, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFeed returned error: %v", err)
	}
	if _, err := f.FetchBars(context.Background(), "HSBC", "7mo", "1d"); !errors.Is(err, spread.ErrInvalidParameter) {
		t.Fatalf("expected invalid period error, got %v", err)
	}
	if _, err := f.FetchBars(context.Background(), "HSBC", "6mo", "2h"); !errors.Is(err, spread.ErrInvalidParameter) {
		t.Fatalf("expected invalid interval error, got %v", err)
	}
}

func TestNewFeedUnknownProvider(t *testing.T) {
	if _, err := NewFeed("bloomberg", zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	f, err := NewFeed("", zerolog.Nop())
	if err != nil || f.Provider() != ProviderStub {
		t.Fatalf("expected stub default, got %v, %v", f, err)
	}
}

func TestStubIsDeterministicAndAligned(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 7, 16, 18, 0, 0, 0, time.UTC) }
	f, err := NewFeed(ProviderStub, zerolog.Nop(), WithClock(clock))
	if err != nil {
		t.Fatalf("NewFeed returned error: %v", err)
	}
	ctx := context.Background()
	a, _ := f.FetchBars(ctx, "HSBC", "6mo", "1d")
	b, _ := f.FetchBars(ctx, "HSBC", "6mo", "1d")
	fx, _ := f.FetchBars(ctx, "GBPUSD=X", "6mo", "1d")

	if len(a) < 120 || len(a) != len(b) || len(a) != len(fx) {
		t.Fatalf("unexpected bar counts %d %d %d", len(a), len(b), len(fx))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("stub not deterministic at %d", i)
		}
		if !a[i].Time.Equal(fx[i].Time) {
			t.Fatalf("stub calendars diverge at %d", i)
		}
		if wd := a[i].Time.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("daily stub emitted a weekend bar: %s", a[i].Time)
		}
		if i > 0 && !a[i].Time.After(a[i-1].Time) {
			t.Fatalf("stub bars not ascending at %d", i)
		}
	}
	if fx[0].Close < 1 || fx[0].Close > 1.5 {
		t.Fatalf("fx stub should trade near 1.25, got %v", fx[0].Close)
	}
	if !a[len(a)-1].Time.Equal(time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("last daily bar should be the clock date, got %s", a[len(a)-1].Time)
	}
}

func TestCSVProvider(t *testing.T) {
	dir := t.TempDir()
	bars := []series.Bar{
		{Time: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Close: 41},
		{Time: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), Close: 42},
	}
	if err := store.WriteBarsFile(BarsPath(dir, "HSBC"), "HSBC", bars); err != nil {
		t.Fatalf("WriteBarsFile returned error: %v", err)
	}

	f, err := NewFeed(ProviderCSV, zerolog.Nop(), WithDataDir(dir))
	if err != nil {
		t.Fatalf("NewFeed returned error: %v", err)
	}
	got, err := f.FetchBars(context.Background(), "HSBC", "6mo", "1d")
	if err != nil {
		t.Fatalf("FetchBars returned error: %v", err)
	}
	if len(got) != 2 || got[1].Close != 42 {
		t.Fatalf("unexpected bars: %+v", got)
	}

	if _, err := f.FetchBars(context.Background(), "HSBA.L", "6mo", "1d"); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for missing file, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "HSBC.csv")); err != nil {
		t.Fatalf("expected bars file: %v", err)
	}
}

func TestNewFromConfig(t *testing.T) {
	f, err := NewFromConfig(config.Feed{Provider: "CSV", DataDir: "/tmp/bars"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if f.Provider() != ProviderCSV || f.dataDir != "/tmp/bars" || f.timeout != defaultTimeout {
		t.Fatalf("unexpected feed: provider=%s dir=%s timeout=%s", f.Provider(), f.dataDir, f.timeout)
	}
}
