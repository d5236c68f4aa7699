// Package feed fetches historical price bars for the scanner from pluggable providers.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Modertool999/arb-detection/internal/config"
	"github.com/Modertool999/arb-detection/internal/metrics"
	"github.com/Modertool999/arb-detection/internal/series"
)

const (
	// ProviderStub emits deterministic synthetic bars (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderYahoo downloads bars from the Yahoo Finance chart API.
	ProviderYahoo = "yahoo"
	// ProviderCSV reads bars previously written by the collector from the data directory.
	ProviderCSV = "csv"
)

// ErrNoData is returned when a provider has no bars for the requested symbol and range.
var ErrNoData = errors.New("no data available")

// Source is anything that can return historical bars for one symbol.
type Source interface {
	FetchBars(ctx context.Context, symbol, period, interval string) ([]series.Bar, error)
}

// Feed dispatches bar requests to the configured provider.
type Feed struct {
	provider string
	log      zerolog.Logger
	baseURL  string
	dataDir  string
	timeout  time.Duration
	now      func() time.Time
	yahoo    *yahooClient
}

// Option configures Feed construction parameters.
type Option func(*Feed)

const (
	defaultYahooBaseURL = "https://query1.finance.yahoo.com"
	defaultDataDir      = "data"
	defaultTimeout      = 10 * time.Second
)

// WithBaseURL overrides the Yahoo chart API host.
func WithBaseURL(baseURL string) Option {
	return func(f *Feed) {
		if baseURL != "" {
			f.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithDataDir points the csv provider at a directory of {ticker}.csv files.
func WithDataDir(dir string) Option {
	return func(f *Feed) {
		if dir != "" {
			f.dataDir = dir
		}
	}
}

// WithTimeout bounds a single HTTP round trip.
func WithTimeout(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithClock fixes the reference time used by the stub provider.
func WithClock(now func() time.Time) Option {
	return func(f *Feed) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFeed constructs a feed backed by the requested provider.
func NewFeed(provider string, log zerolog.Logger, opts ...Option) (*Feed, error) {
	if provider == "" {
		provider = ProviderStub
	}
	f := &Feed{
		provider: strings.ToLower(provider),
		log:      log,
		baseURL:  defaultYahooBaseURL,
		dataDir:  defaultDataDir,
		timeout:  defaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	switch f.provider {
	case ProviderStub, ProviderCSV:
	case ProviderYahoo:
		f.yahoo = newYahooClient(f.baseURL, f.timeout)
	default:
		return nil, fmt.Errorf("unknown feed provider %q", provider)
	}
	return f, nil
}

// Provider reports which backend serves requests.
func (f *Feed) Provider() string { return f.provider }

// FetchBars returns the bars for symbol in ascending time order.
func (f *Feed) FetchBars(ctx context.Context, symbol, period, interval string) ([]series.Bar, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	if err := ValidateInterval(interval); err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		bars []series.Bar
		err  error
	)
	switch f.provider {
	case ProviderYahoo:
		bars, err = f.yahoo.fetch(ctx, symbol, period, interval)
	case ProviderCSV:
		bars, err = f.fetchCSV(symbol)
	default:
		bars, err = f.fetchStub(symbol, period, interval)
	}
	if err == nil && len(bars) == 0 {
		err = fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	metrics.PriceFetchesTotal.WithLabelValues(f.provider, metrics.Result(err)).Inc()
	if err != nil {
		f.log.Warn().Err(err).Str("symbol", symbol).Str("provider", f.provider).Msg("price fetch failed")
		return nil, err
	}
	f.log.Debug().
		Str("symbol", symbol).
		Str("provider", f.provider).
		Int("bars", len(bars)).
		Dur("elapsed", time.Since(start)).
		Msg("price fetch")
	return bars, nil
}

// NewFromConfig builds a feed from the feed config block.
func NewFromConfig(cfg config.Feed, log zerolog.Logger) (*Feed, error) {
	return NewFeed(cfg.Provider, log,
		WithBaseURL(cfg.BaseURL),
		WithDataDir(cfg.DataDir),
		WithTimeout(cfg.Timeout()),
	)
}
