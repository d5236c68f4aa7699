// Package scanner runs the load, align, score and backtest pipeline for one cross-listed pair.
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Modertool999/arb-detection/internal/backtest"
	"github.com/Modertool999/arb-detection/internal/config"
	"github.com/Modertool999/arb-detection/internal/feed"
	"github.com/Modertool999/arb-detection/internal/metrics"
	"github.com/Modertool999/arb-detection/internal/spread"
	"github.com/Modertool999/arb-detection/internal/store"
)

// Loader supplies the three price legs of a pair.
type Loader interface {
	LoadCrossListed(ctx context.Context, q feed.Query) (feed.CrossListed, error)
}

// Request is one pipeline invocation: which prices to load and how to score them.
type Request struct {
	Query  feed.Query
	Params spread.Params
}

// Pair labels the request for logs and metrics.
func (r Request) Pair() string {
	return r.Query.Domestic + "/" + r.Query.Foreign
}

func (r Request) runParams() store.RunParams {
	return store.RunParams{
		Domestic:  r.Query.Domestic,
		Foreign:   r.Query.Foreign,
		FX:        r.Query.FX,
		Period:    r.Query.Period,
		Interval:  r.Query.Interval,
		Window:    r.Params.Window,
		Threshold: r.Params.Threshold,
	}
}

// Service is safe for concurrent use; every call builds its own pipeline state.
type Service struct {
	loader Loader
	runs   store.RunStore
	log    zerolog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRunStore records every successful backtest.
func WithRunStore(runs store.RunStore) Option {
	return func(s *Service) { s.runs = runs }
}

// WithClock overrides the time source used to stamp runs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(loader Loader, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{loader: loader, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scored loads the pair and returns every row with a defined z-score.
func (s *Service) Scored(ctx context.Context, req Request) ([]spread.ScoredRecord, error) {
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}
	legs, err := s.loader.LoadCrossListed(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	aligned, err := spread.Align(legs.Domestic, legs.Foreign, legs.FX)
	if err != nil {
		return nil, err
	}
	scored, err := spread.Score(aligned, req.Params)
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("pair", req.Pair()).
		Int("aligned", len(aligned)).
		Int("scored", len(scored)).
		Msg("spread scored")
	return scored, nil
}

// Latest returns the most recent scored row.
func (s *Service) Latest(ctx context.Context, req Request) (spread.ScoredRecord, error) {
	scored, err := s.Scored(ctx, req)
	metrics.ScansTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return spread.ScoredRecord{}, err
	}
	last := scored[len(scored)-1]
	metrics.LastZScore.WithLabelValues(req.Pair()).Set(last.ZScore)
	if last.Signal == 1 {
		s.log.Info().
			Str("pair", req.Pair()).
			Time("at", last.Time).
			Float64("spread", last.Spread).
			Float64("z_score", last.ZScore).
			Msg("spread anomaly flagged")
	}
	return last, nil
}

// Backtest scores the pair and replays it through the simulator.
func (s *Service) Backtest(ctx context.Context, req Request) (*backtest.Result, error) {
	res, err := s.backtest(ctx, req)
	metrics.BacktestsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}
	if s.runs != nil {
		run := store.NewRun(req.runParams(), res, s.now())
		if err := s.runs.SaveRun(ctx, run); err != nil {
			s.log.Warn().Err(err).Str("pair", req.Pair()).Msg("persist backtest run failed")
		}
	}
	return res, nil
}

func (s *Service) backtest(ctx context.Context, req Request) (*backtest.Result, error) {
	scored, err := s.Scored(ctx, req)
	if err != nil {
		return nil, err
	}
	res, err := backtest.Simulate(scored)
	if err != nil {
		return nil, fmt.Errorf("backtest %s: %w", req.Pair(), err)
	}
	return res, nil
}

// RecentRuns lists recorded backtests, newest first. Without a run store it returns nothing.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.RecentRuns(ctx, limit)
}

// RequestFromConfig builds the default request described by the scan and feed blocks.
func RequestFromConfig(cfg *config.Config) Request {
	return Request{
		Query: feed.Query{
			Domestic: cfg.Scan.DomesticTicker,
			Foreign:  cfg.Scan.ForeignTicker,
			FX:       cfg.Scan.FXTicker,
			Period:   cfg.Scan.Period,
			Interval: cfg.Scan.Interval,
			Resample: cfg.Feed.Resample(),
		},
		Params: cfg.Scan.Params(),
	}
}
