// Package server exposes the scanner over HTTP and a websocket push channel.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Modertool999/arb-detection/internal/backtest"
	"github.com/Modertool999/arb-detection/internal/config"
	"github.com/Modertool999/arb-detection/internal/scanner"
	"github.com/Modertool999/arb-detection/internal/spread"
	"github.com/Modertool999/arb-detection/internal/store"
)

// Service is the part of the scanner the HTTP layer depends on.
type Service interface {
	Latest(ctx context.Context, req scanner.Request) (spread.ScoredRecord, error)
	Backtest(ctx context.Context, req scanner.Request) (*backtest.Result, error)
	RecentRuns(ctx context.Context, limit int) ([]store.Run, error)
}

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Server routes requests to the scanner. Query parameters override the configured defaults.
type Server struct {
	svc       Service
	log       zerolog.Logger
	base      scanner.Request
	staticDir string
	upgrader  websocket.Upgrader
	mux       *http.ServeMux
}

func New(svc Service, cfg *config.Config, log zerolog.Logger) *Server {
	s := &Server{
		svc:       svc,
		log:       log,
		base:      scanner.RequestFromConfig(cfg),
		staticDir: cfg.App.StaticDir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		mux: http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /scan", s.handleScan)
	s.mux.HandleFunc("GET /backtest", s.handleBacktest)
	s.mux.HandleFunc("GET /runs", s.handleRuns)
	s.mux.HandleFunc("GET /ws/scan", s.handleScanStream)
}

// Handler returns the routed handler wrapped in request id, logging and metrics middleware.
func (s *Server) Handler() http.Handler {
	return withRequestID(s.accessLog(s.mux))
}

// Run serves on addr until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info().Msg("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
