// Binary server exposes the spread scanner over HTTP with Prometheus metrics.
package main

import (
	"context"
	"errors"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/Modertool999/arb-detection/internal/config"
	"github.com/Modertool999/arb-detection/internal/feed"
	"github.com/Modertool999/arb-detection/internal/metrics"
	"github.com/Modertool999/arb-detection/internal/scanner"
	"github.com/Modertool999/arb-detection/internal/server"
	"github.com/Modertool999/arb-detection/internal/store"
	"github.com/Modertool999/arb-detection/internal/util"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	config.LoadDotEnv()
	path := config.Path(defaultConfigPath)
	cfg, err := config.LoadAndValidate(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	log := util.NewLogger(configLevel(cfg))
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("load config")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	src, err := feed.NewFromConfig(cfg.Feed, util.Component(log, "feed"))
	if err != nil {
		log.Fatal().Err(err).Msg("build feed")
	}
	loader := feed.NewLoader(src, util.Component(log, "loader"))

	var runs store.RunStore = store.NewLedger(cfg.Store.RecentRuns)
	switch {
	case cfg.Database.Enabled():
		pg, err := store.Connect(ctx, cfg.Database, util.Component(log, "store"))
		if err != nil {
			log.Fatal().Err(err).Msg("connect database")
		}
		defer pg.Close()
		runs = pg
	case cfg.Store.JournalPath != "":
		j, err := store.NewJournal(cfg.Store.JournalPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Store.JournalPath).Msg("open run journal")
		}
		defer j.Close()
		runs = j
	}

	svc := scanner.New(loader, util.Component(log, "scanner"), scanner.WithRunStore(runs))
	srv := server.New(svc, cfg, util.Component(log, "http"))

	log.Info().
		Str("provider", src.Provider()).
		Str("pair", scanner.RequestFromConfig(cfg).Pair()).
		Bool("postgres", cfg.Database.Enabled()).
		Msg("scanner started")
	if err := srv.Run(ctx, cfg.App.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("http server")
	}
	log.Info().Msg("shutting down")
}

func configLevel(cfg *config.Config) string {
	if cfg == nil {
		return os.Getenv(config.EnvLogLevel)
	}
	return cfg.App.LogLevel
}
