// Binary collect downloads price bars for a list of tickers into {dir}/{ticker}.csv.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Modertool999/arb-detection/internal/config"
	"github.com/Modertool999/arb-detection/internal/features"
	"github.com/Modertool999/arb-detection/internal/feed"
	"github.com/Modertool999/arb-detection/internal/store"
	"github.com/Modertool999/arb-detection/internal/util"
)

const maxParallelDownloads = 4

func main() {
	config.LoadDotEnv()
	configPath := flag.String("config", config.Path("configs/config.yaml"), "config file")
	tickers := flag.String("tickers", "AAPL,MSFT,GOOG", "comma separated tickers")
	period := flag.String("period", "6mo", "look-back period")
	interval := flag.String("interval", "1h", "bar interval")
	dir := flag.String("dir", "", "output directory (defaults to store.data_dir)")
	withFeatures := flag.Bool("features", false, "also write {ticker}_features.csv")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := util.NewLoggerTo(os.Stderr, cfg.App.LogLevel)

	outDir := cfg.Store.DataDir
	if *dir != "" {
		outDir = *dir
	}
	if cfg.Feed.Provider == feed.ProviderCSV {
		log.Fatal().Msg("collect needs a network or stub provider, not csv")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src, err := feed.NewFromConfig(cfg.Feed, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build feed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDownloads)
	for _, ticker := range strings.Split(*tickers, ",") {
		ticker = strings.TrimSpace(ticker)
		if ticker == "" {
			continue
		}
		g.Go(func() error {
			bars, err := src.FetchBars(gctx, ticker, *period, *interval)
			if err != nil {
				return fmt.Errorf("%s: %w", ticker, err)
			}
			path := feed.BarsPath(outDir, ticker)
			if err := store.WriteBarsFile(path, ticker, bars); err != nil {
				return fmt.Errorf("%s: %w", ticker, err)
			}
			log.Info().Str("ticker", ticker).Str("path", path).Int("bars", len(bars)).Msg("bars saved")

			if *withFeatures {
				rows := features.Compute(bars)
				fpath := filepath.Join(outDir, ticker+"_features.csv")
				if err := store.WriteFeaturesFile(fpath, rows); err != nil {
					return fmt.Errorf("%s features: %w", ticker, err)
				}
				log.Info().Str("ticker", ticker).Str("path", fpath).Int("rows", len(rows)).Msg("features saved")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("collect failed")
	}
}
