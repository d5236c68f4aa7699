// Binary backtest replays the spread signal for a pair and reports its performance.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/Modertool999/arb-detection/internal/backtest"
	"github.com/Modertool999/arb-detection/internal/config"
	"github.com/Modertool999/arb-detection/internal/feed"
	"github.com/Modertool999/arb-detection/internal/scanner"
	"github.com/Modertool999/arb-detection/internal/store"
	"github.com/Modertool999/arb-detection/internal/util"
)

func main() {
	config.LoadDotEnv()
	configPath := flag.String("config", config.Path("configs/config.yaml"), "config file")
	us := flag.String("us", "", "domestic (ADR) ticker")
	uk := flag.String("uk", "", "foreign ordinary share ticker")
	fx := flag.String("fx", "", "FX ticker converting foreign to domestic currency")
	period := flag.String("period", "", "look-back period")
	interval := flag.String("interval", "", "bar interval")
	window := flag.Int("window", 0, "rolling window in bars")
	zThresh := flag.Float64("z", 0, "absolute z-score threshold")
	trades := flag.String("trades", "", "trade list CSV path (defaults to store.trades_path, \"-\" to skip)")
	record := flag.Bool("record", false, "store the run in the configured database or run journal")
	tail := flag.Int("tail", 5, "trades to print")
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

	req := scanner.RequestFromConfig(cfg)
	if *us != "" {
		req.Query.Domestic = *us
	}
	if *uk != "" {
		req.Query.Foreign = *uk
	}
	if *fx != "" {
		req.Query.FX = *fx
	}
	if *period != "" {
		req.Query.Period = *period
	}
	if *interval != "" {
		req.Query.Interval = *interval
	}
	if *window != 0 {
		req.Params.Window = *window
	}
	if *zThresh != 0 {
		req.Params.Threshold = *zThresh
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src, err := feed.NewFromConfig(cfg.Feed, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build feed")
	}
	var opts []scanner.Option
	if *record {
		switch {
		case cfg.Database.Enabled():
			pg, err := store.Connect(ctx, cfg.Database, log)
			if err != nil {
				log.Fatal().Err(err).Msg("connect database")
			}
			defer pg.Close()
			opts = append(opts, scanner.WithRunStore(pg))
		case cfg.Store.JournalPath != "":
			j, err := store.NewJournal(cfg.Store.JournalPath)
			if err != nil {
				log.Fatal().Err(err).Str("path", cfg.Store.JournalPath).Msg("open run journal")
			}
			defer j.Close()
			opts = append(opts, scanner.WithRunStore(j))
		default:
			log.Fatal().Msg("-record needs database.host or store.journal_path in the config")
		}
	}
	svc := scanner.New(feed.NewLoader(src, log), log, opts...)

	res, err := svc.Backtest(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Str("pair", req.Pair()).Msg("backtest failed")
	}

	fmt.Printf("Pair: %s (fx %s, %s/%s, window %d, z %.2f)\n\n",
		req.Pair(), req.Query.FX, req.Query.Period, req.Query.Interval, req.Params.Window, req.Params.Threshold)
	res.Stats.Print(os.Stdout)
	printTrades(res, *tail)

	out := cfg.Store.TradesPath
	if *trades != "" {
		out = *trades
	}
	if out != "-" {
		if err := store.WriteTradesFile(out, res); err != nil {
			log.Fatal().Err(err).Str("path", out).Msg("write trades")
		}
		log.Info().Str("path", out).Int("trades", len(res.Trades)).Msg("trades saved")
	}
}

func printTrades(res *backtest.Result, n int) {
	if n > len(res.Trades) {
		n = len(res.Trades)
	}
	fmt.Println("\n=== Last Trades ===")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Datetime\tposition\tspread\tnext_spread\tpnl\tequity\t")
	start := len(res.Trades) - n
	for i, tr := range res.Trades[start:] {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t\n",
			tr.Time.Format("2006-01-02 15:04"), tr.Position, tr.EntrySpread, tr.ExitSpread, tr.PnL,
			res.Equity[start+i].CumulativePnL)
	}
	_ = tw.Flush()
}
