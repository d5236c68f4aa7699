// Binary scan prints the latest scored spread rows for a pair and writes a CSV snapshot.
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
	"time"

	"github.com/rs/zerolog"

	"github.com/Modertool999/arb-detection/internal/config"
	"github.com/Modertool999/arb-detection/internal/feed"
	"github.com/Modertool999/arb-detection/internal/scanner"
	"github.com/Modertool999/arb-detection/internal/spread"
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
	out := flag.String("out", "", "snapshot CSV path")
	tail := flag.Int("tail", 5, "rows to print")
	watch := flag.Duration("watch", 0, "keep polling at this interval and append new rows to the snapshot")
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
	overrideString(&req.Query.Domestic, *us)
	overrideString(&req.Query.Foreign, *uk)
	overrideString(&req.Query.FX, *fx)
	overrideString(&req.Query.Period, *period)
	overrideString(&req.Query.Interval, *interval)
	if *window != 0 {
		req.Params.Window = *window
	}
	if *zThresh != 0 {
		req.Params.Threshold = *zThresh
	}
	snapshot := cfg.Store.SnapshotPath
	overrideString(&snapshot, *out)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src, err := feed.NewFromConfig(cfg.Feed, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build feed")
	}
	svc := scanner.New(feed.NewLoader(src, log), log)

	scored, err := svc.Scored(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Str("pair", req.Pair()).Msg("scan failed")
	}
	printTail(scored, *tail)

	if err := store.WriteSnapshotFile(snapshot, scored, req.Params); err != nil {
		log.Fatal().Err(err).Str("path", snapshot).Msg("write snapshot")
	}
	log.Info().Str("path", snapshot).Int("rows", len(scored)).Msg("snapshot saved")

	if *watch > 0 {
		if err := follow(ctx, log, svc, req, snapshot, scored[len(scored)-1].Time, *watch); err != nil {
			log.Fatal().Err(err).Msg("watch failed")
		}
	}
}

// follow appends each newly completed bar to the snapshot until ctx is canceled.
func follow(ctx context.Context, log zerolog.Logger, svc *scanner.Service, req scanner.Request, path string, last time.Time, every time.Duration) error {
	rec, err := store.NewCSVRecorder(path, req.Params)
	if err != nil {
		return err
	}
	defer rec.Close()

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		latest, err := svc.Latest(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn().Err(err).Str("pair", req.Pair()).Msg("scan failed, retrying")
			continue
		}
		if !latest.Time.After(last) {
			continue
		}
		if err := rec.Record(latest); err != nil {
			return err
		}
		last = latest.Time
		log.Info().Time("bar", last).Float64("z_score", latest.ZScore).Int("arb_signal", latest.Signal).Msg("row appended")
		printTail([]spread.ScoredRecord{latest}, 1)
	}
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func printTail(rows []spread.ScoredRecord, n int) {
	if n > len(rows) {
		n = len(rows)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Datetime\tClose_US\tClose_UK_USD\tspread\tz_score\tarb_signal\t")
	for _, r := range rows[len(rows)-n:] {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%d\t\n",
			r.Time.Format("2006-01-02 15:04"), r.CloseDomestic, r.CloseForeignConverted, r.Spread, r.ZScore, r.Signal)
	}
	_ = tw.Flush()
}
