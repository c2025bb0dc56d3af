package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"transitstats.opentransit.org/internal/appconf"
	"transitstats.opentransit.org/internal/feed"
	"transitstats.opentransit.org/internal/feedio"
	"transitstats.opentransit.org/internal/gtfstime"
	"transitstats.opentransit.org/internal/logging"
	"transitstats.opentransit.org/internal/metrics"
	"transitstats.opentransit.org/internal/stats"
	"transitstats.opentransit.org/internal/units"
)

type config struct {
	feedPath string
	date     string
	unit     string
	split    bool
	dump     bool
	env      string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.feedPath, "feed", "", "Path to a feed zip file or extracted directory")
	flag.StringVar(&cfg.date, "date", "", "Service date YYYYMMDD (default: busiest date of the first week)")
	flag.StringVar(&cfg.unit, "unit", string(units.Kilometers), "Distance unit of the feed (km|m|mi|ft)")
	flag.BoolVar(&cfg.split, "split", false, "Split aggregates by direction")
	flag.BoolVar(&cfg.dump, "dump", false, "Dump a table summary and exit")
	flag.StringVar(&cfg.env, "env", "development", "Environment (development|production|test)")
	flag.Parse()

	level := slog.LevelDebug
	if appconf.EnvFlagToEnvironment(cfg.env) == appconf.Production {
		level = slog.LevelInfo
	}
	logger := logging.NewStructuredLogger(os.Stderr, level)

	if err := run(cfg, logger); err != nil {
		logging.LogError(logger, "run failed", err)
		os.Exit(1)
	}
}

func run(cfg config, logger *slog.Logger) error {
	if cfg.feedPath == "" {
		return fmt.Errorf("missing required -feed flag")
	}

	mets := metrics.New()
	snap, err := feedio.Load(cfg.feedPath, feedio.Options{
		DistUnit: units.Unit(cfg.unit),
		Logger:   logger,
		Metrics:  mets,
	})
	if err != nil {
		return err
	}

	if cfg.dump {
		_, err := fmt.Fprint(os.Stdout, snap.DebugDump())
		return err
	}

	agg, err := stats.NewAggregator(snap)
	if err != nil {
		return err
	}

	date, err := resolveDate(cfg, snap, agg)
	if err != nil {
		return err
	}
	logger.Info("computing statistics",
		slog.String("date", gtfstime.FormatDate(date)),
		slog.Bool("split_directions", cfg.split))

	statsCfg := stats.DefaultConfig()
	statsCfg.SplitDirections = cfg.split

	start := time.Now()
	feedStats, ok := agg.FeedStats(date, statsCfg)
	if !ok {
		return fmt.Errorf("no service on %s", gtfstime.FormatDate(date))
	}
	mets.ObserveComputation("feed_stats", time.Since(start))

	stageStart := time.Now()
	routeStats := agg.RouteStatsOn(date, statsCfg)
	mets.ObserveComputation("route_stats", time.Since(stageStart))

	stageStart = time.Now()
	stopRows := agg.StopStats(date, statsCfg)
	mets.ObserveComputation("stop_stats", time.Since(stageStart))
	logging.LogOperation(logger, "statistics_computed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("route_rows", len(routeStats)),
		slog.Int("stop_rows", len(stopRows)))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report{
		Date:        gtfstime.FormatDate(date),
		Feed:        newFeedReport(feedStats),
		Routes:      newRouteReports(routeStats),
		NumStopRows: len(stopRows),
	})
}

// resolveDate picks the date to report on: the -date flag when given,
// otherwise the busiest date of the feed's first week.
func resolveDate(cfg config, snap *feed.Snapshot, agg *stats.Aggregator) (time.Time, error) {
	if cfg.date != "" {
		return gtfstime.ParseDate(cfg.date)
	}
	week, err := snap.FirstWeek()
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot pick a default date: %w", err)
	}
	date, ok := agg.Activity().BusiestDate(week)
	if !ok {
		return time.Time{}, fmt.Errorf("feed covers no dates")
	}
	return date, nil
}
