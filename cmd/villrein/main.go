// cmd/villrein/main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"villrein/internal/adapter/events"
	"villrein/internal/adapter/source"
	"villrein/internal/app"
	"villrein/internal/config"
	"villrein/internal/domain/fetch"
	"villrein/internal/domain/track"
	"villrein/internal/logging"
	fetchService "villrein/internal/service/fetch"
	trackService "villrein/internal/service/track"
)

const usage = `Usage: villrein <command> [arguments]

Commands:
  stats [year] [-q]   print per-animal statistics for a year and write its artifacts
  build [-q]          write the artifacts of every stored year and the year index
  fetch <year> [-q]   download a year from the tracking portal into the data directory
`

const defaultStatsYear = "2001"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return flag.ErrHelp
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	quiet := fs.Bool("q", false, "only print warnings and errors")
	fs.BoolVar(quiet, "quiet", false, "only print warnings and errors")
	positional, err := parseInterleaved(fs, args[1:])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Environment, *quiet)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, release, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	tracks := trackService.NewService(store, logger, trackService.ServiceConfig{
		MinDistance: cfg.Track.MinDistance,
	})

	switch args[0] {
	case "stats":
		year := defaultStatsYear
		if len(positional) > 0 {
			year = positional[0]
		}
		stats, err := tracks.Stats(ctx, year)
		if err != nil {
			return err
		}
		if !*quiet {
			return renderStats(stdout, stats)
		}
		return nil

	case "build":
		years, err := tracks.BuildAll(ctx)
		if err != nil {
			return err
		}
		logger.Info("years generated", zap.Int("count", len(years)))
		return nil

	case "fetch":
		if len(positional) == 0 {
			return fmt.Errorf("fetch needs a year")
		}
		year, err := strconv.Atoi(positional[0])
		if err != nil {
			return fmt.Errorf("invalid year %q: %w", positional[0], err)
		}
		return fetchYear(ctx, cfg, store, logger, year)

	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// parseInterleaved parses flags appearing before, between or after
// positional arguments
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func fetchYear(ctx context.Context, cfg config.Config, store track.Store, logger *zap.Logger, year int) error {
	if err := cfg.RequireSource(); err != nil {
		return err
	}

	client, err := source.NewClient(source.Config{
		BaseURL:    cfg.Source.BaseURL,
		Username:   cfg.Source.Username,
		Password:   cfg.Source.Password,
		Timeout:    cfg.Source.Timeout,
		Location:   cfg.Source.Location(),
		ProjectIDs: cfg.Source.ProjectIDs,
		SpeciesID:  cfg.Source.SpeciesID,
		UserAgent:  cfg.Source.UserAgent,
	}, logger)
	if err != nil {
		return err
	}

	var reporter fetch.ProgressReporter = fetch.ProgressFunc(func(ctx context.Context, p fetch.Progress) {
		logger.Info("individual fetched",
			zap.String("individual", p.IndividualID),
			zap.String("progress", fmt.Sprintf("%d/%d", p.Completed, p.Total)),
			zap.Bool("failed", p.Failed),
		)
	})

	var bus *events.Bus
	if cfg.NATS.Enabled {
		natsConn, err := app.InitNATS(cfg.NATS, logger)
		if err != nil {
			return err
		}
		defer natsConn.Close()
		bus = events.NewBus(natsConn, cfg.NATS.EventsTopic, logger)

		logReporter := reporter
		reporter = fetch.ProgressFunc(func(ctx context.Context, p fetch.Progress) {
			logReporter.Report(ctx, p)
			bus.Report(ctx, p)
		})
	}

	orchestrator := fetchService.NewOrchestrator(client, client, reporter, logger, fetchService.Config{
		Concurrency: cfg.Fetch.Concurrency,
		MaxDepth:    cfg.Fetch.MaxDepth,
		Location:    cfg.Source.Location(),
	})

	result, err := orchestrator.FetchYear(ctx, year)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%d-%s", year, result.RunID)
	if err := store.SaveRaw(ctx, name, result.Document); err != nil {
		return fmt.Errorf("error saving %s: %w", name, err)
	}

	if bus != nil {
		if err := bus.Completed(ctx, result); err != nil {
			logger.Warn("failed to publish completion", zap.Error(err))
		}
	}

	for _, f := range result.Failures {
		logger.Warn("individual not fetched",
			zap.String("individual", f.IndividualID),
			zap.String("error", f.Error),
		)
	}
	logger.Info("year fetched",
		zap.Int("year", year),
		zap.String("file", name),
		zap.Int("individuals", len(result.Document.VM)),
		zap.Int("failures", len(result.Failures)),
	)
	return nil
}

func renderStats(w io.Writer, stats []track.TrackStats) error {
	table := tablewriter.NewWriter(w)
	table.Header("Name", "Age", "Positions", "Distance", "Min/day", "Avg/day", "Max/day", "Days")

	for _, s := range stats {
		if err := table.Append([]string{
			s.Name,
			s.AgeString,
			strconv.Itoa(s.Summary.PointCount),
			trackService.FormatMeter(s.Summary.TotalDistance),
			trackService.FormatMeter(s.Summary.MinDayDistance),
			trackService.FormatMeter(s.Summary.AvgDayDistance),
			trackService.FormatMeter(s.Summary.MaxDayDistance),
			strconv.Itoa(s.Summary.DayCount),
		}); err != nil {
			return fmt.Errorf("error appending row: %w", err)
		}
	}

	return table.Render()
}
