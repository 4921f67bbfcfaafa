// internal/service/fetch/orchestrator.go

package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"villrein/internal/domain/fetch"
	"villrein/internal/domain/track"
)

// Config contains configuration for the fetch orchestrator
type Config struct {
	// Concurrency is how many individuals are fetched at once
	Concurrency int

	// MaxDepth bounds the bisection of a year; the deepest attempt issues
	// 2^MaxDepth requests per individual.
	MaxDepth int

	// Location is the zone in which year boundaries are computed
	Location *time.Location
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() Config {
	return Config{
		Concurrency: 1,
		MaxDepth:    10,
		Location:    time.FixedZone("CET", 3600),
	}
}

// Orchestrator retrieves a year of positions per individual, refining the
// date segmentation whenever the source truncates a response.
type Orchestrator struct {
	source   fetch.Source
	session  fetch.Session
	reporter fetch.ProgressReporter
	logger   *zap.Logger
	config   Config
	now      func() time.Time
}

// NewOrchestrator creates a new fetch orchestrator
func NewOrchestrator(
	source fetch.Source,
	session fetch.Session,
	reporter fetch.ProgressReporter,
	logger *zap.Logger,
	config Config,
) *Orchestrator {
	defaults := DefaultConfig()
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.MaxDepth < 0 {
		config.MaxDepth = defaults.MaxDepth
	}
	if config.Location == nil {
		config.Location = defaults.Location
	}
	if reporter == nil {
		reporter = fetch.ProgressFunc(func(context.Context, fetch.Progress) {})
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		source:   source,
		session:  session,
		reporter: reporter,
		logger:   logger,
		config:   config,
		now:      time.Now,
	}
}

// SetClock replaces the orchestrator's time source
func (o *Orchestrator) SetClock(now func() time.Time) {
	o.now = now
}

// FetchIndividual returns every position of one individual in year.
//
// Attempt d requests the year as 2^d chronological ranges. The first range
// flagged as truncated abandons the attempt and the next one starts over at
// d+1. ErrLimitUnresolvable is returned once MaxDepth is exhausted.
func (o *Orchestrator) FetchIndividual(ctx context.Context, individualID string, year int) (track.RawDocument, error) {
	if err := o.session.EnsureSession(ctx); err != nil {
		return track.RawDocument{}, fmt.Errorf("error ensuring session: %w", err)
	}

	whole := []fetch.DateRange{YearRange(year, o.now(), o.config.Location)}

	for depth := 0; depth <= o.config.MaxDepth; depth++ {
		doc, truncated, err := o.fetchRanges(ctx, individualID, Segment(whole, depth))
		if err != nil {
			return track.RawDocument{}, err
		}
		if !truncated {
			return doc, nil
		}

		o.logger.Debug("position limit exceeded, refining segmentation",
			zap.String("individual", individualID),
			zap.Int("year", year),
			zap.Int("segments", SegmentsForDepth(depth+1)),
		)
	}

	return track.RawDocument{}, fmt.Errorf("individual %s at %d segments: %w",
		individualID, SegmentsForDepth(o.config.MaxDepth), fetch.ErrLimitUnresolvable)
}

// fetchRanges requests ranges in order and concatenates the results. It
// stops at the first truncated response.
func (o *Orchestrator) fetchRanges(ctx context.Context, individualID string, ranges []fetch.DateRange) (track.RawDocument, bool, error) {
	var doc track.RawDocument

	for _, r := range ranges {
		if err := ctx.Err(); err != nil {
			return track.RawDocument{}, false, err
		}

		part, err := o.source.Positions(ctx, individualID, r)
		if err != nil {
			return track.RawDocument{}, false, fmt.Errorf("error fetching positions for %s: %w", individualID, err)
		}

		doc.VM = append(doc.VM, part.VM...)
		if part.PositionLimitExceeded {
			doc.PositionLimitExceeded = true
			return doc, true, nil
		}
	}

	return doc, false, nil
}

// FetchYear fetches every individual with positions in year through a
// pool of Concurrency workers. A failing individual is recorded in the
// result's Failures and does not stop the others.
func (o *Orchestrator) FetchYear(ctx context.Context, year int) (fetch.YearResult, error) {
	result := fetch.YearResult{
		RunID: uuid.New().String(),
		Year:  year,
	}

	if err := o.session.EnsureSession(ctx); err != nil {
		return result, fmt.Errorf("error ensuring session: %w", err)
	}

	individuals, err := o.source.Individuals(ctx, YearRange(year, o.now(), o.config.Location))
	if err != nil {
		return result, fmt.Errorf("error listing individuals: %w", err)
	}

	o.logger.Info("fetching year",
		zap.String("run", result.RunID),
		zap.Int("year", year),
		zap.Int("individuals", len(individuals)),
		zap.Int("concurrency", o.config.Concurrency),
	)

	var (
		mu        sync.Mutex
		completed int
		slices    = make([][]track.RawIndividual, len(individuals))
		failures  = make([]*fetch.Failure, len(individuals))
	)

	var g errgroup.Group
	g.SetLimit(o.config.Concurrency)

	for i, ind := range individuals {
		g.Go(func() error {
			doc, err := o.FetchIndividual(ctx, ind.ID, year)

			mu.Lock()
			completed++
			progress := fetch.Progress{
				RunID:        result.RunID,
				Year:         year,
				IndividualID: ind.ID,
				Completed:    completed,
				Total:        len(individuals),
				Failed:       err != nil,
			}
			if err != nil {
				failures[i] = &fetch.Failure{IndividualID: ind.ID, Error: err.Error()}
			} else {
				slices[i] = doc.VM
			}
			mu.Unlock()

			if err != nil {
				o.logger.Warn("individual fetch failed",
					zap.String("individual", ind.ID),
					zap.Error(err),
				)
			}
			o.reporter.Report(ctx, progress)
			return nil
		})
	}
	_ = g.Wait()

	result.Document.VM = []track.RawIndividual{}
	for i := range individuals {
		result.Document.VM = append(result.Document.VM, slices[i]...)
		if failures[i] != nil {
			result.Failures = append(result.Failures, *failures[i])
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}
