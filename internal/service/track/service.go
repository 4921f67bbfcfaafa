// internal/service/track/service.go

package track

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"villrein/internal/domain/track"
)

// ErrInvalidDetails is returned for an unknown detail level
var ErrInvalidDetails = errors.New("invalid details level")

// ServiceConfig contains configuration for the track service
type ServiceConfig struct {
	// MinDistance is the optimizer threshold in meters for the full artifact
	MinDistance float64
}

// Service builds derived tracks from stored raw documents
type Service struct {
	store  track.Store
	logger *zap.Logger
	config ServiceConfig
}

// NewService creates a new track service
func NewService(store track.Store, logger *zap.Logger, config ServiceConfig) *Service {
	if config.MinDistance <= 0 {
		config.MinDistance = DefaultMinDistance
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		config: config,
	}
}

// Years returns the distinct years with stored raw documents
func (s *Service) Years(ctx context.Context) ([]string, error) {
	return s.store.ListYears(ctx)
}

// CollectForYear loads a year's raw documents and merges them per individual
func (s *Service) CollectForYear(ctx context.Context, year string) ([]track.AnimalTrack, error) {
	docs, err := s.store.LoadRaw(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("error loading raw documents for %s: %w", year, err)
	}
	return Collect(docs), nil
}

// Tracks returns the year's tracks at the requested detail level. When num
// is not nil only the track at that position is kept.
func (s *Service) Tracks(ctx context.Context, year string, details track.Details, num *int) ([]track.AnimalTrack, error) {
	if !details.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDetails, details)
	}

	tracks, err := s.CollectForYear(ctx, year)
	if err != nil {
		return nil, err
	}
	if granularity, ok := details.Granularity(); ok {
		tracks = GroupDays(tracks, granularity)
	}

	if num == nil {
		return tracks, nil
	}
	if *num < 0 || *num >= len(tracks) {
		return []track.AnimalTrack{}, nil
	}
	return tracks[*num : *num+1], nil
}

// Build writes the full, day and week artifacts of a year
func (s *Service) Build(ctx context.Context, year string) error {
	tracks, err := s.CollectForYear(ctx, year)
	if err != nil {
		return err
	}
	return s.writeArtifacts(ctx, year, tracks)
}

// BuildAll builds every stored year and writes the year index
func (s *Service) BuildAll(ctx context.Context) ([]string, error) {
	years, err := s.store.ListYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing years: %w", err)
	}

	for _, year := range years {
		s.logger.Info("generating year", zap.String("year", year))
		if err := s.Build(ctx, year); err != nil {
			return nil, err
		}
	}

	if err := s.store.SaveSnapshot(ctx, "years", years); err != nil {
		return nil, fmt.Errorf("error saving year index: %w", err)
	}
	return years, nil
}

// Stats summarizes every track of a year and writes its artifacts
func (s *Service) Stats(ctx context.Context, year string) ([]track.TrackStats, error) {
	tracks, err := s.CollectForYear(ctx, year)
	if err != nil {
		return nil, err
	}

	stats := make([]track.TrackStats, len(tracks))
	for i, t := range tracks {
		stats[i] = track.TrackStats{
			Name:      t.Name,
			AgeString: t.AgeString,
			Summary:   Summarize(t.Positions),
		}
	}

	if err := s.writeArtifacts(ctx, year, tracks); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Service) writeArtifacts(ctx context.Context, year string, tracks []track.AnimalTrack) error {
	artifacts := []struct {
		name string
		data []track.AnimalTrack
	}{
		{year + "-full", OptimizeAll(tracks, s.config.MinDistance)},
		{year + "-day", GroupDays(tracks, track.Day)},
		{year + "-week", GroupDays(tracks, track.Week)},
	}

	for _, a := range artifacts {
		if err := s.store.SaveSnapshot(ctx, a.name, a.data); err != nil {
			return fmt.Errorf("error saving %s: %w", a.name, err)
		}
		s.logger.Debug("artifact written",
			zap.String("name", a.name),
			zap.Int("tracks", len(a.data)),
		)
	}
	return nil
}
